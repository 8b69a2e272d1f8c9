package kconv

import (
	"fmt"
	"math"

	"github.com/arpes-go/kspace/fermi"
	"github.com/arpes-go/kspace/geometry"
	"github.com/arpes-go/kspace/spectrum"
)

// ConvertMap converts a 3D angular map (eV, slit angle, mapping angle) onto
// a (eV, k_par, k_perp) momentum volume by trilinear pullback through the
// inverse mapping. The optional energy-window or Fermi-surface selection is
// applied to the converted volume: FSWidth/FSCenter average a slab around
// the Fermi level into a 2D momentum slice.
func ConvertMap(s *spectrum.Spectrum, conv geometry.Convention, opts Options) (*spectrum.Spectrum, []spectrum.Warning, error) {
	if err := opts.validate(); err != nil {
		return nil, nil, err
	}
	if _, ok := s.MappingAxis(); !ok {
		return nil, nil, ErrNotMap
	}
	if opts.Mode == ModeBE {
		return convertDispersion(s, conv, opts)
	}

	var warns []spectrum.Warning

	s, w, err := applyBinning(s, opts)
	warns = append(warns, w...)
	if err != nil {
		return nil, nil, err
	}

	if _, ok := s.Axis(spectrum.AxisEV); !ok {
		return nil, nil, ErrNoEnergyAxis
	}
	if s.Attrs().EVType == spectrum.BindingEnergy {
		return nil, nil, fmt.Errorf("%w: momentum conversion needs a kinetic-energy source", fermi.ErrAlreadyBinding)
	}

	g, w, err := geometry.Resolve(s, conv)
	warns = append(warns, w...)
	if err != nil {
		return nil, nil, err
	}

	evAxis, _ := s.Axis(spectrum.AxisEV)
	slitAxis, _ := s.Axis(spectrum.AxisThetaPar)
	mapAxis, _ := s.MappingAxis()

	plan, w, err := planEnergy(s, opts, slitAxis.Values)
	warns = append(warns, w...)
	if err != nil {
		return nil, nil, err
	}
	outEV := plan.outEV

	b := sweepBounds(g, plan.ke(outEV[0]), plan.ke(outEV[len(outEV)-1]))
	dk := opts.DK
	if dk == 0 {
		dk = defaultDK
	}
	kSlit := axisRange(b.slitMin, b.slitMax, dk)
	kPerp := axisRange(b.perpMin, b.perpMax, dk)
	opts.debug("converting map",
		"type", g.Type.String(), "mapping", g.MappingAxis,
		"dk", dk, "nk_par", len(kSlit), "nk_perp", len(kPerp))

	evIdx := s.AxisIndex(spectrum.AxisEV)
	thIdx := s.AxisIndex(spectrum.AxisThetaPar)
	mapIdx := s.AxisIndex(mapAxis.Name)
	strides := strideTable(s.Dims())
	data := s.Data()
	ev, ths, maps := evAxis.Values, slitAxis.Values, mapAxis.Values

	nE, nS, nP := len(outEV), len(kSlit), len(kPerp)
	out := make([]float64, nE*nS*nP)
	clamp := s.Min() >= 0
	for m := 0; m < nE; m++ {
		ek := plan.ke(outEV[m])
		for i, ks := range kSlit {
			for j, kp := range kPerp {
				kx, ky := slitComponents(g, ks, kp)
				alpha, beta := g.Inverse(ek, kx, ky)
				th := g.SlitAngleFromAlpha(alpha)
				ma := g.MappingAngleFromBeta(beta)
				v := lerp3(data,
					strides[evIdx], strides[thIdx], strides[mapIdx],
					ev, ths, maps,
					ek+plan.shift(th), th, ma)
				if clamp && v < 0 {
					v = 0
				}
				out[(m*nS+i)*nP+j] = v
			}
		}
	}

	attrs := s.Attrs()
	attrs.EVType = plan.evType
	attrs.KPerp = math.NaN()

	res, err := spectrum.New(out, []spectrum.Axis{
		{Name: spectrum.AxisEV, Values: outEV},
		{Name: spectrum.AxisKPar, Values: kSlit},
		{Name: spectrum.AxisKPerp, Values: kPerp},
	}, attrs)
	if err != nil {
		return nil, nil, err
	}
	for _, line := range s.History() {
		res.AppendHistory(line)
	}
	res.AppendHistory(fmt.Sprintf(
		"k-space conversion applied (type %s analyser, %s map, dk = %.4g /Å)",
		g.Type, g.MappingAxis, dk))

	res, err = applyEVWindow(res, opts)
	if err != nil {
		return nil, nil, err
	}
	res, err = applyFSWindow(res, opts)

	return res, warns, err
}

// applyFSWindow averages the converted volume over a binding-energy slab of
// width FSWidth centred on FSCenter (default the Fermi level), producing a
// constant-energy momentum map. Zero width selects the single nearest slice.
func applyFSWindow(s *spectrum.Spectrum, opts Options) (*spectrum.Spectrum, error) {
	if !isSet(opts.FSWidth) {
		return s, nil
	}

	c := opts.FSCenter
	if !isSet(c) {
		c = 0
	}
	if opts.FSWidth == 0 {
		return s.Select(spectrum.AxisEV, c)
	}

	out, err := s.Crop(spectrum.AxisEV, c-opts.FSWidth/2, c+opts.FSWidth/2)
	if err != nil {
		return nil, fmt.Errorf("%w: eV in [%g, %g]", ErrEmptySelection, c-opts.FSWidth/2, c+opts.FSWidth/2)
	}

	return out.MeanOver(spectrum.AxisEV)
}
