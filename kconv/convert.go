package kconv

import (
	"fmt"
	"math"

	"github.com/arpes-go/kspace/fermi"
	"github.com/arpes-go/kspace/geometry"
	"github.com/arpes-go/kspace/spectrum"
)

// Warning codes reported by the conversion entry points.
const (
	// WarnAutoBinned: the input was large and got 2x2 block-binned on energy
	// and slit angle before conversion.
	WarnAutoBinned spectrum.WarningCode = "kconv/auto-binned"
	// WarnKPerpVaries: the perpendicular in-plane momentum is not constant
	// across the converted cut, so the result is only approximately a
	// constant-k_perp slice.
	WarnKPerpVaries spectrum.WarningCode = "kconv/k-perp-varies"
)

// autoBinThreshold is the element count above which inputs are block-binned
// automatically unless BinFactor is 1.
const autoBinThreshold = 10_000_000

// Convert resamples a spectrum from detector coordinates onto momentum and
// binding-energy grids and routes by shape: spectra with an hv axis go
// through ConvertKz, 3D angular maps through ConvertMap, and plain
// dispersions through the bilinear path implemented here. Returns the
// converted spectrum, advisory warnings, and an error only for fatal
// misconfiguration; momentum cells outside the measured range stay NaN.
func Convert(s *spectrum.Spectrum, conv geometry.Convention, opts Options) (*spectrum.Spectrum, []spectrum.Warning, error) {
	if err := opts.validate(); err != nil {
		return nil, nil, err
	}

	if _, ok := s.Axis(spectrum.AxisHv); ok {
		return ConvertKz(s, conv, opts)
	}
	if _, ok := s.MappingAxis(); ok && opts.Mode != ModeBE {
		return ConvertMap(s, conv, opts)
	}

	return convertDispersion(s, conv, opts)
}

// convertDispersion handles 2D (eV, theta_par) data: binding-energy shift
// only (ModeBE), momentum only (ModeK), or both.
func convertDispersion(s *spectrum.Spectrum, conv geometry.Convention, opts Options) (*spectrum.Spectrum, []spectrum.Warning, error) {
	var warns []spectrum.Warning

	s, w, err := applyBinning(s, opts)
	warns = append(warns, w...)
	if err != nil {
		return nil, nil, err
	}

	if opts.Mode == ModeBE {
		ref, _, w, err := resolveEnergy(s, opts, false)
		warns = append(warns, w...)
		if err != nil {
			return nil, nil, err
		}
		out, w, err := fermi.ApplyBE(s, ref)
		warns = append(warns, w...)
		if err != nil {
			return nil, nil, err
		}
		out, err = applyEVWindow(out, opts)

		return out, warns, err
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
	ev := evAxis.Values

	plan, w, err := planEnergy(s, opts, slitAxis.Values)
	warns = append(warns, w...)
	if err != nil {
		return nil, nil, err
	}
	outEV := plan.outEV

	b := sweepBounds(g, plan.ke(outEV[0]), plan.ke(outEV[len(outEV)-1]))
	dk := opts.DK
	if dk == 0 {
		if len(g.Alpha) > 1 {
			dk = (b.slitMax - b.slitMin) / float64(len(g.Alpha)-1)
		} else {
			dk = defaultDK
		}
	}
	kAxis := axisRange(b.slitMin, b.slitMax, dk)
	opts.debug("converting dispersion",
		"type", g.Type.String(), "mode", opts.Mode.String(), "dk", dk, "nk", len(kAxis))

	evIdx := s.AxisIndex(spectrum.AxisEV)
	thIdx := s.AxisIndex(spectrum.AxisThetaPar)
	strides := strideTable(s.Dims())
	data := s.Data()
	ths := slitAxis.Values

	nE, nK := len(outEV), len(kAxis)
	out := make([]float64, nE*nK)
	clamp := s.Min() >= 0
	for m := 0; m < nE; m++ {
		ek := plan.ke(outEV[m])
		for i, k := range kAxis {
			kx, ky := slitComponents(g, k, b.perpMean)
			alpha, _ := g.Inverse(ek, kx, ky)
			th := g.SlitAngleFromAlpha(alpha)
			v := lerp2(data, strides[evIdx], strides[thIdx], ev, ths, ek+plan.shift(th), th)
			if clamp && v < 0 {
				v = 0
			}
			out[m*nK+i] = v
		}
	}

	attrs := s.Attrs()
	attrs.EVType = plan.evType
	attrs.KPerp = b.perpMean
	if b.perpVar > kPerpVarianceThreshold {
		warns = append(warns, spectrum.Warning{
			Code: WarnKPerpVaries,
			Message: fmt.Sprintf(
				"perpendicular momentum varies across the cut (mean %.4g, variance %.2g 1/Å); the slice is not at constant k_perp",
				b.perpMean, b.perpVar),
		})
	}

	res, err := spectrum.New(out, []spectrum.Axis{
		{Name: spectrum.AxisEV, Values: outEV},
		{Name: spectrum.AxisKPar, Values: kAxis},
	}, attrs)
	if err != nil {
		return nil, nil, err
	}
	for _, line := range s.History() {
		res.AppendHistory(line)
	}
	res.AppendHistory(fmt.Sprintf(
		"k-space conversion applied (type %s analyser, mode %s, dk = %.4g /Å)",
		g.Type, opts.Mode, dk))

	res, err = applyEVWindow(res, opts)

	return res, warns, err
}

// slitComponents assembles the (kx, ky) pair from the along-slit and
// perpendicular components for the analyser orientation.
func slitComponents(g *geometry.Geometry, slit, perp float64) (kx, ky float64) {
	if g.Type == geometry.TypeII || g.Type == geometry.TypeIIp {
		return perp, slit
	}

	return slit, perp
}

// defaultDK is the fallback momentum spacing (1/Å) when the source gives no
// natural pixel count to match.
const defaultDK = 0.01

// energyPlan describes the output energy axis of a momentum conversion and
// how its samples map back onto the kinetic source scale.
type energyPlan struct {
	// outEV is the output energy axis (kinetic for ModeK, binding
	// otherwise).
	outEV []float64
	// ef0 is the kinetic energy of the Fermi level at normal slit angle;
	// zero for ModeK, where outEV is already kinetic.
	ef0 float64
	// shift gives the extra kinetic offset of the source lookup at a slit
	// angle, non-zero only for curved Fermi references.
	shift  func(th float64) float64
	evType spectrum.EVType
}

// ke converts an output energy sample to its kinetic energy.
func (p energyPlan) ke(e float64) float64 { return e + p.ef0 }

// planEnergy builds the output energy axis: a copy of the kinetic source
// axis for ModeK, otherwise a binding scale wide enough for the reference
// evaluated over every slit angle.
func planEnergy(s *spectrum.Spectrum, opts Options, slitVals []float64) (energyPlan, []spectrum.Warning, error) {
	evAxis, _ := s.Axis(spectrum.AxisEV)
	ev := evAxis.Values

	p := energyPlan{shift: func(float64) float64 { return 0 }}
	if opts.Mode == ModeK {
		p.outEV = append([]float64(nil), ev...)
		p.evType = spectrum.KineticEnergy

		return p, nil, nil
	}

	// The photon energy cancels out of the in-plane conversion (KE is
	// EF + binding energy), so it is not resolved here.
	ref, _, warns, err := resolveEnergy(s, opts, false)
	if err != nil {
		return energyPlan{}, warns, err
	}
	lo, hi, step, err := fermi.BEScale(ref, slitVals, ev)
	if err != nil {
		return energyPlan{}, warns, err
	}
	p.outEV = arange(lo, hi, step)
	p.ef0 = ref.EFAt(0)
	if ref.AngleDependent() {
		// A state at binding energy E sits at kinetic energy E + EF(θ) in
		// the raw data; the curvature shows up as a per-angle shift of the
		// source lookup.
		p.shift = func(th float64) float64 { return ref.EFAt(th) - p.ef0 }
	}
	p.evType = spectrum.BindingEnergy

	return p, warns, nil
}

// applyBinning performs the pre-conversion block-mean binning: an explicit
// per-axis map, a uniform factor on energy and slit angle, or an automatic
// 2x2 bin for oversized inputs (suppressed by BinFactor 1).
func applyBinning(s *spectrum.Spectrum, opts Options) (*spectrum.Spectrum, []spectrum.Warning, error) {
	switch {
	case len(opts.Binning) > 0:
		out, err := s.Bin(opts.Binning, spectrum.PadBoundary)

		return out, nil, err

	case opts.BinFactor > 1:
		out, err := s.Bin(spectrum.BinSpec{
			spectrum.AxisEV:       opts.BinFactor,
			spectrum.AxisThetaPar: opts.BinFactor,
		}, spectrum.PadBoundary)

		return out, nil, err

	case opts.BinFactor == 0 && s.Size() > autoBinThreshold:
		bin := spectrum.BinSpec{
			spectrum.AxisEV:       2,
			spectrum.AxisThetaPar: 2,
		}
		if singleEnergySlice(opts) {
			// The energy axis collapses to one slice anyway; binning it
			// first would only smear the selection.
			delete(bin, spectrum.AxisEV)
		}
		out, err := s.Bin(bin, spectrum.PadBoundary)
		if err != nil {
			return nil, nil, err
		}
		warn := spectrum.Warning{
			Code: WarnAutoBinned,
			Message: fmt.Sprintf(
				"input has %d samples; 2x2 binning on energy and slit angle applied automatically (set BinFactor to 1 to disable)",
				s.Size()),
		}

		return out, []spectrum.Warning{warn}, nil
	}

	return s, nil, nil
}

// singleEnergySlice reports whether the options request a single output
// energy slice.
func singleEnergySlice(opts Options) bool {
	if isSet(opts.EVMin) && isSet(opts.EVMax) && opts.EVMin == opts.EVMax {
		return true
	}

	return isSet(opts.FSWidth) && opts.FSWidth == 0
}

// resolveEnergy determines the Fermi reference and, when needHv is set, the
// photon energy, estimating either from the data with a warning when the
// caller supplied nothing.
func resolveEnergy(s *spectrum.Spectrum, opts Options, needHv bool) (fermi.Reference, float64, []spectrum.Warning, error) {
	var warns []spectrum.Warning

	ref := opts.Reference
	if ref == nil {
		ef, w, err := fermi.EstimateEF(s)
		if err != nil {
			return nil, 0, nil, err
		}
		warns = append(warns, w...)
		ref = fermi.Constant(ef)
		opts.debug("Fermi level estimated", "ef", ef)
	}

	hv := s.Attrs().Hv
	if needHv && !s.Attrs().HasHv() {
		est, desc := fermi.EstimateHv(ref.EFAt(0))
		hv = est
		warns = append(warns, spectrum.Warning{
			Code:    fermi.WarnEstimatedHv,
			Message: fmt.Sprintf("photon energy missing; estimated as %g eV (%s)", est, desc),
		})
	}

	return ref, hv, warns, nil
}

// applyEVWindow restricts the output energy axis to [EVMin, EVMax]. Equal
// bounds select the single nearest slice; one-sided windows keep the other
// end of the axis.
func applyEVWindow(s *spectrum.Spectrum, opts Options) (*spectrum.Spectrum, error) {
	if !isSet(opts.EVMin) && !isSet(opts.EVMax) {
		return s, nil
	}
	ax, ok := s.Axis(spectrum.AxisEV)
	if !ok {
		return s, nil
	}

	lo, hi := opts.EVMin, opts.EVMax
	if !isSet(lo) {
		lo = ax.Values[0]
	}
	if !isSet(hi) {
		hi = ax.Values[ax.Len()-1]
	}

	if lo == hi {
		return s.Select(spectrum.AxisEV, lo)
	}
	out, err := s.Crop(spectrum.AxisEV, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("%w: eV in [%g, %g]", ErrEmptySelection, lo, hi)
	}

	return out, nil
}

// arange builds the half-open grid lo, lo+step, ... < hi.
func arange(lo, hi, step float64) []float64 {
	n := int(math.Ceil((hi-lo)/step - 1e-9))
	if n < 1 {
		n = 1
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*step
	}

	return out
}

// strideTable returns element strides for a row-major layout.
func strideTable(dims []int) []int {
	strides := make([]int, len(dims))
	acc := 1
	for i := len(dims) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= dims[i]
	}

	return strides
}
