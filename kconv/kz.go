package kconv

import (
	"fmt"
	"math"
	"sort"

	"github.com/arpes-go/kspace/fermi"
	"github.com/arpes-go/kspace/geometry"
	"github.com/arpes-go/kspace/spectrum"
)

// Warning codes specific to kz conversion.
const (
	// WarnDefaultV0: no inner potential was supplied; 12 eV assumed.
	WarnDefaultV0 spectrum.WarningCode = "kconv/default-inner-potential"
	// WarnModeIgnored: ModeK was requested for an hv scan, where the kinetic
	// scale changes slice to slice; converted to binding energy anyway.
	WarnModeIgnored spectrum.WarningCode = "kconv/mode-ignored"
)

// defaultV0 is the inner potential (eV) assumed when none is supplied.
const defaultV0 = 12

// ConvertKz converts a photon-energy scan (hv, eV, theta_par) into a
// (eV, k_par, kz) volume under the free-electron final-state model,
//
//	kz = C·√(V0 + hv − wf + E_B − (k_par/C)²),
//
// in three resampling passes: the per-slice kinetic scales are aligned onto
// a common binding-energy axis, each slice is converted from slit angle to
// in-plane momentum, and the hv axis is exchanged for kz. The Fermi level
// per slice comes from Attrs.EFvsHv or, failing that, a polynomial edge
// alignment across the scan (with a warning).
func ConvertKz(s *spectrum.Spectrum, conv geometry.Convention, opts Options) (*spectrum.Spectrum, []spectrum.Warning, error) {
	if err := opts.validate(); err != nil {
		return nil, nil, err
	}

	hvAxis, ok := s.Axis(spectrum.AxisHv)
	if !ok {
		return nil, nil, ErrNotHvScan
	}
	if hvAxis.Len() < 2 {
		return nil, nil, fmt.Errorf("%w: need at least two photon energies", ErrNotHvScan)
	}
	if _, ok := s.Axis(spectrum.AxisEV); !ok {
		return nil, nil, ErrNoEnergyAxis
	}

	var warns []spectrum.Warning
	if opts.Mode == ModeK {
		warns = append(warns, spectrum.Warning{
			Code:    WarnModeIgnored,
			Message: "hv scans have no common kinetic scale; converting to binding energy as well",
		})
		opts.Mode = ModeBoth
	}

	s, w, err := applyBinning(s, opts)
	warns = append(warns, w...)
	if err != nil {
		return nil, nil, err
	}
	hvAxis, _ = s.Axis(spectrum.AxisHv)
	evAxis, _ := s.Axis(spectrum.AxisEV)
	slitAxis, ok := s.Axis(spectrum.AxisThetaPar)
	if !ok {
		return nil, nil, geometry.ErrMissingSlitAxis
	}
	if s.Attrs().EVType == spectrum.BindingEnergy {
		return nil, nil, fmt.Errorf("%w: kz conversion needs kinetic-energy slices", fermi.ErrAlreadyBinding)
	}

	hvs, ev, ths := hvAxis.Values, evAxis.Values, slitAxis.Values
	nHv, nEv, nTh := len(hvs), len(ev), len(ths)

	// Per-slice calibration: Fermi level on the shared detector scale,
	// detector offset, and work function.
	keDelta := s.Attrs().KEDeltaVsHv
	if len(keDelta) != nHv {
		keDelta = make([]float64, nHv)
	}
	efShared := s.Attrs().EFvsHv
	if len(efShared) != nHv {
		aligned, w, err := fermi.AlignHv(s, 3)
		if err != nil {
			return nil, nil, err
		}
		warns = append(warns, w...)
		efShared = aligned
	}
	ef := make([]float64, nHv) // kinetic Fermi energy per slice, offsets applied
	wf := make([]float64, nHv)
	for i := range ef {
		ef[i] = efShared[i] + keDelta[i]
		wf[i] = hvs[i] - ef[i]
	}

	// Pass A: align every slice onto the common binding-energy axis, the
	// overlap of the per-slice windows.
	beLo, beHi := math.Inf(-1), math.Inf(1)
	for i := range hvs {
		beLo = math.Max(beLo, ev[0]-efShared[i])
		beHi = math.Min(beHi, ev[nEv-1]-efShared[i])
	}
	if beLo >= beHi {
		return nil, nil, ErrEmptyOverlap
	}
	step := spectrum.Step(ev)
	beAxis := make([]float64, int((beHi-beLo)/step+1e-9)+1)
	for m := range beAxis {
		beAxis[m] = beLo + float64(m)*step
	}
	nBE := len(beAxis)

	hvIdx := s.AxisIndex(spectrum.AxisHv)
	evIdx := s.AxisIndex(spectrum.AxisEV)
	thIdx := s.AxisIndex(spectrum.AxisThetaPar)
	strides := strideTable(s.Dims())
	data := s.Data()

	cubeA := make([]float64, nHv*nBE*nTh)
	for i := 0; i < nHv; i++ {
		for t := 0; t < nTh; t++ {
			base := i*strides[hvIdx] + t*strides[thIdx]
			for m, be := range beAxis {
				cubeA[(i*nBE+m)*nTh+t] = lerp1(data, base, strides[evIdx], ev, be+efShared[i])
			}
		}
	}
	opts.debug("hv slices aligned", "n_hv", nHv, "be_lo", beLo, "be_hi", beHi)

	attrs := s.Attrs()
	attrs.EVType = spectrum.BindingEnergy
	if opts.Mode == ModeBE {
		res, err := spectrum.New(cubeA, []spectrum.Axis{
			{Name: spectrum.AxisHv, Values: hvs},
			{Name: spectrum.AxisEV, Values: beAxis},
			{Name: spectrum.AxisThetaPar, Values: ths},
		}, attrs)
		if err != nil {
			return nil, nil, err
		}
		for _, line := range s.History() {
			res.AppendHistory(line)
		}
		res.AppendHistory("hv slices aligned onto common binding-energy scale")
		res, err = applyEVWindow(res, opts)

		return res, warns, err
	}

	// Pass B: slit angle to in-plane momentum, slice by slice. The momentum
	// grid covers every slice; the highest photon energy sets the widest
	// range.
	g, w, err := geometry.Resolve(s, conv)
	warns = append(warns, w...)
	if err != nil {
		return nil, nil, err
	}
	slitMin, slitMax := math.Inf(1), math.Inf(-1)
	perpMean := make([]float64, nHv)
	for i := range hvs {
		b := sweepBounds(g, ef[i]+beLo, ef[i]+beHi)
		slitMin = math.Min(slitMin, b.slitMin)
		slitMax = math.Max(slitMax, b.slitMax)
		perpMean[i] = b.perpMean
	}
	dk := opts.DK
	if dk == 0 {
		dk = defaultDK
	}
	kAxis := axisRange(slitMin, slitMax, dk)
	nK := len(kAxis)

	cubeB := make([]float64, nHv*nBE*nK)
	for i := 0; i < nHv; i++ {
		for m, be := range beAxis {
			ek := ef[i] + be
			base := (i*nBE + m) * nTh
			for j, k := range kAxis {
				kx, ky := slitComponents(g, k, perpMean[i])
				alpha, _ := g.Inverse(ek, kx, ky)
				th := g.SlitAngleFromAlpha(alpha)
				cubeB[(i*nBE+m)*nK+j] = lerp1(cubeA, base, 1, ths, th)
			}
		}
	}
	opts.debug("in-plane momentum converted", "dk", dk, "nk", nK)

	// Pass C: exchange hv for kz.
	v0 := opts.V0
	if !isSet(v0) {
		v0 = defaultV0
		warns = append(warns, spectrum.Warning{
			Code:    WarnDefaultV0,
			Message: fmt.Sprintf("no inner potential supplied; using V0 = %g eV", float64(defaultV0)),
		})
	}

	kzMin, kzMax := math.Inf(1), math.Inf(-1)
	for _, i := range []int{0, nHv - 1} {
		for _, be := range []float64{beLo, beHi} {
			for _, k := range kAxis {
				kz := kzOf(hvs[i], wf[i], be, k, v0)
				if math.IsNaN(kz) {
					continue
				}
				kzMin = math.Min(kzMin, kz)
				kzMax = math.Max(kzMax, kz)
			}
		}
	}
	if kzMin >= kzMax {
		return nil, nil, ErrEmptyOverlap
	}
	var kzAxis []float64
	if opts.DKz > 0 {
		kzAxis = axisRange(kzMin, kzMax, opts.DKz)
	} else {
		// Match the hv pixel count.
		kzAxis = make([]float64, nHv)
		for l := range kzAxis {
			kzAxis[l] = kzMin + float64(l)*(kzMax-kzMin)/float64(nHv-1)
		}
	}
	nKz := len(kzAxis)

	wfAt := clampedInterp(hvs, wf)
	final := make([]float64, nBE*nK*nKz)
	for m, be := range beAxis {
		for j, k := range kAxis {
			base := m*nK + j
			for l, kz := range kzAxis {
				// hv = (kz² + k_par²)/C² − V0 + wf − E_B, with the work
				// function resolved by fixed-point iteration since it
				// depends on the slice being looked up.
				free := (kz*kz+k*k)/(geometry.KvacConst*geometry.KvacConst) - v0 - be
				hvT := free + wfAt(hvs[nHv/2])
				hvT = free + wfAt(hvT)
				final[(m*nK+j)*nKz+l] = lerp1(cubeB, base, nBE*nK, hvs, hvT)
			}
		}
	}

	attrs.EFvsHv = nil
	attrs.KEDeltaVsHv = nil
	attrs.Hv = math.NaN()
	res, err := spectrum.New(final, []spectrum.Axis{
		{Name: spectrum.AxisEV, Values: beAxis},
		{Name: spectrum.AxisKPar, Values: kAxis},
		{Name: spectrum.AxisKz, Values: kzAxis},
	}, attrs)
	if err != nil {
		return nil, nil, err
	}
	for _, line := range s.History() {
		res.AppendHistory(line)
	}
	res.AppendHistory(fmt.Sprintf(
		"kz conversion applied (type %s analyser, V0 = %g eV, dk = %.4g /Å)",
		g.Type, v0, dk))

	res, err = applyEVWindow(res, opts)
	if err != nil {
		return nil, nil, err
	}
	res, err = applyKWindow(res, opts)

	return res, warns, err
}

// kzOf evaluates the free-electron final-state kz; NaN when the state lies
// outside the final-state sphere.
func kzOf(hv, wf, be, kPar, v0 float64) float64 {
	c := geometry.KvacConst
	arg := v0 + hv - wf + be - (kPar/c)*(kPar/c)
	if arg < 0 {
		return math.NaN()
	}

	return c * math.Sqrt(arg)
}

// clampedInterp returns a piecewise-linear interpolant over (xs, ys) that
// clamps outside the sampled range.
func clampedInterp(xs, ys []float64) func(float64) float64 {
	return func(x float64) float64 {
		n := len(xs)
		if x <= xs[0] {
			return ys[0]
		}
		if x >= xs[n-1] {
			return ys[n-1]
		}
		i, f, _ := locate(xs, x)

		return ys[i] + f*(ys[i+1]-ys[i])
	}
}

// applyKWindow restricts the k_par axis to [KMin, KMax]; equal bounds select
// the single nearest momentum cut.
func applyKWindow(s *spectrum.Spectrum, opts Options) (*spectrum.Spectrum, error) {
	if !isSet(opts.KMin) && !isSet(opts.KMax) {
		return s, nil
	}
	ax, ok := s.Axis(spectrum.AxisKPar)
	if !ok {
		return s, nil
	}

	lo, hi := opts.KMin, opts.KMax
	if !isSet(lo) {
		lo = ax.Values[0]
	}
	if !isSet(hi) {
		hi = ax.Values[ax.Len()-1]
	}
	if lo == hi {
		return s.Select(spectrum.AxisKPar, lo)
	}
	out, err := s.Crop(spectrum.AxisKPar, lo, hi)
	if err != nil {
		return nil, fmt.Errorf("%w: k_par in [%g, %g]", ErrEmptySelection, lo, hi)
	}

	return out, nil
}

// MakeHvScan stacks individually measured dispersions into an hv cube,
// sorting by photon energy and recording each slice's detector offset
// relative to the first in Attrs.KEDeltaVsHv. Every slice must share the
// slit-angle axis and energy pixel count; the cube reuses the first slice's
// energy axis.
func MakeHvScan(slices []*spectrum.Spectrum) (*spectrum.Spectrum, error) {
	if len(slices) < 2 {
		return nil, fmt.Errorf("%w: need at least two slices", ErrMismatchedSlices)
	}

	ordered := append([]*spectrum.Spectrum(nil), slices...)
	for _, sl := range ordered {
		if !sl.Attrs().HasHv() {
			return nil, fmt.Errorf("%w: every slice needs a photon energy", ErrMismatchedSlices)
		}
		if _, ok := sl.Axis(spectrum.AxisEV); !ok {
			return nil, ErrNoEnergyAxis
		}
		if _, ok := sl.Axis(spectrum.AxisThetaPar); !ok {
			return nil, geometry.ErrMissingSlitAxis
		}
	}
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].Attrs().Hv < ordered[b].Attrs().Hv
	})

	first := ordered[0]
	evAxis, _ := first.Axis(spectrum.AxisEV)
	thAxis, _ := first.Axis(spectrum.AxisThetaPar)
	nEv, nTh := evAxis.Len(), thAxis.Len()

	hvs := make([]float64, len(ordered))
	keDelta := make([]float64, len(ordered))
	data := make([]float64, len(ordered)*nEv*nTh)
	for i, sl := range ordered {
		ev, _ := sl.Axis(spectrum.AxisEV)
		th, _ := sl.Axis(spectrum.AxisThetaPar)
		if ev.Len() != nEv || th.Len() != nTh {
			return nil, fmt.Errorf("%w: slice %d has shape (%d, %d), want (%d, %d)",
				ErrMismatchedSlices, i, ev.Len(), th.Len(), nEv, nTh)
		}
		hvs[i] = sl.Attrs().Hv
		keDelta[i] = ev.Values[0] - evAxis.Values[0]

		evIdx := sl.AxisIndex(spectrum.AxisEV)
		thIdx := sl.AxisIndex(spectrum.AxisThetaPar)
		strides := strideTable(sl.Dims())
		src := sl.Data()
		for m := 0; m < nEv; m++ {
			for t := 0; t < nTh; t++ {
				data[(i*nEv+m)*nTh+t] = src[m*strides[evIdx]+t*strides[thIdx]]
			}
		}
	}
	for i := 1; i < len(hvs); i++ {
		if hvs[i] == hvs[i-1] {
			return nil, fmt.Errorf("%w: duplicate photon energy %g eV", ErrMismatchedSlices, hvs[i])
		}
	}

	attrs := first.Attrs()
	attrs.Hv = math.NaN()
	attrs.KEDeltaVsHv = keDelta

	cube, err := spectrum.New(data, []spectrum.Axis{
		{Name: spectrum.AxisHv, Values: hvs},
		{Name: spectrum.AxisEV, Values: evAxis.Values},
		{Name: spectrum.AxisThetaPar, Values: thAxis.Values},
	}, attrs)
	if err != nil {
		return nil, err
	}
	cube.AppendHistory(fmt.Sprintf("hv scan assembled from %d dispersions (%g to %g eV)",
		len(ordered), hvs[0], hvs[len(hvs)-1]))

	return cube, nil
}
