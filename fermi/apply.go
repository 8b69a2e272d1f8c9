package fermi

import (
	"math"
	"sort"

	"github.com/arpes-go/kspace/spectrum"
)

// ApplyBE rewrites the eV axis of a kinetic-energy spectrum to binding
// energy (negative below the Fermi level). A constant reference is a pure
// axis shift. An angle-dependent reference curves across the detector, so
// the axis is shifted by the largest EF (cropping only above the Fermi
// level) and every energy curve is resampled onto the common scale; cells
// that fall below the measured window come back NaN.
func ApplyBE(s *spectrum.Spectrum, ref Reference) (*spectrum.Spectrum, []spectrum.Warning, error) {
	if ref == nil {
		return nil, nil, ErrNoReference
	}
	if s.Attrs().EVType == spectrum.BindingEnergy {
		return nil, nil, ErrAlreadyBinding
	}
	evAxis, ok := s.Axis(spectrum.AxisEV)
	if !ok {
		return nil, nil, ErrNoEnergyAxis
	}

	if !ref.AngleDependent() {
		out, err := shiftEVAxis(s, ref.EFAt(0))
		if err != nil {
			return nil, nil, err
		}
		out.AppendHistory("Fermi level corrected by " + ref.Describe())

		return out, nil, nil
	}

	slit, ok := s.Axis(spectrum.AxisThetaPar)
	if !ok {
		return nil, nil, ErrNoSlitAxis
	}

	efs := EFOn(ref, slit.Values)
	shift := efs[0]
	for _, ef := range efs[1:] {
		shift = math.Max(shift, ef)
	}

	evIdx := s.AxisIndex(spectrum.AxisEV)
	thIdx := s.AxisIndex(spectrum.AxisThetaPar)
	dims := s.Dims()
	strides := rowMajorStrides(dims)
	ev := evAxis.Values
	data := s.Data()

	resampled := make([]float64, len(data))
	for flat := range resampled {
		rem := flat
		m, t := 0, 0
		for d := range dims {
			idx := rem / strides[d]
			rem %= strides[d]
			switch d {
			case evIdx:
				m = idx
			case thIdx:
				t = idx
			}
		}

		// Sample the original kinetic-energy curve at the energy that maps
		// onto this binding-energy cell for this slit angle.
		target := ev[m] + (efs[t] - shift)
		resampled[flat] = interpLane(data, flat-m*strides[evIdx], strides[evIdx], ev, target)
	}

	axes := copyAxes(s.Axes())
	for i := range axes[evIdx].Values {
		axes[evIdx].Values[i] -= shift
	}
	attrs := s.Attrs()
	attrs.EVType = spectrum.BindingEnergy

	out, err := spectrum.New(resampled, axes, attrs)
	if err != nil {
		return nil, nil, err
	}
	for _, h := range s.History() {
		out.AppendHistory(h)
	}
	out.AppendHistory("Fermi level corrected by " + ref.Describe())

	return out, nil, nil
}

// shiftEVAxis clones the spectrum with eV − shift as the new energy axis
// and the eV type flipped to binding.
func shiftEVAxis(s *spectrum.Spectrum, shift float64) (*spectrum.Spectrum, error) {
	evIdx := s.AxisIndex(spectrum.AxisEV)
	axes := copyAxes(s.Axes())
	for i := range axes[evIdx].Values {
		axes[evIdx].Values[i] -= shift
	}

	attrs := s.Attrs()
	attrs.EVType = spectrum.BindingEnergy

	out, err := spectrum.New(append([]float64(nil), s.Data()...), axes, attrs)
	if err != nil {
		return nil, err
	}
	for _, h := range s.History() {
		out.AppendHistory(h)
	}

	return out, nil
}

// copyAxes deep-copies axis value slices so they can be rewritten.
func copyAxes(axes []spectrum.Axis) []spectrum.Axis {
	out := make([]spectrum.Axis, len(axes))
	for i, a := range axes {
		out[i] = spectrum.Axis{Name: a.Name, Values: append([]float64(nil), a.Values...)}
	}

	return out
}

// rowMajorStrides returns element strides for a row-major layout.
func rowMajorStrides(dims []int) []int {
	strides := make([]int, len(dims))
	acc := 1
	for d := len(dims) - 1; d >= 0; d-- {
		strides[d] = acc
		acc *= dims[d]
	}

	return strides
}

// interpLane linearly interpolates a strided lane of data at x on the
// increasing grid xs. Outside the grid it returns NaN.
func interpLane(data []float64, base, stride int, xs []float64, x float64) float64 {
	n := len(xs)
	if x < xs[0] || x > xs[n-1] {
		return math.NaN()
	}

	j := sort.SearchFloat64s(xs, x)
	if j == 0 {
		return data[base]
	}
	if j >= n {
		j = n - 1
	}

	x0, x1 := xs[j-1], xs[j]
	f := (x - x0) / (x1 - x0)
	v0 := data[base+(j-1)*stride]
	v1 := data[base+j*stride]

	return v0 + f*(v1-v0)
}
