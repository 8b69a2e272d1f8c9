package spectrum

import (
	"fmt"
	"math"
)

// Spectrum is a dense N-dimensional intensity array with named coordinate
// axes. The data buffer is row-major with the last axis varying fastest.
// A Spectrum is owned by its creator; conversion stages never mutate one in
// place and always return a freshly built value.
type Spectrum struct {
	data    []float64
	axes    []Axis
	attrs   Attrs
	history []string
}

// New builds a Spectrum from a row-major buffer and its axes, validating the
// shape and the axis invariants:
//
//   - axis names are unique and non-empty,
//   - every axis is strictly monotonic (decreasing axes are reversed,
//     together with the data, so stored axes are always increasing),
//   - at most one energy axis and at most one angular mapping axis.
//
// The buffer and axis slices are copied; the caller keeps ownership of its
// arguments.
func New(data []float64, axes []Axis, attrs Attrs) (*Spectrum, error) {
	if len(data) == 0 {
		return nil, ErrEmptySpectrum
	}

	size := 1
	seen := make(map[string]bool, len(axes))
	nMapping, nEnergy := 0, 0
	for _, ax := range axes {
		if ax.Len() == 0 {
			return nil, fmt.Errorf("%w: %q", ErrEmptyAxis, ax.Name)
		}
		if seen[ax.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateAxis, ax.Name)
		}
		seen[ax.Name] = true
		if IsMappingAxis(ax.Name) {
			nMapping++
		}
		if ax.Name == AxisEV {
			nEnergy++
		}
		size *= ax.Len()
	}
	if size != len(data) {
		return nil, fmt.Errorf("%w: have %d values, axes imply %d", ErrShapeMismatch, len(data), size)
	}
	if nMapping > 1 {
		return nil, ErrMultipleMappingAxes
	}
	if nEnergy > 1 {
		return nil, ErrMultipleEnergyAxes
	}

	s := &Spectrum{
		data:  append([]float64(nil), data...),
		axes:  make([]Axis, len(axes)),
		attrs: attrs,
	}
	for i, ax := range axes {
		s.axes[i] = Axis{Name: ax.Name, Values: append([]float64(nil), ax.Values...)}
	}

	// Normalise: reverse any decreasing axis together with the data so every
	// stored axis is strictly increasing.
	for d, ax := range s.axes {
		switch direction(ax.Values) {
		case 1:
			// already increasing
		case -1:
			reverseFloats(s.axes[d].Values)
			s.reverseAlong(d)
		default:
			return nil, fmt.Errorf("%w: %q", ErrAxisNotMonotonic, ax.Name)
		}
	}

	return s, nil
}

// direction reports +1 for strictly increasing, -1 for strictly decreasing
// and 0 otherwise. Single-sample axes count as increasing.
func direction(v []float64) int {
	if len(v) < 2 {
		return 1
	}
	inc, dec := true, true
	for i := 1; i < len(v); i++ {
		if v[i] <= v[i-1] {
			inc = false
		}
		if v[i] >= v[i-1] {
			dec = false
		}
	}
	switch {
	case inc:
		return 1
	case dec:
		return -1
	default:
		return 0
	}
}

func reverseFloats(v []float64) {
	for l, r := 0, len(v)-1; l < r; l, r = l+1, r-1 {
		v[l], v[r] = v[r], v[l]
	}
}

// reverseAlong flips the data buffer along axis d in place.
func (s *Spectrum) reverseAlong(d int) {
	dims := s.Dims()
	strides := rowMajorStrides(dims)
	n := dims[d]

	// Iterate over every line along axis d and reverse it.
	outer := len(s.data) / n
	idx := make([]int, len(dims))
	for line := 0; line < outer; line++ {
		// Decode line number into indices of all axes except d.
		rem := line
		for i := len(dims) - 1; i >= 0; i-- {
			if i == d {
				continue
			}
			idx[i] = rem % dims[i]
			rem /= dims[i]
		}
		base := 0
		for i, v := range idx {
			if i != d {
				base += v * strides[i]
			}
		}
		for l, r := 0, n-1; l < r; l, r = l+1, r-1 {
			lo, hi := base+l*strides[d], base+r*strides[d]
			s.data[lo], s.data[hi] = s.data[hi], s.data[lo]
		}
	}
}

// rowMajorStrides returns element strides for a row-major layout.
func rowMajorStrides(dims []int) []int {
	strides := make([]int, len(dims))
	acc := 1
	for i := len(dims) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= dims[i]
	}

	return strides
}

// Data returns the live row-major buffer. Read-only by convention: mutating
// it bypasses the engine's copy-on-convert guarantees.
func (s *Spectrum) Data() []float64 { return s.data }

// Dims returns the axis lengths in storage order.
func (s *Spectrum) Dims() []int {
	dims := make([]int, len(s.axes))
	for i, ax := range s.axes {
		dims[i] = ax.Len()
	}

	return dims
}

// NDim returns the number of axes.
func (s *Spectrum) NDim() int { return len(s.axes) }

// Size returns the total number of intensity samples.
func (s *Spectrum) Size() int { return len(s.data) }

// Axes returns the axis headers in storage order. The Values slices are the
// live coordinate arrays; treat them as read-only.
func (s *Spectrum) Axes() []Axis { return append([]Axis(nil), s.axes...) }

// Axis returns the named axis, or false when absent.
func (s *Spectrum) Axis(name string) (Axis, bool) {
	for _, ax := range s.axes {
		if ax.Name == name {
			return ax, true
		}
	}

	return Axis{}, false
}

// AxisIndex returns the storage position of the named axis, or -1.
func (s *Spectrum) AxisIndex(name string) int {
	for i, ax := range s.axes {
		if ax.Name == name {
			return i
		}
	}

	return -1
}

// MappingAxis returns the angular mapping axis of a 3D map, or false for a
// plain dispersion.
func (s *Spectrum) MappingAxis() (Axis, bool) {
	for _, ax := range s.axes {
		if IsMappingAxis(ax.Name) {
			return ax, true
		}
	}

	return Axis{}, false
}

// At returns the intensity at the given per-axis indices.
func (s *Spectrum) At(idx ...int) float64 {
	if len(idx) != len(s.axes) {
		panic("spectrum: At called with wrong number of indices")
	}
	strides := rowMajorStrides(s.Dims())
	off := 0
	for i, v := range idx {
		off += v * strides[i]
	}

	return s.data[off]
}

// Attrs returns a copy of the acquisition metadata.
func (s *Spectrum) Attrs() Attrs { return s.attrs }

// SetAttrs replaces the acquisition metadata. Intended for callers preparing
// a spectrum for conversion (e.g. filling in manipulator angles); the engine
// itself never mutates an input.
func (s *Spectrum) SetAttrs(a Attrs) { s.attrs = a }

// Clone returns a deep copy, history included.
func (s *Spectrum) Clone() *Spectrum {
	c := &Spectrum{
		data:    append([]float64(nil), s.data...),
		axes:    make([]Axis, len(s.axes)),
		attrs:   s.attrs,
		history: append([]string(nil), s.history...),
	}
	for i, ax := range s.axes {
		c.axes[i] = Axis{Name: ax.Name, Values: append([]float64(nil), ax.Values...)}
	}
	c.attrs.EFvsHv = append([]float64(nil), s.attrs.EFvsHv...)
	c.attrs.KEDeltaVsHv = append([]float64(nil), s.attrs.KEDeltaVsHv...)

	return c
}

// AppendHistory records a human-readable provenance line.
func (s *Spectrum) AppendHistory(line string) { s.history = append(s.history, line) }

// History returns the provenance lines recorded so far.
func (s *Spectrum) History() []string { return append([]string(nil), s.history...) }

// Min returns the smallest finite intensity, or NaN when none exists.
func (s *Spectrum) Min() float64 {
	min := math.Inf(1)
	found := false
	for _, v := range s.data {
		if math.IsNaN(v) {
			continue
		}
		found = true
		if v < min {
			min = v
		}
	}
	if !found {
		return math.NaN()
	}

	return min
}
