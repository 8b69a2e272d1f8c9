package spectrum

import (
	"fmt"
	"math"
)

// Select extracts the slice nearest to value along the named axis, dropping
// that axis from the result.
func (s *Spectrum) Select(axis string, value float64) (*Spectrum, error) {
	d := s.AxisIndex(axis)
	if d < 0 {
		return nil, fmt.Errorf("%w: %q", ErrAxisNotFound, axis)
	}
	i := NearestIndex(s.axes[d].Values, value)

	out := s.take(d, i, i)
	out = out.dropAxis(d)
	out.AppendHistory(fmt.Sprintf("Selected %s = %g (nearest sample %g)", axis, value, s.axes[d].Values[i]))

	return out, nil
}

// Crop restricts the named axis to the closed interval [min, max].
func (s *Spectrum) Crop(axis string, min, max float64) (*Spectrum, error) {
	d := s.AxisIndex(axis)
	if d < 0 {
		return nil, fmt.Errorf("%w: %q", ErrAxisNotFound, axis)
	}
	lo, hi, ok := rangeIndices(s.axes[d].Values, min, max)
	if !ok {
		return nil, fmt.Errorf("%w: %s in [%g, %g]", ErrEmptyRange, axis, min, max)
	}

	out := s.take(d, lo, hi)
	out.AppendHistory(fmt.Sprintf("Cropped %s to [%g, %g]", axis, min, max))

	return out, nil
}

// MeanOver averages the data over the named axis, dropping it from the
// result. NaN samples are excluded from each mean; all-NaN cells stay NaN.
func (s *Spectrum) MeanOver(axis string) (*Spectrum, error) {
	return s.reduce(axis, true)
}

// SumOver integrates the data over the named axis, dropping it from the
// result. NaN samples are treated as zero.
func (s *Spectrum) SumOver(axis string) (*Spectrum, error) {
	return s.reduce(axis, false)
}

// Squeeze drops every length-1 axis.
func (s *Spectrum) Squeeze() *Spectrum {
	out := s.Clone()
	for d := len(out.axes) - 1; d >= 0; d-- {
		if out.axes[d].Len() == 1 {
			out = out.dropAxis(d)
		}
	}

	return out
}

// take copies the sub-buffer with axis d restricted to [lo, hi] inclusive.
func (s *Spectrum) take(d, lo, hi int) *Spectrum {
	dims := s.Dims()
	strides := rowMajorStrides(dims)
	nKeep := hi - lo + 1

	outDims := append([]int(nil), dims...)
	outDims[d] = nKeep
	outData := make([]float64, product(outDims))

	idx := make([]int, len(dims))
	for o := range outData {
		rem := o
		for i := len(outDims) - 1; i >= 0; i-- {
			idx[i] = rem % outDims[i]
			rem /= outDims[i]
		}
		src := 0
		for i, v := range idx {
			if i == d {
				src += (v + lo) * strides[i]
			} else {
				src += v * strides[i]
			}
		}
		outData[o] = s.data[src]
	}

	out := &Spectrum{
		data:    outData,
		axes:    make([]Axis, len(s.axes)),
		attrs:   s.attrs,
		history: append([]string(nil), s.history...),
	}
	for i, ax := range s.axes {
		vals := ax.Values
		if i == d {
			vals = vals[lo : hi+1]
		}
		out.axes[i] = Axis{Name: ax.Name, Values: append([]float64(nil), vals...)}
	}

	return out
}

// dropAxis removes a length-1 axis header. The buffer is unchanged.
func (s *Spectrum) dropAxis(d int) *Spectrum {
	if s.axes[d].Len() != 1 {
		panic("spectrum: dropAxis on axis with length != 1")
	}
	s.axes = append(s.axes[:d], s.axes[d+1:]...)

	return s
}

// reduce collapses axis d by mean or sum.
func (s *Spectrum) reduce(axis string, mean bool) (*Spectrum, error) {
	d := s.AxisIndex(axis)
	if d < 0 {
		return nil, fmt.Errorf("%w: %q", ErrAxisNotFound, axis)
	}

	dims := s.Dims()
	strides := rowMajorStrides(dims)
	n := dims[d]

	outDims := make([]int, 0, len(dims)-1)
	for i, v := range dims {
		if i != d {
			outDims = append(outDims, v)
		}
	}
	outData := make([]float64, product(outDims))

	idx := make([]int, len(dims))
	for o := range outData {
		rem := o
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
		sum, count := 0.0, 0
		for j := 0; j < n; j++ {
			v := s.data[base+j*strides[d]]
			if math.IsNaN(v) {
				continue
			}
			sum += v
			count++
		}
		switch {
		case count == 0:
			outData[o] = math.NaN()
		case mean:
			outData[o] = sum / float64(count)
		default:
			outData[o] = sum
		}
	}

	out := &Spectrum{
		data:    outData,
		axes:    make([]Axis, 0, len(s.axes)-1),
		attrs:   s.attrs,
		history: append([]string(nil), s.history...),
	}
	for i, ax := range s.axes {
		if i == d {
			continue
		}
		out.axes = append(out.axes, Axis{Name: ax.Name, Values: append([]float64(nil), ax.Values...)})
	}
	op := "Summed"
	if mean {
		op = "Averaged"
	}
	out.AppendHistory(fmt.Sprintf("%s over %s (%d samples)", op, axis, n))

	return out, nil
}

func product(dims []int) int {
	p := 1
	for _, v := range dims {
		p *= v
	}

	return p
}
