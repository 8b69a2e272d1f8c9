package spectrum

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// BinSpec maps axis names to integer block factors for block-mean binning.
type BinSpec map[string]int

// Boundary selects how Bin treats a trailing block that does not divide the
// axis length evenly.
type Boundary int

const (
	// PadBoundary keeps the partial trailing block, averaging over the
	// samples it actually contains. Output length is ceil(n/factor).
	PadBoundary Boundary = iota
	// TrimBoundary drops the partial trailing block. Output length is
	// floor(n/factor).
	TrimBoundary
)

// Bin applies block-mean averaging with the given per-axis factors. Axes not
// named in the spec are left untouched. The binned coordinate of each block
// is the mean of the source coordinates it covers.
//
// Returns ErrBadBinFactor for factors < 1 and ErrAxisNotFound for unknown
// axis names. A factor of 1 on every axis returns a plain clone.
func (s *Spectrum) Bin(spec BinSpec, boundary Boundary) (*Spectrum, error) {
	factors := make([]int, len(s.axes))
	for i := range factors {
		factors[i] = 1
	}
	for name, f := range spec {
		d := s.AxisIndex(name)
		if d < 0 {
			return nil, fmt.Errorf("%w: %q", ErrAxisNotFound, name)
		}
		if f < 1 {
			return nil, fmt.Errorf("%w: %s=%d", ErrBadBinFactor, name, f)
		}
		factors[d] = f
	}

	out := s.Clone()
	for d := range factors {
		if factors[d] > 1 {
			out = out.binAxis(d, factors[d], boundary)
		}
	}
	out.AppendHistory("Data binning applied: " + formatBinSpec(spec))

	return out, nil
}

// binAxis collapses blocks of length f along axis d.
func (s *Spectrum) binAxis(d, f int, boundary Boundary) *Spectrum {
	dims := s.Dims()
	strides := rowMajorStrides(dims)
	n := dims[d]

	nOut := n / f
	if boundary == PadBoundary && n%f != 0 {
		nOut++
	}
	if nOut == 0 {
		nOut = 1 // trim may not eliminate the axis entirely
	}

	outDims := append([]int(nil), dims...)
	outDims[d] = nOut
	outData := make([]float64, product(outDims))

	idx := make([]int, len(dims))
	for o := range outData {
		rem := o
		for i := len(outDims) - 1; i >= 0; i-- {
			idx[i] = rem % outDims[i]
			rem /= outDims[i]
		}
		base := 0
		for i, v := range idx {
			if i != d {
				base += v * strides[i]
			}
		}
		start := idx[d] * f
		end := start + f
		if end > n {
			end = n
		}
		sum, count := 0.0, 0
		for j := start; j < end; j++ {
			v := s.data[base+j*strides[d]]
			if math.IsNaN(v) {
				continue
			}
			sum += v
			count++
		}
		if count == 0 {
			outData[o] = math.NaN()
		} else {
			outData[o] = sum / float64(count)
		}
	}

	outVals := make([]float64, nOut)
	for i := range outVals {
		start := i * f
		end := start + f
		if end > n {
			end = n
		}
		sum := 0.0
		for j := start; j < end; j++ {
			sum += s.axes[d].Values[j]
		}
		outVals[i] = sum / float64(end-start)
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
			vals = outVals
		}
		out.axes[i] = Axis{Name: ax.Name, Values: append([]float64(nil), vals...)}
	}

	return out
}

// formatBinSpec renders a BinSpec deterministically for history lines.
func formatBinSpec(spec BinSpec) string {
	names := make([]string, 0, len(spec))
	for name := range spec {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %d", name, spec[name])
	}

	return "{" + strings.Join(parts, ", ") + "}"
}
