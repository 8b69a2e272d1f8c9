package kconv

import (
	"math"
	"sort"
)

// locate finds the lower bracket index and fractional position of x on the
// increasing grid xs. ok is false outside the grid; interpolation then
// yields NaN rather than extrapolating.
func locate(xs []float64, x float64) (i int, f float64, ok bool) {
	n := len(xs)
	if n < 2 || x < xs[0] || x > xs[n-1] {
		return 0, 0, false
	}

	j := sort.SearchFloat64s(xs, x)
	if j == 0 {
		return 0, 0, true
	}
	if j >= n {
		j = n - 1
	}

	return j - 1, (x - xs[j-1]) / (xs[j] - xs[j-1]), true
}

// lerp1 samples a strided lane at x.
func lerp1(data []float64, base, stride int, xs []float64, x float64) float64 {
	i, f, ok := locate(xs, x)
	if !ok {
		return math.NaN()
	}

	v0 := data[base+i*stride]
	v1 := data[base+(i+1)*stride]

	return v0 + f*(v1-v0)
}

// lerp2 bilinearly samples a flat array with strides (sx, sy) over the
// increasing axes (xs, ys).
func lerp2(data []float64, sx, sy int, xs, ys []float64, x, y float64) float64 {
	i, fx, ok := locate(xs, x)
	if !ok {
		return math.NaN()
	}
	j, fy, ok := locate(ys, y)
	if !ok {
		return math.NaN()
	}

	b := i*sx + j*sy
	v00 := data[b]
	v01 := data[b+sy]
	v10 := data[b+sx]
	v11 := data[b+sx+sy]

	lo := v00 + fy*(v01-v00)
	hi := v10 + fy*(v11-v10)

	return lo + fx*(hi-lo)
}

// lerp3 trilinearly samples a flat array with strides (sx, sy, sz) over the
// increasing axes (xs, ys, zs).
func lerp3(data []float64, sx, sy, sz int, xs, ys, zs []float64, x, y, z float64) float64 {
	i, fx, ok := locate(xs, x)
	if !ok {
		return math.NaN()
	}
	j, fy, ok := locate(ys, y)
	if !ok {
		return math.NaN()
	}
	k, fz, ok := locate(zs, z)
	if !ok {
		return math.NaN()
	}

	b := i*sx + j*sy + k*sz
	c000 := data[b]
	c001 := data[b+sz]
	c010 := data[b+sy]
	c011 := data[b+sy+sz]
	c100 := data[b+sx]
	c101 := data[b+sx+sz]
	c110 := data[b+sx+sy]
	c111 := data[b+sx+sy+sz]

	c00 := c000 + fz*(c001-c000)
	c01 := c010 + fz*(c011-c010)
	c10 := c100 + fz*(c101-c100)
	c11 := c110 + fz*(c111-c110)

	c0 := c00 + fy*(c01-c00)
	c1 := c10 + fy*(c11-c10)

	return c0 + fx*(c1-c0)
}
