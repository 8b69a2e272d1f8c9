package kconv

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/arpes-go/kspace/geometry"
)

// kPerpVarianceThreshold separates "near-constant perpendicular momentum,
// attach as metadata" from "the cut is not a constant-k_perp slice, warn"
// (in Å⁻²).
const kPerpVarianceThreshold = 1e-4

// kBounds holds momentum extrema from a forward sweep over the sampled
// angles, plus the statistics of the component perpendicular to the slit.
type kBounds struct {
	slitMin, slitMax float64
	perpMin, perpMax float64

	perpMean, perpVar float64
}

// sweepBounds evaluates the forward map at every sampled angle pair at both
// kinetic-energy extremes and accumulates the component extrema. k scales
// monotonically with √KE at fixed angle, so the energy endpoints bound the
// full range and every sampled source point lands inside the result.
func sweepBounds(g *geometry.Geometry, ekMin, ekMax float64) kBounds {
	n := 2 * len(g.Alpha) * len(g.Beta)
	slit := make([]float64, 0, n)
	perp := make([]float64, 0, n)
	for _, ek := range []float64{ekMin, ekMax} {
		for _, alpha := range g.Alpha {
			for _, beta := range g.Beta {
				kx, ky := g.Forward(ek, alpha, beta)
				slit = append(slit, g.KAlongSlit(kx, ky))
				perp = append(perp, g.KPerpToSlit(kx, ky))
			}
		}
	}

	return kBounds{
		slitMin: floats.Min(slit), slitMax: floats.Max(slit),
		perpMin: floats.Min(perp), perpMax: floats.Max(perp),

		perpMean: stat.Mean(perp, nil),
		perpVar:  stat.Variance(perp, nil),
	}
}

// axisRange builds an evenly spaced grid from lo with step dk whose last
// value is ≥ hi, so every bounded momentum stays on the grid.
func axisRange(lo, hi, dk float64) []float64 {
	n := int(math.Ceil((hi-lo)/dk-1e-9)) + 1
	if n < 2 {
		n = 2
	}

	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*dk
	}

	return out
}
