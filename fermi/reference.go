package fermi

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// Reference is a Fermi-level calibration: the detector kinetic energy of
// the Fermi level as a function of slit angle. The three implementations
// are Constant, Poly and Sampled.
type Reference interface {
	// EFAt returns the kinetic energy of the Fermi level at a slit angle
	// (deg).
	EFAt(thetaPar float64) float64
	// AngleDependent reports whether EF varies along the slit.
	AngleDependent() bool
	// Describe returns a short label for provenance strings.
	Describe() string
}

// Constant is a rigid Fermi level: the same kinetic energy at every slit
// angle.
type Constant float64

// EFAt implements Reference.
func (c Constant) EFAt(float64) float64 { return float64(c) }

// AngleDependent implements Reference.
func (Constant) AngleDependent() bool { return false }

// Describe implements Reference.
func (c Constant) Describe() string { return fmt.Sprintf("rigid shift (EF = %g eV)", float64(c)) }

// Poly is a polynomial Fermi-level curvature in theta_par with ascending
// coefficients c0..c3. Quadratic and cubic fits are what gold references
// produce in practice; higher orders are rejected.
type Poly []float64

// NewPoly validates the coefficient list: one to four ascending
// coefficients (constant through cubic).
func NewPoly(coeffs ...float64) (Poly, error) {
	if len(coeffs) == 0 || len(coeffs) > 4 {
		return nil, fmt.Errorf("%w: polynomial needs 1-4 coefficients, got %d", ErrBadReference, len(coeffs))
	}

	return Poly(append([]float64(nil), coeffs...)), nil
}

// EFAt implements Reference via Horner's rule.
func (p Poly) EFAt(thetaPar float64) float64 {
	ef := 0.0
	for i := len(p) - 1; i >= 0; i-- {
		ef = ef*thetaPar + p[i]
	}

	return ef
}

// AngleDependent implements Reference.
func (p Poly) AngleDependent() bool {
	for _, c := range p[1:] {
		if c != 0 {
			return true
		}
	}

	return false
}

// Describe implements Reference.
func (p Poly) Describe() string {
	if len(p) == 4 && p[3] != 0 {
		return "cubic fit"
	}

	return "quadratic fit"
}

// Sampled is a measured Fermi level per slit angle, as produced by a gold
// reference scan. Between samples it interpolates linearly; beyond the
// sampled range it extrapolates with the end-segment slope.
type Sampled struct {
	angles []float64
	efs    []float64
	pl     interp.PiecewiseLinear
}

// NewSampled builds a Sampled reference from parallel angle/EF slices. The
// angles must be strictly increasing and at least two samples long.
func NewSampled(angles, efs []float64) (*Sampled, error) {
	if len(angles) < 2 || len(angles) != len(efs) {
		return nil, fmt.Errorf("%w: need ≥2 matched angle/EF samples, got %d/%d",
			ErrBadReference, len(angles), len(efs))
	}
	if !sort.Float64sAreSorted(angles) {
		return nil, fmt.Errorf("%w: angles must be sorted increasing", ErrBadReference)
	}

	s := &Sampled{
		angles: append([]float64(nil), angles...),
		efs:    append([]float64(nil), efs...),
	}
	if err := s.pl.Fit(s.angles, s.efs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadReference, err)
	}

	return s, nil
}

// EFAt implements Reference. gonum's piecewise-linear predictor clamps
// outside the fitted range, so the end segments are extended by hand.
func (s *Sampled) EFAt(thetaPar float64) float64 {
	n := len(s.angles)
	switch {
	case thetaPar < s.angles[0]:
		slope := (s.efs[1] - s.efs[0]) / (s.angles[1] - s.angles[0])
		return s.efs[0] + slope*(thetaPar-s.angles[0])
	case thetaPar > s.angles[n-1]:
		slope := (s.efs[n-1] - s.efs[n-2]) / (s.angles[n-1] - s.angles[n-2])
		return s.efs[n-1] + slope*(thetaPar-s.angles[n-1])
	default:
		return s.pl.Predict(thetaPar)
	}
}

// AngleDependent implements Reference.
func (s *Sampled) AngleDependent() bool {
	for _, ef := range s.efs[1:] {
		if ef != s.efs[0] {
			return true
		}
	}

	return false
}

// Describe implements Reference.
func (s *Sampled) Describe() string { return "sampled array" }

// EFOn evaluates a reference over a whole angle axis.
func EFOn(ref Reference, thetaPar []float64) []float64 {
	out := make([]float64, len(thetaPar))
	for i, th := range thetaPar {
		out[i] = ref.EFAt(th)
	}

	return out
}

// WorkFunction returns the effective work function wf = hv − EF(0°) used to
// translate between kinetic and binding energy.
func WorkFunction(hv float64, ref Reference) (float64, error) {
	if ref == nil {
		return 0, ErrNoReference
	}

	return hv - ref.EFAt(0), nil
}

// BEScale returns the padded binding-energy range (lo, hi, step) covering
// the detector window at every slit angle. The Fermi level may curve across
// the detector; padding by the EF extrema keeps real counts at the edges.
// Binding energy is negative below the Fermi level; hi carries one extra
// step so an arange-style grid includes the top value.
func BEScale(ref Reference, thetaPar, eV []float64) (lo, hi, step float64, err error) {
	if ref == nil {
		return 0, 0, 0, ErrNoReference
	}
	if len(eV) < 2 {
		return 0, 0, 0, ErrNoEnergyAxis
	}

	step = (eV[len(eV)-1] - eV[0]) / float64(len(eV)-1)

	efMin, efMax := ref.EFAt(0), ref.EFAt(0)
	for _, ef := range EFOn(ref, thetaPar) {
		efMin = math.Min(efMin, ef)
		efMax = math.Max(efMax, ef)
	}

	lo = eV[0] - efMax
	hi = eV[len(eV)-1] - efMin + step

	return lo, hi, step, nil
}
