package fermi

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/arpes-go/kspace/spectrum"
)

// AlignHv estimates the Fermi level of every photon-energy slice of an hv
// cube and smooths the estimates with a least-squares polynomial fit of the
// given order over hv. The returned slice is aligned with the hv axis, ready
// to be stored as Attrs.EFvsHv. The per-slice estimates come from the
// derivative method, so the result is always flagged approximate.
func AlignHv(s *spectrum.Spectrum, order int) ([]float64, []spectrum.Warning, error) {
	hvAxis, ok := s.Axis(spectrum.AxisHv)
	if !ok {
		return nil, nil, ErrNoHvAxis
	}
	n := hvAxis.Len()
	if order < 0 {
		order = 0
	}
	if order > n-1 {
		order = n - 1
	}

	efs := make([]float64, n)
	for i, hv := range hvAxis.Values {
		disp, err := s.Select(spectrum.AxisHv, hv)
		if err != nil {
			return nil, nil, err
		}
		ef, _, err := EstimateEF(disp)
		if err != nil {
			return nil, nil, fmt.Errorf("hv = %g eV: %w", hv, err)
		}
		efs[i] = ef
	}

	coeffs, err := polyfit(hvAxis.Values, efs, order)
	if err != nil {
		return nil, nil, err
	}

	out := make([]float64, n)
	for i, hv := range hvAxis.Values {
		out[i] = polyval(coeffs, hv)
	}

	warn := spectrum.Warning{
		Code: WarnApproxAlignment,
		Message: fmt.Sprintf("Fermi level aligned across %d photon energies from the derivative "+
			"estimator (order-%d fit); check carefully for accuracy", n, order),
	}

	return out, []spectrum.Warning{warn}, nil
}

// polyfit solves the least-squares polynomial of the given order through
// (x, y) via QR on the Vandermonde matrix. Coefficients come back ascending.
func polyfit(x, y []float64, order int) ([]float64, error) {
	m := order + 1
	a := mat.NewDense(len(x), m, nil)
	for i, xi := range x {
		p := 1.0
		for j := 0; j < m; j++ {
			a.Set(i, j, p)
			p *= xi
		}
	}

	var qr mat.QR
	qr.Factorize(a)

	var c mat.VecDense
	if err := qr.SolveVecTo(&c, false, mat.NewVecDense(len(y), y)); err != nil {
		return nil, fmt.Errorf("fermi: polynomial fit: %w", err)
	}

	coeffs := make([]float64, m)
	for j := 0; j < m; j++ {
		coeffs[j] = c.AtVec(j)
	}

	return coeffs, nil
}

// polyval evaluates ascending coefficients at x by Horner's rule.
func polyval(coeffs []float64, x float64) float64 {
	v := 0.0
	for i := len(coeffs) - 1; i >= 0; i-- {
		v = v*x + coeffs[i]
	}

	return v
}
