package fermi

import (
	"fmt"
	"math"

	"github.com/arpes-go/kspace/spectrum"
)

// Warning codes reported by the estimators.
const (
	// WarnEstimatedEF flags a Fermi level taken from the derivative
	// estimator rather than a measured reference.
	WarnEstimatedEF spectrum.WarningCode = "fermi/estimated-ef"
	// WarnEstimatedHv flags a photon energy guessed from the Fermi-level
	// position.
	WarnEstimatedHv spectrum.WarningCode = "fermi/estimated-hv"
	// WarnApproxAlignment flags hv-scan alignment built on the derivative
	// estimator.
	WarnApproxAlignment spectrum.WarningCode = "fermi/approximate-alignment"
)

// EstimateEF locates the Fermi edge of a kinetic-energy spectrum from the
// angle-integrated intensity: smooth, differentiate, and take the highest
// energy peak of −dI/dE with prominence above 2.5× the noise floor and a
// half-prominence width of at least three samples. The result is rounded
// to 1 meV and always accompanied by a warning.
func EstimateEF(s *spectrum.Spectrum) (float64, []spectrum.Warning, error) {
	evAxis, ok := s.Axis(spectrum.AxisEV)
	if !ok {
		return 0, nil, ErrNoEnergyAxis
	}

	// Angle-integrated EDC (density of states).
	edc := s
	for _, a := range s.Axes() {
		if a.Name == spectrum.AxisEV {
			continue
		}
		var err error
		edc, err = edc.MeanOver(a.Name)
		if err != nil {
			return 0, nil, err
		}
	}

	ev := evAxis.Values
	y := edc.Data()
	if len(y) < 8 {
		return 0, nil, fmt.Errorf("%w: only %d energy samples", ErrEstimateFailed, len(y))
	}

	// 10 meV gaussian on the EDC, then -dI/dE.
	step := spectrum.Step(ev)
	neg := derivative(ev, gaussianSmooth(y, 0.01/math.Abs(step)))
	for i := range neg {
		neg[i] = -neg[i]
	}
	smooth := gaussianSmooth(neg, 3)

	noise := 0.0
	for i := 1; i < len(neg); i++ {
		noise += math.Abs(neg[i] - neg[i-1])
	}
	noise /= float64(len(neg) - 1)

	ef := math.Inf(-1)
	for _, p := range findPeaks(smooth, 2.5*noise, 3) {
		ef = math.Max(ef, ev[p])
	}
	if math.IsInf(ef, -1) {
		return 0, nil, ErrEstimateFailed
	}
	ef = math.Round(ef*1000) / 1000

	warn := spectrum.Warning{
		Code:    WarnEstimatedEF,
		Message: fmt.Sprintf("Fermi level estimated from derivative peak at %g eV; may not be accurate", ef),
	}

	return ef, []spectrum.Warning{warn}, nil
}

// EstimateHv guesses the photon energy from the kinetic energy of the
// Fermi level, recognising the common lab sources, else assuming a 4.4 eV
// work function. The description names the assumption for the warning text.
func EstimateHv(ef float64) (hv float64, desc string) {
	switch {
	case ef > 16.5 && ef < 17:
		return 21.2182, "He I"
	case ef > 1 && ef < 2:
		return 6.05, "6 eV laser"
	case ef > 6 && ef < 7:
		return 10.897, "11 eV laser"
	default:
		return ef + 4.4, "EF + 4.4 eV assumed work function"
	}
}

// gaussianSmooth convolves v with a truncated (3σ) gaussian kernel, sigma
// in samples. Edges renormalise over the in-range kernel weight.
func gaussianSmooth(v []float64, sigma float64) []float64 {
	out := make([]float64, len(v))
	if sigma <= 0 {
		copy(out, v)
		return out
	}

	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float64, 2*radius+1)
	for i := range kernel {
		x := float64(i - radius)
		kernel[i] = math.Exp(-x * x / (2 * sigma * sigma))
	}

	for i := range v {
		sum, wsum := 0.0, 0.0
		for k, w := range kernel {
			j := i + k - radius
			if j < 0 || j >= len(v) {
				continue
			}
			sum += w * v[j]
			wsum += w
		}
		out[i] = sum / wsum
	}

	return out
}

// derivative returns dy/dx by central differences with one-sided edges.
func derivative(x, y []float64) []float64 {
	n := len(y)
	out := make([]float64, n)
	out[0] = (y[1] - y[0]) / (x[1] - x[0])
	out[n-1] = (y[n-1] - y[n-2]) / (x[n-1] - x[n-2])
	for i := 1; i < n-1; i++ {
		out[i] = (y[i+1] - y[i-1]) / (x[i+1] - x[i-1])
	}

	return out
}

// findPeaks returns indices of local maxima with prominence ≥ minProm and
// half-prominence width ≥ minWidth samples.
func findPeaks(v []float64, minProm float64, minWidth int) []int {
	var peaks []int
	for i := 1; i < len(v)-1; i++ {
		if !(v[i] > v[i-1] && v[i] >= v[i+1]) {
			continue
		}

		prom := prominence(v, i)
		if prom < minProm {
			continue
		}

		// Contiguous run above the half-prominence level around the peak.
		level := v[i] - prom/2
		width := 1
		for j := i - 1; j >= 0 && v[j] >= level; j-- {
			width++
		}
		for j := i + 1; j < len(v) && v[j] >= level; j++ {
			width++
		}
		if width >= minWidth {
			peaks = append(peaks, i)
		}
	}

	return peaks
}

// prominence is the height of peak i above the higher of the two valley
// floors separating it from taller terrain (or the data edge).
func prominence(v []float64, i int) float64 {
	leftMin := v[i]
	for j := i - 1; j >= 0; j-- {
		if v[j] > v[i] {
			break
		}
		leftMin = math.Min(leftMin, v[j])
	}

	rightMin := v[i]
	for j := i + 1; j < len(v); j++ {
		if v[j] > v[i] {
			break
		}
		rightMin = math.Min(rightMin, v[j])
	}

	return v[i] - math.Max(leftMin, rightMin)
}
