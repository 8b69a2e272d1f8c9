package fermi_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arpes-go/kspace/fermi"
	"github.com/arpes-go/kspace/spectrum"
)

// rampDispersion builds an eV × theta_par spectrum whose intensity equals
// the kinetic energy, so resampling results can be checked analytically.
func rampDispersion(t *testing.T, eV, theta []float64) *spectrum.Spectrum {
	t.Helper()

	data := make([]float64, len(eV)*len(theta))
	for i, e := range eV {
		for j := range theta {
			data[i*len(theta)+j] = e
		}
	}

	a := spectrum.NewAttrs()
	a.Hv = 21.2182
	s, err := spectrum.New(data,
		[]spectrum.Axis{
			{Name: spectrum.AxisEV, Values: eV},
			{Name: spectrum.AxisThetaPar, Values: theta},
		}, a)
	require.NoError(t, err)

	return s
}

func evenly(from, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + float64(i)*step
	}

	return out
}

func TestApplyBERigidShift(t *testing.T) {
	eV := evenly(16.0, 0.05, 21)
	theta := []float64{-10, -5, 0, 5, 10}
	s := rampDispersion(t, eV, theta)

	out, warns, err := fermi.ApplyBE(s, fermi.Constant(16.9))
	require.NoError(t, err)
	assert.Empty(t, warns)

	assert.Equal(t, spectrum.BindingEnergy, out.Attrs().EVType)
	be, ok := out.Axis(spectrum.AxisEV)
	require.True(t, ok)
	assert.InDelta(t, -0.9, be.Values[0], 1e-12)
	assert.InDelta(t, 0.1, be.Values[20], 1e-12)

	// Rigid shift never touches the counts.
	assert.Equal(t, s.Data(), out.Data())
	require.NotEmpty(t, out.History())
	assert.Contains(t, out.History()[len(out.History())-1], "rigid shift")
}

func TestApplyBECurvedReference(t *testing.T) {
	eV := evenly(16.0, 0.05, 21)
	theta := []float64{-10, -5, 0, 5, 10}
	s := rampDispersion(t, eV, theta)

	// EF = 16.5 + 1e-3·θ²: 16.5 at centre, 16.6 at the detector edges.
	ref, err := fermi.NewPoly(16.5, 0, 1e-3)
	require.NoError(t, err)

	out, _, err := fermi.ApplyBE(s, ref)
	require.NoError(t, err)
	assert.Equal(t, spectrum.BindingEnergy, out.Attrs().EVType)

	// Axis shifted by the maximum EF so only data above EF gets cropped.
	be, ok := out.Axis(spectrum.AxisEV)
	require.True(t, ok)
	assert.InDelta(t, 16.0-16.6, be.Values[0], 1e-12)

	// At the detector edge EF equals the shift, so the column is untouched.
	edge := out.At(10, 0)
	assert.InDelta(t, eV[10], edge, 1e-9)

	// At the centre every cell samples the original ramp at E + EF(0) − max EF.
	centre := out.At(10, 2)
	assert.InDelta(t, eV[10]-0.1, centre, 1e-9)

	// The bottom of the centre column falls below the measured window.
	assert.True(t, math.IsNaN(out.At(0, 2)))
	assert.False(t, math.IsNaN(out.At(0, 0)))
}

func TestApplyBEErrors(t *testing.T) {
	eV := evenly(16.0, 0.05, 9)
	s := rampDispersion(t, eV, []float64{-1, 0, 1})

	_, _, err := fermi.ApplyBE(s, nil)
	require.ErrorIs(t, err, fermi.ErrNoReference)

	binding, _, err := fermi.ApplyBE(s, fermi.Constant(16.2))
	require.NoError(t, err)
	_, _, err = fermi.ApplyBE(binding, fermi.Constant(16.2))
	require.ErrorIs(t, err, fermi.ErrAlreadyBinding)
}

// TestApplyBEReferenceEquivalence: a flat Sampled or Poly reference must act
// exactly like the Constant it encodes.
func TestApplyBEReferenceEquivalence(t *testing.T) {
	eV := evenly(16.0, 0.05, 21)
	theta := []float64{-10, 0, 10}
	s := rampDispersion(t, eV, theta)

	constant, _, err := fermi.ApplyBE(s, fermi.Constant(16.9))
	require.NoError(t, err)

	flatPoly, err := fermi.NewPoly(16.9, 0, 0)
	require.NoError(t, err)
	viaPoly, _, err := fermi.ApplyBE(s, flatPoly)
	require.NoError(t, err)

	flatSampled, err := fermi.NewSampled(theta, []float64{16.9, 16.9, 16.9})
	require.NoError(t, err)
	viaSampled, _, err := fermi.ApplyBE(s, flatSampled)
	require.NoError(t, err)

	cAxis, _ := constant.Axis(spectrum.AxisEV)
	pAxis, _ := viaPoly.Axis(spectrum.AxisEV)
	sAxis, _ := viaSampled.Axis(spectrum.AxisEV)
	assert.Equal(t, cAxis.Values, pAxis.Values)
	assert.Equal(t, cAxis.Values, sAxis.Values)
	assert.Equal(t, constant.Data(), viaPoly.Data())
	assert.Equal(t, constant.Data(), viaSampled.Data())
}
