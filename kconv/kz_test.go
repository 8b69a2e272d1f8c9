package kconv_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arpes-go/kspace/geometry"
	"github.com/arpes-go/kspace/kconv"
	"github.com/arpes-go/kspace/spectrum"
)

// hvSlice builds one constant-intensity dispersion of an hv scan: work
// function 4.5 eV, energy window EF - 0.5 to EF + 0.1.
func hvSlice(t *testing.T, hv float64) *spectrum.Spectrum {
	t.Helper()

	ef := hv - 4.5
	ev := evenly(ef-0.5, ef+0.1, 61)
	th := evenly(-10, 10, 21)
	data := make([]float64, len(ev)*len(th))
	for i := range data {
		data[i] = 1
	}

	attrs := calibratedAttrs()
	attrs.Hv = hv
	s, err := spectrum.New(data, []spectrum.Axis{
		{Name: spectrum.AxisEV, Values: ev},
		{Name: spectrum.AxisThetaPar, Values: th},
	}, attrs)
	require.NoError(t, err)

	return s
}

// hvCube assembles an 11-slice scan from 60 to 70 eV with the Fermi level
// recorded per slice, so nothing has to be estimated.
func hvCube(t *testing.T) *spectrum.Spectrum {
	t.Helper()

	var slices []*spectrum.Spectrum
	for hv := 60.0; hv <= 70.0; hv++ {
		slices = append(slices, hvSlice(t, hv))
	}
	cube, err := kconv.MakeHvScan(slices)
	require.NoError(t, err)

	// On the shared detector scale of the first slice the Fermi level sits
	// at 55.5 eV for every photon energy.
	attrs := cube.Attrs()
	attrs.EFvsHv = make([]float64, 11)
	for i := range attrs.EFvsHv {
		attrs.EFvsHv[i] = 55.5
	}
	cube.SetAttrs(attrs)

	return cube
}

func TestMakeHvScan(t *testing.T) {
	// Deliberately out of order; MakeHvScan sorts by photon energy.
	slices := []*spectrum.Spectrum{hvSlice(t, 65), hvSlice(t, 60), hvSlice(t, 70)}
	cube, err := kconv.MakeHvScan(slices)
	require.NoError(t, err)

	hvAxis, ok := cube.Axis(spectrum.AxisHv)
	require.True(t, ok)
	assert.Equal(t, []float64{60, 65, 70}, hvAxis.Values)

	// Detector offsets follow the slice energy windows.
	assert.InDelta(t, 0, cube.Attrs().KEDeltaVsHv[0], 1e-9)
	assert.InDelta(t, 5, cube.Attrs().KEDeltaVsHv[1], 1e-9)
	assert.InDelta(t, 10, cube.Attrs().KEDeltaVsHv[2], 1e-9)

	// The cube keeps the first slice's energy axis.
	ev, _ := cube.Axis(spectrum.AxisEV)
	assert.InDelta(t, 55.0, ev.Values[0], 1e-9)
	assert.False(t, cube.Attrs().HasHv())
}

func TestMakeHvScanValidation(t *testing.T) {
	_, err := kconv.MakeHvScan([]*spectrum.Spectrum{hvSlice(t, 60)})
	assert.ErrorIs(t, err, kconv.ErrMismatchedSlices)

	// Missing photon energy.
	bad := hvSlice(t, 60)
	attrs := bad.Attrs()
	attrs.Hv = math.NaN()
	bad.SetAttrs(attrs)
	_, err = kconv.MakeHvScan([]*spectrum.Spectrum{bad, hvSlice(t, 61)})
	assert.ErrorIs(t, err, kconv.ErrMismatchedSlices)

	// Duplicate photon energy.
	_, err = kconv.MakeHvScan([]*spectrum.Spectrum{hvSlice(t, 60), hvSlice(t, 60)})
	assert.ErrorIs(t, err, kconv.ErrMismatchedSlices)
}

func TestConvertKz(t *testing.T) {
	cube := hvCube(t)

	opts := kconv.DefaultOptions()
	opts.V0 = 12

	out, warns, err := kconv.Convert(cube, geometry.DefaultConvention(), opts)
	require.NoError(t, err)
	assert.Empty(t, warns)

	axes := out.Axes()
	require.Len(t, axes, 3)
	assert.Equal(t, spectrum.AxisEV, axes[0].Name)
	assert.Equal(t, spectrum.AxisKPar, axes[1].Name)
	assert.Equal(t, spectrum.AxisKz, axes[2].Name)
	assert.Equal(t, spectrum.BindingEnergy, out.Attrs().EVType)

	// Binding scale: the overlap of the per-slice windows.
	be := axes[0].Values
	assert.InDelta(t, -0.5, be[0], 1e-9)
	assert.InDelta(t, 0.1, be[len(be)-1], 1e-9)

	// kz spans the free-electron range of the scan: roughly
	// C·√(V0 + hv - wf) at the two photon-energy extremes.
	kz := axes[2].Values
	assert.Len(t, kz, 11) // matches the hv pixel count by default
	for l := 1; l < len(kz); l++ {
		assert.Greater(t, kz[l], kz[l-1])
	}
	kzLow := geometry.KvacConst * math.Sqrt(12+60-4.5-0.5)
	kzHigh := geometry.KvacConst * math.Sqrt(12+70-4.5+0.1)
	assert.Less(t, kz[0], kzLow)
	assert.InDelta(t, kzHigh, kz[len(kz)-1], 1e-4)

	// Constant intensity survives into the interior of the volume.
	assert.InDelta(t, 1, out.At(len(be)/2, len(axes[1].Values)/2, len(kz)/2), 1e-9)
}

func TestConvertKzDefaults(t *testing.T) {
	cube := hvCube(t)

	// ModeK is meaningless across hv slices and V0 is unset: both warn.
	opts := kconv.DefaultOptions()
	opts.Mode = kconv.ModeK

	out, warns, err := kconv.Convert(cube, geometry.DefaultConvention(), opts)
	require.NoError(t, err)
	assert.True(t, hasCode(warns, kconv.WarnModeIgnored))
	assert.True(t, hasCode(warns, kconv.WarnDefaultV0))
	assert.Equal(t, spectrum.BindingEnergy, out.Attrs().EVType)
}

func TestConvertKzBindingOnly(t *testing.T) {
	cube := hvCube(t)

	opts := kconv.DefaultOptions()
	opts.Mode = kconv.ModeBE

	out, warns, err := kconv.Convert(cube, geometry.DefaultConvention(), opts)
	require.NoError(t, err)
	assert.Empty(t, warns)

	// Energy alignment only: the cube stays angular, on a binding scale.
	axes := out.Axes()
	require.Len(t, axes, 3)
	assert.Equal(t, spectrum.AxisHv, axes[0].Name)
	assert.Equal(t, spectrum.AxisEV, axes[1].Name)
	assert.Equal(t, spectrum.AxisThetaPar, axes[2].Name)
	assert.InDelta(t, -0.5, axes[1].Values[0], 1e-9)
	assert.Equal(t, spectrum.BindingEnergy, out.Attrs().EVType)
}

func TestConvertKzSelections(t *testing.T) {
	cube := hvCube(t)

	opts := kconv.DefaultOptions()
	opts.V0 = 12
	opts.KMin, opts.KMax = 0, 0

	out, _, err := kconv.Convert(cube, geometry.DefaultConvention(), opts)
	require.NoError(t, err)

	// A single momentum cut: (eV, kz) remains.
	require.Equal(t, 2, out.NDim())
	_, ok := out.Axis(spectrum.AxisKPar)
	assert.False(t, ok)
}

func TestConvertKzEmptyOverlap(t *testing.T) {
	cube := hvCube(t)

	// Fermi levels drifting further than the energy window leave no common
	// binding range.
	attrs := cube.Attrs()
	for i := range attrs.EFvsHv {
		attrs.EFvsHv[i] = 55.5 + float64(i)*0.2
	}
	cube.SetAttrs(attrs)

	_, _, err := kconv.Convert(cube, geometry.DefaultConvention(), kconv.DefaultOptions())
	assert.ErrorIs(t, err, kconv.ErrEmptyOverlap)
}

func TestConvertKzRequiresHvAxis(t *testing.T) {
	_, _, err := kconv.ConvertKz(linearDispersion(t), geometry.DefaultConvention(), kconv.DefaultOptions())
	assert.ErrorIs(t, err, kconv.ErrNotHvScan)
}
