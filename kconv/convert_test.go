package kconv_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arpes-go/kspace/fermi"
	"github.com/arpes-go/kspace/geometry"
	"github.com/arpes-go/kspace/kconv"
	"github.com/arpes-go/kspace/spectrum"
)

func evenly(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + float64(i)*(hi-lo)/float64(n-1)
	}

	return out
}

// calibratedAttrs returns metadata for a sample measured at normal emission
// with every reference angle recorded, so Resolve has nothing to guess.
func calibratedAttrs() spectrum.Attrs {
	a := spectrum.NewAttrs()
	a.Hv = 21.2
	a.Polar, a.Tilt, a.Azi = 0, 0, 0
	a.NormPolar, a.NormTilt, a.NormAzi = 0, 0, 0

	return a
}

// intensity is linear in energy and slit angle, so the bilinear resampling
// reproduces it exactly wherever the source grid covers the pullback.
func intensity(e, th float64) float64 {
	return 2 + 0.1*(e-16) + 0.05*th
}

func linearDispersion(t *testing.T) *spectrum.Spectrum {
	t.Helper()

	ev := evenly(16.0, 17.0, 101)
	th := evenly(-15, 15, 61)
	data := make([]float64, len(ev)*len(th))
	for m, e := range ev {
		for i, a := range th {
			data[m*len(th)+i] = intensity(e, a)
		}
	}

	s, err := spectrum.New(data, []spectrum.Axis{
		{Name: spectrum.AxisEV, Values: ev},
		{Name: spectrum.AxisThetaPar, Values: th},
	}, calibratedAttrs())
	require.NoError(t, err)

	return s
}

func hasCode(warns []spectrum.Warning, code spectrum.WarningCode) bool {
	for _, w := range warns {
		if w.Code == code {
			return true
		}
	}

	return false
}

// thetaOfK inverts the slit-vertical normal-emission relation k = kvac·sin θ.
func thetaOfK(k, ek float64) float64 {
	return math.Asin(k/geometry.KVac(ek)) * 180 / math.Pi
}

func TestConvertDispersionMomentumOnly(t *testing.T) {
	s := linearDispersion(t)

	opts := kconv.DefaultOptions()
	opts.Mode = kconv.ModeK

	out, warns, err := kconv.Convert(s, geometry.DefaultConvention(), opts)
	require.NoError(t, err)
	assert.Empty(t, warns)

	axes := out.Axes()
	require.Len(t, axes, 2)
	assert.Equal(t, spectrum.AxisEV, axes[0].Name)
	assert.Equal(t, spectrum.AxisKPar, axes[1].Name)
	assert.Equal(t, spectrum.KineticEnergy, out.Attrs().EVType)

	// The energy axis passes through untouched.
	ev, _ := s.Axis(spectrum.AxisEV)
	assert.Equal(t, ev.Values, axes[0].Values)

	// The momentum grid covers the forward image of every sampled angle;
	// the widest extent comes from ±15° at the top of the kinetic scale.
	kMax := geometry.KVac(17.0) * math.Sin(15*math.Pi/180)
	k := axes[1].Values
	assert.InDelta(t, -kMax, k[0], 1e-9)
	assert.GreaterOrEqual(t, k[len(k)-1], kMax-1e-9)

	// Interior cells reproduce the linear source exactly: a momentum cell
	// pulls back to the angle asin(k/kvac) at its own kinetic energy.
	for _, j := range []int{len(k) / 4, len(k) / 2, 3 * len(k) / 4} {
		ek := ev.Values[50]
		want := intensity(ek, thetaOfK(k[j], ek))
		assert.InDelta(t, want, out.At(50, j), 1e-9)
	}

	// The widest momenta are unreachable at the bottom of the kinetic scale.
	assert.True(t, math.IsNaN(out.At(0, 0)))
	assert.True(t, math.IsNaN(out.At(0, len(k)-1)))
}

func TestConvertDispersionBindingEnergy(t *testing.T) {
	s := linearDispersion(t)

	opts := kconv.DefaultOptions()
	opts.Reference = fermi.Constant(16.9)

	out, warns, err := kconv.Convert(s, geometry.DefaultConvention(), opts)
	require.NoError(t, err)
	assert.Empty(t, warns)

	assert.Equal(t, spectrum.BindingEnergy, out.Attrs().EVType)
	be, ok := out.Axis(spectrum.AxisEV)
	require.True(t, ok)
	assert.InDelta(t, -0.9, be.Values[0], 1e-9)
	assert.InDelta(t, 0.1, be.Values[be.Len()-1], 1e-9)

	// Normal-emission cut: the perpendicular momentum of the slice is zero.
	assert.InDelta(t, 0, out.Attrs().KPerp, 1e-12)
	assert.False(t, hasCode(warns, kconv.WarnKPerpVaries))

	// A binding-energy cell at (E_B, k) pulls back to kinetic energy
	// E_B + EF and angle asin(k/kvac).
	k, _ := out.Axis(spectrum.AxisKPar)
	m := 50 // E_B = -0.4, EK = 16.5
	ek := be.Values[m] + 16.9
	for _, j := range []int{k.Len() / 4, k.Len() / 2, 3 * k.Len() / 4} {
		want := intensity(ek, thetaOfK(k.Values[j], ek))
		assert.InDelta(t, want, out.At(m, j), 1e-9)
	}
}

func TestConvertCurvedReference(t *testing.T) {
	s := linearDispersion(t)

	ref, err := fermi.NewPoly(16.9, 0, 1e-3)
	require.NoError(t, err)
	opts := kconv.DefaultOptions()
	opts.Reference = ref

	out, _, err := kconv.Convert(s, geometry.DefaultConvention(), opts)
	require.NoError(t, err)

	// The curved edge widens the binding scale down to eV_min - EF(±15°).
	be, _ := out.Axis(spectrum.AxisEV)
	assert.InDelta(t, 16.0-(16.9+1e-3*225), be.Values[0], 1e-9)

	// The source lookup shifts by EF(θ) - EF(0) at every angle.
	k, _ := out.Axis(spectrum.AxisKPar)
	m := spectrum.NearestIndex(be.Values, -0.5)
	ek := be.Values[m] + 16.9
	for _, j := range []int{k.Len()/2 - 4, k.Len() / 2, k.Len()/2 + 4} {
		th := thetaOfK(k.Values[j], ek)
		want := intensity(ek+1e-3*th*th, th)
		assert.InDelta(t, want, out.At(m, j), 1e-9)
	}
}

func TestConvertReferenceEquivalence(t *testing.T) {
	s := linearDispersion(t)
	conv := geometry.DefaultConvention()

	flatPoly, err := fermi.NewPoly(16.9)
	require.NoError(t, err)
	flatSampled, err := fermi.NewSampled([]float64{-15, 15}, []float64{16.9, 16.9})
	require.NoError(t, err)

	var results []*spectrum.Spectrum
	for _, ref := range []fermi.Reference{fermi.Constant(16.9), flatPoly, flatSampled} {
		opts := kconv.DefaultOptions()
		opts.Reference = ref
		out, _, err := kconv.Convert(s, conv, opts)
		require.NoError(t, err)
		results = append(results, out)
	}

	base := results[0].Data()
	for _, other := range results[1:] {
		require.Equal(t, len(base), other.Size())
		for i, v := range other.Data() {
			if math.IsNaN(base[i]) {
				assert.True(t, math.IsNaN(v))
				continue
			}
			assert.InDelta(t, base[i], v, 1e-9)
		}
	}
}

func TestConvertEstimatesMissingCalibration(t *testing.T) {
	// A Fermi edge at 16.9 eV kinetic, no reference and no photon energy.
	ev := evenly(16.0, 17.4, 281)
	th := evenly(-5, 5, 21)
	data := make([]float64, len(ev)*len(th))
	for m, e := range ev {
		edge := 1 / (1 + math.Exp((e-16.9)/0.02))
		for i := range th {
			data[m*len(th)+i] = edge
		}
	}
	attrs := calibratedAttrs()
	attrs.Hv = math.NaN()
	s, err := spectrum.New(data, []spectrum.Axis{
		{Name: spectrum.AxisEV, Values: ev},
		{Name: spectrum.AxisThetaPar, Values: th},
	}, attrs)
	require.NoError(t, err)

	out, warns, err := kconv.Convert(s, geometry.DefaultConvention(), kconv.DefaultOptions())
	require.NoError(t, err)
	assert.True(t, hasCode(warns, fermi.WarnEstimatedEF))

	be, _ := out.Axis(spectrum.AxisEV)
	assert.InDelta(t, -0.9, be.Values[0], 0.02)
	assert.Equal(t, spectrum.BindingEnergy, out.Attrs().EVType)
}

func TestConvertRejectsBindingInput(t *testing.T) {
	s := linearDispersion(t)
	attrs := s.Attrs()
	attrs.EVType = spectrum.BindingEnergy
	s.SetAttrs(attrs)

	opts := kconv.DefaultOptions()
	opts.Mode = kconv.ModeK
	_, _, err := kconv.Convert(s, geometry.DefaultConvention(), opts)
	assert.ErrorIs(t, err, fermi.ErrAlreadyBinding)
}

func TestConvertOptionConflicts(t *testing.T) {
	s := linearDispersion(t)
	conv := geometry.DefaultConvention()

	cases := []struct {
		name string
		set  func(*kconv.Options)
		want error
	}{
		{"binning and factor", func(o *kconv.Options) {
			o.Binning = spectrum.BinSpec{spectrum.AxisEV: 2}
			o.BinFactor = 2
		}, kconv.ErrConflictingOptions},
		{"ev window and fs", func(o *kconv.Options) {
			o.EVMin, o.EVMax = -0.5, 0
			o.FSWidth = 0.1
		}, kconv.ErrConflictingOptions},
		{"inverted ev window", func(o *kconv.Options) {
			o.EVMin, o.EVMax = 0, -0.5
		}, kconv.ErrBadOptions},
		{"negative spacing", func(o *kconv.Options) {
			o.DK = -0.01
		}, kconv.ErrBadOptions},
		{"negative bin factor", func(o *kconv.Options) {
			o.BinFactor = -1
		}, kconv.ErrBadOptions},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := kconv.DefaultOptions()
			tc.set(&opts)
			_, _, err := kconv.Convert(s, conv, opts)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestConvertBinFactor(t *testing.T) {
	s := linearDispersion(t)

	opts := kconv.DefaultOptions()
	opts.Mode = kconv.ModeK
	opts.BinFactor = 2

	out, _, err := kconv.Convert(s, geometry.DefaultConvention(), opts)
	require.NoError(t, err)

	ev, _ := out.Axis(spectrum.AxisEV)
	assert.Equal(t, 51, ev.Len()) // 101 samples, block of 2, partial block kept
}

func TestConvertAutoBinsLargeInput(t *testing.T) {
	// Just above the auto-binning threshold; binding-only conversion keeps
	// the runtime down.
	ev := evenly(16.0, 17.0, 2001)
	th := evenly(-15, 15, 5001)
	data := make([]float64, len(ev)*len(th))
	for i := range data {
		data[i] = 1
	}
	s, err := spectrum.New(data, []spectrum.Axis{
		{Name: spectrum.AxisEV, Values: ev},
		{Name: spectrum.AxisThetaPar, Values: th},
	}, calibratedAttrs())
	require.NoError(t, err)

	opts := kconv.DefaultOptions()
	opts.Mode = kconv.ModeBE
	opts.Reference = fermi.Constant(16.9)

	out, warns, err := kconv.Convert(s, geometry.DefaultConvention(), opts)
	require.NoError(t, err)
	assert.True(t, hasCode(warns, kconv.WarnAutoBinned))

	evOut, _ := out.Axis(spectrum.AxisEV)
	thOut, _ := out.Axis(spectrum.AxisThetaPar)
	assert.Equal(t, 1001, evOut.Len())
	assert.Equal(t, 2501, thOut.Len())

	// BinFactor 1 suppresses the automatic binning.
	opts.BinFactor = 1
	out, warns, err = kconv.Convert(s, geometry.DefaultConvention(), opts)
	require.NoError(t, err)
	assert.False(t, hasCode(warns, kconv.WarnAutoBinned))
	evOut, _ = out.Axis(spectrum.AxisEV)
	assert.Equal(t, 2001, evOut.Len())
}

func TestConvertEnergyWindow(t *testing.T) {
	s := linearDispersion(t)
	conv := geometry.DefaultConvention()

	opts := kconv.DefaultOptions()
	opts.Reference = fermi.Constant(16.9)
	opts.EVMin, opts.EVMax = -0.5, 0

	out, _, err := kconv.Convert(s, conv, opts)
	require.NoError(t, err)
	be, _ := out.Axis(spectrum.AxisEV)
	assert.GreaterOrEqual(t, be.Values[0], -0.5)
	assert.LessOrEqual(t, be.Values[be.Len()-1], 0.0)

	// Equal bounds select the single nearest slice and drop the axis.
	opts.EVMin, opts.EVMax = -0.2, -0.2
	out, _, err = kconv.Convert(s, conv, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, out.NDim())
	_, ok := out.Axis(spectrum.AxisEV)
	assert.False(t, ok)
}

func TestConvertBatch(t *testing.T) {
	a := linearDispersion(t)
	b := linearDispersion(t)

	opts := kconv.DefaultOptions()
	opts.Mode = kconv.ModeK

	out, _, err := kconv.ConvertBatch([]*spectrum.Spectrum{a, b}, geometry.DefaultConvention(), opts)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, out[0].Dims(), out[1].Dims())

	// The failing item's position is reported.
	broken := linearDispersion(t)
	attrs := broken.Attrs()
	attrs.EVType = spectrum.BindingEnergy
	broken.SetAttrs(attrs)
	_, _, err = kconv.ConvertBatch([]*spectrum.Spectrum{a, broken}, geometry.DefaultConvention(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item 1")
}
