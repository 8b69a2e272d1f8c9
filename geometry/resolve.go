package geometry

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/arpes-go/kspace/spectrum"
)

// WarnAssumedAngles reports normal-emission references that were missing
// from the metadata and filled with a guess.
const WarnAssumedAngles spectrum.WarningCode = "geometry/assumed-angles"

// Overrides supplies manipulator angles that take precedence over the
// spectrum metadata during Resolve. Fields use NaN to mean "not set"; start
// from NewOverrides and assign only what you want to replace.
type Overrides struct {
	Polar, Tilt, Azi, AnaPolar   float64
	DeflPar, DeflPerp            float64
	NormPolar, NormTilt, NormAzi float64
}

// NewOverrides returns Overrides with every field unset.
func NewOverrides() Overrides {
	nan := math.NaN()

	return Overrides{
		Polar: nan, Tilt: nan, Azi: nan, AnaPolar: nan,
		DeflPar: nan, DeflPerp: nan,
		NormPolar: nan, NormTilt: nan, NormAzi: nan,
	}
}

// pick returns the first set (non-NaN) value, or NaN when all are unset.
func pick(vals ...float64) float64 {
	for _, v := range vals {
		if !math.IsNaN(v) {
			return v
		}
	}

	return math.NaN()
}

func allZero(vals []float64) bool {
	for _, v := range vals {
		if v != 0 {
			return false
		}
	}

	return true
}

// Resolve derives the Ishida–Shin geometry for a spectrum from its axes and
// metadata under the given beamline convention. See ResolveWith.
func Resolve(s *spectrum.Spectrum, conv Convention) (*Geometry, []spectrum.Warning, error) {
	return ResolveWith(s, conv, NewOverrides())
}

// ResolveWith is Resolve with explicit metadata overrides. It fails with
// ErrMissingSlitAxis when the spectrum has no theta_par axis, with
// ErrMissingAngles when polar, tilt or azi is neither an axis nor set in
// metadata, and with ErrUnsupportedMappingAxis when the angular mapping axis
// cannot be driven by the resolved analyser type. Missing normal-emission
// references are guessed and reported as warnings instead of failing.
func ResolveWith(s *spectrum.Spectrum, conv Convention, ov Overrides) (*Geometry, []spectrum.Warning, error) {
	if err := conv.Validate(); err != nil {
		return nil, nil, err
	}
	slit, ok := s.Axis(spectrum.AxisThetaPar)
	if !ok {
		return nil, nil, ErrMissingSlitAxis
	}

	attrs := s.Attrs()
	mapping, hasMapping := s.MappingAxis()

	// Base manipulator angles: the mapping axis supplies one of them as an
	// array; the rest must come from overrides or metadata.
	scalar := func(name string, ovVal, attrVal float64) (float64, bool) {
		if hasMapping && mapping.Name == name {
			return 0, true // handled as the mapping array below
		}

		return pick(ovVal, attrVal), false
	}

	var missing []string
	need := func(name string, ovVal, attrVal float64) float64 {
		v, isAxis := scalar(name, ovVal, attrVal)
		if !isAxis && math.IsNaN(v) {
			missing = append(missing, name)
			return 0
		}

		return v
	}
	optional := func(name string, ovVal, attrVal float64) float64 {
		v, isAxis := scalar(name, ovVal, attrVal)
		if !isAxis && math.IsNaN(v) {
			return 0
		}

		return v
	}

	polar := need(spectrum.AxisPolar, ov.Polar, attrs.Polar)
	tilt := need(spectrum.AxisTilt, ov.Tilt, attrs.Tilt)
	azi := need("azi", ov.Azi, attrs.Azi)
	anaPolar := optional(spectrum.AxisAnaPolar, ov.AnaPolar, attrs.AnaPolar)
	deflPar := optional("defl_par", ov.DeflPar, attrs.DeflPar)
	deflPerp := optional(spectrum.AxisDeflPerp, ov.DeflPerp, attrs.DeflPerp)
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingAngles, strings.Join(missing, ", "))
	}

	anaType := conv.analyserType()

	// Normal-emission references: guess from the current manipulator
	// position when absent, and report each guess.
	var warns []spectrum.Warning
	guessed := []string{}
	guess := func(name string, v float64) float64 {
		guessed = append(guessed, fmt.Sprintf("%s: %g", name, v))
		return v
	}

	normAzi := pick(ov.NormAzi, attrs.NormAzi)
	if math.IsNaN(normAzi) {
		normAzi = guess("norm_azi", azi)
	}
	normPolar := pick(ov.NormPolar, attrs.NormPolar)
	if math.IsNaN(normPolar) {
		if anaType == TypeI || anaType == TypeIp {
			v := polar
			if hasMapping && mapping.Name == spectrum.AxisPolar {
				v = 0
			}
			normPolar = guess("norm_polar", v)
		} else {
			normPolar = 0
		}
	}
	normTilt := pick(ov.NormTilt, attrs.NormTilt)
	if math.IsNaN(normTilt) {
		if anaType == TypeII || anaType == TypeIIp {
			v := tilt
			if hasMapping && mapping.Name == spectrum.AxisTilt {
				v = 0
			}
			normTilt = guess("norm_tilt", v)
		} else {
			normTilt = 0
		}
	}
	if len(guessed) > 0 {
		warns = append(warns, spectrum.Warning{
			Code: WarnAssumedAngles,
			Message: "missing normal emission metadata, assuming " +
				strings.Join(guessed, ", "),
		})
	}

	// A deflector analyser that kept its deflectors at zero behaves exactly
	// like its unprimed counterpart; fall back so plain dispersions and
	// manipulator maps use the simpler algebra.
	if anaType.Deflector() {
		deflVals := []float64{deflPar, deflPerp}
		if hasMapping && mapping.Name == spectrum.AxisDeflPerp {
			deflVals = append(deflVals, mapping.Values...)
		}
		if allZero(deflVals) {
			if anaType == TypeIp {
				anaType = TypeI
			} else {
				anaType = TypeII
			}
		}
	}

	if hasMapping {
		if err := checkMappingAxis(anaType, mapping.Name); err != nil {
			return nil, warns, err
		}
	}

	g := &Geometry{
		Type:  anaType,
		Delta: (azi - normAzi) * conv.Azi,
	}
	if hasMapping {
		g.MappingAxis = mapping.Name
	}

	// Slit angle: alpha = sign·theta_par (+ signed parallel deflector for
	// the primed types).
	g.alphaSign = conv.ThetaPar
	if anaType.Deflector() {
		g.alphaOffset = deflPar * conv.DeflPar
	}
	g.Alpha = make([]float64, slit.Len())
	for i, v := range slit.Values {
		g.Alpha[i] = v*g.alphaSign + g.alphaOffset
	}

	switch anaType {
	case TypeI:
		g.betaSign, g.betaOffset = conv.Polar, anaPolar*conv.AnaPolar
		if hasMapping && mapping.Name == spectrum.AxisAnaPolar {
			g.betaSign, g.betaOffset = conv.AnaPolar, polar*conv.Polar
		}
		g.Beta = mappingValues(mapping, hasMapping, polar*conv.Polar+anaPolar*conv.AnaPolar, g.betaSign, g.betaOffset)
		g.Beta0 = normPolar * conv.Polar
		g.Xi = tilt * conv.Tilt
		g.Xi0 = normTilt * conv.Tilt
	case TypeII:
		g.betaSign, g.betaOffset = conv.Tilt, 0
		g.Beta = mappingValues(mapping, hasMapping, tilt*conv.Tilt, g.betaSign, g.betaOffset)
		g.Beta0 = normTilt * conv.Tilt
		g.Xi = polar*conv.Polar + anaPolar*conv.AnaPolar
		g.Xi0 = normPolar * conv.Polar
	default: // TypeIp, TypeIIp
		g.betaSign, g.betaOffset = conv.DeflPerp, 0
		g.Beta = mappingValues(mapping, hasMapping, deflPerp*conv.DeflPerp, g.betaSign, g.betaOffset)
		g.Xi = tilt * conv.Tilt
		g.Xi0 = normTilt * conv.Tilt
		g.Chi = polar*conv.Polar + anaPolar*conv.AnaPolar
		g.Chi0 = normPolar * conv.Polar
	}

	g.prepare()

	return g, warns, nil
}

// checkMappingAxis verifies the angular mapping axis can drive the resolved
// analyser type: polar or ana_polar for Type I, tilt for Type II, defl_perp
// for the primed types.
func checkMappingAxis(t AnalyserType, axis string) error {
	ok := false
	switch t {
	case TypeI:
		ok = axis == spectrum.AxisPolar || axis == spectrum.AxisAnaPolar
	case TypeII:
		ok = axis == spectrum.AxisTilt
	case TypeIp, TypeIIp:
		ok = axis == spectrum.AxisDeflPerp
	}
	if !ok {
		return fmt.Errorf("%w: %s axis with Type %s analyser", ErrUnsupportedMappingAxis, axis, t)
	}

	return nil
}

// mappingValues builds the signed Beta array: the mapping axis values when
// the spectrum has one, otherwise a single fixed value.
func mappingValues(mapping spectrum.Axis, hasMapping bool, fixed, sign, offset float64) []float64 {
	if !hasMapping {
		return []float64{fixed}
	}

	out := make([]float64, mapping.Len())
	for i, v := range mapping.Values {
		out[i] = v*sign + offset
	}

	return out
}
