package geometry

import "math"

// KvacConst is sqrt(2·m_e/ħ²) in units giving k in 1/Å for energies in eV.
const KvacConst = 0.5123167243227325

// KVac returns the vacuum wavevector for a kinetic energy in eV. Negative
// energies yield NaN.
func KVac(ek float64) float64 { return KvacConst * math.Sqrt(ek) }

// AnalyserType enumerates the four Ishida–Shin analyser geometries.
type AnalyserType int

const (
	// TypeI: slit at 90°, polar is the mapping angle, no deflector.
	TypeI AnalyserType = iota
	// TypeII: slit at 0°, tilt is the mapping angle, no deflector.
	TypeII
	// TypeIp: Type I analyser equipped with deflectors (I′).
	TypeIp
	// TypeIIp: Type II analyser equipped with deflectors (II′).
	TypeIIp
)

// Deflector reports whether the type uses the primed (deflector) mappings.
func (t AnalyserType) Deflector() bool { return t == TypeIp || t == TypeIIp }

// String implements fmt.Stringer using the Ishida–Shin nomenclature.
func (t AnalyserType) String() string {
	switch t {
	case TypeI:
		return "I"
	case TypeII:
		return "II"
	case TypeIp:
		return "I'"
	case TypeIIp:
		return "II'"
	default:
		return "unknown"
	}
}

// Geometry is the fully resolved angle set for one spectrum, immutable once
// built. Angles follow the Ishida–Shin convention and are in degrees.
type Geometry struct {
	// Type is the resolved analyser geometry.
	Type AnalyserType

	// Alpha is the slit angle evaluated over the theta_par axis.
	Alpha []float64
	// Beta holds the mapping-angle values; a single element when the
	// mapping angle is fixed (plain dispersion).
	Beta []float64
	// Beta0 is the normal-emission reference subtracted from Beta
	// (unprimed types only).
	Beta0 float64

	// Delta is the azimuthal offset from normal emission.
	Delta float64
	// Xi / Xi0 are the fixed secondary angle and its normal-emission
	// reference (tilt-like for Type I/I′/II′, polar-like for Type II).
	Xi, Xi0 float64
	// Chi / Chi0 are the polar angle and its reference, primed types only.
	Chi, Chi0 float64

	// MappingAxis names the spectrum axis Beta was read from; empty for a
	// plain dispersion.
	MappingAxis string

	// Detector-axis bookkeeping: alpha = alphaSign·theta_par + alphaOffset,
	// beta = betaSign·mapping + betaOffset. Signs are ±1.
	alphaSign, alphaOffset float64
	betaSign, betaOffset   float64

	// tinv caches the inverse manipulator rotation matrix for the primed
	// inverse mappings, row-major.
	tinv [9]float64
}

// SlitAngleFromAlpha maps an Ishida–Shin alpha back to the detector
// theta_par coordinate, undoing sign convention and deflector offset.
func (g Geometry) SlitAngleFromAlpha(alpha float64) float64 {
	return (alpha - g.alphaOffset) * g.alphaSign
}

// MappingAngleFromBeta maps an Ishida–Shin beta back to the detector
// mapping-axis coordinate.
func (g Geometry) MappingAngleFromBeta(beta float64) float64 {
	return (beta - g.betaOffset) * g.betaSign
}

// KAlongSlit picks the momentum component along the analyser slit.
func (g Geometry) KAlongSlit(kx, ky float64) float64 {
	if g.Type == TypeII || g.Type == TypeIIp {
		return ky
	}

	return kx
}

// KPerpToSlit picks the in-plane momentum component perpendicular to the
// slit.
func (g Geometry) KPerpToSlit(kx, ky float64) float64 {
	if g.Type == TypeII || g.Type == TypeIIp {
		return kx
	}

	return ky
}
