// Package spectrum: core types shared by every conversion stage.
package spectrum

import "math"

// Canonical axis names. The conversion engine recognises no others.
const (
	// AxisThetaPar is the analyser slit angle (deg), the primary angular axis.
	AxisThetaPar = "theta_par"
	// AxisEV is the energy axis, kinetic or binding depending on Attrs.EVType.
	AxisEV = "eV"
	// AxisHv is the photon-energy axis of an hv scan (eV).
	AxisHv = "hv"

	// Mapping axes: the secondary angular axis scanned to build a 2D/3D map.
	AxisPolar    = "polar"
	AxisTilt     = "tilt"
	AxisDeflPerp = "defl_perp"
	AxisAnaPolar = "ana_polar"

	// Momentum axes produced by conversion (1/Å).
	AxisKPar  = "k_par"
	AxisKPerp = "k_perp"
	AxisKz    = "kz"
)

// mappingAxes lists the supported secondary angular axes in lookup order.
var mappingAxes = []string{AxisPolar, AxisTilt, AxisDeflPerp, AxisAnaPolar}

// IsMappingAxis reports whether name is one of the supported angular mapping
// axes (polar, tilt, defl_perp, ana_polar).
func IsMappingAxis(name string) bool {
	for _, m := range mappingAxes {
		if name == m {
			return true
		}
	}

	return false
}

// Axis is a named coordinate array. Values are strictly increasing once the
// Spectrum holding the axis has been constructed.
type Axis struct {
	Name   string
	Values []float64
}

// Len returns the number of samples along the axis.
func (a Axis) Len() int { return len(a.Values) }

// EVType states whether the energy axis is kinetic or binding energy.
type EVType int

const (
	// KineticEnergy: eV axis holds electron kinetic energy as measured.
	KineticEnergy EVType = iota
	// BindingEnergy: eV axis holds binding energy, negative below the Fermi
	// level.
	BindingEnergy
)

// String implements fmt.Stringer for provenance strings.
func (t EVType) String() string {
	if t == BindingEnergy {
		return "binding"
	}

	return "kinetic"
}

// Attrs carries the acquisition metadata the conversion stages consume.
// Optional float fields use NaN to mean "not set"; use NewAttrs to obtain a
// zero value with every optional field unset.
type Attrs struct {
	// Hv is the photon energy (eV). For hv scans the hv axis takes priority.
	Hv float64

	// Manipulator angles (deg).
	Polar, Tilt, Azi, AnaPolar float64
	// Deflector angles (deg); non-zero values select the primed geometries.
	DeflPar, DeflPerp float64
	// Normal-emission references (deg).
	NormPolar, NormTilt, NormAzi float64

	// EVType states whether the eV axis is kinetic or binding energy.
	EVType EVType

	// EFvsHv is the kinetic energy of the Fermi level per hv-axis sample.
	// Required (or estimated) for kz conversion. Aligned with the hv axis.
	EFvsHv []float64
	// KEDeltaVsHv is the detector kinetic-energy offset of each hv slice
	// relative to the first, aligned with the hv axis.
	KEDeltaVsHv []float64

	// KPerp is the near-constant perpendicular momentum attached as scalar
	// metadata after a dispersion conversion (1/Å). NaN when absent.
	KPerp float64
}

// NewAttrs returns Attrs with every optional scalar field set to NaN.
func NewAttrs() Attrs {
	nan := math.NaN()

	return Attrs{
		Hv:        nan,
		Polar:     nan,
		Tilt:      nan,
		Azi:       nan,
		AnaPolar:  nan,
		DeflPar:   nan,
		DeflPerp:  nan,
		NormPolar: nan,
		NormTilt:  nan,
		NormAzi:   nan,
		KPerp:     nan,
	}
}

// HasHv reports whether a scalar photon energy is set.
func (a Attrs) HasHv() bool { return !math.IsNaN(a.Hv) }

// WarningCode identifies an advisory condition class. Each package defines
// its own codes; they share this type so callers can collect warnings from
// every stage in one slice.
type WarningCode string

// Warning is an advisory condition reported alongside a successful result.
// The engine never prints warnings; callers decide how to surface them.
type Warning struct {
	Code    WarningCode
	Message string
}

// String implements fmt.Stringer.
func (w Warning) String() string { return string(w.Code) + ": " + w.Message }
