package geometry

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

// Convention is the explicit per-beamline sign table. Each sign multiplies
// the corresponding detector angle before it enters the Ishida–Shin algebra;
// SlitAngle selects Type I (90°) versus Type II (0°), and Deflector states
// whether the analyser carries electrostatic deflectors at all.
//
// A Convention is always passed by value into Resolve; there is no global
// beamline registry.
type Convention struct {
	ThetaPar float64 `yaml:"theta_par"`
	Polar    float64 `yaml:"polar"`
	Tilt     float64 `yaml:"tilt"`
	Azi      float64 `yaml:"azi"`
	AnaPolar float64 `yaml:"ana_polar"`
	DeflPar  float64 `yaml:"defl_par"`
	DeflPerp float64 `yaml:"defl_perp"`

	// SlitAngle is the analyser slit orientation in degrees: 90 or 0.
	SlitAngle int `yaml:"slit_angle"`
	// Deflector marks analysers with deflector capability; the primed
	// mappings are used only when deflector angles are actually non-zero.
	Deflector bool `yaml:"deflector"`
}

// DefaultConvention returns the convention of a slit-vertical (Type I)
// analyser without deflectors. The slit and deflector signs are −1 so that a
// positive detector angle maps to positive momentum along the slit.
func DefaultConvention() Convention {
	return Convention{
		ThetaPar: -1,
		Polar:    1,
		Tilt:     1,
		Azi:      1,
		AnaPolar: 1,
		DeflPar:  -1,
		DeflPerp: -1,
		SlitAngle: 90,
	}
}

// Validate checks that every sign is ±1 and the slit orientation is 0 or 90.
func (c Convention) Validate() error {
	signs := map[string]float64{
		"theta_par": c.ThetaPar,
		"polar":     c.Polar,
		"tilt":      c.Tilt,
		"azi":       c.Azi,
		"ana_polar": c.AnaPolar,
		"defl_par":  c.DeflPar,
		"defl_perp": c.DeflPerp,
	}
	for name, s := range signs {
		if s != 1 && s != -1 {
			return fmt.Errorf("%w: sign %s must be ±1, got %g", ErrBadConvention, name, s)
		}
	}
	if c.SlitAngle != 0 && c.SlitAngle != 90 {
		return fmt.Errorf("%w: slit_angle must be 0 or 90, got %d", ErrBadConvention, c.SlitAngle)
	}

	return nil
}

// analyserType derives the capability type from the convention alone; the
// decay of primed types for all-zero deflector angles happens in Resolve.
func (c Convention) analyserType() AnalyserType {
	switch {
	case c.SlitAngle == 90 && c.Deflector:
		return TypeIp
	case c.SlitAngle == 90:
		return TypeI
	case c.Deflector:
		return TypeIIp
	default:
		return TypeII
	}
}

// LoadConventionTable parses a YAML table of beamline conventions keyed by
// facility name, validating every entry:
//
//	bloch:
//	  theta_par: -1
//	  polar: 1
//	  ...
//	  slit_angle: 90
//	  deflector: true
func LoadConventionTable(b []byte) (map[string]Convention, error) {
	table := map[string]Convention{}
	if err := yaml.Unmarshal(b, &table); err != nil {
		return nil, fmt.Errorf("geometry: parsing convention table: %w", err)
	}
	for name, conv := range table {
		if err := conv.Validate(); err != nil {
			return nil, fmt.Errorf("%w (beamline %q)", err, name)
		}
	}

	return table, nil
}
