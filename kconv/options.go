package kconv

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"

	"github.com/arpes-go/kspace/fermi"
	"github.com/arpes-go/kspace/spectrum"
)

// Mode selects which conversions to perform.
type Mode int

const (
	// ModeBoth converts to momentum and binding energy (the default).
	ModeBoth Mode = iota
	// ModeK converts to momentum only; energies stay kinetic. Not valid for
	// hv scans, where the kinetic scale changes slice to slice.
	ModeK
	// ModeBE converts to binding energy only; angles stay untouched.
	ModeBE
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	switch m {
	case ModeK:
		return "k"
	case ModeBE:
		return "BE"
	default:
		return "k+BE"
	}
}

// Options configures a conversion. DefaultOptions converts to momentum and
// binding energy over the full data range with automatic grid spacing.
// Optional float fields use NaN for "not set"; always start from
// DefaultOptions rather than a literal, or the zero selections will be
// taken as actual windows.
type Options struct {
	// Mode selects momentum, binding energy, or both.
	Mode Mode

	// Reference is the Fermi-level calibration. When nil it is estimated
	// from the data, with a warning.
	Reference fermi.Reference

	// DK is the in-plane momentum spacing (1/Å). Zero derives it from the
	// source: pixel-matched for dispersions, 0.01 for maps and kz scans.
	DK float64
	// DKz is the out-of-plane spacing for kz scans. Zero matches the hv
	// pixel count.
	DKz float64

	// Binning is an explicit per-axis block-mean factor map, applied before
	// conversion. Mutually exclusive with BinFactor.
	Binning spectrum.BinSpec
	// BinFactor is shorthand for BinFactor×BinFactor binning on eV and
	// theta_par. 1 disables automatic binning of large inputs.
	BinFactor int

	// EVMin/EVMax select a binding-energy window of the output. Equal
	// values select the nearest single slice.
	EVMin, EVMax float64
	// FSWidth/FSCenter select a window of width FSWidth centred on FSCenter
	// (default 0, the Fermi level) and average over it. Mutually exclusive
	// with EVMin/EVMax. Ignored for plain dispersions.
	FSWidth, FSCenter float64

	// KMin/KMax crop the k_par axis of a kz conversion. Equal values select
	// the nearest single slice.
	KMin, KMax float64

	// V0 is the inner potential (eV) for kz conversion. NaN defaults to
	// 12 eV with a warning.
	V0 float64

	// Logger, when set, receives progress/debug output. The engine never
	// logs otherwise.
	Logger *log.Logger
}

// DefaultOptions returns Options with every selection unset.
func DefaultOptions() Options {
	nan := math.NaN()

	return Options{
		EVMin: nan, EVMax: nan,
		FSWidth: nan, FSCenter: nan,
		KMin: nan, KMax: nan,
		V0: nan,
	}
}

func isSet(v float64) bool { return !math.IsNaN(v) }

func (o Options) validate() error {
	if len(o.Binning) > 0 && o.BinFactor != 0 {
		return fmt.Errorf("%w: use either Binning or BinFactor, not both", ErrConflictingOptions)
	}
	if o.BinFactor < 0 {
		return fmt.Errorf("%w: BinFactor %d", ErrBadOptions, o.BinFactor)
	}
	if isSet(o.FSWidth) && (isSet(o.EVMin) || isSet(o.EVMax)) {
		return fmt.Errorf("%w: use either an EV window or an FS selection, not both", ErrConflictingOptions)
	}
	if isSet(o.FSWidth) && o.FSWidth < 0 {
		return fmt.Errorf("%w: FSWidth %g", ErrBadOptions, o.FSWidth)
	}
	if o.DK < 0 || o.DKz < 0 {
		return fmt.Errorf("%w: negative grid spacing", ErrBadOptions)
	}
	if isSet(o.EVMin) && isSet(o.EVMax) && o.EVMin > o.EVMax {
		return fmt.Errorf("%w: EVMin > EVMax", ErrBadOptions)
	}
	if isSet(o.KMin) && isSet(o.KMax) && o.KMin > o.KMax {
		return fmt.Errorf("%w: KMin > KMax", ErrBadOptions)
	}

	return nil
}

// debug forwards to the configured logger, if any.
func (o Options) debug(msg string, kv ...any) {
	if o.Logger != nil {
		o.Logger.Debug(msg, kv...)
	}
}
