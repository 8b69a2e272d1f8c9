package kconv

import "errors"

var (
	// ErrConflictingOptions indicates two mutually exclusive options were
	// supplied (explicit binning map plus uniform factor, or an energy
	// window plus a Fermi-surface selection).
	ErrConflictingOptions = errors.New("kconv: conflicting options supplied")
	// ErrBadOptions indicates an option value outside its valid range.
	ErrBadOptions = errors.New("kconv: invalid option value")
	// ErrNotHvScan indicates a kz conversion was requested for data without
	// an hv axis.
	ErrNotHvScan = errors.New("kconv: spectrum has no hv axis")
	// ErrNoEnergyAxis indicates the spectrum has no eV axis.
	ErrNoEnergyAxis = errors.New("kconv: spectrum has no eV axis")
	// ErrNotMap indicates a Fermi-surface conversion was requested for data
	// without an angular mapping axis.
	ErrNotMap = errors.New("kconv: spectrum has no angular mapping axis")
	// ErrEmptyOverlap indicates the per-hv energy windows share no common
	// binding-energy range.
	ErrEmptyOverlap = errors.New("kconv: hv slices share no common binding-energy range")
	// ErrEmptySelection indicates an energy or momentum selection excludes
	// every sample.
	ErrEmptySelection = errors.New("kconv: selection excludes all data")
	// ErrMismatchedSlices indicates the dispersions handed to MakeHvScan
	// cannot be stacked into one cube.
	ErrMismatchedSlices = errors.New("kconv: hv slices cannot be stacked")
)
