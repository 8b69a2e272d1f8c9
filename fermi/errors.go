package fermi

import "errors"

var (
	// ErrNoReference indicates an operation that needs a Fermi-level
	// calibration was called without one.
	ErrNoReference = errors.New("fermi: no energy reference provided")
	// ErrBadReference indicates a malformed calibration (too few samples,
	// unsorted angles, or a polynomial beyond cubic).
	ErrBadReference = errors.New("fermi: invalid energy reference")
	// ErrAlreadyBinding indicates the eV axis is already on a binding-energy
	// scale.
	ErrAlreadyBinding = errors.New("fermi: eV axis is already binding energy")
	// ErrNoEnergyAxis indicates the spectrum has no eV axis.
	ErrNoEnergyAxis = errors.New("fermi: spectrum has no eV axis")
	// ErrNoSlitAxis indicates an angle-dependent correction was requested on
	// data without a theta_par axis.
	ErrNoSlitAxis = errors.New("fermi: spectrum has no theta_par axis")
	// ErrNoHvAxis indicates an hv-scan operation on data without an hv axis.
	ErrNoHvAxis = errors.New("fermi: spectrum has no hv axis")
	// ErrEstimateFailed indicates the derivative estimator found no usable
	// Fermi edge.
	ErrEstimateFailed = errors.New("fermi: could not locate a Fermi edge")
)
