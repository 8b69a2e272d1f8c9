package geometry

import "errors"

var (
	// ErrMissingAngles indicates manipulator angles required by the resolved
	// geometry are absent from both the spectrum axes and its metadata.
	ErrMissingAngles = errors.New("geometry: required manipulator angles missing from metadata")
	// ErrMissingSlitAxis indicates the spectrum has no theta_par axis.
	ErrMissingSlitAxis = errors.New("geometry: spectrum has no theta_par axis")
	// ErrUnsupportedMappingAxis indicates the angular mapping axis is not
	// usable with the resolved analyser type.
	ErrUnsupportedMappingAxis = errors.New("geometry: mapping axis unsupported for analyser type")
	// ErrBadConvention indicates a sign table with entries other than ±1 or
	// an invalid slit orientation.
	ErrBadConvention = errors.New("geometry: invalid beamline convention")
)
