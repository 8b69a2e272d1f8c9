package spectrum

import "errors"

// Sentinel errors for spectrum construction and manipulation.
// All are checked with errors.Is; wrap with fmt.Errorf("ctx: %w", Err)
// only at package boundaries.
var (
	// ErrEmptySpectrum indicates a nil or zero-length data buffer.
	ErrEmptySpectrum = errors.New("spectrum: data buffer must be non-empty")
	// ErrShapeMismatch indicates the buffer length does not equal the product
	// of the axis lengths.
	ErrShapeMismatch = errors.New("spectrum: data length does not match axis shape")
	// ErrAxisNotFound indicates a lookup for an axis name that is not present.
	ErrAxisNotFound = errors.New("spectrum: axis not found")
	// ErrDuplicateAxis indicates two axes share the same name.
	ErrDuplicateAxis = errors.New("spectrum: duplicate axis name")
	// ErrEmptyAxis indicates an axis with no coordinate values.
	ErrEmptyAxis = errors.New("spectrum: axis must have at least one value")
	// ErrAxisNotMonotonic indicates an axis that is neither strictly
	// increasing nor strictly decreasing.
	ErrAxisNotMonotonic = errors.New("spectrum: axis values must be strictly monotonic")
	// ErrMultipleMappingAxes indicates more than one angular mapping axis.
	ErrMultipleMappingAxes = errors.New("spectrum: at most one angular mapping axis is allowed")
	// ErrMultipleEnergyAxes indicates more than one energy axis.
	ErrMultipleEnergyAxes = errors.New("spectrum: at most one energy axis is allowed")
	// ErrEmptyRange indicates a crop or slice selected no samples.
	ErrEmptyRange = errors.New("spectrum: selection contains no samples")
	// ErrBadBinFactor indicates a non-positive block factor.
	ErrBadBinFactor = errors.New("spectrum: binning factor must be >= 1")
)
