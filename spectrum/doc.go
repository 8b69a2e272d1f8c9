// Package spectrum provides the named-axis N-dimensional array that all
// conversion stages operate on, together with slicing, cropping and
// block-binning primitives.
//
// What:
//
//   - Spectrum wraps a dense row-major []float64 buffer with an ordered list
//     of named coordinate axes (Axis) and acquisition metadata (Attrs).
//   - Axis names come from a fixed vocabulary: "theta_par", "eV", one
//     optional mapping axis ("polar", "tilt", "defl_perp" or "ana_polar"),
//     an optional "hv" axis, and the momentum axes "k_par", "k_perp", "kz"
//     produced by conversion.
//   - Axes are normalised to be strictly increasing on construction; a
//     decreasing axis is reversed together with the data.
//   - Bin applies block-mean averaging over named axes (the optional
//     pre-processor that keeps large cube conversions tractable).
//
// Why:
//
//   - Label-based indexing without a global registry: every lookup takes the
//     Spectrum explicitly, and the buffer is owned exclusively by its value.
//   - Conversions never mutate their input; each stage builds a new Spectrum
//     and appends a human-readable provenance line to its history.
//
// Errors:
//
//   - ErrShapeMismatch: buffer length does not match the axis lengths.
//   - ErrAxisNotFound / ErrDuplicateAxis: axis-name lookup failures.
//   - ErrAxisNotMonotonic: an axis is neither increasing nor decreasing.
//   - ErrBadBinFactor: invalid binning requests.
//
// See docs in the kconv package for how spectra flow through a conversion.
package spectrum
