// Package kspace converts angle-resolved photoemission (ARPES) spectra from
// detector coordinates — analyser slit angle, mapping angle, kinetic energy
// and (optionally) photon energy — into crystal-momentum coordinates and
// binding energy.
//
// 🚀 What is kspace?
//
//	A synchronous, re-entrant conversion engine that brings together:
//		• spectrum/  — named-axis N-dimensional arrays, slicing & block binning
//		• geometry/  — the four Ishida–Shin analyser geometries (I, II, I′, II′),
//		  beamline sign conventions, forward & inverse angle↔k mappings
//		• fermi/     — Fermi-level references, work functions, binding-energy
//		  scales and automatic Fermi-edge estimation
//		• kconv/     — momentum-grid bounds, multilinear resampling, dispersion /
//		  Fermi-surface / kz conversions
//
// ✨ Why choose kspace?
//
//   - Pure transformations — inputs are never mutated; every conversion
//     returns a fresh Spectrum plus an explicit warning list
//   - Closed-form inverses — no iterative root finding, even for the
//     deflector (primed) geometries
//   - Honest numerics — momenta outside the vacuum sphere become NaN, not
//     exceptions; axes are always returned strictly increasing
//
// The angle conventions follow Ishida and Shin, Rev. Sci. Instrum. 89,
// 043903 (2018). See docs in each subpackage for the exact equation set.
//
//	go get github.com/arpes-go/kspace
package kspace
