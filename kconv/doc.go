// Package kconv is the conversion engine: it resamples ARPES spectra from
// detector coordinates (slit angle, mapping angle, kinetic energy, photon
// energy) onto momentum and binding-energy grids.
//
// What:
//
//   - Convert: master entry point. Routes by shape: plain dispersions go
//     through the bilinear (angle, E) → (k_par, E) path, manipulator and
//     deflector maps through ConvertMap, hv scans through ConvertKz.
//   - ConvertMap: Fermi-surface maps, trilinear
//     (mapping angle, theta_par, E) → (k_par, k_perp, E), with optional
//     energy-window or Fermi-surface selection.
//   - ConvertKz: photon-energy scans through the free-electron final-state
//     model, kz = C·√(V0 + KE − (k_par/C)²), as three resampling passes:
//     raw hv cube → binding energy → in-plane momentum → kz.
//   - ConvertBatch: the same conversion over a list of spectra.
//   - MakeHvScan: assembles individually measured dispersions into an hv
//     cube with per-slice detector energy offsets.
//
// How it works: the forward maps bound the momentum grid (sweeping every
// sampled angle at both kinetic-energy extremes, so no source point falls
// outside), then each output cell is pulled back through the inverse map to
// a source coordinate and the source is interpolated there. Cells outside
// the measured range, or outside the vacuum sphere, come back NaN.
//
// All conversions return a new Spectrum, a side-channel warning list for
// advisory conditions (estimated calibrations, default inner potential,
// automatic binning), and an error only for fatal misconfiguration. Nothing
// is ever printed; pass Options.Logger for progress output.
package kconv
