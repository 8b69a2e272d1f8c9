// Package fermi resolves the energy reference of a spectrum: where the
// Fermi level sits in detector kinetic energy, how it curves along the
// analyser slit, and how to move data onto a binding-energy scale.
//
// What:
//
//   - Reference: the Fermi-level calibration in one of three forms —
//     Constant (rigid kinetic energy), Poly (up to cubic in theta_par) and
//     Sampled (measured EF per slit angle, linearly interpolated and
//     end-extrapolated).
//   - WorkFunction: wf = hv − EF(0°), the effective work function the
//     momentum conversion needs.
//   - BEScale: the padded binding-energy range covering the full detector
//     window for every slit angle (negative below the Fermi level).
//   - ApplyBE: rewrites the eV axis from kinetic to binding energy; a
//     constant reference shifts the axis, an angle-dependent one resamples
//     each energy curve.
//   - EstimateEF / EstimateHv: last-resort estimators used when no
//     calibration metadata exists. Both report warnings; neither is a
//     substitute for a measured gold reference.
//   - AlignHv: per-photon-energy Fermi level for hv scans, from the
//     derivative estimator smoothed by a polynomial fit over hv.
//
// Estimates are advisory by construction: every automatic path attaches a
// spectrum.Warning and the caller decides whether to trust it.
package fermi
