// Package geometry resolves analyser/manipulator metadata into one of the
// four Ishida–Shin analyser geometries and provides the matched forward
// (angle→k) and inverse (k→angle) mapping pairs for each.
//
// What:
//
//   - Convention: an explicit per-beamline sign table plus the analyser slit
//     orientation, passed into Resolve by value — never looked up from
//     ambient state. Tables can be loaded from YAML.
//   - Resolve: reads the spectrum's angular axes and metadata, applies the
//     convention signs and normal-emission offsets, and produces a Geometry
//     holding the Ishida–Shin angle set {alpha, beta, delta, xi, chi}.
//   - Geometry.Forward / Geometry.Inverse: closed-form mappings between
//     analyser angles (deg) and in-plane momentum (1/Å) at a given kinetic
//     energy, one algebraic pair per analyser type:
//
//     Type I   — slit at 90°, no deflector; polar is the mapping angle.
//     Type II  — slit at 0°, no deflector; tilt is the mapping angle.
//     Type I′  — Type I analyser with electrostatic deflectors.
//     Type II′ — Type II analyser with electrostatic deflectors.
//
// The deflector (primed) forward maps carry a sinc(‖angle‖) correction since
// deflector angles are not true rotation angles; their inverses apply the
// inverse manipulator rotation matrix (Eqn A9 of Ishida and Shin, Rev. Sci.
// Instrum. 89, 043903 (2018)) followed by arccos/component-ratio recovery.
//
// Numerical policy:
//
//   - Momenta outside the vacuum sphere (|k| > kvac = 0.512317·√KE) yield
//     NaN from Inverse, never an error; downstream interpolation excludes
//     those cells via its fill policy.
//
// Errors:
//
//   - ErrMissingAngles: required manipulator angles absent from metadata.
//   - ErrUnsupportedMappingAxis: mapping axis incompatible with the resolved
//     analyser type.
//   - ErrBadConvention: malformed sign table.
//
// The forward/inverse round-trip test in this package is the authoritative
// check on the sign conventions; see roundtrip_test.go.
package geometry
