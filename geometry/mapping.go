package geometry

import "math"

const degToRad = math.Pi / 180

// sinc returns sin(x)/x with the x→0 limit. Deflector angles are not true
// rotation angles; the primed forward maps scale them by sinc(‖angle‖).
func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}

	return math.Sin(x) / x
}

// Forward maps analyser angles (deg) at kinetic energy ek (eV) to in-plane
// momentum (kx, ky) in 1/Å. alpha is the slit angle; beta is the full
// mapping angle for Type I/II or the perpendicular deflector angle for the
// primed types. Both are expected in the Ishida–Shin frame, i.e. already
// sign-corrected (Geometry.Alpha / Geometry.Beta values qualify).
func (g *Geometry) Forward(ek, alpha, beta float64) (kx, ky float64) {
	switch g.Type {
	case TypeI:
		return forwardI(ek, alpha, beta-g.Beta0, g.Delta, g.Xi-g.Xi0)
	case TypeII:
		return forwardII(ek, alpha, beta-g.Beta0, g.Delta, g.Xi-g.Xi0)
	case TypeIp:
		return forwardIp(ek, alpha, beta, g.Delta, g.Xi-g.Xi0, g.Chi-g.Chi0)
	default:
		return forwardIIp(ek, alpha, beta, g.Delta, g.Xi-g.Xi0, g.Chi-g.Chi0)
	}
}

// forwardI handles a slit-vertical analyser without deflectors. beta is the
// polar angle relative to normal emission, xi the relative tilt.
func forwardI(ek, alpha, beta, delta, xi float64) (kx, ky float64) {
	kvac := KVac(ek)
	sa, ca := math.Sincos(alpha * degToRad)
	sb, cb := math.Sincos(beta * degToRad)
	sd, cd := math.Sincos(delta * degToRad)
	sx, cx := math.Sincos(xi * degToRad)

	kx = kvac * ((sd*sb+cd*sx*cb)*ca - cd*cx*sa)
	ky = kvac * ((-cd*sb+sd*sx*cb)*ca - sd*cx*sa)

	return kx, ky
}

// forwardII handles a slit-horizontal analyser without deflectors. beta is
// the tilt angle relative to normal emission, xi the relative polar.
func forwardII(ek, alpha, beta, delta, xi float64) (kx, ky float64) {
	kvac := KVac(ek)
	sa, ca := math.Sincos(alpha * degToRad)
	sb := math.Sin(beta * degToRad)
	sd, cd := math.Sincos(delta * degToRad)
	sx, cx := math.Sincos(xi * degToRad)

	kx = kvac * ((sd*sx+cd*sb*cx)*ca - (sd*cx-cd*sb*sx)*sa)
	ky = kvac * ((-cd*sx+sd*sb*cx)*ca + (cd*cx+sd*sb*sx)*sa)

	return kx, ky
}

// forwardIp handles a slit-vertical analyser with deflectors. alpha already
// includes the parallel deflector angle; beta is the perpendicular deflector
// angle; xi and chi are tilt and polar relative to normal emission.
func forwardIp(ek, alpha, beta, delta, xi, chi float64) (kx, ky float64) {
	kvac := KVac(ek)
	a := alpha * degToRad
	b := beta * degToRad
	sd, cd := math.Sincos(delta * degToRad)
	sx, cx := math.Sincos(xi * degToRad)
	sc, cc := math.Sincos(chi * degToRad)

	r := math.Hypot(a, b)
	snc, cr := sinc(r), math.Cos(r)

	kx = kvac * ((-a*cd*cx+b*sd*cc-b*cd*sx*sc)*snc + (sd*sc+cd*sx*cc)*cr)
	ky = kvac * ((-a*sd*cx-b*cd*cc-b*sd*sx*sc)*snc - (cd*sc-sd*sx*cc)*cr)

	return kx, ky
}

// forwardIIp handles a slit-horizontal analyser with deflectors; the roles
// of alpha and beta swap relative to forwardIp.
func forwardIIp(ek, alpha, beta, delta, xi, chi float64) (kx, ky float64) {
	kvac := KVac(ek)
	a := alpha * degToRad
	b := beta * degToRad
	sd, cd := math.Sincos(delta * degToRad)
	sx, cx := math.Sincos(xi * degToRad)
	sc, cc := math.Sincos(chi * degToRad)

	r := math.Hypot(a, b)
	snc, cr := sinc(r), math.Cos(r)

	kx = kvac * ((-b*cd*cx-a*sd*cc+a*cd*sx*sc)*snc + (sd*sc+cd*sx*cc)*cr)
	ky = kvac * ((-b*sd*cx+a*cd*cc+a*sd*sx*sc)*snc - (cd*sc-sd*sx*cc)*cr)

	return kx, ky
}
