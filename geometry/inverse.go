package geometry

import "math"

const radToDeg = 180 / math.Pi

// Inverse maps in-plane momentum (1/Å) at kinetic energy ek (eV) back to
// analyser angles (deg) in the Ishida–Shin frame. Momenta outside the vacuum
// sphere yield NaN for both angles.
func (g *Geometry) Inverse(ek, kx, ky float64) (alpha, beta float64) {
	switch g.Type {
	case TypeI:
		return inverseI(ek, kx, ky, g.Delta, g.Xi-g.Xi0, g.Beta0)
	case TypeII:
		return inverseII(ek, kx, ky, g.Delta, g.Xi-g.Xi0, g.Beta0)
	case TypeIp:
		return g.inversePrimed(ek, kx, ky, false)
	default:
		return g.inversePrimed(ek, kx, ky, true)
	}
}

// inverseI recovers the slit angle and the full polar angle for Type I.
// xi is the tilt relative to normal emission; beta0 is added back so beta
// lands on the detector's polar scale.
func inverseI(ek, kx, ky, delta, xi, beta0 float64) (alpha, beta float64) {
	kvac := KVac(ek)
	sd, cd := math.Sincos(delta * degToRad)
	sx, cx := math.Sincos(xi * degToRad)
	kperp := math.Sqrt(kvac*kvac - kx*kx - ky*ky)

	alpha = math.Asin((sx*kperp-cx*(kx*cd+ky*sd))/kvac) * radToDeg
	beta = beta0 + math.Atan((kx*sd-ky*cd)/(kx*sx*cd+ky*sx*sd+cx*kperp))*radToDeg

	return alpha, beta
}

// inverseII recovers the slit angle and the full tilt angle for Type II.
// xi is the polar relative to normal emission.
func inverseII(ek, kx, ky, delta, xi, beta0 float64) (alpha, beta float64) {
	kvac := KVac(ek)
	sd, cd := math.Sincos(delta * degToRad)
	sx, cx := math.Sincos(xi * degToRad)
	kproj := kx*sd - ky*cd

	alpha = math.Asin((sx*math.Sqrt(kvac*kvac-kproj*kproj)-cx*kproj)/kvac) * radToDeg
	beta = beta0 + math.Atan((kx*cd+ky*sd)/math.Sqrt(kvac*kvac-kx*kx-ky*ky))*radToDeg

	return alpha, beta
}

// prepare caches the inverse manipulator rotation matrix T_rot⁻¹ (row-major)
// built from delta, xi−xi0 and chi−chi0. Only the primed inverses use it.
func (g *Geometry) prepare() {
	sd, cd := math.Sincos(g.Delta * degToRad)
	sx, cx := math.Sincos((g.Xi - g.Xi0) * degToRad)
	sc, cc := math.Sincos((g.Chi - g.Chi0) * degToRad)

	g.tinv = [9]float64{
		cx * cd, cx * sd, -sx,
		sc*sx*cd - cc*sd, sc*sx*sd + cc*cd, sc * cx,
		cc*sx*cd + sc*sd, cc*sx*sd - sc*cd, cc * cx,
	}
}

// inversePrimed recovers deflector-frame angles for Type I′/II′. Rotating k
// back with T_rot⁻¹ gives the unit vector the deflectors produced: its third
// component fixes the total emission angle r via arccos, and the in-plane
// components scale by sinc(r), so each deflector angle is r·component/sin(r).
// For I′ the slit lies along the rotated x axis, for II′ along y with the
// slit angle entering through +y (hence the sign split below).
func (g *Geometry) inversePrimed(ek, kx, ky float64, slitHorizontal bool) (alpha, beta float64) {
	if g.tinv == [9]float64{} {
		g.prepare()
	}
	kvac := KVac(ek)
	kperp := math.Sqrt(kvac*kvac - kx*kx - ky*ky)
	t := &g.tinv

	arg1 := t[6]*kx + t[7]*ky + t[8]*kperp
	argX := t[0]*kx + t[1]*ky + t[2]*kperp
	argY := t[3]*kx + t[4]*ky + t[5]*kperp

	// acos(u)/sqrt(1-u²) → 1 as u→1; take the limit near normal emission
	// instead of evaluating the 0/0 form.
	u := arg1 / kvac
	var factor float64
	switch {
	case u > 1-1e-12 && u < 1+1e-12:
		factor = 1 / kvac
	default:
		factor = math.Acos(u) / math.Sqrt(kvac*kvac-arg1*arg1)
	}

	if slitHorizontal {
		alpha = factor * argY * radToDeg
		beta = -factor * argX * radToDeg
	} else {
		alpha = -factor * argX * radToDeg
		beta = -factor * argY * radToDeg
	}

	return alpha, beta
}
