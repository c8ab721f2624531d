package geodesic

import (
	"math"

	"github.com/san-kum/kerrtrace/internal/special"
)

// radialFour solves rays whose four radial roots are real (cases 1 and 2).
// The total Mino time and the inversion r(τ) share the substitution
//
//	sn²(X₂|k) = r31 (r - r4) / (r41 (r - r3))
//
// so the sign conventions of the two cannot drift apart.
type radialFour struct {
	g    Geometry
	pol  polar
	c    Case
	lam  float64
	ro   float64
	mode Mode

	r1, r2, r3, r4     float64
	r31, r32, r41, r42 float64
	r43                float64
	sq                 float64 // sqrt(r31 r42)
	k                  float64
	i2ro, irTurn       float64
	irTotal            float64
	auxarg             float64
}

func newRadialFour(g Geometry, pol polar, c Case, lam float64, roots [4]complex128, ro float64, mode Mode) *radialFour {
	s := &radialFour{
		g:    g,
		pol:  pol,
		c:    c,
		lam:  lam,
		ro:   ro,
		mode: mode,
		r1:   real(roots[0]),
		r2:   real(roots[1]),
		r3:   real(roots[2]),
		r4:   real(roots[3]),
	}
	s.r31 = s.r3 - s.r1
	s.r32 = s.r3 - s.r2
	s.r41 = s.r4 - s.r1
	s.r42 = s.r4 - s.r2
	s.r43 = s.r4 - s.r3
	s.sq = math.Sqrt(s.r31 * s.r42)
	s.k = s.r32 * s.r41 / (s.r31 * s.r42)

	x2ro := math.Sqrt(s.r31 / s.r41)
	if !math.IsInf(ro, 1) {
		x2ro = math.Sqrt(s.r31 * (ro - s.r4) / (s.r41 * (ro - s.r3)))
	}
	s.auxarg = math.Asin(x2ro)
	s.i2ro = 2 / s.sq * special.F(s.auxarg, s.k)

	switch c {
	case Case1:
		s.irTurn = s.i2ro
		s.irTotal = 2 * s.irTurn
	default:
		rp := g.Rp
		x2rp := math.Sqrt(s.r31 * (rp - s.r4) / (s.r41 * (rp - s.r3)))
		i2rp := 2 / s.sq * special.F(math.Asin(x2rp), s.k)
		s.irTotal = s.i2ro - i2rp
	}
	return s
}

func (s *radialFour) cross(n int) crossing {
	m, ir := s.pol.mino(n)

	signpr := 1.0
	if s.c == Case1 {
		signpr = sign(s.irTurn - ir)
	}

	// I2(r_o) carries no sign(beta)
	x2 := 0.5 * s.sq * (-ir + s.i2ro)
	j := special.Jacobi(x2, s.k)
	sn2 := j.Sn * j.Sn
	r := (s.r4*s.r31 - s.r3*s.r41*sn2) / (s.r31 - s.r41*sn2)

	out := crossing{
		r:          r,
		signPr:     signpr,
		signPtheta: s.pol.signPtheta(m),
		valid:      ir < s.irTotal && isFinite(r),
	}
	if !out.valid || (s.mode.Axisymmetric && s.mode.Stationary) {
		return out
	}

	tau := ir
	g := s.g
	rp3, rm3 := g.Rp-s.r3, g.Rm-s.r3
	rp4, rm4 := g.Rp-s.r4, g.Rm-s.r4
	pref := 2 / s.sq

	pi := func(n float64) float64 {
		return special.Pi(n, j.Am, s.k) - signpr*special.Pi(n, s.auxarg, s.k)
	}
	nP := rp3 * s.r41 / (rp4 * s.r31)
	nM := rm3 * s.r41 / (rm4 * s.r31)
	piP := pref * (s.r43 / (rp3 * rp4)) * pi(nP)
	piM := pref * (s.r43 / (rm3 * rm4)) * pi(nM)
	ip := ir/rp3 - piP
	im := ir/rm3 - piM

	phiTau := s.pol.amplitude(tau)
	if !s.mode.Axisymmetric {
		out.phi = phiObserver + g.iPhi(s.lam, ip, im) + s.lam*s.pol.gphi(phiTau)
	}
	if !s.mode.Stationary {
		pi1 := pref * pi(s.r41/s.r31)

		dsn2dtau := 2 * j.Sn * j.Cn * j.Dn * (-0.5 * s.sq)
		den := s.r31 - s.r41*sn2
		drsdtau := -s.r31 * s.r43 * s.r41 * dsn2dtau / (den * den)
		ro := s.ro
		rpotO := (ro - s.r1) * (ro - s.r2) * (ro - s.r3) * (ro - s.r4)
		// no sign(beta) on dr/dτ at the observer
		drsdtauO := signpr * math.Sqrt(rpotO)
		h := drsdtau/(r-s.r3) - drsdtauO/(ro-s.r3)
		// no sign(beta) on the E term
		eTerm := s.sq * (special.F(j.Am, s.k) - signpr*special.E(s.auxarg, s.k))

		i1 := s.r3*(-tau) + s.r43*pi1
		i2 := h - 0.5*(s.r1*s.r4+s.r2*s.r3)*(-tau) - eTerm
		out.t = g.iT(s.lam, tau, i1, i2, ip, im) + g.A*g.A*s.pol.gt(phiTau) + observerTimeOffset(ro)
	}

	if !isFinite(out.phi) || !isFinite(out.t) {
		out.valid = false
	}
	return out
}
