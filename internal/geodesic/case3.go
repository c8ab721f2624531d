package geodesic

import (
	"math"
	"math/cmplx"

	"github.com/san-kum/kerrtrace/internal/special"
)

// radialTwo solves rays with two real roots and a complex-conjugate pair
// (case 3). The substitution is
//
//	cn(X₃|k₃) = (A (r - r1) - B (r - r2)) / (A (r - r1) + B (r - r2))
type radialTwo struct {
	g    Geometry
	pol  polar
	lam  float64
	ro   float64
	mode Mode

	r1, r2        float64
	ag, bg        float64 // A, B
	sqAB          float64
	k3            float64
	irO, irTotal  float64
	auxarg        float64
	alp, alm, al0 float64
}

func newRadialTwo(g Geometry, pol polar, lam float64, roots [4]complex128, ro float64, mode Mode) *radialTwo {
	s := &radialTwo{
		g:    g,
		pol:  pol,
		lam:  lam,
		ro:   ro,
		mode: mode,
		r1:   real(roots[0]),
		r2:   real(roots[1]),
	}
	r1c, r2c := complex(s.r1, 0), complex(s.r2, 0)
	r3, r4 := roots[2], roots[3]
	s.ag = real(cmplx.Sqrt((r3 - r2c) * (r4 - r2c)))
	s.bg = real(cmplx.Sqrt((r3 - r1c) * (r4 - r1c)))
	s.sqAB = math.Sqrt(s.ag * s.bg)

	r21 := s.r2 - s.r1
	sum := s.ag + s.bg
	s.k3 = (sum*sum - r21*r21) / (4 * s.ag * s.bg)

	x3ro := (s.ag - s.bg) / (s.ag + s.bg)
	if !math.IsInf(ro, 1) {
		x3ro = s.x3(ro)
	}
	x3rp := s.x3(g.Rp)
	x3rm := s.x3(g.Rm)
	s.alp = -1 / x3rp
	s.alm = -1 / x3rm
	s.al0 = (s.ag + s.bg) / (s.bg - s.ag)

	s.auxarg = math.Acos(x3ro)
	s.irO = special.F(s.auxarg, s.k3) / s.sqAB
	irP := special.F(math.Acos(x3rp), s.k3) / s.sqAB
	s.irTotal = s.irO - irP
	return s
}

func (s *radialTwo) x3(r float64) float64 {
	a := s.ag * (r - s.r1)
	b := s.bg * (r - s.r2)
	return (a - b) / (a + b)
}

func (s *radialTwo) cross(n int) crossing {
	m, ir := s.pol.mino(n)
	signpr := 1.0

	// Ir_o carries no sign(beta)
	x3 := s.sqAB * (-ir + signpr*s.irO)
	j := special.Jacobi(x3, s.k3)
	A, B := s.ag, s.bg
	r := ((B*s.r2 - A*s.r1) + (B*s.r2+A*s.r1)*j.Cn) / ((B - A) + (B+A)*j.Cn)

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
	r21 := s.r2 - s.r1
	rp1, rp2 := g.Rp-s.r1, g.Rp-s.r2
	rm1, rm2 := g.Rm-s.r1, g.Rm-s.r2
	withR2 := !s.mode.Stationary

	r1a0, r2a0 := r1r2(s.al0, j.Am, s.k3, withR2)
	r1b0, r2b0 := r1r2(s.al0, s.auxarg, s.k3, withR2)
	r1ap, _ := r1r2(s.alp, j.Am, s.k3, false)
	r1bp, _ := r1r2(s.alp, s.auxarg, s.k3, false)
	r1am, _ := r1r2(s.alm, j.Am, s.k3, false)
	r1bm, _ := r1r2(s.alm, s.auxarg, s.k3, false)

	c0 := 2 * r21 * s.sqAB / (B*B - A*A)
	pi1 := c0 * (r1a0 - signpr*r1b0)
	piP := 2 * r21 * s.sqAB / (B*rp2 - A*rp1) * (r1ap - signpr*r1bp)
	piM := 2 * r21 * s.sqAB / (B*rm2 - A*rm1) * (r1am - signpr*r1bm)

	pref := (B*s.r2 + A*s.r1) / (B + A)
	ip := -((B+A)*(-tau) + piP) / (B*rp2 + A*rp1)
	im := -((B+A)*(-tau) + piM) / (B*rm2 + A*rm1)

	phiTau := s.pol.amplitude(tau)
	if !s.mode.Axisymmetric {
		out.phi = phiObserver + g.iPhi(s.lam, ip, im) + s.lam*s.pol.gphi(phiTau)
	}
	if !s.mode.Stationary {
		pi2 := c0 * c0 * (r2a0 - signpr*r2b0)
		i1 := pref*(-tau) + pi1
		i2 := pref*pref*(-tau) + 2*pref*pi1 + s.sqAB*pi2
		out.t = g.iT(s.lam, tau, i1, i2, ip, im) + g.A*g.A*s.pol.gt(phiTau) + observerTimeOffset(s.ro)
	}

	if !isFinite(out.phi) || !isFinite(out.t) {
		out.valid = false
	}
	return out
}

// r1r2 evaluates the antiderivatives R1 and R2 of (1 + al cn)^-1 and
// (1 + al cn)^-2 at amplitude phi for parameter j.
func r1r2(al, phi, j float64, withR2 bool) (float64, float64) {
	al2 := al * al
	s, c := math.Sincos(phi)
	s2phi := math.Sqrt(1 - j*s*s)
	den := j + (1-j)*al2
	p1 := math.Sqrt((al2 - 1) / den)
	f1 := 0.5 * p1 * math.Log(math.Abs((p1*s2phi+s)/(p1*s2phi-s)))
	nn := al2 / (al2 - 1)
	r1 := (special.Pi(nn, phi, j) - al*f1) / (1 - al2)
	if !withR2 {
		return r1, math.NaN()
	}

	f := special.F(phi, j)
	e := special.E(phi, j)
	r2 := (f - (al2/den)*(e-al*s*s2phi/(1+al*c))) / (al2 - 1)
	r2 += (2*j - nn) * r1 / den
	return r1, r2
}
