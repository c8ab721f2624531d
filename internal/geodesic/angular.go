package geodesic

import (
	"math"

	"github.com/san-kum/kerrtrace/internal/special"
)

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return x
	}
}

// polar carries the θ motion of one ray: the Mino-time bookkeeping that
// counts equatorial crossings, and the angular contributions G_φ and G_t.
type polar struct {
	a, up, um, urat float64
	sb              float64 // sign(beta)
	scale           float64 // sqrt(-u- a²)
	kurat           float64
	fobsArg, fobs   float64
	gphO, gthO, gtO float64
}

func newPolar(a, beta, inc, up, um float64) polar {
	p := polar{
		a:     a,
		up:    up,
		um:    um,
		urat:  up / um,
		sb:    sign(beta),
		scale: math.Sqrt(-um * a * a),
	}
	p.kurat = special.K(p.urat)
	p.fobsArg = math.Asin(math.Cos(inc) / math.Sqrt(up))
	p.fobs = special.F(p.fobsArg, p.urat)

	p.gthO = -p.fobs / p.scale
	p.gphO = -special.Pi(up, p.fobsArg, p.urat) / p.scale
	eobs := special.E(p.fobsArg, p.urat)
	p.gtO = 2 * up / p.scale * (eobs - p.fobs) / (2 * p.urat)
	return p
}

// mino returns the crossing count m for order n and the Mino time G_θ
// accumulated between the observer and the n-th equatorial crossing.
func (p polar) mino(n int) (m, ir float64) {
	m = float64(n)
	if p.sb >= 0 {
		m++
	}
	ir = (2*m*p.kurat - p.sb*p.fobs) / p.scale
	return m, ir
}

// signPtheta is the sign of the polar momentum at the n-th crossing.
func (p polar) signPtheta(m float64) float64 {
	if math.Mod(m, 2) == 0 {
		return p.sb
	}
	return -p.sb
}

// amplitude converts the Mino time tau into the Jacobi amplitude of the
// polar motion. The parameter u+/u- is negative, so the amplitude is taken
// through the reciprocal-modulus form with mk = urat/(urat-1) in (0, 1):
//
//	am(sqrt(1-mk) x | urat) = pi/2 - am(K(mk) - x | mk)
func (p polar) amplitude(tau float64) float64 {
	snarg := p.scale * (-tau + p.sb*p.gthO)
	if math.Abs(snarg) < 1e-12 {
		return snarg
	}
	mk := p.urat / (p.urat - 1)
	x := snarg / math.Sqrt(1-mk)
	return 0.5*math.Pi - special.Jacobi(special.K(mk)-x, mk).Am
}

// gphi is the angular part G_φ of the azimuth integral.
func (p polar) gphi(phiTau float64) float64 {
	return special.Pi(p.up, phiTau, p.urat)/p.scale - p.sb*p.gphO
}

// gt is the angular part G_t of the time integral.
func (p polar) gt(phiTau float64) float64 {
	e := special.E(phiTau, p.urat)
	f := special.F(phiTau, p.urat)
	return -(2*p.up/p.scale*(e-f)/(2*p.urat)) - p.sb*p.gtO
}
