package special

import (
	"math"

	"gonum.org/v1/gonum/mathext"
)

const (
	// duplication stops once every argument is within errTol of the mean;
	// the truncated series error then scales as errTol^6.
	errTol  = 1e-3
	maxIter = 64
)

// RF is Carlson's R_F(x, y, z).
func RF(x, y, z float64) float64 {
	return mathext.EllipticRF(x, y, z)
}

// RD is Carlson's R_D(x, y, z).
func RD(x, y, z float64) float64 {
	return mathext.EllipticRD(x, y, z)
}

// RC is Carlson's degenerate integral R_C(x, y). For y < 0 the Cauchy
// principal value is returned.
func RC(x, y float64) float64 {
	if math.IsNaN(x) || math.IsNaN(y) || x < 0 || y == 0 {
		return math.NaN()
	}

	xt, yt, w := x, y, 1.0
	if y < 0 {
		xt = x - y
		yt = -y
		w = math.Sqrt(x) / math.Sqrt(xt)
	}

	var ave, s float64
	for i := 0; i < maxIter; i++ {
		alamb := 2*math.Sqrt(xt)*math.Sqrt(yt) + yt
		xt = 0.25 * (xt + alamb)
		yt = 0.25 * (yt + alamb)
		ave = (xt + yt + yt) / 3
		s = (yt - ave) / ave
		if math.Abs(s) <= errTol {
			break
		}
	}

	const (
		c1 = 0.3
		c2 = 1.0 / 7.0
		c3 = 0.375
		c4 = 9.0 / 22.0
	)
	return w * (1 + s*s*(c1+s*(c2+s*(c3+s*c4)))) / math.Sqrt(ave)
}

// RJ is Carlson's R_J(x, y, z, p). For p < 0 the Cauchy principal value is
// returned.
func RJ(x, y, z, p float64) float64 {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsNaN(z) || math.IsNaN(p) {
		return math.NaN()
	}
	if x < 0 || y < 0 || z < 0 || p == 0 {
		return math.NaN()
	}

	var (
		xt, yt, zt, pt float64
		a, b, rcx      float64
	)
	if p > 0 {
		xt, yt, zt, pt = x, y, z, p
	} else {
		xt = math.Min(math.Min(x, y), z)
		zt = math.Max(math.Max(x, y), z)
		yt = x + y + z - xt - zt
		a = 1 / (yt - p)
		b = a * (zt - yt) * (yt - xt)
		pt = yt + b
		rho := xt * zt / yt
		tau := p * pt / yt
		rcx = RC(rho, tau)
	}
	x0, y0, z0 := xt, yt, zt

	sum, fac := 0.0, 1.0
	var ave, delx, dely, delz, delp float64
	for i := 0; i < maxIter; i++ {
		sx, sy, sz := math.Sqrt(xt), math.Sqrt(yt), math.Sqrt(zt)
		alamb := sx*(sy+sz) + sy*sz
		alpha := pt*(sx+sy+sz) + sx*sy*sz
		alpha *= alpha
		beta := pt * (pt + alamb) * (pt + alamb)
		sum += fac * RC(alpha, beta)
		fac *= 0.25
		xt = 0.25 * (xt + alamb)
		yt = 0.25 * (yt + alamb)
		zt = 0.25 * (zt + alamb)
		pt = 0.25 * (pt + alamb)
		ave = 0.2 * (xt + yt + zt + pt + pt)
		delx = (ave - xt) / ave
		dely = (ave - yt) / ave
		delz = (ave - zt) / ave
		delp = (ave - pt) / ave
		if math.Max(math.Max(math.Abs(delx), math.Abs(dely)), math.Max(math.Abs(delz), math.Abs(delp))) <= errTol {
			break
		}
	}

	const (
		c1 = 3.0 / 14.0
		c2 = 1.0 / 3.0
		c3 = 3.0 / 22.0
		c4 = 3.0 / 26.0
		c5 = 0.75 * c3
		c6 = 1.5 * c4
		c7 = 0.5 * c2
		c8 = c3 + c3
	)
	ea := delx*(dely+delz) + dely*delz
	eb := delx * dely * delz
	ec := delp * delp
	ed := ea - 3*ec
	ee := eb + 2*delp*(ea-ec)
	ans := 3*sum + fac*(1+ed*(-c1+c5*ed-c6*ee)+eb*(c7+delp*(-c8+delp*c4))+
		delp*ea*(c2-delp*c3)-c2*delp*ec)/(ave*math.Sqrt(ave))

	if p <= 0 {
		ans = a * (b*ans + 3*(rcx-RF(x0, y0, z0)))
	}
	return ans
}
