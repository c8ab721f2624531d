package special

import "math"

// JacobiResult holds sn, cn, dn and the amplitude am of u for parameter m.
type JacobiResult struct {
	Sn, Cn, Dn, Am float64
}

// Jacobi evaluates the Jacobi elliptic functions of u for 0 <= m <= 1 using
// the descending Landen (AGM) transformation. Outside that range every
// component is NaN.
func Jacobi(u, m float64) JacobiResult {
	if math.IsNaN(u) || math.IsNaN(m) || m < 0 || m > 1 {
		nan := math.NaN()
		return JacobiResult{nan, nan, nan, nan}
	}

	if m < 1e-9 {
		t, b := math.Sincos(u)
		ai := 0.25 * m * (u - t*b)
		return JacobiResult{
			Sn: t - ai*b,
			Cn: b + ai*t,
			Dn: 1 - 0.5*m*t*t,
			Am: u - ai,
		}
	}

	if m >= 0.9999999999 {
		ai := 0.25 * (1 - m)
		b := math.Cosh(u)
		t := math.Tanh(u)
		phi := 1 / b
		twon := b * math.Sinh(u)
		sn := t + ai*(twon-u)/(b*b)
		am := 2*math.Atan(math.Exp(u)) - math.Pi/2 + ai*(twon-u)/b
		ai *= t * phi
		return JacobiResult{
			Sn: sn,
			Cn: phi - ai*(twon-u),
			Dn: phi + ai*(twon+u),
			Am: am,
		}
	}

	const eps = 1.11022302462515654042e-16
	var a, c [9]float64
	a[0] = 1
	b := math.Sqrt(1 - m)
	c[0] = math.Sqrt(m)
	twon := 1.0
	i := 0
	for math.Abs(c[i]/a[i]) > eps {
		if i > 7 {
			break
		}
		ai := a[i]
		i++
		c[i] = (ai - b) / 2
		t := math.Sqrt(ai * b)
		a[i] = (ai + b) / 2
		b = t
		twon *= 2
	}

	phi := twon * a[i] * u
	var prev float64
	for ; i > 0; i-- {
		t := c[i] * math.Sin(phi) / a[i]
		prev = phi
		phi = (math.Asin(t) + phi) / 2
	}

	sn, cn := math.Sincos(phi)
	return JacobiResult{
		Sn: sn,
		Cn: cn,
		Dn: cn / math.Cos(phi-prev),
		Am: phi,
	}
}
