package special

import "math"

// reduce splits phi into j*pi + phi0 with phi0 in [-pi/2, pi/2].
func reduce(phi float64) (float64, float64) {
	j := math.Round(phi / math.Pi)
	return j, phi - j*math.Pi
}

// K is the complete elliptic integral of the first kind, K(m) = F(pi/2|m).
func K(m float64) float64 {
	return RF(0, 1-m, 1)
}

// CompleteE is the complete elliptic integral of the second kind.
func CompleteE(m float64) float64 {
	y := 1 - m
	return RF(0, y, 1) - m/3*RD(0, y, 1)
}

// CompletePi is the complete elliptic integral of the third kind
// Pi(n|m). For n > 1 it is the Cauchy principal value.
func CompletePi(n, m float64) float64 {
	y := 1 - m
	return RF(0, y, 1) + n/3*RJ(0, y, 1, 1-n)
}

// F is the incomplete elliptic integral of the first kind F(phi|m).
func F(phi, m float64) float64 {
	j, phi0 := reduce(phi)
	s, c := math.Sincos(phi0)
	v := s * RF(c*c, 1-m*s*s, 1)
	if j != 0 {
		v += 2 * j * K(m)
	}
	return v
}

// E is the incomplete elliptic integral of the second kind E(phi|m).
func E(phi, m float64) float64 {
	j, phi0 := reduce(phi)
	s, c := math.Sincos(phi0)
	c2, y := c*c, 1-m*s*s
	v := s*RF(c2, y, 1) - m/3*s*s*s*RD(c2, y, 1)
	if j != 0 {
		v += 2 * j * CompleteE(m)
	}
	return v
}

// Pi is the incomplete elliptic integral of the third kind
//
//	Pi(n; phi|m) = ∫_0^phi dθ / ((1 - n sin²θ) sqrt(1 - m sin²θ))
//
// for any real characteristic n. When 1 - n sin²θ vanishes inside the
// range the Cauchy principal value is returned.
func Pi(n, phi, m float64) float64 {
	j, phi0 := reduce(phi)
	s, c := math.Sincos(phi0)
	if s == 0 {
		if j == 0 {
			return 0
		}
		return 2 * j * CompletePi(n, m)
	}
	c2, y, s2 := c*c, 1-m*s*s, s*s
	v := s * RF(c2, y, 1)
	if n != 0 {
		v += n / 3 * s * s2 * RJ(c2, y, 1, 1-n*s2)
	}
	if j != 0 {
		v += 2 * j * CompletePi(n, m)
	}
	return v
}
