package geodesic

import (
	"math"
	"math/cmplx"
)

var (
	cbrt3 = math.Cbrt(3)
	cbrt2 = math.Cbrt(2)
	six23 = math.Pow(6, 2.0/3.0)
)

// RadialRoots returns the four roots r1..r4 of the radial potential using the
// resolvent cubic of the depressed quartic. Every step after the resolvent
// coefficients runs in complex arithmetic so that real and complex root
// configurations share one formula; telling them apart is left to
// [Classify].
func RadialRoots(lam, eta, a float64) [4]complex128 {
	A := complex(a*a-eta-lam*lam, 0)
	B := complex(2*(eta+(lam-a)*(lam-a)), 0)
	C := complex(-a*a*eta, 0)

	P := -A*A/12 - C
	Q := -A/3*((A/6)*(A/6)-C) - B*B/8
	H := -9*Q + cmplx.Sqrt(12*P*P*P+81*Q*Q)

	zsq := (-2*complex(cbrt3, 0)*P+complex(cbrt2, 0)*cmplx.Pow(H, 2.0/3.0))/
		(complex(2*six23, 0)*cmplx.Pow(H, 1.0/3.0)) - A/6
	z := cmplx.Sqrt(zsq)

	b4z := B / (4 * z)
	termp := cmplx.Sqrt(-A/2 - zsq + b4z)
	termn := cmplx.Sqrt(-A/2 - zsq - b4z)

	return [4]complex128{
		-z - termp,
		-z + termp,
		z - termn,
		z + termn,
	}
}
