package geodesic

import "math"

// MinSpin replaces a vanishing spin; a = 0 makes the polar elliptic
// parameter u+/u- degenerate.
const MinSpin = 1e-6

// Regularize returns a spin that is safe to feed to the closed-form
// solutions.
func Regularize(a float64) float64 {
	if math.Abs(a) < 1e-12 {
		return MinSpin
	}
	return a
}

// Geometry holds the per-spin constants shared by every ray.
type Geometry struct {
	A  float64 // spin
	Rp float64 // outer horizon
	Rm float64 // inner horizon
}

// NewGeometry builds the horizon radii for spin a (after regularisation).
func NewGeometry(a float64) Geometry {
	a = Regularize(a)
	s := math.Sqrt(1 - a*a)
	return Geometry{A: a, Rp: 1 + s, Rm: 1 - s}
}

// ConservedQuantities maps a screen point to the angular momentum lambda and
// the Carter constant eta of the ray.
func ConservedQuantities(alpha, beta, inc, a float64) (lam, eta float64) {
	cosi := math.Cos(inc)
	lam = -alpha * math.Sin(inc)
	eta = (alpha*alpha-a*a)*cosi*cosi + beta*beta
	return lam, eta
}

// PolarTurningPoints returns u+ and u-, the roots of the polar potential in
// u = cos²θ. The product u+ u- = -eta/a² is used for whichever root would
// otherwise suffer cancellation.
func PolarTurningPoints(lam, eta, a float64) (up, um float64) {
	a2 := a * a
	dt := 0.5 * (1 - (eta+lam*lam)/a2)
	sq := math.Sqrt(dt*dt + eta/a2)
	if dt >= 0 {
		up = dt + sq
		um = -eta / a2 / up
	} else {
		um = dt - sq
		up = -eta / a2 / um
	}
	return up, um
}

// Delta is the Kerr horizon function r² - 2r + a².
func Delta(r, a float64) float64 {
	return r*r - 2*r + a*a
}

// RadialPotential evaluates R(r) = (r² + a² - a lam)² - Delta (eta + (lam - a)²).
func RadialPotential(r, a, lam, eta float64) float64 {
	k := r*r + a*a - a*lam
	return k*k - Delta(r, a)*(eta+(a-lam)*(a-lam))
}
