package geodesic

import "math"

// Case tags the root configuration of a ray.
type Case int

const (
	// Unsupported covers every configuration not handled below, in
	// particular two complex-conjugate pairs. Such rays are never traced.
	Unsupported Case = iota
	// Case1 has four real roots with r2 < r+ < r3.
	Case1
	// Case2 has four real roots with r4 < r+.
	Case2
	// Case3 has real r1, r2 and a complex-conjugate pair r3, r4.
	Case3
)

func (c Case) String() string {
	switch c {
	case Case1:
		return "case1"
	case Case2:
		return "case2"
	case Case3:
		return "case3"
	default:
		return "unsupported"
	}
}

// ImagTolerance is the absolute bound on |Im r| below which a root counts
// as real. It sets the case1/case3 boundary close to the critical curve.
var ImagTolerance = 1e-8

// conjTolerance is the relative part of the conjugate-pair test.
const conjTolerance = 1e-5

func isReal(z complex128) bool {
	return math.Abs(imag(z)) <= ImagTolerance
}

func isConjugate(x, y complex128) bool {
	return math.Abs(imag(x)+imag(y)) <= ImagTolerance+conjTolerance*math.Abs(imag(y))
}

// Classify assigns a case to one set of radial roots. Exactly one case is
// returned; NaN roots fall through to Unsupported.
func Classify(roots [4]complex128, rp float64) Case {
	r2, r3, r4 := real(roots[1]), real(roots[2]), real(roots[3])
	real12 := isReal(roots[0]) && isReal(roots[1])

	switch {
	case real12 && isReal(roots[2]) && isReal(roots[3]):
		if r2 < rp && r3 > rp {
			return Case1
		}
		if r4 < rp {
			return Case2
		}
	case real12 && !isReal(roots[2]) && isConjugate(roots[2], roots[3]) && r2 < rp:
		return Case3
	}
	return Unsupported
}

// ClassifyAll classifies a batch of root sets.
func ClassifyAll(roots [][4]complex128, rp float64) []Case {
	out := make([]Case, len(roots))
	for i, r := range roots {
		out[i] = Classify(r, rp)
	}
	return out
}
