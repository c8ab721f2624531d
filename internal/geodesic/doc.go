// Package geodesic solves Kerr null geodesics in closed form.
//
// A ray is launched backward from a screen point (alpha, beta) of a distant
// observer at inclination inc. Its conserved quantities (lambda, eta) fix the
// roots of the radial potential, and the root configuration selects one of
// the cases handled here:
//
//   - [Case1]: four real roots, r2 < r+ < r3 (the ray turns around outside
//     the horizon)
//   - [Case2]: four real roots, all inside r+
//   - [Case3]: two real roots and a complex-conjugate pair
//   - [Unsupported]: anything else; never traced, never emits
//
// For every sub-image order n the package computes the Mino time to the
// n-th crossing of the equatorial plane, checks that the ray gets there
// before leaving the allowed radial range, and inverts the radial integral
// with Jacobi elliptic functions. Optionally the azimuth phi and the
// coordinate time t of the crossing are reconstructed from elliptic
// integrals of the third kind.
//
// Nothing here integrates an ODE. Pixels for which the requested crossing
// does not exist, or whose arithmetic leaves the real domain, come back with
// Valid=false and zero in every value slice.
package geodesic
