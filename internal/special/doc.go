// Package special provides the elliptic special functions used by the
// closed-form Kerr geodesic solutions.
//
// Everything is built on Carlson's symmetric integrals:
//
//   - [RF], [RD]: first and second kind (delegated to gonum mathext)
//   - [RC], [RJ]: degenerate and third kind, with Cauchy principal values
//     for negative second / fourth arguments
//
// On top of these the package exposes Legendre's incomplete integrals
// [F], [E] and [Pi] for any real amplitude (periodic extension), any
// parameter m < 1 including negative m, and any characteristic n (the
// principal value is returned when 1 - n sin²φ changes sign), the complete
// integrals [K], [CompleteE], [CompletePi], and the Jacobi elliptic
// functions via [Jacobi].
//
// Out-of-domain arguments return NaN rather than panicking; callers mask
// the affected pixels.
package special
