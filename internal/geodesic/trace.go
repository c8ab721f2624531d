package geodesic

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

var (
	ErrLengthMismatch = errors.New("geodesic: alpha and beta differ in length")
	ErrOrderRange     = errors.New("geodesic: invalid order range")
	ErrTimeAtInfinity = errors.New("geodesic: time needs a finite observer distance")
)

// phiObserver is the azimuth offset placing the observer at φ = 3π/2.
const phiObserver = 1.5 * math.Pi

// Mode selects which of φ and t are computed. An axisymmetric run skips φ,
// a stationary one skips t.
type Mode struct {
	Axisymmetric bool
	Stationary   bool
}

// Params fixes the spacetime and the observer for a batch of rays.
type Params struct {
	Spin        float64
	Inclination float64 // radians, in (0, π/2]
	// ObserverDistance in units of M. Zero or +Inf places the observer at
	// infinity; t is only meaningful for a finite distance.
	ObserverDistance float64
	Mode             Mode
}

func (p Params) observer() float64 {
	if p.ObserverDistance <= 0 {
		return math.Inf(1)
	}
	return p.ObserverDistance
}

// Order is the n-th equatorial crossing of every ray in a batch. Entries
// where Valid is false are zero.
type Order struct {
	N          int
	R          []float64
	Phi        []float64
	T          []float64
	SignPr     []float64
	SignPtheta []float64
	Valid      []bool
}

func newOrder(n, size int) Order {
	return Order{
		N:          n,
		R:          make([]float64, size),
		Phi:        make([]float64, size),
		T:          make([]float64, size),
		SignPr:     make([]float64, size),
		SignPtheta: make([]float64, size),
		Valid:      make([]bool, size),
	}
}

// Count returns the number of valid crossings.
func (o *Order) Count() int {
	c := 0
	for _, v := range o.Valid {
		if v {
			c++
		}
	}
	return c
}

// Batch is the result of tracing one set of screen points.
type Batch struct {
	Alpha, Beta []float64
	Lam, Eta    []float64
	Cases       []Case
	Orders      []Order
}

// Order returns the crossing of order n, or nil if it was not traced.
func (b *Batch) Order(n int) *Order {
	for i := range b.Orders {
		if b.Orders[i].N == n {
			return &b.Orders[i]
		}
	}
	return nil
}

type crossing struct {
	r, phi, t          float64
	signPr, signPtheta float64
	valid              bool
}

type solver interface {
	cross(n int) crossing
}

// Trace solves every ray (alpha[i], beta[i]) for the crossings of order
// nmin..nmax. Orders are evaluated concurrently; the context is checked
// between rays.
func Trace(ctx context.Context, p Params, alpha, beta []float64, nmin, nmax int) (*Batch, error) {
	if len(alpha) != len(beta) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(alpha), len(beta))
	}
	if nmin < 0 || nmax < nmin {
		return nil, fmt.Errorf("%w: [%d, %d]", ErrOrderRange, nmin, nmax)
	}

	g := NewGeometry(p.Spin)
	ro := p.observer()
	if !p.Mode.Stationary && math.IsInf(ro, 1) {
		return nil, ErrTimeAtInfinity
	}
	size := len(alpha)

	b := &Batch{
		Alpha: alpha,
		Beta:  beta,
		Lam:   make([]float64, size),
		Eta:   make([]float64, size),
		Cases: make([]Case, size),
	}
	solvers := make([]solver, size)
	for i := range alpha {
		lam, eta := ConservedQuantities(alpha[i], beta[i], p.Inclination, g.A)
		b.Lam[i], b.Eta[i] = lam, eta

		roots := RadialRoots(lam, eta, g.A)
		c := Classify(roots, g.Rp)
		b.Cases[i] = c
		if c == Unsupported {
			continue
		}

		up, um := PolarTurningPoints(lam, eta, g.A)
		pol := newPolar(g.A, beta[i], p.Inclination, up, um)
		switch c {
		case Case1, Case2:
			solvers[i] = newRadialFour(g, pol, c, lam, roots, ro, p.Mode)
		case Case3:
			solvers[i] = newRadialTwo(g, pol, lam, roots, ro, p.Mode)
		}
	}

	b.Orders = make([]Order, nmax-nmin+1)
	eg, ctx := errgroup.WithContext(ctx)
	for k := range b.Orders {
		n := nmin + k
		b.Orders[k] = newOrder(n, size)
		o := &b.Orders[k]
		eg.Go(func() error {
			for i, s := range solvers {
				if i%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				if s == nil {
					continue
				}
				c := s.cross(n)
				if !c.valid {
					continue
				}
				o.R[i] = c.r
				o.Phi[i] = c.phi
				o.T[i] = c.t
				o.SignPr[i] = c.signPr
				o.SignPtheta[i] = c.signPtheta
				o.Valid[i] = true
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return b, nil
}

// iPhi is the radial part of the azimuth integral.
func (g Geometry) iPhi(lam, ip, im float64) float64 {
	al := 0.5 * g.A * lam
	return 2 * g.A / (g.Rp - g.Rm) * ((g.Rp-al)*ip - (g.Rm-al)*im)
}

// iT is the radial part of the time integral.
func (g Geometry) iT(lam, tau, i1, i2, ip, im float64) float64 {
	al := 0.5 * g.A * lam
	ita := 4 / (g.Rp - g.Rm) * ((g.Rp*g.Rp-al*g.Rp)*ip - (g.Rm*g.Rm-al*g.Rm)*im)
	return ita + 4*(-tau) + 2*i1 + i2
}

// observerTimeOffset removes the divergent part of the coordinate time so
// that t stays finite for a distant observer at finite r_o.
func observerTimeOffset(ro float64) float64 {
	return ro + 2*math.Log(ro)
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
