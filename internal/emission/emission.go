// Package emission evaluates what a fluid element on the equator radiates
// towards the observer: the redshift factor, the path-length factor and the
// Stokes parameters of synchrotron-like polarized emission in a magnetic
// field of fixed fluid-frame direction.
//
// The photon momentum is taken to the zero-angular-momentum frame, boosted
// into the fluid frame, crossed with the field to obtain the polarization
// vector, and that vector is carried back to the screen through the
// Walker-Penrose constant.
package emission

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/kerrtrace/internal/geodesic"
	"github.com/san-kum/kerrtrace/internal/parallel"
)

var (
	ErrBoost          = errors.New("emission: boost must lie in [0, 1)")
	ErrLengthMismatch = errors.New("emission: input slices differ in length")
)

// Fluid describes the emitting flow and its magnetic field.
type Fluid struct {
	// Boost is the speed of the fluid in the zero-angular-momentum frame.
	Boost float64
	// Chi is the direction of the boost in the equatorial plane, measured
	// from the outward radial direction towards +φ.
	Chi float64
	// FieldAngle is the in-plane field direction. Nil aligns the field
	// against the flow (Chi + π).
	FieldAngle *float64
	// Iota is the field inclination from the vertical.
	Iota float64
	// Spec is the spectral index.
	Spec float64
	// AlphaZeta is the exponent controlling how emission depends on the
	// angle between photon and field. Nil uses Spec.
	AlphaZeta *float64
	// ComputeV also evaluates circular polarization; otherwise V is zero.
	ComputeV bool
}

// Validate reports parameter values no boost matrix can be built for.
func (f Fluid) Validate() error {
	if f.Boost < 0 || f.Boost >= 1 || math.IsNaN(f.Boost) {
		return fmt.Errorf("%w: %g", ErrBoost, f.Boost)
	}
	return nil
}

func (f Fluid) fieldAngle() float64 {
	if f.FieldAngle != nil {
		return *f.FieldAngle
	}
	return f.Chi + math.Pi
}

func (f Fluid) alphaZeta() float64 {
	if f.AlphaZeta != nil {
		return *f.AlphaZeta
	}
	return f.Spec
}

func (f Fluid) field() r3.Vec {
	bz := math.Cos(f.Iota)
	beq := math.Sqrt(1 - bz*bz)
	eta := f.fieldAngle()
	return r3.Vec{X: beq * math.Cos(eta), Y: beq * math.Sin(eta), Z: bz}
}

// Input holds one sub-image order. All slices have the same length.
type Input struct {
	R          []float64
	SignPr     []float64
	SignPtheta []float64
	Lam        []float64
	Eta        []float64
	Alpha      []float64
	Beta       []float64
	Valid      []bool
}

func (in Input) check() error {
	n := len(in.R)
	for _, l := range []int{len(in.SignPr), len(in.SignPtheta), len(in.Lam), len(in.Eta), len(in.Alpha), len(in.Beta), len(in.Valid)} {
		if l != n {
			return fmt.Errorf("%w: %d != %d", ErrLengthMismatch, l, n)
		}
	}
	return nil
}

// Stokes holds the per-pixel emission of one order. Invalid pixels and
// non-finite results are zero.
type Stokes struct {
	I, Q, U, V []float64
	Redshift   []float64
	LP         []float64
}

func newStokes(n int) *Stokes {
	return &Stokes{
		I:        make([]float64, n),
		Q:        make([]float64, n),
		U:        make([]float64, n),
		V:        make([]float64, n),
		Redshift: make([]float64, n),
		LP:       make([]float64, n),
	}
}

// LorentzBoost returns the boost matrix for speed v along direction chi in
// the (r, φ) plane.
func LorentzBoost(v, chi float64) *mat.Dense {
	g := 1 / math.Sqrt(1-v*v)
	s, c := math.Sincos(chi)
	return mat.NewDense(4, 4, []float64{
		g, -g * v * c, -g * v * s, 0,
		-g * v * c, (g-1)*c*c + 1, (g-1)*s*c, 0,
		-g * v * s, (g-1)*s*c, (g-1)*s*s + 1, 0,
		0, 0, 0, 1,
	})
}

var minkowski = mat.NewDiagDense(4, []float64{-1, 1, 1, 1})

// Evaluate computes the emission of every valid pixel of one order.
func Evaluate(spin, inc float64, f Fluid, in Input) (*Stokes, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := in.check(); err != nil {
		return nil, err
	}
	a := geodesic.Regularize(spin)
	n := len(in.R)
	out := newStokes(n)

	boost := LorentzBoost(-f.Boost, f.Chi)
	var lowered mat.Dense
	lowered.Mul(minkowski, boost)

	e := evaluator{
		a:       a,
		sinInc:  math.Sin(inc),
		boost:   boost,
		lowered: &lowered,
		b:       f.field(),
		expo:    (f.alphaZeta() + 1) / 2,
		withV:   f.ComputeV,
	}
	parallel.For(n, 256, func(start, end int) {
		w := workspaces.Get().(*workspace)
		defer workspaces.Put(w)
		for i := start; i < end; i++ {
			if in.Valid[i] {
				e.pixel(w, in, i, out)
			}
		}
	})
	return out, nil
}

type evaluator struct {
	a, sinInc float64
	boost     *mat.Dense
	lowered   *mat.Dense
	b         r3.Vec
	expo      float64
	withV     bool
}

type workspace struct {
	tetrad *mat.Dense
	coord  mat.Dense
	frame  mat.Dense
	pLow   *mat.VecDense
	pFluid mat.VecDense
	fFluid *mat.VecDense
	kf     mat.VecDense
}

// workspaces recycles per-chunk matrices across orders and runs.
var workspaces = sync.Pool{
	New: func() any { return newWorkspace() },
}

func newWorkspace() *workspace {
	return &workspace{
		tetrad: mat.NewDense(4, 4, nil),
		pLow:   mat.NewVecDense(4, nil),
		fFluid: mat.NewVecDense(4, nil),
	}
}

func (e evaluator) pixel(w *workspace, in Input, i int, out *Stokes) {
	a := e.a
	r := in.R[i]
	lam, eta := in.Lam[i], in.Eta[i]
	signpr, signpth := in.SignPr[i], in.SignPtheta[i]

	rteta := math.Sqrt(eta)
	r2inv := 1 / (r * r)
	rasq := r*r + a*a
	delta := rasq - 2*r
	ralam := rasq - a*lam
	ralamD := ralam / delta
	xi := rasq*rasq - delta*a*a
	omega := 2 * a * r / xi
	rtR := math.Sqrt(ralam*ralam - delta*(eta+(a-lam)*(a-lam)))
	rtXiD := math.Sqrt(xi/delta) / r

	pt := r2inv * (-a*(a-lam) + rasq*ralamD)
	pr := signpr * r2inv * rtR
	pphi := r2inv * (-(a - lam) + a*ralamD)
	ptheta := signpth * rteta * r2inv

	// coordinate order (t, r, θ, φ)
	w.pLow.SetVec(0, -1)
	w.pLow.SetVec(1, signpr*rtR/delta)
	w.pLow.SetVec(2, signpth*rteta)
	w.pLow.SetVec(3, lam)

	w.tetrad.Zero()
	w.tetrad.Set(0, 0, rtXiD)
	w.tetrad.Set(0, 3, omega*rtXiD)
	w.tetrad.Set(1, 1, math.Sqrt(delta)/r)
	w.tetrad.Set(2, 3, r/math.Sqrt(xi))
	w.tetrad.Set(3, 2, -1/r)

	w.coord.Mul(e.lowered, w.tetrad)
	w.frame.Mul(e.boost, w.tetrad)
	w.pFluid.MulVec(&w.coord, w.pLow)

	p0 := w.pFluid.AtVec(0)
	redshift := 1 / p0
	lp := math.Abs(p0 / w.pFluid.AtVec(3))

	pSpatial := r3.Vec{X: w.pFluid.AtVec(1), Y: w.pFluid.AtVec(2), Z: w.pFluid.AtVec(3)}
	fv := r3.Scale(redshift, r3.Cross(pSpatial, e.b))
	sinZeta := r3.Norm(fv)

	w.fFluid.SetVec(0, 0)
	w.fFluid.SetVec(1, fv.X)
	w.fFluid.SetVec(2, fv.Y)
	w.fFluid.SetVec(3, fv.Z)
	w.kf.MulVec(w.frame.T(), w.fFluid)
	kft, kfr, kfth, kfph := w.kf.AtVec(0), w.kf.AtVec(1), w.kf.AtVec(2), w.kf.AtVec(3)

	kappa1 := r * ((pt*kfr - pr*kft) + a*(pr*kfph-pphi*kfr))
	kappa2 := -r * (rasq*(pphi*kfth-ptheta*kfph) - a*(pt*kfth-ptheta*kft))

	alpha, beta := in.Alpha[i], in.Beta[i]
	nu := -(alpha + a*e.sinInc)
	norm := math.Sqrt((nu*nu+beta*beta)*(kappa1*kappa1+kappa2*kappa2)) / math.Pow(sinZeta, e.expo)
	ea := (beta*kappa2 - nu*kappa1) / norm
	eb := (beta*kappa1 + nu*kappa2) / norm

	q := finite(-(ea*ea - eb*eb))
	u := finite(-2 * ea * eb)
	out.Q[i] = q
	out.U[i] = u
	out.I[i] = math.Sqrt(q*q + u*u)
	out.Redshift[i] = finite(redshift)
	out.LP[i] = finite(lp)
	if e.withV {
		out.V[i] = finite(r3.Dot(pSpatial, e.b))
	}
}

func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
