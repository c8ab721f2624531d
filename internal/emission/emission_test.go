package emission

import (
	"context"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/kerrtrace/internal/geodesic"
	"github.com/san-kum/kerrtrace/internal/screen"
)

const (
	spin = 0.9
	inc  = 17 * math.Pi / 180
)

func traced(t *testing.T, n int) Input {
	t.Helper()
	g := screen.New(16, 24)
	alpha, beta := g.Cartesian(1, g.All())
	p := geodesic.Params{Spin: spin, Inclination: inc, Mode: geodesic.Mode{Axisymmetric: true, Stationary: true}}
	b, err := geodesic.Trace(context.Background(), p, alpha, beta, n, n)
	if err != nil {
		t.Fatal(err)
	}
	o := b.Order(n)
	return Input{
		R:          o.R,
		SignPr:     o.SignPr,
		SignPtheta: o.SignPtheta,
		Lam:        b.Lam,
		Eta:        b.Eta,
		Alpha:      alpha,
		Beta:       beta,
		Valid:      o.Valid,
	}
}

func fluid() Fluid {
	return Fluid{Boost: 0.3, Chi: -150 * math.Pi / 180, Iota: math.Pi / 3, Spec: 1}
}

func TestLorentzBoostInverse(t *testing.T) {
	var prod mat.Dense
	prod.Mul(LorentzBoost(0.6, 0.4), LorentzBoost(-0.6, 0.4))
	if !mat.EqualApprox(&prod, mat.NewDiagDense(4, []float64{1, 1, 1, 1}), 1e-12) {
		t.Errorf("boost and inverse do not cancel:\n%v", mat.Formatted(&prod))
	}
}

func TestEvaluateRedshiftPositive(t *testing.T) {
	for _, n := range []int{0, 1} {
		in := traced(t, n)
		out, err := Evaluate(spin, inc, fluid(), in)
		if err != nil {
			t.Fatal(err)
		}
		seen := 0
		for i, ok := range in.Valid {
			if !ok {
				continue
			}
			seen++
			if out.Redshift[i] <= 0 {
				t.Fatalf("n=%d pixel %d: redshift %g", n, i, out.Redshift[i])
			}
			if out.LP[i] < 0 {
				t.Fatalf("n=%d pixel %d: negative path factor", n, i)
			}
		}
		if seen == 0 {
			t.Fatalf("n=%d: no valid pixels", n)
		}
	}
}

func TestEvaluateMaskedPixelsZero(t *testing.T) {
	in := traced(t, 0)
	f := fluid()
	f.ComputeV = true
	out, err := Evaluate(spin, inc, f, in)
	if err != nil {
		t.Fatal(err)
	}
	for i, ok := range in.Valid {
		if ok {
			continue
		}
		if out.I[i] != 0 || out.Q[i] != 0 || out.U[i] != 0 || out.V[i] != 0 || out.Redshift[i] != 0 || out.LP[i] != 0 {
			t.Fatalf("masked pixel %d not zero", i)
		}
	}
}

func TestEvaluateFieldReversal(t *testing.T) {
	in := traced(t, 0)
	f := fluid()
	eta := f.Chi + math.Pi
	f.FieldAngle = &eta
	base, err := Evaluate(spin, inc, f, in)
	if err != nil {
		t.Fatal(err)
	}

	flipped := eta + math.Pi
	g := f
	g.FieldAngle = &flipped
	g.Iota = math.Pi - f.Iota
	rev, err := Evaluate(spin, inc, g, in)
	if err != nil {
		t.Fatal(err)
	}

	for i, ok := range in.Valid {
		if !ok {
			continue
		}
		p0 := base.Q[i]*base.Q[i] + base.U[i]*base.U[i]
		p1 := rev.Q[i]*rev.Q[i] + rev.U[i]*rev.U[i]
		if math.Abs(p0-p1) > 1e-9*(1+p0) {
			t.Fatalf("pixel %d: Q²+U² changed from %g to %g", i, p0, p1)
		}
	}
}

func TestEvaluateIntensityMatchesLinear(t *testing.T) {
	in := traced(t, 0)
	out, err := Evaluate(spin, inc, fluid(), in)
	if err != nil {
		t.Fatal(err)
	}
	for i := range out.I {
		want := math.Hypot(out.Q[i], out.U[i])
		if math.Abs(out.I[i]-want) > 1e-12*(1+want) {
			t.Fatalf("pixel %d: I=%g, |P|=%g", i, out.I[i], want)
		}
		if out.V[i] != 0 {
			t.Fatalf("pixel %d: V computed without request", i)
		}
	}
}

func TestEvaluateErrors(t *testing.T) {
	in := traced(t, 0)
	f := fluid()
	f.Boost = 1
	if _, err := Evaluate(spin, inc, f, in); !errors.Is(err, ErrBoost) {
		t.Errorf("expected ErrBoost, got %v", err)
	}
	in.Beta = in.Beta[:1]
	if _, err := Evaluate(spin, inc, fluid(), in); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestFieldDefaults(t *testing.T) {
	f := Fluid{Chi: 0.5, Iota: 0, Spec: 2}
	if f.fieldAngle() != 0.5+math.Pi {
		t.Errorf("default field angle wrong: %g", f.fieldAngle())
	}
	if f.alphaZeta() != 2 {
		t.Errorf("default alpha_zeta wrong: %g", f.alphaZeta())
	}
	b := f.field()
	if math.Abs(b.Z-1) > 1e-12 || math.Abs(b.X) > 1e-12 {
		t.Errorf("vertical field expected, got %+v", b)
	}
}
