package render

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/kerrtrace/internal/emission"
	"github.com/san-kum/kerrtrace/internal/kerr"
	"github.com/san-kum/kerrtrace/internal/screen"
)

func flat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func subImage(n, dim int, lp float64) kerr.SubImage {
	size := dim * dim
	valid := make([]bool, size)
	for i := range valid {
		valid[i] = true
	}
	return kerr.SubImage{
		N:        n,
		Grid:     screen.New(4, dim),
		Valid:    valid,
		R:        flat(5, size),
		Phi:      make([]float64, size),
		T:        make([]float64, size),
		I:        flat(1, size),
		Q:        flat(1, size),
		U:        make([]float64, size),
		V:        make([]float64, size),
		Redshift: flat(1, size),
		LP:       flat(lp, size),
	}
}

func result(orders ...kerr.SubImage) *kerr.Result {
	return &kerr.Result{
		Config: kerr.Config{Stationary: true},
		Base:   screen.New(4, 2),
		Orders: orders,
	}
}

func unit(Point) float64 { return 1 }

func TestComposeThin(t *testing.T) {
	imgs, err := Compose(result(subImage(0, 2, 2)), Params{Profile: unit, OpticalDepth: Thin, PolFrac: 1, PolFlux: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(imgs) != 1 {
		t.Fatalf("expected one image, got %d", len(imgs))
	}
	for i, v := range imgs[0].I {
		if math.Abs(v-2) > 1e-12 {
			t.Errorf("pixel %d: expected 2, got %g", i, v)
		}
	}
}

func TestComposeThick(t *testing.T) {
	imgs, err := Compose(result(subImage(0, 2, 2)), Params{Profile: unit, OpticalDepth: Thick, PolFlux: true})
	if err != nil {
		t.Fatal(err)
	}
	if imgs[0].I[0] != 1 {
		t.Errorf("expected no path-length factor, got %g", imgs[0].I[0])
	}
}

func TestComposeVaryingAttenuatesNextOrder(t *testing.T) {
	h := 0.5
	imgs, err := Compose(result(subImage(0, 2, 2), subImage(1, 2, 2)), Params{
		Profile: unit, OpticalDepth: Varying, H: h, PolFlux: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	e := math.Exp(-h * 2)
	o0, o1 := imgs[0].Orders[0], imgs[0].Orders[1]
	if math.Abs(o0.I[0]-(1-e)) > 1e-12 {
		t.Errorf("order 0: expected %g, got %g", 1-e, o0.I[0])
	}
	if math.Abs(o1.I[0]-(1-e)*e) > 1e-12 {
		t.Errorf("order 1: expected %g, got %g", (1-e)*e, o1.I[0])
	}
}

func TestComposeDownsamplesFinerOrders(t *testing.T) {
	fine := subImage(1, 4, 1)
	// only the top-left fine pixel of the first base pixel is lit
	for i := range fine.Valid {
		fine.Valid[i] = i == 0
	}
	imgs, err := Compose(result(subImage(0, 2, 1), fine), Params{Profile: unit, OpticalDepth: Thin, PolFlux: true})
	if err != nil {
		t.Fatal(err)
	}
	o1 := imgs[0].Orders[1]
	if len(o1.I) != 4 {
		t.Fatalf("expected base resolution, got %d pixels", len(o1.I))
	}
	if math.Abs(o1.I[0]-0.25) > 1e-12 || o1.I[1] != 0 {
		t.Errorf("unexpected downsampled order: %v", o1.I)
	}
	if math.Abs(imgs[0].I[0]-1.25) > 1e-12 {
		t.Errorf("expected summed 1.25, got %g", imgs[0].I[0])
	}
}

func TestComposeFluxAndEVPA(t *testing.T) {
	imgs, err := Compose(result(subImage(0, 2, 1)), Params{
		Profile:      unit,
		OpticalDepth: Thin,
		Flux:         0.6,
		PolFrac:      0.5,
		EVPARotation: math.Pi / 4,
		PolFlux:      true,
	})
	if err != nil {
		t.Fatal(err)
	}
	img := imgs[0]
	sum := 0.0
	for _, v := range img.I {
		sum += v
	}
	if math.Abs(sum-0.6) > 1e-12 {
		t.Errorf("expected total flux 0.6, got %g", sum)
	}
	// Q = 0.075 before rotation; a 45° EVPA turn moves it into U
	if math.Abs(img.Q[0]) > 1e-12 || math.Abs(img.U[0]-0.075) > 1e-12 {
		t.Errorf("expected (Q, U) = (0, 0.075), got (%g, %g)", img.Q[0], img.U[0])
	}
}

func TestComposeUnpolarized(t *testing.T) {
	imgs, err := Compose(result(subImage(0, 2, 1)), Params{Profile: unit, OpticalDepth: Thin, PolFrac: 1})
	if err != nil {
		t.Fatal(err)
	}
	for i := range imgs[0].I {
		if imgs[0].I[i] != 1 || imgs[0].Q[i] != 0 || imgs[0].U[i] != 0 {
			t.Fatalf("pixel %d: expected unpolarized unit intensity", i)
		}
	}
}

func TestComposeTimes(t *testing.T) {
	res := result(subImage(0, 2, 1))
	res.Config.Stationary = false
	prof := func(p Point) float64 { return 1 + p.T }
	imgs, err := Compose(res, Params{Profile: prof, OpticalDepth: Thick, Times: []float64{0, 1, 2}})
	if err != nil {
		t.Fatal(err)
	}
	if len(imgs) != 3 {
		t.Fatalf("expected 3 images, got %d", len(imgs))
	}
	for k, img := range imgs {
		if img.Time != float64(k) || img.I[0] != float64(k+1) {
			t.Errorf("time %d: got (%g, %g)", k, img.Time, img.I[0])
		}
	}
}

func TestComposeErrors(t *testing.T) {
	if _, err := Compose(result(), Params{}); err != ErrNoProfile {
		t.Errorf("expected ErrNoProfile, got %v", err)
	}
	if _, err := Compose(result(), Params{Profile: unit, OpticalDepth: "foggy"}); err == nil {
		t.Error("expected error for unknown optical depth")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	names := r.List()
	want := []string{"exp", "gaussian_ring", "hotspot", "power", "spiral"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("expected %s at %d, got %s", want[i], i, names[i])
		}
	}

	ring, err := r.Get("gaussian_ring", map[string]float64{"r0": 4})
	if err != nil {
		t.Fatal(err)
	}
	if ring(Point{R: 4}) != 1 {
		t.Errorf("ring should peak at r0")
	}
	if _, err := r.Get("nope", nil); err == nil {
		t.Error("expected error for unknown profile")
	}
	if _, err := r.Get("power", map[string]float64{"bogus": 1}); err == nil {
		t.Error("expected error for unknown argument")
	}
	if _, err := r.Get("exp", map[string]float64{"scale": 0}); err == nil {
		t.Error("expected error for zero scale")
	}

	spot, err := r.Get("hotspot", nil)
	if err != nil {
		t.Fatal(err)
	}
	period := 2 * math.Pi * math.Pow(6, 1.5)
	p0 := spot(Point{R: 6, Phi: 0, T: 0})
	p1 := spot(Point{R: 6, Phi: 0, T: period})
	if math.Abs(p0-1) > 1e-12 || math.Abs(p1-1) > 1e-9 {
		t.Errorf("hotspot should return after one period: %g %g", p0, p1)
	}
	if d := r.Defaults("power"); d["index"] != 3 {
		t.Errorf("unexpected power defaults %v", d)
	}
}

func TestComposeEngineFlux(t *testing.T) {
	cfg := kerr.Config{
		Spin:           0.5,
		Inclination:    30 * math.Pi / 180,
		MoD:            1,
		Nmax:           1,
		AdaptiveFactor: 2,
		Axisymmetric:   true,
		Stationary:     true,
		Fluid:          emission.Fluid{Boost: 0.2, Chi: -math.Pi / 2, Iota: math.Pi / 4, Spec: 1},
	}
	eng, err := kerr.New(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	res, err := eng.Run(context.Background(), screen.New(20, 24))
	if err != nil {
		t.Fatal(err)
	}
	prof, err := NewRegistry().Get("gaussian_ring", nil)
	if err != nil {
		t.Fatal(err)
	}
	imgs, err := Compose(res, Params{Profile: prof, Spec: 1, OpticalDepth: Thin, Flux: 0.6, PolFrac: 0.7, PolFlux: true})
	if err != nil {
		t.Fatal(err)
	}
	sum := 0.0
	for _, v := range imgs[0].I {
		if math.IsNaN(v) || v < 0 {
			t.Fatalf("bad intensity %g", v)
		}
		sum += v
	}
	if math.Abs(sum-0.6) > 1e-9 {
		t.Errorf("expected total flux 0.6, got %g", sum)
	}
}
