// Package adaptive traces higher-order sub-images on finer grids restricted
// to the neighbourhood of the previous order's support.
package adaptive

import (
	"context"
	"fmt"

	"github.com/san-kum/kerrtrace/internal/geodesic"
	"github.com/san-kum/kerrtrace/internal/screen"
)

// Layer is one sub-image order on the grid it was traced at. Per-pixel
// slices cover the whole grid; pixels outside Selected hold zeros.
type Layer struct {
	geodesic.Order
	Grid     screen.Grid
	Alpha    []float64
	Beta     []float64
	Lam      []float64
	Eta      []float64
	Cases    []geodesic.Case
	Selected []bool
}

// Plan describes one compositor run.
type Plan struct {
	Params geodesic.Params
	Base   screen.Grid
	// Scale divides screen coordinates to give alpha and beta in units of M.
	Scale  float64
	Factor int
	Nmax   int
}

func (p Plan) flat() bool {
	return p.Factor <= 1 || p.Nmax == 0
}

// Levels returns the grid used for every order.
func (p Plan) Levels() []screen.Grid {
	f := p.Factor
	if p.flat() {
		f = 1
	}
	return screen.Levels(p.Base.FOV, p.Base.Dim, f, p.Nmax)
}

// Trace runs the plan. Without refinement all orders share the base grid.
func Trace(ctx context.Context, p Plan) ([]Layer, error) {
	if p.Scale <= 0 {
		return nil, fmt.Errorf("adaptive: non-positive scale %g", p.Scale)
	}
	if p.Nmax < 0 {
		return nil, fmt.Errorf("adaptive: negative nmax %d", p.Nmax)
	}
	levels := p.Levels()
	if p.flat() {
		return traceFlat(ctx, p, levels[0])
	}

	// level 0 only needs order 1 to seed the refinement mask
	alpha, beta := levels[0].Cartesian(p.Scale, levels[0].All())
	b, err := geodesic.Trace(ctx, p.Params, alpha, beta, 0, 1)
	if err != nil {
		return nil, err
	}
	base := fullLayer(levels[0], b, b.Order(0))
	rest, err := refine(ctx, p, levels, 1, b.Order(1).Valid)
	if err != nil {
		return nil, err
	}
	return append([]Layer{base}, rest...), nil
}

func traceFlat(ctx context.Context, p Plan, g screen.Grid) ([]Layer, error) {
	alpha, beta := g.Cartesian(p.Scale, g.All())
	b, err := geodesic.Trace(ctx, p.Params, alpha, beta, 0, p.Nmax)
	if err != nil {
		return nil, err
	}
	layers := make([]Layer, len(b.Orders))
	for k := range b.Orders {
		layers[k] = fullLayer(g, b, &b.Orders[k])
	}
	return layers, nil
}

// refine traces order n on levels[n], selecting the pixels under the
// dilated, upscaled order-n mask of levels[n-1]. It returns the layers for
// orders n..Nmax.
func refine(ctx context.Context, p Plan, levels []screen.Grid, n int, prev []bool) ([]Layer, error) {
	g := levels[n]
	sel := screen.Upscale(screen.Dilate(prev, levels[n-1].Dim), levels[n-1].Dim, p.Factor)
	idx := screen.Indices(sel)
	if len(idx) == 0 {
		return emptyLayers(p, levels, n), nil
	}

	top := n + 1
	if top > p.Nmax {
		top = p.Nmax
	}
	alpha, beta := g.Cartesian(p.Scale, idx)
	b, err := geodesic.Trace(ctx, p.Params, alpha, beta, n, top)
	if err != nil {
		return nil, err
	}
	layer := layerFrom(g, b, b.Order(n), idx, sel)
	if n == p.Nmax {
		return []Layer{layer}, nil
	}

	next := screen.Scatter(g.Size(), idx, b.Order(n+1).Valid)
	rest, err := refine(ctx, p, levels, n+1, next)
	if err != nil {
		return nil, err
	}
	return append([]Layer{layer}, rest...), nil
}

// emptyLayers returns zeroed layers for orders n..Nmax once nothing is left
// to refine.
func emptyLayers(p Plan, levels []screen.Grid, n int) []Layer {
	layers := make([]Layer, 0, p.Nmax-n+1)
	for k := n; k <= p.Nmax; k++ {
		g := levels[k]
		size := g.Size()
		layers = append(layers, Layer{
			Order: geodesic.Order{
				N:          k,
				R:          make([]float64, size),
				Phi:        make([]float64, size),
				T:          make([]float64, size),
				SignPr:     make([]float64, size),
				SignPtheta: make([]float64, size),
				Valid:      make([]bool, size),
			},
			Grid:     g,
			Alpha:    make([]float64, size),
			Beta:     make([]float64, size),
			Lam:      make([]float64, size),
			Eta:      make([]float64, size),
			Cases:    make([]geodesic.Case, size),
			Selected: make([]bool, size),
		})
	}
	return layers
}

// fullLayer wraps a batch traced over every pixel of g.
func fullLayer(g screen.Grid, b *geodesic.Batch, o *geodesic.Order) Layer {
	all := make([]bool, g.Size())
	for i := range all {
		all[i] = true
	}
	return Layer{
		Order:    *o,
		Grid:     g,
		Alpha:    b.Alpha,
		Beta:     b.Beta,
		Lam:      b.Lam,
		Eta:      b.Eta,
		Cases:    b.Cases,
		Selected: all,
	}
}

// layerFrom expands the traced subset idx back onto the full grid.
func layerFrom(g screen.Grid, b *geodesic.Batch, o *geodesic.Order, idx []int, sel []bool) Layer {
	size := g.Size()
	return Layer{
		Order: geodesic.Order{
			N:          o.N,
			R:          screen.Scatter(size, idx, o.R),
			Phi:        screen.Scatter(size, idx, o.Phi),
			T:          screen.Scatter(size, idx, o.T),
			SignPr:     screen.Scatter(size, idx, o.SignPr),
			SignPtheta: screen.Scatter(size, idx, o.SignPtheta),
			Valid:      screen.Scatter(size, idx, o.Valid),
		},
		Grid:     g,
		Alpha:    screen.Scatter(size, idx, b.Alpha),
		Beta:     screen.Scatter(size, idx, b.Beta),
		Lam:      screen.Scatter(size, idx, b.Lam),
		Eta:      screen.Scatter(size, idx, b.Eta),
		Cases:    screen.Scatter(size, idx, b.Cases),
		Selected: sel,
	}
}
