// Package screen lays out the observer's image plane: square pixel grids,
// the nested grids used for adaptive refinement, and the mask and
// resampling helpers that move data between them.
//
// Pixels are stored row-major with row 0 at the top of the image. The
// horizontal axis is alpha and the vertical axis is beta.
package screen

import "math"

// Grid is a square grid of Dim×Dim pixels spanning FOV in both directions,
// centred on the black hole.
type Grid struct {
	Dim    int
	FOV    float64
	Rho    []float64
	Varphi []float64
}

// New builds a grid whose pixel centres sit at
//
//	x_j = -FOV/2 + (j + 1/2) d,  y_i = FOV/2 - (i + 1/2) d,  d = FOV/dim
func New(fov float64, dim int) Grid {
	g := Grid{
		Dim:    dim,
		FOV:    fov,
		Rho:    make([]float64, dim*dim),
		Varphi: make([]float64, dim*dim),
	}
	d := g.Pixel()
	for i := 0; i < dim; i++ {
		y := fov/2 - (float64(i)+0.5)*d
		for j := 0; j < dim; j++ {
			x := -fov/2 + (float64(j)+0.5)*d
			k := i*dim + j
			g.Rho[k] = math.Hypot(x, y)
			g.Varphi[k] = math.Atan2(y, x)
		}
	}
	return g
}

// Pixel returns the pixel width.
func (g Grid) Pixel() float64 {
	if g.Dim == 0 {
		return 0
	}
	return g.FOV / float64(g.Dim)
}

// Size returns the number of pixels.
func (g Grid) Size() int { return g.Dim * g.Dim }

// Levels returns the nested grids for orders 0..nmax. Level n has
// dim·factor^n pixels per side; with factor 1 every level is the base grid.
func Levels(fov float64, dim, factor, nmax int) []Grid {
	if factor < 1 {
		factor = 1
	}
	levels := make([]Grid, nmax+1)
	levels[0] = New(fov, dim)
	for n := 1; n <= nmax; n++ {
		if factor == 1 {
			levels[n] = levels[0]
			continue
		}
		levels[n] = New(fov, levels[n-1].Dim*factor)
	}
	return levels
}

// All lists every pixel index of the grid.
func (g Grid) All() []int {
	idx := make([]int, g.Size())
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// Cartesian converts the pixel centres listed in idx to screen coordinates
// divided by scale. An empty idx yields empty slices.
func (g Grid) Cartesian(scale float64, idx []int) (alpha, beta []float64) {
	alpha = make([]float64, len(idx))
	beta = make([]float64, len(idx))
	for k, i := range idx {
		rho := g.Rho[i] / scale
		s, c := math.Sincos(g.Varphi[i])
		alpha[k] = rho * c
		beta[k] = rho * s
	}
	return alpha, beta
}

// Indices lists the positions where mask is true. The result is never nil.
func Indices(mask []bool) []int {
	idx := []int{}
	for i, m := range mask {
		if m {
			idx = append(idx, i)
		}
	}
	return idx
}

// Dilate grows a dim×dim mask by one pixel in every direction, including
// diagonals.
func Dilate(mask []bool, dim int) []bool {
	out := make([]bool, len(mask))
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			if !mask[i*dim+j] {
				continue
			}
			for di := -1; di <= 1; di++ {
				for dj := -1; dj <= 1; dj++ {
					ii, jj := i+di, j+dj
					if ii < 0 || jj < 0 || ii >= dim || jj >= dim {
						continue
					}
					out[ii*dim+jj] = true
				}
			}
		}
	}
	return out
}

// Upscale repeats every pixel of a dim×dim mask into an f×f block.
func Upscale(mask []bool, dim, f int) []bool {
	nd := dim * f
	out := make([]bool, nd*nd)
	for i := 0; i < nd; i++ {
		for j := 0; j < nd; j++ {
			out[i*nd+j] = mask[(i/f)*dim+j/f]
		}
	}
	return out
}

// Scatter places vals at positions idx of a zeroed slice of length size.
func Scatter[T any](size int, idx []int, vals []T) []T {
	out := make([]T, size)
	for k, i := range idx {
		out[i] = vals[k]
	}
	return out
}

// Downsample averages f×f blocks of a dim×dim image.
func Downsample(vals []float64, dim, f int) []float64 {
	if f <= 1 {
		out := make([]float64, len(vals))
		copy(out, vals)
		return out
	}
	od := dim / f
	out := make([]float64, od*od)
	inv := 1 / float64(f*f)
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			out[(i/f)*od+j/f] += vals[i*dim+j] * inv
		}
	}
	return out
}
