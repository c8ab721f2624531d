// Package export writes traced images to PNG, animated GIF, SVG and JSON.
package export

import (
	"image"
	"image/color"
	"math"
)

// Colormap maps t in [0, 1] to a color.
type Colormap func(t float64) color.RGBA

// Afmhot is the black-red-yellow-white map conventional for black hole
// intensity images.
func Afmhot(t float64) color.RGBA {
	t = clamp01(t)
	ch := func(off float64) uint8 { return uint8(255*clamp01(2*t-off) + 0.5) }
	return color.RGBA{R: ch(0), G: ch(0.5), B: ch(1), A: 255}
}

// Diverging runs blue-white-red with white at 0.5.
func Diverging(t float64) color.RGBA {
	t = clamp01(t)
	if t < 0.5 {
		s := 2 * t
		return color.RGBA{R: lerp(0x21, 0xf7, s), G: lerp(0x66, 0xf7, s), B: lerp(0xac, 0xf7, s), A: 255}
	}
	s := 2*t - 1
	return color.RGBA{R: lerp(0xf7, 0xb2, s), G: lerp(0xf7, 0x18, s), B: lerp(0xf7, 0x2b, s), A: 255}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + t*(float64(b)-float64(a)) + 0.5)
}

func clamp01(t float64) float64 {
	if math.IsNaN(t) {
		return 0
	}
	return math.Min(math.Max(t, 0), 1)
}

// Raster paints a row-major dim x dim map, one image pixel per map pixel.
// Signed maps are centred on zero; otherwise [0, max] spans the colormap.
func Raster(vals []float64, dim int, cmap Colormap, signed bool) *image.RGBA {
	bound := 0.0
	for _, v := range vals {
		if signed {
			v = math.Abs(v)
		}
		bound = math.Max(bound, v)
	}
	return RasterBound(vals, dim, cmap, signed, bound)
}

// RasterBound is Raster with a fixed normalisation bound.
func RasterBound(vals []float64, dim int, cmap Colormap, signed bool, bound float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, dim, dim))
	for i, v := range vals {
		t := 0.0
		switch {
		case !(bound > 0) && signed:
			t = 0.5
		case !(bound > 0):
		case signed:
			t = 0.5 + 0.5*v/bound
		default:
			t = v / bound
		}
		img.SetRGBA(i%dim, i/dim, cmap(t))
	}
	return img
}
