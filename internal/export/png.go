package export

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/san-kum/kerrtrace/internal/render"
)

// Resize scales src to size x size. Smooth uses Catmull-Rom, otherwise
// pixels stay square.
func Resize(src image.Image, size int, smooth bool) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	var s xdraw.Scaler = xdraw.NearestNeighbor
	if smooth {
		s = xdraw.CatmullRom
	}
	s.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// Label writes text in the top-left corner.
func Label(img xdraw.Image, text string, c color.Color) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(4, 4+basicfont.Face7x13.Ascent),
	}
	d.DrawString(text)
}

func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return err
	}
	return f.Close()
}

// PNGOptions controls Stokes PNG output.
type PNGOptions struct {
	Size   int
	Smooth bool
	Label  bool
}

// StokesPNG writes one PNG per Stokes component of img into dir and
// returns the paths. I uses Afmhot, Q, U and V the diverging map.
func StokesPNG(dir, prefix string, img render.Image, opt PNGOptions) ([]string, error) {
	if opt.Size <= 0 {
		opt.Size = img.Dim
	}
	maps := []struct {
		name string
		vals []float64
		cmap Colormap
		sign bool
	}{
		{"I", img.I, Afmhot, false},
		{"Q", img.Q, Diverging, true},
		{"U", img.U, Diverging, true},
		{"V", img.V, Diverging, true},
	}
	paths := make([]string, 0, len(maps))
	for _, m := range maps {
		out := Resize(Raster(m.vals, img.Dim, m.cmap, m.sign), opt.Size, opt.Smooth)
		if opt.Label {
			Label(out, fmt.Sprintf("%s  t=%.1f", m.name, img.Time), color.White)
		}
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", prefix, m.name))
		if err := WritePNG(path, out); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
