package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"

	xdraw "golang.org/x/image/draw"

	"github.com/san-kum/kerrtrace/internal/render"
)

var ErrNoFrames = errors.New("export: no frames")

// palette holds the Afmhot ramp plus white for labels.
func palette() color.Palette {
	p := make(color.Palette, 0, 256)
	for i := 0; i < 255; i++ {
		p = append(p, Afmhot(float64(i)/254))
	}
	return append(p, color.White)
}

// WriteGIF animates the intensity of images in order, one frame per
// observation time. The colour scale is shared across frames. delay is in
// hundredths of a second.
func WriteGIF(path string, images []render.Image, size, delay int) error {
	if len(images) == 0 {
		return ErrNoFrames
	}
	if size <= 0 {
		size = images[0].Dim
	}
	peak := 0.0
	for _, img := range images {
		for _, v := range img.I {
			peak = max(peak, v)
		}
	}

	pal := palette()
	anim := gif.GIF{LoopCount: 0}
	for _, img := range images {
		rgba := Resize(RasterBound(img.I, img.Dim, Afmhot, false, peak), size, false)
		Label(rgba, fmt.Sprintf("t=%.1f", img.Time), color.White)

		frame := image.NewPaletted(rgba.Bounds(), pal)
		xdraw.Draw(frame, frame.Bounds(), rgba, image.Point{}, xdraw.Src)
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		return err
	}
	return f.Close()
}
