package export

import (
	"bytes"
	"encoding/json"
	"image/color"
	"image/gif"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/kerrtrace/internal/config"
	"github.com/san-kum/kerrtrace/internal/render"
)

func testImage(time float64) render.Image {
	dim := 4
	img := render.Image{
		Dim:  dim,
		Time: time,
		I:    make([]float64, dim*dim),
		Q:    make([]float64, dim*dim),
		U:    make([]float64, dim*dim),
		V:    make([]float64, dim*dim),
	}
	for i := range img.I {
		img.I[i] = float64(i)
		img.Q[i] = 0.1 * float64(i)
	}
	img.Orders = []render.StokesMap{{N: 0, I: img.I, Q: img.Q, U: img.U, V: img.V}}
	return img
}

func TestColormaps(t *testing.T) {
	if c := Afmhot(0); c != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("afmhot(0) should be black, got %v", c)
	}
	if c := Afmhot(1); c != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("afmhot(1) should be white, got %v", c)
	}
	if c := Diverging(0.5); c.R != 0xf7 || c.G != 0xf7 || c.B != 0xf7 {
		t.Errorf("diverging midpoint should be white, got %v", c)
	}
	if Afmhot(math.NaN()) != Afmhot(0) {
		t.Error("NaN should map to the low end")
	}
}

func TestRaster(t *testing.T) {
	img := Raster([]float64{0, 1, 2, 4}, 2, Afmhot, false)
	if img.Bounds().Dx() != 2 || img.Bounds().Dy() != 2 {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}
	if img.RGBAAt(1, 1) != Afmhot(1) || img.RGBAAt(0, 0) != Afmhot(0) {
		t.Error("raster should normalise to the peak")
	}

	signed := Raster([]float64{-1, 0, 0, 1}, 2, Diverging, true)
	if signed.RGBAAt(1, 0) != Diverging(0.5) {
		t.Error("zero should sit at the diverging midpoint")
	}
	if signed.RGBAAt(0, 0) != Diverging(0) {
		t.Error("negative peak should map to the low end")
	}
}

func TestResize(t *testing.T) {
	src := Raster([]float64{0, 1, 1, 0}, 2, Afmhot, false)
	dst := Resize(src, 8, false)
	if dst.Bounds().Dx() != 8 {
		t.Fatalf("expected width 8, got %d", dst.Bounds().Dx())
	}
	if dst.RGBAAt(0, 0) != src.RGBAAt(0, 0) || dst.RGBAAt(7, 0) != src.RGBAAt(1, 0) {
		t.Error("nearest-neighbour scaling should keep pixel colors")
	}
	if Resize(src, 8, true).Bounds().Dx() != 8 {
		t.Error("smooth resize should honour size")
	}
}

func TestStokesPNG(t *testing.T) {
	dir := t.TempDir()
	paths, err := StokesPNG(dir, "run", testImage(0), PNGOptions{Size: 32, Label: true})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("expected 4 files, got %d", len(paths))
	}
	f, err := os.Open(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 32 {
		t.Errorf("expected 32 px, got %d", img.Bounds().Dx())
	}
	if !strings.HasSuffix(paths[0], "run_I.png") {
		t.Errorf("unexpected path %s", paths[0])
	}
}

func TestWriteGIF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie.gif")
	if err := WriteGIF(path, nil, 16, 10); err != ErrNoFrames {
		t.Errorf("expected ErrNoFrames, got %v", err)
	}
	images := []render.Image{testImage(0), testImage(10), testImage(20)}
	if err := WriteGIF(path, images, 16, 10); err != nil {
		t.Fatalf("write gif: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	anim, err := gif.DecodeAll(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(anim.Image) != 3 || anim.Delay[0] != 10 {
		t.Errorf("expected 3 frames at delay 10, got %d / %v", len(anim.Image), anim.Delay)
	}
}

func TestEVPATicks(t *testing.T) {
	img := testImage(0)
	svg := EVPATicks(img, SVGOptions{Size: 64, Stride: 2})
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatal("malformed svg")
	}
	// Q > 0 and U = 0: one vertical tick per 2x2 block.
	if n := strings.Count(svg, "<line"); n != 4 {
		t.Errorf("expected 4 ticks, got %d", n)
	}
	if !strings.Contains(svg, `x1="16.00"`) {
		t.Error("expected vertical ticks centred on their block")
	}

	cut := EVPATicks(img, SVGOptions{Size: 64, Stride: 2, Cut: 0.9})
	if n := strings.Count(cut, "<line"); n != 1 {
		t.Errorf("expected 1 tick above cut, got %d", n)
	}
	if EVPATicks(render.Image{}, SVGOptions{}) != "" {
		t.Error("expected empty svg for empty image")
	}
}

func TestJSON(t *testing.T) {
	data := NewExportData("run", config.DefaultConfig(), []render.Image{testImage(0)}, true)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, data); err != nil {
		t.Fatal(err)
	}
	var back ExportData
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Dim != 4 || len(back.Frames) != 1 || len(back.Frames[0].Orders) != 1 {
		t.Errorf("unexpected structure: dim %d frames %d", back.Dim, len(back.Frames))
	}
	if back.Frames[0].Metrics["flux"] != 120 {
		t.Errorf("expected flux 120, got %f", back.Frames[0].Metrics["flux"])
	}

	path := filepath.Join(t.TempDir(), "run.json")
	if err := ExportJSON(path, NewExportData("run", nil, []render.Image{testImage(0)}, false)); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), `"orders"`) {
		t.Error("orders should be omitted")
	}
}
