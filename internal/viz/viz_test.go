package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/kerrtrace/internal/render"
)

func TestCanvasSetUnset(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(3, 2)
	if !c.IsSet(3, 2) {
		t.Fatal("expected dot set")
	}
	if c.Grid[0][1] != 0x2800|0x20 {
		t.Errorf("unexpected rune %U", c.Grid[0][1])
	}
	c.Unset(3, 2)
	if c.IsSet(3, 2) || c.Grid[0][1] != 0x2800 {
		t.Error("expected dot cleared")
	}
	c.Set(-1, 0)
	c.Set(100, 100)
	if strings.Count(c.String(), "\n") != 1 {
		t.Error("expected one text row")
	}
}

func TestCanvasPlot(t *testing.T) {
	c := NewCanvas(4, 2)
	dark := make([]float64, 4)
	c.Plot(dark, 2, 1)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if c.IsSet(x, y) {
				t.Fatalf("dark map lit dot (%d,%d)", x, y)
			}
		}
	}

	full := []float64{1, 1, 1, 1}
	c.Plot(full, 2, 1)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if !c.IsSet(x, y) {
				t.Fatalf("full map left dot (%d,%d) dark", x, y)
			}
		}
	}

	// left half bright, right half dark
	c.Plot([]float64{1, 0, 1, 0}, 2, 1)
	if !c.IsSet(0, 0) || c.IsSet(7, 7) {
		t.Error("expected only the left half lit")
	}
}

func TestThemeColor(t *testing.T) {
	th := ThemeDiverging
	if th.Color(0) != th.Low || th.Color(1) != th.High {
		t.Error("gradient ends should be the theme colors")
	}
	if got := th.Color(0.5); got != th.Mid {
		t.Errorf("expected mid color %s, got %s", th.Mid, got)
	}
	if GetTheme("nope").Name != ThemeAfmhot.Name {
		t.Error("unknown theme should fall back to afmhot")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("theme names incomplete")
	}
}

func TestHexRoundTrip(t *testing.T) {
	r, g, b := parseHex("#1a2b3c")
	if r != 0x1a || g != 0x2b || b != 0x3c {
		t.Errorf("got %d %d %d", r, g, b)
	}
	if hexColor(0x1a, 0x2b, 0x3c) != "#1a2b3c" {
		t.Errorf("got %s", hexColor(0x1a, 0x2b, 0x3c))
	}
	if hexColor(-5, 300, 0) != "#00ff00" {
		t.Errorf("expected clamping, got %s", hexColor(-5, 300, 0))
	}
}

func TestShadeRows(t *testing.T) {
	vals := []float64{0, 1, 2, 3}
	out := Shade(vals, 2, 6, ThemeViridis, Linear)
	if n := strings.Count(out, "\n"); n != 3 {
		t.Errorf("expected 3 rows, got %d", n)
	}
	if Shade(nil, 0, 6, ThemeViridis, Linear) != "" {
		t.Error("expected empty output for empty map")
	}
}

func TestRange(t *testing.T) {
	vals := []float64{-3, 1, 2}
	if Range(vals, Linear) != 2 {
		t.Error("linear range should ignore negatives")
	}
	if Range(vals, Signed) != 3 {
		t.Error("signed range should use magnitudes")
	}
}

func testImages() []render.Image {
	mk := func(time float64) render.Image {
		o0 := render.StokesMap{N: 0, I: []float64{1, 0, 0, 1}, Q: []float64{0.5, 0, 0, 0}, U: make([]float64, 4), V: make([]float64, 4)}
		o1 := render.StokesMap{N: 1, I: []float64{0, 1, 0, 0}, Q: make([]float64, 4), U: []float64{0, 0.2, 0, 0}, V: make([]float64, 4)}
		return render.Image{
			Dim:    2,
			Time:   time,
			Orders: []render.StokesMap{o0, o1},
			I:      []float64{1, 1, 0, 1},
			Q:      []float64{0.5, 0, 0, 0},
			U:      []float64{0, 0.2, 0, 0},
			V:      make([]float64, 4),
		}
	}
	return []render.Image{mk(0), mk(10)}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewerCycles(t *testing.T) {
	v := NewViewer("test", testImages())

	_, _, label := v.Layer()
	if !strings.HasPrefix(label, "composite") {
		t.Errorf("expected composite first, got %q", label)
	}

	v.Update(key("o"))
	vals, _, label := v.Layer()
	if !strings.HasPrefix(label, "n = 0") || vals[1] != 0 {
		t.Errorf("expected order 0, got %q", label)
	}
	v.Update(key("o"))
	v.Update(key("o"))
	if _, _, label := v.Layer(); !strings.HasPrefix(label, "composite") {
		t.Errorf("expected wrap to composite, got %q", label)
	}

	v.Update(key("s"))
	v.Update(key("s"))
	vals, _, label = v.Layer()
	if !strings.HasSuffix(label, "U") || vals[1] != 0.2 {
		t.Errorf("expected U map, got %q", label)
	}

	v.Update(key("]"))
	v.Update(key("]"))
	if v.image().Time != 10 {
		t.Errorf("expected time clamped at 10, got %f", v.image().Time)
	}
	v.Update(key("["))
	if v.image().Time != 0 {
		t.Errorf("expected time 0, got %f", v.image().Time)
	}

	if _, cmd := v.Update(key("q")); cmd == nil {
		t.Error("expected quit command")
	}
}

func TestViewerView(t *testing.T) {
	v := NewViewer("m87", testImages())
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	out := v.View()
	if !strings.Contains(out, "m87") || !strings.Contains(out, "m_net") {
		t.Error("expected title and metrics in view")
	}
	v.Update(key("b"))
	if out := v.View(); !strings.ContainsRune(out, '⣿') && !strings.ContainsRune(out, 0x2800) {
		t.Error("expected braille output")
	}
}

func TestPlot(t *testing.T) {
	if out := Plot([]float64{1, 2, 3}, "flux", 20, 5); !strings.Contains(out, "flux") {
		t.Error("expected caption in plot")
	}
	if out := PlotSeries([][]float64{{1, 2}, nil, {2, 1}}, "orders", 20, 5); !strings.Contains(out, "orders") {
		t.Error("expected caption in series plot")
	}
}
