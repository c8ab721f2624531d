package viz

import (
	"fmt"
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/kerrtrace/internal/metrics"
	"github.com/san-kum/kerrtrace/internal/render"
)

// Component is a displayable per-pixel quantity.
type Component int

const (
	StokesI Component = iota
	StokesQ
	StokesU
	StokesV
	LinearPol
	numComponents
)

func (c Component) String() string {
	return [...]string{"I", "Q", "U", "V", "|P|"}[c]
}

func (c Component) scale() Scale {
	if c == StokesQ || c == StokesU || c == StokesV {
		return Signed
	}
	return Linear
}

func (c Component) pick(i, q, u, v []float64) []float64 {
	switch c {
	case StokesQ:
		return q
	case StokesU:
		return u
	case StokesV:
		return v
	case LinearPol:
		p := make([]float64, len(q))
		for k := range p {
			p[k] = math.Hypot(q[k], u[k])
		}
		return p
	}
	return i
}

// Viewer pages through the composite images of a run.
type Viewer struct {
	Title  string
	images []render.Image

	layer     int // -1 is the composite
	comp      Component
	timeIdx   int
	braille   bool
	themeIdx  int
	showHelp  bool
	width     int
	height    int
	canvas    *Canvas
	samples   [][]metrics.Sample
	fractions [][]float64
}

// NewViewer panics on an empty image list.
func NewViewer(title string, images []render.Image) *Viewer {
	if len(images) == 0 {
		panic("viz: viewer needs at least one image")
	}
	v := &Viewer{
		Title:  title,
		images: images,
		layer:  -1,
		width:  80,
		height: 24,
	}
	for _, img := range images {
		v.samples = append(v.samples, metrics.Observe(img.I, img.Q, img.U, img.V, metrics.Standard()...))
		per := make([][]float64, len(img.Orders))
		for k, o := range img.Orders {
			per[k] = o.I
		}
		v.fractions = append(v.fractions, metrics.FluxFractions(per...))
	}
	for i, t := range Themes {
		if t.Name == CurrentTheme.Name {
			v.themeIdx = i
		}
	}
	return v
}

func (v *Viewer) Init() tea.Cmd { return nil }

func (v *Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return v, tea.Quit
		case "o":
			v.layer++
			if v.layer >= len(v.image().Orders) {
				v.layer = -1
			}
		case "s":
			v.comp = (v.comp + 1) % numComponents
		case "]":
			v.timeIdx = min(v.timeIdx+1, len(v.images)-1)
		case "[":
			v.timeIdx = max(v.timeIdx-1, 0)
		case "b":
			v.braille = !v.braille
		case "c":
			v.themeIdx = (v.themeIdx + 1) % len(Themes)
		case "?":
			v.showHelp = !v.showHelp
		}
	}
	return v, nil
}

func (v *Viewer) image() *render.Image { return &v.images[v.timeIdx] }

// Layer returns the map currently on screen and its label.
func (v *Viewer) Layer() ([]float64, int, string) {
	img := v.image()
	label := "composite"
	i, q, u, s := img.I, img.Q, img.U, img.V
	if v.layer >= 0 {
		o := img.Orders[v.layer]
		i, q, u, s = o.I, o.Q, o.U, o.V
		label = fmt.Sprintf("n = %d", o.N)
	}
	return v.comp.pick(i, q, u, s), img.Dim, label + " · " + v.comp.String()
}

func (v *Viewer) View() string {
	vals, dim, label := v.Layer()
	theme := Themes[v.themeIdx]
	if v.comp.scale() == Signed && theme.Name != ThemeDiverging.Name {
		theme = ThemeDiverging
	}

	size := max(min(v.width-36, 2*(v.height-4)), 8)
	var pic string
	if v.braille {
		if v.canvas == nil || v.canvas.Width != size/2 {
			v.canvas = NewCanvas(size/2, size/4)
		}
		plot := vals
		if v.comp.scale() == Signed {
			plot = make([]float64, len(vals))
			for k := range vals {
				plot[k] = math.Abs(vals[k])
			}
		}
		v.canvas.Plot(plot, dim, Range(plot, Linear))
		pic = lipgloss.NewStyle().Foreground(theme.Accent).Render(v.canvas.String())
	} else {
		pic = Shade(vals, dim, size, theme, v.comp.scale())
	}

	var side strings.Builder
	side.WriteString(Title.Render(v.Title) + "\n")
	side.WriteString(Subtle.Render(label) + "\n")
	side.WriteString(Separator(30) + "\n")
	side.WriteString(Metric("time", fmt.Sprintf("%.2f", v.image().Time)) + "\n")
	for _, s := range v.samples[v.timeIdx] {
		side.WriteString(Metric(s.Name, fmt.Sprintf("%.4g", s.Value)) + "\n")
	}
	side.WriteString(Separator(30) + "\n")
	for k, f := range v.fractions[v.timeIdx] {
		side.WriteString(Metric(fmt.Sprintf("flux n=%d", v.image().Orders[k].N), fmt.Sprintf("%.3f", f)) + "\n")
	}
	side.WriteString("\n" + Metric("theme", theme.Name) + "\n")
	if v.showHelp {
		side.WriteString("\n" + KeyHint.Render("o order  s stokes  [ ] time\nb braille  c theme  q quit") + "\n")
	} else {
		side.WriteString("\n" + KeyHint.Render("? help") + "\n")
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, Panel.Render(pic), Panel.Render(side.String()))
}

// RunViewer blocks until the user quits.
func RunViewer(title string, images []render.Image) error {
	_, err := tea.NewProgram(NewViewer(title, images), tea.WithAltScreen()).Run()
	return err
}
