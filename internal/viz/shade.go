package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Scale fixes how map values are brought to [0, 1].
type Scale int

const (
	// Linear maps [0, max] to [0, 1].
	Linear Scale = iota
	// Signed maps [-max|v|, max|v|] to [0, 1], zero at the middle.
	Signed
)

// Range returns the normalisation bound of vals under s.
func Range(vals []float64, s Scale) float64 {
	m := 0.0
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if s == Signed {
			v = math.Abs(v)
		}
		m = math.Max(m, v)
	}
	return m
}

func normalise(v, bound float64, s Scale) float64 {
	if !(bound > 0) || math.IsNaN(v) {
		if s == Signed {
			return 0.5
		}
		return 0
	}
	if s == Signed {
		return 0.5 + 0.5*v/bound
	}
	return v / bound
}

// Shade renders a row-major dim x dim map as width cells by width/2 rows of
// upper-half blocks, two map rows per text row.
func Shade(vals []float64, dim, width int, theme Theme, s Scale) string {
	if dim == 0 || width < 1 {
		return ""
	}
	bound := Range(vals, s)
	rows := width // map rows sampled; two per text line
	var b strings.Builder
	for y := 0; y < rows; y += 2 {
		for x := 0; x < width; x++ {
			col := x * dim / width
			top := vals[(y*dim/rows)*dim+col]
			bot := top
			if y+1 < rows {
				bot = vals[((y+1)*dim/rows)*dim+col]
			}
			st := lipgloss.NewStyle().
				Foreground(theme.Color(normalise(top, bound, s))).
				Background(theme.Color(normalise(bot, bound, s)))
			b.WriteString(st.Render("▀"))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
