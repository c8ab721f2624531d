package viz

import "github.com/charmbracelet/lipgloss"

// Theme is a colormap from Low through Mid to High, plus the accent colors
// of the surrounding UI.
type Theme struct {
	Name   string
	Low    lipgloss.Color
	Mid    lipgloss.Color
	High   lipgloss.Color
	Accent lipgloss.Color
	Muted  lipgloss.Color
}

var (
	ThemeAfmhot = Theme{
		Name:   "afmhot",
		Low:    lipgloss.Color("#000000"),
		Mid:    lipgloss.Color("#c04000"),
		High:   lipgloss.Color("#ffffc0"),
		Accent: lipgloss.Color("#ffaa00"),
		Muted:  lipgloss.Color("#666666"),
	}

	ThemeViridis = Theme{
		Name:   "viridis",
		Low:    lipgloss.Color("#440154"),
		Mid:    lipgloss.Color("#21918c"),
		High:   lipgloss.Color("#fde725"),
		Accent: lipgloss.Color("#21918c"),
		Muted:  lipgloss.Color("#555577"),
	}

	// ThemeDiverging suits signed maps such as Q, U and V.
	ThemeDiverging = Theme{
		Name:   "diverging",
		Low:    lipgloss.Color("#2166ac"),
		Mid:    lipgloss.Color("#f7f7f7"),
		High:   lipgloss.Color("#b2182b"),
		Accent: lipgloss.Color("#b2182b"),
		Muted:  lipgloss.Color("#777777"),
	}

	ThemeRetro = Theme{
		Name:   "retro",
		Low:    lipgloss.Color("#001100"),
		Mid:    lipgloss.Color("#00aa00"),
		High:   lipgloss.Color("#aaffaa"),
		Accent: lipgloss.Color("#00ff00"),
		Muted:  lipgloss.Color("#005500"),
	}

	CurrentTheme = ThemeAfmhot

	Themes = []Theme{
		ThemeAfmhot,
		ThemeViridis,
		ThemeDiverging,
		ThemeRetro,
	}
)

// GetTheme returns a theme by name, falling back to afmhot.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeAfmhot
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// Color maps t in [0, 1] onto the theme's gradient.
func (t Theme) Color(v float64) lipgloss.Color {
	switch {
	case v <= 0:
		return t.Low
	case v >= 1:
		return t.High
	case v < 0.5:
		return lerpColor(t.Low, t.Mid, 2*v)
	default:
		return lerpColor(t.Mid, t.High, 2*v-1)
	}
}

func lerpColor(a, b lipgloss.Color, t float64) lipgloss.Color {
	ar, ag, ab := parseHex(string(a))
	br, bg, bb := parseHex(string(b))
	mix := func(x, y int) int { return int(float64(x) + t*float64(y-x) + 0.5) }
	return lipgloss.Color(hexColor(mix(ar, br), mix(ag, bg), mix(ab, bb)))
}
