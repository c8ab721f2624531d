package viz

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(12)

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	Warning = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ffaa00"))
)

// Metric renders a label/value line.
func Metric(label, value string) string {
	return MetricLabel.Render(label) + " " + MetricValue.Render(value)
}

// Separator draws a muted rule of the given width.
func Separator(width int) string {
	if width < 8 {
		return Subtle.Render(strings.Repeat("─", max(width, 0)))
	}
	mid := width / 2
	return Subtle.Render(strings.Repeat("─", mid-2) + " ◆ " + strings.Repeat("─", width-mid-3))
}

func parseHex(hex string) (r, g, b int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 255, 255, 255
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 255, 255, 255
	}
	return int(v>>16) & 0xff, int(v>>8) & 0xff, int(v) & 0xff
}

func hexColor(r, g, b int) string {
	clamp := func(v int) int { return min(max(v, 0), 255) }
	const hex = "0123456789abcdef"
	var sb strings.Builder
	sb.WriteByte('#')
	for _, v := range []int{clamp(r), clamp(g), clamp(b)} {
		sb.WriteByte(hex[v/16])
		sb.WriteByte(hex[v%16])
	}
	return sb.String()
}
