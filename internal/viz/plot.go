package viz

import (
	"github.com/guptarohit/asciigraph"
)

// Plot draws a line chart of data with a caption.
func Plot(data []float64, caption string, width, height int) string {
	if len(data) == 0 {
		return Subtle.Render("(no data)")
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// PlotSeries overlays several series of equal meaning, e.g. one per order.
func PlotSeries(series [][]float64, caption string, width, height int) string {
	nonEmpty := make([][]float64, 0, len(series))
	for _, s := range series {
		if len(s) > 0 {
			nonEmpty = append(nonEmpty, s)
		}
	}
	if len(nonEmpty) == 0 {
		return Subtle.Render("(no data)")
	}
	colors := []asciigraph.AnsiColor{asciigraph.Yellow, asciigraph.Cyan, asciigraph.Magenta, asciigraph.Green}
	used := make([]asciigraph.AnsiColor, len(nonEmpty))
	for i := range used {
		used[i] = colors[i%len(colors)]
	}
	return asciigraph.PlotMany(nonEmpty,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(used...),
	)
}
