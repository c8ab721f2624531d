package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/kerrtrace/internal/render"
)

// SVGOptions controls the polarization tick overlay.
type SVGOptions struct {
	Size int // output width and height in px
	// Stride is the number of image pixels per tick cell.
	Stride int
	// Cut hides ticks where I is below Cut times the peak intensity.
	Cut float64
}

// EVPATicks draws the intensity as a grid of cells and overlays one tick per
// Stride x Stride block. A tick's length scales with the block's linear
// polarization |P| and its angle is the EVPA ½ atan2(U, Q), measured from
// north through east with east to the left.
func EVPATicks(img render.Image, opt SVGOptions) string {
	if img.Dim == 0 {
		return ""
	}
	if opt.Size <= 0 {
		opt.Size = 512
	}
	if opt.Stride <= 0 {
		opt.Stride = max(img.Dim/16, 1)
	}
	cell := float64(opt.Size) / float64(img.Dim)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#000000"/>
<g shape-rendering="crispEdges">
`, opt.Size, opt.Size, opt.Size, opt.Size))

	peak := 0.0
	for _, v := range img.I {
		peak = math.Max(peak, v)
	}
	if peak > 0 {
		for i, v := range img.I {
			if v <= 0 {
				continue
			}
			c := Afmhot(v / peak)
			sb.WriteString(fmt.Sprintf(`<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="#%02x%02x%02x"/>
`, float64(i%img.Dim)*cell, float64(i/img.Dim)*cell, cell, cell, c.R, c.G, c.B))
		}
	}
	sb.WriteString("</g>\n<g stroke=\"#00e0ff\" stroke-width=\"1.5\" stroke-linecap=\"round\">\n")

	type block struct{ i, q, u float64 }
	nb := (img.Dim + opt.Stride - 1) / opt.Stride
	blocks := make([]block, nb*nb)
	for k := range img.I {
		b := &blocks[(k/img.Dim/opt.Stride)*nb+(k%img.Dim)/opt.Stride]
		b.i += img.I[k]
		b.q += img.Q[k]
		b.u += img.U[k]
	}
	maxP, maxI := 0.0, 0.0
	for _, b := range blocks {
		maxP = math.Max(maxP, math.Hypot(b.q, b.u))
		maxI = math.Max(maxI, b.i)
	}
	if maxP > 0 {
		span := float64(opt.Stride) * cell
		for k, b := range blocks {
			p := math.Hypot(b.q, b.u)
			if p == 0 || b.i < opt.Cut*maxI {
				continue
			}
			chi := 0.5 * math.Atan2(b.u, b.q)
			half := 0.45 * span * p / maxP
			cx := (float64(k%nb) + 0.5) * span
			cy := (float64(k/nb) + 0.5) * span
			dx, dy := -math.Sin(chi)*half, -math.Cos(chi)*half
			sb.WriteString(fmt.Sprintf(`<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>
`, cx-dx, cy-dy, cx+dx, cy+dy))
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}
