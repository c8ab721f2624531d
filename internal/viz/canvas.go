package viz

import (
	"math"
	"strings"
)

// Braille dot bits, indexed [row][col] within a cell. Unicode offset 0x2800.
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// 4x4 ordered dither thresholds in (0, 1).
var bayer = [4][4]float64{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Set lights the dot at (x, y) in dot coordinates; the canvas spans
// (Width*2) x (Height*4) dots.
func (c *Canvas) Set(x, y int) {
	row, col, bit, ok := c.locate(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] |= bit
}

func (c *Canvas) Unset(x, y int) {
	row, col, bit, ok := c.locate(x, y)
	if !ok {
		return
	}
	c.Grid[row][col] &^= bit
}

// IsSet reports whether the dot at (x, y) is lit.
func (c *Canvas) IsSet(x, y int) bool {
	row, col, bit, ok := c.locate(x, y)
	return ok && c.Grid[row][col]&bit != 0
}

func (c *Canvas) locate(x, y int) (row, col int, bit rune, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, 0, false
	}
	return row, col, rune(pixelMap[y%4][x%2]), true
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// Plot draws a row-major dim x dim map scaled to the canvas, lighting dots
// by ordered dithering of the value against [0, max]. Row 0 of the map is
// the top of the canvas.
func (c *Canvas) Plot(vals []float64, dim int, max float64) {
	c.Clear()
	if dim == 0 || !(max > 0) {
		return
	}
	dw, dh := c.Width*2, c.Height*4
	for y := 0; y < dh; y++ {
		row := y * dim / dh
		for x := 0; x < dw; x++ {
			col := x * dim / dw
			v := vals[row*dim+col] / max
			if math.IsNaN(v) {
				continue
			}
			if v > (bayer[y%4][x%4]+0.5)/16 {
				c.Set(x, y)
			}
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}
