package viz

import (
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a grid of braille cells, each holding 2x4 sub-pixels.
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

// Set lights the sub-pixel (x, y). The canvas is (Width*2) x (Height*4)
// sub-pixels with the origin top left; points outside are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
}

// Viewport maps a world rectangle onto the canvas, y up.
type Viewport struct {
	Lo, Hi r2.Vec
}

// Fit returns a viewport around lo..hi with margin added on each side as a
// fraction of the larger extent, square so distances are not distorted.
func Fit(lo, hi r2.Vec, margin, minExtent float64) Viewport {
	span := r2.Sub(hi, lo)
	extent := max(span.X, span.Y, minExtent) * (1 + 2*margin)
	mid := r2.Scale(0.5, r2.Add(lo, hi))
	half := r2.Vec{X: extent / 2, Y: extent / 2}
	return Viewport{Lo: r2.Sub(mid, half), Hi: r2.Add(mid, half)}
}

// Project returns the sub-pixel of world point p.
func (c *Canvas) Project(v Viewport, p r2.Vec) (int, int) {
	span := r2.Sub(v.Hi, v.Lo)
	cw, ch := c.Width*2-1, c.Height*4-1
	x := (p.X - v.Lo.X) / span.X * float64(cw)
	y := float64(ch) - (p.Y-v.Lo.Y)/span.Y*float64(ch)
	return int(x + 0.5), int(y + 0.5)
}

// Plot lights the sub-pixel of every point inside the viewport.
func (c *Canvas) Plot(v Viewport, pts []r2.Vec) {
	for _, p := range pts {
		if p.X < v.Lo.X || p.X > v.Hi.X || p.Y < v.Lo.Y || p.Y > v.Hi.Y {
			continue
		}
		c.Set(c.Project(v, p))
	}
}

// Border outlines the canvas edge.
func (c *Canvas) Border() {
	w, h := c.Width*2-1, c.Height*4-1
	c.DrawLine(0, 0, w, 0)
	c.DrawLine(w, 0, w, h)
	c.DrawLine(w, h, 0, h)
	c.DrawLine(0, h, 0, 0)
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Dots returns the number of lit sub-pixels.
func (c *Canvas) Dots() int {
	n := 0
	for _, row := range c.Grid {
		for _, r := range row {
			for bits := r - blank; bits != 0; bits &= bits - 1 {
				n++
			}
		}
	}
	return n
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
