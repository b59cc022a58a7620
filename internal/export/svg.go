package export

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
)

// Series is one named curve of a line chart.
type Series struct {
	Name  string
	Color string
	X, Y  []float64
}

// DefaultColors cycles through curve colours when Series.Color is empty.
var DefaultColors = []string{"#00d7ff", "#ff5f87", "#87ff5f", "#ffd75f", "#af87ff"}

type bounds struct {
	minX, maxX, minY, maxY float64
}

func (b *bounds) include(x, y float64) {
	b.minX = math.Min(b.minX, x)
	b.maxX = math.Max(b.maxX, x)
	b.minY = math.Min(b.minY, y)
	b.maxY = math.Max(b.maxY, y)
}

// pad widens the box by 10% per side and keeps zero ranges drawable.
func (b *bounds) pad() {
	rangeX := b.maxX - b.minX
	rangeY := b.maxY - b.minY
	if rangeX == 0 {
		rangeX = math.Max(math.Abs(b.minX), 1)
	}
	if rangeY == 0 {
		rangeY = math.Max(math.Abs(b.minY), 1)
	}
	b.minX -= rangeX * 0.1
	b.maxX += rangeX * 0.1
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
}

func (b *bounds) project(x, y float64, width, height int) (float64, float64) {
	px := (x - b.minX) / (b.maxX - b.minX) * float64(width)
	py := float64(height) - (y-b.minY)/(b.maxY-b.minY)*float64(height)
	return px, py
}

func newBounds() bounds {
	return bounds{
		minX: math.Inf(1), maxX: math.Inf(-1),
		minY: math.Inf(1), maxY: math.Inf(-1),
	}
}

func writeHeader(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))
}

// SeriesToSVG draws every series on shared axes with a legend in the top
// left corner. Points that are not finite are dropped. It returns "" when
// no series has at least two drawable points.
func SeriesToSVG(series []Series, width, height int) string {
	b := newBounds()
	drawable := 0
	for _, s := range series {
		n := 0
		for i := 0; i < len(s.X) && i < len(s.Y); i++ {
			if !finite(s.X[i]) || !finite(s.Y[i]) {
				continue
			}
			b.include(s.X[i], s.Y[i])
			n++
		}
		if n >= 2 {
			drawable++
		}
	}
	if drawable == 0 {
		return ""
	}
	b.pad()

	var sb strings.Builder
	writeHeader(&sb, width, height)

	for k, s := range series {
		color := s.Color
		if color == "" {
			color = DefaultColors[k%len(DefaultColors)]
		}

		first := true
		var path strings.Builder
		for i := 0; i < len(s.X) && i < len(s.Y); i++ {
			if !finite(s.X[i]) || !finite(s.Y[i]) {
				continue
			}
			x, y := b.project(s.X[i], s.Y[i], width, height)
			if first {
				path.WriteString(fmt.Sprintf("M%.1f,%.1f", x, y))
				first = false
			} else {
				path.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		if first {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="%s"/>
`, color, path.String()))

		if s.Name != "" {
			ly := 18 + 16*k
			sb.WriteString(fmt.Sprintf(`<text x="12" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, ly, color, escape(s.Name)))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ParticlesToSVG draws a snapshot of particle positions as dots. The view
// box is fitted to the particles.
func ParticlesToSVG(pos []r2.Vec, width, height int, color string) string {
	if len(pos) == 0 {
		return ""
	}

	b := newBounds()
	for _, p := range pos {
		if finite(p.X) && finite(p.Y) {
			b.include(p.X, p.Y)
		}
	}
	if math.IsInf(b.minX, 1) {
		return ""
	}
	// square view box
	rangeX, rangeY := b.maxX-b.minX, b.maxY-b.minY
	if rangeX > rangeY {
		mid := (b.minY + b.maxY) / 2
		b.minY, b.maxY = mid-rangeX/2, mid+rangeX/2
	} else {
		mid := (b.minX + b.maxX) / 2
		b.minX, b.maxX = mid-rangeY/2, mid+rangeY/2
	}
	b.pad()

	radius := math.Max(2, float64(min(width, height))/100)

	var sb strings.Builder
	writeHeader(&sb, width, height)
	sb.WriteString(fmt.Sprintf("<g fill=\"%s\">\n", color))
	for _, p := range pos {
		if !finite(p.X) || !finite(p.Y) {
			continue
		}
		cx, cy := b.project(p.X, p.Y, width, height)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, radius))
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return escaper.Replace(s)
}
