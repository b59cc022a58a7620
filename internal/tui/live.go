package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/ljsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	width       = 70
	height      = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer redraws the particles as characters on every sample, limited
// to frameRate frames per second. A frameRate of 0 draws every sample.
type LiveRenderer struct {
	w         io.Writer
	frameRate int
	lastFrame time.Time
	canvas    [][]rune
	lo, hi    r2.Vec
	framed    bool
}

func NewLiveRenderer(w io.Writer, frameRate int) *LiveRenderer {
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	return &LiveRenderer{
		w:         w,
		frameRate: frameRate,
		canvas:    canvas,
	}
}

func (r *LiveRenderer) OnSample(s dynamo.Sample, sys *dynamo.System) {
	if r.frameRate > 0 {
		if time.Since(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
			return
		}
		r.lastFrame = time.Now()
	}

	// the view is fixed to the first frame so motion stays visible
	if !r.framed {
		r.lo, r.hi = frame(sys)
		r.framed = true
	}

	r.clear()
	r.drawParticles(sys)
	r.render(s, sys.N())
}

func frame(sys *dynamo.System) (lo, hi r2.Vec) {
	lo, hi = sys.Bounds()
	pad := r2.Scale(0.25, r2.Sub(hi, lo))
	if pad.X == 0 {
		pad.X = sys.Params.Sigma
	}
	if pad.Y == 0 {
		pad.Y = sys.Params.Sigma
	}
	return r2.Sub(lo, pad), r2.Add(hi, pad)
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

// drawParticles marks each particle with 'o', or '@' where two share a cell.
func (r *LiveRenderer) drawParticles(sys *dynamo.System) {
	span := r2.Sub(r.hi, r.lo)
	for _, p := range sys.Particles {
		x := int((p.Pos.X - r.lo.X) / span.X * float64(width-1))
		y := height - 1 - int((p.Pos.Y-r.lo.Y)/span.Y*float64(height-1))
		if x < 0 || x >= width || y < 0 || y >= height {
			continue
		}
		if r.canvas[y][x] == ' ' {
			r.canvas[y][x] = 'o'
		} else {
			r.canvas[y][x] = '@'
		}
	}
}

func (r *LiveRenderer) render(s dynamo.Sample, n int) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %d particles  step %d  t=%.3e s\n", n, s.Step, s.Time))
	b.WriteString("  " + strings.Repeat("-", width) + "\n")

	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	b.WriteString("  " + strings.Repeat("-", width) + "\n")
	b.WriteString(fmt.Sprintf("  KE=%.3e J  PE=%.3e J  E=%.3e J  T=%.2f K\n",
		s.Kinetic, s.Potential, s.Total, s.Temperature))

	fmt.Fprint(r.w, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.w, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.w, showCursor) }
