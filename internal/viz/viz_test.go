package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/integrators"
	"github.com/san-kum/ljsim/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if c.Grid[0][0] != 0x2801 {
		t.Errorf("expected dot 1, got %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != 0x2880 {
		t.Errorf("expected dot 8, got %U", c.Grid[0][1])
	}
	if c.Dots() != 2 {
		t.Errorf("expected 2 dots, got %d", c.Dots())
	}

	c.Clear()
	if c.Dots() != 0 || c.String() != strings.Repeat(string(rune(blank)), 2)+"\n" {
		t.Errorf("canvas not cleared: %q", c.String())
	}
}

func TestFit(t *testing.T) {
	v := Fit(r2.Vec{X: 0, Y: 0}, r2.Vec{X: 4, Y: 2}, 0.25, 1)
	if v.Lo != (r2.Vec{X: -1, Y: -2}) || v.Hi != (r2.Vec{X: 5, Y: 4}) {
		t.Errorf("unexpected viewport %+v", v)
	}

	// a single point still gets a usable window
	v = Fit(r2.Vec{X: 1, Y: 1}, r2.Vec{X: 1, Y: 1}, 0, 2)
	if v.Lo != (r2.Vec{X: 0, Y: 0}) || v.Hi != (r2.Vec{X: 2, Y: 2}) {
		t.Errorf("unexpected viewport %+v", v)
	}
}

func TestCanvasPlot(t *testing.T) {
	c := NewCanvas(10, 5)
	v := Viewport{Lo: r2.Vec{X: 0, Y: 0}, Hi: r2.Vec{X: 1, Y: 1}}

	if x, y := c.Project(v, r2.Vec{X: 0, Y: 0}); x != 0 || y != 19 {
		t.Errorf("origin projected to (%d, %d)", x, y)
	}
	if x, y := c.Project(v, r2.Vec{X: 1, Y: 1}); x != 19 || y != 0 {
		t.Errorf("far corner projected to (%d, %d)", x, y)
	}

	c.Plot(v, []r2.Vec{{X: 0.5, Y: 0.5}, {X: 2, Y: 0}, {X: 0.1, Y: 0.9}})
	if c.Dots() != 2 {
		t.Errorf("expected 2 dots, got %d", c.Dots())
	}
}

func TestCanvasBorder(t *testing.T) {
	c := NewCanvas(3, 2)
	c.Border()
	// 6x8 sub-pixels, perimeter 2*(6+8)-4
	if c.Dots() != 24 {
		t.Errorf("expected 24 border dots, got %d", c.Dots())
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("ocean").Name != "ocean" || GetTheme("nope").Name != Themes[0].Name {
		t.Error("GetTheme lookup failed")
	}
	th := Themes[0]
	for range Themes {
		th = NextTheme(th)
	}
	if th.Name != Themes[0].Name {
		t.Errorf("NextTheme did not cycle, ended at %s", th.Name)
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("ThemeNames length mismatch")
	}
}

func testModel(steps int) Model {
	p := dynamo.Params{
		Sigma:       3.4e-10,
		Epsilon:     0.24 * 1.60218e-19,
		Mass:        6.63e-26,
		Dt:          1e-15,
		Steps:       steps,
		ReportEvery: 100,
		MinDistance: dynamo.DefaultMinDistance,
	}
	sys, _ := dynamo.NewSystem(
		[]r2.Vec{{X: 0, Y: 0}, {X: 3.9e-10, Y: 0}, {X: 0, Y: 3.9e-10}},
		[]r2.Vec{{X: 100, Y: 0}, {X: -50, Y: 20}, {X: -50, Y: -20}},
		p,
	)
	return NewModel("argon", physics.NewLennardJones(p), integrators.NewVelocityVerlet(), sys)
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModelTick(t *testing.T) {
	m := testModel(25)

	m = update(m, TickMsg(time.Now()))
	if m.stepper.Steps() != 10 || len(m.energyHistory) != 10 {
		t.Fatalf("expected 10 steps after one tick, got %d", m.stepper.Steps())
	}
	if !strings.Contains(m.View(), statusRunning) {
		t.Error("expected running status")
	}

	m = update(m, TickMsg(time.Now()))
	m = update(m, TickMsg(time.Now()))
	if m.stepper.Steps() != 25 {
		t.Errorf("expected to stop at 25 steps, got %d", m.stepper.Steps())
	}
	if m.running || !strings.Contains(m.View(), statusDone) {
		t.Error("expected done status")
	}
}

func TestModelKeys(t *testing.T) {
	m := testModel(100)

	m = update(m, key(" "))
	if m.running {
		t.Fatal("space did not pause")
	}
	m = update(m, TickMsg(time.Now()))
	if m.stepper.Steps() != 0 {
		t.Error("paused model advanced")
	}
	if !strings.Contains(m.View(), statusPaused) {
		t.Error("expected paused status")
	}

	m = update(m, key("+"))
	if m.stepsPerFrame != 20 {
		t.Errorf("expected 20 steps per frame, got %d", m.stepsPerFrame)
	}
	m = update(m, key("-"))
	m = update(m, key("-"))
	if m.stepsPerFrame != 5 {
		t.Errorf("expected 5 steps per frame, got %d", m.stepsPerFrame)
	}

	m = update(m, key(" "))
	m = update(m, TickMsg(time.Now()))
	first := m.stepper.System().Particles[0]
	m = update(m, key("r"))
	if m.stepper.Steps() != 0 || len(m.energyHistory) != 0 || !m.running {
		t.Error("reset did not restore the initial run")
	}
	if m.stepper.System().Particles[0] == first {
		t.Error("reset kept the advanced state")
	}

	theme := m.theme.Name
	m = update(m, key("t"))
	if m.theme.Name == theme {
		t.Error("theme did not change")
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("quit returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}
