package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/ljsim/internal/dynamo"
	"github.com/san-kum/ljsim/internal/sim"
)

const (
	width           = 60
	height          = 24
	historyCapacity = 600
	frameRate       = 30
	maxStepsFrame   = 1000
)

const (
	statusRunning = "RUNNING"
	statusPaused  = "PAUSED"
	statusDone    = "DONE"
	statusFailed  = "FAILED"
)

type TickMsg time.Time

// Model steps a simulation on a timer and draws the particles, an energy
// history and the latest diagnostics.
type Model struct {
	name          string
	ff            dynamo.ForceField
	integrator    dynamo.Integrator
	initial       *dynamo.System
	stepper       *sim.Stepper
	canvas        *Canvas
	view          Viewport
	theme         Theme
	styles        styles
	running       bool
	stepsPerFrame int
	last          dynamo.Sample
	sampled       bool
	energyHistory []float64
	err           error
	showHelp      bool
}

// NewModel takes ownership of sys. The view is fixed to the initial
// particle bounds.
func NewModel(name string, ff dynamo.ForceField, integ dynamo.Integrator, sys *dynamo.System) Model {
	lo, hi := sys.Bounds()
	theme := Themes[0]
	return Model{
		name:          name,
		ff:            ff,
		integrator:    integ,
		initial:       sys.Clone(),
		stepper:       sim.NewStepper(ff, integ, sys),
		canvas:        NewCanvas(width, height),
		view:          Fit(lo, hi, 0.25, 4*sys.Params.Sigma),
		theme:         theme,
		styles:        newStyles(theme),
		running:       true,
		stepsPerFrame: 10,
		energyHistory: make([]float64, 0, historyCapacity),
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if !m.done() && m.err == nil {
				m.running = !m.running
			}
		case "r":
			m.reset()
		case "+", "=":
			m.stepsPerFrame = min(m.stepsPerFrame*2, maxStepsFrame)
		case "-", "_":
			m.stepsPerFrame = max(m.stepsPerFrame/2, 1)
		case "t":
			m.theme = NextTheme(m.theme)
			m.styles = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) done() bool {
	return m.stepper.Steps() >= m.stepper.System().Params.Steps
}

// advance runs up to stepsPerFrame steps, stopping at the configured step
// count or the first error.
func (m *Model) advance() {
	eps := m.stepper.System().Params.Epsilon
	for i := 0; i < m.stepsPerFrame && !m.done(); i++ {
		s, err := m.stepper.Next()
		if err != nil {
			m.err = err
			m.running = false
			return
		}
		m.last, m.sampled = s, true

		m.energyHistory = append(m.energyHistory, s.Total/eps)
		if len(m.energyHistory) > historyCapacity {
			m.energyHistory = m.energyHistory[1:]
		}
	}
	if m.done() {
		m.running = false
	}
}

func (m *Model) reset() {
	m.stepper = sim.NewStepper(m.ff, m.integrator, m.initial.Clone())
	m.energyHistory = m.energyHistory[:0]
	m.last, m.sampled = dynamo.Sample{}, false
	m.err = nil
	m.running = true
}

func (m *Model) status() string {
	switch {
	case m.err != nil:
		return statusFailed
	case m.done():
		return statusDone
	case m.running:
		return statusRunning
	default:
		return statusPaused
	}
}

func (m *Model) draw() {
	m.canvas.Clear()
	m.canvas.Border()
	m.canvas.Plot(m.view, m.stepper.System().Positions())
}

func (m Model) View() string {
	m.draw()
	st := m.styles
	canvasView := st.canvas.Render(m.canvas.String())

	sys := m.stepper.System()
	status := m.status()

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.name)) + "\n")
	s.WriteString(st.status[status].Render(status) + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory,
			asciigraph.Height(5), asciigraph.Width(30), asciigraph.Precision(4),
			asciigraph.Caption("E / ε"))
		s.WriteString(st.graph.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Particles", fmt.Sprintf("%d", sys.N()))
	row("Step", fmt.Sprintf("%d / %d", m.stepper.Steps(), sys.Params.Steps))
	row("Steps/frame", fmt.Sprintf("%d", m.stepsPerFrame))
	if m.sampled {
		row("Time", fmt.Sprintf("%.3e s", m.last.Time))
		row("Kinetic", fmt.Sprintf("%.3e J", m.last.Kinetic))
		row("Potential", fmt.Sprintf("%.3e J", m.last.Potential))
		row("Total", fmt.Sprintf("%.3e J", m.last.Total))
		row("Temperature", fmt.Sprintf("%.2f K", m.last.Temperature))
	} else {
		row("Time", "-")
	}
	if m.err != nil {
		s.WriteString("\n" + st.status[statusFailed].Render(m.err.Error()) + "\n")
	}

	if m.showHelp {
		s.WriteString(st.help.Render("SPACE  pause/resume\nR      reset\n+/-    steps per frame\nT      theme (" + m.theme.Name + ")\nQ      quit"))
	} else {
		s.WriteString(st.help.Render("SP:Pause R:Reset +/-:Speed T:Theme ?:Help Q:Quit"))
	}

	statsView := st.stats.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}
