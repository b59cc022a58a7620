package viz

import "github.com/charmbracelet/lipgloss"

// Theme is the colour scheme of the live view.
type Theme struct {
	Name      string
	Particles lipgloss.Color
	Header    lipgloss.Color
	Graph     lipgloss.Color
	Label     lipgloss.Color
	Value     lipgloss.Color
	Muted     lipgloss.Color
	Running   lipgloss.Color
	Paused    lipgloss.Color
	Error     lipgloss.Color
}

var (
	ThemeCyberpunk = Theme{
		Name:      "cyberpunk",
		Particles: lipgloss.Color("#00ffff"),
		Header:    lipgloss.Color("#ff00ff"),
		Graph:     lipgloss.Color("#ffff00"),
		Label:     lipgloss.Color("#888899"),
		Value:     lipgloss.Color("#ffffff"),
		Muted:     lipgloss.Color("#666666"),
		Running:   lipgloss.Color("#00ff00"),
		Paused:    lipgloss.Color("#ff8800"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeRetroGreen = Theme{
		Name:      "retro",
		Particles: lipgloss.Color("#00ff00"),
		Header:    lipgloss.Color("#88ff88"),
		Graph:     lipgloss.Color("#00cc00"),
		Label:     lipgloss.Color("#00aa00"),
		Value:     lipgloss.Color("#00ff00"),
		Muted:     lipgloss.Color("#005500"),
		Running:   lipgloss.Color("#88ff88"),
		Paused:    lipgloss.Color("#ffff00"),
		Error:     lipgloss.Color("#ff0000"),
	}

	ThemeOcean = Theme{
		Name:      "ocean",
		Particles: lipgloss.Color("#00a8cc"),
		Header:    lipgloss.Color("#0077be"),
		Graph:     lipgloss.Color("#ffd700"),
		Label:     lipgloss.Color("#4488aa"),
		Value:     lipgloss.Color("#e0f0ff"),
		Muted:     lipgloss.Color("#336688"),
		Running:   lipgloss.Color("#00ff88"),
		Paused:    lipgloss.Color("#ffcc00"),
		Error:     lipgloss.Color("#ff4444"),
	}

	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeOcean,
	}
)

// GetTheme returns a theme by name, falling back to the first theme.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return Themes[0]
}

// NextTheme returns the theme after t in Themes, wrapping around.
func NextTheme(t Theme) Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return Themes[0]
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

type styles struct {
	canvas lipgloss.Style
	stats  lipgloss.Style
	header lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	graph  lipgloss.Style
	help   lipgloss.Style
	status map[string]lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		canvas: lipgloss.NewStyle().Padding(1, 2).Foreground(t.Particles),
		stats: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(1, 2).
			Width(48),
		header: lipgloss.NewStyle().Foreground(t.Header).Bold(true).MarginBottom(1),
		label:  lipgloss.NewStyle().Foreground(t.Label).Width(14),
		value:  lipgloss.NewStyle().Foreground(t.Value),
		graph:  lipgloss.NewStyle().Foreground(t.Graph).Padding(1, 0),
		help:   lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		status: map[string]lipgloss.Style{
			statusRunning: lipgloss.NewStyle().Bold(true).Foreground(t.Running),
			statusPaused:  lipgloss.NewStyle().Bold(true).Foreground(t.Paused),
			statusDone:    lipgloss.NewStyle().Bold(true).Foreground(t.Value),
			statusFailed:  lipgloss.NewStyle().Bold(true).Foreground(t.Error),
		},
	}
}
