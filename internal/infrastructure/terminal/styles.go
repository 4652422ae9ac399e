package terminal

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/davarch/ci-status/internal/domain"
)

var (
	Gray   = lipgloss.Color("8")
	Red    = lipgloss.Color("9")
	Green  = lipgloss.Color("10")
	Yellow = lipgloss.Color("11")
	Blue   = lipgloss.Color("12")
)

var statusColors = map[domain.Status]lipgloss.Color{
	domain.StatusSuccess: Green,
	domain.StatusRunning: Blue,
	domain.StatusFailed:  Red,
	domain.StatusSkipped: Gray,
	domain.StatusManual:  Gray,
}

// Palette holds the styles bound to one output's color profile.
type Palette struct {
	statuses map[domain.Status]lipgloss.Style
	created  lipgloss.Style
	unknown  lipgloss.Style

	Title  lipgloss.Style
	Header lipgloss.Style
	Border lipgloss.Style
	Cell   lipgloss.Style
	Footer lipgloss.Style
	Error  lipgloss.Style
}

func NewPalette(r *lipgloss.Renderer) Palette {
	p := Palette{
		statuses: make(map[domain.Status]lipgloss.Style, len(statusColors)),
		created:  r.NewStyle(),
		unknown:  r.NewStyle().Foreground(Yellow),

		Title:  r.NewStyle().Bold(true),
		Header: r.NewStyle().Bold(true).Padding(0, 1),
		Border: r.NewStyle().Foreground(Gray),
		Cell:   r.NewStyle().Padding(0, 1),
		Footer: r.NewStyle().Foreground(Gray),
		Error:  r.NewStyle().Foreground(Red),
	}
	for s, c := range statusColors {
		p.statuses[s] = r.NewStyle().Foreground(c)
	}
	return p
}

// Status renders s in its color. Any status GitLab may add later falls back
// to the unknown style; created stays uncolored.
func (p Palette) Status(s domain.Status) string {
	text := plain(string(s))
	if text == "" {
		text = "unknown"
	}

	if s == domain.StatusCreated {
		return p.created.Render(text)
	}
	if st, ok := p.statuses[s]; ok {
		return st.Render(text)
	}
	return p.unknown.Render(text)
}
