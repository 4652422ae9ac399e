package terminal

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/davarch/ci-status/internal/domain"
	"github.com/muesli/termenv"
)

type Options struct {
	Profile      termenv.Profile
	Clear        bool
	MessageWidth int
}

// Screen is the display of the poll loop: every call replaces what the
// previous cycle printed.
type Screen struct {
	w       io.Writer
	out     *termenv.Output
	palette Palette
	render  *Renderer
	clear   bool
}

func NewScreen(w io.Writer, opt Options) *Screen {
	lr := lipgloss.NewRenderer(w, termenv.WithProfile(opt.Profile))
	lr.SetColorProfile(opt.Profile)

	p := NewPalette(lr)

	return &Screen{
		w:       w,
		out:     termenv.NewOutput(w, termenv.WithProfile(opt.Profile)),
		palette: p,
		render:  NewRenderer(p, opt.MessageWidth),
		clear:   opt.Clear,
	}
}

func (s *Screen) Renderer() *Renderer { return s.render }

func (s *Screen) Show(snap domain.Snapshot, refresh time.Duration) error {
	var b strings.Builder

	b.WriteString(s.palette.Title.Render("Current pipeline"))
	b.WriteByte('\n')
	b.WriteString(s.render.PipelineTable(snap.Pipeline).String())
	b.WriteByte('\n')
	b.WriteString(s.palette.Title.Render("Jobs"))
	b.WriteByte('\n')
	b.WriteString(s.render.JobTable(snap.Jobs).String())
	b.WriteByte('\n')

	id := snap.Identity
	footer := fmt.Sprintf("%s @ %s (%s), updated %s, next refresh in %s",
		plain(id.ProjectPath), id.ShortSHA(), plain(id.RemoteName), snap.Retrieved.Format("15:04:05"), refresh)
	b.WriteString(s.palette.Footer.Render(footer))
	b.WriteByte('\n')

	return s.write(b.String())
}

func (s *Screen) Diagnose(msg string) error {
	return s.write(s.palette.Error.Render(msg) + "\n")
}

func (s *Screen) write(text string) error {
	if s.clear {
		s.out.ClearScreen()
	}
	_, err := io.WriteString(s.w, text)
	return err
}
