package terminal

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"github.com/davarch/ci-status/internal/domain"
	"github.com/mattn/go-runewidth"
)

const DefaultMessageWidth = 72

var JobHeaders = []string{"name", "status", "stage", "duration", "url"}

// Table is the data of one rendered table. Cells are already styled.
type Table struct {
	Headers []string
	Rows    [][]string

	palette Palette
}

func (t Table) String() string {
	p := t.palette

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.Border).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.Header
			}
			return p.Cell
		}).
		Rows(t.Rows...)

	if len(t.Headers) > 0 {
		tbl = tbl.Headers(t.Headers...)
	}

	return tbl.String()
}

// Renderer turns domain values into tables. It does no I/O.
type Renderer struct {
	palette      Palette
	messageWidth int
}

func NewRenderer(p Palette, messageWidth int) *Renderer {
	if messageWidth <= 0 {
		messageWidth = DefaultMessageWidth
	}
	return &Renderer{palette: p, messageWidth: messageWidth}
}

func (r *Renderer) PipelineTable(p domain.Pipeline) Table {
	return Table{
		Rows: [][]string{
			{"branch:", plain(p.Branch)},
			{"status:", r.palette.Status(p.Status)},
			{"message:", r.message(p.CommitMessage)},
			{"url:", plain(p.WebURL)},
		},
		palette: r.palette,
	}
}

// JobTable always carries the header row, even for zero jobs.
func (r *Renderer) JobTable(jobs []domain.Job) Table {
	rows := make([][]string, 0, len(jobs))
	for _, j := range jobs {
		rows = append(rows, []string{
			plain(j.Name),
			r.palette.Status(j.Status),
			plain(j.Stage),
			FormatDuration(j.Duration),
			plain(j.WebURL),
		})
	}

	return Table{
		Headers: JobHeaders,
		Rows:    rows,
		palette: r.palette,
	}
}

// message keeps the subject line of a commit message.
func (r *Renderer) message(msg string) string {
	msg = ansi.Strip(msg)
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	msg = strings.TrimSpace(msg)
	return runewidth.Truncate(msg, r.messageWidth, "…")
}

// plain drops escape sequences and line breaks from a server supplied cell.
// Branch names, job names and stages are chosen by whoever pushes.
func plain(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, s)
}

// FormatDuration prints seconds with at most two decimals; nil is blank.
func FormatDuration(d *float64) string {
	if d == nil {
		return ""
	}
	return strconv.FormatFloat(math.Round(*d*100)/100, 'f', -1, 64)
}
