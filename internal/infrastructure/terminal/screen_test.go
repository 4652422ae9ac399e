package terminal

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/davarch/ci-status/internal/domain"
	"github.com/muesli/termenv"
)

func snapshot() domain.Snapshot {
	return domain.Snapshot{
		Identity: domain.RepositoryIdentity{
			RemoteName: "origin", GitHost: "gitlab.example.com", ProjectPath: "group/project",
			Branch: "main", CommitSHA: "0123456789abcdef",
		},
		Pipeline: domain.Pipeline{ID: 42, Status: domain.StatusRunning, Branch: "main", CommitMessage: "fix bug", WebURL: "http://x/42"},
		Jobs: []domain.Job{
			{Name: "build", Status: domain.StatusSuccess, Stage: "build", WebURL: "http://x/j/1"},
		},
		Retrieved: time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC),
	}
}

func TestScreen_Show(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf, Options{Profile: termenv.Ascii})

	if err := s.Show(snapshot(), 10*time.Second); err != nil {
		t.Fatalf("Show: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Current pipeline", "Jobs", "fix bug", "http://x/j/1", "group/project @ 01234567 (origin), updated 09:30:00, next refresh in 10s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "Current pipeline") > strings.Index(out, "Jobs") {
		t.Errorf("pipeline table must come first")
	}
	if strings.Contains(out, "\x1b[2J") {
		t.Errorf("screen cleared although clearing is off")
	}
}

func TestScreen_DiagnoseIsOneLine(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf, Options{Profile: termenv.Ascii})

	if err := s.Diagnose("could not connect to https://h/api. Check connection."); err != nil {
		t.Fatalf("Diagnose: %v", err)
	}

	if got := strings.Count(buf.String(), "\n"); got != 1 {
		t.Errorf("expected exactly one line, got %d: %q", got, buf.String())
	}
}

func TestScreen_ClearsBeforeEachCycle(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf, Options{Profile: termenv.Ascii, Clear: true})

	_ = s.Diagnose("first")
	_ = s.Show(snapshot(), time.Minute)

	if got := strings.Count(buf.String(), "\x1b[2J"); got != 2 {
		t.Errorf("expected 2 clear sequences, got %d", got)
	}
	if !strings.HasPrefix(buf.String(), "\x1b[2J") {
		t.Errorf("clear must precede output: %q", buf.String()[:10])
	}
}
