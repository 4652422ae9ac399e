package application

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/davarch/ci-status/internal/domain"
	"go.uber.org/zap"
)

const DefaultInterval = 10 * time.Second

// Settings may change between cycles; everything else is fixed at construction.
type Settings struct {
	Remote    string
	Interval  time.Duration
	PauseFile string
}

// CycleResult is the outcome of one poll cycle: either a snapshot that was
// shown, or a recoverable failure that was reported in its place.
type CycleResult struct {
	Snapshot *domain.Snapshot
	Err      error
	Kind     domain.FailureKind
	Paused   bool
}

func (r CycleResult) OK() bool { return r.Err == nil && !r.Paused }

type Controller struct {
	log     *zap.Logger
	use     *StatusUseCase
	display domain.Display
	sink    domain.StatusSink

	mu       sync.RWMutex
	settings Settings

	wait func(ctx context.Context, d time.Duration) error
}

// NewController builds the poll loop. sink may be nil.
func NewController(l *zap.Logger, u *StatusUseCase, display domain.Display, sink domain.StatusSink, s Settings) *Controller {
	c := &Controller{
		log: l, use: u, display: display, sink: sink,
		wait: sleep,
	}
	c.UpdateSettings(s)
	return c
}

func (c *Controller) UpdateSettings(s Settings) {
	if s.Interval <= 0 {
		s.Interval = DefaultInterval
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = s
	c.log.Debug("settings applied",
		zap.String("remote", s.Remote),
		zap.Duration("every", s.Interval),
		zap.String("pause_file", s.PauseFile),
	)
}

func (c *Controller) Settings() Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

func (c *Controller) nextDelay() time.Duration {
	return c.Settings().Interval
}

// Run polls until ctx is done. The same delay follows every cycle,
// successful or not.
func (c *Controller) Run(ctx context.Context) {
	for {
		c.Cycle(ctx)

		if err := c.wait(ctx, c.nextDelay()); err != nil {
			return
		}
	}
}

func (c *Controller) Cycle(ctx context.Context) CycleResult {
	s := c.Settings()

	if isPaused(s.PauseFile) {
		c.log.Debug("paused: skipping poll")
		_ = c.display.Diagnose("polling paused, remove " + s.PauseFile + " to resume")
		return CycleResult{Paused: true}
	}

	snap, err := c.use.Fetch(ctx, s.Remote)
	if err != nil {
		res := CycleResult{Err: err, Kind: domain.Classify(err)}
		if ctx.Err() != nil {
			return res
		}

		c.log.Warn("poll failed", zap.String("kind", string(res.Kind)), zap.Error(err))
		if derr := c.display.Diagnose(Diagnostic(err)); derr != nil {
			c.log.Error("display failed", zap.Error(derr))
		}
		return res
	}

	if err := c.display.Show(snap, s.Interval); err != nil {
		c.log.Error("display failed", zap.Error(err))
	}

	c.log.Debug("poll ok",
		zap.String("project", snap.Identity.ProjectPath),
		zap.String("branch", snap.Identity.Branch),
		zap.Int64("pipeline", snap.Pipeline.ID),
		zap.String("status", string(snap.Pipeline.Status)),
		zap.Int("jobs", len(snap.Jobs)),
	)

	if c.sink != nil {
		if err := c.sink.Write(ctx, snap); err != nil {
			c.log.Warn("status file write failed", zap.Error(err))
		}
	}

	return CycleResult{Snapshot: &snap}
}

// Diagnostic renders err as the single line shown instead of the tables.
func Diagnostic(err error) string {
	var msg string

	var se *domain.ShapeMismatchError
	switch domain.Classify(err) {
	case domain.FailureShape:
		errors.As(err, &se)
		switch {
		case se.Message != "":
			msg = "GitLab answered \"" + se.Message + "\" instead of " + se.Field + ". " +
				"Check the token and that the project exists."
		case se.Pending:
			msg = "Pipeline not available yet (" + se.Field + " is null). " +
				"GitLab usually needs a moment to create the pipeline and its jobs after a push."
		default:
			msg = "Could not parse the GitLab response: " + se.Error() + "."
		}
	case domain.FailureConnection:
		msg = err.Error() + ". Check connection."
	default:
		msg = err.Error()
	}

	return strings.Join(strings.Fields(msg), " ")
}

func isPaused(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
