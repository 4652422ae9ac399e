package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davarch/ci-status/internal/application"
	"github.com/davarch/ci-status/internal/domain"
	"github.com/davarch/ci-status/internal/infrastructure/config"
	"github.com/davarch/ci-status/internal/infrastructure/git_local"
	"github.com/davarch/ci-status/internal/infrastructure/gitlab_http"
	"github.com/davarch/ci-status/internal/infrastructure/logging"
	"github.com/davarch/ci-status/internal/infrastructure/status_fs"
	"github.com/davarch/ci-status/internal/infrastructure/terminal"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runRemote     string
	runInterval   time.Duration
	runOnce       bool
	runStatusFile string
	runNoClear    bool
	runNoColor    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll and redraw pipeline status (default command)",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	addRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&runRemote, "remote", "", "git remote to use (default: $"+config.EnvRemote+", origin, first remote)")
	f.DurationVar(&runInterval, "interval", 0, "delay between polls (default 10s)")
	f.BoolVar(&runOnce, "once", false, "poll a single time and exit")
	f.StringVar(&runStatusFile, "status-file", "", "write the latest status as JSON to this file")
	f.BoolVar(&runNoClear, "no-clear", false, "do not clear the screen between polls")
	f.BoolVar(&runNoColor, "no-color", false, "disable colors")
}

// applyFlags lets explicitly set flags win over file and environment.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	if f.Changed("remote") {
		c.Git.Remote = runRemote
	}
	if f.Changed("interval") && runInterval > 0 {
		c.Poll.Interval = runInterval
	}
	if f.Changed("status-file") {
		c.Output.StatusFile = runStatusFile
	}
	if runNoClear {
		c.Output.Clear = config.ClearNever
	}
}

func settingsFrom(c config.Config) application.Settings {
	return application.Settings{
		Remote:    c.Git.Remote,
		Interval:  c.Poll.Interval,
		PauseFile: c.Poll.PauseFile,
	}
}

func screenOptions(c config.Config) terminal.Options {
	out := termenv.NewOutput(os.Stdout)

	profile := out.EnvColorProfile()
	if runNoColor {
		profile = termenv.Ascii
	}

	tty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

	clearScreen := tty
	switch c.Output.Clear {
	case config.ClearAlways:
		clearScreen = true
	case config.ClearNever:
		clearScreen = false
	}

	return terminal.Options{
		Profile:      profile,
		Clear:        clearScreen,
		MessageWidth: c.Output.MessageWidth,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg)

	log, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	resolver := application.NewIdentityResolver(git_local.New(cfg.Git.Dir))
	if _, err := resolver.Resolve(cfg.Git.Remote); err != nil {
		return fmt.Errorf("cannot resolve the repository: %s", application.Diagnostic(err))
	}

	gl := gitlab_http.New(cfg.API.Scheme, cfg.API.Token, cfg.API.Timeout)
	uc := application.NewStatusUseCase(resolver, gl)
	screen := terminal.NewScreen(os.Stdout, screenOptions(cfg))

	var sink domain.StatusSink
	if cfg.Output.StatusFile != "" {
		sink = status_fs.New(cfg.Output.StatusFile)
	}

	ctrl := application.NewController(log, uc, screen, sink, settingsFrom(cfg))

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if runOnce {
		if res := ctrl.Cycle(ctx); !res.OK() {
			return errReported
		}
		return nil
	}

	if err := config.Watch(ctx, cfgPath, log, func(c config.Config) {
		applyFlags(cmd, &c)
		ctrl.UpdateSettings(settingsFrom(c))
	}); err != nil {
		log.Warn("config watch disabled", zap.String("path", cfgPath), zap.Error(err))
	}

	log.Info("start",
		zap.String("version", version),
		zap.String("dir", cfg.Git.Dir),
		zap.String("scheme", cfg.API.Scheme),
		zap.Duration("every", cfg.Poll.Interval),
		zap.String("status_file", cfg.Output.StatusFile),
	)

	ctrl.Run(ctx)
	return nil
}
