package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/davarch/ci-status/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

var (
	cfgPath  string
	logLevel string
	version  = "dev"
)

// errReported ends the process with a failure status after the message has
// already been shown on screen.
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:           "ci-status",
	Short:         "Watch the GitLab pipeline of the current branch",
	Long:          "Polls GitLab for the pipeline and jobs of the pushed commit of the current branch and redraws them as tables.",
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runStatus,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			_, _ = fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	addRunFlags(rootCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(*cobra.Command, []string) {
			fmt.Println(version)
		},
	})

	comp := &cobra.Command{
		Use:       "completion [bash|zsh|fish|powershell]",
		Short:     "Generate shell completion scripts",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletion(os.Stdout)
			case "zsh":
				return rootCmd.GenZshCompletion(os.Stdout)
			case "fish":
				return rootCmd.GenFishCompletion(os.Stdout, true)
			case "powershell":
				return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	rootCmd.AddCommand(comp)
}

// loadConfig turns a missing token into the guidance message.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if errors.Is(err, config.ErrMissingToken) {
		return cfg, fmt.Errorf("CI private token is not set. Please 'export %s=[token]' and try again!", config.EnvToken)
	}
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	return cfg, nil
}
