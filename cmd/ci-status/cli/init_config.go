package cli

import (
	"fmt"
	"os"

	"github.com/davarch/ci-status/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a config.yaml with default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgPath); err == nil && !initForce {
			fmt.Printf("no change (%s already exists, use --force to overwrite)\n", cfgPath)
			return nil
		}

		if err := config.Save(cfgPath, config.Defaults()); err != nil {
			return err
		}

		fmt.Printf("written: %s\n", cfgPath)
		fmt.Printf("set the token with: export %s=[token]\n", config.EnvToken)
		return nil
	},
}

func init() {
	initConfigCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing file")

	rootCmd.AddCommand(initConfigCmd)
}
