package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/davarch/ci-status/internal/application"
	"github.com/davarch/ci-status/internal/infrastructure/config"
	"github.com/davarch/ci-status/internal/infrastructure/git_local"
	"github.com/spf13/cobra"
)

var (
	identityRemote string
	identityJSON   bool
)

type identityView struct {
	Remote     string `json:"remote"`
	Host       string `json:"host"`
	Project    string `json:"project"`
	ProjectURL string `json:"project_encoded"`
	Branch     string `json:"branch"`
	SHA        string `json:"sha"`
}

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Print the remote, project, branch and pushed commit that would be polled",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil && !errors.Is(err, config.ErrMissingToken) {
			return err
		}

		remote := cfg.Git.Remote
		if cmd.Flags().Changed("remote") {
			remote = identityRemote
		}

		id, err := application.NewIdentityResolver(git_local.New(cfg.Git.Dir)).Resolve(remote)
		if err != nil {
			return fmt.Errorf("cannot resolve the repository: %s", application.Diagnostic(err))
		}

		v := identityView{
			Remote:     id.RemoteName,
			Host:       id.GitHost,
			Project:    id.ProjectPath,
			ProjectURL: id.EncodedProject(),
			Branch:     id.Branch,
			SHA:        id.CommitSHA,
		}

		if identityJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(v)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintf(w, "REMOTE\t%s\n", v.Remote)
		_, _ = fmt.Fprintf(w, "HOST\t%s\n", v.Host)
		_, _ = fmt.Fprintf(w, "PROJECT\t%s (%s)\n", v.Project, v.ProjectURL)
		_, _ = fmt.Fprintf(w, "BRANCH\t%s\n", v.Branch)
		_, _ = fmt.Fprintf(w, "SHA\t%s\n", v.SHA)
		return w.Flush()
	},
}

func init() {
	identityCmd.Flags().StringVar(&identityRemote, "remote", "", "git remote to use")
	identityCmd.Flags().BoolVar(&identityJSON, "json", false, "print JSON")

	rootCmd.AddCommand(identityCmd)
}
