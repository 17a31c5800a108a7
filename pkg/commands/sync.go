package commands

import (
	"context"

	"github.com/spf13/cobra"

	runsync "tableflip.dev/macromouse/pkg/runner/sync"
	"tableflip.dev/macromouse/pkg/session"
)

func addSync(topLevel *cobra.Command) {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync data files with the configured cloud bucket",
		Example: `
macromouse sync
macromouse sync --dry-run
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := session.Load(nil)
			if err != nil {
				return err
			}
			defer s.Close()
			r := runsync.Sync{
				DryRun:  dryRun,
				Session: s,
			}
			err = r.Do(context.Background())
			return output.HandleError(err)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Report what would happen without transferring anything.")
	topLevel.AddCommand(cmd)
}
