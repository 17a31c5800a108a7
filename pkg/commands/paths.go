package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/macromouse/pkg/runner/paths"
	"tableflip.dev/macromouse/pkg/session"
)

func addPaths(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Show where the data files live",
		Example: `
macromouse paths
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := session.Load(nil)
			if err != nil {
				return err
			}
			defer s.Close()
			r := paths.Paths{Session: s}
			err = r.Do(context.Background())
			return output.HandleError(err)
		},
	}

	topLevel.AddCommand(cmd)
}
