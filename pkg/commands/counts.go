package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/macromouse/pkg/runner/counts"
	"tableflip.dev/macromouse/pkg/session"
)

func addCounts(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "counts",
		Short: "Manage macro usage counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addCountsReset(cmd)
	topLevel.AddCommand(cmd)
}

func addCountsReset(topLevel *cobra.Command) {
	var keepTop int

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset usage counts, optionally keeping the top few",
		Example: `
macromouse counts reset
macromouse counts reset --keep-top 5
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := session.Load(nil)
			if err != nil {
				return err
			}
			defer s.Close()
			r := counts.Reset{
				KeepTop: keepTop,
				Session: s,
			}
			err = r.Do(context.Background())
			return output.HandleError(err)
		},
	}

	cmd.Flags().IntVar(&keepTop, "keep-top", 0,
		"Keep the N most used macros' counts, resetting the rest.")
	topLevel.AddCommand(cmd)
}
