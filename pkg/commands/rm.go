package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/macromouse/pkg/commands/options"
	"tableflip.dev/macromouse/pkg/runner/rm"
	"tableflip.dev/macromouse/pkg/session"
)

func addRm(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "rm <macro>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a macro",
		Example: `
macromouse rm greeting
macromouse rm Work/standup
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := session.Load(nil)
			if err != nil {
				return err
			}
			defer s.Close()
			r := rm.Remove{
				Ref:     args[0],
				Session: s,
			}
			err = r.Do(context.Background())
			return output.HandleError(err)
		},
	}

	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
