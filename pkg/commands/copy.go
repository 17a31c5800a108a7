package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/macromouse/pkg/commands/options"
	runcopy "tableflip.dev/macromouse/pkg/runner/copy"
	"tableflip.dev/macromouse/pkg/session"
)

func addCopy(topLevel *cobra.Command) {
	so := &options.SubstituteOptions{}

	cmd := &cobra.Command{
		Use:     "copy <macro>",
		Aliases: []string{"cp"},
		Short:   "Substitute placeholders and copy a macro to the clipboard",
		Example: `
macromouse copy greeting --set name=Ada
macromouse copy invoice --set client=ACME --raw amount
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			values, err := so.Values()
			if err != nil {
				return err
			}
			s, err := session.Load(nil)
			if err != nil {
				return err
			}
			defer s.Close()
			r := runcopy.Copy{
				Ref:     args[0],
				Values:  values,
				Raw:     so.Raw,
				Session: s,
			}
			err = r.Do(context.Background())
			return output.HandleError(err)
		},
	}

	options.AddSubstituteArgs(cmd, so)
	topLevel.AddCommand(cmd)
}
