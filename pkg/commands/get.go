package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/macromouse/pkg/commands/options"
	"tableflip.dev/macromouse/pkg/runner/get"
	"tableflip.dev/macromouse/pkg/session"
)

func addGet(topLevel *cobra.Command) {
	mo := &options.MacroOptions{}

	cmd := &cobra.Command{
		Use:     "get",
		Aliases: []string{"list", "ls"},
		Short:   "List macros, ranked by usage",
		Example: `
macromouse get
macromouse get --category Work
macromouse get --search signature
macromouse get --list
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := session.Load(nil)
			if err != nil {
				return err
			}
			defer s.Close()
			r := get.Get{
				ShowID:         mo.ShowID,
				Category:       mo.Category,
				Search:         mo.Search,
				ListCategories: mo.List,
				Session:        s,
			}
			err = r.Do(context.Background())
			return output.HandleError(err)
		},
	}

	options.AddCategoryArg(cmd, mo)
	options.AddSearchArgs(cmd, mo)
	options.AddShowIDArg(cmd, mo)

	topLevel.AddCommand(cmd)
}
