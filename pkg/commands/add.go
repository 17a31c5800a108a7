package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/macromouse/pkg/commands/options"
	"tableflip.dev/macromouse/pkg/runner/add"
	"tableflip.dev/macromouse/pkg/session"
)

func addAdd(topLevel *cobra.Command) {
	mo := &options.MacroOptions{}
	var name string
	var content string

	cmd := &cobra.Command{
		Use:   "add <name> <content...>",
		Short: "Add a macro",
		Example: `
macromouse add greeting Hello {{name}}, thanks for reaching out.
macromouse add standup "Yesterday / Today / Blockers" -c Work
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 2 {
				return errors.New("requires a name and content")
			}
			name = args[0]
			content = strings.Join(args[1:], " ")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := session.Load(nil)
			if err != nil {
				return err
			}
			defer s.Close()
			r := add.Add{
				Category: mo.Category,
				Name:     name,
				Content:  content,
				Session:  s,
			}
			err = r.Do(context.Background())
			return output.HandleError(err)
		},
	}

	options.AddCategoryArg(cmd, mo)
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
