package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/macromouse/pkg/runner/edit"
	"tableflip.dev/macromouse/pkg/session"
)

func addEdit(topLevel *cobra.Command) {
	var name, content, category string

	cmd := &cobra.Command{
		Use:   "edit <macro>",
		Short: "Edit a macro's name, content or category",
		Example: `
macromouse edit greeting --content "Hi {{name}}!"
macromouse edit Work/standup --name daily
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if !cmd.Flags().Changed("name") &&
				!cmd.Flags().Changed("content") &&
				!cmd.Flags().Changed("category") {
				return errors.New("nothing to change, pass --name, --content or --category")
			}
			s, err := session.Load(nil)
			if err != nil {
				return err
			}
			defer s.Close()
			r := edit.Edit{
				Ref:         args[0],
				Name:        name,
				SetName:     cmd.Flags().Changed("name"),
				Content:     content,
				SetContent:  cmd.Flags().Changed("content"),
				Category:    category,
				SetCategory: cmd.Flags().Changed("category"),
				Session:     s,
			}
			err = r.Do(context.Background())
			return output.HandleError(err)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "New macro name.")
	cmd.Flags().StringVar(&content, "content", "", "New macro content.")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Move to this category.")

	topLevel.AddCommand(cmd)
}
