package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/macromouse/pkg/runner/category"
	"tableflip.dev/macromouse/pkg/session"
)

func addCategory(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Manage categories",
		Example: `
macromouse category create Work
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addCategoryCreate(cmd)
	addCategoryEdit(cmd)
	addCategoryRm(cmd)
	addCategoryMove(cmd)
	addCategoryHide(cmd)
	addCategorySort(cmd)

	topLevel.AddCommand(cmd)
}

func addCategoryCreate(topLevel *cobra.Command) {
	var description string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := session.Load(nil)
			if err != nil {
				return err
			}
			defer s.Close()
			r := category.Create{
				Name:        args[0],
				Description: description,
				Session:     s,
			}
			err = r.Do(context.Background())
			return output.HandleError(err)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Category description.")
	topLevel.AddCommand(cmd)
}

func addCategoryEdit(topLevel *cobra.Command) {
	var name, description string

	cmd := &cobra.Command{
		Use:   "edit <category>",
		Short: "Rename a category or change its description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if !cmd.Flags().Changed("name") && !cmd.Flags().Changed("description") {
				return errors.New("nothing to change, pass --name or --description")
			}
			s, err := session.Load(nil)
			if err != nil {
				return err
			}
			defer s.Close()
			r := category.Edit{
				Name:           args[0],
				NewName:        name,
				SetName:        cmd.Flags().Changed("name"),
				Description:    description,
				SetDescription: cmd.Flags().Changed("description"),
				Session:        s,
			}
			err = r.Do(context.Background())
			return output.HandleError(err)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "New category name.")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description.")
	topLevel.AddCommand(cmd)
}

func addCategoryRm(topLevel *cobra.Command) {
	var deleteMacros bool

	cmd := &cobra.Command{
		Use:     "rm <category>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a category, moving its macros to Uncategorized",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := session.Load(nil)
			if err != nil {
				return err
			}
			defer s.Close()
			r := category.Remove{
				Name:         args[0],
				DeleteMacros: deleteMacros,
				Session:      s,
			}
			err = r.Do(context.Background())
			return output.HandleError(err)
		},
	}

	cmd.Flags().BoolVar(&deleteMacros, "delete-macros", false,
		"Delete the category's macros instead of moving them to Uncategorized.")
	topLevel.AddCommand(cmd)
}

func addCategoryMove(topLevel *cobra.Command) {
	directions := []string{"top", "up", "down", "bottom"}

	cmd := &cobra.Command{
		Use:       "move <category> <" + strings.Join(directions, "|") + ">",
		Short:     "Move a category in the display order",
		Args:      cobra.ExactArgs(2),
		ValidArgs: directions,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := session.Load(nil)
			if err != nil {
				return err
			}
			defer s.Close()
			r := category.Move{
				Name:      args[0],
				Direction: args[1],
				Session:   s,
			}
			err = r.Do(context.Background())
			return output.HandleError(err)
		},
	}

	topLevel.AddCommand(cmd)
}

func addCategoryHide(topLevel *cobra.Command) {
	var show bool

	cmd := &cobra.Command{
		Use:   "hide <category>",
		Short: "Hide a category from listings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := session.Load(nil)
			if err != nil {
				return err
			}
			defer s.Close()
			r := category.Hide{
				Name:    args[0],
				Show:    show,
				Session: s,
			}
			err = r.Do(context.Background())
			return output.HandleError(err)
		},
	}

	cmd.Flags().BoolVar(&show, "show", false, "Unhide instead.")
	topLevel.AddCommand(cmd)
}

func addCategorySort(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Sort categories alphabetically, Uncategorized first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			s, err := session.Load(nil)
			if err != nil {
				return err
			}
			defer s.Close()
			r := category.Sort{Session: s}
			err = r.Do(context.Background())
			return output.HandleError(err)
		},
	}

	topLevel.AddCommand(cmd)
}
