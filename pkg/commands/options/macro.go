// Package options defines shared flag helpers for CLI commands.
package options

import (
	"github.com/spf13/cobra"
)

// MacroOptions captures the common macro selection flags.
type MacroOptions struct {
	Category string
	Search   string
	List     bool
	ShowID   bool
}

// AddCategoryArg wires the category filter flag.
func AddCategoryArg(cmd *cobra.Command, o *MacroOptions) {
	cmd.Flags().StringVarP(&o.Category, "category", "c", "",
		"Limit to one category.")
}

// AddSearchArgs wires the search and listing flags.
func AddSearchArgs(cmd *cobra.Command, o *MacroOptions) {
	cmd.Flags().StringVarP(&o.Search, "search", "s", "",
		"Case-insensitive substring match on name and content.")
	cmd.Flags().BoolVar(&o.List, "list", false,
		"List categories instead of macros.")
}

// AddShowIDArg registers the id column toggle.
func AddShowIDArg(cmd *cobra.Command, o *MacroOptions) {
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false,
		"Show macro ids.")
}
