package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/macromouse/pkg/commands/options"
)

var (
	output = &options.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "macromouse",
		Short: base.Wrap80("Reusable text macros with placeholders, from the command line."),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addAdd(topLevel)
	addEdit(topLevel)
	addRm(topLevel)
	addGet(topLevel)
	addCopy(topLevel)
	addCategory(topLevel)
	addCounts(topLevel)
	addNote(topLevel)
	addUndo(topLevel)
	addRedo(topLevel)
	addSync(topLevel)
	addBackup(topLevel)
	addPaths(topLevel)
	addVersion(topLevel)
}
