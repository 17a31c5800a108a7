package commands

import (
	"context"

	"github.com/spf13/cobra"

	runbackup "tableflip.dev/macromouse/pkg/runner/backup"
	"tableflip.dev/macromouse/pkg/session"
)

func addBackup(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot the data files",
		Example: `
macromouse backup
macromouse backup list
macromouse backup restore macromouse_backup_20260829_101500
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runBackup(runbackup.Backup{})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List available backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runBackup(runbackup.Backup{List: true})
		},
	}

	restore := &cobra.Command{
		Use:   "restore <name>",
		Short: "Restore a named backup over the live files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runBackup(runbackup.Backup{Restore: args[0]})
		},
	}

	cmd.AddCommand(list, restore)
	topLevel.AddCommand(cmd)
}

func runBackup(r runbackup.Backup) error {
	s, err := session.Load(nil)
	if err != nil {
		return err
	}
	defer s.Close()
	r.Session = s
	return output.HandleError(r.Do(context.Background()))
}
