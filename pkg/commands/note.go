package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/macromouse/pkg/commands/options"
	"tableflip.dev/macromouse/pkg/runner/note"
	"tableflip.dev/macromouse/pkg/session"
)

func addNote(topLevel *cobra.Command) {
	var ref, text string
	var setText bool

	cmd := &cobra.Command{
		Use:   "note <macro> [text...]",
		Short: "Show or set the note attached to a macro",
		Example: `
macromouse note greeting
macromouse note greeting use for first contact only
macromouse note greeting --clear
`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return errors.New("requires a macro")
			}
			ref = args[0]
			if len(args) > 1 {
				text = strings.Join(args[1:], " ")
				setText = true
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if cmd.Flags().Changed("clear") {
				text = ""
				setText = true
			}
			s, err := session.Load(nil)
			if err != nil {
				return err
			}
			defer s.Close()
			r := note.Note{
				Ref:     ref,
				Text:    text,
				SetText: setText,
				Session: s,
			}
			err = r.Do(context.Background())
			return output.HandleError(err)
		},
	}

	cmd.Flags().Bool("clear", false, "Remove the note.")
	options.AddOutputArg(cmd, output)
	topLevel.AddCommand(cmd)
}
