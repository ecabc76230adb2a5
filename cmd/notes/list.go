package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aretw0/notes/pkg/core"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newService()
		if err != nil {
			return err
		}

		list, err := service.ListNotes(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list notes: %w", err)
		}

		return printNotes(cmd.OutOrStdout(), list, listJSON)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
}

// printNotes renders a note list as JSON or as one line per note.
func printNotes(w io.Writer, list core.NoteList, asJSON bool) error {
	if asJSON {
		if list == nil {
			list = core.NoteList{}
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(list)
	}

	for _, n := range list {
		if n.ID != 0 {
			fmt.Fprintf(w, "%d\t%s\n", n.ID, n.Text)
		} else {
			fmt.Fprintln(w, n.Text)
		}
	}
	return nil
}
