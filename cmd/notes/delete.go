package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a note by its ID and print the refreshed list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid note id %q: %w", args[0], err)
		}

		service, err := newService()
		if err != nil {
			return err
		}

		list, err := service.DeleteNote(cmd.Context(), id)
		if list != nil {
			if perr := printNotes(cmd.OutOrStdout(), list, false); perr != nil {
				return perr
			}
		}
		if err != nil {
			return fmt.Errorf("failed to delete note %d: %w", id, err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
