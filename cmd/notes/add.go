package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var addJSON bool

var addCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Append a note and print the refreshed list",
	Long: `Append a note and print the refreshed list.
With no argument, or "-", the note text is read from stdin.
The text is sent as-is; an empty note is not rejected.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := noteText(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}

		service, err := newService()
		if err != nil {
			return err
		}

		list, err := service.AddNote(cmd.Context(), text)
		if err != nil && list == nil {
			return fmt.Errorf("failed to add note: %w", err)
		}
		if perr := printNotes(cmd.OutOrStdout(), list, addJSON); perr != nil {
			return perr
		}
		if err != nil {
			// RefreshAlways: the list is current but the add itself failed.
			return fmt.Errorf("failed to add note: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().BoolVar(&addJSON, "json", false, "Output the refreshed list in JSON format")
}

func noteText(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
