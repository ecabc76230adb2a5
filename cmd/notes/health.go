package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the notes API is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newService()
		if err != nil {
			return err
		}

		h, err := service.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", h.Status, cfg.BaseURL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
