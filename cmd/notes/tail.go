package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	notesLifecycle "github.com/aretw0/notes/pkg/adapters/lifecycle"
	"github.com/aretw0/notes/pkg/core"
)

var tailInterval time.Duration

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Refresh the note list periodically and print each refresh",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tailInterval <= 0 {
			return fmt.Errorf("--interval must be positive")
		}

		service, err := newService()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		src := notesLifecycle.NewSource(service)
		if err := src.Start(ctx); err != nil {
			return err
		}

		refresh := func() {
			if _, err := service.Refresh(ctx); err != nil && !errors.Is(err, core.ErrSuperseded) && ctx.Err() == nil {
				slog.Error("refresh failed", "error", err)
			}
		}

		ticker := time.NewTicker(tailInterval)
		defer ticker.Stop()
		refresh()

		out := cmd.OutOrStdout()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				refresh()
			case e, ok := <-src.Events():
				if !ok {
					return nil
				}
				fmt.Fprintln(out, e.String())
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(tailCmd)
	tailCmd.Flags().DurationVar(&tailInterval, "interval", 5*time.Second, "Time between refreshes")
}
