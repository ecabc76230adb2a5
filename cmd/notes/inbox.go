package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/notes/pkg/adapters/inbox"
)

var (
	inboxPattern  string
	inboxBackfill bool
)

var inboxCmd = &cobra.Command{
	Use:   "inbox <dir>",
	Short: "Append every file written into a directory as a note",
	Long: `Watch a directory recursively and append each created or written file
matching --pattern as a note. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		service, err := newService()
		if err != nil {
			return err
		}

		pattern := cfg.Inbox.Pattern
		if cmd.Flags().Changed("pattern") {
			pattern = inboxPattern
		}

		w, err := inbox.New(service, inbox.Config{
			Dir:      args[0],
			Pattern:  pattern,
			Backfill: inboxBackfill,
			Logger:   slog.Default(),
		})
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("failed to start inbox: %w", err)
		}
		slog.Info("watching inbox", "dir", args[0], "pattern", pattern)

		select {
		case <-ctx.Done():
		case <-w.Done():
		}

		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := w.Stop(stopCtx); err != nil {
			slog.Warn("inbox did not stop cleanly", "error", err)
		}

		stats := w.Stats()
		slog.Info("inbox stopped", "posted", stats.Posted, "failed", stats.Failed, "skipped", stats.Skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inboxCmd)
	inboxCmd.Flags().StringVar(&inboxPattern, "pattern", inbox.DefaultPattern, "Files to post (doublestar pattern relative to dir)")
	inboxCmd.Flags().BoolVar(&inboxBackfill, "backfill", false, "Also post files already in the directory")
}
