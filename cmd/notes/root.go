package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/notes"
	"github.com/aretw0/notes/internal/config"
	"github.com/aretw0/notes/pkg/core"
)

var (
	verbose    bool
	configPath string
	baseURL    string
	timeout    time.Duration

	cfg config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "notes",
	Short: "A command line client for the notes API",
	Long: `notes lists and appends notes on a notes REST backend.
Every change is followed by a refresh of the full list.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)

		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}

		loaded, path, err := config.Load(configPath, wd)
		if err != nil {
			return err
		}
		if path != "" {
			slog.Debug("config loaded", "path", path)
		}

		// Flags win over file and environment.
		if cmd.Flags().Changed("url") {
			loaded.BaseURL = baseURL
		}
		if cmd.Flags().Changed("timeout") {
			loaded.Timeout = timeout
		}

		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps the error taxonomy to distinct process exit codes.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, core.ErrTransport):
		return 3
	case errors.Is(err, core.ErrDecode):
		return 4
	case errors.Is(err, core.ErrServer):
		return 5
	default:
		return 1
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: nearest .notes.yaml, then user config dir)")
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "", "Base URL of the notes API (env NOTES_API_URL)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Per-request timeout (env NOTES_TIMEOUT)")
}

// newService builds the Service from the resolved configuration.
func newService() (*core.Service, error) {
	opts := []notes.Option{
		notes.WithLogger(slog.Default()),
		notes.WithTimeout(cfg.Timeout),
		notes.WithRefreshPolicy(cfg.Policy()),
		notes.WithEventBuffer(cfg.EventBuffer),
	}
	for k, v := range cfg.Headers {
		opts = append(opts, notes.WithHeader(k, v))
	}

	svc, err := notes.New(cfg.BaseURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize notes client: %w", err)
	}
	return svc, nil
}
