package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapboard/internal/settings"
	"github.com/leapstack-labs/leapboard/internal/ui"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Port int
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Leapboard console server",
		Long: `Start a local web server exposing the grid JSON API: table queries,
multi-table scans and persisted view state.`,
		Example: `  # Start on the configured port
  leapboard serve

  # Start on a custom port
  leapboard serve --port 3000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := ConfigFrom(cmd.Context())
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: configured port)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cfg := ConfigFrom(cmd.Context())
	logger := LoggerFrom(cmd.Context())

	port := opts.Port
	if port == 0 {
		port = cfg.Server.Port
	}

	settingsDir := filepath.Dir(cfg.Settings.Path)
	if settingsDir != "." && settingsDir != "" {
		if err := os.MkdirAll(settingsDir, 0o750); err != nil {
			return fmt.Errorf("failed to create settings directory: %w", err)
		}
	}

	store := settings.NewStore()
	if err := store.Open(cfg.Settings.Path); err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.InitSchema(); err != nil {
		return err
	}

	server := ui.NewServer(ui.Config{
		Store:    newClient(cmd, cfg),
		Settings: store,
		Project:  cfg.Project,
		Port:     port,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Serve(ctx)
}
