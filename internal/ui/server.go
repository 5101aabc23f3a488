// Package ui provides the HTTP server for the Leapboard console API.
package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapboard/internal/settings"
	"github.com/leapstack-labs/leapboard/internal/ui/features/grid"
	"github.com/leapstack-labs/leapboard/internal/ui/notifier"
)

// Server is the console API server.
type Server struct {
	store    grid.Datastore
	settings *settings.Store
	project  string
	port     int
	logger   *slog.Logger
	notifier *notifier.Notifier
}

// Config holds configuration for the console server.
type Config struct {
	Store    grid.Datastore
	Settings *settings.Store
	Project  string
	Port     int
	Logger   *slog.Logger
}

// NewServer creates a new console server instance.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		store:    cfg.Store,
		settings: cfg.Settings,
		project:  cfg.Project,
		port:     cfg.Port,
		logger:   logger,
		notifier: notifier.New(),
	}
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting console server", "addr", fmt.Sprintf("http://localhost:%d", s.port))

	eg, egctx := errgroup.WithContext(ctx)

	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	grid.SetupRoutes(r, s.store, s.settings, s.notifier, s.project, s.logger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down console server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Notifier returns the server's notifier for view-state updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}
