package grid

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/leapboard/internal/settings"
	"github.com/leapstack-labs/leapboard/internal/ui/notifier"
)

// SetupRoutes registers the grid feature routes.
func SetupRoutes(
	router chi.Router,
	store Datastore,
	settingsStore *settings.Store,
	notify *notifier.Notifier,
	project string,
	logger *slog.Logger,
) {
	handlers := NewHandlers(store, settingsStore, notify, project, logger)

	router.Route("/api/grid", func(r chi.Router) {
		r.Post("/query", handlers.Query)
		r.Post("/scan", handlers.Scan)
		r.Get("/tables", handlers.Tables)
		r.Get("/views", handlers.Views)
		r.Put("/views", handlers.SaveViews)
	})
}
