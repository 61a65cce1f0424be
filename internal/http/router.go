package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/preston-bernstein/cricket-data-service/internal/http/handlers"
	"github.com/preston-bernstein/cricket-data-service/internal/http/middleware"
	"github.com/preston-bernstein/cricket-data-service/internal/metrics"
)

// NewRouter registers HTTP routes on a chi router with request logging and metrics.
func NewRouter(handler *handlers.Handler, logger *slog.Logger, recorder *metrics.Recorder) nethttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logging(logger, recorder))
	r.Use(chimiddleware.Recoverer)
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Get("/health", handler.Health)
	r.Get("/ready", handler.Ready)

	r.Route("/api", func(r chi.Router) {
		r.Route("/matches", func(r chi.Router) {
			r.Get("/", handler.Matches)
			r.Get("/all", handler.AllMatches)
			r.Get("/live", handler.LiveMatches)
			r.Get("/upcoming", handler.UpcomingMatches)
			r.Post("/refresh", handler.RefreshMatches)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handler.MatchByID)
				r.Get("/live", handler.LiveMatch)
				r.Get("/commentary", handler.Commentary)
				r.Get("/events", handler.Events)
				r.Get("/scorecard", handler.Scorecard)
				r.Post("/prefetch", handler.Prefetch)
				r.Post("/refresh", handler.RefreshMatch)
			})
		})
		r.Get("/schedules", handler.Schedules)
		r.Get("/news/trending", handler.TrendingNews)
		r.Get("/discussions", handler.Discussions)
		r.Post("/waitlist", handler.JoinWaitlist)
	})
	return r
}
