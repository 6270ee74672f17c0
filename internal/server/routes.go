package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/findyourcity/internal/handler/health"
	"github.com/playperu/findyourcity/internal/metrics"
)

func addRoutes(r chi.Router, logger *slog.Logger, rounds Rounds, opts Options) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("FindYourCity API", "/openapi.json", "/docs"))
	r.Mount("/healthz", health.NewHandler(logger, opts.Checks).Routes())
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handleHealth())
		r.Post("/round", handleNewRound(rounds, logger))
		r.Post("/round/{roundId}/guess", handleGuess(rounds, logger))
	})

	if opts.SPADir != "" {
		if info, err := os.Stat(opts.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", opts.SPADir)
			r.NotFound(handleSPA(opts.SPADir))
		}
	}
}
