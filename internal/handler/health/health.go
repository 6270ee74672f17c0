// Package health serves the readiness endpoint. Each registered Checker is
// probed concurrently under a shared deadline.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

const checkTimeout = 3 * time.Second

// Checker verifies that a dependency can serve requests.
type Checker interface {
	Check(ctx context.Context) error
}

// CheckerFunc adapts a plain function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Check(ctx context.Context) error { return f(ctx) }

type Handler struct {
	checks map[string]Checker
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger, checks map[string]Checker) *Handler {
	return &Handler{checks: checks, logger: logger}
}

func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.check)
	return r
}

type result struct {
	Status string `json:"status"`
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	var (
		mu      sync.Mutex
		results = make(map[string]result, len(h.checks))
		failed  bool
	)

	// Checks never return an error to the group so that one failure does not
	// cancel the others.
	var g errgroup.Group
	for name, c := range h.checks {
		g.Go(func() error {
			err := c.Check(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				h.logger.Error("readiness check failed", "name", name, "error", err)
				results[name] = result{Status: "error"}
				failed = true
				return nil
			}
			results[name] = result{Status: "ok"}
			return nil
		})
	}
	_ = g.Wait()

	status := http.StatusOK
	if failed {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(results)
}
