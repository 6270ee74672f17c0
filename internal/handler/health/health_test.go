package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/playperu/findyourcity/internal/handler/health"
)

type mockChecker struct{ err error }

func (m mockChecker) Check(_ context.Context) error { return m.err }

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]health.Checker
		wantStatus int
		wantBody   map[string]string
	}{
		{
			name:       "no checks",
			checks:     nil,
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{},
		},
		{
			name: "all healthy",
			checks: map[string]health.Checker{
				"rounds": mockChecker{},
				"sqlite": mockChecker{},
			},
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"rounds": "ok", "sqlite": "ok"},
		},
		{
			name: "sqlite down",
			checks: map[string]health.Checker{
				"rounds": mockChecker{},
				"sqlite": mockChecker{err: errors.New("locked")},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   map[string]string{"rounds": "ok", "sqlite": "error"},
		},
		{
			name: "both down",
			checks: map[string]health.Checker{
				"rounds": mockChecker{err: errors.New("store")},
				"sqlite": mockChecker{err: errors.New("db")},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   map[string]string{"rounds": "error", "sqlite": "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := health.NewHandler(slog.New(slog.DiscardHandler), tt.checks)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			h.Routes().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			var body map[string]struct{ Status string }
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if len(body) != len(tt.wantBody) {
				t.Errorf("got %d results, want %d", len(body), len(tt.wantBody))
			}
			for name, want := range tt.wantBody {
				if got := body[name].Status; got != want {
					t.Errorf("%s status = %q, want %q", name, got, want)
				}
			}
		})
	}
}

func TestHandlerSlowCheckTimesOut(t *testing.T) {
	slow := health.CheckerFunc(func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Minute):
			return nil
		}
	})
	h := health.NewHandler(slog.New(slog.DiscardHandler), map[string]health.Checker{"slow": slow})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	start := time.Now()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("check took %v, want it bounded by the request deadline", elapsed)
	}
}
