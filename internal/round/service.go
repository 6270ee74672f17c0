package round

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/playperu/findyourcity/internal/findyourcity"
	"github.com/playperu/findyourcity/internal/geo"
	"github.com/playperu/findyourcity/internal/metrics"
	"github.com/playperu/findyourcity/internal/place"
)

var ErrInvalidGuess = errors.New("guess coordinates out of range")

// PlacePicker chooses the place for a new round. It must always succeed.
type PlacePicker interface {
	PickPlace(ctx context.Context, mode place.Mode) findyourcity.RoundBundle
}

type Round struct {
	ID     string
	Bundle findyourcity.RoundBundle
}

type GuessResult struct {
	DistanceKm float64
	Score      int
	Answer     findyourcity.Answer
}

type Service struct {
	picker PlacePicker
	store  Store
	logger *slog.Logger
}

func NewService(picker PlacePicker, store Store, logger *slog.Logger) *Service {
	return &Service{picker: picker, store: store, logger: logger}
}

func (s *Service) StartRound(ctx context.Context, mode place.Mode) (Round, error) {
	b := s.picker.PickPlace(ctx, mode)

	id, err := s.store.Create(ctx, b.Place.Lat, b.Place.Lon, b.Place)
	if err != nil {
		return Round{}, fmt.Errorf("storing round: %w", err)
	}

	source := "local"
	if b.AIGenerated {
		source = "remote"
	}
	metrics.RoundsStartedTotal.WithLabelValues(source).Inc()
	s.logger.Info("round started",
		"round_id", id,
		"mode", string(mode),
		"source", source,
		"fallback", b.FallbackReason,
	)

	return Round{ID: id, Bundle: b}, nil
}

// SubmitGuess scores guess against the round's secret place. The round stays
// valid until it expires, so repeated guesses are scored the same way.
func (s *Service) SubmitGuess(ctx context.Context, id string, guess findyourcity.Coordinate) (GuessResult, error) {
	if !geo.ValidCoordinate(guess) {
		return GuessResult{}, ErrInvalidGuess
	}

	e, err := s.store.Answer(ctx, id)
	if err != nil {
		return GuessResult{}, err
	}

	km, score := geo.Evaluate(findyourcity.Coordinate{Lat: e.Lat, Lon: e.Lon}, guess)
	metrics.GuessesTotal.Inc()
	metrics.GuessScore.Observe(float64(score))
	s.logger.Debug("guess scored", "round_id", id, "distance_km", km, "score", score)

	return GuessResult{DistanceKm: km, Score: score, Answer: e.Place.Answer()}, nil
}

// Check probes the store with a lookup that must come back not found.
func (s *Service) Check(ctx context.Context) error {
	_, err := s.store.Answer(ctx, "healthcheck")
	if err == nil || errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// RunSweeper removes expired rounds every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			n, err := s.store.Sweep(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.Error("sweeping expired rounds", "error", err)
				continue
			}
			if n > 0 {
				metrics.RoundsExpiredTotal.Add(float64(n))
				s.logger.Debug("swept expired rounds", "count", n)
			}
		}
	}
}
