package server

import (
	"errors"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/findyourcity/internal/findyourcity"
	"github.com/playperu/findyourcity/internal/geo"
	"github.com/playperu/findyourcity/internal/round"
)

type GuessRequest struct {
	Lat *float64 `json:"lat" required:"true" minimum:"-90" maximum:"90"`
	Lon *float64 `json:"lon" required:"true" minimum:"-180" maximum:"180"`
}

type GuessResponse struct {
	DistanceKm float64             `json:"distance_km"`
	Score      int                 `json:"score"`
	Answer     findyourcity.Answer `json:"answer"`
}

const msgRoundNotFound = "Round not found or expired."

func handleGuess(rounds Rounds, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GuessRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid request body")
			return
		}
		if req.Lat == nil || req.Lon == nil {
			writeError(w, http.StatusUnprocessableEntity, "lat and lon are required")
			return
		}
		guess := findyourcity.Coordinate{Lat: *req.Lat, Lon: *req.Lon}
		if !geo.ValidCoordinate(guess) {
			writeError(w, http.StatusUnprocessableEntity, "lat must be within [-90, 90] and lon within [-180, 180]")
			return
		}

		res, err := rounds.SubmitGuess(r.Context(), chi.URLParam(r, "roundId"), guess)
		switch {
		case errors.Is(err, round.ErrNotFound):
			writeError(w, http.StatusNotFound, msgRoundNotFound)
			return
		case errors.Is(err, round.ErrInvalidGuess):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		case err != nil:
			logger.Error("scoring guess", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, GuessResponse{
			DistanceKm: math.Round(res.DistanceKm*100) / 100,
			Score:      res.Score,
			Answer:     res.Answer,
		})
	}
}
