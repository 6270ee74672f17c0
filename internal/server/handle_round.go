package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/playperu/findyourcity/internal/findyourcity"
	"github.com/playperu/findyourcity/internal/geo"
	"github.com/playperu/findyourcity/internal/place"
)

type NewRoundRequest struct {
	Mode string `json:"mode,omitempty" enum:"offline,remote,ai" description:"Place source. Omit to use the server default."`
}

type NewRoundResponse struct {
	RoundID       string                  `json:"roundId"`
	Character     string                  `json:"character"`
	Monologue     string                  `json:"monologue"`
	Hints         findyourcity.Hints      `json:"hints"`
	MapDefault    findyourcity.MapDefault `json:"mapDefault"`
	MaxScore      int                     `json:"maxScore"`
	AIEmbellished bool                    `json:"aiEmbellished"`
}

func handleNewRound(rounds Rounds, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req NewRoundRequest
		if err := readJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
			writeError(w, http.StatusUnprocessableEntity, "invalid request body")
			return
		}

		rnd, err := rounds.StartRound(r.Context(), place.ParseMode(req.Mode))
		if err != nil {
			logger.Error("starting round", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		b := rnd.Bundle
		writeJSON(w, http.StatusOK, NewRoundResponse{
			RoundID:       rnd.ID,
			Character:     b.Character,
			Monologue:     b.Monologue,
			Hints:         b.Hints,
			MapDefault:    b.MapDefault,
			MaxScore:      geo.MaxScore,
			AIEmbellished: b.AIGenerated,
		})
	}
}
