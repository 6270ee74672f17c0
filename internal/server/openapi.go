package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

type readinessResponse map[string]struct {
	Status string `json:"status"`
}

type guessInput struct {
	RoundID string `path:"roundId"`
	GuessRequest
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "FindYourCity API"
	r.Spec.Info.Version = "0.2.0"
	r.Spec.Info.WithDescription("Backend API for the FindYourCity geography guessing game.")

	// GET /api/health
	getHealth, _ := r.NewOperationContext(http.MethodGet, "/api/health")
	getHealth.SetSummary("Liveness")
	getHealth.SetDescription("Always returns ok while the process is serving.")
	getHealth.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getHealth)

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Readiness")
	getHealthz.SetDescription("Returns the status of each backend dependency.")
	getHealthz.AddRespStructure(readinessResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(readinessResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/round
	postRound, _ := r.NewOperationContext(http.MethodPost, "/api/round")
	postRound.SetSummary("Start a round")
	postRound.SetDescription("Picks a secret place and returns the narrative and hints. The body is optional.")
	postRound.AddReqStructure(NewRoundRequest{})
	postRound.AddRespStructure(NewRoundResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postRound.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(postRound)

	// POST /api/round/{roundId}/guess
	postGuess, _ := r.NewOperationContext(http.MethodPost, "/api/round/{roundId}/guess")
	postGuess.SetSummary("Submit a guess")
	postGuess.SetDescription("Scores a coordinate against the round's secret place and reveals the answer.")
	postGuess.AddReqStructure(guessInput{})
	postGuess.AddRespStructure(GuessResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postGuess.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postGuess.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(postGuess)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
