package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RoundsStartedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "findyourcity_rounds_started_total",
		Help: "Rounds started, by place source (local or remote)",
	}, []string{"source"})
	RemoteFallbacksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "findyourcity_remote_fallbacks_total",
		Help: "Rounds that asked for a remote place and got a local one",
	})
	GuessesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "findyourcity_guesses_total",
		Help: "Scored guesses",
	})
	GuessScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "findyourcity_guess_score",
		Help:    "Distribution of guess scores",
		Buckets: []float64{0, 100, 500, 1000, 2000, 3000, 4000, 4500, 4900, 5000},
	})
	RoundsExpiredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "findyourcity_rounds_expired_total",
		Help: "Rounds removed by the expiry sweeper",
	})
	RemoteAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "findyourcity_remote_attempts_total",
		Help: "Remote generation attempts by outcome",
	}, []string{"outcome"})
	RemoteDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "findyourcity_remote_duration_ms",
		Help:    "Remote text generation call duration in milliseconds",
		Buckets: []float64{100, 250, 500, 1000, 2000, 5000, 10000, 20000},
	})
	BreakerTripsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "findyourcity_breaker_trips_total",
		Help: "Circuit breaker trips by reason",
	}, []string{"reason"})
)

func init() {
	prometheus.MustRegister(RoundsStartedTotal)
	prometheus.MustRegister(RemoteFallbacksTotal)
	prometheus.MustRegister(GuessesTotal)
	prometheus.MustRegister(GuessScore)
	prometheus.MustRegister(RoundsExpiredTotal)
	prometheus.MustRegister(RemoteAttemptsTotal)
	prometheus.MustRegister(RemoteDurationMs)
	prometheus.MustRegister(BreakerTripsTotal)
}

// Handler serves every registered collector for scraping at /metrics.
func Handler() http.Handler { return promhttp.Handler() }
