package relay

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK           = "ok"
	outcomeInvalidInput = "invalid_input"
	outcomeRateLimited  = "rate_limited"
	outcomeFailed       = "failed"
)

var (
	generationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "imageination_generations_total",
		Help: "Generate requests handled by the relay, by outcome.",
	}, []string{"outcome"})

	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "imageination_generation_duration_seconds",
		Help:    "Time spent handling a generate request, including the provider call.",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 40, 60, 120},
	}, []string{"outcome"})
)

func outcome(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, ErrInvalidInput):
		return outcomeInvalidInput
	case errors.Is(err, ErrRateLimited):
		return outcomeRateLimited
	default:
		return outcomeFailed
	}
}
