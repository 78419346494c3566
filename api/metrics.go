package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	outcomeSelected   = "selected"
	outcomeInfeasible = "infeasible"
	outcomeRejected   = "rejected"
	outcomeFailed     = "failed"
)

var (
	// selectionsTotal counts the selection requests by outcome
	selectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noteselector_selections_total",
		Help: "Total note selections by outcome",
	}, []string{"outcome"})

	// selectionDuration tracks the time spent running the selection
	selectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "noteselector_selection_duration_seconds",
		Help:    "Note selection duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~800ms
	})

	// selectionCandidates tracks the number of candidates scored per selection
	selectionCandidates = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "noteselector_selection_candidates",
		Help:    "Number of candidate plans scored per selection",
		Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
	})

	// chosenStrategyTotal counts the strategy of the chosen plans
	chosenStrategyTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noteselector_chosen_strategy_total",
		Help: "Total chosen plans by generating strategy",
	}, []string{"strategy"})

	// chosenNotes tracks the number of notes spent by the chosen plans
	chosenNotes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "noteselector_chosen_plan_notes",
		Help:    "Number of notes spent by the chosen plan",
		Buckets: []float64{1, 2, 3, 4, 6, 8, 12, 16},
	})
)

func metricsHandler() http.Handler {
	return promhttp.Handler()
}
