package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MatchesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kicker",
		Name:      "matches_created_total",
		Help:      "Matches started, by mode.",
	}, []string{"mode"})

	MatchesEnded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kicker",
		Name:      "matches_ended_total",
		Help:      "Matches ended with ratings applied, by mode.",
	}, []string{"mode"})

	MatchesCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "kicker",
		Name:      "matches_cancelled_total",
		Help:      "Active matches cancelled before ending.",
	})

	Goals = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kicker",
		Name:      "goals_total",
		Help:      "Goals appended to match logs, by type.",
	}, []string{"type"})

	RatingChange = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kicker",
		Name:      "rating_change_points",
		Help:      "Absolute MMR change applied to the winning side.",
		Buckets:   []float64{1, 2, 4, 8, 12, 16, 20, 24, 28, 32},
	}, []string{"mode"})

	Conflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kicker",
		Name:      "conflicts_total",
		Help:      "Operations rejected because of a state conflict.",
	}, []string{"operation"})
)
