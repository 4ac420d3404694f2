package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsWaiting = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vector_match_requests_waiting",
		Help: "Number of matching requests currently pending.",
	})

	MatchesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vector_matches_created_total",
		Help: "Total pairs transitioned to matched.",
	})

	SessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vector_sessions_created_total",
		Help: "Total live sessions created from confirmed pairs.",
	})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vector_sessions_active",
		Help: "Live sessions currently in progress.",
	})

	ConfirmTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vector_match_confirm_timeouts_total",
		Help: "Matched pairs reverted because one side did not confirm in time.",
	})

	RequestsExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vector_match_requests_expired_total",
		Help: "Pending requests swept past their expiry.",
	})

	FeedbackSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vector_feedback_submitted_total",
		Help: "Feedback submissions accepted.",
	})
)
