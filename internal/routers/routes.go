package routers

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vector/internal/handlers"
)

// Register mounts the service's routes on the router.
func Register(r *chi.Mux, h *handlers.Handlers) {
	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/match", func(r chi.Router) {
		r.Post("/request", h.StartMatching)
		r.Post("/confirm", h.ConfirmMatch)
		r.Post("/cancel", h.CancelMatching)
		r.Get("/status", h.MatchStatus)

		r.Post("/presence/open", h.PresenceOpen)
		r.Post("/presence/close", h.PresenceClose)
		r.Get("/presence", h.PresenceQuery)
	})

	r.Route("/api/v1/sessions", func(r chi.Router) {
		r.Get("/{id}", h.GetSession)
		r.Post("/{id}/question", h.ChangeQuestion)
		r.Post("/{id}/roles", h.SwitchRoles)
		r.Post("/{id}/end", h.EndSession)
		r.Post("/{id}/feedback", h.SubmitFeedback)
		r.Get("/{id}/feedback", h.GetFeedbackStatus)
	})

	r.Get("/ws/match", h.MatchWS)
	r.Get("/ws/sessions/{id}", h.SessionWS)
}
