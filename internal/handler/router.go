package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter builds the full route tree with the global middleware stack.
func NewRouter(events *EventHandler, sessions *SessionHandler, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger(log))             // structured access log
	r.Use(CORS)
	r.Use(Metrics)

	r.Get("/health", HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/games", ListGames)
		r.Get("/locations", ListLocations)
		r.Get("/options", CatalogOptions)
	})

	r.Route("/events", func(r chi.Router) {
		r.Post("/", events.CreateEvent)
		r.Get("/", events.ListEvents)
		r.Get("/{id}", events.GetEvent)
		r.Post("/{id}/join", events.Join)
		r.Get("/{id}/attendees", events.ListAttendees)
	})
	r.Get("/attendance", events.Attendance)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", sessions.Open)
		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", sessions.Get)
			r.Delete("/", sessions.Close)
			r.Put("/tab", sessions.SetTab)
			r.Post("/reload", sessions.Reload)

			r.Post("/selection", sessions.Select)
			r.Delete("/selection", sessions.CloseDetail)
			r.Post("/selection/join", sessions.OpenJoinForm)
			r.Put("/selection/email", sessions.SetJoinEmail)
			r.Post("/selection/confirm", sessions.ConfirmJoin)

			r.Post("/host", sessions.StartHosting)
			r.Delete("/host", sessions.CancelHosting)
			r.Patch("/host/draft", sessions.UpdateDraft)
			r.Post("/host/next", sessions.HostNext)
			r.Post("/host/back", sessions.HostBack)
			r.Post("/host/submit", sessions.SubmitHost)

			r.Post("/settings/dark-mode", sessions.ToggleDarkMode)
			r.Put("/settings/dark-mode", sessions.SetDarkMode)
		})
	})

	return r
}
