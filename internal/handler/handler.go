// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service and session layers.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/tabletop/internal/browse"
	"github.com/Shivanand-hulikatti/tabletop/internal/catalog"
	"github.com/Shivanand-hulikatti/tabletop/internal/model"
	"github.com/Shivanand-hulikatti/tabletop/internal/repository"
	"github.com/Shivanand-hulikatti/tabletop/internal/service"
	"github.com/Shivanand-hulikatti/tabletop/internal/session"
	"github.com/Shivanand-hulikatti/tabletop/internal/wizard"
)

// EventHandler holds the REST handlers over the event repository.
type EventHandler struct {
	svc *service.EventService
	log *zap.Logger
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc *service.EventService, log *zap.Logger) *EventHandler {
	return &EventHandler{svc: svc, log: log}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// decodeOptionalJSON is decodeJSON for endpoints whose body may be empty.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := decodeJSON(w, r, dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// writeFailure maps a domain error to a status code. insertMsg is the
// message shown when a write to the repository fails.
func (h *EventHandler) writeFailure(w http.ResponseWriter, r *http.Request, err error, insertMsg string) {
	writeFailure(w, r, h.log, err, insertMsg)
}

func writeFailure(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error, insertMsg string) {
	var (
		formErrs wizard.ValidationErrors
		reqErr   *service.ValidationError
	)
	switch {
	case errors.As(err, &formErrs):
		writeJSON(w, http.StatusUnprocessableEntity, model.ErrorResponse{
			Error:  "validation failed",
			Fields: formErrs.Fields(),
		})
	case errors.As(err, &reqErr):
		writeJSON(w, http.StatusUnprocessableEntity, model.ErrorResponse{
			Error:  "validation failed",
			Fields: reqErr.Fields,
		})
	case errors.Is(err, browse.ErrEmailRequired):
		writeJSON(w, http.StatusUnprocessableEntity, model.ErrorResponse{
			Error:  "validation failed",
			Fields: map[string]string{"email": err.Error()},
		})

	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "event not found")
	case errors.Is(err, browse.ErrUnknownEvent):
		writeError(w, http.StatusNotFound, "event not found")
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "session not found")

	case errors.Is(err, browse.ErrEventFull),
		errors.Is(err, browse.ErrJoinInProgress),
		errors.Is(err, browse.ErrLoadInProgress),
		errors.Is(err, browse.ErrJoinFormClosed),
		errors.Is(err, browse.ErrNoSelection),
		errors.Is(err, wizard.ErrSubmitting),
		errors.Is(err, wizard.ErrNotFinalStep),
		errors.Is(err, session.ErrNotHosting):
		writeError(w, http.StatusConflict, err.Error())

	case errors.Is(err, wizard.ErrUnknownField),
		errors.Is(err, session.ErrUnknownTab):
		writeError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, repository.ErrInsert):
		log.Warn("repository write failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusBadGateway, insertMsg)
	case errors.Is(err, repository.ErrFetch):
		log.Warn("repository read failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to load events")

	default:
		log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.svc.CreateEvent(r.Context(), req)
	if err != nil {
		h.writeFailure(w, r, err, wizard.SubmitFailedMessage)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /events
// Returns a JSON array of all events ordered by schedule.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context())
	if err != nil {
		h.writeFailure(w, r, err, "")
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if events == nil {
		events = []model.Event{}
	}

	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, r, err, "")
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// Join handles POST /events/{id}/join
// Capacity is not enforced; clients gate on the attendance counts.
func (h *EventHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req model.JoinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	attendee, err := h.svc.Join(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.writeFailure(w, r, err, browse.JoinFailedMessage)
		return
	}

	writeJSON(w, http.StatusCreated, attendee)
}

// ListAttendees handles GET /events/{id}/attendees
func (h *EventHandler) ListAttendees(w http.ResponseWriter, r *http.Request) {
	attendees, err := h.svc.ListAttendees(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeFailure(w, r, err, "")
		return
	}

	if attendees == nil {
		attendees = []model.Attendee{}
	}

	writeJSON(w, http.StatusOK, attendees)
}

// Attendance handles GET /attendance
// Returns event id -> attendee count for every event with attendees.
func (h *EventHandler) Attendance(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.Attendance(r.Context())
	if err != nil {
		h.writeFailure(w, r, err, "")
		return
	}

	writeJSON(w, http.StatusOK, counts)
}

// ─── Catalog ──────────────────────────────────────────────────────────────────

// ListGames handles GET /catalog/games
func ListGames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.Games())
}

type catalogOptions struct {
	Titles        []string `json:"titles"`
	PlayerOptions []int    `json:"player_options"`
	Locations     []string `json:"locations"`
}

// CatalogOptions handles GET /catalog/options
// Returns the closed choices of the host form.
func CatalogOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalogOptions{
		Titles:        catalog.Titles(),
		PlayerOptions: catalog.PlayerOptions(),
		Locations:     locationLabels(),
	})
}

// ListLocations handles GET /catalog/locations
func ListLocations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, locationLabels())
}

func locationLabels() []string {
	locations := make([]string, 0, len(catalog.Locations))
	for _, l := range catalog.Locations {
		locations = append(locations, l.String())
	}
	return locations
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
