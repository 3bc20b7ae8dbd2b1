package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/tabletop/internal/browse"
	"github.com/Shivanand-hulikatti/tabletop/internal/model"
	"github.com/Shivanand-hulikatti/tabletop/internal/session"
	"github.com/Shivanand-hulikatti/tabletop/internal/wizard"
)

// SessionHandler drives per-visitor shells. Every successful call answers
// with the shell's current snapshot.
type SessionHandler struct {
	sessions *session.Registry
	log      *zap.Logger
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(sessions *session.Registry, log *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, log: log}
}

type openRequest struct {
	ClientID string `json:"client_id"`
}

type tabRequest struct {
	Tab session.Tab `json:"tab"`
}

type selectRequest struct {
	EventID string `json:"event_id"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type darkModeRequest struct {
	Enabled bool `json:"enabled"`
}

type submitResponse struct {
	Event   *model.Event     `json:"event"`
	Session session.Snapshot `json:"session"`
}

// withShell resolves {sid} and runs fn against the shell. A nil error from
// fn answers with the snapshot.
func (h *SessionHandler) withShell(insertMsg string, fn func(r *http.Request, s *session.Shell) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shell, err := h.sessions.Get(chi.URLParam(r, "sid"))
		if err != nil {
			writeFailure(w, r, h.log, err, "")
			return
		}
		if err := fn(r, shell); err != nil {
			writeFailure(w, r, h.log, err, insertMsg)
			return
		}
		writeJSON(w, http.StatusOK, shell.Snapshot())
	}
}

// Open handles POST /sessions
// The optional client_id keeps the display preference across sessions.
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	shell, err := h.sessions.Open(r.Context(), req.ClientID)
	if err != nil {
		writeFailure(w, r, h.log, err, "")
		return
	}

	writeJSON(w, http.StatusCreated, shell.Snapshot())
}

// Get handles GET /sessions/{sid}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.withShell("", func(*http.Request, *session.Shell) error { return nil })(w, r)
}

// Close handles DELETE /sessions/{sid}
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Close(chi.URLParam(r, "sid")); err != nil {
		writeFailure(w, r, h.log, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetTab handles PUT /sessions/{sid}/tab
func (h *SessionHandler) SetTab(w http.ResponseWriter, r *http.Request) {
	var req tabRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	h.withShell("", func(_ *http.Request, s *session.Shell) error {
		return s.SetTab(req.Tab)
	})(w, r)
}

// Reload handles POST /sessions/{sid}/reload
// A failed fetch keeps the previous list and still answers with the
// snapshot. A reload is refused while a join is outstanding.
func (h *SessionHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.withShell("", func(r *http.Request, s *session.Shell) error {
		err := s.Events.Load(r.Context())
		if errors.Is(err, browse.ErrJoinInProgress) {
			return err
		}
		if err != nil {
			h.log.Warn("event reload failed", zap.String("session_id", s.ID), zap.Error(err))
		}
		return nil
	})(w, r)
}

// Select handles POST /sessions/{sid}/selection
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	h.withShell("", func(_ *http.Request, s *session.Shell) error {
		_, err := s.Events.Select(req.EventID)
		return err
	})(w, r)
}

// CloseDetail handles DELETE /sessions/{sid}/selection
func (h *SessionHandler) CloseDetail(w http.ResponseWriter, r *http.Request) {
	h.withShell("", func(_ *http.Request, s *session.Shell) error {
		s.Events.CloseDetail()
		return nil
	})(w, r)
}

// OpenJoinForm handles POST /sessions/{sid}/selection/join
func (h *SessionHandler) OpenJoinForm(w http.ResponseWriter, r *http.Request) {
	h.withShell("", func(_ *http.Request, s *session.Shell) error {
		return s.Events.OpenJoinForm()
	})(w, r)
}

// SetJoinEmail handles PUT /sessions/{sid}/selection/email
func (h *SessionHandler) SetJoinEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	h.withShell("", func(_ *http.Request, s *session.Shell) error {
		return s.Events.SetJoinEmail(req.Email)
	})(w, r)
}

// ConfirmJoin handles POST /sessions/{sid}/selection/confirm
func (h *SessionHandler) ConfirmJoin(w http.ResponseWriter, r *http.Request) {
	h.withShell(browse.JoinFailedMessage, func(r *http.Request, s *session.Shell) error {
		return s.Events.ConfirmJoin(r.Context())
	})(w, r)
}

// StartHosting handles POST /sessions/{sid}/host
func (h *SessionHandler) StartHosting(w http.ResponseWriter, r *http.Request) {
	h.withShell("", func(_ *http.Request, s *session.Shell) error {
		return s.StartHosting()
	})(w, r)
}

// CancelHosting handles DELETE /sessions/{sid}/host
func (h *SessionHandler) CancelHosting(w http.ResponseWriter, r *http.Request) {
	h.withShell("", func(_ *http.Request, s *session.Shell) error {
		return s.CancelHosting()
	})(w, r)
}

// UpdateDraft handles PATCH /sessions/{sid}/host/draft
// The body maps field names to string or number values.
func (h *SessionHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := decodeJSON(w, r, &raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	fields := make(map[string]string, len(raw))
	for name, value := range raw {
		v, err := draftValue(value)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %s: %v", name, err))
			return
		}
		fields[name] = v
	}
	h.withShell("", func(_ *http.Request, s *session.Shell) error {
		return s.UpdateDraft(fields)
	})(w, r)
}

// HostNext handles POST /sessions/{sid}/host/next
func (h *SessionHandler) HostNext(w http.ResponseWriter, r *http.Request) {
	h.withShell("", func(_ *http.Request, s *session.Shell) error {
		return s.HostNext()
	})(w, r)
}

// HostBack handles POST /sessions/{sid}/host/back
func (h *SessionHandler) HostBack(w http.ResponseWriter, r *http.Request) {
	h.withShell("", func(_ *http.Request, s *session.Shell) error {
		return s.HostBack()
	})(w, r)
}

// SubmitHost handles POST /sessions/{sid}/host/submit
func (h *SessionHandler) SubmitHost(w http.ResponseWriter, r *http.Request) {
	shell, err := h.sessions.Get(chi.URLParam(r, "sid"))
	if err != nil {
		writeFailure(w, r, h.log, err, "")
		return
	}

	event, err := shell.SubmitHost(r.Context())
	if err != nil {
		writeFailure(w, r, h.log, err, wizard.SubmitFailedMessage)
		return
	}

	writeJSON(w, http.StatusCreated, submitResponse{Event: event, Session: shell.Snapshot()})
}

// draftValue reads a draft field sent as a JSON string or number. null
// clears the field.
func draftValue(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	return "", errors.New("must be a string or a number")
}

// SetDarkMode handles PUT /sessions/{sid}/settings/dark-mode
func (h *SessionHandler) SetDarkMode(w http.ResponseWriter, r *http.Request) {
	var req darkModeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	h.withShell("", func(r *http.Request, s *session.Shell) error {
		return s.SetDarkMode(r.Context(), req.Enabled)
	})(w, r)
}

// ToggleDarkMode handles POST /sessions/{sid}/settings/dark-mode
func (h *SessionHandler) ToggleDarkMode(w http.ResponseWriter, r *http.Request) {
	h.withShell("", func(r *http.Request, s *session.Shell) error {
		_, err := s.ToggleDarkMode(r.Context())
		return err
	})(w, r)
}
