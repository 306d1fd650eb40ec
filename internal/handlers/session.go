package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/luckylarry/romance-engine/pkg/dialog"
	"github.com/luckylarry/romance-engine/pkg/state"
)

// SessionResponse is the view of a session returned by session endpoints.
type SessionResponse struct {
	State         *state.GameState `json:"state"`
	Options       []dialog.Option  `json:"options"`
	Notifications []string         `json:"notifications,omitempty"`
}

// SessionHandler handles the session lifecycle.
// Routes:
// POST /v1/sessions              - Create a new session
// GET /v1/sessions/{id}          - Read session state
// DELETE /v1/sessions/{id}       - Stop and discard a session
// POST /v1/sessions/{id}/save    - Persist the session snapshot
// POST /v1/sessions/{id}/load    - Restore the last saved snapshot
// POST /v1/sessions/{id}/reset   - Start the session over
type SessionHandler struct {
	manager *SessionManager
	logger  *slog.Logger
}

func NewSessionHandler(manager *SessionManager, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{manager: manager, logger: logger}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, "/v1/sessions")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Use POST to create a session")
			return
		}
		h.handleCreate(w, r)
		return
	}

	parts := strings.SplitN(path, "/", 2)
	id, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}
	verb := ""
	if len(parts) == 2 {
		verb = parts[1]
	}

	switch {
	case verb == "" && r.Method == http.MethodGet:
		h.handleRead(w, r, id)
	case verb == "" && r.Method == http.MethodDelete:
		h.handleDelete(w, r, id)
	case verb == "save" && r.Method == http.MethodPost:
		h.handleSave(w, r, id)
	case verb == "load" && r.Method == http.MethodPost:
		h.handleLoad(w, r, id)
	case verb == "reset" && r.Method == http.MethodPost:
		h.handleReset(w, r, id)
	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (h *SessionHandler) respond(w http.ResponseWriter, status int, id uuid.UUID) {
	s, rec, err := h.manager.Get(id)
	if err != nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}
	snap, err := s.Snapshot()
	if err != nil {
		h.logger.Error("Failed to snapshot session", "error", err, "id", id.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to read session")
		return
	}
	writeJSON(w, h.logger, status, SessionResponse{
		State:         snap,
		Options:       s.DialogOptions(),
		Notifications: rec.Drain(),
	})
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	s, _ := h.manager.Create()
	h.logger.Debug("Session created", "id", s.ID().String())
	h.respond(w, http.StatusCreated, s.ID())
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	h.respond(w, http.StatusOK, id)
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.manager.Remove(id); err != nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}
	h.logger.Debug("Session deleted", "id", id.String())
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) handleSave(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.manager.Save(r.Context(), id); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Error("Failed to save session", "error", err, "id", id.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}
	h.logger.Info("Session saved", "id", id.String())
	h.respond(w, http.StatusOK, id)
}

func (h *SessionHandler) handleLoad(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.manager.Load(r.Context(), id); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "No saved session found")
			return
		}
		h.logger.Error("Failed to load session", "error", err, "id", id.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return
	}
	h.logger.Info("Session loaded", "id", id.String())
	h.respond(w, http.StatusOK, id)
}

func (h *SessionHandler) handleReset(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	s, _, err := h.manager.Get(id)
	if err != nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}
	s.Reset()
	h.logger.Info("Session reset", "id", id.String())
	h.respond(w, http.StatusOK, id)
}
