package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/luckylarry/romance-engine/pkg/date"
	"github.com/luckylarry/romance-engine/pkg/dialog"
	"github.com/luckylarry/romance-engine/pkg/game"
	"github.com/luckylarry/romance-engine/pkg/minigame"
	"github.com/luckylarry/romance-engine/pkg/state"
)

// ActionRequest is one player action. Type selects the action; the other
// fields parameterize it.
type ActionRequest struct {
	Type string `json:"type"`

	// Option indexes the dialog option for "dialog".
	Option int `json:"option,omitempty"`
	// NPC names the target for "select_npc" and "schedule_date".
	NPC string `json:"npc,omitempty"`
	// Item names the target for "collect" and "select_item".
	Item string `json:"item,omitempty"`
	// Location names the destination for "move_to" and "schedule_date".
	Location string `json:"location,omitempty"`
	// TimeSlot is the requested slot for "schedule_date".
	TimeSlot string `json:"time_slot,omitempty"`
	// Choice is the scene move for "date_choice".
	Choice string `json:"choice,omitempty"`
	// Enabled carries the flag for the mode toggles.
	Enabled bool `json:"enabled,omitempty"`
}

// ActionResponse reports the action's outcome along with the refreshed
// session view.
type ActionResponse struct {
	State         *state.GameState `json:"state"`
	Options       []dialog.Option  `json:"options"`
	Notifications []string         `json:"notifications,omitempty"`
	Output        string           `json:"output,omitempty"`
	Poker         *minigame.Result `json:"poker,omitempty"`
}

// ActionHandler executes player actions against a running session.
// Route: POST /v1/sessions/{id}/actions
type ActionHandler struct {
	manager *SessionManager
	logger  *slog.Logger
}

func NewActionHandler(manager *SessionManager, logger *slog.Logger) *ActionHandler {
	return &ActionHandler{manager: manager, logger: logger}
}

func (h *ActionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Use POST")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1/sessions/")
	idStr := strings.TrimSuffix(path, "/actions")
	id, err := uuid.Parse(strings.Trim(idStr, "/"))
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", idStr, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	s, rec, err := h.manager.Get(id)
	if err != nil {
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return
	}

	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	output, poker, err := h.execute(s, req)
	if err != nil {
		h.logger.Warn("Action rejected", "type", req.Type, "error", err, "id", id.String())
		writeError(w, h.logger, statusFor(err), err.Error())
		return
	}

	snap, err := s.Snapshot()
	if err != nil {
		h.logger.Error("Failed to snapshot session", "error", err, "id", id.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to read session")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, ActionResponse{
		State:         snap,
		Options:       s.DialogOptions(),
		Notifications: rec.Drain(),
		Output:        output,
		Poker:         poker,
	})
}

func (h *ActionHandler) execute(s *game.Session, req ActionRequest) (string, *minigame.Result, error) {
	switch req.Type {
	case "verify_age":
		s.VerifyAge()
		return "", nil, nil
	case "set_adult":
		return "", nil, s.SetAdultMode(req.Enabled)
	case "set_enhanced":
		s.SetEnhancedMode(req.Enabled)
		return "", nil, nil
	case "set_ai":
		s.SetAIMode(req.Enabled)
		return "", nil, nil
	case "select_npc":
		return "", nil, s.SelectNPC(req.NPC)
	case "dialog":
		return "", nil, s.ChooseOption(req.Option)
	case "collect":
		return "", nil, s.CollectItem(req.Item)
	case "select_item":
		return "", nil, s.SelectItem(req.Item)
	case "use_item":
		return "", nil, s.UseSelectedItem()
	case "look":
		out, err := s.Look()
		return out, nil, err
	case "examine":
		out, err := s.Examine()
		return out, nil, err
	case "endings":
		return s.EndingsGallery(), nil, nil
	case "move":
		out, err := s.Move()
		return out, nil, err
	case "move_to":
		return "", nil, s.MoveTo(req.Location)
	case "flirt":
		return "", nil, s.Flirt()
	case "buy_protection":
		return "", nil, s.BuyProtection()
	case "schedule_date":
		return "", nil, s.ScheduleDate(req.NPC, req.Location, req.TimeSlot)
	case "date_choice":
		return "", nil, s.DateChoice(date.Choice(req.Choice))
	case "end_date":
		return "", nil, s.EndDate()
	case "poker_deal":
		res, err := s.PlayPoker()
		if err != nil {
			return "", nil, err
		}
		return "", &res, nil
	case "poker_bet":
		res, err := s.BetPoker()
		if err != nil {
			return "", nil, err
		}
		return "", &res, nil
	default:
		return "", nil, errors.New("unknown action type: " + req.Type)
	}
}

// statusFor maps engine errors to HTTP status codes. Rule violations are
// client errors.
func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrUnknownNPC),
		errors.Is(err, game.ErrUnknownItem),
		errors.Is(err, game.ErrUnknownLocation),
		errors.Is(err, date.ErrUnknownNPC),
		errors.Is(err, date.ErrUnknownChoice):
		return http.StatusNotFound
	case errors.Is(err, game.ErrAgeNotVerified),
		errors.Is(err, game.ErrAdultModeRequired),
		errors.Is(err, game.ErrEnhancedModeRequired),
		errors.Is(err, date.ErrAdultModeRequired):
		return http.StatusForbidden
	case errors.Is(err, game.ErrLocationLocked),
		errors.Is(err, game.ErrOptionDisabled),
		errors.Is(err, game.ErrProtectionFull),
		errors.Is(err, game.ErrProtectionNotSold),
		errors.Is(err, game.ErrInsufficientScore),
		errors.Is(err, state.ErrInventoryFull),
		errors.Is(err, minigame.ErrInsufficientScore),
		errors.Is(err, date.ErrRelationshipTooLow),
		errors.Is(err, date.ErrLocationUnavailable),
		errors.Is(err, date.ErrNoActiveDate),
		errors.Is(err, date.ErrChoiceAlreadyMade):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
