package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bromleigh/mealboard/internal/menugen"
	"github.com/bromleigh/mealboard/internal/store"
	"github.com/bromleigh/mealboard/internal/websocket"
)

type MenuGenHandler struct {
	adapter *menugen.Adapter
	prefs   *store.PrefsStore
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewMenuGenHandler(adapter *menugen.Adapter, ps *store.PrefsStore, hub *websocket.Hub, logger *slog.Logger) *MenuGenHandler {
	return &MenuGenHandler{adapter: adapter, prefs: ps, hub: hub, logger: logger}
}

type generateMenuRequest struct {
	Slots     []menugen.Slot `json:"slots"`
	Overwrite bool           `json:"overwrite"`
}

// Generate asks the menu service to fill the requested slots. Occupied
// slots are reported back for confirmation unless overwrite is set.
func (h *MenuGenHandler) Generate(w http.ResponseWriter, r *http.Request) {
	householdID, err := householdIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household_id")
		return
	}

	if h.adapter == nil {
		writeError(w, http.StatusServiceUnavailable, "menu generation is not configured")
		return
	}

	var req generateMenuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Slots) == 0 {
		writeError(w, http.StatusBadRequest, "slots are required")
		return
	}

	plans, err := h.adapter.Generate(r.Context(), householdID, req.Slots, req.Overwrite)
	if err != nil {
		var occupied *menugen.OverwriteRequiredError
		switch {
		case errors.As(err, &occupied):
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":          "some slots already have meals planned",
				"occupied_slots": occupied.Occupied,
			})
		case errors.Is(err, menugen.ErrGenerationUnavailable):
			h.logger.Error("menu generation service", "error", err)
			writeError(w, http.StatusBadGateway, "menu generation service is unavailable")
		case errors.Is(err, menugen.ErrNoValidPlans):
			writeError(w, http.StatusUnprocessableEntity, "the service returned no usable meals")
		default:
			h.logger.Error("generate menu", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to generate menu")
		}
		return
	}

	for _, p := range plans {
		h.hub.Broadcast(websocket.NewMessage(websocket.EntityPlan, websocket.ActionCreated, p.ID, nil))
	}
	writeJSON(w, http.StatusCreated, plans)
}

func (h *MenuGenHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	householdID, err := householdIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household_id")
		return
	}

	prefs, err := h.prefs.Get(householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

type preferencesRequest struct {
	DietaryInstructions string         `json:"dietary_instructions"`
	GenreWeights        map[string]int `json:"genre_weights"`
}

func (h *MenuGenHandler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	householdID, err := householdIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household_id")
		return
	}

	var req preferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	for genre := range req.GenreWeights {
		if !validGenre(genre) {
			writeError(w, http.StatusBadRequest, "unknown genre: "+genre)
			return
		}
	}

	prefs, err := h.prefs.Save(householdID, req.DietaryInstructions, req.GenreWeights)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save preferences")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}
