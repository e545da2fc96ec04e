package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bromleigh/mealboard/internal/model"
	"github.com/bromleigh/mealboard/internal/popularity"
	"github.com/bromleigh/mealboard/internal/store"
	"github.com/bromleigh/mealboard/internal/websocket"
)

type HouseholdHandler struct {
	households *store.HouseholdStore
	engine     *popularity.Engine
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewHouseholdHandler(hs *store.HouseholdStore, engine *popularity.Engine, hub *websocket.Hub, logger *slog.Logger) *HouseholdHandler {
	return &HouseholdHandler{households: hs, engine: engine, hub: hub, logger: logger}
}

type createHouseholdRequest struct {
	Name      string `json:"name"`
	HeadName  string `json:"head_name"`
	HeadEmail string `json:"head_email"`
}

func (h *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createHouseholdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.HeadName = strings.TrimSpace(req.HeadName)
	if req.Name == "" || req.HeadName == "" {
		writeError(w, http.StatusBadRequest, "name and head_name are required")
		return
	}

	household, err := h.households.Create(req.Name, req.HeadName, req.HeadEmail)
	if err != nil {
		h.logger.Error("create household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create household")
		return
	}
	writeJSON(w, http.StatusCreated, household)
}

func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	household, err := h.households.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get household")
		return
	}
	if household == nil {
		writeError(w, http.StatusNotFound, "household not found")
		return
	}
	writeJSON(w, http.StatusOK, household)
}

type thresholdRequest struct {
	MemberID  int64  `json:"member_id"`
	Threshold string `json:"threshold"`
}

// UpdateThreshold changes the popularity threshold and refreshes every menu
// item's hidden flag against the new value.
func (h *HouseholdHandler) UpdateThreshold(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req thresholdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	household, err := h.households.UpdateThreshold(id, req.MemberID, req.Threshold)
	if err == store.ErrNotHead {
		writeError(w, http.StatusForbidden, "only the household head may change the threshold")
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "threshold must be a whole number")
		return
	}
	if household == nil {
		writeError(w, http.StatusNotFound, "household not found")
		return
	}

	if err := h.engine.RecomputeHousehold(id); err != nil {
		h.logger.Error("recompute after threshold change", "household_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to apply new threshold")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityHousehold, websocket.ActionUpdated, id, map[string]any{
		"popularity_threshold": household.PopularityThreshold,
	}))
	writeJSON(w, http.StatusOK, household)
}

type addMemberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *HouseholdHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req addMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	member, err := h.households.AddMember(id, req.Name, req.Email)
	if err != nil {
		h.logger.Error("add member", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add member")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityMember, websocket.ActionCreated, member.ID, nil))
	writeJSON(w, http.StatusCreated, member)
}

func (h *HouseholdHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	members, err := h.households.ListMembers(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list members")
		return
	}
	if members == nil {
		members = []model.Member{}
	}
	writeJSON(w, http.StatusOK, members)
}

func (h *HouseholdHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.households.RemoveMember(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityMember, websocket.ActionDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}
