package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bromleigh/mealboard/internal/dates"
	"github.com/bromleigh/mealboard/internal/model"
	"github.com/bromleigh/mealboard/internal/popularity"
	"github.com/bromleigh/mealboard/internal/push"
	"github.com/bromleigh/mealboard/internal/store"
	"github.com/bromleigh/mealboard/internal/websocket"
)

type PlanHandler struct {
	plans      *store.PlanStore
	votes      *store.VoteStore
	menu       *store.MenuStore
	households *store.HouseholdStore
	engine     *popularity.Engine
	notifier   *push.Notifier
	hub        *websocket.Hub
	logger     *slog.Logger
}

func NewPlanHandler(ps *store.PlanStore, vs *store.VoteStore, ms *store.MenuStore, hs *store.HouseholdStore, engine *popularity.Engine, notifier *push.Notifier, hub *websocket.Hub, logger *slog.Logger) *PlanHandler {
	return &PlanHandler{plans: ps, votes: vs, menu: ms, households: hs, engine: engine, notifier: notifier, hub: hub, logger: logger}
}

type planRequest struct {
	Date       string `json:"date"`
	MealType   string `json:"meal_type"`
	MenuItemID int64  `json:"menu_item_id"`
	SideID     *int64 `json:"side_id"`
	CreatedBy  *int64 `json:"created_by"`
}

func (h *PlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	householdID, err := householdIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household_id")
		return
	}

	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !dates.Valid(req.Date) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	if !model.ValidMealType(req.MealType) {
		writeError(w, http.StatusBadRequest, "meal_type must be breakfast, lunch, or dinner")
		return
	}

	item, err := h.menu.GetItemByID(req.MenuItemID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get menu item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "menu item not found")
		return
	}

	plan, err := h.plans.Create(householdID, req.Date, req.MealType, req.MenuItemID, req.SideID, req.CreatedBy)
	if err == store.ErrSlotOccupied {
		writeError(w, http.StatusConflict, "a meal is already planned for that slot")
		return
	}
	if err != nil {
		h.logger.Error("create plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create plan")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityPlan, websocket.ActionCreated, plan.ID, nil))
	writeJSON(w, http.StatusCreated, plan)
}

// List returns plans in the inclusive date range [start, end].
func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	householdID, err := householdIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household_id")
		return
	}

	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if !dates.Valid(start) || !dates.Valid(end) {
		writeError(w, http.StatusBadRequest, "start and end must be YYYY-MM-DD")
		return
	}

	plans, err := h.plans.ListByDateRange(householdID, start, end)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list plans")
		return
	}
	if plans == nil {
		plans = []model.MealPlan{}
	}
	writeJSON(w, http.StatusOK, plans)
}

type moveRequest struct {
	Date     string `json:"date"`
	MealType string `json:"meal_type"`
}

// Move relocates a plan to another slot. If the target slot is occupied the
// two plans trade places.
func (h *PlanHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !dates.Valid(req.Date) {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	if !model.ValidMealType(req.MealType) {
		writeError(w, http.StatusBadRequest, "meal_type must be breakfast, lunch, or dinner")
		return
	}

	plan, err := h.plans.Move(id, req.Date, req.MealType)
	if err != nil {
		h.logger.Error("move plan", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to move plan")
		return
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityPlan, websocket.ActionUpdated, id, nil))
	writeJSON(w, http.StatusOK, plan)
}

type sideUpdateRequest struct {
	SideID *int64 `json:"side_id"`
}

func (h *PlanHandler) UpdateSide(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req sideUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	plan, err := h.plans.UpdateSide(id, req.SideID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update plan")
		return
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityPlan, websocket.ActionUpdated, id, nil))
	writeJSON(w, http.StatusOK, plan)
}

func (h *PlanHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	plan, err := h.plans.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get plan")
		return
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}

	if err := h.plans.Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete plan")
		return
	}

	// Votes went with the plan, so the item's score shifts.
	if _, _, err := h.engine.Recompute(plan.MenuItemID); err != nil {
		h.logger.Error("recompute after plan delete", "menu_item_id", plan.MenuItemID, "error", err)
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityPlan, websocket.ActionDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}

type voteRequest struct {
	MemberID int64 `json:"member_id"`
	Value    int   `json:"value"`
}

type voteResponse struct {
	Vote     *model.Vote     `json:"vote"`
	MenuItem *model.MenuItem `json:"menu_item"`
}

// Vote records a member's reaction to a planned meal and recomputes the
// entree's popularity. Casting the same vote again clears it; casting the
// opposite vote replaces it.
func (h *PlanHandler) Vote(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Value != 1 && req.Value != -1 {
		writeError(w, http.StatusBadRequest, "value must be 1 or -1")
		return
	}

	plan, err := h.plans.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get plan")
		return
	}
	if plan == nil {
		writeError(w, http.StatusNotFound, "plan not found")
		return
	}

	member, err := h.households.GetMember(req.MemberID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get member")
		return
	}
	if member == nil || member.HouseholdID != plan.HouseholdID {
		writeError(w, http.StatusForbidden, "member does not belong to this household")
		return
	}

	vote, err := h.votes.Cast(id, req.MemberID, req.Value)
	if err != nil {
		h.logger.Error("cast vote", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record vote")
		return
	}

	item, flipped, err := h.engine.Recompute(plan.MenuItemID)
	if err != nil {
		h.logger.Error("recompute popularity", "menu_item_id", plan.MenuItemID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update popularity")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityVote, websocket.ActionUpdated, id, map[string]any{
		"menu_item_id": item.ID,
		"score":        item.PopularityScore,
	}))

	if flipped {
		action := websocket.ActionShown
		if item.IsHidden {
			action = websocket.ActionHidden
		}
		h.hub.Broadcast(websocket.NewMessage(websocket.EntityMenuItem, action, item.ID, nil))

		if item.IsHidden && h.notifier != nil {
			h.notifier.NotifyHousehold(plan.HouseholdID, push.ItemHidden(item.Name))
		}
	}

	writeJSON(w, http.StatusOK, voteResponse{Vote: vote, MenuItem: item})
}

// ListVotes returns all votes for a plan.
func (h *PlanHandler) ListVotes(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	votes, err := h.votes.ListByPlan(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list votes")
		return
	}
	if votes == nil {
		votes = []model.Vote{}
	}
	writeJSON(w, http.StatusOK, votes)
}
