package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bromleigh/mealboard/internal/model"
	"github.com/bromleigh/mealboard/internal/store"
	"github.com/bromleigh/mealboard/internal/websocket"
)

type MenuHandler struct {
	menu   *store.MenuStore
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewMenuHandler(ms *store.MenuStore, hub *websocket.Hub, logger *slog.Logger) *MenuHandler {
	return &MenuHandler{menu: ms, hub: hub, logger: logger}
}

func validGenre(genre string) bool {
	for _, g := range model.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

type menuItemRequest struct {
	Name      string `json:"name"`
	Genre     string `json:"genre"`
	CreatedBy *int64 `json:"created_by"`
}

func (h *MenuHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	householdID, err := householdIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household_id")
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Genre == "" {
		req.Genre = "Other"
	}
	if !validGenre(req.Genre) {
		writeError(w, http.StatusBadRequest, "genre must be one of "+strings.Join(model.Genres, ", "))
		return
	}

	item, err := h.menu.CreateItem(householdID, req.Name, req.Genre, req.CreatedBy)
	if err != nil {
		h.logger.Error("create menu item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create menu item")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityMenuItem, websocket.ActionCreated, item.ID, nil))
	writeJSON(w, http.StatusCreated, item)
}

// ListItems returns the household's entrees. Hidden items are omitted
// unless include_hidden=true; by_popularity=true sorts by score descending.
func (h *MenuHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	householdID, err := householdIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household_id")
		return
	}

	var items []model.MenuItem
	if r.URL.Query().Get("by_popularity") == "true" {
		items, err = h.menu.ListItemsByPopularity(householdID)
	} else {
		items, err = h.menu.ListItems(householdID, r.URL.Query().Get("include_hidden") == "true")
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list menu items")
		return
	}
	if items == nil {
		items = []model.MenuItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

// PopularityStats returns every item with its score, hidden or not,
// most popular first.
func (h *MenuHandler) PopularityStats(w http.ResponseWriter, r *http.Request) {
	householdID, err := householdIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household_id")
		return
	}

	items, err := h.menu.ListItemsByPopularity(householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load popularity stats")
		return
	}
	if items == nil {
		items = []model.MenuItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *MenuHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	item, err := h.menu.GetItemByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get menu item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "menu item not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *MenuHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !validGenre(req.Genre) {
		writeError(w, http.StatusBadRequest, "genre must be one of "+strings.Join(model.Genres, ", "))
		return
	}

	item, err := h.menu.UpdateItem(id, req.Name, req.Genre)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update menu item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "menu item not found")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityMenuItem, websocket.ActionUpdated, id, nil))
	writeJSON(w, http.StatusOK, item)
}

// Hide manually hides an entree from the active menu. The flag holds until
// the next vote-driven recompute.
func (h *MenuHandler) Hide(w http.ResponseWriter, r *http.Request) {
	h.setHidden(w, r, true)
}

// Restore manually returns a hidden entree to the active menu.
func (h *MenuHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.setHidden(w, r, false)
}

func (h *MenuHandler) setHidden(w http.ResponseWriter, r *http.Request, hidden bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	item, err := h.menu.SetHidden(id, hidden)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update menu item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "menu item not found")
		return
	}

	action := websocket.ActionShown
	if hidden {
		action = websocket.ActionHidden
	}
	h.hub.Broadcast(websocket.NewMessage(websocket.EntityMenuItem, action, id, nil))
	writeJSON(w, http.StatusOK, item)
}

func (h *MenuHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.menu.DeleteItem(id); err != nil {
		h.logger.Error("delete menu item", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete menu item")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityMenuItem, websocket.ActionDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// --- Sides ---

type sideRequest struct {
	Name      string `json:"name"`
	CreatedBy *int64 `json:"created_by"`
}

func (h *MenuHandler) CreateSide(w http.ResponseWriter, r *http.Request) {
	householdID, err := householdIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household_id")
		return
	}

	var req sideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	side, err := h.menu.CreateSide(householdID, req.Name, req.CreatedBy)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create side")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntitySide, websocket.ActionCreated, side.ID, nil))
	writeJSON(w, http.StatusCreated, side)
}

func (h *MenuHandler) ListSides(w http.ResponseWriter, r *http.Request) {
	householdID, err := householdIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household_id")
		return
	}

	sides, err := h.menu.ListSides(householdID, r.URL.Query().Get("include_hidden") == "true")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sides")
		return
	}
	if sides == nil {
		sides = []model.Side{}
	}
	writeJSON(w, http.StatusOK, sides)
}

func (h *MenuHandler) DeleteSide(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.menu.DeleteSide(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete side")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntitySide, websocket.ActionDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}

type linkSideRequest struct {
	SideID int64 `json:"side_id"`
}

// LinkSide pairs a side with an entree as a suggested accompaniment.
func (h *MenuHandler) LinkSide(w http.ResponseWriter, r *http.Request) {
	entreeID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req linkSideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.menu.LinkSide(entreeID, req.SideID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to link side")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MenuHandler) UnlinkSide(w http.ResponseWriter, r *http.Request) {
	entreeID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req linkSideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.menu.UnlinkSide(entreeID, req.SideID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to unlink side")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *MenuHandler) ListSidesForEntree(w http.ResponseWriter, r *http.Request) {
	entreeID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	sides, err := h.menu.ListSidesForEntree(entreeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sides")
		return
	}
	if sides == nil {
		sides = []model.Side{}
	}
	writeJSON(w, http.StatusOK, sides)
}
