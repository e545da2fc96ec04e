package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bromleigh/mealboard/internal/email"
	"github.com/bromleigh/mealboard/internal/model"
	"github.com/bromleigh/mealboard/internal/push"
	"github.com/bromleigh/mealboard/internal/shopping"
	"github.com/bromleigh/mealboard/internal/store"
	"github.com/bromleigh/mealboard/internal/websocket"
)

type ShoppingHandler struct {
	lists     *store.ShoppingStore
	generator *shopping.Generator
	mailer    *email.Client
	notifier  *push.Notifier
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewShoppingHandler(ss *store.ShoppingStore, gen *shopping.Generator, mailer *email.Client, notifier *push.Notifier, hub *websocket.Hub, logger *slog.Logger) *ShoppingHandler {
	return &ShoppingHandler{lists: ss, generator: gen, mailer: mailer, notifier: notifier, hub: hub, logger: logger}
}

type generateListRequest struct {
	WeekStart string `json:"week_start"`
}

type listResponse struct {
	*model.ShoppingList
	Items []model.ShoppingItem `json:"items"`
}

// Generate builds a shopping list from the week of meal plans starting at
// week_start. Every scheduled entree must have a recipe; otherwise nothing
// is created and the missing entrees are reported.
func (h *ShoppingHandler) Generate(w http.ResponseWriter, r *http.Request) {
	householdID, err := householdIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household_id")
		return
	}

	var req generateListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	list, items, err := h.generator.GenerateForWeek(householdID, req.WeekStart)
	if err != nil {
		var missing *shopping.MissingRecipesError
		switch {
		case errors.As(err, &missing):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":           missing.Error(),
				"missing_recipes": missing.Names,
				"menu_item_ids":   missing.MenuItemIDs,
			})
		case errors.Is(err, shopping.ErrNoMealsScheduled):
			writeError(w, http.StatusUnprocessableEntity, "no meals are scheduled for that week")
		case errors.Is(err, shopping.ErrNoIngredients):
			writeError(w, http.StatusUnprocessableEntity, "the scheduled recipes have no ingredients")
		default:
			h.logger.Error("generate shopping list", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to generate shopping list")
		}
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityShoppingList, websocket.ActionCreated, list.ID, nil))
	if h.notifier != nil {
		h.notifier.NotifyHousehold(householdID, push.ListGenerated(list.DateRangeStart, list.DateRangeEnd))
	}

	writeJSON(w, http.StatusCreated, listResponse{ShoppingList: list, Items: items})
}

func (h *ShoppingHandler) ListLists(w http.ResponseWriter, r *http.Request) {
	householdID, err := householdIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household_id")
		return
	}

	lists, err := h.lists.ListLists(householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list shopping lists")
		return
	}
	if lists == nil {
		lists = []model.ShoppingList{}
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *ShoppingHandler) GetList(w http.ResponseWriter, r *http.Request) {
	list, items, ok := h.loadList(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, listResponse{ShoppingList: list, Items: items})
}

func (h *ShoppingHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.lists.DeleteList(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete shopping list")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityShoppingList, websocket.ActionDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}

type addItemRequest struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// AddItem appends a manual entry at the end of the list.
func (h *ShoppingHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	list, err := h.lists.GetListByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get shopping list")
		return
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "shopping list not found")
		return
	}

	input := []store.ItemInput{{
		IngredientName: req.Name,
		Quantity:       req.Quantity,
		Unit:           req.Unit,
		AddedManually:  true,
	}}
	if err := h.lists.CreateItems(id, input); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to add item")
		return
	}

	items, err := h.lists.ListItems(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityShoppingItem, websocket.ActionCreated, id, nil))
	writeJSON(w, http.StatusCreated, items)
}

type updateItemRequest struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

func (h *ShoppingHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	item, err := h.lists.UpdateItem(id, req.Name, req.Quantity, req.Unit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityShoppingItem, websocket.ActionUpdated, id, nil))
	writeJSON(w, http.StatusOK, item)
}

func (h *ShoppingHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	item, err := h.lists.ToggleChecked(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to toggle item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "item not found")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityShoppingItem, websocket.ActionUpdated, id, map[string]any{
		"checked": item.Checked,
	}))
	writeJSON(w, http.StatusOK, item)
}

func (h *ShoppingHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.lists.DeleteItem(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityShoppingItem, websocket.ActionDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}

type reorderRequest struct {
	ItemIDs []int64 `json:"item_ids"`
}

// Reorder rewrites the positions of the unchecked items named in the
// payload. Checked items and ids from other lists are skipped.
func (h *ShoppingHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.lists.ReorderItems(id, req.ItemIDs); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reorder items")
		return
	}

	items, err := h.lists.ListItems(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityShoppingItem, websocket.ActionUpdated, id, nil))
	writeJSON(w, http.StatusOK, items)
}

// Export renders the list as plain text suitable for copy and paste.
func (h *ShoppingHandler) Export(w http.ResponseWriter, r *http.Request) {
	list, items, ok := h.loadList(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(shopping.Export(list, items)))
}

type shareRequest struct {
	Email string `json:"email"`
}

// Share emails the exported list.
func (h *ShoppingHandler) Share(w http.ResponseWriter, r *http.Request) {
	list, items, ok := h.loadList(w, r)
	if !ok {
		return
	}

	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if h.mailer == nil || !h.mailer.Configured() {
		writeError(w, http.StatusServiceUnavailable, "email is not configured")
		return
	}

	subject := "Shopping List " + list.DateRangeStart + " to " + list.DateRangeEnd
	if err := h.mailer.SendShoppingList(req.Email, subject, shopping.Export(list, items)); err != nil {
		h.logger.Error("share shopping list", "error", err)
		writeError(w, http.StatusBadGateway, "failed to send email")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

type templateRequest struct {
	Name      string               `json:"name"`
	Items     []model.TemplateItem `json:"items"`
	CreatedBy *int64               `json:"created_by"`
}

func (h *ShoppingHandler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	householdID, err := householdIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household_id")
		return
	}

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	tmpl, err := h.lists.CreateTemplate(householdID, req.Name, req.Items, req.CreatedBy)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create template")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityTemplate, websocket.ActionCreated, tmpl.ID, nil))
	writeJSON(w, http.StatusCreated, tmpl)
}

func (h *ShoppingHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	householdID, err := householdIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid household_id")
		return
	}

	templates, err := h.lists.ListTemplates(householdID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}
	if templates == nil {
		templates = []model.ShoppingTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *ShoppingHandler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.lists.DeleteTemplate(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete template")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityTemplate, websocket.ActionDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}

type applyTemplateRequest struct {
	TemplateID int64 `json:"template_id"`
}

// ApplyTemplate appends a template's items to the list.
func (h *ShoppingHandler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req applyTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	list, err := h.lists.GetListByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get shopping list")
		return
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "shopping list not found")
		return
	}

	tmpl, err := h.lists.GetTemplateByID(req.TemplateID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get template")
		return
	}
	if tmpl == nil {
		writeError(w, http.StatusNotFound, "template not found")
		return
	}

	if err := h.generator.ApplyTemplate(id, tmpl); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to apply template")
		return
	}

	items, err := h.lists.ListItems(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityShoppingItem, websocket.ActionCreated, id, nil))
	writeJSON(w, http.StatusOK, items)
}

func (h *ShoppingHandler) loadList(w http.ResponseWriter, r *http.Request) (*model.ShoppingList, []model.ShoppingItem, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, nil, false
	}

	list, err := h.lists.GetListByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get shopping list")
		return nil, nil, false
	}
	if list == nil {
		writeError(w, http.StatusNotFound, "shopping list not found")
		return nil, nil, false
	}

	items, err := h.lists.ListItems(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list items")
		return nil, nil, false
	}
	if items == nil {
		items = []model.ShoppingItem{}
	}
	return list, items, true
}
