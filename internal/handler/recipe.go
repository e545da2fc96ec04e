package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/bromleigh/mealboard/internal/model"
	"github.com/bromleigh/mealboard/internal/store"
	"github.com/bromleigh/mealboard/internal/websocket"
)

type RecipeHandler struct {
	recipes *store.RecipeStore
	menu    *store.MenuStore
	hub     *websocket.Hub
	logger  *slog.Logger
}

func NewRecipeHandler(rs *store.RecipeStore, ms *store.MenuStore, hub *websocket.Hub, logger *slog.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: rs, menu: ms, hub: hub, logger: logger}
}

type recipeRequest struct {
	Instructions string                  `json:"instructions"`
	PrepTime     int                     `json:"prep_time"`
	CookTime     int                     `json:"cook_time"`
	Servings     int                     `json:"servings"`
	Ingredients  []store.IngredientInput `json:"ingredients"`
}

// recipeResponse bundles a recipe with its ingredient lines.
type recipeResponse struct {
	model.Recipe
	Ingredients []model.RecipeIngredient `json:"ingredients"`
}

func (h *RecipeHandler) respond(w http.ResponseWriter, status int, recipe *model.Recipe) {
	ingredients, err := h.recipes.ListIngredients(recipe.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load ingredients")
		return
	}
	if ingredients == nil {
		ingredients = []model.RecipeIngredient{}
	}
	writeJSON(w, status, recipeResponse{Recipe: *recipe, Ingredients: ingredients})
}

// Create attaches a recipe to a menu item. Each menu item holds at most one
// recipe.
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	menuItemID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	item, err := h.menu.GetItemByID(menuItemID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get menu item")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "menu item not found")
		return
	}

	existing, err := h.recipes.GetByMenuItem(menuItemID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check existing recipe")
		return
	}
	if existing != nil {
		writeError(w, http.StatusConflict, "menu item already has a recipe")
		return
	}

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	recipe, err := h.recipes.Create(menuItemID, req.Instructions, req.PrepTime, req.CookTime, req.Servings, req.Ingredients)
	if err != nil {
		h.logger.Error("create recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create recipe")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityRecipe, websocket.ActionCreated, recipe.ID, map[string]any{
		"menu_item_id": menuItemID,
	}))
	h.respond(w, http.StatusCreated, recipe)
}

// Get returns the recipe for a menu item.
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	menuItemID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	recipe, err := h.recipes.GetByMenuItem(menuItemID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get recipe")
		return
	}
	if recipe == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}
	h.respond(w, http.StatusOK, recipe)
}

// Update rewrites the recipe and its full ingredient list.
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	menuItemID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	recipe, err := h.recipes.GetByMenuItem(menuItemID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get recipe")
		return
	}
	if recipe == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	var req recipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	updated, err := h.recipes.Update(recipe.ID, req.Instructions, req.PrepTime, req.CookTime, req.Servings, req.Ingredients)
	if err != nil {
		h.logger.Error("update recipe", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update recipe")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityRecipe, websocket.ActionUpdated, recipe.ID, map[string]any{
		"menu_item_id": menuItemID,
	}))
	h.respond(w, http.StatusOK, updated)
}

func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	menuItemID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	recipe, err := h.recipes.GetByMenuItem(menuItemID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get recipe")
		return
	}
	if recipe == nil {
		writeError(w, http.StatusNotFound, "recipe not found")
		return
	}

	if err := h.recipes.Delete(recipe.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete recipe")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityRecipe, websocket.ActionDeleted, recipe.ID, map[string]any{
		"menu_item_id": menuItemID,
	}))
	w.WriteHeader(http.StatusNoContent)
}
