package model

import "time"

type Recipe struct {
	ID           int64     `json:"id"`
	MenuItemID   int64     `json:"menu_item_id"`
	Instructions string    `json:"instructions"`
	PrepTime     int       `json:"prep_time"` // minutes
	CookTime     int       `json:"cook_time"` // minutes
	Servings     int       `json:"servings"`
	CreatedAt    time.Time `json:"created_at"`
}

type RecipeIngredient struct {
	ID       int64   `json:"id"`
	RecipeID int64   `json:"recipe_id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}
