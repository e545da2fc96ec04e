package model

import "time"

type ShoppingList struct {
	ID             int64     `json:"id"`
	HouseholdID    int64     `json:"household_id"`
	DateRangeStart string    `json:"date_range_start"` // YYYY-MM-DD
	DateRangeEnd   string    `json:"date_range_end"`   // YYYY-MM-DD
	CreatedAt      time.Time `json:"created_at"`
}

type ShoppingItem struct {
	ID             int64   `json:"id"`
	ShoppingListID int64   `json:"shopping_list_id"`
	IngredientName string  `json:"ingredient_name"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	Checked        bool    `json:"checked"`
	AddedManually  bool    `json:"added_manually"`
	SortOrder      int     `json:"sort_order"`
}

// TemplateItem is the shape persisted inside a template's items JSON.
// Checked is never stored as true; replaying a template always starts over.
type TemplateItem struct {
	IngredientName string  `json:"ingredient_name"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	AddedManually  bool    `json:"added_manually"`
}

type ShoppingTemplate struct {
	ID          int64          `json:"id"`
	HouseholdID int64          `json:"household_id"`
	Name        string         `json:"name"`
	Items       []TemplateItem `json:"items"`
	CreatedBy   *int64         `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
}
