package model

import "time"

type MenuItem struct {
	ID              int64     `json:"id"`
	HouseholdID     int64     `json:"household_id"`
	Name            string    `json:"name"`
	Genre           string    `json:"genre"`
	PopularityScore int       `json:"popularity_score"`
	IsHidden        bool      `json:"is_hidden"`
	CreatedBy       *int64    `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
}

type Side struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	Name        string    `json:"name"`
	IsHidden    bool      `json:"is_hidden"`
	CreatedBy   *int64    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// EntreeSide links an entree to a side that may be scheduled alongside it.
type EntreeSide struct {
	ID        int64     `json:"id"`
	EntreeID  int64     `json:"entree_id"`
	SideID    int64     `json:"side_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Genres recognized by the menu generator's weighting. Free-form genres are
// allowed on items; these are the ones the AI preferences can weight.
var Genres = []string{"Italian", "Mexican", "Asian", "American", "Other"}
