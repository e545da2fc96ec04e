package model

import "time"

// AIPreferences holds a household's standing instructions for menu
// generation. Genre weights are stored as JSON at the persistence boundary;
// a corrupt stored value degrades to an empty map rather than an error.
type AIPreferences struct {
	ID                  int64          `json:"id"`
	HouseholdID         int64          `json:"household_id"`
	DietaryInstructions string         `json:"dietary_instructions"`
	GenreWeights        map[string]int `json:"genre_weights"`
	UpdatedAt           time.Time      `json:"updated_at"`
}
