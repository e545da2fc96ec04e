package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/bromleigh/mealboard/internal/model"
)

type PrefsStore struct {
	db *sql.DB
}

func NewPrefsStore(db *sql.DB) *PrefsStore {
	return &PrefsStore{db: db}
}

// Get returns the household's generation preferences, or defaults if none
// have been saved yet. Corrupt stored genre weights degrade to an empty map.
func (s *PrefsStore) Get(householdID int64) (*model.AIPreferences, error) {
	row := s.db.QueryRow(
		`SELECT id, household_id, dietary_instructions, genre_weights, updated_at
		 FROM ai_preferences WHERE household_id = ?`,
		householdID,
	)

	var p model.AIPreferences
	var weightsJSON string
	err := row.Scan(&p.ID, &p.HouseholdID, &p.DietaryInstructions, &weightsJSON, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return &model.AIPreferences{
			HouseholdID:  householdID,
			GenreWeights: map[string]int{},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}

	if err := json.Unmarshal([]byte(weightsJSON), &p.GenreWeights); err != nil || p.GenreWeights == nil {
		p.GenreWeights = map[string]int{}
	}
	return &p, nil
}

// Save upserts the household's generation preferences.
func (s *PrefsStore) Save(householdID int64, dietaryInstructions string, genreWeights map[string]int) (*model.AIPreferences, error) {
	if genreWeights == nil {
		genreWeights = map[string]int{}
	}
	weightsJSON, err := json.Marshal(genreWeights)
	if err != nil {
		return nil, fmt.Errorf("marshal genre weights: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO ai_preferences (household_id, dietary_instructions, genre_weights, updated_at)
		 VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(household_id) DO UPDATE SET
		   dietary_instructions = excluded.dietary_instructions,
		   genre_weights = excluded.genre_weights,
		   updated_at = CURRENT_TIMESTAMP`,
		householdID, dietaryInstructions, string(weightsJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("save preferences: %w", err)
	}
	return s.Get(householdID)
}
