package shopping

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMealsScheduled means the requested week has no plans at all.
	ErrNoMealsScheduled = errors.New("no meals scheduled for this week")

	// ErrNoIngredients means the week's meals resolved to zero lines.
	ErrNoIngredients = errors.New("no ingredients found for this week")
)

// MissingRecipesError aborts generation when any scheduled entree has no
// recipe. It carries every offending menu item so the caller can report
// them all at once.
type MissingRecipesError struct {
	MenuItemIDs []int64
	Names       []string
}

func (e *MissingRecipesError) Error() string {
	return fmt.Sprintf("%d scheduled meals have no recipe", len(e.MenuItemIDs))
}
