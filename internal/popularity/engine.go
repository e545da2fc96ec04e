// Package popularity recomputes menu item scores from the vote ledger and
// applies the household's visibility threshold.
package popularity

import (
	"fmt"

	"github.com/bromleigh/mealboard/internal/model"
	"github.com/bromleigh/mealboard/internal/store"
)

type Engine struct {
	plans      *store.PlanStore
	votes      *store.VoteStore
	menu       *store.MenuStore
	households *store.HouseholdStore
}

func NewEngine(plans *store.PlanStore, votes *store.VoteStore, menu *store.MenuStore, households *store.HouseholdStore) *Engine {
	return &Engine{plans: plans, votes: votes, menu: menu, households: households}
}

// Recompute derives a menu item's popularity score by summing votes over
// every plan the item has ever appeared in, then sets the hidden flag from
// the household threshold. The derived flag replaces any manual hide or
// restore applied since the last recompute. It returns the updated item and
// whether the hidden flag flipped.
func (e *Engine) Recompute(menuItemID int64) (*model.MenuItem, bool, error) {
	item, err := e.menu.GetItemByID(menuItemID)
	if err != nil {
		return nil, false, err
	}
	if item == nil {
		return nil, false, fmt.Errorf("menu item %d not found", menuItemID)
	}

	household, err := e.households.GetByID(item.HouseholdID)
	if err != nil {
		return nil, false, err
	}
	if household == nil {
		return nil, false, fmt.Errorf("household %d not found", item.HouseholdID)
	}

	plans, err := e.plans.ListByMenuItem(menuItemID)
	if err != nil {
		return nil, false, err
	}

	score := 0
	for _, plan := range plans {
		planScore, err := e.votes.ScoreOf(plan.ID)
		if err != nil {
			return nil, false, err
		}
		score += planScore
	}

	hidden := score < household.PopularityThreshold
	if err := e.menu.SetPopularity(menuItemID, score, hidden); err != nil {
		return nil, false, err
	}

	flipped := hidden != item.IsHidden
	updated, err := e.menu.GetItemByID(menuItemID)
	if err != nil {
		return nil, false, err
	}
	return updated, flipped, nil
}

// RecomputeHousehold refreshes every menu item in the household. Used after
// the threshold changes, since the stored hidden flags are derived from it.
func (e *Engine) RecomputeHousehold(householdID int64) error {
	items, err := e.menu.ListItems(householdID, true)
	if err != nil {
		return err
	}
	for _, item := range items {
		if _, _, err := e.Recompute(item.ID); err != nil {
			return fmt.Errorf("recompute item %d: %w", item.ID, err)
		}
	}
	return nil
}
