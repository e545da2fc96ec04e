package menugen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bromleigh/mealboard/internal/dates"
	"github.com/bromleigh/mealboard/internal/model"
	"github.com/bromleigh/mealboard/internal/store"
)

var (
	// ErrGenerationUnavailable wraps any failure of the external service.
	// Nothing has been written when it is returned.
	ErrGenerationUnavailable = errors.New("menu generation unavailable")

	// ErrNoValidPlans means every proposed assignment was rejected.
	ErrNoValidPlans = errors.New("generation produced no valid plans")
)

// OverwriteRequiredError is returned when some requested slots already hold
// plans and the caller has not granted overwrite. The caller can confirm
// and retry with overwrite set.
type OverwriteRequiredError struct {
	Occupied []Slot
}

func (e *OverwriteRequiredError) Error() string {
	return fmt.Sprintf("%d selected slots already have meals planned", len(e.Occupied))
}

// exclusionWindowDays is how far back recently planned meals are excluded
// from generation.
const exclusionWindowDays = 14

// Adapter validates slot selections, assembles the generation request from
// stored state, and persists the service's valid assignments.
type Adapter struct {
	client Client
	plans  *store.PlanStore
	menu   *store.MenuStore
	prefs  *store.PrefsStore
}

func NewAdapter(client Client, plans *store.PlanStore, menu *store.MenuStore, prefs *store.PrefsStore) *Adapter {
	return &Adapter{client: client, plans: plans, menu: menu, prefs: prefs}
}

// Generate fills the selected slots. Occupied slots require the overwrite
// flag; without it the call aborts before the service is contacted.
// Entrees planned in the two weeks before the earliest selected date are
// excluded from the catalog sent to the service. Assignments naming unknown
// or hidden entrees, or slots that were not requested, are dropped.
func (a *Adapter) Generate(ctx context.Context, householdID int64, slots []Slot, overwrite bool) ([]model.MealPlan, error) {
	if len(slots) == 0 {
		return nil, fmt.Errorf("no slots selected")
	}
	for _, slot := range slots {
		if !dates.Valid(slot.Date) {
			return nil, fmt.Errorf("invalid slot date %q", slot.Date)
		}
		if !model.ValidMealType(slot.MealType) {
			return nil, fmt.Errorf("invalid meal type %q", slot.MealType)
		}
	}

	var occupied []Slot
	for _, slot := range slots {
		existing, err := a.plans.GetBySlot(householdID, slot.Date, slot.MealType)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			occupied = append(occupied, slot)
		}
	}
	if len(occupied) > 0 && !overwrite {
		return nil, &OverwriteRequiredError{Occupied: occupied}
	}

	items, err := a.menu.ListItems(householdID, false)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNoValidPlans
	}

	catalog := make([]CatalogItem, 0, len(items))
	byName := make(map[string]*model.MenuItem, len(items))
	for i := range items {
		catalog = append(catalog, CatalogItem{
			ID:              items[i].ID,
			Name:            items[i].Name,
			Genre:           items[i].Genre,
			PopularityScore: items[i].PopularityScore,
		})
		byName[strings.ToLower(items[i].Name)] = &items[i]
	}

	exclude, err := a.recentNames(householdID, slots)
	if err != nil {
		return nil, err
	}

	prefs, err := a.prefs.Get(householdID)
	if err != nil {
		return nil, err
	}

	assignments, err := a.client.Generate(ctx, Request{
		Catalog:             catalog,
		Slots:               slots,
		DietaryInstructions: prefs.DietaryInstructions,
		GenreWeights:        prefs.GenreWeights,
		ExcludeNames:        exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
	}

	requested := make(map[Slot]bool, len(slots))
	for _, slot := range slots {
		requested[slot] = true
	}

	var valid []Assignment
	filled := make(map[Slot]bool)
	for _, asg := range assignments {
		slot := Slot{Date: asg.Date, MealType: asg.MealType}
		if !requested[slot] || filled[slot] {
			continue
		}
		if _, ok := byName[strings.ToLower(asg.MenuItemName)]; !ok {
			continue
		}
		filled[slot] = true
		valid = append(valid, asg)
	}
	if len(valid) == 0 {
		return nil, ErrNoValidPlans
	}

	if overwrite {
		for _, slot := range occupied {
			if err := a.plans.DeleteBySlot(householdID, slot.Date, slot.MealType); err != nil {
				return nil, err
			}
		}
	}

	var created []model.MealPlan
	for _, asg := range valid {
		item := byName[strings.ToLower(asg.MenuItemName)]
		plan, err := a.plans.Create(householdID, asg.Date, asg.MealType, item.ID, nil, nil)
		if err != nil {
			return nil, err
		}
		created = append(created, *plan)
	}
	return created, nil
}

// recentNames collects the names of entrees planned in the two weeks before
// the earliest selected date.
func (a *Adapter) recentNames(householdID int64, slots []Slot) ([]string, error) {
	earliest := slots[0].Date
	for _, slot := range slots[1:] {
		if slot.Date < earliest {
			earliest = slot.Date
		}
	}

	start, err := dates.AddDays(earliest, -exclusionWindowDays)
	if err != nil {
		return nil, fmt.Errorf("exclusion window start: %w", err)
	}
	end, err := dates.AddDays(earliest, -1)
	if err != nil {
		return nil, fmt.Errorf("exclusion window end: %w", err)
	}
	plans, err := a.plans.ListByDateRange(householdID, start, end)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var names []string
	for _, plan := range plans {
		item, err := a.menu.GetItemByID(plan.MenuItemID)
		if err != nil {
			return nil, err
		}
		if item == nil || seen[item.Name] {
			continue
		}
		seen[item.Name] = true
		names = append(names, item.Name)
	}
	return names, nil
}
