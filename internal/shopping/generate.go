package shopping

import (
	"fmt"

	"github.com/bromleigh/mealboard/internal/dates"
	"github.com/bromleigh/mealboard/internal/model"
	"github.com/bromleigh/mealboard/internal/store"
)

type Generator struct {
	plans   *store.PlanStore
	recipes *store.RecipeStore
	menu    *store.MenuStore
	lists   *store.ShoppingStore
}

func NewGenerator(plans *store.PlanStore, recipes *store.RecipeStore, menu *store.MenuStore, lists *store.ShoppingStore) *Generator {
	return &Generator{plans: plans, recipes: recipes, menu: menu, lists: lists}
}

// GenerateForWeek builds a shopping list covering weekStart through the six
// days after it. Every scheduled entree must have a recipe; if any is
// missing, generation aborts with MissingRecipesError and nothing is
// persisted. An entree planned twice contributes its ingredients twice.
// Sides are appended as their own count lines and never merge with recipe
// ingredients.
func (g *Generator) GenerateForWeek(householdID int64, weekStart string) (*model.ShoppingList, []model.ShoppingItem, error) {
	if !dates.Valid(weekStart) {
		return nil, nil, fmt.Errorf("invalid week start %q", weekStart)
	}
	start, end, err := dates.WeekRange(weekStart)
	if err != nil {
		return nil, nil, fmt.Errorf("week range: %w", err)
	}

	plans, err := g.plans.ListByDateRange(householdID, start, end)
	if err != nil {
		return nil, nil, err
	}
	if len(plans) == 0 {
		return nil, nil, ErrNoMealsScheduled
	}

	var raw []Ingredient
	var missing []int64
	var missingNames []string
	missingSeen := make(map[int64]bool)

	sideCounts := make(map[int64]int)
	var sideOrder []int64

	for _, plan := range plans {
		recipe, err := g.recipes.GetByMenuItem(plan.MenuItemID)
		if err != nil {
			return nil, nil, err
		}
		if recipe == nil {
			if !missingSeen[plan.MenuItemID] {
				missingSeen[plan.MenuItemID] = true
				missing = append(missing, plan.MenuItemID)
				item, err := g.menu.GetItemByID(plan.MenuItemID)
				if err != nil {
					return nil, nil, err
				}
				name := fmt.Sprintf("menu item %d", plan.MenuItemID)
				if item != nil {
					name = item.Name
				}
				missingNames = append(missingNames, name)
			}
			continue
		}

		ingredients, err := g.recipes.ListIngredients(recipe.ID)
		if err != nil {
			return nil, nil, err
		}
		for _, ing := range ingredients {
			raw = append(raw, Ingredient{Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit})
		}

		if plan.SideID != nil {
			if sideCounts[*plan.SideID] == 0 {
				sideOrder = append(sideOrder, *plan.SideID)
			}
			sideCounts[*plan.SideID]++
		}
	}

	if len(missing) > 0 {
		return nil, nil, &MissingRecipesError{MenuItemIDs: missing, Names: missingNames}
	}

	lines := Aggregate(raw)
	if len(lines) == 0 && len(sideOrder) == 0 {
		return nil, nil, ErrNoIngredients
	}

	inputs := make([]store.ItemInput, 0, len(lines)+len(sideOrder))
	for _, line := range lines {
		inputs = append(inputs, store.ItemInput{
			IngredientName: line.Name,
			Quantity:       line.Quantity,
			Unit:           line.Unit,
		})
	}
	for _, sideID := range sideOrder {
		side, err := g.menu.GetSideByID(sideID)
		if err != nil {
			return nil, nil, err
		}
		if side == nil {
			continue
		}
		inputs = append(inputs, store.ItemInput{
			IngredientName: fmt.Sprintf("%d %s", sideCounts[sideID], side.Name),
		})
	}

	list, err := g.lists.CreateList(householdID, start, end)
	if err != nil {
		return nil, nil, err
	}
	if err := g.lists.CreateItems(list.ID, inputs); err != nil {
		return nil, nil, err
	}

	items, err := g.lists.ListItems(list.ID)
	if err != nil {
		return nil, nil, err
	}
	return list, items, nil
}

// ApplyTemplate appends a template's saved lines to an existing list. All
// lines start unchecked regardless of any prior state; applying the same
// template twice appends a second copy.
func (g *Generator) ApplyTemplate(listID int64, tmpl *model.ShoppingTemplate) error {
	inputs := make([]store.ItemInput, 0, len(tmpl.Items))
	for _, item := range tmpl.Items {
		inputs = append(inputs, store.ItemInput{
			IngredientName: item.IngredientName,
			Quantity:       item.Quantity,
			Unit:           item.Unit,
			AddedManually:  item.AddedManually,
		})
	}
	return g.lists.CreateItems(listID, inputs)
}
