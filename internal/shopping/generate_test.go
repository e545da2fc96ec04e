package shopping

import (
	"errors"
	"strings"
	"testing"

	"github.com/bromleigh/mealboard/internal/database"
	"github.com/bromleigh/mealboard/internal/model"
	"github.com/bromleigh/mealboard/internal/store"
)

type genFixture struct {
	gen         *Generator
	plans       *store.PlanStore
	recipes     *store.RecipeStore
	menu        *store.MenuStore
	lists       *store.ShoppingStore
	householdID int64
}

func setupGenerator(t *testing.T) *genFixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hs := store.NewHouseholdStore(db)
	h, err := hs.Create("Test", "Dana", "dana@example.com")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	ps := store.NewPlanStore(db)
	rs := store.NewRecipeStore(db)
	ms := store.NewMenuStore(db)
	ss := store.NewShoppingStore(db)

	return &genFixture{
		gen:         NewGenerator(ps, rs, ms, ss),
		plans:       ps,
		recipes:     rs,
		menu:        ms,
		lists:       ss,
		householdID: h.ID,
	}
}

func (f *genFixture) entree(t *testing.T, name string, ingredients ...store.IngredientInput) *model.MenuItem {
	t.Helper()
	item, err := f.menu.CreateItem(f.householdID, name, "Other", nil)
	if err != nil {
		t.Fatalf("create entree %s: %v", name, err)
	}
	if ingredients != nil {
		if _, err := f.recipes.Create(item.ID, "", 0, 0, 4, ingredients); err != nil {
			t.Fatalf("create recipe for %s: %v", name, err)
		}
	}
	return item
}

func (f *genFixture) schedule(t *testing.T, date string, itemID int64, sideID *int64) {
	t.Helper()
	if _, err := f.plans.Create(f.householdID, date, model.MealDinner, itemID, sideID, nil); err != nil {
		t.Fatalf("schedule %s: %v", date, err)
	}
}

func TestGenerateRejectsInvalidWeekStart(t *testing.T) {
	f := setupGenerator(t)

	for _, start := range []string{"", "03-04-2024", "2024-13-01", "not a date"} {
		list, items, err := f.gen.GenerateForWeek(f.householdID, start)
		if err == nil {
			t.Errorf("week start %q: expected error", start)
		}
		if list != nil || items != nil {
			t.Errorf("week start %q: nothing should be created", start)
		}
	}

	lists, err := f.lists.ListLists(f.householdID)
	if err != nil {
		t.Fatalf("list lists: %v", err)
	}
	if len(lists) != 0 {
		t.Errorf("lists = %d, want 0", len(lists))
	}
}

func TestGenerateAggregatesWeek(t *testing.T) {
	f := setupGenerator(t)

	curry := f.entree(t, "Curry",
		store.IngredientInput{Name: "Chicken", Quantity: 1, Unit: "lbs"},
		store.IngredientInput{Name: "Rice", Quantity: 1, Unit: "cup"},
	)
	stirFry := f.entree(t, "Stir Fry",
		store.IngredientInput{Name: "chicken", Quantity: 2, Unit: "lbs"},
		store.IngredientInput{Name: "Broccoli", Quantity: 1, Unit: "head"},
	)

	f.schedule(t, "2024-03-04", curry.ID, nil)
	f.schedule(t, "2024-03-06", stirFry.ID, nil)

	list, items, err := f.gen.GenerateForWeek(f.householdID, "2024-03-04")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if list.DateRangeStart != "2024-03-04" || list.DateRangeEnd != "2024-03-10" {
		t.Errorf("range = %s..%s, want 2024-03-04..2024-03-10", list.DateRangeStart, list.DateRangeEnd)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	if items[0].IngredientName != "Chicken" || items[0].Quantity != 3 {
		t.Errorf("first line = %q %v, want Chicken 3", items[0].IngredientName, items[0].Quantity)
	}
}

func TestGenerateRepeatedEntreeCountsTwice(t *testing.T) {
	f := setupGenerator(t)

	curry := f.entree(t, "Curry", store.IngredientInput{Name: "Chicken", Quantity: 1, Unit: "lbs"})
	f.schedule(t, "2024-03-04", curry.ID, nil)
	f.schedule(t, "2024-03-07", curry.ID, nil)

	_, items, err := f.gen.GenerateForWeek(f.householdID, "2024-03-04")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 2 {
		t.Fatalf("items = %+v, want one Chicken line at 2", items)
	}
}

func TestGenerateSidesAsCountLines(t *testing.T) {
	f := setupGenerator(t)

	curry := f.entree(t, "Curry", store.IngredientInput{Name: "Rice", Quantity: 1, Unit: "cup"})
	side, err := f.menu.CreateSide(f.householdID, "Garlic Bread", nil)
	if err != nil {
		t.Fatalf("create side: %v", err)
	}

	f.schedule(t, "2024-03-04", curry.ID, &side.ID)
	f.schedule(t, "2024-03-06", curry.ID, &side.ID)

	_, items, err := f.gen.GenerateForWeek(f.householdID, "2024-03-04")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	sideLine := items[1]
	if sideLine.IngredientName != "2 Garlic Bread" {
		t.Errorf("side line = %q, want %q", sideLine.IngredientName, "2 Garlic Bread")
	}
	if sideLine.Quantity != 0 || sideLine.Unit != "" {
		t.Errorf("side line qty/unit = %v/%q, want 0/empty", sideLine.Quantity, sideLine.Unit)
	}
}

func TestGenerateMissingRecipeAbortsWithoutWriting(t *testing.T) {
	f := setupGenerator(t)

	curry := f.entree(t, "Curry", store.IngredientInput{Name: "Rice", Quantity: 1, Unit: "cup"})
	bare := f.entree(t, "Mystery Meal") // no recipe

	f.schedule(t, "2024-03-04", curry.ID, nil)
	f.schedule(t, "2024-03-05", bare.ID, nil)
	f.schedule(t, "2024-03-06", bare.ID, nil)

	_, _, err := f.gen.GenerateForWeek(f.householdID, "2024-03-04")
	var missing *MissingRecipesError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want MissingRecipesError", err)
	}
	if len(missing.MenuItemIDs) != 1 || missing.MenuItemIDs[0] != bare.ID {
		t.Errorf("missing ids = %v, want [%d]", missing.MenuItemIDs, bare.ID)
	}
	if len(missing.Names) != 1 || missing.Names[0] != "Mystery Meal" {
		t.Errorf("missing names = %v, want [Mystery Meal]", missing.Names)
	}

	lists, err := f.lists.ListLists(f.householdID)
	if err != nil {
		t.Fatalf("list lists: %v", err)
	}
	if len(lists) != 0 {
		t.Errorf("lists persisted on abort = %d, want 0", len(lists))
	}
}

func TestGenerateEmptyWeek(t *testing.T) {
	f := setupGenerator(t)

	_, _, err := f.gen.GenerateForWeek(f.householdID, "2024-03-04")
	if err != ErrNoMealsScheduled {
		t.Errorf("err = %v, want ErrNoMealsScheduled", err)
	}
}

func TestGenerateWindowExcludesDaySeven(t *testing.T) {
	f := setupGenerator(t)

	curry := f.entree(t, "Curry", store.IngredientInput{Name: "Rice", Quantity: 1, Unit: "cup"})
	f.schedule(t, "2024-03-11", curry.ID, nil) // day 7, next week

	_, _, err := f.gen.GenerateForWeek(f.householdID, "2024-03-04")
	if err != ErrNoMealsScheduled {
		t.Errorf("err = %v, want ErrNoMealsScheduled for out-of-window plan", err)
	}
}

func TestApplyTemplateTwiceAppendsTwice(t *testing.T) {
	f := setupGenerator(t)

	list, err := f.lists.CreateList(f.householdID, "2024-03-04", "2024-03-10")
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	tmpl, err := f.lists.CreateTemplate(f.householdID, "Staples", []model.TemplateItem{
		{IngredientName: "Milk", Quantity: 1, Unit: "gal"},
	}, nil)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}

	if err := f.gen.ApplyTemplate(list.ID, tmpl); err != nil {
		t.Fatalf("apply template: %v", err)
	}
	if err := f.gen.ApplyTemplate(list.ID, tmpl); err != nil {
		t.Fatalf("apply template again: %v", err)
	}

	items, err := f.lists.ListItems(list.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want duplicate lines, not merged", len(items))
	}
}

func TestExportSectionsCheckedItems(t *testing.T) {
	list := &model.ShoppingList{DateRangeStart: "2024-03-04", DateRangeEnd: "2024-03-10"}
	items := []model.ShoppingItem{
		{IngredientName: "Chicken", Quantity: 3, Unit: "lbs"},
		{IngredientName: "Milk", Quantity: 1, Unit: "gal", Checked: true},
		{IngredientName: "2 Garlic Bread"},
	}

	out := Export(list, items)
	if !strings.Contains(out, "[ ] 3 lbs Chicken") {
		t.Errorf("missing unchecked line in:\n%s", out)
	}
	if !strings.Contains(out, "[x] 1 gal Milk") {
		t.Errorf("missing purchased line in:\n%s", out)
	}
	if !strings.Contains(out, "[ ] 2 Garlic Bread") {
		t.Errorf("side line should render without quantity in:\n%s", out)
	}
	if strings.Index(out, "To Buy:") > strings.Index(out, "Purchased:") {
		t.Error("purchased section before to-buy section")
	}
}
