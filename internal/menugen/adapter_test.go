package menugen

import (
	"context"
	"errors"
	"testing"

	"github.com/bromleigh/mealboard/internal/database"
	"github.com/bromleigh/mealboard/internal/model"
	"github.com/bromleigh/mealboard/internal/store"
)

type fakeClient struct {
	assignments []Assignment
	err         error
	lastReq     *Request
	calls       int
}

func (f *fakeClient) Generate(_ context.Context, req Request) ([]Assignment, error) {
	f.calls++
	f.lastReq = &req
	if f.err != nil {
		return nil, f.err
	}
	return f.assignments, nil
}

type adapterFixture struct {
	client      *fakeClient
	adapter     *Adapter
	plans       *store.PlanStore
	menu        *store.MenuStore
	householdID int64
}

func setupAdapter(t *testing.T) *adapterFixture {
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

	client := &fakeClient{}
	plans := store.NewPlanStore(db)
	menu := store.NewMenuStore(db)
	prefs := store.NewPrefsStore(db)

	return &adapterFixture{
		client:      client,
		adapter:     NewAdapter(client, plans, menu, prefs),
		plans:       plans,
		menu:        menu,
		householdID: h.ID,
	}
}

func (f *adapterFixture) entree(t *testing.T, name string) *model.MenuItem {
	t.Helper()
	item, err := f.menu.CreateItem(f.householdID, name, "Other", nil)
	if err != nil {
		t.Fatalf("create entree %s: %v", name, err)
	}
	return item
}

func TestGenerateCatalogCarriesScores(t *testing.T) {
	f := setupAdapter(t)
	item := f.entree(t, "Curry")
	if err := f.menu.SetPopularity(item.ID, 7, false); err != nil {
		t.Fatalf("set popularity: %v", err)
	}

	slots := []Slot{{Date: "2024-03-04", MealType: model.MealDinner}}
	f.client.assignments = []Assignment{
		{Date: "2024-03-04", MealType: model.MealDinner, MenuItemName: "Curry"},
	}

	if _, err := f.adapter.Generate(context.Background(), f.householdID, slots, false); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if f.client.lastReq == nil {
		t.Fatal("service was never called")
	}
	if len(f.client.lastReq.Catalog) != 1 {
		t.Fatalf("catalog = %d entries, want 1", len(f.client.lastReq.Catalog))
	}
	got := f.client.lastReq.Catalog[0]
	if got.ID != item.ID {
		t.Errorf("catalog id = %d, want %d", got.ID, item.ID)
	}
	if got.PopularityScore != 7 {
		t.Errorf("catalog popularity score = %d, want 7", got.PopularityScore)
	}
}

func TestGeneratePersistsValidAssignments(t *testing.T) {
	f := setupAdapter(t)
	f.entree(t, "Curry")
	f.entree(t, "Tacos")

	slots := []Slot{
		{Date: "2024-03-04", MealType: model.MealDinner},
		{Date: "2024-03-05", MealType: model.MealDinner},
	}
	f.client.assignments = []Assignment{
		{Date: "2024-03-04", MealType: model.MealDinner, MenuItemName: "curry"},
		{Date: "2024-03-05", MealType: model.MealDinner, MenuItemName: "Tacos"},
	}

	created, err := f.adapter.Generate(context.Background(), f.householdID, slots, false)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created = %d, want 2", len(created))
	}

	plan, err := f.plans.GetBySlot(f.householdID, "2024-03-04", model.MealDinner)
	if err != nil {
		t.Fatalf("get slot: %v", err)
	}
	if plan == nil {
		t.Fatal("expected plan in first slot")
	}
}

func TestGenerateDropsInvalidAssignments(t *testing.T) {
	f := setupAdapter(t)
	f.entree(t, "Curry")

	slots := []Slot{{Date: "2024-03-04", MealType: model.MealDinner}}
	f.client.assignments = []Assignment{
		{Date: "2024-03-04", MealType: model.MealDinner, MenuItemName: "Sushi"},      // not in catalog
		{Date: "2024-03-09", MealType: model.MealDinner, MenuItemName: "Curry"},      // slot not requested
		{Date: "2024-03-04", MealType: model.MealBreakfast, MenuItemName: "Curry"},   // meal not requested
	}

	_, err := f.adapter.Generate(context.Background(), f.householdID, slots, false)
	if err != ErrNoValidPlans {
		t.Errorf("err = %v, want ErrNoValidPlans", err)
	}
}

func TestGenerateExcludesHiddenFromCatalog(t *testing.T) {
	f := setupAdapter(t)
	f.entree(t, "Curry")
	hidden := f.entree(t, "Meatloaf")
	if _, err := f.menu.SetHidden(hidden.ID, true); err != nil {
		t.Fatalf("hide item: %v", err)
	}

	slots := []Slot{{Date: "2024-03-04", MealType: model.MealDinner}}
	f.client.assignments = []Assignment{
		{Date: "2024-03-04", MealType: model.MealDinner, MenuItemName: "Curry"},
	}

	if _, err := f.adapter.Generate(context.Background(), f.householdID, slots, false); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(f.client.lastReq.Catalog) != 1 || f.client.lastReq.Catalog[0].Name != "Curry" {
		t.Errorf("catalog = %+v, want only Curry", f.client.lastReq.Catalog)
	}
}

func TestGenerateExclusionWindow(t *testing.T) {
	f := setupAdapter(t)
	recent := f.entree(t, "Curry")
	old := f.entree(t, "Tacos")
	f.entree(t, "Stew")

	// Planned 1 day before the earliest selection: inside the window.
	if _, err := f.plans.Create(f.householdID, "2024-03-03", model.MealDinner, recent.ID, nil, nil); err != nil {
		t.Fatalf("create recent plan: %v", err)
	}
	// Planned 15 days before: outside the window.
	if _, err := f.plans.Create(f.householdID, "2024-02-18", model.MealDinner, old.ID, nil, nil); err != nil {
		t.Fatalf("create old plan: %v", err)
	}

	slots := []Slot{{Date: "2024-03-04", MealType: model.MealDinner}}
	f.client.assignments = []Assignment{
		{Date: "2024-03-04", MealType: model.MealDinner, MenuItemName: "Stew"},
	}

	if _, err := f.adapter.Generate(context.Background(), f.householdID, slots, false); err != nil {
		t.Fatalf("generate: %v", err)
	}

	exclude := f.client.lastReq.ExcludeNames
	if len(exclude) != 1 || exclude[0] != "Curry" {
		t.Errorf("exclude = %v, want [Curry]", exclude)
	}
}

func TestGenerateOccupiedRequiresOverwrite(t *testing.T) {
	f := setupAdapter(t)
	curry := f.entree(t, "Curry")
	f.entree(t, "Tacos")

	if _, err := f.plans.Create(f.householdID, "2024-03-04", model.MealDinner, curry.ID, nil, nil); err != nil {
		t.Fatalf("occupy slot: %v", err)
	}

	slots := []Slot{
		{Date: "2024-03-04", MealType: model.MealDinner},
		{Date: "2024-03-05", MealType: model.MealDinner},
	}

	_, err := f.adapter.Generate(context.Background(), f.householdID, slots, false)
	var overwrite *OverwriteRequiredError
	if !errors.As(err, &overwrite) {
		t.Fatalf("err = %v, want OverwriteRequiredError", err)
	}
	if len(overwrite.Occupied) != 1 || overwrite.Occupied[0].Date != "2024-03-04" {
		t.Errorf("occupied = %+v, want the 2024-03-04 dinner slot", overwrite.Occupied)
	}
	if f.client.calls != 0 {
		t.Errorf("service called %d times before overwrite consent, want 0", f.client.calls)
	}
}

func TestGenerateOverwriteReplacesOccupied(t *testing.T) {
	f := setupAdapter(t)
	curry := f.entree(t, "Curry")
	tacos := f.entree(t, "Tacos")

	if _, err := f.plans.Create(f.householdID, "2024-03-04", model.MealDinner, curry.ID, nil, nil); err != nil {
		t.Fatalf("occupy slot: %v", err)
	}

	slots := []Slot{{Date: "2024-03-04", MealType: model.MealDinner}}
	f.client.assignments = []Assignment{
		{Date: "2024-03-04", MealType: model.MealDinner, MenuItemName: "Tacos"},
	}

	created, err := f.adapter.Generate(context.Background(), f.householdID, slots, true)
	if err != nil {
		t.Fatalf("generate with overwrite: %v", err)
	}
	if len(created) != 1 || created[0].MenuItemID != tacos.ID {
		t.Fatalf("created = %+v, want one plan for Tacos", created)
	}

	plan, err := f.plans.GetBySlot(f.householdID, "2024-03-04", model.MealDinner)
	if err != nil {
		t.Fatalf("get slot: %v", err)
	}
	if plan.MenuItemID != tacos.ID {
		t.Errorf("slot holds item %d, want %d", plan.MenuItemID, tacos.ID)
	}
}

func TestGenerateServiceFailureWritesNothing(t *testing.T) {
	f := setupAdapter(t)
	f.entree(t, "Curry")
	f.client.err = errors.New("connection refused")

	slots := []Slot{{Date: "2024-03-04", MealType: model.MealDinner}}
	_, err := f.adapter.Generate(context.Background(), f.householdID, slots, false)
	if !errors.Is(err, ErrGenerationUnavailable) {
		t.Fatalf("err = %v, want ErrGenerationUnavailable", err)
	}

	plan, err := f.plans.GetBySlot(f.householdID, "2024-03-04", model.MealDinner)
	if err != nil {
		t.Fatalf("get slot: %v", err)
	}
	if plan != nil {
		t.Error("plan written despite service failure")
	}
}
