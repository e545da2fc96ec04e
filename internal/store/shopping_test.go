package store

import (
	"database/sql"
	"testing"

	"github.com/bromleigh/mealboard/internal/database"
	"github.com/bromleigh/mealboard/internal/model"
)

func setupShoppingTestDB(t *testing.T) (*ShoppingStore, *sql.DB, int64) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hs := NewHouseholdStore(db)
	h, err := hs.Create("Test", "Dana", "dana@example.com")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	return NewShoppingStore(db), db, h.ID
}

func TestShoppingCreateItemsAssignsSortOrder(t *testing.T) {
	ss, _, hid := setupShoppingTestDB(t)

	list, err := ss.CreateList(hid, "2024-03-04", "2024-03-10")
	if err != nil {
		t.Fatalf("create list: %v", err)
	}

	err = ss.CreateItems(list.ID, []ItemInput{
		{IngredientName: "Chicken", Quantity: 2, Unit: "lbs"},
		{IngredientName: "Rice", Quantity: 1, Unit: "cup"},
	})
	if err != nil {
		t.Fatalf("create items: %v", err)
	}
	// A second batch continues after the first.
	err = ss.CreateItems(list.ID, []ItemInput{
		{IngredientName: "Garlic", Quantity: 3, Unit: "cloves"},
	})
	if err != nil {
		t.Fatalf("create second batch: %v", err)
	}

	items, err := ss.ListItems(list.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}
	for i, item := range items {
		if item.SortOrder != i {
			t.Errorf("item %q sort_order = %d, want %d", item.IngredientName, item.SortOrder, i)
		}
		if item.Checked {
			t.Errorf("item %q starts checked", item.IngredientName)
		}
	}
}

func TestShoppingManualAddAppends(t *testing.T) {
	ss, _, hid := setupShoppingTestDB(t)

	list, err := ss.CreateList(hid, "2024-03-04", "2024-03-10")
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	err = ss.CreateItems(list.ID, []ItemInput{
		{IngredientName: "Chicken", Quantity: 2, Unit: "lbs"},
		{IngredientName: "Rice", Quantity: 1, Unit: "cup"},
	})
	if err != nil {
		t.Fatalf("create items: %v", err)
	}

	err = ss.CreateItems(list.ID, []ItemInput{
		{IngredientName: "Paper towels", Quantity: 1, Unit: "", AddedManually: true},
	})
	if err != nil {
		t.Fatalf("manual add: %v", err)
	}

	items, err := ss.ListItems(list.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	last := items[len(items)-1]
	if last.IngredientName != "Paper towels" {
		t.Fatalf("last item = %q, want manual item", last.IngredientName)
	}
	if !last.AddedManually {
		t.Error("manual item not flagged added_manually")
	}
	if last.SortOrder != 2 {
		t.Errorf("manual item sort_order = %d, want 2", last.SortOrder)
	}
}

func TestShoppingToggleChecked(t *testing.T) {
	ss, _, hid := setupShoppingTestDB(t)

	list, err := ss.CreateList(hid, "2024-03-04", "2024-03-10")
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	if err := ss.CreateItems(list.ID, []ItemInput{{IngredientName: "Milk", Quantity: 1, Unit: "gal"}}); err != nil {
		t.Fatalf("create item: %v", err)
	}
	items, _ := ss.ListItems(list.ID)

	item, err := ss.ToggleChecked(items[0].ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !item.Checked {
		t.Error("expected checked after first toggle")
	}
	item, err = ss.ToggleChecked(items[0].ID)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if item.Checked {
		t.Error("expected unchecked after second toggle")
	}
}

func TestShoppingReorderSkipsChecked(t *testing.T) {
	ss, _, hid := setupShoppingTestDB(t)

	list, err := ss.CreateList(hid, "2024-03-04", "2024-03-10")
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	err = ss.CreateItems(list.ID, []ItemInput{
		{IngredientName: "A", Quantity: 1},
		{IngredientName: "B", Quantity: 1},
		{IngredientName: "C", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("create items: %v", err)
	}
	items, _ := ss.ListItems(list.ID)
	a, b, c := items[0], items[1], items[2]

	if _, err := ss.ToggleChecked(b.ID); err != nil {
		t.Fatalf("check b: %v", err)
	}

	// Reverse the unchecked items; the checked id in the payload is ignored.
	if err := ss.ReorderItems(list.ID, []int64{c.ID, b.ID, a.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	gotC, _ := ss.GetItemByID(c.ID)
	gotA, _ := ss.GetItemByID(a.ID)
	gotB, _ := ss.GetItemByID(b.ID)
	if gotC.SortOrder != 0 || gotA.SortOrder != 1 {
		t.Errorf("unchecked order = C:%d A:%d, want C:0 A:1", gotC.SortOrder, gotA.SortOrder)
	}
	if gotB.SortOrder != b.SortOrder {
		t.Errorf("checked item sort_order changed: %d -> %d", b.SortOrder, gotB.SortOrder)
	}
}

func TestShoppingTemplateRoundTrip(t *testing.T) {
	ss, _, hid := setupShoppingTestDB(t)

	items := []model.TemplateItem{
		{IngredientName: "Chicken", Quantity: 2, Unit: "lbs"},
		{IngredientName: "Paper towels", Quantity: 1, Unit: "", AddedManually: true},
	}
	tmpl, err := ss.CreateTemplate(hid, "Weekly staples", items, nil)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	if len(tmpl.Items) != 2 {
		t.Fatalf("template items = %d, want 2", len(tmpl.Items))
	}
	if tmpl.Items[1].AddedManually != true {
		t.Error("manual flag lost in round trip")
	}
}

func TestShoppingTemplateCorruptItemsDegrade(t *testing.T) {
	ss, db, hid := setupShoppingTestDB(t)

	_, err := db.Exec(
		`INSERT INTO shopping_templates (household_id, name, items) VALUES (?, 'Broken', 'not json')`,
		hid,
	)
	if err != nil {
		t.Fatalf("insert corrupt template: %v", err)
	}

	templates, err := ss.ListTemplates(hid)
	if err != nil {
		t.Fatalf("list templates: %v", err)
	}
	if len(templates) != 1 {
		t.Fatalf("templates = %d, want 1", len(templates))
	}
	if len(templates[0].Items) != 0 {
		t.Errorf("corrupt template items = %d, want 0", len(templates[0].Items))
	}
}
