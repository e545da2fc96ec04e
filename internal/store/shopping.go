package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/bromleigh/mealboard/internal/model"
)

type ShoppingStore struct {
	db *sql.DB
}

func NewShoppingStore(db *sql.DB) *ShoppingStore {
	return &ShoppingStore{db: db}
}

// --- List methods ---

func scanShoppingList(scanner interface{ Scan(...any) error }) (*model.ShoppingList, error) {
	var l model.ShoppingList
	err := scanner.Scan(&l.ID, &l.HouseholdID, &l.DateRangeStart, &l.DateRangeEnd, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

const shoppingListCols = `id, household_id, date_range_start, date_range_end, created_at`

func (s *ShoppingStore) CreateList(householdID int64, start, end string) (*model.ShoppingList, error) {
	result, err := s.db.Exec(
		`INSERT INTO shopping_lists (household_id, date_range_start, date_range_end) VALUES (?, ?, ?)`,
		householdID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("insert shopping list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetListByID(id)
}

func (s *ShoppingStore) GetListByID(id int64) (*model.ShoppingList, error) {
	row := s.db.QueryRow(`SELECT `+shoppingListCols+` FROM shopping_lists WHERE id = ?`, id)
	l, err := scanShoppingList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping list: %w", err)
	}
	return l, nil
}

func (s *ShoppingStore) ListLists(householdID int64) ([]model.ShoppingList, error) {
	rows, err := s.db.Query(
		`SELECT `+shoppingListCols+` FROM shopping_lists WHERE household_id = ? ORDER BY created_at DESC, id DESC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shopping lists: %w", err)
	}
	defer rows.Close()

	var lists []model.ShoppingList
	for rows.Next() {
		l, err := scanShoppingList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping list: %w", err)
		}
		lists = append(lists, *l)
	}
	return lists, rows.Err()
}

func (s *ShoppingStore) DeleteList(id int64) error {
	_, err := s.db.Exec(`DELETE FROM shopping_lists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shopping list: %w", err)
	}
	return nil
}

// --- Item methods ---

func scanShoppingItem(scanner interface{ Scan(...any) error }) (*model.ShoppingItem, error) {
	var item model.ShoppingItem
	var checked, manual int

	err := scanner.Scan(
		&item.ID, &item.ShoppingListID, &item.IngredientName, &item.Quantity,
		&item.Unit, &checked, &manual, &item.SortOrder,
	)
	if err != nil {
		return nil, err
	}

	item.Checked = checked != 0
	item.AddedManually = manual != 0
	return &item, nil
}

const shoppingItemCols = `id, shopping_list_id, ingredient_name, quantity, unit, checked, added_manually, sort_order`

// ItemInput is one line to insert into a shopping list.
type ItemInput struct {
	IngredientName string
	Quantity       float64
	Unit           string
	AddedManually  bool
}

// CreateItems appends lines to a list in one transaction, assigning
// monotonically increasing sort orders after the current maximum. All lines
// start unchecked.
func (s *ShoppingStore) CreateItems(listID int64, items []ItemInput) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRow(
		`SELECT COALESCE(MAX(sort_order), -1) + 1 FROM shopping_items WHERE shopping_list_id = ?`,
		listID,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("next sort order: %w", err)
	}

	for i, item := range items {
		manual := 0
		if item.AddedManually {
			manual = 1
		}
		if _, err := tx.Exec(
			`INSERT INTO shopping_items (shopping_list_id, ingredient_name, quantity, unit, checked, added_manually, sort_order)
			 VALUES (?, ?, ?, ?, 0, ?, ?)`,
			listID, item.IngredientName, item.Quantity, item.Unit, manual, next+i,
		); err != nil {
			return fmt.Errorf("insert shopping item %q: %w", item.IngredientName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *ShoppingStore) GetItemByID(id int64) (*model.ShoppingItem, error) {
	row := s.db.QueryRow(`SELECT `+shoppingItemCols+` FROM shopping_items WHERE id = ?`, id)
	item, err := scanShoppingItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get shopping item: %w", err)
	}
	return item, nil
}

func (s *ShoppingStore) ListItems(listID int64) ([]model.ShoppingItem, error) {
	rows, err := s.db.Query(
		`SELECT `+shoppingItemCols+` FROM shopping_items WHERE shopping_list_id = ? ORDER BY sort_order ASC, id ASC`,
		listID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shopping items: %w", err)
	}
	defer rows.Close()

	var items []model.ShoppingItem
	for rows.Next() {
		item, err := scanShoppingItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shopping item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *ShoppingStore) UpdateItem(id int64, name string, quantity float64, unit string) (*model.ShoppingItem, error) {
	_, err := s.db.Exec(
		`UPDATE shopping_items SET ingredient_name = ?, quantity = ?, unit = ? WHERE id = ?`,
		name, quantity, unit, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update shopping item: %w", err)
	}
	return s.GetItemByID(id)
}

func (s *ShoppingStore) ToggleChecked(id int64) (*model.ShoppingItem, error) {
	item, err := s.GetItemByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	checked := 1
	if item.Checked {
		checked = 0
	}
	if _, err := s.db.Exec(`UPDATE shopping_items SET checked = ? WHERE id = ?`, checked, id); err != nil {
		return nil, fmt.Errorf("toggle checked: %w", err)
	}
	return s.GetItemByID(id)
}

func (s *ShoppingStore) DeleteItem(id int64) error {
	_, err := s.db.Exec(`DELETE FROM shopping_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete shopping item: %w", err)
	}
	return nil
}

// ReorderItems rewrites sort orders for the given item ids, in the order
// given. Checked items are not part of the sortable set and are skipped if
// present; their sort orders are left untouched.
func (s *ShoppingStore) ReorderItems(listID int64, orderedIDs []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	pos := 0
	for _, id := range orderedIDs {
		var checked int
		err := tx.QueryRow(
			`SELECT checked FROM shopping_items WHERE id = ? AND shopping_list_id = ?`,
			id, listID,
		).Scan(&checked)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return fmt.Errorf("check item %d: %w", id, err)
		}
		if checked != 0 {
			continue
		}
		if _, err := tx.Exec(`UPDATE shopping_items SET sort_order = ? WHERE id = ?`, pos, id); err != nil {
			return fmt.Errorf("reorder item %d: %w", id, err)
		}
		pos++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// --- Template methods ---

func scanTemplate(scanner interface{ Scan(...any) error }) (*model.ShoppingTemplate, error) {
	var t model.ShoppingTemplate
	var itemsJSON string
	var createdBy sql.NullInt64

	err := scanner.Scan(&t.ID, &t.HouseholdID, &t.Name, &itemsJSON, &createdBy, &t.CreatedAt)
	if err != nil {
		return nil, err
	}

	t.Items = parseTemplateItems(itemsJSON)
	if createdBy.Valid {
		t.CreatedBy = &createdBy.Int64
	}
	return &t, nil
}

// parseTemplateItems decodes a template's stored JSON. A corrupt value
// degrades to an empty list so one bad template cannot break listing.
func parseTemplateItems(itemsJSON string) []model.TemplateItem {
	var items []model.TemplateItem
	if err := json.Unmarshal([]byte(itemsJSON), &items); err != nil {
		return []model.TemplateItem{}
	}
	if items == nil {
		return []model.TemplateItem{}
	}
	return items
}

const templateCols = `id, household_id, name, items, created_by, created_at`

func (s *ShoppingStore) CreateTemplate(householdID int64, name string, items []model.TemplateItem, createdBy *int64) (*model.ShoppingTemplate, error) {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal template items: %w", err)
	}

	var cBy sql.NullInt64
	if createdBy != nil {
		cBy = sql.NullInt64{Int64: *createdBy, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO shopping_templates (household_id, name, items, created_by) VALUES (?, ?, ?, ?)`,
		householdID, name, string(itemsJSON), cBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetTemplateByID(id)
}

func (s *ShoppingStore) GetTemplateByID(id int64) (*model.ShoppingTemplate, error) {
	row := s.db.QueryRow(`SELECT `+templateCols+` FROM shopping_templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get template: %w", err)
	}
	return t, nil
}

func (s *ShoppingStore) ListTemplates(householdID int64) ([]model.ShoppingTemplate, error) {
	rows, err := s.db.Query(
		`SELECT `+templateCols+` FROM shopping_templates WHERE household_id = ? ORDER BY name ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []model.ShoppingTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func (s *ShoppingStore) DeleteTemplate(id int64) error {
	_, err := s.db.Exec(`DELETE FROM shopping_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	return nil
}
