package store

import (
	"database/sql"
	"fmt"

	"github.com/bromleigh/mealboard/internal/model"
)

type MenuStore struct {
	db *sql.DB
}

func NewMenuStore(db *sql.DB) *MenuStore {
	return &MenuStore{db: db}
}

// --- Menu item methods ---

func scanMenuItem(scanner interface{ Scan(...any) error }) (*model.MenuItem, error) {
	var item model.MenuItem
	var hidden int
	var createdBy sql.NullInt64

	err := scanner.Scan(
		&item.ID, &item.HouseholdID, &item.Name, &item.Genre,
		&item.PopularityScore, &hidden, &createdBy, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.IsHidden = hidden != 0
	if createdBy.Valid {
		item.CreatedBy = &createdBy.Int64
	}
	return &item, nil
}

const menuItemCols = `id, household_id, name, genre, popularity_score, is_hidden, created_by, created_at`

func (s *MenuStore) CreateItem(householdID int64, name, genre string, createdBy *int64) (*model.MenuItem, error) {
	var cBy sql.NullInt64
	if createdBy != nil {
		cBy = sql.NullInt64{Int64: *createdBy, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO menu_items (household_id, name, genre, created_by) VALUES (?, ?, ?, ?)`,
		householdID, name, genre, cBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert menu item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetItemByID(id)
}

func (s *MenuStore) GetItemByID(id int64) (*model.MenuItem, error) {
	row := s.db.QueryRow(`SELECT `+menuItemCols+` FROM menu_items WHERE id = ?`, id)
	item, err := scanMenuItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get menu item: %w", err)
	}
	return item, nil
}

// ListItems returns a household's menu items. When includeHidden is false,
// items auto-hidden or manually hidden are filtered out.
func (s *MenuStore) ListItems(householdID int64, includeHidden bool) ([]model.MenuItem, error) {
	query := `SELECT ` + menuItemCols + ` FROM menu_items WHERE household_id = ?`
	if !includeHidden {
		query += ` AND is_hidden = 0`
	}
	query += ` ORDER BY name ASC`

	rows, err := s.db.Query(query, householdID)
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()

	var items []model.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// ListItemsByPopularity returns all of a household's items ordered by score,
// most popular first.
func (s *MenuStore) ListItemsByPopularity(householdID int64) ([]model.MenuItem, error) {
	rows, err := s.db.Query(
		`SELECT `+menuItemCols+` FROM menu_items WHERE household_id = ? ORDER BY popularity_score DESC, name ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list menu items by popularity: %w", err)
	}
	defer rows.Close()

	var items []model.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *MenuStore) UpdateItem(id int64, name, genre string) (*model.MenuItem, error) {
	_, err := s.db.Exec(`UPDATE menu_items SET name = ?, genre = ? WHERE id = ?`, name, genre, id)
	if err != nil {
		return nil, fmt.Errorf("update menu item: %w", err)
	}
	return s.GetItemByID(id)
}

// SetHidden manually hides or restores an item. The next popularity
// recompute re-derives the flag from the threshold rule and overwrites
// whatever was set here.
func (s *MenuStore) SetHidden(id int64, hidden bool) (*model.MenuItem, error) {
	h := 0
	if hidden {
		h = 1
	}
	_, err := s.db.Exec(`UPDATE menu_items SET is_hidden = ? WHERE id = ?`, h, id)
	if err != nil {
		return nil, fmt.Errorf("set hidden: %w", err)
	}
	return s.GetItemByID(id)
}

// SetPopularity persists a recomputed popularity score and the derived
// hidden flag together.
func (s *MenuStore) SetPopularity(id int64, score int, hidden bool) error {
	h := 0
	if hidden {
		h = 1
	}
	_, err := s.db.Exec(`UPDATE menu_items SET popularity_score = ?, is_hidden = ? WHERE id = ?`, score, h, id)
	if err != nil {
		return fmt.Errorf("set popularity: %w", err)
	}
	return nil
}

// DeleteItem permanently removes a menu item. Plans, the recipe and its
// ingredients, votes, and entree-side links cascade away with it.
func (s *MenuStore) DeleteItem(id int64) error {
	_, err := s.db.Exec(`DELETE FROM menu_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	return nil
}

// --- Side methods ---

func scanSide(scanner interface{ Scan(...any) error }) (*model.Side, error) {
	var side model.Side
	var hidden int
	var createdBy sql.NullInt64

	err := scanner.Scan(&side.ID, &side.HouseholdID, &side.Name, &hidden, &createdBy, &side.CreatedAt)
	if err != nil {
		return nil, err
	}

	side.IsHidden = hidden != 0
	if createdBy.Valid {
		side.CreatedBy = &createdBy.Int64
	}
	return &side, nil
}

const sideCols = `id, household_id, name, is_hidden, created_by, created_at`

func (s *MenuStore) CreateSide(householdID int64, name string, createdBy *int64) (*model.Side, error) {
	var cBy sql.NullInt64
	if createdBy != nil {
		cBy = sql.NullInt64{Int64: *createdBy, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO sides (household_id, name, created_by) VALUES (?, ?, ?)`,
		householdID, name, cBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert side: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetSideByID(id)
}

func (s *MenuStore) GetSideByID(id int64) (*model.Side, error) {
	row := s.db.QueryRow(`SELECT `+sideCols+` FROM sides WHERE id = ?`, id)
	side, err := scanSide(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get side: %w", err)
	}
	return side, nil
}

func (s *MenuStore) ListSides(householdID int64, includeHidden bool) ([]model.Side, error) {
	query := `SELECT ` + sideCols + ` FROM sides WHERE household_id = ?`
	if !includeHidden {
		query += ` AND is_hidden = 0`
	}
	query += ` ORDER BY name ASC`

	rows, err := s.db.Query(query, householdID)
	if err != nil {
		return nil, fmt.Errorf("list sides: %w", err)
	}
	defer rows.Close()

	var sides []model.Side
	for rows.Next() {
		side, err := scanSide(rows)
		if err != nil {
			return nil, fmt.Errorf("scan side: %w", err)
		}
		sides = append(sides, *side)
	}
	return sides, rows.Err()
}

func (s *MenuStore) SetSideHidden(id int64, hidden bool) (*model.Side, error) {
	h := 0
	if hidden {
		h = 1
	}
	_, err := s.db.Exec(`UPDATE sides SET is_hidden = ? WHERE id = ?`, h, id)
	if err != nil {
		return nil, fmt.Errorf("set side hidden: %w", err)
	}
	return s.GetSideByID(id)
}

func (s *MenuStore) DeleteSide(id int64) error {
	_, err := s.db.Exec(`DELETE FROM sides WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete side: %w", err)
	}
	return nil
}

// --- Entree-side link methods ---

// LinkSide marks a side as eligible for an entree. Linking the same pair
// twice is a no-op.
func (s *MenuStore) LinkSide(entreeID, sideID int64) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO entree_sides (entree_id, side_id) VALUES (?, ?)`,
		entreeID, sideID,
	)
	if err != nil {
		return fmt.Errorf("link side: %w", err)
	}
	return nil
}

func (s *MenuStore) UnlinkSide(entreeID, sideID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM entree_sides WHERE entree_id = ? AND side_id = ?`,
		entreeID, sideID,
	)
	if err != nil {
		return fmt.Errorf("unlink side: %w", err)
	}
	return nil
}

// ListSidesForEntree returns the visible sides eligible for an entree.
func (s *MenuStore) ListSidesForEntree(entreeID int64) ([]model.Side, error) {
	rows, err := s.db.Query(
		`SELECT s.id, s.household_id, s.name, s.is_hidden, s.created_by, s.created_at
		 FROM sides s
		 JOIN entree_sides es ON es.side_id = s.id
		 WHERE es.entree_id = ? AND s.is_hidden = 0
		 ORDER BY s.name ASC`,
		entreeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sides for entree: %w", err)
	}
	defer rows.Close()

	var sides []model.Side
	for rows.Next() {
		side, err := scanSide(rows)
		if err != nil {
			return nil, fmt.Errorf("scan side: %w", err)
		}
		sides = append(sides, *side)
	}
	return sides, rows.Err()
}
