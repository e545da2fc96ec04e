package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/bromleigh/mealboard/internal/model"
)

// ErrSlotOccupied is returned when a plan is created in a calendar slot
// that already holds one. Moving into an occupied slot swaps instead.
var ErrSlotOccupied = errors.New("slot already has a scheduled meal")

type PlanStore struct {
	db *sql.DB
}

func NewPlanStore(db *sql.DB) *PlanStore {
	return &PlanStore{db: db}
}

func scanPlan(scanner interface{ Scan(...any) error }) (*model.MealPlan, error) {
	var p model.MealPlan
	var sideID, createdBy sql.NullInt64

	err := scanner.Scan(
		&p.ID, &p.HouseholdID, &p.Date, &p.MealType, &p.MenuItemID,
		&sideID, &createdBy, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if sideID.Valid {
		p.SideID = &sideID.Int64
	}
	if createdBy.Valid {
		p.CreatedBy = &createdBy.Int64
	}
	return &p, nil
}

const planCols = `id, household_id, date, meal_type, menu_item_id, side_id, created_by, created_at`

func (s *PlanStore) Create(householdID int64, date, mealType string, menuItemID int64, sideID, createdBy *int64) (*model.MealPlan, error) {
	existing, err := s.GetBySlot(householdID, date, mealType)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrSlotOccupied
	}

	var sID, cBy sql.NullInt64
	if sideID != nil {
		sID = sql.NullInt64{Int64: *sideID, Valid: true}
	}
	if createdBy != nil {
		cBy = sql.NullInt64{Int64: *createdBy, Valid: true}
	}

	result, err := s.db.Exec(
		`INSERT INTO meal_plans (household_id, date, meal_type, menu_item_id, side_id, created_by) VALUES (?, ?, ?, ?, ?, ?)`,
		householdID, date, mealType, menuItemID, sID, cBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert meal plan: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *PlanStore) GetByID(id int64) (*model.MealPlan, error) {
	row := s.db.QueryRow(`SELECT `+planCols+` FROM meal_plans WHERE id = ?`, id)
	p, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get meal plan: %w", err)
	}
	return p, nil
}

func (s *PlanStore) GetBySlot(householdID int64, date, mealType string) (*model.MealPlan, error) {
	row := s.db.QueryRow(
		`SELECT `+planCols+` FROM meal_plans WHERE household_id = ? AND date = ? AND meal_type = ?`,
		householdID, date, mealType,
	)
	p, err := scanPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get plan by slot: %w", err)
	}
	return p, nil
}

// ListByDateRange returns a household's plans with start <= date <= end.
// Dates are YYYY-MM-DD strings, so lexical comparison is calendar order.
func (s *PlanStore) ListByDateRange(householdID int64, start, end string) ([]model.MealPlan, error) {
	rows, err := s.db.Query(
		`SELECT `+planCols+` FROM meal_plans
		 WHERE household_id = ? AND date >= ? AND date <= ?
		 ORDER BY date ASC, meal_type ASC`,
		householdID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("list plans by range: %w", err)
	}
	defer rows.Close()

	var plans []model.MealPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

// ListByMenuItem returns every plan, past or future, referencing an item.
func (s *PlanStore) ListByMenuItem(menuItemID int64) ([]model.MealPlan, error) {
	rows, err := s.db.Query(
		`SELECT `+planCols+` FROM meal_plans WHERE menu_item_id = ? ORDER BY date ASC`,
		menuItemID,
	)
	if err != nil {
		return nil, fmt.Errorf("list plans by item: %w", err)
	}
	defer rows.Close()

	var plans []model.MealPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, *p)
	}
	return plans, rows.Err()
}

// UpdateSide changes the side attached to a plan (nil clears it).
func (s *PlanStore) UpdateSide(id int64, sideID *int64) (*model.MealPlan, error) {
	var sID sql.NullInt64
	if sideID != nil {
		sID = sql.NullInt64{Int64: *sideID, Valid: true}
	}
	_, err := s.db.Exec(`UPDATE meal_plans SET side_id = ? WHERE id = ?`, sID, id)
	if err != nil {
		return nil, fmt.Errorf("update plan side: %w", err)
	}
	return s.GetByID(id)
}

// Move relocates a plan to a new slot. If the target slot is occupied by a
// different plan, the two swap slots; the swap is a single transaction so a
// failure leaves both where they were.
func (s *PlanStore) Move(id int64, newDate, newMealType string) (*model.MealPlan, error) {
	plan, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, nil
	}
	if plan.Date == newDate && plan.MealType == newMealType {
		return plan, nil
	}

	occupant, err := s.GetBySlot(plan.HouseholdID, newDate, newMealType)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if occupant != nil && occupant.ID != id {
		// Park the moving plan on an impossible date so the slot swap never
		// trips the uniqueness constraint mid-flight.
		if _, err := tx.Exec(`UPDATE meal_plans SET date = '0000-00-00' WHERE id = ?`, id); err != nil {
			return nil, fmt.Errorf("park plan: %w", err)
		}
		if _, err := tx.Exec(
			`UPDATE meal_plans SET date = ?, meal_type = ? WHERE id = ?`,
			plan.Date, plan.MealType, occupant.ID,
		); err != nil {
			return nil, fmt.Errorf("swap occupant: %w", err)
		}
	}

	if _, err := tx.Exec(
		`UPDATE meal_plans SET date = ?, meal_type = ? WHERE id = ?`,
		newDate, newMealType, id,
	); err != nil {
		return nil, fmt.Errorf("move plan: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetByID(id)
}

func (s *PlanStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM meal_plans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete meal plan: %w", err)
	}
	return nil
}

func (s *PlanStore) DeleteBySlot(householdID int64, date, mealType string) error {
	_, err := s.db.Exec(
		`DELETE FROM meal_plans WHERE household_id = ? AND date = ? AND meal_type = ?`,
		householdID, date, mealType,
	)
	if err != nil {
		return fmt.Errorf("delete plan by slot: %w", err)
	}
	return nil
}
