package model

import "time"

const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
)

// ValidMealType reports whether s is one of the three meal slots.
func ValidMealType(s string) bool {
	return s == MealBreakfast || s == MealLunch || s == MealDinner
}

// MealPlan schedules a menu item (and optionally a side) into a calendar
// slot. Dates are plain YYYY-MM-DD strings; the calendar has no notion of
// time or timezone. At most one plan exists per (household, date, meal type).
type MealPlan struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	Date        string    `json:"date"` // YYYY-MM-DD
	MealType    string    `json:"meal_type"`
	MenuItemID  int64     `json:"menu_item_id"`
	SideID      *int64    `json:"side_id"`
	CreatedBy   *int64    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// Vote is a single member's up or down vote on a scheduled meal.
// At most one vote exists per (plan, member).
type Vote struct {
	ID        int64     `json:"id"`
	PlanID    int64     `json:"plan_id"`
	MemberID  int64     `json:"member_id"`
	Value     int       `json:"value"` // +1 or -1
	CreatedAt time.Time `json:"created_at"`
}
