package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bromleigh/mealboard/internal/model"
)

// ErrNotHead is returned when a member other than the household head
// attempts a head-only change.
var ErrNotHead = errors.New("only the household head may do this")

type HouseholdStore struct {
	db *sql.DB
}

func NewHouseholdStore(db *sql.DB) *HouseholdStore {
	return &HouseholdStore{db: db}
}

func scanHousehold(scanner interface{ Scan(...any) error }) (*model.Household, error) {
	var h model.Household
	var head sql.NullInt64
	err := scanner.Scan(&h.ID, &h.Name, &head, &h.PopularityThreshold, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if head.Valid {
		h.HeadMemberID = head.Int64
	}
	return &h, nil
}

func scanMember(scanner interface{ Scan(...any) error }) (*model.Member, error) {
	var m model.Member
	err := scanner.Scan(&m.ID, &m.HouseholdID, &m.Name, &m.Email, &m.Role, &m.JoinedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const householdCols = `id, name, head_member_id, popularity_threshold, created_at, updated_at`
const memberCols = `id, household_id, name, email, role, joined_at`

// Create creates a household together with its head member in one
// transaction. Every household has exactly one head.
func (s *HouseholdStore) Create(name, headName, headEmail string) (*model.Household, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO households (name, popularity_threshold) VALUES (?, ?)`,
		name, model.DefaultPopularityThreshold,
	)
	if err != nil {
		return nil, fmt.Errorf("insert household: %w", err)
	}
	householdID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	result, err = tx.Exec(
		`INSERT INTO members (household_id, name, email, role) VALUES (?, ?, ?, ?)`,
		householdID, headName, headEmail, model.RoleHead,
	)
	if err != nil {
		return nil, fmt.Errorf("insert head member: %w", err)
	}
	headID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := tx.Exec(`UPDATE households SET head_member_id = ? WHERE id = ?`, headID, householdID); err != nil {
		return nil, fmt.Errorf("set head member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return s.GetByID(householdID)
}

func (s *HouseholdStore) GetByID(id int64) (*model.Household, error) {
	row := s.db.QueryRow(`SELECT `+householdCols+` FROM households WHERE id = ?`, id)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return h, nil
}

// UpdateThreshold sets the popularity threshold. Only the head member may
// change it, and the raw value must parse as a signed integer before it
// reaches persistence.
func (s *HouseholdStore) UpdateThreshold(householdID, memberID int64, raw string) (*model.Household, error) {
	threshold, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("threshold must be a number: %w", err)
	}

	h, err := s.GetByID(householdID)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, nil
	}
	if h.HeadMemberID != memberID {
		return nil, ErrNotHead
	}

	_, err = s.db.Exec(
		`UPDATE households SET popularity_threshold = ?, updated_at = ? WHERE id = ?`,
		threshold, time.Now().UTC(), householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("update threshold: %w", err)
	}
	return s.GetByID(householdID)
}

func (s *HouseholdStore) AddMember(householdID int64, name, email string) (*model.Member, error) {
	result, err := s.db.Exec(
		`INSERT INTO members (household_id, name, email, role) VALUES (?, ?, ?, ?)`,
		householdID, name, email, model.RoleMember,
	)
	if err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetMember(id)
}

func (s *HouseholdStore) GetMember(id int64) (*model.Member, error) {
	row := s.db.QueryRow(`SELECT `+memberCols+` FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

func (s *HouseholdStore) ListMembers(householdID int64) ([]model.Member, error) {
	rows, err := s.db.Query(
		`SELECT `+memberCols+` FROM members WHERE household_id = ? ORDER BY joined_at ASC, id ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (s *HouseholdStore) RemoveMember(id int64) error {
	m, err := s.GetMember(id)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("member %d not found", id)
	}
	if m.Role == model.RoleHead {
		return fmt.Errorf("cannot remove the household head")
	}

	if _, err := s.db.Exec(`DELETE FROM members WHERE id = ?`, id); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}
