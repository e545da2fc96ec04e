package store

import (
	"database/sql"
	"fmt"

	"github.com/bromleigh/mealboard/internal/model"
)

type VoteStore struct {
	db *sql.DB
}

func NewVoteStore(db *sql.DB) *VoteStore {
	return &VoteStore{db: db}
}

func scanVote(scanner interface{ Scan(...any) error }) (*model.Vote, error) {
	var v model.Vote
	err := scanner.Scan(&v.ID, &v.PlanID, &v.MemberID, &v.Value, &v.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

const voteCols = `id, plan_id, member_id, value, created_at`

// Cast applies a member's up/down vote to a scheduled meal:
//
//   - no existing vote: the vote is created
//   - existing vote with the same value: the vote is removed (toggle off)
//   - existing vote with the opposite value: the vote is replaced
//
// Replacement runs delete-then-insert in one transaction, so a reader never
// observes both votes or neither. Returns the resulting vote, or nil when
// the cast toggled the vote off.
func (s *VoteStore) Cast(planID, memberID int64, value int) (*model.Vote, error) {
	if value != 1 && value != -1 {
		return nil, fmt.Errorf("vote value must be +1 or -1, got %d", value)
	}

	existing, err := s.Get(planID, memberID)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		result, err := s.db.Exec(
			`INSERT INTO votes (plan_id, member_id, value) VALUES (?, ?, ?)`,
			planID, memberID, value,
		)
		if err != nil {
			return nil, fmt.Errorf("insert vote: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		row := s.db.QueryRow(`SELECT `+voteCols+` FROM votes WHERE id = ?`, id)
		return scanVote(row)
	}

	if existing.Value == value {
		if _, err := s.db.Exec(`DELETE FROM votes WHERE id = ?`, existing.ID); err != nil {
			return nil, fmt.Errorf("remove vote: %w", err)
		}
		return nil, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM votes WHERE id = ?`, existing.ID); err != nil {
		return nil, fmt.Errorf("delete old vote: %w", err)
	}
	result, err := tx.Exec(
		`INSERT INTO votes (plan_id, member_id, value) VALUES (?, ?, ?)`,
		planID, memberID, value,
	)
	if err != nil {
		return nil, fmt.Errorf("insert replacement vote: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	row := s.db.QueryRow(`SELECT `+voteCols+` FROM votes WHERE id = ?`, id)
	return scanVote(row)
}

func (s *VoteStore) Get(planID, memberID int64) (*model.Vote, error) {
	row := s.db.QueryRow(
		`SELECT `+voteCols+` FROM votes WHERE plan_id = ? AND member_id = ?`,
		planID, memberID,
	)
	v, err := scanVote(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get vote: %w", err)
	}
	return v, nil
}

// ScoreOf returns the signed sum of all votes on one scheduled meal.
func (s *VoteStore) ScoreOf(planID int64) (int, error) {
	var score int
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(value), 0) FROM votes WHERE plan_id = ?`,
		planID,
	).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("score of plan: %w", err)
	}
	return score, nil
}

func (s *VoteStore) ListByPlan(planID int64) ([]model.Vote, error) {
	rows, err := s.db.Query(
		`SELECT `+voteCols+` FROM votes WHERE plan_id = ? ORDER BY created_at ASC, id ASC`,
		planID,
	)
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	defer rows.Close()

	var votes []model.Vote
	for rows.Next() {
		v, err := scanVote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		votes = append(votes, *v)
	}
	return votes, rows.Err()
}
