package store

import (
	"testing"

	"github.com/bromleigh/mealboard/internal/database"
)

type voteFixture struct {
	votes   *VoteStore
	plans   *PlanStore
	planID  int64
	memberA int64
	memberB int64
}

func setupVoteTestDB(t *testing.T) *voteFixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hs := NewHouseholdStore(db)
	ms := NewMenuStore(db)
	ps := NewPlanStore(db)

	h, err := hs.Create("Test", "Dana", "dana@example.com")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	other, err := hs.AddMember(h.ID, "Kit", "kit@example.com")
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	item, err := ms.CreateItem(h.ID, "Tacos", "Mexican", nil)
	if err != nil {
		t.Fatalf("create menu item: %v", err)
	}
	plan, err := ps.Create(h.ID, "2024-03-04", "dinner", item.ID, nil, nil)
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}

	return &voteFixture{
		votes:   NewVoteStore(db),
		plans:   ps,
		planID:  plan.ID,
		memberA: h.HeadMemberID,
		memberB: other.ID,
	}
}

func (f *voteFixture) score(t *testing.T) int {
	t.Helper()
	score, err := f.votes.ScoreOf(f.planID)
	if err != nil {
		t.Fatalf("score of plan: %v", err)
	}
	return score
}

func TestVoteCastToggleAndReplace(t *testing.T) {
	f := setupVoteTestDB(t)

	// First vote lands.
	v, err := f.votes.Cast(f.planID, f.memberA, 1)
	if err != nil {
		t.Fatalf("cast upvote: %v", err)
	}
	if v == nil || v.Value != 1 {
		t.Fatalf("vote = %+v, want value 1", v)
	}
	if got := f.score(t); got != 1 {
		t.Errorf("score = %d, want 1", got)
	}

	// Same vote again clears it.
	v, err = f.votes.Cast(f.planID, f.memberA, 1)
	if err != nil {
		t.Fatalf("cast repeat upvote: %v", err)
	}
	if v != nil {
		t.Errorf("repeat vote = %+v, want nil (cleared)", v)
	}
	if got := f.score(t); got != 0 {
		t.Errorf("score after toggle = %d, want 0", got)
	}

	// Opposite vote replaces.
	if _, err := f.votes.Cast(f.planID, f.memberA, -1); err != nil {
		t.Fatalf("cast downvote: %v", err)
	}
	v, err = f.votes.Cast(f.planID, f.memberA, 1)
	if err != nil {
		t.Fatalf("replace downvote: %v", err)
	}
	if v == nil || v.Value != 1 {
		t.Fatalf("replaced vote = %+v, want value 1", v)
	}
	if got := f.score(t); got != 1 {
		t.Errorf("score after replace = %d, want 1", got)
	}
}

func TestVoteOnePerMember(t *testing.T) {
	f := setupVoteTestDB(t)

	if _, err := f.votes.Cast(f.planID, f.memberA, 1); err != nil {
		t.Fatalf("cast member A: %v", err)
	}
	if _, err := f.votes.Cast(f.planID, f.memberB, -1); err != nil {
		t.Fatalf("cast member B: %v", err)
	}

	if got := f.score(t); got != 0 {
		t.Errorf("score = %d, want 0", got)
	}

	votes, err := f.votes.ListByPlan(f.planID)
	if err != nil {
		t.Fatalf("list votes: %v", err)
	}
	if len(votes) != 2 {
		t.Errorf("votes = %d, want 2", len(votes))
	}
}

func TestVoteRejectsInvalidValue(t *testing.T) {
	f := setupVoteTestDB(t)

	for _, value := range []int{0, 2, -2, 10} {
		if _, err := f.votes.Cast(f.planID, f.memberA, value); err == nil {
			t.Errorf("value %d accepted, want error", value)
		}
	}
}

func TestVotesDeletedWithPlan(t *testing.T) {
	f := setupVoteTestDB(t)

	if _, err := f.votes.Cast(f.planID, f.memberA, 1); err != nil {
		t.Fatalf("cast vote: %v", err)
	}
	if err := f.plans.Delete(f.planID); err != nil {
		t.Fatalf("delete plan: %v", err)
	}

	votes, err := f.votes.ListByPlan(f.planID)
	if err != nil {
		t.Fatalf("list votes: %v", err)
	}
	if len(votes) != 0 {
		t.Errorf("votes after plan delete = %d, want 0", len(votes))
	}
}
