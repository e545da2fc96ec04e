package store

import (
	"testing"

	"github.com/bromleigh/mealboard/internal/database"
	"github.com/bromleigh/mealboard/internal/model"
)

func setupHouseholdTestDB(t *testing.T) *HouseholdStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewHouseholdStore(db)
}

func TestHouseholdCreate(t *testing.T) {
	hs := setupHouseholdTestDB(t)

	h, err := hs.Create("Bromleigh", "Dana", "dana@example.com")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	if h.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if h.PopularityThreshold != model.DefaultPopularityThreshold {
		t.Errorf("threshold = %d, want %d", h.PopularityThreshold, model.DefaultPopularityThreshold)
	}
	if h.HeadMemberID == 0 {
		t.Fatal("expected head member to be set")
	}

	head, err := hs.GetMember(h.HeadMemberID)
	if err != nil {
		t.Fatalf("get head member: %v", err)
	}
	if head.Role != model.RoleHead {
		t.Errorf("head role = %q, want %q", head.Role, model.RoleHead)
	}
	if head.Name != "Dana" {
		t.Errorf("head name = %q, want %q", head.Name, "Dana")
	}
}

func TestHouseholdUpdateThreshold(t *testing.T) {
	hs := setupHouseholdTestDB(t)

	h, err := hs.Create("Bromleigh", "Dana", "dana@example.com")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	member, err := hs.AddMember(h.ID, "Kit", "kit@example.com")
	if err != nil {
		t.Fatalf("add member: %v", err)
	}

	updated, err := hs.UpdateThreshold(h.ID, h.HeadMemberID, "-3")
	if err != nil {
		t.Fatalf("update threshold as head: %v", err)
	}
	if updated.PopularityThreshold != -3 {
		t.Errorf("threshold = %d, want -3", updated.PopularityThreshold)
	}

	if _, err := hs.UpdateThreshold(h.ID, member.ID, "-10"); err != ErrNotHead {
		t.Errorf("non-head update err = %v, want ErrNotHead", err)
	}

	current, err := hs.GetByID(h.ID)
	if err != nil {
		t.Fatalf("get household: %v", err)
	}
	if current.PopularityThreshold != -3 {
		t.Errorf("threshold after rejected update = %d, want -3", current.PopularityThreshold)
	}
}

func TestHouseholdUpdateThresholdRejectsNonNumeric(t *testing.T) {
	hs := setupHouseholdTestDB(t)

	h, err := hs.Create("Bromleigh", "Dana", "dana@example.com")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}

	for _, raw := range []string{"", "abc", "1.5", "-", "--2"} {
		if _, err := hs.UpdateThreshold(h.ID, h.HeadMemberID, raw); err == nil {
			t.Errorf("threshold %q accepted, want error", raw)
		}
	}
}

func TestHouseholdRemoveMember(t *testing.T) {
	hs := setupHouseholdTestDB(t)

	h, err := hs.Create("Bromleigh", "Dana", "dana@example.com")
	if err != nil {
		t.Fatalf("create household: %v", err)
	}
	member, err := hs.AddMember(h.ID, "Kit", "kit@example.com")
	if err != nil {
		t.Fatalf("add member: %v", err)
	}

	if err := hs.RemoveMember(h.HeadMemberID); err == nil {
		t.Error("expected error removing head member")
	}
	if err := hs.RemoveMember(member.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}

	members, err := hs.ListMembers(h.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 {
		t.Errorf("members = %d, want 1", len(members))
	}
}
