package model

import "time"

// DefaultPopularityThreshold is applied to new households. Menu items whose
// popularity score drops below the household threshold are hidden automatically.
const DefaultPopularityThreshold = -5

type Household struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	HeadMemberID        int64     `json:"head_member_id"`
	PopularityThreshold int       `json:"popularity_threshold"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type Member struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"` // "head" or "member"
	JoinedAt    time.Time `json:"joined_at"`
}

const (
	RoleHead   = "head"
	RoleMember = "member"
)
