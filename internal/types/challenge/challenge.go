package challenge

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ChallengeType string

const (
	TypeStandard   ChallengeType = "standard"
	TypeBingo      ChallengeType = "bingo"
	TypeCompletion ChallengeType = "completion"
	TypeCollection ChallengeType = "collection"
	TypeChecklist  ChallengeType = "checklist"
	TypeWeekly     ChallengeType = "weekly"
)

// Objective is a single measurable target within a challenge.
// Objectives are created together with their challenge and never change afterwards.
type Objective struct {
	ID            uuid.UUID `json:"id" db:"id"`
	ChallengeID   uuid.UUID `json:"challenge_id" db:"challenge_id"`
	TargetValue   int       `json:"target_value" db:"target_value"`
	Unit          string    `json:"unit" db:"unit"`
	PointsPerUnit int       `json:"points_per_unit" db:"points_per_unit"`
}

type Challenge struct {
	ID          uuid.UUID     `json:"id" db:"id"`
	Name        string        `json:"name" db:"name"`
	Description string        `json:"description" db:"description"`
	Type        ChallengeType `json:"type" db:"type"`
	StartDate   time.Time     `json:"start_date" db:"start_date"`
	EndDate     time.Time     `json:"end_date" db:"end_date"`
	CapPoints   bool          `json:"cap_points" db:"cap_points"`
	IsActive    bool          `json:"is_active" db:"is_active"`
	CreatedBy   uuid.UUID     `json:"created_by" db:"created_by"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	Objectives  []Objective   `json:"objectives,omitempty"`
}

type Member struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	ChallengeID uuid.UUID `json:"challenge_id" db:"challenge_id"`
	JoinedAt    time.Time `json:"joined_at" db:"joined_at"`
}

type CreateObjectiveRequest struct {
	TargetValue   int    `json:"target_value"`
	Unit          string `json:"unit"`
	PointsPerUnit int    `json:"points_per_unit"`
}

type CreateChallengeRequest struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Type        ChallengeType            `json:"type"`
	StartDate   time.Time                `json:"start_date"`
	EndDate     time.Time                `json:"end_date"`
	CapPoints   bool                     `json:"cap_points"`
	Objectives  []CreateObjectiveRequest `json:"objectives"`
}

// ValidateWeeklyWindow enforces the creation-time rule for weekly challenges:
// the window must start on a Monday and end on a Sunday.
func ValidateWeeklyWindow(start, end time.Time) error {
	if start.Weekday() != time.Monday {
		return fmt.Errorf("weekly challenge must start on a Monday, got %s", start.Weekday())
	}
	if end.Weekday() != time.Sunday {
		return fmt.Errorf("weekly challenge must end on a Sunday, got %s", end.Weekday())
	}
	return nil
}
