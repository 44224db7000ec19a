package progress

import (
	"time"

	"github.com/google/uuid"
)

// Entry is a single raw log row: one value logged by one user against one
// objective. Entries are summed per objective before scoring.
type Entry struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	ChallengeID uuid.UUID `json:"challenge_id" db:"challenge_id"`
	ObjectiveID uuid.UUID `json:"objective_id" db:"objective_id"`
	Value       int       `json:"value" db:"value"`
	LoggedAt    time.Time `json:"logged_at" db:"logged_at"`
}

// ProgressRecord is the accumulated value one user holds against one objective
// within one challenge. This is the pre-aggregated shape the scoring engine consumes.
type ProgressRecord struct {
	ObjectiveID  uuid.UUID `json:"objective_id" db:"objective_id"`
	CurrentValue int       `json:"current_value" db:"current_value"`
}

type LogEntryRequest struct {
	ObjectiveID uuid.UUID `json:"objective_id"`
	Value       int       `json:"value"`
}

type ProgressResponse struct {
	ChallengeID uuid.UUID        `json:"challenge_id"`
	Records     []ProgressRecord `json:"records"`
	TotalPoints int              `json:"total_points"`
}
