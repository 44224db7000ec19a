package reminder

import (
	"time"

	"github.com/google/uuid"
)

type Repeat string

const (
	RepeatNone   Repeat = ""
	RepeatDaily  Repeat = "daily"
	RepeatWeekly Repeat = "weekly"
)

// Reminder is a scheduled local notification. The row in Postgres is the source
// of truth; the in-process scheduler only holds a live timer for it and is
// rebuilt from these rows on restart.
type Reminder struct {
	ID          string     `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	Title       string     `json:"title" db:"title"`
	Body        string     `json:"body" db:"body"`
	ScheduledAt time.Time  `json:"scheduled_at" db:"scheduled_at"`
	Repeat      Repeat     `json:"repeat,omitempty" db:"repeat"`
	Enabled     bool       `json:"enabled" db:"enabled"`
	Tag         *string    `json:"tag,omitempty" db:"tag"`
	Icon        *string    `json:"icon,omitempty" db:"icon"`
	Badge       *string    `json:"badge,omitempty" db:"badge"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

type CreateReminderRequest struct {
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Repeat      Repeat    `json:"repeat,omitempty"`
	Enabled     *bool     `json:"enabled,omitempty"`
	Tag         *string   `json:"tag,omitempty"`
	Icon        *string   `json:"icon,omitempty"`
	Badge       *string   `json:"badge,omitempty"`
}

type UpdateReminderRequest struct {
	Title       *string    `json:"title,omitempty"`
	Body        *string    `json:"body,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Repeat      *Repeat    `json:"repeat,omitempty"`
	Enabled     *bool      `json:"enabled,omitempty"`
	Tag         *string    `json:"tag,omitempty"`
}

type ReminderListResponse struct {
	Reminders  []*Reminder `json:"reminders"`
	TotalCount int         `json:"total_count"`
}
