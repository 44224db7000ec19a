package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitQuestAPI/internal/types/reminder"
	"fitQuestAPI/scheduler"
)

// ReminderService owns the reminder rows and keeps the in-process scheduler
// in step with them. The rows are the source of truth; the scheduler is
// rebuilt from them through SyncSchedules after every restart.
type ReminderService struct {
	db    *pgxpool.Pool
	sched *scheduler.Scheduler
}

func NewReminderService(db *pgxpool.Pool, sched *scheduler.Scheduler) *ReminderService {
	return &ReminderService{db: db, sched: sched}
}

func (s *ReminderService) getUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, "SELECT id FROM users WHERE clerk_id = $1", clerkID).Scan(&userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("user not found for clerk_id %s: %w", clerkID, err)
	}
	return userID, nil
}

func (s *ReminderService) CreateReminder(ctx context.Context, clerkID string, req *reminder.CreateReminderRequest) (*reminder.Reminder, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if req.Title == "" {
		return nil, fmt.Errorf("reminder title is required")
	}
	switch req.Repeat {
	case reminder.RepeatNone, reminder.RepeatDaily, reminder.RepeatWeekly:
	default:
		return nil, fmt.Errorf("invalid repeat %q", req.Repeat)
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	r := &reminder.Reminder{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       req.Title,
		Body:        req.Body,
		ScheduledAt: req.ScheduledAt,
		Repeat:      req.Repeat,
		Enabled:     enabled,
		Tag:         req.Tag,
		Icon:        req.Icon,
		Badge:       req.Badge,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	query := `
		INSERT INTO reminders (id, user_id, title, body, scheduled_at, repeat, enabled, tag, icon, badge, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = s.db.Exec(ctx, query,
		r.ID, r.UserID, r.Title, r.Body, r.ScheduledAt, r.Repeat, r.Enabled,
		r.Tag, r.Icon, r.Badge, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	if r.Enabled {
		s.sched.Schedule(*r)
	}

	return r, nil
}

func (s *ReminderService) GetReminders(ctx context.Context, clerkID string) (*reminder.ReminderListResponse, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, user_id, title, body, scheduled_at, repeat, enabled, tag, icon, badge, created_at, updated_at
		FROM reminders
		WHERE user_id = $1
		ORDER BY scheduled_at
	`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reminders: %w", err)
	}
	defer rows.Close()

	var reminders []*reminder.Reminder
	for rows.Next() {
		r := &reminder.Reminder{}
		err := rows.Scan(
			&r.ID, &r.UserID, &r.Title, &r.Body, &r.ScheduledAt, &r.Repeat, &r.Enabled,
			&r.Tag, &r.Icon, &r.Badge, &r.CreatedAt, &r.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, r)
	}

	return &reminder.ReminderListResponse{
		Reminders:  reminders,
		TotalCount: len(reminders),
	}, nil
}

func (s *ReminderService) UpdateReminder(ctx context.Context, clerkID, reminderID string, req *reminder.UpdateReminderRequest) (*reminder.Reminder, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	updates := []string{}
	args := []interface{}{reminderID, userID}
	argCount := 3

	if req.Title != nil {
		updates = append(updates, fmt.Sprintf("title = $%d", argCount))
		args = append(args, *req.Title)
		argCount++
	}
	if req.Body != nil {
		updates = append(updates, fmt.Sprintf("body = $%d", argCount))
		args = append(args, *req.Body)
		argCount++
	}
	if req.ScheduledAt != nil {
		updates = append(updates, fmt.Sprintf("scheduled_at = $%d", argCount))
		args = append(args, *req.ScheduledAt)
		argCount++
	}
	if req.Repeat != nil {
		updates = append(updates, fmt.Sprintf("repeat = $%d", argCount))
		args = append(args, *req.Repeat)
		argCount++
	}
	if req.Enabled != nil {
		updates = append(updates, fmt.Sprintf("enabled = $%d", argCount))
		args = append(args, *req.Enabled)
		argCount++
	}
	if req.Tag != nil {
		updates = append(updates, fmt.Sprintf("tag = $%d", argCount))
		args = append(args, *req.Tag)
		argCount++
	}

	if len(updates) > 0 {
		query := fmt.Sprintf(`
			UPDATE reminders
			SET %s, updated_at = NOW()
			WHERE id = $1 AND user_id = $2
		`, strings.Join(updates, ", "))

		result, err := s.db.Exec(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("failed to update reminder: %w", err)
		}
		if result.RowsAffected() == 0 {
			return nil, fmt.Errorf("reminder not found")
		}
	}

	r, err := s.getReminder(ctx, reminderID, userID)
	if err != nil {
		return nil, err
	}

	// Re-arm from the fresh row: Schedule cancels any stale timer first.
	if r.Enabled {
		s.sched.Schedule(*r)
	} else {
		s.sched.Cancel(r.ID)
	}

	return r, nil
}

func (s *ReminderService) DeleteReminder(ctx context.Context, clerkID, reminderID string) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, "DELETE FROM reminders WHERE id = $1 AND user_id = $2", reminderID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("reminder not found")
	}

	s.sched.Cancel(reminderID)
	return nil
}

// SyncSchedules reloads every enabled reminder row and replaces the armed
// timer set wholesale. Called at boot and from the resync endpoint; this is
// how the scheduler answers its own GET_SCHEDULED_NOTIFICATIONS request.
func (s *ReminderService) SyncSchedules(ctx context.Context) (int, error) {
	query := `
		SELECT id, user_id, title, body, scheduled_at, repeat, enabled, tag, icon, badge, created_at, updated_at
		FROM reminders
		WHERE enabled = true
	`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to load reminders for sync: %w", err)
	}
	defer rows.Close()

	var reminders []reminder.Reminder
	for rows.Next() {
		var r reminder.Reminder
		err := rows.Scan(
			&r.ID, &r.UserID, &r.Title, &r.Body, &r.ScheduledAt, &r.Repeat, &r.Enabled,
			&r.Tag, &r.Icon, &r.Badge, &r.CreatedAt, &r.UpdatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, r)
	}

	s.sched.ReplaceAll(reminders)
	return s.sched.Len(), nil
}

func (s *ReminderService) getReminder(ctx context.Context, reminderID string, userID uuid.UUID) (*reminder.Reminder, error) {
	query := `
		SELECT id, user_id, title, body, scheduled_at, repeat, enabled, tag, icon, badge, created_at, updated_at
		FROM reminders
		WHERE id = $1 AND user_id = $2
	`
	r := &reminder.Reminder{}
	err := s.db.QueryRow(ctx, query, reminderID, userID).Scan(
		&r.ID, &r.UserID, &r.Title, &r.Body, &r.ScheduledAt, &r.Repeat, &r.Enabled,
		&r.Tag, &r.Icon, &r.Badge, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("reminder not found")
		}
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return r, nil
}
