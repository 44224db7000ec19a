package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitQuestAPI/internal/types/challenge"
	"fitQuestAPI/internal/types/progress"
	"fitQuestAPI/utils"
)

type ProgressService struct {
	db       *pgxpool.Pool
	notifier utils.MemberNotifier
}

func NewProgressService(db *pgxpool.Pool, notifier utils.MemberNotifier) *ProgressService {
	return &ProgressService{db: db, notifier: notifier}
}

func (s *ProgressService) getUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, "SELECT id FROM users WHERE clerk_id = $1", clerkID).Scan(&userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("user not found for clerk_id %s: %w", clerkID, err)
	}
	return userID, nil
}

// LogEntry records one raw progress value. If the entry pushes the user's
// accumulated total across the objective's target, the other challenge
// members get a push in the background.
func (s *ProgressService) LogEntry(ctx context.Context, clerkID string, challengeID uuid.UUID, req *progress.LogEntryRequest) (*progress.Entry, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	var obj challenge.Objective
	err = s.db.QueryRow(ctx,
		`SELECT id, challenge_id, target_value, unit, points_per_unit FROM objectives WHERE id = $1 AND challenge_id = $2`,
		req.ObjectiveID, challengeID,
	).Scan(&obj.ID, &obj.ChallengeID, &obj.TargetValue, &obj.Unit, &obj.PointsPerUnit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("objective not found in challenge")
		}
		return nil, fmt.Errorf("failed to check objective: %w", err)
	}

	var memberCount int
	err = s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM challenge_members WHERE user_id = $1 AND challenge_id = $2",
		userID, challengeID,
	).Scan(&memberCount)
	if err != nil || memberCount == 0 {
		return nil, fmt.Errorf("user is not a member of this challenge")
	}

	before, beforeKnown := 0, true
	err = s.db.QueryRow(ctx,
		"SELECT COALESCE(SUM(value), 0) FROM entries WHERE user_id = $1 AND objective_id = $2",
		userID, req.ObjectiveID,
	).Scan(&before)
	if err != nil {
		// The entry still gets logged; only the completion trigger is skipped,
		// since a zeroed baseline would re-announce on every later entry.
		log.Printf("Failed to read accumulated progress for objective %s: %v", req.ObjectiveID, err)
		beforeKnown = false
	}

	entry := &progress.Entry{
		ID:          uuid.New(),
		UserID:      userID,
		ChallengeID: challengeID,
		ObjectiveID: req.ObjectiveID,
		Value:       req.Value,
		LoggedAt:    time.Now(),
	}

	query := `
		INSERT INTO entries (id, user_id, challenge_id, objective_id, value, logged_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.Exec(ctx, query, entry.ID, entry.UserID, entry.ChallengeID, entry.ObjectiveID, entry.Value, entry.LoggedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to log entry: %w", err)
	}

	if beforeKnown && crossesTarget(before, req.Value, obj.TargetValue) && s.notifier != nil {
		var username string
		if err := s.db.QueryRow(ctx, "SELECT username FROM users WHERE id = $1", userID).Scan(&username); err != nil {
			log.Printf("Failed to load username for objective notification: %v", err)
		} else {
			go utils.ObjectiveCompletedByMember(s.db, s.notifier, userID, username, challengeID, obj.Unit)
		}
	}

	return entry, nil
}

func (s *ProgressService) DeleteEntry(ctx context.Context, clerkID string, entryID uuid.UUID) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, "DELETE FROM entries WHERE id = $1 AND user_id = $2", entryID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("entry not found")
	}

	return nil
}

// AggregatedProgress sums raw entries per objective into the shape the
// scoring engine consumes.
func (s *ProgressService) AggregatedProgress(ctx context.Context, userID, challengeID uuid.UUID) ([]progress.ProgressRecord, error) {
	query := `
		SELECT objective_id, COALESCE(SUM(value), 0)
		FROM entries
		WHERE user_id = $1 AND challenge_id = $2
		GROUP BY objective_id
	`

	rows, err := s.db.Query(ctx, query, userID, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate progress: %w", err)
	}
	defer rows.Close()

	var records []progress.ProgressRecord
	for rows.Next() {
		var rec progress.ProgressRecord
		if err := rows.Scan(&rec.ObjectiveID, &rec.CurrentValue); err != nil {
			return nil, fmt.Errorf("failed to scan progress record: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func (s *ProgressService) AggregatedProgressForClerk(ctx context.Context, clerkID string, challengeID uuid.UUID) ([]progress.ProgressRecord, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}
	return s.AggregatedProgress(ctx, userID, challengeID)
}

// CompletionDayRecords builds the date-normalized record set for
// completion-type scoring: one record per calendar day inside the challenge
// window on which the user logged something, value 1 when every objective of
// the challenge got at least one entry that day, 0 otherwise. Entries outside
// the window are excluded, so the day sum can never exceed the window's day
// count.
func (s *ProgressService) CompletionDayRecords(ctx context.Context, userID, challengeID uuid.UUID, start, end time.Time) ([]progress.ProgressRecord, error) {
	from, to := completionWindowBounds(start, end)

	query := `
		SELECT CASE WHEN COUNT(DISTINCT e.objective_id) = (SELECT COUNT(*) FROM objectives WHERE challenge_id = $2)
			THEN 1 ELSE 0 END
		FROM entries e
		WHERE e.user_id = $1 AND e.challenge_id = $2
			AND e.logged_at >= $3 AND e.logged_at <= $4
		GROUP BY DATE(e.logged_at)
	`

	rows, err := s.db.Query(ctx, query, userID, challengeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to build completion records: %w", err)
	}
	defer rows.Close()

	var records []progress.ProgressRecord
	for rows.Next() {
		var rec progress.ProgressRecord
		if err := rows.Scan(&rec.CurrentValue); err != nil {
			return nil, fmt.Errorf("failed to scan completion record: %w", err)
		}
		records = append(records, rec)
	}

	return records, nil
}

// completionWindowBounds widens the challenge window to whole calendar days,
// so an entry anywhere on the first or last day still counts toward that day.
func completionWindowBounds(start, end time.Time) (time.Time, time.Time) {
	y, m, d := start.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, start.Location())

	y, m, d = end.Date()
	to := time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), end.Location())

	return from, to
}

// crossesTarget reports whether adding value moves an accumulated total from
// below the objective target to at or above it. Entries after the crossing
// do not announce again.
func crossesTarget(before, value, target int) bool {
	return before < target && before+value >= target
}
