package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitQuestAPI/internal/types/challenge"
)

type ChallengeService struct {
	db *pgxpool.Pool
}

func NewChallengeService(db *pgxpool.Pool) *ChallengeService {
	return &ChallengeService{db: db}
}

func (s *ChallengeService) getUserID(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, "SELECT id FROM users WHERE clerk_id = $1", clerkID).Scan(&userID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("user not found for clerk_id %s: %w", clerkID, err)
	}
	return userID, nil
}

// CreateChallenge inserts a challenge with its objectives in one transaction
// and joins the creator as the first member. Objectives are immutable after
// this point.
func (s *ChallengeService) CreateChallenge(ctx context.Context, clerkID string, req *challenge.CreateChallengeRequest) (*challenge.Challenge, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if req.Name == "" {
		return nil, fmt.Errorf("challenge name is required")
	}
	if len(req.Objectives) == 0 {
		return nil, fmt.Errorf("challenge needs at least one objective")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("challenge end date is before start date")
	}
	if req.Type == challenge.TypeWeekly {
		if err := challenge.ValidateWeeklyWindow(req.StartDate, req.EndDate); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	ch := &challenge.Challenge{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		Type:        req.Type,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CapPoints:   req.CapPoints,
		IsActive:    true,
		CreatedBy:   userID,
		CreatedAt:   time.Now(),
	}
	if ch.Type == "" {
		ch.Type = challenge.TypeStandard
	}

	query := `
		INSERT INTO challenges (id, name, description, type, start_date, end_date, cap_points, is_active, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = tx.Exec(ctx, query,
		ch.ID, ch.Name, ch.Description, ch.Type, ch.StartDate, ch.EndDate,
		ch.CapPoints, ch.IsActive, ch.CreatedBy, ch.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	for _, objReq := range req.Objectives {
		obj := challenge.Objective{
			ID:            uuid.New(),
			ChallengeID:   ch.ID,
			TargetValue:   objReq.TargetValue,
			Unit:          objReq.Unit,
			PointsPerUnit: objReq.PointsPerUnit,
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO objectives (id, challenge_id, target_value, unit, points_per_unit) VALUES ($1, $2, $3, $4, $5)`,
			obj.ID, obj.ChallengeID, obj.TargetValue, obj.Unit, obj.PointsPerUnit,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create objective: %w", err)
		}
		ch.Objectives = append(ch.Objectives, obj)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO challenge_members (id, user_id, challenge_id, joined_at) VALUES ($1, $2, $3, NOW())`,
		uuid.New(), userID, ch.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to join creator to challenge: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit challenge: %w", err)
	}

	return ch, nil
}

func (s *ChallengeService) GetChallenge(ctx context.Context, challengeID uuid.UUID) (*challenge.Challenge, error) {
	query := `
		SELECT id, name, description, type, start_date, end_date, cap_points, is_active, created_by, created_at
		FROM challenges
		WHERE id = $1
	`

	ch := &challenge.Challenge{}
	err := s.db.QueryRow(ctx, query, challengeID).Scan(
		&ch.ID, &ch.Name, &ch.Description, &ch.Type, &ch.StartDate, &ch.EndDate,
		&ch.CapPoints, &ch.IsActive, &ch.CreatedBy, &ch.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("challenge not found")
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	ch.Objectives, err = s.GetObjectives(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	return ch, nil
}

func (s *ChallengeService) GetObjectives(ctx context.Context, challengeID uuid.UUID) ([]challenge.Objective, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, challenge_id, target_value, unit, points_per_unit FROM objectives WHERE challenge_id = $1 ORDER BY id`,
		challengeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch objectives: %w", err)
	}
	defer rows.Close()

	var objectives []challenge.Objective
	for rows.Next() {
		var obj challenge.Objective
		if err := rows.Scan(&obj.ID, &obj.ChallengeID, &obj.TargetValue, &obj.Unit, &obj.PointsPerUnit); err != nil {
			return nil, fmt.Errorf("failed to scan objective: %w", err)
		}
		objectives = append(objectives, obj)
	}

	return objectives, nil
}

// ListChallenges returns the active challenges the user belongs to.
func (s *ChallengeService) ListChallenges(ctx context.Context, clerkID string) ([]*challenge.Challenge, error) {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT c.id, c.name, c.description, c.type, c.start_date, c.end_date, c.cap_points, c.is_active, c.created_by, c.created_at
		FROM challenges c
		JOIN challenge_members m ON m.challenge_id = c.id
		WHERE m.user_id = $1 AND c.is_active = true
		ORDER BY c.created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	var challenges []*challenge.Challenge
	for rows.Next() {
		ch := &challenge.Challenge{}
		err := rows.Scan(
			&ch.ID, &ch.Name, &ch.Description, &ch.Type, &ch.StartDate, &ch.EndDate,
			&ch.CapPoints, &ch.IsActive, &ch.CreatedBy, &ch.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, ch)
	}

	return challenges, nil
}

func (s *ChallengeService) JoinChallenge(ctx context.Context, clerkID string, challengeID uuid.UUID) error {
	userID, err := s.getUserID(ctx, clerkID)
	if err != nil {
		return err
	}

	var isActive bool
	err = s.db.QueryRow(ctx, "SELECT is_active FROM challenges WHERE id = $1", challengeID).Scan(&isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("challenge not found")
		}
		return fmt.Errorf("failed to check challenge: %w", err)
	}
	if !isActive {
		return fmt.Errorf("challenge is no longer active")
	}

	query := `
		INSERT INTO challenge_members (id, user_id, challenge_id, joined_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, challenge_id) DO NOTHING
	`
	_, err = s.db.Exec(ctx, query, uuid.New(), userID, challengeID)
	if err != nil {
		return fmt.Errorf("failed to join challenge: %w", err)
	}

	return nil
}

type memberRow struct {
	UserID   uuid.UUID
	Username string
	ImageURL *string
}

func (s *ChallengeService) members(ctx context.Context, challengeID uuid.UUID) ([]memberRow, error) {
	query := `
		SELECT u.id, u.username, u.image_url
		FROM challenge_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.challenge_id = $1
	`

	rows, err := s.db.Query(ctx, query, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}
	defer rows.Close()

	var members []memberRow
	for rows.Next() {
		var m memberRow
		if err := rows.Scan(&m.UserID, &m.Username, &m.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}

	return members, nil
}
