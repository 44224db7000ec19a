package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"fitQuestAPI/internal/types/challenge"
	"fitQuestAPI/internal/types/leaderboard"
	"fitQuestAPI/internal/types/progress"
	"fitQuestAPI/scoring"
)

type LeaderboardService struct {
	db         *pgxpool.Pool
	challenges *ChallengeService
	progress   *ProgressService
}

func NewLeaderboardService(db *pgxpool.Pool, challenges *ChallengeService, progress *ProgressService) *LeaderboardService {
	return &LeaderboardService{
		db:         db,
		challenges: challenges,
		progress:   progress,
	}
}

// GetLeaderboard scores every member of the challenge and ranks them densely:
// tied totals share a rank. For collection/checklist challenges the points
// column carries the completed-objective count; for completion challenges it
// carries days completed. The display layer turns those into ratios.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, clerkID string, challengeID uuid.UUID) (*leaderboard.Leaderboard, error) {
	ch, err := s.challenges.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	members, err := s.challenges.members(ctx, challengeID)
	if err != nil {
		return nil, err
	}

	var entries []*leaderboard.LeaderboardEntry
	for _, m := range members {
		records, err := s.memberRecords(ctx, ch, m.UserID)
		if err != nil {
			// A member with unreadable progress shows up with zero points
			// rather than sinking the whole board.
			log.Printf("Leaderboard: failed to load progress for user %s: %v", m.UserID, err)
		}

		entries = append(entries, &leaderboard.LeaderboardEntry{
			UserID:   m.UserID,
			Username: m.Username,
			ImageURL: m.ImageURL,
			Points:   scoring.TotalPoints(ch.Objectives, records, ch.CapPoints, ch.Type),
		})
	}

	scoring.Rank(entries)

	board := &leaderboard.Leaderboard{
		Entries:    entries,
		TotalUsers: len(entries),
	}

	var callerID uuid.UUID
	err = s.db.QueryRow(ctx, "SELECT id FROM users WHERE clerk_id = $1", clerkID).Scan(&callerID)
	if err != nil {
		return nil, fmt.Errorf("user not found for clerk_id %s: %w", clerkID, err)
	}
	for _, entry := range entries {
		if entry.UserID == callerID {
			board.UserPosition = entry
			break
		}
	}

	return board, nil
}

func (s *LeaderboardService) memberRecords(ctx context.Context, ch *challenge.Challenge, userID uuid.UUID) ([]progress.ProgressRecord, error) {
	if ch.Type == challenge.TypeCompletion {
		return s.progress.CompletionDayRecords(ctx, userID, ch.ID, ch.StartDate, ch.EndDate)
	}
	return s.progress.AggregatedProgress(ctx, userID, ch.ID)
}
