package utils

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MemberNotifier is the narrow slice of the notification service the trigger
// needs, so this package does not depend on the whole service.
type MemberNotifier interface {
	PushToUser(ctx context.Context, userID uuid.UUID, title, body string, data map[string]any) error
}

// ObjectiveCompletedByMember tells the other members of a challenge that one
// of them just hit an objective target. Runs in the background; every failure
// is logged and dropped.
func ObjectiveCompletedByMember(db *pgxpool.Pool, notifier MemberNotifier, actorID uuid.UUID, actorName string, challengeID uuid.UUID, objectiveUnit string) {
	bgCtx := context.Background()

	query := `
		SELECT user_id FROM challenge_members
		WHERE challenge_id = $1 AND user_id != $2
	`

	rows, err := db.Query(bgCtx, query, challengeID, actorID)
	if err != nil {
		log.Printf("Failed to get members for objective notification: %v", err)
		return
	}
	defer rows.Close()

	title := "Objective completed!"
	body := fmt.Sprintf("%s just finished the %s objective", actorName, objectiveUnit)
	data := map[string]any{
		"challenge_id": challengeID.String(),
		"actor_id":     actorID.String(),
	}

	for rows.Next() {
		var memberID uuid.UUID
		if err := rows.Scan(&memberID); err != nil {
			continue
		}

		if err := notifier.PushToUser(bgCtx, memberID, title, body, data); err != nil {
			log.Printf("Failed to push objective notification to member %s: %v", memberID, err)
		}
	}
}
