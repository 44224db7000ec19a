package scoring

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"fitQuestAPI/internal/types/leaderboard"
)

func entryWithPoints(points int) *leaderboard.LeaderboardEntry {
	return &leaderboard.LeaderboardEntry{UserID: uuid.New(), Points: points}
}

func TestRank_DenseTies(t *testing.T) {
	entries := []*leaderboard.LeaderboardEntry{
		entryWithPoints(50),
		entryWithPoints(50),
		entryWithPoints(30),
	}

	Rank(entries)

	assert.Equal(t, []int{1, 1, 3}, []int{entries[0].Rank, entries[1].Rank, entries[2].Rank})
	assert.Equal(t, 50, entries[0].Points)
	assert.Equal(t, 30, entries[2].Points)
}

func TestRank_SortsDescending(t *testing.T) {
	entries := []*leaderboard.LeaderboardEntry{
		entryWithPoints(10),
		entryWithPoints(99),
		entryWithPoints(45),
	}

	Rank(entries)

	assert.Equal(t, 99, entries[0].Points)
	assert.Equal(t, 45, entries[1].Points)
	assert.Equal(t, 10, entries[2].Points)
	assert.Equal(t, []int{1, 2, 3}, []int{entries[0].Rank, entries[1].Rank, entries[2].Rank})
}

func TestRank_AllTied(t *testing.T) {
	entries := []*leaderboard.LeaderboardEntry{
		entryWithPoints(7),
		entryWithPoints(7),
		entryWithPoints(7),
	}

	Rank(entries)

	for _, e := range entries {
		assert.Equal(t, 1, e.Rank)
	}
}

func TestRank_Empty(t *testing.T) {
	Rank(nil)
	Rank([]*leaderboard.LeaderboardEntry{})
}
