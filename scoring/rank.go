package scoring

import (
	"sort"

	"fitQuestAPI/internal/types/leaderboard"
)

// Rank sorts entries by points descending and assigns dense ranks: tied
// scores share a rank, and the next distinct score gets 1 + the number of
// entries strictly ahead of it. [50, 50, 30] ranks as [1, 1, 3].
func Rank(entries []*leaderboard.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Points > entries[j].Points
	})

	for i, entry := range entries {
		if i > 0 && entry.Points == entries[i-1].Points {
			entry.Rank = entries[i-1].Rank
			continue
		}
		entry.Rank = i + 1
	}
}
