package scoring

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"fitQuestAPI/internal/types/challenge"
	"fitQuestAPI/internal/types/progress"
)

func makeObjective(target, pointsPerUnit int) challenge.Objective {
	return challenge.Objective{
		ID:            uuid.New(),
		TargetValue:   target,
		Unit:          "steps",
		PointsPerUnit: pointsPerUnit,
	}
}

func TestPointsForObjective_Capped(t *testing.T) {
	obj := makeObjective(10, 5)

	assert.Equal(t, 50, PointsForObjective(obj, 12, true), "credit beyond target is discarded")
	assert.Equal(t, 60, PointsForObjective(obj, 12, false), "uncapped value may exceed target")
	assert.Equal(t, 35, PointsForObjective(obj, 7, true))
	assert.Equal(t, 35, PointsForObjective(obj, 7, false))
}

func TestPointsForObjective_CapInvariant(t *testing.T) {
	obj := makeObjective(10, 5)
	maxPoints := obj.TargetValue * obj.PointsPerUnit

	for v := 0; v <= 100; v += 7 {
		assert.LessOrEqual(t, PointsForObjective(obj, v, true), maxPoints)
	}
}

func TestPointsForObjective_UncappedMonotonic(t *testing.T) {
	obj := makeObjective(10, 5)

	prev := PointsForObjective(obj, 0, false)
	for v := 1; v <= 50; v++ {
		cur := PointsForObjective(obj, v, false)
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
}

func TestPointsForObjective_NegativePassesThrough(t *testing.T) {
	// Negative accumulated values are not clamped; a malformed entry edit
	// produces negative points and the display layer owns presentation.
	obj := makeObjective(10, 5)

	assert.Equal(t, -15, PointsForObjective(obj, -3, false))
	assert.Equal(t, -15, PointsForObjective(obj, -3, true))
}

func TestTotalPoints_Standard(t *testing.T) {
	objA := makeObjective(10, 5)
	objB := makeObjective(20, 1)
	objectives := []challenge.Objective{objA, objB}

	records := []progress.ProgressRecord{
		{ObjectiveID: objA.ID, CurrentValue: 12},
		{ObjectiveID: objB.ID, CurrentValue: 8},
	}

	assert.Equal(t, 58, TotalPoints(objectives, records, true, challenge.TypeStandard))
	assert.Equal(t, 68, TotalPoints(objectives, records, false, challenge.TypeStandard))
}

func TestTotalPoints_UnknownObjectiveSkipped(t *testing.T) {
	objA := makeObjective(10, 5)
	records := []progress.ProgressRecord{
		{ObjectiveID: objA.ID, CurrentValue: 4},
		{ObjectiveID: uuid.New(), CurrentValue: 100},
	}

	assert.Equal(t, 20, TotalPoints([]challenge.Objective{objA}, records, false, challenge.TypeStandard))
}

func TestTotalPoints_WeeklyScoresLikeStandard(t *testing.T) {
	objA := makeObjective(10, 5)
	records := []progress.ProgressRecord{{ObjectiveID: objA.ID, CurrentValue: 12}}
	objectives := []challenge.Objective{objA}

	assert.Equal(t,
		TotalPoints(objectives, records, true, challenge.TypeStandard),
		TotalPoints(objectives, records, true, challenge.TypeWeekly),
	)
}

func TestTotalPoints_Completion(t *testing.T) {
	// One record per calendar day, value 1 when every objective was logged.
	records := []progress.ProgressRecord{
		{CurrentValue: 1},
		{CurrentValue: 0},
		{CurrentValue: 1},
		{CurrentValue: 1},
	}

	assert.Equal(t, 3, TotalPoints(nil, records, false, challenge.TypeCompletion))
}

func TestTotalPoints_Collection(t *testing.T) {
	objA := makeObjective(1, 10)
	objB := makeObjective(1, 25)
	objC := makeObjective(1, 3)
	objectives := []challenge.Objective{objA, objB, objC}

	records := []progress.ProgressRecord{
		{ObjectiveID: objA.ID, CurrentValue: 1},
		{ObjectiveID: objB.ID, CurrentValue: 0},
		{ObjectiveID: objC.ID, CurrentValue: 2},
	}

	// Each objective contributes at most one unit regardless of rates.
	assert.Equal(t, 2, TotalPoints(objectives, records, false, challenge.TypeCollection))
	assert.Equal(t, 2, TotalPoints(objectives, records, true, challenge.TypeChecklist))
}

func TestTotalChallengeDays(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, TotalChallengeDays(start, start))
	assert.Equal(t, 7, TotalChallengeDays(start, start.AddDate(0, 0, 6)))
	assert.Equal(t, 0, TotalChallengeDays(start, start.AddDate(0, 0, -1)))
}
