package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompletionWindowBounds(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	end := time.Date(2026, 3, 8, 9, 30, 0, 0, time.UTC)

	from, to := completionWindowBounds(start, end)

	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), from,
		"an entry logged before the start's time of day still belongs to the first day")
	assert.True(t, to.After(time.Date(2026, 3, 8, 23, 59, 0, 0, time.UTC)),
		"the last day is covered to its end")
	assert.True(t, to.Before(time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)),
		"the day after the window stays outside")
}

func TestCompletionWindowBounds_ExcludesSurroundingDays(t *testing.T) {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)

	from, to := completionWindowBounds(start, end)

	dayBefore := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	dayAfter := time.Date(2026, 3, 9, 6, 0, 0, 0, time.UTC)
	lastDayEvening := time.Date(2026, 3, 8, 21, 0, 0, 0, time.UTC)

	assert.True(t, dayBefore.Before(from))
	assert.True(t, dayAfter.After(to))
	assert.False(t, lastDayEvening.After(to), "the evening of the end date still counts")
}

func TestCrossesTarget(t *testing.T) {
	assert.True(t, crossesTarget(8, 2, 10), "reaching the target exactly announces")
	assert.True(t, crossesTarget(8, 5, 10), "overshooting the target announces")
	assert.False(t, crossesTarget(10, 1, 10), "already at target does not re-announce")
	assert.False(t, crossesTarget(12, 3, 10), "past the target does not re-announce")
	assert.False(t, crossesTarget(3, 2, 10), "staying below the target is silent")
}
