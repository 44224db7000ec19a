package challenge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateWeeklyWindow(t *testing.T) {
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateWeeklyWindow(monday, sunday))
}

func TestValidateWeeklyWindowRejectsBadStart(t *testing.T) {
	tuesday := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)

	err := ValidateWeeklyWindow(tuesday, sunday)
	assert.Error(t, err)
}

func TestValidateWeeklyWindowRejectsBadEnd(t *testing.T) {
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)

	err := ValidateWeeklyWindow(monday, saturday)
	assert.Error(t, err)
}

func TestValidateWeeklyWindowMultiWeek(t *testing.T) {
	monday := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateWeeklyWindow(monday, sunday))
}
