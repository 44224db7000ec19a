package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitQuestAPI/internal/types/reminder"
)

// fakeClock drives timers deterministically. Advance moves time forward and
// fires due timers in order on the calling goroutine, including timers armed
// by the callbacks themselves (re-arming).
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	fireAt  time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &fakeTimer{clock: c, fireAt: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) Advance(d time.Duration) {
	target := c.Now().Add(d)

	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.fireAt.After(target) {
				continue
			}
			if next == nil || t.fireAt.Before(next.fireAt) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		if next.fireAt.After(c.now) {
			c.now = next.fireAt
		}
		f := next.f
		c.mu.Unlock()

		f()
	}
}

type showRecorder struct {
	mu    sync.Mutex
	shown []reminder.Reminder
	err   error
}

func (rec *showRecorder) show(ctx context.Context, r reminder.Reminder) error {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.shown = append(rec.shown, r)
	return rec.err
}

func (rec *showRecorder) count() int {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return len(rec.shown)
}

func testReminder(id string, at time.Time, rep reminder.Repeat) reminder.Reminder {
	return reminder.Reminder{
		ID:          id,
		Title:       "Log your workout",
		Body:        "Your challenge is waiting",
		ScheduledAt: at,
		Repeat:      rep,
		Enabled:     true,
	}
}

func TestSchedule_FiresOneShot(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	rec := &showRecorder{}
	s := New(clock, rec.show)

	s.Schedule(testReminder("r1", clock.Now().Add(time.Hour), reminder.RepeatNone))
	require.Equal(t, 1, s.Len())

	clock.Advance(time.Hour)

	assert.Equal(t, 1, rec.count())
	assert.Equal(t, 0, s.Len(), "one-shot leaves no timer behind")
}

func TestSchedule_SameIDKeepsOneTimer(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	rec := &showRecorder{}
	s := New(clock, rec.show)

	r := testReminder("r1", clock.Now().Add(time.Hour), reminder.RepeatNone)
	s.Schedule(r)
	s.Schedule(r)

	assert.Equal(t, 1, s.Len())

	clock.Advance(2 * time.Hour)
	assert.Equal(t, 1, rec.count(), "only the second timer may fire")
}

func TestSchedule_PastOneShotDropped(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	rec := &showRecorder{}
	s := New(clock, rec.show)

	s.Schedule(testReminder("r1", clock.Now().Add(-time.Hour), reminder.RepeatNone))

	assert.Equal(t, 0, s.Len())
	clock.Advance(48 * time.Hour)
	assert.Equal(t, 0, rec.count())
}

func TestSchedule_RejectsDelayBeyondMax(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC))
	rec := &showRecorder{}
	s := New(clock, rec.show)

	s.Schedule(testReminder("r1", clock.Now().Add(25*time.Hour), reminder.RepeatNone))

	assert.Equal(t, 0, s.Len())
	clock.Advance(26 * time.Hour)
	assert.Equal(t, 0, rec.count())
}

func TestSchedule_OverdueDailyArmsNextOccurrence(t *testing.T) {
	// Original fire time was yesterday 9:00; resynced today at 10:00. The next
	// fire must be tomorrow 9:00, not today 9:00 (already in the past).
	now := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	clock := newFakeClock(now)
	rec := &showRecorder{}
	s := New(clock, rec.show)

	yesterdayNine := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	s.Schedule(testReminder("r1", yesterdayNine, reminder.RepeatDaily))

	require.Equal(t, 1, s.Len())

	clock.Advance(22 * time.Hour) // up to tomorrow 8:00
	assert.Equal(t, 0, rec.count())

	clock.Advance(time.Hour) // tomorrow 9:00
	assert.Equal(t, 1, rec.count())
}

func TestFire_DailyReArms(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	rec := &showRecorder{}
	s := New(clock, rec.show)

	s.Schedule(testReminder("r1", clock.Now().Add(time.Hour), reminder.RepeatDaily))

	clock.Advance(time.Hour)
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, 1, s.Len(), "daily reminder re-arms after firing")

	clock.Advance(24 * time.Hour)
	assert.Equal(t, 2, rec.count())
	assert.Equal(t, 1, s.Len())
}

func TestFire_DeliveryFailureStillReArms(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	rec := &showRecorder{err: fmt.Errorf("push permission revoked")}
	s := New(clock, rec.show)

	s.Schedule(testReminder("r1", clock.Now().Add(time.Hour), reminder.RepeatDaily))

	clock.Advance(time.Hour)
	assert.Equal(t, 1, rec.count())
	assert.Equal(t, 1, s.Len(), "a failed delivery still counts as fired")
}

func TestFire_RescheduleDuringDeliveryWins(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))

	var s *Scheduler
	var mu sync.Mutex
	var titles []string

	updated := testReminder("r1", clock.Now().Add(5*time.Hour), reminder.RepeatDaily)
	updated.Title = "updated"

	show := func(ctx context.Context, r reminder.Reminder) error {
		mu.Lock()
		titles = append(titles, r.Title)
		mu.Unlock()

		// The user edits the reminder while the push is still in flight.
		if r.Title == "old" {
			s.Schedule(updated)
		}
		return nil
	}
	s = New(clock, show)

	old := testReminder("r1", clock.Now().Add(time.Hour), reminder.RepeatDaily)
	old.Title = "old"
	s.Schedule(old)

	clock.Advance(48 * time.Hour)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, titles, "updated", "the mid-delivery reschedule must take over")

	oldCount := 0
	for _, title := range titles {
		if title == "old" {
			oldCount++
		}
	}
	assert.Equal(t, 1, oldCount, "the stale cadence must stop after the reschedule")
}

func TestStartResync_PeriodicallyRefreshes(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	rec := &showRecorder{}
	s := New(clock, rec.show)

	var mu sync.Mutex
	calls := 0

	ctx, cancel := context.WithCancel(context.Background())
	s.StartResync(ctx, 24*time.Hour, func(context.Context) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	})

	clock.Advance(72 * time.Hour)
	mu.Lock()
	assert.Equal(t, 3, calls)
	mu.Unlock()

	cancel()
	clock.Advance(48 * time.Hour)
	mu.Lock()
	assert.Equal(t, 3, calls, "cancelled loop stops ticking")
	mu.Unlock()
}

func TestStartResync_ArmsWeeklyReminderWhenDue(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	rec := &showRecorder{}
	s := New(clock, rec.show)

	// Three days out: beyond the arming window, dropped on direct Schedule.
	weekly := testReminder("r1", clock.Now().Add(72*time.Hour), reminder.RepeatWeekly)
	s.Schedule(weekly)
	require.Equal(t, 0, s.Len())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.StartResync(ctx, 10*time.Hour, func(context.Context) error {
		s.ReplaceAll([]reminder.Reminder{weekly})
		return nil
	})

	clock.Advance(72 * time.Hour)
	assert.Equal(t, 1, rec.count(), "the resync arms the reminder once it is within a day of firing")
}

func TestCancel(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	rec := &showRecorder{}
	s := New(clock, rec.show)

	s.Schedule(testReminder("r1", clock.Now().Add(time.Hour), reminder.RepeatNone))
	s.Cancel("r1")
	s.Cancel("never-scheduled") // no-op

	assert.Equal(t, 0, s.Len())
	clock.Advance(2 * time.Hour)
	assert.Equal(t, 0, rec.count())
}

func TestReplaceAll(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	rec := &showRecorder{}
	s := New(clock, rec.show)

	s.Schedule(testReminder("old", clock.Now().Add(time.Hour), reminder.RepeatNone))

	disabled := testReminder("r2", clock.Now().Add(time.Hour), reminder.RepeatNone)
	disabled.Enabled = false

	s.ReplaceAll([]reminder.Reminder{
		testReminder("r1", clock.Now().Add(2*time.Hour), reminder.RepeatNone),
		disabled,
		testReminder("r3", clock.Now().Add(3*time.Hour), reminder.RepeatNone),
	})

	assert.Equal(t, 2, s.Len(), "disabled entries are skipped, old timers dropped")

	clock.Advance(4 * time.Hour)
	assert.Equal(t, 2, rec.count())
}

func TestClose(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	rec := &showRecorder{}
	s := New(clock, rec.show)

	s.Schedule(testReminder("r1", clock.Now().Add(time.Hour), reminder.RepeatNone))
	s.Close()

	assert.Equal(t, 0, s.Len())

	s.Schedule(testReminder("r2", clock.Now().Add(time.Hour), reminder.RepeatNone))
	assert.Equal(t, 0, s.Len(), "closed scheduler rejects new work")
}

func TestNextOccurrence_Daily(t *testing.T) {
	original := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)

	next := NextOccurrence(original, reminder.RepeatDaily, now)

	assert.Equal(t, time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC), next)
}

func TestNextOccurrence_StrictlyAfterNow(t *testing.T) {
	original := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	// now exactly on an occurrence: must return the following one.
	now := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)

	next := NextOccurrence(original, reminder.RepeatDaily, now)

	assert.Equal(t, time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC), next)
}

func TestNextOccurrence_Weekly(t *testing.T) {
	original := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) // a Monday
	now := time.Date(2026, 3, 17, 12, 0, 0, 0, time.UTC)

	next := NextOccurrence(original, reminder.RepeatWeekly, now)

	assert.Equal(t, time.Date(2026, 3, 23, 9, 0, 0, 0, time.UTC), next)
	assert.Equal(t, time.Monday, next.Weekday())
}

func TestNextOccurrence_FutureOriginalReturnedAsIs(t *testing.T) {
	original := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, original, NextOccurrence(original, reminder.RepeatDaily, now))
}
