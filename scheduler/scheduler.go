// Package scheduler keeps one live timer per reminder and re-arms recurring
// reminders after they fire. It holds no persistent state: the reminder rows
// in Postgres are the source of truth and the host resyncs the full list
// through ReplaceAll whenever the process restarts.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"fitQuestAPI/internal/types/reminder"
)

// MaxDelay bounds how far in the future a single timer may be armed. Anything
// further out is dropped and picked up by the next daily resync instead of
// holding a timer for weeks. A weekly re-arm always lands outside this window
// and relies on the resync.
const MaxDelay = 24 * time.Hour

const showTimeout = 10 * time.Second

// ShowFunc delivers a reminder to the user. Failures are logged and swallowed;
// a failed delivery still counts as fired and still re-arms recurrence.
type ShowFunc func(ctx context.Context, r reminder.Reminder) error

type Scheduler struct {
	clock Clock
	show  ShowFunc

	mu     sync.Mutex
	timers map[string]Timer
	closed bool
}

func New(clock Clock, show ShowFunc) *Scheduler {
	return &Scheduler{
		clock:  clock,
		show:   show,
		timers: make(map[string]Timer),
	}
}

// Schedule arms a timer for the reminder. Any existing timer for the same id
// is cancelled first, so at most one timer per id is ever live. Reminders in
// the past without a repeat, and delays outside (0, MaxDelay], are dropped
// silently.
func (s *Scheduler) Schedule(r reminder.Reminder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleLocked(r)
}

func (s *Scheduler) scheduleLocked(r reminder.Reminder) {
	if s.closed {
		return
	}

	if t, ok := s.timers[r.ID]; ok {
		t.Stop()
		delete(s.timers, r.ID)
	}

	now := s.clock.Now()
	fireAt := r.ScheduledAt
	if !fireAt.After(now) {
		if r.Repeat == reminder.RepeatNone {
			return
		}
		fireAt = NextOccurrence(r.ScheduledAt, r.Repeat, now)
	}

	delay := fireAt.Sub(now)
	if delay < 0 || delay > MaxDelay {
		return
	}

	fired := r
	s.timers[r.ID] = s.clock.AfterFunc(delay, func() {
		s.fire(fired)
	})
}

// fire runs on the timer goroutine: release the id, re-arm, then deliver.
// The bookkeeping happens atomically before the delivery call so a Schedule
// for the same id that arrives while the push is in flight replaces the
// re-armed timer instead of being clobbered by it. The delivery outcome is
// awaited only for logging, never for control flow.
func (s *Scheduler) fire(r reminder.Reminder) {
	s.mu.Lock()
	delete(s.timers, r.ID)
	if r.Repeat != reminder.RepeatNone {
		next := r
		next.ScheduledAt = NextOccurrence(r.ScheduledAt, r.Repeat, s.clock.Now())
		s.scheduleLocked(next)
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), showTimeout)
	defer cancel()

	if err := s.show(ctx, r); err != nil {
		log.Printf("reminder %s: delivery failed: %v", r.ID, err)
	}
}

// Cancel stops and forgets the timer for id. No-op if none is armed.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
}

// ReplaceAll drops every armed timer and schedules the enabled reminders from
// the given list. This is the bulk resync path used after a restart.
func (s *Scheduler) ReplaceAll(reminders []reminder.Reminder) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelAllLocked()
	for _, r := range reminders {
		if r.Enabled {
			s.scheduleLocked(r)
		}
	}
}

// CancelAll stops every armed timer.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelAllLocked()
}

func (s *Scheduler) cancelAllLocked() {
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

// Close cancels everything and rejects further scheduling.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.cancelAllLocked()
}

// StartResync arms a repeating background refresh that calls resync every
// interval until ctx is cancelled. The resync callback is expected to reload
// the reminder rows and push them through ReplaceAll; this is what brings
// reminders beyond the MaxDelay horizon (weekly recurrences, anything created
// more than a day out) into the arming window. Any interval of MaxDelay or
// less guarantees no occurrence is missed. Errors are logged and the loop
// keeps ticking.
func (s *Scheduler) StartResync(ctx context.Context, interval time.Duration, resync func(context.Context) error) {
	var arm func()
	arm = func() {
		s.clock.AfterFunc(interval, func() {
			if ctx.Err() != nil {
				return
			}
			if err := resync(ctx); err != nil {
				log.Printf("scheduler resync failed: %v", err)
			}
			arm()
		})
	}
	arm()
}

// Len reports the number of armed timers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// NextOccurrence steps forward from original in daily or weekly increments
// until strictly after now. The stepping uses calendar days rather than fixed
// durations so a 9:00 reminder stays at 9:00 across DST transitions. The loop
// costs one iteration per elapsed period, which is fine for origins within a
// few years.
func NextOccurrence(original time.Time, rep reminder.Repeat, now time.Time) time.Time {
	days := 1
	if rep == reminder.RepeatWeekly {
		days = 7
	}

	next := original
	for !next.After(now) {
		next = next.AddDate(0, 0, days)
	}
	return next
}
