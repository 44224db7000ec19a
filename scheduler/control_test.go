package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fitQuestAPI/internal/types/reminder"
)

func TestDispatch_Schedule(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	s := New(clock, (&showRecorder{}).show)

	r := testReminder("r1", clock.Now().Add(time.Hour), reminder.RepeatNone)
	err := s.Dispatch(Message{Type: MsgSchedule, Notification: &r})

	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestDispatch_ScheduleDisabledCancels(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	s := New(clock, (&showRecorder{}).show)

	r := testReminder("r1", clock.Now().Add(time.Hour), reminder.RepeatNone)
	s.Schedule(r)

	r.Enabled = false
	require.NoError(t, s.Dispatch(Message{Type: MsgSchedule, Notification: &r}))
	assert.Equal(t, 0, s.Len())
}

func TestDispatch_List(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	s := New(clock, (&showRecorder{}).show)

	err := s.Dispatch(Message{Type: MsgList, Notifications: []reminder.Reminder{
		testReminder("r1", clock.Now().Add(time.Hour), reminder.RepeatNone),
		testReminder("r2", clock.Now().Add(2*time.Hour), reminder.RepeatDaily),
	}})

	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestDispatch_Errors(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	s := New(clock, (&showRecorder{}).show)

	assert.Error(t, s.Dispatch(Message{Type: MsgSchedule}))
	assert.Error(t, s.Dispatch(Message{Type: MsgCancel}))
	assert.Error(t, s.Dispatch(Message{Type: "BOGUS"}))
}

func TestHandleMessage_JSON(t *testing.T) {
	clock := newFakeClock(time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC))
	s := New(clock, (&showRecorder{}).show)

	raw := []byte(`{
		"type": "SCHEDULE_NOTIFICATION",
		"notification": {
			"id": "r1",
			"title": "Log your workout",
			"body": "Your challenge is waiting",
			"scheduled_at": "2026-03-02T09:00:00Z",
			"enabled": true
		}
	}`)

	require.NoError(t, s.HandleMessage(raw))
	assert.Equal(t, 1, s.Len())

	assert.Error(t, s.HandleMessage([]byte(`{not json`)))
}

func TestResyncRequest(t *testing.T) {
	assert.Equal(t, MsgGetScheduled, ResyncRequest().Type)
}
