package scheduler

import (
	"encoding/json"
	"fmt"

	"fitQuestAPI/internal/types/reminder"
)

type MessageType string

const (
	// MsgSchedule arms (or, for a disabled reminder, disarms) a single reminder.
	MsgSchedule MessageType = "SCHEDULE_NOTIFICATION"
	// MsgCancel disarms a single reminder by id.
	MsgCancel MessageType = "CANCEL_NOTIFICATION"
	// MsgList replaces the full set of armed timers.
	MsgList MessageType = "SCHEDULED_NOTIFICATIONS_LIST"
	// MsgGetScheduled is sent back to the caller on startup so it can answer
	// with a MsgList carrying the true reminder set.
	MsgGetScheduled MessageType = "GET_SCHEDULED_NOTIFICATIONS"
)

// Message is the control-channel envelope between the host and the scheduler.
type Message struct {
	Type          MessageType         `json:"type"`
	ID            string              `json:"id,omitempty"`
	Notification  *reminder.Reminder  `json:"notification,omitempty"`
	Notifications []reminder.Reminder `json:"notifications,omitempty"`
}

// ResyncRequest is the message the host emits on activation to ask the caller
// for the current reminder list.
func ResyncRequest() Message {
	return Message{Type: MsgGetScheduled}
}

// Dispatch applies a control message to the scheduler. Unknown message types
// and missing payloads are errors; everything the scheduler itself rejects
// (past one-shots, out-of-bounds delays) stays silent per its contract.
func (s *Scheduler) Dispatch(msg Message) error {
	switch msg.Type {
	case MsgSchedule:
		if msg.Notification == nil {
			return fmt.Errorf("%s message without notification", MsgSchedule)
		}
		if !msg.Notification.Enabled {
			s.Cancel(msg.Notification.ID)
			return nil
		}
		s.Schedule(*msg.Notification)
		return nil

	case MsgCancel:
		if msg.ID == "" {
			return fmt.Errorf("%s message without id", MsgCancel)
		}
		s.Cancel(msg.ID)
		return nil

	case MsgList:
		s.ReplaceAll(msg.Notifications)
		return nil

	default:
		return fmt.Errorf("unknown scheduler message type %q", msg.Type)
	}
}

// HandleMessage decodes a raw control message and dispatches it.
func (s *Scheduler) HandleMessage(raw []byte) error {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("failed to decode scheduler message: %w", err)
	}
	return s.Dispatch(msg)
}
