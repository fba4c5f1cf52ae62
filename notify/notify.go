// Package notify schedules reminder notifications and reports their delivery
// and acknowledgment.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go_todo/reminder"
	"go_todo/task"
)

var (
	// ErrInPast is returned when scheduling a notification whose time has passed.
	ErrInPast = errors.New("notification time is not in the future")
	// ErrUnknownHandle is returned when acknowledging a notification that was
	// never delivered or was already acknowledged.
	ErrUnknownHandle = errors.New("unknown notification handle")
)

// Handle identifies a scheduled notification.
type Handle string

// Notification is a reminder ready to be scheduled.
type Notification struct {
	TaskID int64
	At     time.Time
	Title  string
	Body   string
}

// Delivery is a notification that has fired.
type Delivery struct {
	Handle       Handle
	Notification Notification
	DeliveredAt  time.Time
}

// Port is the scheduling mechanism reminders are handed to.
type Port interface {
	Schedule(ctx context.Context, n Notification) (Handle, error)
	// CancelAllForTask removes every pending notification for the task.
	// Cancelling a task with nothing scheduled is not an error.
	CancelAllForTask(ctx context.Context, taskID int64) error
	OnDelivered(fn func(Delivery))
	OnAcknowledged(fn func(Delivery))
}

// ForTask builds the reminder notification for a task and its trigger.
func ForTask(t task.Task, tr reminder.Trigger) Notification {
	return Notification{
		TaskID: t.ID,
		At:     tr.At,
		Title:  "Todo Reminder",
		Body:   fmt.Sprintf("Your task %q is due soon!", t.Description),
	}
}
