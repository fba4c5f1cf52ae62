package reminder

import (
	"time"

	"go_todo/task"
)

// Lead times subtracted from a task's due instant.
const (
	SameDayLead = time.Minute
	DefaultLead = 15 * time.Minute
)

// Trigger is the instant a reminder notification should fire for a task.
type Trigger struct {
	TaskID int64
	At     time.Time
	Lead   time.Duration
}

// Compute returns the reminder trigger for t, or false when none should be
// scheduled. Tasks due on the same calendar day as now get a one minute lead,
// everything else fifteen minutes. A trigger at or before now is dropped, as
// is any task whose due text does not parse.
func Compute(t task.Task, now time.Time) (Trigger, bool) {
	due := t.DueIn(now.Location())
	if !due.OK {
		return Trigger{}, false
	}

	lead := DefaultLead
	if sameDay(due.Time, now) {
		lead = SameDayLead
	}

	at := due.Time.Add(-lead)
	if !at.After(now) {
		return Trigger{}, false
	}

	return Trigger{TaskID: t.ID, At: at, Lead: lead}, true
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
