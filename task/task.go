package task

import (
	"sort"
	"strings"
	"time"

	"go_todo/duedate"
)

// Task is a single to-do item as stored.
type Task struct {
	ID          int64
	Description string
	Completed   bool
	Due         string // display format, see duedate.Layout
}

// DueIn parses the task's due text in loc.
func (t Task) DueIn(loc *time.Location) duedate.Result {
	return duedate.ParseIn(t.Due, loc)
}

// Order returns a copy of tasks with incomplete tasks first, then ascending by
// due instant. Ties keep their input order.
func Order(tasks []Task, loc *time.Location) []Task {
	type keyed struct {
		task Task
		due  duedate.Result
	}

	ks := make([]keyed, len(tasks))
	for i, t := range tasks {
		ks[i] = keyed{task: t, due: t.DueIn(loc)}
	}

	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].task.Completed != ks[j].task.Completed {
			return !ks[i].task.Completed
		}
		return ks[i].due.Before(ks[j].due)
	})

	ordered := make([]Task, len(ks))
	for i, k := range ks {
		ordered[i] = k.task
	}
	return ordered
}

// Filter returns the tasks whose description contains text, ignoring case.
// An empty text matches everything.
func Filter(tasks []Task, text string) []Task {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return tasks
	}
	var filtered []Task
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Description), text) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// Section groups tasks for display
type Section int

const (
	Overdue Section = iota
	Today
	Tomorrow
	Later
	Done
)

func (s Section) String() string {
	switch s {
	case Overdue:
		return "Overdue"
	case Today:
		return "Today"
	case Tomorrow:
		return "Tomorrow"
	case Later:
		return "Later"
	case Done:
		return "Completed"
	default:
		return "unknown"
	}
}

// SectionOf classifies a task relative to now. Tasks with unparsable due text
// count as overdue.
func SectionOf(t Task, now time.Time) Section {
	if t.Completed {
		return Done
	}

	due := t.DueIn(now.Location())
	if !due.OK || !due.Time.After(now) {
		return Overdue
	}

	todayEnd := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	tomorrowEnd := todayEnd.AddDate(0, 0, 1)

	switch {
	case due.Time.Before(todayEnd):
		return Today
	case due.Time.Before(tomorrowEnd):
		return Tomorrow
	default:
		return Later
	}
}
