package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go_todo/duedate"
	"go_todo/task"
)

func TestCompute(t *testing.T) {
	// Saturday, May 10, 2025 at 2:00 PM
	now := time.Date(2025, 5, 10, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		due      string
		wantOK   bool
		wantAt   time.Time
		wantLead time.Duration
	}{
		{
			name:     "same day ten minutes out",
			due:      "May 10, 2025 at 2:10 PM",
			wantOK:   true,
			wantAt:   time.Date(2025, 5, 10, 14, 9, 0, 0, time.UTC),
			wantLead: SameDayLead,
		},
		{
			name:     "tomorrow uses fifteen minutes",
			due:      "May 11, 2025 at 9:00 AM",
			wantOK:   true,
			wantAt:   time.Date(2025, 5, 11, 8, 45, 0, 0, time.UTC),
			wantLead: DefaultLead,
		},
		{
			name:     "just after midnight tomorrow crosses back into today",
			due:      "May 11, 2025 at 12:05 AM",
			wantOK:   true,
			wantAt:   time.Date(2025, 5, 10, 23, 50, 0, 0, time.UTC),
			wantLead: DefaultLead,
		},
		{
			name:   "same day trigger lands exactly on now",
			due:    "May 10, 2025 at 2:01 PM",
			wantOK: false,
		},
		{
			name:   "already due",
			due:    "May 10, 2025 at 2:00 PM",
			wantOK: false,
		},
		{
			name:   "past",
			due:    "May 9, 2025 at 2:00 PM",
			wantOK: false,
		},
		{
			name:   "unparsed never fires",
			due:    "whenever",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := task.Task{ID: 42, Description: "test", Due: tt.due}

			got, ok := Compute(tk, now)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				assert.Equal(t, Trigger{}, got)
				return
			}

			assert.Equal(t, int64(42), got.TaskID)
			assert.True(t, got.At.Equal(tt.wantAt), "At = %v, want %v", got.At, tt.wantAt)
			assert.Equal(t, tt.wantLead, got.Lead)
		})
	}
}

func TestComputeNeverReturnsPastTrigger(t *testing.T) {
	now := time.Date(2025, 5, 10, 14, 0, 0, 0, time.UTC)

	// Sweep due times from two days ago to two days ahead
	for due := now.Add(-48 * time.Hour); due.Before(now.Add(48 * time.Hour)); due = due.Add(7 * time.Minute) {
		tk := task.Task{ID: 1, Due: duedate.Format(due)}
		got, ok := Compute(tk, now)
		if ok && !got.At.After(now) {
			t.Fatalf("Compute(%q) = %v, not after now %v", tk.Due, got.At, now)
		}
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	now := time.Date(2025, 5, 10, 14, 0, 0, 0, time.UTC)
	tk := task.Task{ID: 7, Due: "May 12, 2025 at 10:00 AM"}

	a, okA := Compute(tk, now)
	b, okB := Compute(tk, now)
	assert.Equal(t, okA, okB)
	assert.Equal(t, a, b)
}
