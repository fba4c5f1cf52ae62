package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"go_todo/task"
)

// fakeGenerator replays canned replies and records prompts.
type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (f *fakeGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

var extractNow = time.Date(2024, time.March, 14, 9, 5, 0, 0, time.UTC)

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{
			name:  "plain JSON",
			reply: `{"dueDate": "March 15, 2024", "dueTime": "2:00 PM"}`,
			want:  "March 15, 2024 at 2:00 PM",
		},
		{
			name:  "fenced JSON",
			reply: "```json\n{\"dueDate\": \"April 1, 2024\", \"dueTime\": \"9:30 AM\"}\n```",
			want:  "April 1, 2024 at 9:30 AM",
		},
		{
			name:  "missing time uses current time",
			reply: `{"dueDate": "March 20, 2024"}`,
			want:  "March 20, 2024 at 9:05 AM",
		},
		{
			name:  "missing date uses today",
			reply: `{"dueTime": "5:00 PM"}`,
			want:  "March 14, 2024 at 5:00 PM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{reply: tt.reply}
			e := NewExtractor(gen, time.Minute, zaptest.NewLogger(t))

			due, err := e.Extract(context.Background(), "pay rent", extractNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, due.Text())
		})
	}
}

func TestExtractFailures(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
	}{
		{name: "generator error", err: errors.New("boom")},
		{name: "no JSON", reply: "I am not sure"},
		{name: "broken JSON", reply: `{"dueDate": }`},
		{name: "wrong format", reply: `{"dueDate": "2024-03-15", "dueTime": "14:00"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{reply: tt.reply, err: tt.err}
			e := NewExtractor(gen, time.Minute, zaptest.NewLogger(t))

			_, err := e.Extract(context.Background(), "pay rent", extractNow)
			assert.Error(t, err)
		})
	}
}

func TestExtractCachesPerDay(t *testing.T) {
	gen := &fakeGenerator{reply: `{"dueDate": "March 15, 2024", "dueTime": "2:00 PM"}`}
	e := NewExtractor(gen, time.Minute, nil)
	ctx := context.Background()

	_, err := e.Extract(ctx, "pay rent", extractNow)
	require.NoError(t, err)
	_, err = e.Extract(ctx, "pay rent", extractNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls())

	// "tomorrow" means something else on another day
	_, err = e.Extract(ctx, "pay rent", extractNow.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls())
}

func TestExtractionPrompt(t *testing.T) {
	p := extractionPrompt("dentist tomorrow at 3pm", extractNow)

	assert.Contains(t, p, `"dentist tomorrow at 3pm"`)
	assert.Contains(t, p, "Today is March 14, 2024")
	assert.Contains(t, p, "current time is 9:05 AM")
	assert.Contains(t, p, "use 2024")
	assert.Contains(t, p, "JSON only")
}

func TestNow(t *testing.T) {
	assert.Equal(t, "March 14, 2024 at 9:05 AM", Now(extractNow).Text())
}

func TestAssistantAnswer(t *testing.T) {
	gen := &fakeGenerator{reply: "  You have one open task.  "}
	a := NewAssistant(gen, zaptest.NewLogger(t))

	tasks := []task.Task{
		{ID: 1, Description: "Buy milk", Due: "March 15, 2024 at 2:00 PM"},
		{ID: 2, Description: "Call mom", Due: "March 16, 2024 at 9:00 AM", Completed: true},
	}
	got := a.Answer(context.Background(), "what is left?", tasks)
	assert.Equal(t, "You have one open task.", got)

	require.Len(t, gen.prompts, 1)
	p := gen.prompts[0]
	assert.True(t, strings.HasPrefix(p, "You are a helpful assistant"))
	assert.Contains(t, p, "- Description: Buy milk, Due Date: March 15, 2024 at 2:00 PM, Completed: false")
	assert.Contains(t, p, "- Description: Call mom, Due Date: March 16, 2024 at 9:00 AM, Completed: true")
	assert.Contains(t, p, "Question: what is left?")
}

func TestAssistantAnswerFailure(t *testing.T) {
	a := NewAssistant(&fakeGenerator{err: ErrUnavailable}, nil)
	assert.Equal(t, ApologyAnswer, a.Answer(context.Background(), "anything?", nil))
}

func TestSearchTerm(t *testing.T) {
	tests := []struct {
		query string
		term  string
		ok    bool
	}{
		{"search milk", "milk", true},
		{"Find  Dentist ", "Dentist", true},
		{"search ", "", false},
		{"what is due today?", "", false},
		{"searching for", "", false},
	}

	for _, tt := range tests {
		term, ok := SearchTerm(tt.query)
		if term != tt.term || ok != tt.ok {
			t.Errorf("SearchTerm(%q) = %q, %v; want %q, %v", tt.query, term, ok, tt.term, tt.ok)
		}
	}
}
