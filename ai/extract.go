package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"go_todo/duedate"
)

const (
	defaultCacheSize = 256
	defaultCacheTTL  = 10 * time.Minute
)

// ErrMalformedReply is returned when the model reply holds no usable due date.
var ErrMalformedReply = errors.New("model reply is not a due date")

// Generator produces text for a prompt. *Client satisfies it.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Due is an inferred due date split the way the model answers it.
type Due struct {
	Date string `json:"dueDate"` // "March 15, 2024"
	Time string `json:"dueTime"` // "2:00 PM"
}

// Text returns the stored form, "March 15, 2024 at 2:00 PM".
func (d Due) Text() string {
	return duedate.Join(d.Date, d.Time)
}

// Now returns the due date used when nothing could be inferred.
func Now(now time.Time) Due {
	return Due{Date: duedate.FormatDate(now), Time: duedate.FormatClock(now)}
}

// Extractor infers due dates from free task text.
type Extractor struct {
	gen    Generator
	cache  *expirable.LRU[string, Due]
	logger *zap.Logger
}

// NewExtractor creates an extractor. Successful answers are cached for ttl.
func NewExtractor(gen Generator, ttl time.Duration, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Extractor{
		gen:    gen,
		cache:  expirable.NewLRU[string, Due](defaultCacheSize, nil, ttl),
		logger: logger,
	}
}

// Extract asks the model for the due date in description, relative to now.
// On error the caller is expected to fall back to Now(now).
func (e *Extractor) Extract(ctx context.Context, description string, now time.Time) (Due, error) {
	currentDate := duedate.FormatDate(now)
	key := currentDate + "\x00" + strings.TrimSpace(description)
	if due, ok := e.cache.Get(key); ok {
		return due, nil
	}

	reply, err := e.gen.GenerateText(ctx, extractionPrompt(description, now))
	if err != nil {
		return Due{}, fmt.Errorf("failed to extract due date: %w", err)
	}

	due, err := parseReply(reply, now)
	if err != nil {
		e.logger.Warn("unusable extraction reply", zap.String("reply", reply), zap.Error(err))
		return Due{}, err
	}

	e.cache.Add(key, due)
	return due, nil
}

func extractionPrompt(description string, now time.Time) string {
	currentDate := duedate.FormatDate(now)
	currentTime := duedate.FormatClock(now)

	var b strings.Builder
	fmt.Fprintf(&b, "Extract the due date and time from the following task. Today is %s and the current time is %s.\n", currentDate, currentTime)
	fmt.Fprintf(&b, "Task: %q\n\n", description)
	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "- \"today\" means %s; \"tomorrow\" and \"yesterday\" are relative to it.\n", currentDate)
	fmt.Fprintf(&b, "- If no year is given, use %d.\n", now.Year())
	b.WriteString("- If no date is mentioned, use today's date.\n")
	b.WriteString("- If no time is mentioned, use the current time.\n")
	b.WriteString("- Use full month names and 12-hour time with AM or PM.\n")
	b.WriteString("- Reply with JSON only, no other text.\n\n")
	b.WriteString(`Example: {"dueDate": "March 15, 2024", "dueTime": "2:00 PM"}`)
	return b.String()
}

// parseReply extracts the JSON object from reply, fills missing halves from
// now and checks that the result is in the stored format.
func parseReply(reply string, now time.Time) (Due, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end < start {
		return Due{}, fmt.Errorf("%w: no JSON object", ErrMalformedReply)
	}

	var due Due
	if err := json.Unmarshal([]byte(reply[start:end+1]), &due); err != nil {
		return Due{}, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	fallback := Now(now)
	due.Date = strings.TrimSpace(due.Date)
	due.Time = strings.TrimSpace(due.Time)
	if due.Date == "" {
		due.Date = fallback.Date
	}
	if due.Time == "" {
		due.Time = fallback.Time
	}

	if !duedate.ParseIn(due.Text(), now.Location()).OK {
		return Due{}, fmt.Errorf("%w: %q", ErrMalformedReply, due.Text())
	}
	return due, nil
}
