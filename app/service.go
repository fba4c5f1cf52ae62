// Package app wires the task store, due date extraction, reminder scheduling
// and alarm playback into the operations the CLI and TUI call.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"go_todo/ai"
	"go_todo/duedate"
	"go_todo/metrics"
	"go_todo/notify"
	"go_todo/reminder"
	"go_todo/task"
)

const (
	searchFailedText = "Sorry, I couldn't perform the search."
	queryFailedText  = "Sorry, I couldn't process your query at this time."
)

// ErrEmptyDescription is returned when adding a task with no text.
var ErrEmptyDescription = errors.New("task description is empty")

// Store is the persistence the service needs.
type Store interface {
	ListAll(ctx context.Context) ([]task.Task, error)
	Get(ctx context.Context, id int64) (task.Task, error)
	Insert(ctx context.Context, description, due string) (int64, error)
	Toggle(ctx context.Context, id int64) (task.Task, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, text string) ([]task.Task, error)
}

// Extractor infers a due date from task text.
type Extractor interface {
	Extract(ctx context.Context, description string, now time.Time) (ai.Due, error)
}

// Assistant answers questions about tasks.
type Assistant interface {
	Answer(ctx context.Context, question string, tasks []task.Task) string
}

// Notifier is a notification port the user can acknowledge deliveries on.
// Pending lists the notifications still waiting to fire.
type Notifier interface {
	notify.Port
	Acknowledge(ctx context.Context, h notify.Handle) error
	Pending() []notify.Notification
}

// Alarm plays the reminder sound. *alarm.Guard satisfies it.
type Alarm interface {
	Play(ctx context.Context, resource string, loop bool)
	Stop(ctx context.Context)
	IsPlaying() bool
}

// Options configures a Service. Store, Extractor, Assistant and Notifier are
// required; Alarm may be nil for commands that never deliver reminders.
type Options struct {
	Store     Store
	Extractor Extractor
	Assistant Assistant
	Notifier  Notifier
	Alarm     Alarm
	SoundFile string
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Now       func() time.Time
}

// Answer is the reply to an Ask query.
type Answer struct {
	Text  string
	Tasks []task.Task // set for search queries
}

// Service implements the task operations.
type Service struct {
	store     Store
	extractor Extractor
	assistant Assistant
	notifier  Notifier
	alarm     Alarm
	soundFile string
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time

	alerts chan notify.Delivery

	mu          sync.Mutex
	outstanding []notify.Handle
}

// New creates a service and subscribes to notifier deliveries.
func New(opts Options) *Service {
	s := &Service{
		store:     opts.Store,
		extractor: opts.Extractor,
		assistant: opts.Assistant,
		notifier:  opts.Notifier,
		alarm:     opts.Alarm,
		soundFile: opts.SoundFile,
		metrics:   opts.Metrics,
		logger:    opts.Logger,
		now:       opts.Now,
		alerts:    make(chan notify.Delivery, 16),
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.notifier.OnDelivered(s.handleDelivered)
	s.notifier.OnAcknowledged(s.handleAcknowledged)
	return s
}

// Alerts receives every delivered reminder. Deliveries are dropped when
// nobody is reading.
func (s *Service) Alerts() <-chan notify.Delivery {
	return s.alerts
}

// Add infers the due date of text, stores the task and schedules its reminder.
// Extraction failures fall back to the current time; scheduling failures are
// logged and never fail the add.
func (s *Service) Add(ctx context.Context, text string) (task.Task, error) {
	description := strings.TrimSpace(text)
	if description == "" {
		return task.Task{}, ErrEmptyDescription
	}

	now := s.now()
	due, err := s.extractor.Extract(ctx, description, now)
	if err != nil {
		s.logger.Warn("due date extraction failed, using current time",
			zap.String("description", description), zap.Error(err))
		s.metrics.ExtractionsFailed.Inc()
		due = ai.Now(now)
	}

	id, err := s.store.Insert(ctx, description, due.Text())
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to add task: %w", err)
	}
	s.metrics.TasksCreated.Inc()

	t := task.Task{ID: id, Description: description, Due: due.Text()}
	s.logger.Info("task added", zap.Int64("task_id", id), zap.String("due", t.Due))

	s.schedule(ctx, t)
	return t, nil
}

// Toggle flips completion. Completed tasks lose their reminder, reopened
// tasks get one again if it is still ahead.
func (s *Service) Toggle(ctx context.Context, id int64) (task.Task, error) {
	t, err := s.store.Toggle(ctx, id)
	if err != nil {
		return task.Task{}, fmt.Errorf("failed to toggle task: %w", err)
	}
	s.schedule(ctx, t)
	return t, nil
}

// Delete cancels the task's reminder and removes it.
func (s *Service) Delete(ctx context.Context, id int64) error {
	s.cancel(ctx, id)
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	s.logger.Info("task deleted", zap.Int64("task_id", id))
	return nil
}

// List returns every task, open ones first, each group by due date.
func (s *Service) List(ctx context.Context) ([]task.Task, error) {
	tasks, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return task.Order(tasks, s.now().Location()), nil
}

// Search returns tasks matching text in display order. When nothing matches,
// every task is returned.
func (s *Service) Search(ctx context.Context, text string) ([]task.Task, error) {
	tasks, err := s.store.Search(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to search tasks: %w", err)
	}
	return task.Order(tasks, s.now().Location()), nil
}

// Ask answers a free-form query. "search X" and "find X" run a text search;
// anything else goes to the assistant. The returned Answer always carries a
// displayable text, also when err is non-nil.
func (s *Service) Ask(ctx context.Context, query string) (Answer, error) {
	if term, ok := ai.SearchTerm(query); ok {
		results, err := s.Search(ctx, term)
		if err != nil {
			s.logger.Error("search failed", zap.String("term", term), zap.Error(err))
			return Answer{Text: searchFailedText}, err
		}

		n := len(task.Filter(results, term))
		if n == 0 {
			return Answer{Text: fmt.Sprintf("No todos found matching %q", term), Tasks: results}, nil
		}
		return Answer{Text: fmt.Sprintf("Found %d todo(s) matching %q", n, term), Tasks: results}, nil
	}

	tasks, err := s.List(ctx)
	if err != nil {
		s.logger.Error("query failed", zap.String("query", query), zap.Error(err))
		return Answer{Text: queryFailedText}, err
	}
	return Answer{Text: s.assistant.Answer(ctx, query, tasks)}, nil
}

// Resync schedules reminders for every open task and cancels reminders of
// tasks no longer in the store, e.g. deleted by another process. It returns
// the number of reminders scheduled.
func (s *Service) Resync(ctx context.Context) (int, error) {
	tasks, err := s.store.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load tasks: %w", err)
	}

	known := make(map[int64]bool, len(tasks))
	for _, t := range tasks {
		known[t.ID] = true
	}
	for _, n := range s.notifier.Pending() {
		if !known[n.TaskID] {
			s.logger.Info("cancelling reminder of removed task", zap.Int64("task_id", n.TaskID))
			s.cancel(ctx, n.TaskID)
		}
	}

	n := 0
	for _, t := range tasks {
		if s.schedule(ctx, t) {
			n++
		}
	}
	s.logger.Info("reminders resynced", zap.Int("scheduled", n), zap.Int("tasks", len(tasks)))
	return n, nil
}

// Alarming reports whether the reminder alarm is sounding.
func (s *Service) Alarming() bool {
	return s.alarm != nil && s.alarm.IsPlaying()
}

// StopAlarm acknowledges every outstanding reminder and silences the alarm.
func (s *Service) StopAlarm(ctx context.Context) {
	s.mu.Lock()
	handles := s.outstanding
	s.outstanding = nil
	s.mu.Unlock()

	for _, h := range handles {
		if err := s.notifier.Acknowledge(ctx, h); err != nil && !errors.Is(err, notify.ErrUnknownHandle) {
			s.logger.Warn("failed to acknowledge reminder", zap.String("handle", string(h)), zap.Error(err))
		}
	}
	if s.alarm != nil {
		s.alarm.Stop(ctx)
	}
}

// schedule replaces any reminder for t with a fresh one. It reports whether
// a reminder was scheduled.
func (s *Service) schedule(ctx context.Context, t task.Task) bool {
	s.cancel(ctx, t.ID)
	if t.Completed {
		return false
	}

	now := s.now()
	trigger, ok := reminder.Compute(t, now)
	if !ok {
		reason := "past"
		if !duedate.ParseIn(t.Due, now.Location()).OK {
			reason = "unparsed"
			s.logger.Warn("malformed due date", zap.Int64("task_id", t.ID), zap.String("due", t.Due))
		}
		s.metrics.RemindersSkipped.WithLabelValues(reason).Inc()
		return false
	}

	h, err := s.notifier.Schedule(ctx, notify.ForTask(t, trigger))
	if err != nil {
		reason := "error"
		if errors.Is(err, notify.ErrInPast) {
			reason = "past"
		}
		s.metrics.RemindersSkipped.WithLabelValues(reason).Inc()
		s.logger.Warn("failed to schedule reminder", zap.Int64("task_id", t.ID), zap.Error(err))
		return false
	}

	s.metrics.RemindersScheduled.Inc()
	s.logger.Debug("reminder scheduled",
		zap.Int64("task_id", t.ID),
		zap.String("handle", string(h)),
		zap.Time("at", trigger.At),
		zap.Duration("lead", trigger.Lead))
	return true
}

func (s *Service) cancel(ctx context.Context, id int64) {
	if err := s.notifier.CancelAllForTask(ctx, id); err != nil {
		s.logger.Warn("failed to cancel reminders", zap.Int64("task_id", id), zap.Error(err))
	}
}

func (s *Service) handleDelivered(d notify.Delivery) {
	s.mu.Lock()
	s.outstanding = append(s.outstanding, d.Handle)
	s.mu.Unlock()

	if s.alarm != nil && s.soundFile != "" {
		s.alarm.Play(context.Background(), s.soundFile, true)
		s.metrics.AlarmsPlayed.Inc()
	}

	select {
	case s.alerts <- d:
	default:
		s.logger.Warn("alert dropped", zap.Int64("task_id", d.Notification.TaskID))
	}
}

func (s *Service) handleAcknowledged(d notify.Delivery) {
	s.mu.Lock()
	for i, h := range s.outstanding {
		if h == d.Handle {
			s.outstanding = append(s.outstanding[:i], s.outstanding[i+1:]...)
			break
		}
	}
	remaining := len(s.outstanding)
	s.mu.Unlock()

	if remaining == 0 && s.alarm != nil {
		s.alarm.Stop(context.Background())
	}
}
