package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"go_todo/app"
	"go_todo/notify"
	"go_todo/task"
	"go_todo/watcher"
)

// Input modes
type inputMode int

const (
	modeNormal inputMode = iota
	modeFilter
	modeAdd
	modeAsk
	modeTheme
	modeDetail
)

// Service is the task backend the TUI drives. *app.Service satisfies it.
type Service interface {
	List(ctx context.Context) ([]task.Task, error)
	Add(ctx context.Context, text string) (task.Task, error)
	Toggle(ctx context.Context, id int64) (task.Task, error)
	Delete(ctx context.Context, id int64) error
	Ask(ctx context.Context, query string) (app.Answer, error)
	Alarming() bool
	StopAlarm(ctx context.Context)
}

// TickMsg is sent every second to refresh sections and the alarm banner
type TickMsg time.Time

// DBChangedMsg is sent when the database was modified outside the TUI
type DBChangedMsg watcher.ChangeEvent

// AlertMsg is sent when a reminder is delivered
type AlertMsg notify.Delivery

type tasksLoadedMsg struct {
	tasks []task.Task
	err   error
}

type taskAddedMsg struct {
	task task.Task
	err  error
}

type taskChangedMsg struct {
	status string
	err    error
}

type answerMsg struct {
	answer app.Answer
	err    error
}

type alarmStoppedMsg struct{}

// Model is the Bubble Tea model for the task TUI
type Model struct {
	svc      Service
	tasks    []task.Task // in display order
	dbEvents <-chan watcher.ChangeEvent
	alerts   <-chan notify.Delivery
	now      func() time.Time

	pendingDelete bool
	width         int
	height        int

	// Grid mode
	gridIndex   int
	gridColumns int
	gridScroll  int

	// Compact mode
	compactIndex  int
	compactScroll int

	// Input handling
	mode        inputMode
	filterInput textinput.Model
	addInput    textinput.Model
	askInput    textinput.Model
	inputError  string

	// Background work
	spinner spinner.Model
	adding  bool
	asking  bool

	// Last answer from the ask box
	answer      string
	answerTasks []task.Task

	// Theme picker
	themeIndex    int
	previewTheme  int
	originalTheme int

	// Detail view
	detailTask   *task.Task
	detailScroll int

	alarming bool

	// Help
	help help.Model
	keys keyMap

	// Status message (shown after actions)
	statusMessage     string
	statusMessageTime time.Time
}

// New creates a TUI model. dbEvents and alerts may be nil.
func New(svc Service, dbEvents <-chan watcher.ChangeEvent, alerts <-chan notify.Delivery) Model {
	// Apply default theme
	themes[0].applyStyles()

	fi := textinput.New()
	fi.Placeholder = "type to filter..."
	fi.CharLimit = 100
	fi.Width = 40

	ai := textinput.New()
	ai.Placeholder = "Pay rent tomorrow at 5pm"
	ai.CharLimit = 200
	ai.Width = 50

	qi := textinput.New()
	qi.Placeholder = "what is due this week?  or  search milk"
	qi.CharLimit = 300
	qi.Width = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		svc:         svc,
		dbEvents:    dbEvents,
		alerts:      alerts,
		now:         time.Now,
		mode:        modeNormal,
		filterInput: fi,
		addInput:    ai,
		askInput:    qi,
		spinner:     sp,
		help:        help.New(),
		keys:        keys,
	}
}

// Init loads the tasks and starts the tick timer and event listeners
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.loadTasks(),
		tickCmd(),
	}
	if m.dbEvents != nil {
		cmds = append(cmds, m.waitForDBChange())
	}
	if m.alerts != nil {
		cmds = append(cmds, m.waitForAlert())
	}
	return tea.Batch(cmds...)
}

// tickCmd returns a command that sends a TickMsg after 1 second
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// waitForDBChange waits for a change event from the watcher
func (m Model) waitForDBChange() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.dbEvents
		if !ok {
			return nil
		}
		return DBChangedMsg(event)
	}
}

// waitForAlert waits for the next delivered reminder
func (m Model) waitForAlert() tea.Cmd {
	return func() tea.Msg {
		d, ok := <-m.alerts
		if !ok {
			return nil
		}
		return AlertMsg(d)
	}
}
