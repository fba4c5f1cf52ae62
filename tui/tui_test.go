package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go_todo/app"
	"go_todo/notify"
	"go_todo/task"
)

var testNow = time.Date(2026, 1, 13, 12, 0, 0, 0, time.Local)

// fakeService is an in-memory Service
type fakeService struct {
	mu       sync.Mutex
	tasks    []task.Task
	nextID   int64
	alarming bool
	queries  []string
	addErr   error
}

func (f *fakeService) List(ctx context.Context) ([]task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return task.Order(f.tasks, time.Local), nil
}

func (f *fakeService) Add(ctx context.Context, text string) (task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return task.Task{}, f.addErr
	}
	f.nextID++
	t := task.Task{ID: f.nextID, Description: text, Due: "January 14, 2026 at 9:00 AM"}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeService) Toggle(ctx context.Context, id int64) (task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Completed = !f.tasks[i].Completed
			return f.tasks[i], nil
		}
	}
	return task.Task{}, errors.New("not found")
}

func (f *fakeService) Delete(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeService) Ask(ctx context.Context, query string) (app.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	return app.Answer{Text: "You have 2 tasks."}, nil
}

func (f *fakeService) Alarming() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alarming
}

func (f *fakeService) StopAlarm(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alarming = false
}

func newTestModel(t *testing.T, tasks ...task.Task) (Model, *fakeService) {
	t.Helper()
	currentLayout = LayoutCompact
	svc := &fakeService{tasks: tasks, nextID: int64(len(tasks))}
	m := New(svc, nil, nil)
	m.now = func() time.Time { return testNow }
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = update(t, m, m.loadTasks()())
	return m, svc
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// run delivers msg and then feeds the resulting command's message back in,
// which is enough for the single-step commands the model issues
func run(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	for cmd != nil {
		out := cmd()
		if out == nil {
			return m
		}
		if _, ok := out.(tea.BatchMsg); ok {
			return m
		}
		next, cmd = m.Update(out)
		m = next.(Model)
	}
	return m
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	for _, r := range text {
		m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

var sampleTasks = []task.Task{
	{ID: 1, Description: "Later task", Due: "January 20, 2026 at 9:00 AM"},
	{ID: 2, Description: "Overdue task", Due: "January 12, 2026 at 9:00 AM"},
	{ID: 3, Description: "Done task", Due: "January 13, 2026 at 3:00 PM", Completed: true},
	{ID: 4, Description: "Today task", Due: "January 13, 2026 at 5:00 PM"},
	{ID: 5, Description: "Tomorrow task", Due: "January 14, 2026 at 8:00 AM"},
}

func TestSectionsFollowDisplayOrder(t *testing.T) {
	m, _ := newTestModel(t, sampleTasks...)

	sections := m.sections()
	var kinds []task.Section
	for _, s := range sections {
		kinds = append(kinds, s.kind)
	}
	assert.Equal(t, []task.Section{task.Overdue, task.Today, task.Tomorrow, task.Later, task.Done}, kinds)

	var names []string
	for _, tk := range m.displayTasks() {
		names = append(names, tk.Description)
	}
	assert.Equal(t, []string{"Overdue task", "Today task", "Tomorrow task", "Later task", "Done task"}, names)

	view := m.View()
	for _, header := range []string{"Overdue", "Today", "Tomorrow", "Later", "Completed"} {
		assert.Contains(t, view, header)
	}
}

func TestNavigationAndToggle(t *testing.T) {
	m, svc := newTestModel(t, sampleTasks...)

	m = update(t, m, keyMsg("j"))
	sel, ok := m.selectedTask()
	require.True(t, ok)
	assert.Equal(t, "Today task", sel.Description)

	m = run(t, m, keyMsg("enter"))
	assert.Contains(t, m.statusMessage, "Completed: Today task")

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	for _, tk := range got {
		if tk.ID == 4 {
			assert.True(t, tk.Completed)
		}
	}

	// Completed tasks move to the bottom section
	names := []string{}
	for _, tk := range m.displayTasks() {
		names = append(names, tk.Description)
	}
	assert.Equal(t, "Today task", names[len(names)-1])
}

func TestDoubleDDeletes(t *testing.T) {
	m, svc := newTestModel(t, sampleTasks...)

	m = update(t, m, keyMsg("d"))
	assert.True(t, m.pendingDelete)
	assert.Len(t, svc.tasks, 5)

	m = run(t, m, keyMsg("d"))
	assert.False(t, m.pendingDelete)
	assert.Len(t, svc.tasks, 4)
	assert.Len(t, m.tasks, 4)
	assert.Contains(t, m.statusMessage, "Deleted: Overdue task")

	// Any other key cancels a pending delete
	m = update(t, m, keyMsg("d"))
	m = update(t, m, keyMsg("j"))
	assert.False(t, m.pendingDelete)
}

func TestAddTask(t *testing.T) {
	m, svc := newTestModel(t)

	assert.Contains(t, m.View(), "Welcome to Go Todo!")

	m = update(t, m, keyMsg("n"))
	require.Equal(t, modeAdd, m.mode)

	// Empty input stays in add mode
	m = update(t, m, keyMsg("enter"))
	assert.Equal(t, modeAdd, m.mode)
	assert.Equal(t, "empty input", m.inputError)

	m = typeText(t, m, "Buy milk tomorrow")
	next, cmd := m.Update(keyMsg("enter"))
	m = next.(Model)
	assert.Equal(t, modeNormal, m.mode)
	assert.True(t, m.adding)
	require.NotNil(t, cmd)

	// Run the add command directly; the batch also holds the spinner tick
	m = run(t, m, m.addTask("Buy milk tomorrow")())
	assert.False(t, m.adding)
	require.Len(t, m.tasks, 1)
	assert.Equal(t, "Buy milk tomorrow", m.tasks[0].Description)
	assert.Contains(t, m.statusMessage, "Added: Buy milk tomorrow")
	assert.Len(t, svc.tasks, 1)
}

func TestAddTaskFailureShowsStatus(t *testing.T) {
	m, svc := newTestModel(t)
	svc.addErr = errors.New("database is locked")

	m = run(t, m, m.addTask("anything")())
	assert.False(t, m.adding)
	assert.Contains(t, m.statusMessage, "database is locked")
}

func TestFilterMode(t *testing.T) {
	m, _ := newTestModel(t, sampleTasks...)

	m = update(t, m, keyMsg("/"))
	require.Equal(t, modeFilter, m.mode)
	m = typeText(t, m, "TODAY")
	m = update(t, m, keyMsg("enter"))

	assert.Equal(t, modeNormal, m.mode)
	require.Len(t, m.displayTasks(), 1)
	assert.Equal(t, "Today task", m.displayTasks()[0].Description)
	assert.Contains(t, m.View(), `Filtered: "TODAY"`)

	// esc in normal mode clears the filter
	m = update(t, m, keyMsg("esc"))
	assert.Len(t, m.displayTasks(), 5)
}

func TestAskMode(t *testing.T) {
	m, svc := newTestModel(t, sampleTasks...)

	m = update(t, m, keyMsg("a"))
	require.Equal(t, modeAsk, m.mode)
	m = typeText(t, m, "what is left?")
	m = update(t, m, keyMsg("enter"))
	assert.True(t, m.asking)
	assert.Contains(t, m.View(), "Thinking")

	m = run(t, m, m.ask("what is left?")())
	assert.False(t, m.asking)
	assert.Equal(t, "You have 2 tasks.", m.answer)
	assert.Contains(t, m.View(), "You have 2 tasks.")
	assert.Equal(t, []string{"what is left?"}, svc.queries)

	m = update(t, m, keyMsg("esc"))
	assert.Empty(t, m.answer)
}

func TestAlarmBannerAndStop(t *testing.T) {
	m, svc := newTestModel(t, sampleTasks...)
	svc.alarming = true

	m = update(t, m, AlertMsg(notify.Delivery{
		Handle:       "h1",
		Notification: notify.Notification{TaskID: 5, Body: `Your task "Tomorrow task" is due soon!`},
	}))
	assert.True(t, m.alarming)
	assert.Contains(t, m.View(), "Stop Alarm")
	assert.Contains(t, m.statusMessage, "is due soon!")

	// The alert selects the task it is about
	sel, ok := m.selectedTask()
	require.True(t, ok)
	assert.Equal(t, int64(5), sel.ID)

	m = run(t, m, keyMsg("s"))
	assert.False(t, m.alarming)
	assert.False(t, svc.Alarming())
	assert.NotContains(t, m.View(), "Stop Alarm")
}

func TestTickRefreshesAlarmState(t *testing.T) {
	m, svc := newTestModel(t, sampleTasks...)

	svc.alarming = true
	m = update(t, m, TickMsg(testNow))
	assert.True(t, m.alarming)

	svc.alarming = false
	m = update(t, m, TickMsg(testNow))
	assert.False(t, m.alarming)
}

func TestDBChangeReloads(t *testing.T) {
	m, svc := newTestModel(t, sampleTasks...)

	_, err := svc.Add(context.Background(), "Added elsewhere")
	require.NoError(t, err)

	m = update(t, m, m.loadTasks()())
	assert.Len(t, m.tasks, 6)
}

func TestDetailView(t *testing.T) {
	m, _ := newTestModel(t, sampleTasks...)

	m = update(t, m, keyMsg("j"))
	m = update(t, m, keyMsg("K"))
	require.Equal(t, modeDetail, m.mode)
	require.NotNil(t, m.detailTask)

	view := m.View()
	assert.Contains(t, view, "Today task")
	assert.Contains(t, view, "January 13, 2026 at 5:00 PM")
	// Same-day task: one minute lead
	assert.Contains(t, view, "Jan 13 4:59pm")

	m = update(t, m, keyMsg("esc"))
	assert.Equal(t, modeNormal, m.mode)
	assert.Nil(t, m.detailTask)
}

func TestLayoutToggle(t *testing.T) {
	m, _ := newTestModel(t, sampleTasks...)
	defer func() { currentLayout = LayoutCompact }()

	m = update(t, m, keyMsg("v"))
	assert.Equal(t, LayoutCard, currentLayout)
	assert.True(t, strings.Contains(m.View(), "Overdue task"))

	m = update(t, m, keyMsg("l"))
	sel, ok := m.selectedTask()
	require.True(t, ok)
	assert.Equal(t, m.displayTasks()[1].ID, sel.ID)
}

func TestThemePicker(t *testing.T) {
	m, _ := newTestModel(t)
	defer themes[0].applyStyles()

	m = update(t, m, keyMsg("t"))
	require.Equal(t, modeTheme, m.mode)
	m = update(t, m, keyMsg("j"))
	assert.Equal(t, 1, m.previewTheme)

	m = update(t, m, keyMsg("esc"))
	assert.Equal(t, 0, m.themeIndex)

	m = update(t, m, keyMsg("t"))
	m = update(t, m, keyMsg("j"))
	m = update(t, m, keyMsg("enter"))
	assert.Equal(t, 1, m.themeIndex)
}

func TestDueLabel(t *testing.T) {
	assert.Equal(t, "Jan 13 5:00pm", dueLabel(task.Task{Due: "January 13, 2026 at 5:00 PM"}, time.Local))
	assert.Equal(t, "someday", dueLabel(task.Task{Due: "someday"}, time.Local))
}

func TestWrapText(t *testing.T) {
	lines := wrapText("the quick brown fox jumps over the lazy dog", 15)
	for _, l := range lines {
		assert.LessOrEqual(t, len(l), 15)
	}
	assert.Equal(t, "the quick brown fox jumps over the lazy dog", strings.Join(lines, " "))
	assert.Equal(t, []string{""}, wrapText("", 20))
}
