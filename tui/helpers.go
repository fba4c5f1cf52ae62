package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"go_todo/task"
)

// aiTimeout bounds calls that may reach the model, retries included
const aiTimeout = 90 * time.Second

const statusTTL = 5 * time.Second

// loadTasks reads the ordered task list in the background
func (m Model) loadTasks() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		tasks, err := svc.List(context.Background())
		return tasksLoadedMsg{tasks: tasks, err: err}
	}
}

// addTask infers the due date and stores the task in the background
func (m Model) addTask(text string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), aiTimeout)
		defer cancel()
		t, err := svc.Add(ctx, text)
		return taskAddedMsg{task: t, err: err}
	}
}

func (m Model) toggleTask(t task.Task) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		updated, err := svc.Toggle(context.Background(), t.ID)
		if err != nil {
			return taskChangedMsg{err: err}
		}
		if updated.Completed {
			return taskChangedMsg{status: "✓ Completed: " + updated.Description}
		}
		return taskChangedMsg{status: "○ Reopened: " + updated.Description}
	}
}

func (m Model) deleteTask(t task.Task) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		if err := svc.Delete(context.Background(), t.ID); err != nil {
			return taskChangedMsg{err: err}
		}
		return taskChangedMsg{status: "Deleted: " + t.Description}
	}
}

func (m Model) ask(query string) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), aiTimeout)
		defer cancel()
		answer, err := svc.Ask(ctx, query)
		return answerMsg{answer: answer, err: err}
	}
}

func (m Model) stopAlarm() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		svc.StopAlarm(context.Background())
		return alarmStoppedMsg{}
	}
}

// setStatus shows a transient message under the list
func (m *Model) setStatus(format string, args ...any) {
	m.statusMessage = fmt.Sprintf(format, args...)
	m.statusMessageTime = m.now()
}

// sections groups the filtered tasks for display. Flattening the result gives
// the order selection indexes refer to.
func (m Model) sections() []section {
	now := m.now()
	groups := make(map[task.Section][]task.Task)
	for _, t := range m.getFilteredTasks() {
		s := task.SectionOf(t, now)
		groups[s] = append(groups[s], t)
	}

	var out []section
	for _, s := range []task.Section{task.Overdue, task.Today, task.Tomorrow, task.Later, task.Done} {
		if len(groups[s]) > 0 {
			out = append(out, section{kind: s, tasks: groups[s]})
		}
	}
	return out
}

type section struct {
	kind  task.Section
	tasks []task.Task
}

// displayTasks returns the filtered tasks in on-screen order
func (m Model) displayTasks() []task.Task {
	var out []task.Task
	for _, s := range m.sections() {
		out = append(out, s.tasks...)
	}
	return out
}

func (m Model) getFilteredTasks() []task.Task {
	return task.Filter(m.tasks, strings.TrimSpace(m.filterInput.Value()))
}

// selectedTask returns the currently selected task
func (m Model) selectedTask() (task.Task, bool) {
	items := m.displayTasks()

	idx := m.compactIndex
	if currentLayout == LayoutCard {
		idx = m.gridIndex
	}
	if idx < 0 || idx >= len(items) {
		return task.Task{}, false
	}
	return items[idx], true
}

// clampSelection keeps the selection inside the list after it shrank
func (m *Model) clampSelection() {
	n := len(m.displayTasks())
	maxIdx := n - 1
	if maxIdx < 0 {
		maxIdx = 0
	}
	if m.compactIndex > maxIdx {
		m.compactIndex = maxIdx
	}
	if m.gridIndex > maxIdx {
		m.gridIndex = maxIdx
	}
	m.scrollToSelection()
}

// selectTask moves the selection to the task with id, if it is shown
func (m *Model) selectTask(id int64) {
	for i, t := range m.displayTasks() {
		if t.ID == id {
			m.compactIndex = i
			m.gridIndex = i
			m.scrollToSelection()
			return
		}
	}
}

// scrollToSelection adjusts scroll offset to ensure selected item is visible
func (m *Model) scrollToSelection() {
	if currentLayout == LayoutCard {
		m.scrollGridToSelection()
	} else {
		m.scrollCompactToSelection()
	}
}

// scrollGridToSelection ensures the selected card's row is visible
func (m *Model) scrollGridToSelection() {
	if m.gridColumns < 1 {
		return
	}
	selectedRow := m.gridIndex / m.gridColumns
	visibleRows := m.visibleGridRows()

	if selectedRow < m.gridScroll {
		m.gridScroll = selectedRow
	}
	if selectedRow >= m.gridScroll+visibleRows {
		m.gridScroll = selectedRow - visibleRows + 1
	}
	if m.gridScroll < 0 {
		m.gridScroll = 0
	}
}

// scrollCompactToSelection ensures the selected item is visible
func (m *Model) scrollCompactToSelection() {
	visibleItems := m.visibleCompactItems()

	if m.compactIndex < m.compactScroll {
		m.compactScroll = m.compactIndex
	}
	if m.compactIndex >= m.compactScroll+visibleItems {
		m.compactScroll = m.compactIndex - visibleItems + 1
	}
	if m.compactScroll < 0 {
		m.compactScroll = 0
	}
}

// visibleGridRows returns how many card rows fit in the available height
func (m *Model) visibleGridRows() int {
	// Card height: 4 content + 2 border + 1 margin = 7 lines per row
	cardRowHeight := 7
	availableHeight := m.height - 6
	if availableHeight < cardRowHeight {
		return 1
	}
	return availableHeight / cardRowHeight
}

// visibleCompactItems returns how many items fit in the available height.
// Each item is 1 line, plus room for up to five section headers.
func (m *Model) visibleCompactItems() int {
	if m.height == 0 {
		return 20
	}
	availableHeight := m.height - 6
	availableHeight -= 5
	if availableHeight < 1 {
		return 1
	}
	return availableHeight
}
