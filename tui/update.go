package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeFilter:
			return m.updateFilterMode(msg)
		case modeAdd:
			return m.updateAddMode(msg)
		case modeAsk:
			return m.updateAskMode(msg)
		case modeTheme:
			return m.updateThemeMode(msg)
		case modeDetail:
			return m.updateDetailMode(msg)
		default:
			return m.updateNormalMode(msg)
		}

	case TickMsg:
		m.alarming = m.svc.Alarming()
		if m.statusMessage != "" && m.now().Sub(m.statusMessageTime) > statusTTL {
			m.statusMessage = ""
		}
		return m, tickCmd()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		// Calculate grid columns (card width ~40 + margin)
		m.gridColumns = (msg.Width - 4) / 40
		if m.gridColumns < 1 {
			m.gridColumns = 1
		}
		m.scrollToSelection()
		return m, nil

	case spinner.TickMsg:
		if !m.adding && !m.asking {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tasksLoadedMsg:
		if msg.err != nil {
			m.setStatus("⚠ %v", msg.err)
			return m, nil
		}
		m.tasks = msg.tasks
		m.clampSelection()
		return m, nil

	case taskAddedMsg:
		m.adding = false
		if msg.err != nil {
			m.setStatus("⚠ %v", msg.err)
			return m, nil
		}
		m.setStatus("➕ Added: %s (due %s)", msg.task.Description, msg.task.Due)
		return m, m.loadTasks()

	case taskChangedMsg:
		if msg.err != nil {
			m.setStatus("⚠ %v", msg.err)
		} else {
			m.setStatus("%s", msg.status)
		}
		return m, m.loadTasks()

	case answerMsg:
		m.asking = false
		m.answer = msg.answer.Text
		m.answerTasks = msg.answer.Tasks
		return m, nil

	case alarmStoppedMsg:
		m.alarming = m.svc.Alarming()
		m.setStatus("🔕 Alarm stopped")
		return m, nil

	case DBChangedMsg:
		if m.dbEvents == nil {
			return m, m.loadTasks()
		}
		return m, tea.Batch(m.loadTasks(), m.waitForDBChange())

	case AlertMsg:
		m.alarming = true
		m.setStatus("⏰ %s", msg.Notification.Body)
		m.selectTask(msg.Notification.TaskID)
		if m.alerts == nil {
			return m, nil
		}
		return m, m.waitForAlert()
	}

	return m, nil
}

func (m Model) updateNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle 'dd' for delete (vim-style)
	if msg.String() == "d" {
		if m.pendingDelete {
			m.pendingDelete = false
			if t, ok := m.selectedTask(); ok {
				return m, m.deleteTask(t)
			}
			return m, nil
		}
		m.pendingDelete = true
		return m, nil
	}
	m.pendingDelete = false

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.StopAlarm):
		return m, m.stopAlarm()

	case key.Matches(msg, keys.Clear):
		m.answer = ""
		m.answerTasks = nil
		m.filterInput.Reset()
		m.clampSelection()
		return m, nil

	case key.Matches(msg, keys.Theme):
		m.mode = modeTheme
		m.originalTheme = m.themeIndex
		m.previewTheme = m.themeIndex
		return m, nil

	case key.Matches(msg, keys.Layout):
		currentLayout = currentLayout.next()
		m.setStatus("Layout: %s", currentLayout)
		m.scrollToSelection()
		return m, nil

	case key.Matches(msg, keys.Filter):
		m.mode = modeFilter
		m.filterInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Add):
		if m.adding {
			return m, nil
		}
		m.mode = modeAdd
		m.addInput.Reset()
		m.addInput.Focus()
		m.inputError = ""
		return m, textinput.Blink

	case key.Matches(msg, keys.Ask):
		m.mode = modeAsk
		m.askInput.Reset()
		m.askInput.Focus()
		m.inputError = ""
		return m, textinput.Blink

	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, keys.Toggle):
		if t, ok := m.selectedTask(); ok {
			return m, m.toggleTask(t)
		}
		return m, nil

	case key.Matches(msg, keys.Detail):
		if t, ok := m.selectedTask(); ok {
			m.mode = modeDetail
			m.detailTask = &t
			m.detailScroll = 0
		}
		return m, nil
	}

	maxIdx := len(m.displayTasks()) - 1
	if maxIdx < 0 {
		maxIdx = 0
	}

	// Handle navigation in card mode
	if currentLayout == LayoutCard {
		switch {
		case key.Matches(msg, keys.Up):
			m.gridIndex -= m.gridColumns
			if m.gridIndex < 0 {
				m.gridIndex = 0
			}
		case key.Matches(msg, keys.Down):
			m.gridIndex += m.gridColumns
			if m.gridIndex > maxIdx {
				m.gridIndex = maxIdx
			}
		case msg.String() == "h" || msg.String() == "left":
			if m.gridIndex > 0 {
				m.gridIndex--
			}
		case msg.String() == "l" || msg.String() == "right":
			if m.gridIndex < maxIdx {
				m.gridIndex++
			}
		}
		m.compactIndex = m.gridIndex
		m.scrollToSelection()
		return m, nil
	}

	switch {
	case key.Matches(msg, keys.Up):
		if m.compactIndex > 0 {
			m.compactIndex--
		}
	case key.Matches(msg, keys.Down):
		if m.compactIndex < maxIdx {
			m.compactIndex++
		}
	case msg.String() == "g":
		m.compactIndex = 0
	case msg.String() == "G":
		m.compactIndex = maxIdx
	}
	m.gridIndex = m.compactIndex
	m.scrollToSelection()
	return m, nil
}

func (m Model) updateFilterMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.mode = modeNormal
		m.filterInput.Blur()
		m.filterInput.Reset()
		m.clampSelection()
		return m, nil
	case tea.KeyEnter:
		m.mode = modeNormal
		m.filterInput.Blur()
		// Keep the filter applied
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.compactIndex = 0
	m.gridIndex = 0
	m.clampSelection()
	return m, cmd
}

func (m Model) updateAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.mode = modeNormal
		m.addInput.Blur()
		m.addInput.Reset()
		m.inputError = ""
		return m, nil
	case tea.KeyEnter:
		text := strings.TrimSpace(m.addInput.Value())
		if text == "" {
			m.inputError = "empty input"
			return m, nil
		}
		m.mode = modeNormal
		m.addInput.Blur()
		m.addInput.Reset()
		m.inputError = ""
		m.adding = true
		return m, tea.Batch(m.addTask(text), m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return m, cmd
}

func (m Model) updateAskMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.mode = modeNormal
		m.askInput.Blur()
		m.askInput.Reset()
		m.inputError = ""
		return m, nil
	case tea.KeyEnter:
		query := strings.TrimSpace(m.askInput.Value())
		if query == "" {
			m.inputError = "empty question"
			return m, nil
		}
		m.mode = modeNormal
		m.askInput.Blur()
		m.inputError = ""
		m.asking = true
		m.answer = ""
		m.answerTasks = nil
		return m, tea.Batch(m.ask(query), m.spinner.Tick)
	}

	var cmd tea.Cmd
	m.askInput, cmd = m.askInput.Update(msg)
	return m, cmd
}

func (m Model) updateThemeMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		// Restore original theme
		m.themeIndex = m.originalTheme
		themes[m.themeIndex].applyStyles()
		m.mode = modeNormal
		return m, nil
	case tea.KeyEnter:
		m.themeIndex = m.previewTheme
		m.mode = modeNormal
		return m, nil
	case tea.KeyUp, tea.KeyShiftTab:
		m.previewPrevTheme()
		return m, nil
	case tea.KeyDown, tea.KeyTab:
		m.previewNextTheme()
		return m, nil
	}

	switch msg.String() {
	case "k":
		m.previewPrevTheme()
	case "j":
		m.previewNextTheme()
	}
	return m, nil
}

func (m *Model) previewPrevTheme() {
	if m.previewTheme > 0 {
		m.previewTheme--
		themes[m.previewTheme].applyStyles()
	}
}

func (m *Model) previewNextTheme() {
	if m.previewTheme < len(themes)-1 {
		m.previewTheme++
		themes[m.previewTheme].applyStyles()
	}
}

func (m Model) updateDetailMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle 'dd' for delete
	if msg.String() == "d" {
		if m.pendingDelete && m.detailTask != nil {
			t := *m.detailTask
			m.pendingDelete = false
			m.mode = modeNormal
			m.detailTask = nil
			m.detailScroll = 0
			return m, m.deleteTask(t)
		}
		m.pendingDelete = true
		return m, nil
	}
	m.pendingDelete = false

	switch msg.Type {
	case tea.KeyEscape:
		m.mode = modeNormal
		m.detailTask = nil
		m.detailScroll = 0
		return m, nil
	case tea.KeyUp:
		if m.detailScroll > 0 {
			m.detailScroll--
		}
		return m, nil
	case tea.KeyDown:
		m.detailScroll++
		return m, nil
	case tea.KeyEnter, tea.KeySpace:
		if m.detailTask != nil {
			t := *m.detailTask
			m.detailTask.Completed = !t.Completed
			return m, m.toggleTask(t)
		}
		return m, nil
	}

	switch msg.String() {
	case "k":
		if m.detailScroll > 0 {
			m.detailScroll--
		}
	case "j":
		m.detailScroll++
	case "s":
		return m, m.stopAlarm()
	}
	return m, nil
}
