package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"go_todo/task"
)

// welcomeView renders the screen shown before the first task exists
func (m Model) welcomeView() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	hints := []struct{ key, action string }{
		{"n", "add a task"},
		{"a", "ask about your tasks"},
		{"?", "see all commands"},
	}

	lines := []string{
		welcomeTitleStyle.Render("Welcome to Go Todo!"),
		"",
		welcomeTextStyle.Render("A terminal to-do list that reminds you before things are due."),
		"",
		welcomeTextStyle.Render("Get started:"),
	}
	for _, h := range hints {
		lines = append(lines, welcomeTextStyle.Render("Press ")+welcomeHighlightStyle.Render(h.key)+welcomeTextStyle.Render(" to "+h.action))
	}
	lines = append(lines,
		"",
		welcomeTextStyle.Render("Due dates are read from the task text:"),
		inputHintStyle.Render("Pay rent tomorrow at 5pm"),
		inputHintStyle.Render("Dentist on March 3 at 9:30am"),
	)

	return lipgloss.PlaceHorizontal(width-4, lipgloss.Center, lipgloss.JoinVertical(lipgloss.Center, lines...))
}

// dueLabel shortens the stored due text for list rows. Unparsable text is
// shown as stored.
func dueLabel(t task.Task, loc *time.Location) string {
	due := t.DueIn(loc)
	if !due.OK {
		return t.Due
	}
	return due.Time.Format("Jan 2 3:04pm")
}

func taskStyle(s task.Section) (string, lipgloss.Style) {
	switch s {
	case task.Overdue:
		return "!", overdueStyle
	case task.Done:
		return "✓", completedStyle
	default:
		return "○", normalStyle
	}
}

func sectionHeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(titleStyle.GetForeground()).
		Bold(true).
		MarginTop(1)
}

func (m Model) compactViewContent() string {
	sections := m.sections()
	if len(sections) == 0 {
		return normalStyle.Render("No tasks")
	}

	totalItems := 0
	for _, s := range sections {
		totalItems += len(s.tasks)
	}

	visibleItems := m.visibleCompactItems()
	startItem := m.compactScroll
	endItem := m.compactScroll + visibleItems
	if endItem > totalItems {
		endItem = totalItems
	}

	var output []string

	if m.compactScroll > 0 {
		output = append(output, mutedStyle.Render(fmt.Sprintf("  ↑ %d more above", m.compactScroll)))
	}

	// Render only items in visible range, with section headers
	itemIdx := 0
	for _, s := range sections {
		sectionStart := itemIdx
		sectionEnd := itemIdx + len(s.tasks)
		if sectionEnd > startItem && sectionStart < endItem {
			output = append(output, sectionHeaderStyle().Render(s.kind.String()))
			output = append(output, m.renderCompactLinesInRange(s, sectionStart, startItem, endItem)...)
		}
		itemIdx = sectionEnd
	}

	if endItem < totalItems {
		output = append(output, mutedStyle.Render(fmt.Sprintf("  ↓ %d more below", totalItems-endItem)))
	}

	return strings.Join(output, "\n")
}

// renderCompactLinesInRange renders the tasks of s whose global index falls
// inside [startItem, endItem)
func (m Model) renderCompactLinesInRange(s section, sectionStart, startItem, endItem int) []string {
	loc := m.now().Location()
	var lines []string

	for i, t := range s.tasks {
		globalIdx := sectionStart + i
		if globalIdx < startItem || globalIdx >= endItem {
			continue
		}

		icon, style := taskStyle(s.kind)
		if globalIdx == m.compactIndex {
			icon = "▸"
			if s.kind != task.Overdue && s.kind != task.Done {
				style = selectedItemStyle
			}
		}

		line := fmt.Sprintf("%s %-16s %s", icon, dueLabel(t, loc), t.Description)
		lines = append(lines, style.Render(line))
	}
	return lines
}

func (m Model) themePickerView() string {
	var b strings.Builder
	b.WriteString(inputLabelStyle.Render("🎨 Select Theme"))
	b.WriteString(inputHintStyle.Render("  (↑/k ↓/j to preview, enter to select, esc to cancel)"))
	b.WriteString("\n\n")

	for i, t := range themes {
		cursor := "  "
		name := normalStyle.Render(t.Name)
		if i == m.previewTheme {
			cursor = "▸ "
			name = selectedItemStyle.Render(t.Name)
		}
		b.WriteString(cursor + name + "\n")
	}
	return b.String()
}

func (m Model) answerView() string {
	if m.asking {
		return answerBoxStyle.Render(m.spinner.View() + " Thinking...")
	}
	if m.answer == "" {
		return ""
	}

	width := m.width - 10
	if width < 30 {
		width = 30
	}

	var b strings.Builder
	b.WriteString(strings.Join(wrapText(m.answer, width), "\n"))

	loc := m.now().Location()
	for _, t := range m.answerTasks {
		b.WriteString("\n")
		icon := "○"
		if t.Completed {
			icon = "✓"
		}
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  %s %-16s %s", icon, dueLabel(t, loc), t.Description)))
	}
	b.WriteString("\n")
	b.WriteString(inputHintStyle.Render("(esc to dismiss)"))
	return answerBoxStyle.Render(b.String())
}

// View renders the UI
func (m Model) View() string {
	if m.mode == modeDetail {
		return appStyle.Render(m.detailView())
	}

	var b strings.Builder

	if m.alarming {
		b.WriteString(alarmBannerStyle.Render("⏰ Reminder! Press s to Stop Alarm"))
		b.WriteString("\n")
	}

	if len(m.tasks) == 0 && m.mode == modeNormal && !m.adding {
		b.WriteString(m.welcomeView())
	} else if currentLayout == LayoutCard {
		b.WriteString(m.gridView())
	} else {
		b.WriteString(m.compactViewContent())
	}

	if av := m.answerView(); av != "" {
		b.WriteString("\n")
		b.WriteString(av)
	}

	switch m.mode {
	case modeFilter:
		label := inputLabelStyle.Render("🔍 Filter: ")
		hint := inputHintStyle.Render("  (enter to apply, esc to cancel)")
		b.WriteString("\n")
		b.WriteString(inputBoxStyle.Render(label + m.filterInput.View() + hint))

	case modeAdd:
		label := inputLabelStyle.Render("➕ New Task: ")
		b.WriteString("\n")
		b.WriteString(inputBoxStyle.Render(label + m.addInput.View()))
		b.WriteString("\n")
		b.WriteString(inputHintStyle.Render("  Mention the due date in the text  •  Example: Call mom on Friday at 6pm"))
		m.writeInputError(&b)

	case modeAsk:
		label := inputLabelStyle.Render("💬 Ask: ")
		b.WriteString("\n")
		b.WriteString(inputBoxStyle.Render(label + m.askInput.View()))
		b.WriteString("\n")
		b.WriteString(inputHintStyle.Render("  Ask about your tasks, or type search <text> / find <text>"))
		m.writeInputError(&b)

	case modeTheme:
		b.WriteString("\n")
		b.WriteString(m.themePickerView())

	default:
		if m.filterInput.Value() != "" {
			filterIndicator := inputLabelStyle.Render(fmt.Sprintf("🔍 Filtered: %q", m.filterInput.Value()))
			clearHint := inputHintStyle.Render("  (/ to modify, esc to clear)")
			b.WriteString("\n")
			b.WriteString(filterIndicator + clearHint)
		}

		if m.adding {
			b.WriteString("\n")
			b.WriteString(mutedStyle.Render(m.spinner.View() + " Working out the due date..."))
		}

		if m.statusMessage != "" {
			b.WriteString("\n")
			b.WriteString(mutedStyle.Render(m.statusMessage))
		}

		b.WriteString("\n")
		b.WriteString(m.help.View(m.keys))
	}

	return appStyle.Render(b.String())
}

func (m Model) writeInputError(b *strings.Builder) {
	if m.inputError == "" {
		return
	}
	b.WriteString("\n")
	b.WriteString(errorStyle.Render("  ⚠ " + m.inputError))
}
