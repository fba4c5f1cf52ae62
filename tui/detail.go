package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go_todo/reminder"
	"go_todo/task"
)

const (
	detailMinWidth = 40
	detailMaxWidth = 100
)

func (m Model) detailView() string {
	if m.detailTask == nil {
		return ""
	}
	t := *m.detailTask
	now := m.now()
	kind := task.SectionOf(t, now)
	_, accent := taskStyle(kind)

	width := min(max(m.width-8, detailMinWidth), detailMaxWidth)

	body, scrollHint := m.detailBody(t, width-4)

	due := normalStyle.Render(t.Due)
	if !t.DueIn(now.Location()).OK {
		due += errorStyle.Render("  (unreadable date)")
	}

	rows := []string{
		inputLabelStyle.Render("Task:"),
		"",
		body,
		"",
		mutedStyle.Render(strings.Repeat("─", 33)),
		"",
		detailRow("Due", due),
		detailRow("Status", accent.Render(kind.String())),
		detailRow("Reminder", reminderLabel(t, m)),
	}
	if scrollHint != "" {
		rows = append(rows, "", inputHintStyle.Render(scrollHint))
	}
	rows = append(rows, "", inputHintStyle.Render("enter toggle  •  dd delete  •  s stop alarm  •  esc close"))

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent.GetForeground()).
		Padding(1, 2).
		Width(width).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, card)
}

// detailBody returns the visible window of the wrapped description and, when
// it does not fit, a hint describing the window.
func (m Model) detailBody(t task.Task, width int) (string, string) {
	lines := wrapText(t.Description, width)
	visible := max(m.height-15, 5)

	start := min(m.detailScroll, len(lines)-1)
	end := min(start+visible, len(lines))

	rendered := make([]string, 0, end-start)
	for _, l := range lines[start:end] {
		rendered = append(rendered, normalStyle.Render(l))
	}

	var hint string
	if len(lines) > visible {
		hint = fmt.Sprintf("(showing lines %d-%d of %d, use ↑/↓ or k/j to scroll)", start+1, end, len(lines))
	}
	return strings.Join(rendered, "\n"), hint
}

func detailRow(label, value string) string {
	return inputHintStyle.Render(label+": ") + value
}

func reminderLabel(t task.Task, m Model) string {
	if t.Completed {
		return mutedStyle.Render("none (completed)")
	}
	tr, ok := reminder.Compute(t, m.now())
	if !ok {
		return mutedStyle.Render("none")
	}
	return normalStyle.Render(fmt.Sprintf("%s (%s before)", tr.At.Format("Jan 2 3:04pm"), tr.Lead))
}

// wrapText breaks text into lines no wider than width cells, splitting at
// spaces. Words longer than width get a line of their own.
func wrapText(text string, width int) []string {
	width = max(width, 10)

	var lines []string
	var line []string
	lineWidth := 0
	for _, word := range strings.Fields(text) {
		w := lipgloss.Width(word)
		if len(line) > 0 && lineWidth+1+w > width {
			lines = append(lines, strings.Join(line, " "))
			line, lineWidth = nil, 0
		}
		if len(line) > 0 {
			lineWidth++
		}
		line = append(line, word)
		lineWidth += w
	}
	if len(line) > 0 || len(lines) == 0 {
		lines = append(lines, strings.Join(line, " "))
	}
	return lines
}
