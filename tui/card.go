package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go_todo/task"
)

func (m Model) gridView() string {
	sections := m.sections()
	if len(sections) == 0 {
		return normalStyle.Render("No tasks")
	}

	cardWidth := 38
	cols := m.gridColumns
	if cols < 1 {
		cols = 1
	}

	header := sectionHeaderStyle().MarginBottom(1)

	var out []string
	globalIdx := 0
	visibleRows := m.visibleGridRows()
	row := 0
	for _, s := range sections {
		rows := m.renderSection(s, &globalIdx, cols, cardWidth)
		var shown []string
		for _, r := range rows {
			if row >= m.gridScroll && row < m.gridScroll+visibleRows {
				shown = append(shown, r)
			}
			row++
		}
		if len(shown) > 0 {
			out = append(out, header.Render(s.kind.String()))
			out = append(out, shown...)
		}
	}

	if m.gridScroll > 0 {
		out = append([]string{mutedStyle.Render(fmt.Sprintf("  ↑ %d more rows above", m.gridScroll))}, out...)
	}
	if below := row - (m.gridScroll + visibleRows); below > 0 {
		out = append(out, mutedStyle.Render(fmt.Sprintf("  ↓ %d more rows below", below)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, out...)
}

// renderSection lays the cards of s out in rows of cols
func (m Model) renderSection(s section, globalIdx *int, cols, cardWidth int) []string {
	var rows []string
	for i := 0; i < len(s.tasks); i += cols {
		var rowCards []string
		for j := 0; j < cols && i+j < len(s.tasks); j++ {
			rowCards = append(rowCards, m.renderCard(s.tasks[i+j], s.kind, *globalIdx, cardWidth))
			*globalIdx++
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, rowCards...))
	}
	return rows
}

func (m Model) renderCard(t task.Task, kind task.Section, index, width int) string {
	isSelected := index == m.gridIndex

	_, style := taskStyle(kind)
	borderColor := style.GetForeground()
	if isSelected {
		borderColor = selectedItemStyle.GetForeground()
		if kind != task.Overdue && kind != task.Done {
			style = selectedItemStyle
		}
	}

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(borderColor).
		Padding(0, 1).
		Width(width).
		Height(4).
		MarginRight(1)

	// Wrap description to two lines at word boundaries
	maxWidth := width - 4
	lines := wrapText(t.Description, maxWidth)
	if len(lines) > 2 {
		lines = lines[:2]
		if len(lines[1]) > maxWidth-3 {
			lines[1] = lines[1][:maxWidth-3]
		}
		lines[1] += "..."
	}

	var desc []string
	for _, l := range lines {
		desc = append(desc, style.Render(l))
	}

	content := strings.Join(desc, "\n") + "\n" + mutedStyle.Render(dueLabel(t, m.now().Location()))
	return cardStyle.Render(content)
}
