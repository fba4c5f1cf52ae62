package tui

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	Name      string
	Title     lipgloss.Color
	Normal    lipgloss.Color
	Overdue   lipgloss.Color
	Completed lipgloss.Color
	Selected  lipgloss.Color
	Accent    lipgloss.Color
	Muted     lipgloss.Color
	AlarmText lipgloss.Color
}

var themes = []Theme{
	{
		Name:      "Everforest",
		Title:     lipgloss.Color("#A7C080"),
		Normal:    lipgloss.Color("#D3C6AA"),
		Overdue:   lipgloss.Color("#E67E80"),
		Completed: lipgloss.Color("#859289"),
		Selected:  lipgloss.Color("#83C092"),
		Accent:    lipgloss.Color("#7FBBB3"),
		Muted:     lipgloss.Color("#7A8478"),
		AlarmText: lipgloss.Color("#2D353B"),
	},
	{
		Name:      "Kiro Purple",
		Title:     lipgloss.Color("205"),
		Normal:    lipgloss.Color("252"),
		Overdue:   lipgloss.Color("196"),
		Completed: lipgloss.Color("241"),
		Selected:  lipgloss.Color("170"),
		Accent:    lipgloss.Color("205"),
		Muted:     lipgloss.Color("241"),
		AlarmText: lipgloss.Color("231"),
	},
	{
		Name:      "Dracula",
		Title:     lipgloss.Color("#bd93f9"),
		Normal:    lipgloss.Color("#f8f8f2"),
		Overdue:   lipgloss.Color("#ff5555"),
		Completed: lipgloss.Color("#6272a4"),
		Selected:  lipgloss.Color("#50fa7b"),
		Accent:    lipgloss.Color("#ff79c6"),
		Muted:     lipgloss.Color("#6272a4"),
		AlarmText: lipgloss.Color("#282a36"),
	},
	{
		Name:      "Nord",
		Title:     lipgloss.Color("#88c0d0"),
		Normal:    lipgloss.Color("#eceff4"),
		Overdue:   lipgloss.Color("#bf616a"),
		Completed: lipgloss.Color("#4c566a"),
		Selected:  lipgloss.Color("#a3be8c"),
		Accent:    lipgloss.Color("#81a1c1"),
		Muted:     lipgloss.Color("#4c566a"),
		AlarmText: lipgloss.Color("#2e3440"),
	},
	{
		Name:      "Solarized",
		Title:     lipgloss.Color("#268bd2"),
		Normal:    lipgloss.Color("#839496"),
		Overdue:   lipgloss.Color("#dc322f"),
		Completed: lipgloss.Color("#586e75"),
		Selected:  lipgloss.Color("#859900"),
		Accent:    lipgloss.Color("#2aa198"),
		Muted:     lipgloss.Color("#586e75"),
		AlarmText: lipgloss.Color("#fdf6e3"),
	},
	{
		Name:      "Monokai",
		Title:     lipgloss.Color("#f92672"),
		Normal:    lipgloss.Color("#f8f8f2"),
		Overdue:   lipgloss.Color("#f92672"),
		Completed: lipgloss.Color("#75715e"),
		Selected:  lipgloss.Color("#a6e22e"),
		Accent:    lipgloss.Color("#66d9ef"),
		Muted:     lipgloss.Color("#75715e"),
		AlarmText: lipgloss.Color("#272822"),
	},
}

func (t Theme) applyStyles() {
	titleStyle = lipgloss.NewStyle().
		Foreground(t.Title).
		Bold(true).
		MarginLeft(2)

	normalStyle = lipgloss.NewStyle().
		Foreground(t.Normal)

	overdueStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Overdue)

	completedStyle = lipgloss.NewStyle().
		Foreground(t.Completed).
		Strikethrough(true)

	mutedStyle = lipgloss.NewStyle().
		Foreground(t.Muted)

	selectedItemStyle = lipgloss.NewStyle().
		Foreground(t.Selected).
		Bold(true)

	inputBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Accent).
		Padding(0, 1).
		MarginTop(1).
		MarginBottom(1)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	inputHintStyle = lipgloss.NewStyle().
		Foreground(t.Muted).
		Italic(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(t.Overdue)

	alarmBannerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.AlarmText).
		Background(t.Overdue).
		Padding(0, 2).
		MarginBottom(1)

	answerBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Muted).
		Padding(0, 1).
		MarginTop(1)

	welcomeTitleStyle = lipgloss.NewStyle().
		Foreground(t.Title).
		Bold(true).
		MarginBottom(1)

	welcomeTextStyle = lipgloss.NewStyle().
		Foreground(t.Normal)

	welcomeHighlightStyle = lipgloss.NewStyle().
		Foreground(t.Selected).
		Bold(true)
}
