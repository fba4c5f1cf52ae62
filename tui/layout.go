package tui

// LayoutMode selects how the task list is drawn
type LayoutMode int

const (
	LayoutCompact LayoutMode = iota // one line per task under section headers
	LayoutCard                      // grid of cards per section
)

func (l LayoutMode) String() string {
	if l == LayoutCard {
		return "Card"
	}
	return "Compact"
}

// next cycles to the following layout
func (l LayoutMode) next() LayoutMode {
	return (l + 1) % 2
}

// currentLayout is shared by every model so tests and the running program
// agree on it
var currentLayout LayoutMode
