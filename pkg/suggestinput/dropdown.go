package suggestinput

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
)

const (
	activeMarker   = "> "
	inactiveMarker = "  "
	ellipsis       = "…"
)

// View renders the text row and, when open, the dropdown below it.
func (m Model) View() string {
	if m.disabled {
		return m.Styles.Disabled.Render(m.input.Prompt + m.input.Value())
	}

	text := m.input.View()
	if !m.Open() {
		return text
	}

	return text + "\n" + m.dropdownView()
}

// Height returns the number of lines View renders.
func (m Model) Height() int {
	if !m.Open() {
		return 1
	}
	return 1 + m.visibleRows()
}

// Contains reports whether the cell at x, y belongs to the input: its text row
// or one of its visible dropdown rows.
func (m Model) Contains(x, y int) bool {
	_, ok := m.hitTest(x, y)
	return ok
}

func (m Model) dropdownView() string {
	width := m.boxWidth()
	start := m.windowStart()
	end := start + m.visibleRows()

	var b strings.Builder
	for i := start; i < end; i++ {
		marker, style := inactiveMarker, m.Styles.Row
		if i == m.active {
			marker, style = activeMarker, m.Styles.ActiveRow
		}

		label := truncate.StringWithTail(m.filtered[i], uint(max(width-len(marker), 1)), ellipsis)
		b.WriteString(style.Width(width).Render(marker + label))
		if i < end-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// hitTest maps a screen cell to a dropdown row. Row -1 is the text row.
func (m Model) hitTest(x, y int) (int, bool) {
	if x < m.originX || x >= m.originX+m.boxWidth() {
		return 0, false
	}

	dy := y - m.originY
	switch {
	case dy == 0:
		return -1, true
	case dy > 0 && m.Open() && dy <= m.visibleRows():
		return m.windowStart() + dy - 1, true
	}

	return 0, false
}

// boxWidth is the width shared by the text row and the dropdown rows: prompt,
// text area and the trailing cursor cell.
func (m Model) boxWidth() int {
	width := m.input.Width
	if width <= 0 {
		width = defaultWidth
	}
	return runewidth.StringWidth(m.input.Prompt) + width + 1
}

func (m Model) visibleRows() int {
	height := m.maxHeight
	if height <= 0 {
		height = DefaultMaxHeight
	}
	return min(len(m.filtered), height)
}

// windowStart is the first filtered entry shown. The window only moves once
// the highlight would fall off its bottom edge, and it always stays full.
func (m Model) windowStart() int {
	rows := m.visibleRows()
	if rows == 0 || m.active < rows {
		return 0
	}
	return m.active - rows + 1
}
