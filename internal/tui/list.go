package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/Zuo-Peng/acc-hotlaps/internal/laptime"
	"github.com/Zuo-Peng/acc-hotlaps/internal/search"
)

// linesPerItem is the number of terminal lines each entry occupies.
const linesPerItem = 2

// renderList renders the left panel: leaderboard entries with scrolling.
func (m model) renderList(width, height int) string {
	if len(m.results) == 0 {
		return lipgloss.NewStyle().
			Foreground(colorDim).
			Width(width).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Render("No hotlaps")
	}

	var lines []string
	for i, r := range m.results {
		if i < m.listOffset {
			continue
		}
		if len(lines)+linesPerItem > height {
			break
		}
		lines = append(lines, formatResultLine(r, width, i == m.cursor)...)
	}

	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}

	return strings.Join(lines, "\n")
}

// formatResultLine formats a single entry as two lines:
//
//	line 1: [>] P1  lap  driver
//	line 2:    track  car (dimmed)
func formatResultLine(r search.Result, width int, selected bool) []string {
	pos := fmt.Sprintf("P%-3d", r.Position)
	if r.Position == 1 {
		pos = styleFastest.Render(pos)
	}
	lap := styleLapTime.Render(laptime.Format(r.LapTime))

	// prefix "  " + "P123" + " " + "mm:ss.mmm" + " "
	nameMax := width - 2 - 4 - 1 - 9 - 1
	if nameMax < 0 {
		nameMax = 0
	}
	name := r.Name()
	if runewidth.StringWidth(name) > nameMax {
		name = runewidth.Truncate(name, nameMax, "…")
	}

	line1 := fmt.Sprintf("%s %s %s", pos, lap, name)
	if selected {
		line1 = styleListSelected.Render("> ") + line1
	} else {
		line1 = "  " + line1
	}

	detail := r.Track + "  " + r.CarName
	detailMax := width - 4
	if detailMax < 0 {
		detailMax = 0
	}
	if runewidth.StringWidth(detail) > detailMax {
		detail = runewidth.Truncate(detail, detailMax, "")
	}
	line2 := "    " + lipgloss.NewStyle().Foreground(colorDim).Render(detail)

	return []string{line1, line2}
}

// adjustListScroll keeps the cursor visible within the list viewport.
func (m *model) adjustListScroll(listHeight int) {
	visibleItems := listHeight / linesPerItem
	if visibleItems < 1 {
		visibleItems = 1
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+visibleItems {
		m.listOffset = m.cursor - visibleItems + 1
	}
}
