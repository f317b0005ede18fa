package tui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

// findLabel precedes the query in the status bar.
const findLabel = "find: "

// renderStatus draws the bottom row: the find bar while searching,
// otherwise key help and the scroll position.
func (m Model) renderStatus() string {
	var left, right string
	if f := m.frame.Find; f.Open {
		left = m.styles.FindLabel.Render(findLabel) + m.styles.StatusText.Render(f.Query)
		var parts []string
		switch {
		case f.Query == "":
		case f.Count == 0:
			parts = append(parts, m.styles.Error.Render("no matches"))
		default:
			parts = append(parts, m.styles.StatusDim.Render(fmt.Sprintf("%d/%d", f.Index+1, f.Count)))
		}
		if f.CaseSensitive {
			parts = append(parts, m.styles.StatusDim.Render("Aa"))
		}
		right = strings.Join(parts, " ")
	} else {
		if s := m.frame.Scroll; s.Offset > 0 {
			right = m.styles.StatusDim.Render(fmt.Sprintf("↑%d", s.Offset))
		}
		h := m.help
		h.SetWidth(max(1, m.width-lipgloss.Width(right)-1))
		left = h.ShortHelpView(m.keys.ShortHelp())
	}

	gap := max(0, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return ansi.Truncate(left+strings.Repeat(" ", gap)+right, m.width, "…")
}

// cursor places the terminal cursor on the prompt, or in the find bar
// while it has focus.
func (m Model) cursor() (x, y int, ok bool) {
	if f := m.frame.Find; f.Open {
		q := []rune(f.Query)
		col := ansi.StringWidth(findLabel + string(q[:min(f.Cursor, len(q))]))
		return min(col, m.width-1), m.height - 1, m.width > 0
	}
	c := m.frame.Cursor
	if !c.Visible || c.X >= m.width-scrollbarCols || c.Y < 0 || c.Y >= m.height-statusRows {
		return 0, 0, false
	}
	return c.X, c.Y, true
}
