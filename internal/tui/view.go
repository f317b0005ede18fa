package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/xonecas/scrollcon/internal/highlight"
	"github.com/xonecas/scrollcon/internal/scrollback"
	"github.com/xonecas/scrollcon/internal/viewport"
)

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (m Model) View() tea.View {
	v := tea.NewView(m.renderContent())
	v.AltScreen = true
	v.MouseMode = tea.MouseModeAllMotion
	if x, y, ok := m.cursor(); ok {
		v.Cursor = tea.NewCursor(x, y)
	}
	return v
}

// renderContent produces the string content for the view.
func (m Model) renderContent() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}
	area := max(0, m.height-statusRows)
	textW := max(0, m.width-scrollbarCols)

	lines := make([]*viewport.Row, area)
	for i := range m.frame.Rows {
		if y := m.frame.Rows[i].Y; y >= 0 && y < area {
			lines[y] = &m.frame.Rows[i]
		}
	}
	bar := m.scrollbar(area)

	var b strings.Builder
	for y := 0; y < area; y++ {
		if r := lines[y]; r != nil {
			b.WriteString(m.renderRow(*r, textW))
		} else {
			b.WriteString(strings.Repeat(" ", textW))
		}
		b.WriteString(bar[y])
		b.WriteByte('\n')
	}
	b.WriteString(m.renderStatus())
	return b.String()
}

// Overlay layers, lowest first.
const (
	layerNone uint8 = iota
	layerSelected
	layerMatch
	layerCurrent
)

// cell is one rendered character and its style key.
type cell struct {
	ch     rune
	fg     string
	bold   bool
	italic bool
	layer  uint8
}

func (c cell) sameStyle(o cell) bool {
	return c.fg == o.fg && c.bold == o.bold && c.italic == o.italic && c.layer == o.layer
}

// renderRow draws one fragment padded to width, with syntax colours and
// the selection and search overlays.
func (m Model) renderRow(r viewport.Row, width int) string {
	cells := make([]cell, 0, width)
	spans := m.rowSpans(r)
	si := 0
	for i, ch := range r.Fragment.Text {
		if len(cells) == width {
			break
		}
		if ch < ' ' {
			ch = ' '
		}
		c := cell{ch: ch, fg: r.Color}
		for si < len(spans) && spans[si].End <= i {
			si++
		}
		if si < len(spans) && spans[si].Start <= i {
			sp := spans[si]
			if sp.Color != "" {
				c.fg = sp.Color
			}
			c.bold, c.italic = sp.Bold, sp.Italic
		}
		cells = append(cells, c)
	}
	for len(cells) < width {
		cells = append(cells, cell{ch: ' '})
	}

	paint := func(rc viewport.Rect, layer uint8) {
		if rc.Y != r.Y {
			return
		}
		for x := max(0, rc.X); x < min(width, rc.X+rc.W); x++ {
			cells[x].layer = max(cells[x].layer, layer)
		}
	}
	for _, rc := range m.frame.Selection {
		paint(rc, layerSelected)
	}
	for _, hit := range m.frame.Matches {
		if hit.Current {
			paint(hit.Rect, layerCurrent)
		} else {
			paint(hit.Rect, layerMatch)
		}
	}

	var b strings.Builder
	run := make([]rune, 0, width)
	for i := 0; i < len(cells); {
		j := i
		run = run[:0]
		for j < len(cells) && cells[j].sameStyle(cells[i]) {
			run = append(run, cells[j].ch)
			j++
		}
		b.WriteString(m.cellStyle(cells[i]).Render(string(run)))
		i = j
	}
	return b.String()
}

func (m Model) cellStyle(c cell) lipgloss.Style {
	st := lipgloss.NewStyle()
	if c.fg != "" {
		st = st.Foreground(lipgloss.Color(c.fg))
	}
	if c.bold {
		st = st.Bold(true)
	}
	if c.italic {
		st = st.Italic(true)
	}
	switch c.layer {
	case layerSelected:
		st = st.Background(m.styles.Selection)
	case layerMatch:
		st = st.Background(m.styles.Match)
	case layerCurrent:
		st = st.Background(m.styles.CurrentMatch).Foreground(m.styles.CurrentFg)
	}
	return st
}

// rowSpans returns the syntax spans of an input row, relative to the
// fragment. Output rows have none.
func (m Model) rowSpans(r viewport.Row) []highlight.Span {
	if r.Kind != scrollback.Input {
		return nil
	}
	var text string
	if r.Prompt {
		text = m.session.Prompt().Entry().Text
	} else if e, ok := m.session.Store().Lookup(r.EntryID); ok {
		text = e.Text
	}
	return highlight.Clip(m.entrySpans(r.EntryID, text), r.Fragment.Start, r.Fragment.End)
}

// maxCachedSpans bounds the span cache; it is dropped when full.
const maxCachedSpans = 4096

// entrySpans highlights an input line: the prompt prefix in the prompt
// colour, the command through Chroma.
func (m Model) entrySpans(id int64, text string) []highlight.Span {
	if c, ok := m.spans[id]; ok && c.text == text {
		return c.spans
	}
	prefix := m.session.Prompt().PromptText()
	if !strings.HasPrefix(text, prefix) {
		prefix = ""
	}
	var spans []highlight.Span
	if prefix != "" {
		spans = append(spans, highlight.Span{Start: 0, End: len(prefix), Color: m.styles.Prompt})
	}
	for _, sp := range highlight.Spans(text[len(prefix):], inputLanguage, m.theme) {
		sp.Start += len(prefix)
		sp.End += len(prefix)
		spans = append(spans, sp)
	}
	if len(m.spans) >= maxCachedSpans {
		clear(m.spans)
	}
	m.spans[id] = cachedSpans{text: text, spans: spans}
	return spans
}

// scrollbar returns one cell per console row. The bar spans the
// scrollback rows and is blank when everything fits.
func (m Model) scrollbar(area int) []string {
	bar := make([]string, area)
	for i := range bar {
		bar[i] = " "
	}
	s := m.frame.Scroll
	if s.Visible <= 0 || s.Total <= s.Visible || s.Max <= 0 {
		return bar
	}
	size := max(1, s.Visible*s.Visible/s.Total)
	top := (s.Max - s.Offset) * (s.Visible - size) / s.Max
	for y := 0; y < s.Visible && y < area; y++ {
		if y >= top && y < top+size {
			bar[y] = m.styles.Thumb.Render("┃")
		} else {
			bar[y] = m.styles.Track.Render("│")
		}
	}
	return bar
}
