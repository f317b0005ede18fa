package console

import (
	"github.com/xonecas/scrollcon/internal/finder"
	"github.com/xonecas/scrollcon/internal/viewport"
)

// Cursor is the text cursor position in backend units.
type Cursor struct {
	X, Y    int
	Visible bool
}

// ScrollInfo sizes the scrollbar.
type ScrollInfo struct {
	Offset  int // wrapped lines hidden below the view
	Max     int
	Total   int // wrapped lines in the scrollback
	Visible int // scrollback rows on screen
}

// FindState describes the find bar.
type FindState struct {
	Open          bool
	Query         string
	Cursor        int // rune offset in Query
	Index         int // current match, 0-based
	Count         int
	Line          int // current matched line, 0-based
	Lines         int
	CaseSensitive bool
}

// Frame is everything a backend needs to draw one frame.
type Frame struct {
	Rows      []viewport.Row
	Geometry  viewport.Geometry
	Selection []viewport.Rect
	Matches   []finder.Hit
	Cursor    Cursor
	Scroll    ScrollInfo
	Find      FindState
	Quit      bool
}

// Frame runs queued tasks, rebuilds the viewport if needed and returns
// the draw list. Call once per rendered frame on the UI goroutine.
func (s *Session) Frame() Frame {
	s.tasks.Drain(s)
	if s.findStale {
		s.findStale = false
		if s.FindOpen() {
			s.find.Refresh(s.store)
		}
	}

	g := s.layout.Geometry()
	if s.view.Dirty() {
		s.clampScroll()
		s.view.Build(s.store, s.prompt.Entry(), s.scroll, s.layout.VisibleRows(), g)
	}
	rows := s.view.Rows()

	f := Frame{
		Rows:      rows,
		Geometry:  g,
		Selection: s.sel.Rects(rows, g),
		Matches:   s.find.Rects(rows, g),
		Scroll: ScrollInfo{
			Offset:  s.scroll,
			Max:     s.MaxScroll(),
			Total:   s.store.TotalLines(),
			Visible: s.scrollRows(),
		},
		Quit: s.quit,
	}

	if s.FindOpen() {
		f.Find = FindState{
			Open:          true,
			Query:         s.query.Text(),
			Cursor:        s.query.Cursor(),
			Index:         s.find.Index(),
			Count:         len(s.find.Matches()),
			Line:          s.find.LineIndex(),
			Lines:         len(s.find.LineMatches()),
			CaseSensitive: s.find.CaseSensitive(),
		}
		return f
	}

	frag, col := s.prompt.CursorCell()
	for _, r := range rows {
		if r.Prompt && r.Fragment.Index == frag {
			f.Cursor = Cursor{X: g.Left + col*g.CharWidth, Y: r.Y, Visible: true}
			break
		}
	}
	return f
}
