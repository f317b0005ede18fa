// Package selection tracks a text range over wrapped entries, independent
// of what is currently on screen.
package selection

import (
	"strings"

	"github.com/xonecas/scrollcon/internal/scrollback"
	"github.com/xonecas/scrollcon/internal/viewport"
)

// NoEntry marks an anchor that points at nothing.
const NoEntry int64 = -1

// Anchor is one end of a selection. Column is a cell column inside the
// fragment; the end column of a range is exclusive.
type Anchor struct {
	EntryID  int64
	Fragment int
	Column   int
}

var none = Anchor{EntryID: NoEntry}

// Valid reports whether the anchor points at an entry.
func (a Anchor) Valid() bool { return a.EntryID != NoEntry }

// Less orders anchors by entry id, then fragment, then column.
func (a Anchor) Less(b Anchor) bool {
	if a.EntryID != b.EntryID {
		return a.EntryID < b.EntryID
	}
	if a.Fragment != b.Fragment {
		return a.Fragment < b.Fragment
	}
	return a.Column < b.Column
}

// Selection is a range between two anchors in either order.
type Selection struct {
	Begin Anchor
	End   Anchor
}

// New returns an inactive selection.
func New() *Selection {
	return &Selection{Begin: none, End: none}
}

// Active reports whether both ends point at entries.
func (s *Selection) Active() bool { return s.Begin.Valid() && s.End.Valid() }

// Clear deactivates the selection.
func (s *Selection) Clear() { s.Begin, s.End = none, none }

// Ordered returns the two ends, top first.
func (s *Selection) Ordered() (top, bottom Anchor) {
	if s.End.Less(s.Begin) {
		return s.End, s.Begin
	}
	return s.Begin, s.End
}

// resolve maps a point to an anchor on the visible scrollback rows.
// Points above or below the rows clamp to the first or last row; prompt
// rows resolve to the end of the last scrollback row.
func resolve(rows []viewport.Row, g viewport.Geometry, x, y int) Anchor {
	var log []viewport.Row
	for _, r := range rows {
		if !r.Prompt {
			log = append(log, r)
		}
	}
	if len(log) == 0 {
		return none
	}

	r, ok := viewport.RowAt(rows, g, y)
	switch {
	case ok && !r.Prompt:
	case ok || y >= log[len(log)-1].Y:
		last := log[len(log)-1]
		return Anchor{EntryID: last.EntryID, Fragment: last.Fragment.Index, Column: last.Fragment.Cells()}
	default:
		r = log[0]
		if y >= r.Y {
			// Between rows; take the nearest one above.
			for _, c := range log {
				if c.Y <= y {
					r = c
				}
			}
		}
	}
	col := min(g.Column(x), r.Fragment.Cells())
	return Anchor{EntryID: r.EntryID, Fragment: r.Fragment.Index, Column: col}
}

// BeginAt starts a new selection at a point. A point on the prompt or
// with no scrollback on screen leaves the selection inactive.
func (s *Selection) BeginAt(rows []viewport.Row, g viewport.Geometry, x, y int) Anchor {
	if r, ok := viewport.RowAt(rows, g, y); ok && r.Prompt {
		s.Clear()
		return none
	}
	a := resolve(rows, g, x, y)
	s.Begin, s.End = a, a
	return a
}

// ExtendTo moves the free end of an active selection to a point.
func (s *Selection) ExtendTo(rows []viewport.Row, g viewport.Geometry, x, y int) Anchor {
	if !s.Begin.Valid() {
		return none
	}
	if a := resolve(rows, g, x, y); a.Valid() {
		s.End = a
	}
	return s.End
}

// SelectEntry selects the whole of e.
func (s *Selection) SelectEntry(e *scrollback.Entry) {
	if e == nil || e.ID == scrollback.PromptID {
		return
	}
	last, _ := e.Fragment(e.Lines() - 1)
	s.Begin = Anchor{EntryID: e.ID}
	s.End = Anchor{EntryID: e.ID, Fragment: last.Index, Column: last.Cells()}
}

// Entries is the scrollback seen oldest first.
type Entries interface {
	EachOldest(fn func(*scrollback.Entry) bool)
}

// SelectAll selects every stored entry.
func (s *Selection) SelectAll(src Entries) {
	var first, last *scrollback.Entry
	src.EachOldest(func(e *scrollback.Entry) bool {
		if first == nil {
			first = e
		}
		last = e
		return true
	})
	if first == nil {
		s.Clear()
		return
	}
	s.SelectEntry(last)
	s.Begin = Anchor{EntryID: first.ID}
}

// columns returns the selected column range of one fragment, or false
// when the fragment lies outside [top, bottom].
func columns(top, bottom Anchor, id int64, f scrollback.Fragment) (from, to int, ok bool) {
	here := Anchor{EntryID: id, Fragment: f.Index}
	if here.EntryID < top.EntryID || (here.EntryID == top.EntryID && here.Fragment < top.Fragment) {
		return 0, 0, false
	}
	if here.EntryID > bottom.EntryID || (here.EntryID == bottom.EntryID && here.Fragment > bottom.Fragment) {
		return 0, 0, false
	}
	cells := f.Cells()
	from, to = 0, cells
	if id == top.EntryID && f.Index == top.Fragment {
		from = min(top.Column, cells)
	}
	if id == bottom.EntryID && f.Index == bottom.Fragment {
		to = min(bottom.Column, cells)
	}
	return from, to, true
}

// Rects returns the highlight rectangles for the visible part of the
// selection.
func (s *Selection) Rects(rows []viewport.Row, g viewport.Geometry) []viewport.Rect {
	if !s.Active() {
		return nil
	}
	top, bottom := s.Ordered()
	var rects []viewport.Rect
	for _, r := range rows {
		if r.Prompt {
			continue
		}
		from, to, ok := columns(top, bottom, r.EntryID, r.Fragment)
		if !ok || to <= from {
			continue
		}
		rects = append(rects, g.Span(r, from, to))
	}
	return rects
}

// Slice is the selected text of one fragment. Break is set when a line
// break separates it from the previous slice.
type Slice struct {
	EntryID  int64
	Fragment int
	Text     string
	Break    bool
}

// Extract returns the selected text fragment by fragment, whether or not
// it is on screen. Entries evicted since the selection was made are
// simply missing.
func (s *Selection) Extract(src Entries) []Slice {
	if !s.Active() {
		return nil
	}
	top, bottom := s.Ordered()
	var out []Slice
	src.EachOldest(func(e *scrollback.Entry) bool {
		if e.ID < top.EntryID {
			return true
		}
		if e.ID > bottom.EntryID {
			return false
		}
		prevEnd := -1
		for _, f := range e.Fragments() {
			from, to, ok := columns(top, bottom, e.ID, f)
			if !ok {
				prevEnd = f.End
				continue
			}
			out = append(out, Slice{
				EntryID:  e.ID,
				Fragment: f.Index,
				Text:     f.Slice(from, to),
				Break:    len(out) > 0 && (prevEnd < 0 || prevEnd != f.Start),
			})
			prevEnd = f.End
		}
		return true
	})
	return out
}

// Join concatenates extracted slices, inserting a newline at each break.
func Join(slices []Slice) string {
	var sb strings.Builder
	for _, sl := range slices {
		if sl.Break {
			sb.WriteByte('\n')
		}
		sb.WriteString(sl.Text)
	}
	return sb.String()
}

// Text is Join(s.Extract(src)).
func (s *Selection) Text(src Entries) string {
	return Join(s.Extract(src))
}
