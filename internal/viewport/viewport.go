// Package viewport materializes the wrapped lines that are currently on
// screen, and nothing else.
package viewport

import (
	"github.com/xonecas/scrollcon/internal/scrollback"
)

// Geometry describes the drawing area in backend units. Bottom is the Y
// of the lowest row; rows above it are LineHeight apart.
type Geometry struct {
	CharWidth  int
	LineHeight int
	Left       int
	Bottom     int
}

func (g Geometry) lineHeight() int { return max(1, g.LineHeight) }

func (g Geometry) charWidth() int { return max(1, g.CharWidth) }

// Column maps an X coordinate to a cell column.
func (g Geometry) Column(x int) int {
	if x < g.Left {
		return 0
	}
	return (x - g.Left) / g.charWidth()
}

// Row binds one fragment to a screen position.
type Row struct {
	EntryID  int64
	Kind     scrollback.Kind
	Color    string
	Fragment scrollback.Fragment
	Y        int
	Prompt   bool
}

// Key identifies the displayed line.
func (r Row) Key() (int64, int) { return r.EntryID, r.Fragment.Index }

// Entries is the scrollback seen newest first.
type Entries interface {
	EachNewest(fn func(*scrollback.Entry) bool)
}

// ViewPort holds the rows built for the current frame. It is rebuilt in
// full whenever it is marked dirty.
type ViewPort struct {
	rows  []Row
	dirty bool
	geom  Geometry
}

// New returns a viewport that builds on first use.
func New() *ViewPort { return &ViewPort{dirty: true} }

// MarkDirty requests a rebuild on the next frame.
func (v *ViewPort) MarkDirty() { v.dirty = true }

// Dirty reports whether a rebuild is pending.
func (v *ViewPort) Dirty() bool { return v.dirty }

// Rows returns the visible rows, top to bottom.
func (v *ViewPort) Rows() []Row { return v.rows }

// Geometry returns the geometry of the last build.
func (v *ViewPort) Geometry() Geometry { return v.geom }

// Build replaces the rows. The prompt fragments are placed at the bottom
// and are never scrolled; the remaining rows show scrollback with
// scrollOffset wrapped lines hidden below them. Entries are walked newest
// first and fragments last to first, stopping as soon as the area is
// full.
func (v *ViewPort) Build(entries Entries, prompt *scrollback.Entry, scrollOffset, visibleRows int, g Geometry) {
	v.geom = g
	v.dirty = false
	if visibleRows < 1 {
		v.rows = nil
		return
	}

	// Walk order: bottom row first.
	walk := make([]Row, 0, visibleRows)
	if prompt != nil {
		frags := prompt.Fragments()
		for i := len(frags) - 1; i >= 0 && len(walk) < visibleRows; i-- {
			walk = append(walk, Row{
				EntryID:  prompt.ID,
				Kind:     prompt.Kind,
				Color:    prompt.Color,
				Fragment: frags[i],
				Prompt:   true,
			})
		}
	}

	limit := scrollOffset + visibleRows - len(walk)
	rowCounter := 0
	entries.EachNewest(func(e *scrollback.Entry) bool {
		frags := e.Fragments()
		for i := len(frags) - 1; i >= 0; i-- {
			rowCounter++
			if rowCounter <= scrollOffset {
				continue
			}
			if rowCounter > limit {
				return false
			}
			walk = append(walk, Row{
				EntryID:  e.ID,
				Kind:     e.Kind,
				Color:    e.Color,
				Fragment: frags[i],
			})
		}
		return true
	})

	lh := g.lineHeight()
	rows := make([]Row, 0, len(walk))
	for k := len(walk) - 1; k >= 0; k-- {
		r := walk[k]
		r.Y = g.Bottom - k*lh
		rows = append(rows, r)
	}
	v.rows = rows
}

// RowAt returns the row whose vertical span contains y.
func (v *ViewPort) RowAt(y int) (Row, bool) {
	return RowAt(v.rows, v.geom, y)
}

// RowAt finds the row of rows whose span [Y, Y+LineHeight) contains y.
func RowAt(rows []Row, g Geometry, y int) (Row, bool) {
	lh := g.lineHeight()
	for _, r := range rows {
		if y >= r.Y && y < r.Y+lh {
			return r, true
		}
	}
	return Row{}, false
}

// Find returns the visible row showing the given fragment.
func (v *ViewPort) Find(entryID int64, fragment int) (Row, bool) {
	for _, r := range v.rows {
		if r.EntryID == entryID && r.Fragment.Index == fragment {
			return r, true
		}
	}
	return Row{}, false
}

// Rect is a highlight rectangle in backend units.
type Rect struct {
	X, Y, W, H int
}

// Span returns the rectangle covering columns [from, to) of row r.
func (g Geometry) Span(r Row, from, to int) Rect {
	cw := g.charWidth()
	return Rect{X: g.Left + from*cw, Y: r.Y, W: (to - from) * cw, H: g.lineHeight()}
}
