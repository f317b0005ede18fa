// Package scrollback holds the console text model: entries, their
// word-wrapped fragments, and the bounded store of past entries.
package scrollback

// Kind tells input lines from output lines.
type Kind uint8

const (
	Output Kind = iota
	Input
)

func (k Kind) String() string {
	if k == Input {
		return "input"
	}
	return "output"
}

// PromptID is the id reserved for the live prompt entry.
const PromptID int64 = 0

// Entry is one logical line of console text.
type Entry struct {
	Kind  Kind
	ID    int64
	Text  string
	Color string // lipgloss color spec, empty for the default

	frags     []Fragment
	charWidth int
	width     int
}

// NewEntry creates an entry and wraps it.
func NewEntry(kind Kind, id int64, text, color string, charWidth, width int) *Entry {
	e := &Entry{Kind: kind, ID: id, Text: text, Color: color}
	e.Rewrap(charWidth, width)
	return e
}

// Fragments returns the current wrap. The slice is replaced, never
// modified, on each re-wrap.
func (e *Entry) Fragments() []Fragment { return e.frags }

// Lines returns the number of wrapped lines.
func (e *Entry) Lines() int { return len(e.frags) }

// Fragment returns the fragment at index i.
func (e *Entry) Fragment(i int) (Fragment, bool) {
	if i < 0 || i >= len(e.frags) {
		return Fragment{}, false
	}
	return e.frags[i], true
}

// Rewrap recomputes the fragments for the given cell and line widths and
// returns the change in line count.
func (e *Entry) Rewrap(charWidth, width int) int {
	before := len(e.frags)
	e.charWidth, e.width = charWidth, width
	e.frags = Wrap(e.Text, charWidth, width)
	return len(e.frags) - before
}

// SetText replaces the text and re-wraps at the last used width. Only the
// prompt entry is edited in place.
func (e *Entry) SetText(text string) int {
	e.Text = text
	return e.Rewrap(e.charWidth, e.width)
}
