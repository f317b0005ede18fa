package scrollback

import (
	"unicode"
	"unicode/utf8"
)

// Fragment is one word-wrapped display line of an Entry. Text is a
// substring of the entry text; Start and End are byte offsets into it.
type Fragment struct {
	Text  string
	Index int
	Start int
	End   int
}

// Cells returns the fragment width in cells (one rune per cell).
func (f Fragment) Cells() int { return utf8.RuneCountInString(f.Text) }

// Slice returns the fragment text between two cell columns, clamped to
// the fragment bounds.
func (f Fragment) Slice(from, to int) string {
	return f.Text[ColumnOffset(f.Text, from):ColumnOffset(f.Text, to)]
}

// Wrap splits text into fragments no wider than width, given the width of
// one cell. Line breaks close a fragment and belong to none; the last
// whitespace seen before an overflow is kept at the end of the closed
// fragment. There is always at least one fragment.
func Wrap(text string, charWidth, width int) []Fragment {
	if charWidth < 1 {
		charWidth = 1
	}
	if width < charWidth {
		width = charWidth
	}

	frags := make([]Fragment, 0, 1+len(text)*charWidth/width)
	closeAt := func(start, end int) {
		frags = append(frags, Fragment{
			Text:  text[start:end],
			Index: len(frags),
			Start: start,
			End:   end,
		})
	}

	// delim is the byte offset just past the last whitespace rune seen
	// since start, or -1.
	start, delim := 0, -1
	cells := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		next := i + size
		if r == '\n' || r == '\r' {
			closeAt(start, i)
			start, delim, cells = next, -1, 0
			i = next
			continue
		}
		cells++
		if unicode.IsSpace(r) {
			delim = next
		}
		if cells*charWidth > width {
			if delim >= 0 {
				closeAt(start, delim)
				start = delim
			} else {
				closeAt(start, i)
				start = i
			}
			delim = -1
			cells = utf8.RuneCountInString(text[start:next])
		}
		i = next
	}
	closeAt(start, len(text))
	return frags
}

// ColumnOffset converts a cell column within s into a byte offset,
// clamped to [0, len(s)].
func ColumnOffset(s string, col int) int {
	if col <= 0 {
		return 0
	}
	n := 0
	for i := range s {
		if n == col {
			return i
		}
		n++
	}
	return len(s)
}

// OffsetColumn converts a byte offset within s into a cell column.
func OffsetColumn(s string, off int) int {
	if off <= 0 {
		return 0
	}
	if off > len(s) {
		off = len(s)
	}
	return utf8.RuneCountInString(s[:off])
}
