// Package prompt implements the editable input line: cursor movement,
// editing, and navigation through previously submitted commands.
package prompt

import (
	"strings"
	"unicode"

	"github.com/xonecas/scrollcon/internal/scrollback"
)

// DefaultText is the prompt shown before the input.
const DefaultText = "> "

// DefaultHistoryLimit caps the in-memory history.
const DefaultHistoryLimit = 100

// Prompt is the live input line. Its entry (id scrollback.PromptID)
// always holds the prompt text followed by the current input.
type Prompt struct {
	text    string
	buf     []rune
	cursor  int
	history []string
	histIdx int // len(history) while editing a fresh line
	draft   []rune
	limit   int

	entry *scrollback.Entry
}

// New returns an empty prompt wrapped at the given geometry.
func New(text string, historyLimit, charWidth, width int) *Prompt {
	if historyLimit < 1 {
		historyLimit = DefaultHistoryLimit
	}
	p := &Prompt{text: text, limit: historyLimit}
	p.entry = scrollback.NewEntry(scrollback.Input, scrollback.PromptID, text, "", charWidth, width)
	return p
}

// Entry returns the wrapped view of prompt text plus input.
func (p *Prompt) Entry() *scrollback.Entry { return p.entry }

// PromptText returns the prefix shown before the input.
func (p *Prompt) PromptText() string { return p.text }

// Text returns the current input without the prompt prefix.
func (p *Prompt) Text() string { return string(p.buf) }

// Cursor returns the cursor position in runes within Text.
func (p *Prompt) Cursor() int { return p.cursor }

// Rewrap re-wraps the prompt entry and returns the change in lines.
func (p *Prompt) Rewrap(charWidth, width int) int {
	return p.entry.Rewrap(charWidth, width)
}

func (p *Prompt) sync() int {
	return p.entry.SetText(p.text + string(p.buf))
}

func (p *Prompt) set(r []rune, cursor int) int {
	p.buf = r
	p.cursor = max(0, min(cursor, len(r)))
	return p.sync()
}

// --- Editing ---

// Insert adds s at the cursor. Line breaks become spaces; the prompt is a
// single logical line.
func (p *Prompt) Insert(s string) int {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	if s == "" {
		return 0
	}
	ins := []rune(s)
	r := make([]rune, 0, len(p.buf)+len(ins))
	r = append(r, p.buf[:p.cursor]...)
	r = append(r, ins...)
	r = append(r, p.buf[p.cursor:]...)
	return p.set(r, p.cursor+len(ins))
}

// Backspace deletes the rune before the cursor.
func (p *Prompt) Backspace() int {
	if p.cursor == 0 {
		return 0
	}
	r := append(p.buf[:p.cursor-1:p.cursor-1], p.buf[p.cursor:]...)
	return p.set(r, p.cursor-1)
}

// Delete deletes the rune under the cursor.
func (p *Prompt) Delete() int {
	if p.cursor >= len(p.buf) {
		return 0
	}
	r := append(p.buf[:p.cursor:p.cursor], p.buf[p.cursor+1:]...)
	return p.set(r, p.cursor)
}

// DeleteWordBackward deletes from the start of the previous word to the
// cursor.
func (p *Prompt) DeleteWordBackward() int {
	start := p.wordLeft()
	if start == p.cursor {
		return 0
	}
	r := append(p.buf[:start:start], p.buf[p.cursor:]...)
	return p.set(r, start)
}

// KillToStart deletes everything before the cursor.
func (p *Prompt) KillToStart() int {
	if p.cursor == 0 {
		return 0
	}
	return p.set(append([]rune(nil), p.buf[p.cursor:]...), 0)
}

// KillToEnd deletes everything after the cursor.
func (p *Prompt) KillToEnd() int {
	if p.cursor == len(p.buf) {
		return 0
	}
	return p.set(p.buf[:p.cursor:p.cursor], p.cursor)
}

// --- Cursor ---

// MoveLeft and MoveRight move the cursor one rune.
func (p *Prompt) MoveLeft()  { p.SetCursor(p.cursor - 1) }
func (p *Prompt) MoveRight() { p.SetCursor(p.cursor + 1) }

// Home and End jump to the ends of the input.
func (p *Prompt) Home() { p.cursor = 0 }
func (p *Prompt) End()  { p.cursor = len(p.buf) }

// WordLeft and WordRight move by words.
func (p *Prompt) WordLeft() { p.cursor = p.wordLeft() }
func (p *Prompt) WordRight() {
	i := p.cursor
	for i < len(p.buf) && unicode.IsSpace(p.buf[i]) {
		i++
	}
	for i < len(p.buf) && !unicode.IsSpace(p.buf[i]) {
		i++
	}
	p.cursor = i
}

func (p *Prompt) wordLeft() int {
	i := p.cursor
	for i > 0 && unicode.IsSpace(p.buf[i-1]) {
		i--
	}
	for i > 0 && !unicode.IsSpace(p.buf[i-1]) {
		i--
	}
	return i
}

// SetCursor moves the cursor, clamped to [0, len(Text)].
func (p *Prompt) SetCursor(pos int) {
	p.cursor = max(0, min(pos, len(p.buf)))
}

// CursorCell locates the cursor in the wrapped prompt entry: the fragment
// index and the column inside it.
func (p *Prompt) CursorCell() (fragment, column int) {
	off := len(p.text) + len(string(p.buf[:p.cursor]))
	for _, f := range p.entry.Fragments() {
		if f.Start <= off && off <= f.End {
			fragment = f.Index
			column = scrollback.OffsetColumn(f.Text, off-f.Start)
		}
	}
	return fragment, column
}

// --- History ---

// Submit returns the current input, records it in history and starts a
// fresh line. Blank lines and repeats of the newest entry are not
// recorded.
func (p *Prompt) Submit() (string, int) {
	cmd := string(p.buf)
	p.record(cmd)
	p.histIdx = len(p.history)
	p.draft = nil
	return cmd, p.set(nil, 0)
}

func (p *Prompt) record(cmd string) {
	if strings.TrimSpace(cmd) == "" {
		return
	}
	if n := len(p.history); n > 0 && p.history[n-1] == cmd {
		return
	}
	p.history = append(p.history, cmd)
	if over := len(p.history) - p.limit; over > 0 {
		p.history = append([]string(nil), p.history[over:]...)
	}
}

// SetHistory replaces the history, oldest first, and resets navigation.
func (p *Prompt) SetHistory(cmds []string) {
	p.history = nil
	for _, c := range cmds {
		p.record(c)
	}
	p.histIdx = len(p.history)
	p.draft = nil
}

// History returns the recorded commands, oldest first.
func (p *Prompt) History() []string { return p.history }

// HistoryPrev recalls the previous command. The line being edited is kept
// as a draft and restored by walking forward past the newest entry.
func (p *Prompt) HistoryPrev() (bool, int) {
	if p.histIdx == 0 {
		return false, 0
	}
	if p.histIdx == len(p.history) {
		p.draft = append([]rune(nil), p.buf...)
	}
	p.histIdx--
	r := []rune(p.history[p.histIdx])
	return true, p.set(r, len(r))
}

// HistoryNext walks towards the newest command and then the draft.
func (p *Prompt) HistoryNext() (bool, int) {
	if p.histIdx >= len(p.history) {
		return false, 0
	}
	p.histIdx++
	var r []rune
	if p.histIdx == len(p.history) {
		r = p.draft
		p.draft = nil
	} else {
		r = []rune(p.history[p.histIdx])
	}
	return true, p.set(r, len(r))
}

// Clear empties the input and leaves history navigation.
func (p *Prompt) Clear() int {
	p.histIdx = len(p.history)
	p.draft = nil
	return p.set(nil, 0)
}
