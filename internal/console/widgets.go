package console

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/scrollcon/internal/eventbus"
	"github.com/xonecas/scrollcon/internal/scrollback"
	"github.com/xonecas/scrollcon/internal/viewport"
)

// wheelStep is the number of lines scrolled per wheel notch.
const wheelStep = 3

// ---------------------------------------------------------------------------
// Log widget: scrolling, selection, resize
// ---------------------------------------------------------------------------

func (s *Session) connectLog() {
	eventbus.Connect(s.bus, eventbus.Any, s.logW, s.onResize)
	eventbus.Connect(s.bus, eventbus.Any, s.logW, s.onLogKey)
	eventbus.Connect(s.bus, eventbus.Any, s.logW, s.onMouseDown)
	eventbus.Connect(s.bus, eventbus.Any, s.logW, s.onMouseMotion)
	eventbus.Connect(s.bus, eventbus.Any, s.logW, s.onMouseUp)
	eventbus.Connect(s.bus, eventbus.Any, s.logW, func(ev eventbus.MouseWheel) bool {
		s.ScrollBy(ev.DY * wheelStep)
		return true
	})
}

func (s *Session) onResize(ev eventbus.Resize) bool {
	cw, w := s.layout.normalized().CharWidth, s.layout.WrapWidth()
	s.store.Rewrap(cw, w)
	s.prompt.Rewrap(cw, w)
	s.query.Rewrap(cw, w)
	if s.find.Needle() != "" {
		s.find.Search(s.store, s.find.Needle())
	}
	s.clampScroll()
	s.view.MarkDirty()
	log.Debug().Int("width", ev.Width).Int("height", ev.Height).Int("lines", s.store.TotalLines()).Msg("console: resized")
	return false
}

func (s *Session) logKeys() map[string]func(*Session) {
	page := func(dir int) func(*Session) {
		return func(s *Session) { s.ScrollBy(dir * max(1, s.scrollRows()-1)) }
	}
	return map[string]func(*Session){
		"pgup":       page(1),
		"pgdown":     page(-1),
		"shift+up":   func(s *Session) { s.ScrollBy(1) },
		"shift+down": func(s *Session) { s.ScrollBy(-1) },
		"ctrl+home":  (*Session).ScrollToTop,
		"ctrl+end":   (*Session).ScrollToBottom,
		"ctrl+l":     (*Session).Clear,
		"ctrl+a":     func(s *Session) { s.sel.SelectAll(s.store); s.view.MarkDirty() },
		"ctrl+f":     func(s *Session) { s.OpenFind() },
	}
}

func (s *Session) onLogKey(ev eventbus.KeyDown) bool {
	fn := s.logKeys()[ev.Stroke()]
	if fn == nil {
		return false
	}
	fn(s)
	return true
}

func (s *Session) rows() ([]viewport.Row, viewport.Geometry) {
	return s.view.Rows(), s.view.Geometry()
}

func (s *Session) onMouseDown(ev eventbus.MouseDown) bool {
	if ev.Button != eventbus.MouseLeft {
		return false
	}
	rows, g := s.rows()
	r, onRow := viewport.RowAt(rows, g, ev.Y)
	if onRow && r.Prompt {
		s.sel.Clear()
		s.placeCursor(r, g.Column(ev.X))
		s.view.MarkDirty()
		return true
	}

	switch {
	case ev.Clicks >= 3:
		s.sel.SelectAll(s.store)
	case ev.Clicks == 2 && onRow:
		if e, ok := s.store.Lookup(r.EntryID); ok {
			s.sel.SelectEntry(e)
		}
	default:
		s.sel.BeginAt(rows, g, ev.X, ev.Y)
		s.selecting = s.sel.Active()
	}
	s.view.MarkDirty()
	return true
}

func (s *Session) onMouseMotion(ev eventbus.MouseMotion) bool {
	if !s.selecting {
		return false
	}
	rows, g := s.rows()
	s.sel.ExtendTo(rows, g, ev.X, ev.Y)
	return true
}

func (s *Session) onMouseUp(ev eventbus.MouseUp) bool {
	if !s.selecting || ev.Button != eventbus.MouseLeft {
		return false
	}
	rows, g := s.rows()
	s.sel.ExtendTo(rows, g, ev.X, ev.Y)
	s.selecting = false
	return true
}

// placeCursor moves the prompt cursor to a clicked cell.
func (s *Session) placeCursor(r viewport.Row, col int) {
	off := r.Fragment.Start + scrollback.ColumnOffset(r.Fragment.Text, col)
	text := s.prompt.Entry().Text
	off -= len(s.prompt.PromptText())
	if off < 0 {
		off = 0
	}
	s.prompt.SetCursor(scrollback.OffsetColumn(text[len(s.prompt.PromptText()):], off))
}

// ---------------------------------------------------------------------------
// Prompt widget: line editing and history
// ---------------------------------------------------------------------------

func (s *Session) connectPrompt() {
	eventbus.Connect(s.bus, eventbus.Any, s.promptW, func(ev eventbus.KeyDown) bool {
		if s.FindOpen() {
			return false
		}
		fn := s.promptKeys()[ev.Stroke()]
		if fn == nil {
			return false
		}
		fn(s)
		s.view.MarkDirty()
		return true
	})
	eventbus.Connect(s.bus, eventbus.Any, s.promptW, func(ev eventbus.TextInput) bool {
		if s.FindOpen() {
			return false
		}
		if strings.ContainsAny(ev.Text, "\r\n") {
			s.submitLines(ev.Text)
		} else {
			s.prompt.Insert(ev.Text)
			s.view.MarkDirty()
		}
		return true
	})
}

func (s *Session) promptKeys() map[string]func(*Session) {
	p := s.prompt
	return map[string]func(*Session){
		"enter":      (*Session).submit,
		"backspace":  func(*Session) { p.Backspace() },
		"delete":     func(*Session) { p.Delete() },
		"left":       func(*Session) { p.MoveLeft() },
		"right":      func(*Session) { p.MoveRight() },
		"home":       func(*Session) { p.Home() },
		"end":        func(*Session) { p.End() },
		"ctrl+left":  func(*Session) { p.WordLeft() },
		"ctrl+right": func(*Session) { p.WordRight() },
		"ctrl+w":     func(*Session) { p.DeleteWordBackward() },
		"ctrl+u":     func(*Session) { p.KillToStart() },
		"ctrl+k":     func(*Session) { p.KillToEnd() },
		"up":         func(*Session) { p.HistoryPrev() },
		"down":       func(*Session) { p.HistoryNext() },
		"esc":        func(s *Session) { s.sel.Clear(); p.Clear() },
	}
}

// submit hands the current line to the bus; the pipe widget takes it
// from there.
func (s *Session) submit() {
	cmd, _ := s.prompt.Submit()
	s.bus.Emit(eventbus.Submit{Command: cmd}, s.promptW)
}

// ---------------------------------------------------------------------------
// Pipe widget: echo and hand-off to the consumer
// ---------------------------------------------------------------------------

func (s *Session) connectPipe() {
	eventbus.Connect(s.bus, s.promptW, s.pipeW, func(ev eventbus.Submit) bool {
		s.Append(scrollback.Input, s.prompt.PromptText()+ev.Command, "")
		s.ScrollToBottom()
		if strings.TrimSpace(ev.Command) == "" {
			return true
		}
		s.cmds.Push(ev.Command)
		if s.onSubmit != nil {
			s.onSubmit(ev.Command)
		}
		return true
	})
}

// ---------------------------------------------------------------------------
// Find widget: takes keyboard focus while open
// ---------------------------------------------------------------------------

// FindOpen reports whether the find bar is listening for keys. While it
// is, it has keyboard focus and the prompt ignores input.
func (s *Session) FindOpen() bool {
	return s.bus.HasConnection(eventbus.KindKeyDown, s.findW)
}

// OpenFind shows the find bar. Opened from inside a handler, the bar's
// connections are pending until that emit returns, but FindOpen already
// reports true.
func (s *Session) OpenFind() {
	if s.FindOpen() {
		return
	}
	eventbus.Connect(s.bus, eventbus.Any, s.findW, s.onFindKey)
	eventbus.Connect(s.bus, eventbus.Any, s.findW, func(ev eventbus.TextInput) bool {
		s.query.Insert(ev.Text)
		s.search()
		return true
	})
	s.view.MarkDirty()
}

// CloseFind hides the find bar and gives input back to the prompt. The
// bar's handle is released and replaced, so an emit in progress never
// reaches it again. The query and results are dropped.
func (s *Session) CloseFind() {
	s.bus.Release(s.findW)
	s.findW = s.bus.NewHandle()
	s.query.Clear()
	s.find.Reset()
	s.view.MarkDirty()
}

func (s *Session) findKeys() map[string]func(*Session) {
	q := s.query
	edit := func(fn func()) func(*Session) {
		return func(s *Session) { fn(); s.search() }
	}
	return map[string]func(*Session){
		"esc":         (*Session).CloseFind,
		"enter":       func(s *Session) { s.FindNext() },
		"shift+enter": func(s *Session) { s.FindPrev() },
		"down":        func(s *Session) { s.FindNext() },
		"up":          func(s *Session) { s.FindPrev() },
		"ctrl+n":      func(s *Session) { s.FindNextLine() },
		"ctrl+p":      func(s *Session) { s.FindPrevLine() },
		"alt+c":       (*Session).toggleCase,
		"backspace":   edit(func() { q.Backspace() }),
		"delete":      edit(func() { q.Delete() }),
		"ctrl+w":      edit(func() { q.DeleteWordBackward() }),
		"ctrl+u":      edit(func() { q.KillToStart() }),
		"left":        func(*Session) { q.MoveLeft() },
		"right":       func(*Session) { q.MoveRight() },
		"home":        func(*Session) { q.Home() },
		"end":         func(*Session) { q.End() },
	}
}

func (s *Session) onFindKey(ev eventbus.KeyDown) bool {
	if fn := s.findKeys()[ev.Stroke()]; fn != nil {
		fn(s)
		s.view.MarkDirty()
	}
	// Everything else is swallowed while the bar is open.
	return true
}

func (s *Session) toggleCase() {
	s.find.SetCaseSensitive(!s.find.CaseSensitive())
	s.search()
}

// search re-runs the query and shows the first match.
func (s *Session) search() {
	s.find.Search(s.store, s.query.Text())
	if m, ok := s.find.Current(); ok {
		s.scrollToLine(m.Key.EntryID, m.Key.Fragment)
	}
	s.view.MarkDirty()
}

// FindNext moves to the next match.
func (s *Session) FindNext() {
	if m, ok := s.find.Next(); ok {
		s.scrollToLine(m.Key.EntryID, m.Key.Fragment)
	}
}

// FindPrev moves to the previous match.
func (s *Session) FindPrev() {
	if m, ok := s.find.Prev(); ok {
		s.scrollToLine(m.Key.EntryID, m.Key.Fragment)
	}
}

// FindNextLine moves to the next matched line.
func (s *Session) FindNextLine() {
	if k, ok := s.find.NextLine(); ok {
		s.scrollToLine(k.EntryID, k.Fragment)
	}
}

// FindPrevLine moves to the previous matched line.
func (s *Session) FindPrevLine() {
	if k, ok := s.find.PrevLine(); ok {
		s.scrollToLine(k.EntryID, k.Fragment)
	}
}
