// Package console ties the text model, viewport, selection, search and
// the two cross-goroutine queues into one session driven by a host.
//
// A Session is owned by the UI goroutine. Other goroutines may only call
// Post, Print, Printf, Commands and Shutdown.
package console

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/scrollcon/internal/eventbus"
	"github.com/xonecas/scrollcon/internal/finder"
	"github.com/xonecas/scrollcon/internal/pipe"
	"github.com/xonecas/scrollcon/internal/prompt"
	"github.com/xonecas/scrollcon/internal/scrollback"
	"github.com/xonecas/scrollcon/internal/selection"
	"github.com/xonecas/scrollcon/internal/viewport"
)

// Clipboard is the host clipboard.
type Clipboard interface {
	GetText() (string, error)
	SetText(string) error
}

// Options configures a new session.
type Options struct {
	Prompt              string
	ScrollbackLines     int
	HistoryLimit        int
	CaseSensitiveSearch bool
	History             []string // initial prompt history, oldest first
	Clipboard           Clipboard
	// OnSubmit sees every non-blank submitted command on the UI
	// goroutine, e.g. to persist it.
	OnSubmit func(cmd string)
}

// Layout is the drawing area in backend units.
type Layout struct {
	Width, Height int
	CharWidth     int
	LineHeight    int
	PadLeft       int
	PadRight      int
	PadTop        int
	PadBottom     int
}

func (l Layout) normalized() Layout {
	l.CharWidth = max(1, l.CharWidth)
	l.LineHeight = max(1, l.LineHeight)
	return l
}

// VisibleRows returns how many text rows fit.
func (l Layout) VisibleRows() int {
	l = l.normalized()
	return max(0, (l.Height-l.PadTop-l.PadBottom)/l.LineHeight)
}

// WrapWidth returns the usable line width.
func (l Layout) WrapWidth() int {
	return max(0, l.Width-l.PadLeft-l.PadRight)
}

// Geometry returns the viewport geometry for the layout.
func (l Layout) Geometry() viewport.Geometry {
	l = l.normalized()
	return viewport.Geometry{
		CharWidth:  l.CharWidth,
		LineHeight: l.LineHeight,
		Left:       l.PadLeft,
		Bottom:     l.PadTop + (l.VisibleRows()-1)*l.LineHeight,
	}
}

// Session is one console instance.
type Session struct {
	bus *eventbus.Bus
	// handles
	host, promptW, pipeW, logW, findW eventbus.Handle

	store  *scrollback.Store
	prompt *prompt.Prompt
	view   *viewport.ViewPort
	sel    *selection.Selection
	find   *finder.Finder
	query  *prompt.Prompt

	cmds  *pipe.Command
	tasks pipe.Tasks[*Session]

	clip     Clipboard
	onSubmit func(string)

	layout    Layout
	scroll    int
	selecting bool
	findStale bool // output arrived while the find bar was open
	quit      bool
}

// New creates a session with an initial 80x24 cell layout.
func New(opts Options) *Session {
	if opts.Prompt == "" {
		opts.Prompt = prompt.DefaultText
	}
	layout := Layout{Width: 80, Height: 24, CharWidth: 1, LineHeight: 1}
	cw, w := layout.CharWidth, layout.WrapWidth()

	s := &Session{
		bus:      eventbus.New(),
		store:    scrollback.NewStore(opts.ScrollbackLines),
		prompt:   prompt.New(opts.Prompt, opts.HistoryLimit, cw, w),
		view:     viewport.New(),
		sel:      selection.New(),
		find:     finder.New(opts.CaseSensitiveSearch),
		query:    prompt.New("find: ", 1, cw, w),
		cmds:     pipe.NewCommand(),
		clip:     opts.Clipboard,
		onSubmit: opts.OnSubmit,
		layout:   layout,
	}
	s.store.Rewrap(cw, w)
	s.prompt.SetHistory(opts.History)

	s.host = s.bus.NewHandle()
	s.logW = s.bus.NewHandle()
	s.promptW = s.bus.NewHandle()
	s.pipeW = s.bus.NewHandle()
	s.findW = s.bus.NewHandle()

	s.connectLog()
	s.connectPrompt()
	s.connectPipe()
	return s
}

// --- Cross-goroutine API ---

// Commands returns the pipe carrying submitted commands.
func (s *Session) Commands() *pipe.Command { return s.cmds }

// Post schedules fn to run on the UI goroutine before the next frame.
func (s *Session) Post(fn func(*Session)) { s.tasks.Post(fn) }

// Print appends an output line from any goroutine.
func (s *Session) Print(text, color string) {
	s.Post(func(s *Session) { s.Append(scrollback.Output, text, color) })
}

// Printf formats and prints an output line from any goroutine.
func (s *Session) Printf(color, format string, args ...any) {
	s.Print(fmt.Sprintf(format, args...), color)
}

// Shutdown stops the command pipe. Safe from any goroutine, repeatedly.
func (s *Session) Shutdown() { s.cmds.Shutdown() }

// --- UI goroutine API ---

// Append adds an entry to the scrollback. A scrolled-back view keeps
// showing the same lines.
func (s *Session) Append(kind scrollback.Kind, text, color string) *scrollback.Entry {
	e := s.store.Push(kind, text, color)
	if s.scroll > 0 {
		s.scroll += e.Lines()
	}
	s.clampScroll()
	s.view.MarkDirty()
	s.findStale = s.findStale || s.FindOpen()
	return e
}

// Clear empties the scrollback and resets the view.
func (s *Session) Clear() {
	s.store.Clear()
	s.sel.Clear()
	s.find.Refresh(s.store)
	s.scroll = 0
	s.view.MarkDirty()
}

// RequestQuit marks the session as finished; the host exits after the
// next frame.
func (s *Session) RequestQuit() { s.quit = true }

// Store exposes the scrollback.
func (s *Session) Store() *scrollback.Store { return s.store }

// Prompt exposes the input line.
func (s *Session) Prompt() *prompt.Prompt { return s.prompt }

// Layout returns the current layout.
func (s *Session) Layout() Layout { return s.layout }

// SetLayout changes the drawing area; same as a Resize event.
func (s *Session) SetLayout(l Layout) {
	s.layout = l.normalized()
	s.bus.Emit(eventbus.Resize{Width: l.Width, Height: l.Height}, s.host)
}

// scrollRows is the number of rows left for scrollback.
func (s *Session) scrollRows() int {
	return max(0, s.layout.VisibleRows()-s.prompt.Entry().Lines())
}

// MaxScroll returns the largest useful scroll offset.
func (s *Session) MaxScroll() int {
	return max(0, s.store.TotalLines()-s.scrollRows())
}

func (s *Session) clampScroll() {
	s.scroll = max(0, min(s.scroll, s.MaxScroll()))
}

// ScrollBy scrolls towards older text for positive n.
func (s *Session) ScrollBy(n int) {
	prev := s.scroll
	s.scroll += n
	s.clampScroll()
	if s.scroll != prev {
		s.view.MarkDirty()
	}
}

// ScrollToBottom shows the newest text.
func (s *Session) ScrollToBottom() { s.ScrollBy(-s.scroll) }

// ScrollToTop shows the oldest text.
func (s *Session) ScrollToTop() { s.ScrollBy(s.MaxScroll() - s.scroll) }

// scrollToLine brings a fragment into view, centred when it was off
// screen. Stale ids are ignored.
func (s *Session) scrollToLine(id int64, fragment int) {
	if _, ok := s.view.Find(id, fragment); ok && !s.view.Dirty() {
		return
	}
	below, ok := s.store.LinesBelow(id, fragment)
	if !ok {
		return
	}
	s.ScrollBy(below - s.scrollRows()/2 - s.scroll)
}

// --- Clipboard ---

// SelectedText returns the selected text.
func (s *Session) SelectedText() string { return s.sel.Text(s.store) }

// Copy puts the selection on the clipboard and returns it.
func (s *Session) Copy() (string, bool) {
	text := s.SelectedText()
	if text == "" {
		return "", false
	}
	if s.clip != nil {
		if err := s.clip.SetText(text); err != nil {
			log.Warn().Err(err).Msg("console: clipboard write failed")
		}
	}
	return text, true
}

// Paste inserts the clipboard text as typed input.
func (s *Session) Paste() {
	if s.clip == nil {
		return
	}
	text, err := s.clip.GetText()
	if err != nil {
		log.Warn().Err(err).Msg("console: clipboard read failed")
		return
	}
	s.TextInput(text)
}

// --- Host input ---

// KeyDown publishes a key press.
func (s *Session) KeyDown(sym string, mod eventbus.Mod) bool {
	return s.bus.Emit(eventbus.KeyDown{Sym: sym, Mod: mod}, s.host)
}

// TextInput publishes typed or pasted text.
func (s *Session) TextInput(text string) bool {
	if text == "" {
		return false
	}
	return s.bus.Emit(eventbus.TextInput{Text: text}, s.host)
}

// MouseDown publishes a button press.
func (s *Session) MouseDown(x, y int, button eventbus.MouseButton, clicks int) bool {
	return s.bus.Emit(eventbus.MouseDown{X: x, Y: y, Button: button, Clicks: clicks}, s.host)
}

// MouseUp publishes a button release.
func (s *Session) MouseUp(x, y int, button eventbus.MouseButton) bool {
	return s.bus.Emit(eventbus.MouseUp{X: x, Y: y, Button: button}, s.host)
}

// MouseMotion publishes pointer movement.
func (s *Session) MouseMotion(x, y int) bool {
	return s.bus.Emit(eventbus.MouseMotion{X: x, Y: y}, s.host)
}

// MouseWheel publishes a wheel step; positive dy scrolls up.
func (s *Session) MouseWheel(x, y, dy int) bool {
	return s.bus.Emit(eventbus.MouseWheel{X: x, Y: y, DY: dy}, s.host)
}

// Resize publishes a new drawing-area size, keeping the other layout
// fields.
func (s *Session) Resize(width, height int) {
	l := s.layout
	l.Width, l.Height = width, height
	s.SetLayout(l)
}

// submitLines feeds text containing line breaks to the prompt: every
// complete line is submitted, the remainder is left for editing.
func (s *Session) submitLines(text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	for _, line := range lines[:len(lines)-1] {
		s.prompt.Insert(line)
		s.submit()
	}
	s.prompt.Insert(lines[len(lines)-1])
	s.view.MarkDirty()
}
