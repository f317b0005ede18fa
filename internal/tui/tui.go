// Package tui hosts a console session in a terminal through Bubble Tea.
package tui

import (
	"time"

	"charm.land/bubbles/v2/help"
	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/scrollcon/internal/console"
	"github.com/xonecas/scrollcon/internal/highlight"
)

// statusRows is the number of rows below the console area.
const statusRows = 1

// inputLanguage is the Chroma lexer used for submitted lines.
const inputLanguage = "bash"

// Options configures the terminal host.
type Options struct {
	// Theme is a Chroma style name; it drives both syntax colours and
	// the UI palette.
	Theme string
	// NativeClipboard is set when the session has a system clipboard.
	// Without one, paste goes through the terminal (OSC 52).
	NativeClipboard bool
	// Interrupt cancels the running command and reports whether there
	// was one. May be nil.
	Interrupt func() bool
}

// Model is the application model
type Model struct {
	session *console.Session
	frame   console.Frame

	width  int
	height int

	theme     string
	styles    Styles
	keys      KeyMap
	help      help.Model
	nativeClp bool
	interrupt func() bool

	spans  map[int64]cachedSpans
	clicks clickTracker
}

type cachedSpans struct {
	text  string
	spans []highlight.Span
}

// tickMsg drives the frame loop.
type tickMsg time.Time

// New creates a model hosting s.
func New(s *console.Session, opts Options) Model {
	if opts.Theme == "" {
		opts.Theme = "github-dark"
	}
	h := help.New()
	h.Styles = helpStyles(opts.Theme)
	return Model{
		session:   s,
		theme:     opts.Theme,
		styles:    NewStyles(opts.Theme),
		keys:      DefaultKeyMap(),
		help:      h,
		nativeClp: opts.NativeClipboard,
		interrupt: opts.Interrupt,
		spans:     make(map[int64]cachedSpans),
	}
}

// Init initializes the TUI (required by BubbleTea)
func (m Model) Init() tea.Cmd {
	return frameTick()
}

// frameTick returns a command that fires a tickMsg after ~16ms (~60fps).
func frameTick() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// refresh pulls a new frame from the session.
func (m *Model) refresh() tea.Cmd {
	m.frame = m.session.Frame()
	if m.frame.Quit {
		return tea.Quit
	}
	return nil
}
