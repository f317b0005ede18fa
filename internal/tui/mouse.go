package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/scrollcon/internal/eventbus"
)

// ---------------------------------------------------------------------------
// Mouse filter: throttle high-frequency events at program level.
// ---------------------------------------------------------------------------

var lastMouseEvent time.Time

// MouseEventFilter rate-limits wheel and motion events (15 ms).
// Pass to tea.WithFilter. Never drops clicks or releases.
func MouseEventFilter(_ tea.Model, msg tea.Msg) tea.Msg {
	switch msg.(type) {
	case tea.MouseWheelMsg, tea.MouseMotionMsg:
		now := time.Now()
		if now.Sub(lastMouseEvent) < 15*time.Millisecond {
			return nil
		}
		lastMouseEvent = now
	}
	return msg
}

// ---------------------------------------------------------------------------
// Mouse handling: cells map one-to-one onto console coordinates.
// ---------------------------------------------------------------------------

// doubleClickInterval bounds the gap between clicks of a multi-click.
const doubleClickInterval = 400 * time.Millisecond

// clickTracker counts consecutive clicks on the same cell.
type clickTracker struct {
	at   time.Time
	x, y int
	n    int
}

func (c *clickTracker) click(x, y int, now time.Time) int {
	if c.n > 0 && now.Sub(c.at) <= doubleClickInterval && x == c.x && y == c.y {
		c.n++
	} else {
		c.n = 1
	}
	c.at, c.x, c.y = now, x, y
	return c.n
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	ev := msg.Mouse()
	switch msg.(type) {
	case tea.MouseClickMsg:
		if ev.Button == tea.MouseMiddle {
			return m.paste()
		}
		if b, ok := button(ev.Button); ok {
			clicks := 1
			if b == eventbus.MouseLeft {
				clicks = m.clicks.click(ev.X, ev.Y, time.Now())
			}
			m.session.MouseDown(ev.X, ev.Y, b, clicks)
		}
	case tea.MouseReleaseMsg:
		if b, ok := button(ev.Button); ok {
			m.session.MouseUp(ev.X, ev.Y, b)
		}
	case tea.MouseMotionMsg:
		m.session.MouseMotion(ev.X, ev.Y)
	case tea.MouseWheelMsg:
		switch ev.Button {
		case tea.MouseWheelUp:
			m.session.MouseWheel(ev.X, ev.Y, 1)
		case tea.MouseWheelDown:
			m.session.MouseWheel(ev.X, ev.Y, -1)
		}
	}
	return nil
}

func button(b tea.MouseButton) (eventbus.MouseButton, bool) {
	switch b {
	case tea.MouseLeft:
		return eventbus.MouseLeft, true
	case tea.MouseMiddle:
		return eventbus.MouseMiddle, true
	case tea.MouseRight:
		return eventbus.MouseRight, true
	}
	return 0, false
}
