package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/scrollcon/internal/console"
)

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {

	// -- Frame loop ----------------------------------------------------------
	case tickMsg:
		if quit := m.refresh(); quit != nil {
			return m, quit
		}
		return m, frameTick()

	// -- Window resize -------------------------------------------------------
	case tea.WindowSizeMsg:
		m.handleResize(msg)

	// -- Paste (clipboard read or bracketed paste) ---------------------------
	case tea.ClipboardMsg:
		m.session.TextInput(msg.Content)
	case tea.PasteMsg:
		m.session.TextInput(msg.Content)

	// -- Mouse ---------------------------------------------------------------
	case tea.MouseMsg:
		cmd = m.handleMouse(msg)

	// -- Keyboard ------------------------------------------------------------
	case tea.KeyPressMsg:
		cmd = m.handleKeyPress(msg)

	default:
		return m, nil
	}

	// Input is reflected right away instead of on the next tick.
	if quit := m.refresh(); quit != nil {
		return m, quit
	}
	return m, cmd
}

// handleResize gives the console everything but the status row and the
// scrollbar column.
func (m *Model) handleResize(msg tea.WindowSizeMsg) {
	m.width, m.height = msg.Width, msg.Height
	m.session.SetLayout(console.Layout{
		Width:      m.width,
		Height:     max(0, m.height-statusRows),
		CharWidth:  1,
		LineHeight: 1,
		PadRight:   scrollbarCols,
	})
}
