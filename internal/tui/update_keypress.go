package tui

import (
	"unicode"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/xonecas/scrollcon/internal/eventbus"
)

// handleKeyPress runs host bindings and forwards everything else to the
// session.
func (m *Model) handleKeyPress(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.session.RequestQuit()
		return nil
	case key.Matches(msg, m.keys.Interrupt):
		if m.interrupt == nil || !m.interrupt() {
			m.session.KeyDown("esc", 0)
		}
		return nil
	case key.Matches(msg, m.keys.Copy):
		return m.copySelection()
	case key.Matches(msg, m.keys.Paste):
		return m.paste()
	}
	m.forwardKey(msg.Key())
	return nil
}

// forwardKey turns a key press into typed text or a key event.
func (m *Model) forwardKey(k tea.Key) {
	if typed(k) {
		m.session.TextInput(k.Text)
		return
	}
	var mod eventbus.Mod
	if k.Mod&tea.ModShift != 0 {
		mod |= eventbus.ModShift
	}
	if k.Mod&tea.ModCtrl != 0 {
		mod |= eventbus.ModCtrl
	}
	if k.Mod&tea.ModAlt != 0 {
		mod |= eventbus.ModAlt
	}
	base := tea.Key{Code: k.Code}
	m.session.KeyDown(base.Keystroke(), mod)
}

// typed reports whether a key press produced printable text.
func typed(k tea.Key) bool {
	if k.Text == "" || k.Mod&(tea.ModCtrl|tea.ModAlt) != 0 {
		return false
	}
	for _, r := range k.Text {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

// copySelection copies the selection to the native clipboard (inside the
// session) and through OSC 52, which also works over SSH and tmux.
func (m *Model) copySelection() tea.Cmd {
	text, ok := m.session.Copy()
	if !ok {
		return nil
	}
	return tea.SetClipboard(text)
}

// paste reads the native clipboard when there is one, otherwise asks the
// terminal; the answer arrives as a tea.ClipboardMsg.
func (m *Model) paste() tea.Cmd {
	if m.nativeClp {
		m.session.Paste()
		return nil
	}
	return tea.ReadClipboard
}
