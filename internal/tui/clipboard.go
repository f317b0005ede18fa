package tui

import (
	"github.com/atotto/clipboard"

	"github.com/xonecas/scrollcon/internal/console"
)

// systemClipboard is the native clipboard (xclip, xsel, wl-clipboard,
// pbcopy or the Windows API).
type systemClipboard struct{}

func (systemClipboard) GetText() (string, error) { return clipboard.ReadAll() }
func (systemClipboard) SetText(s string) error   { return clipboard.WriteAll(s) }

// SystemClipboard returns the native clipboard, or false when none of the
// platform helpers is available.
func SystemClipboard() (console.Clipboard, bool) {
	if clipboard.Unsupported {
		return nil, false
	}
	return systemClipboard{}, true
}
