package tui

import (
	"image/color"

	"charm.land/bubbles/v2/help"
	"charm.land/lipgloss/v2"

	"github.com/xonecas/scrollcon/internal/highlight"
)

// scrollbarCols is the width reserved on the right for the scrollbar.
const scrollbarCols = 1

// Styles holds the colours derived from the syntax theme.
type Styles struct {
	Prompt       string // hex, applied as a syntax span
	Selection    color.Color
	Match        color.Color
	CurrentMatch color.Color
	CurrentFg    color.Color

	Track      lipgloss.Style
	Thumb      lipgloss.Style
	StatusText lipgloss.Style
	StatusDim  lipgloss.Style
	FindLabel  lipgloss.Style
	Error      lipgloss.Style
}

// NewStyles derives the UI styles from a Chroma theme.
func NewStyles(theme string) Styles {
	p := highlight.ThemePalette(theme)
	return Styles{
		Prompt:       p.Accent,
		Selection:    lipgloss.Color(p.Dim),
		Match:        lipgloss.Color(p.Muted),
		CurrentMatch: lipgloss.Color(p.Accent),
		CurrentFg:    lipgloss.Color(p.Bg),

		Track:      lipgloss.NewStyle().Foreground(lipgloss.Color(p.Border)),
		Thumb:      lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted)),
		StatusText: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Fg)),
		StatusDim:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted)),
		FindLabel:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Accent)).Bold(true),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color(p.Error)),
	}
}

func helpStyles(theme string) help.Styles {
	p := highlight.ThemePalette(theme)
	key := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted))
	desc := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Dim))
	sep := lipgloss.NewStyle().Foreground(lipgloss.Color(p.Border))
	return help.Styles{
		Ellipsis:       sep,
		ShortKey:       key,
		ShortDesc:      desc,
		ShortSeparator: sep,
		FullKey:        key,
		FullDesc:       desc,
		FullSeparator:  sep,
	}
}
