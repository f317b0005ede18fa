// Package highlight provides syntax highlighting via Chroma, decoupled from any
// specific TUI component. Results are byte-range spans so that callers can
// style wrapped fragments of a line independently.
package highlight

import (
	"fmt"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// Span styles the bytes [Start, End) of a highlighted line.
type Span struct {
	Start, End int
	Color      string // "#rrggbb", empty for the default foreground
	Bold       bool
	Italic     bool
}

// Spans tokenises text with the given Chroma language and returns the
// styled byte ranges under theme. Unstyled tokens produce no span. An
// unknown language yields nil.
func Spans(text, language, theme string) []Span {
	lex := lexers.Get(language)
	if lex == nil {
		return nil
	}
	lex = chroma.Coalesce(lex)
	sty := styles.Get(theme)
	it, err := lex.Tokenise(nil, text)
	if err != nil {
		return nil
	}

	var out []Span
	off := 0
	for tok := it(); tok != chroma.EOF; tok = it() {
		start := off
		off += len(tok.Value)
		// Lexers may append a newline that is not in text.
		end := min(off, len(text))
		if start >= end {
			continue
		}
		e := sty.Get(tok.Type)
		sp := Span{Start: start, End: end, Bold: e.Bold == chroma.Yes, Italic: e.Italic == chroma.Yes}
		if e.Colour.IsSet() {
			sp.Color = e.Colour.String()
		}
		if sp.Color == "" && !sp.Bold && !sp.Italic {
			continue
		}
		if n := len(out); n > 0 && out[n-1].End == sp.Start && sameStyle(out[n-1], sp) {
			out[n-1].End = sp.End
			continue
		}
		out = append(out, sp)
	}
	return out
}

func sameStyle(a, b Span) bool {
	return a.Color == b.Color && a.Bold == b.Bold && a.Italic == b.Italic
}

// Clip returns the spans overlapping [from, to), shifted so that from
// becomes offset 0.
func Clip(spans []Span, from, to int) []Span {
	var out []Span
	for _, sp := range spans {
		if sp.End <= from || sp.Start >= to {
			continue
		}
		sp.Start = max(sp.Start, from) - from
		sp.End = min(sp.End, to) - from
		out = append(out, sp)
	}
	return out
}

// Palette holds UI chrome colors derived deterministically from a Chroma theme.
// The grayscale ramp is a linear interpolation from bg to fg; the accent is the
// most saturated token color in the palette; error comes from the Error token.
type Palette struct {
	Bg     string // Theme background
	Fg     string // Theme foreground (primary text)
	Border string // 10% bg→fg, borders, dividers
	Dim    string // 25% bg→fg, tertiary text, timestamps
	Muted  string // 45% bg→fg, secondary text
	Accent string // Most saturated token color
	Error  string // From chroma Error token, lerped 45% toward fg
}

// ThemePalette derives a full UI color palette from a Chroma theme name.
// Deterministic: same theme → same output. Falls back to sensible defaults
// when the theme is missing entries.
func ThemePalette(theme string) Palette {
	sty := styles.Get(theme)
	if sty == nil {
		return defaultPalette()
	}
	entry := sty.Get(chroma.Background)
	bg := "#000000"
	fg := "#c8c8c8"
	if entry.Background.IsSet() {
		bg = entry.Background.String()
	}
	if entry.Colour.IsSet() {
		fg = entry.Colour.String()
	}

	p := Palette{
		Bg:     bg,
		Fg:     fg,
		Border: lerpHex(bg, fg, 0.10),
		Dim:    lerpHex(bg, fg, 0.25),
		Muted:  lerpHex(bg, fg, 0.45),
		Accent: pickAccent(sty, fg),
		Error:  pickError(sty, bg, fg),
	}
	return p
}

func defaultPalette() Palette {
	return Palette{
		Bg: "#000000", Fg: "#c8c8c8",
		Border: "#141414",
		Dim: "#323232", Muted: "#5a5a5a",
		Accent: "#00dfff", Error: "#932e2e",
	}
}

// pickAccent returns the most saturated foreground color across all tokens.
func pickAccent(sty *chroma.Style, fallback string) string {
	best := fallback
	bestSat := 0.0
	for tt := chroma.TokenType(0); tt < 2000; tt++ {
		e := sty.Get(tt)
		if !e.Colour.IsSet() {
			continue
		}
		hex := e.Colour.String()
		r, g, b := hexToRGBf(hex)
		mx := maxf(r, maxf(g, b))
		mn := minf(r, minf(g, b))
		if mx == 0 {
			continue
		}
		sat := (mx - mn) / mx
		if sat > bestSat {
			bestSat = sat
			best = hex
		}
	}
	return best
}

// pickError extracts the Error token color and lerps it 45% toward fg
// so it's visible but not garish against the theme background.
func pickError(sty *chroma.Style, bg, fg string) string {
	e := sty.Get(chroma.Error)
	if !e.Colour.IsSet() {
		return lerpHex(bg, fg, 0.45) // muted fallback
	}
	return lerpHex(bg, e.Colour.String(), 0.45)
}

// lerpHex linearly interpolates between two hex colors at fraction t.
func lerpHex(a, b string, t float64) string {
	ar, ag, ab := hexToRGBf(a)
	br, bg, bb := hexToRGBf(b)
	return fmt.Sprintf("#%02x%02x%02x",
		clampByte(ar+(br-ar)*t),
		clampByte(ag+(bg-ag)*t),
		clampByte(ab+(bb-ab)*t),
	)
}

func hexToRGBf(hex string) (float64, float64, float64) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0
	}
	return float64(hexByte(hex[1], hex[2])),
		float64(hexByte(hex[3], hex[4])),
		float64(hexByte(hex[5], hex[6]))
}

func clampByte(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return int(v + 0.5)
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func hexByte(hi, lo byte) int {
	return hexNibble(hi)<<4 | hexNibble(lo)
}

func hexNibble(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return 0
}
