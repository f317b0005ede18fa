// Package finder implements incremental search over wrapped entries with
// navigation by match and by matched line.
package finder

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/zyedidia/generic/mapset"

	"github.com/xonecas/scrollcon/internal/scrollback"
	"github.com/xonecas/scrollcon/internal/viewport"
)

// LineKey identifies one displayed line.
type LineKey struct {
	EntryID  int64
	Fragment int
}

// Match is one occurrence of the needle on one line. Columns are cell
// columns local to the fragment; EndCol is exclusive.
type Match struct {
	Key      LineKey
	StartCol int
	EndCol   int
}

// Entries is the scrollback seen newest first.
type Entries interface {
	EachNewest(fn func(*scrollback.Entry) bool)
}

// Finder holds the result of the last search.
type Finder struct {
	needle        string
	caseSensitive bool

	matches     []Match
	lineMatches []LineKey
	cur         int
	curLine     int
}

// New returns an empty finder.
func New(caseSensitive bool) *Finder {
	return &Finder{caseSensitive: caseSensitive}
}

// Needle returns the current query.
func (f *Finder) Needle() string { return f.needle }

// SetCaseSensitive changes matching for the next search.
func (f *Finder) SetCaseSensitive(v bool) { f.caseSensitive = v }

// CaseSensitive reports the matching mode.
func (f *Finder) CaseSensitive() bool { return f.caseSensitive }

// Search replaces the results with every occurrence of needle in src.
// Entries are visited newest first; occurrences left to right without
// overlap. An occurrence split over several fragments yields one match
// per fragment. For each entry the distinct matched lines are appended
// last fragment first, so line navigation moves up the screen the same
// way the viewport is built. Both cursors restart at 0.
func (f *Finder) Search(src Entries, needle string) {
	f.needle = needle
	f.matches = nil
	f.lineMatches = nil
	f.cur, f.curLine = 0, 0
	if needle == "" {
		return
	}

	src.EachNewest(func(e *scrollback.Entry) bool {
		seen := mapset.New[LineKey]()
		var keys []LineKey
		for _, occ := range occurrences(e.Text, needle, f.caseSensitive) {
			for _, fr := range e.Fragments() {
				if fr.End <= occ[0] || fr.Start >= occ[1] {
					continue
				}
				key := LineKey{EntryID: e.ID, Fragment: fr.Index}
				f.matches = append(f.matches, Match{
					Key:      key,
					StartCol: scrollback.OffsetColumn(fr.Text, max(occ[0], fr.Start)-fr.Start),
					EndCol:   scrollback.OffsetColumn(fr.Text, min(occ[1], fr.End)-fr.Start),
				})
				if !seen.Has(key) {
					seen.Put(key)
					keys = append(keys, key)
				}
			}
		}
		for i := len(keys) - 1; i >= 0; i-- {
			f.lineMatches = append(f.lineMatches, keys[i])
		}
		return true
	})
}

// Refresh re-runs the last search, e.g. after new output or a re-wrap.
// The current match and line stay current while they still exist.
func (f *Finder) Refresh(src Entries) {
	cur, hadCur := f.Current()
	var line LineKey
	hadLine := len(f.lineMatches) > 0
	if hadLine {
		line = f.lineMatches[f.curLine]
	}
	f.Search(src, f.needle)
	if i := slices.Index(f.matches, cur); hadCur && i >= 0 {
		f.cur = i
	}
	if i := slices.Index(f.lineMatches, line); hadLine && i >= 0 {
		f.curLine = i
	}
}

// Reset drops the query and results.
func (f *Finder) Reset() {
	f.needle = ""
	f.matches = nil
	f.lineMatches = nil
	f.cur, f.curLine = 0, 0
}

// occurrences returns the byte ranges of needle in text, left to right
// and non-overlapping.
func occurrences(text, needle string, caseSensitive bool) [][2]int {
	var out [][2]int
	if caseSensitive {
		for i := 0; i <= len(text)-len(needle); {
			j := strings.Index(text[i:], needle)
			if j < 0 {
				break
			}
			start := i + j
			out = append(out, [2]int{start, start + len(needle)})
			i = start + len(needle)
		}
		return out
	}

	n := utf8.RuneCountInString(needle)
	for i := 0; i < len(text); {
		end := i
		for k := 0; k < n && end < len(text); k++ {
			_, size := utf8.DecodeRuneInString(text[end:])
			end += size
		}
		if strings.EqualFold(text[i:end], needle) {
			out = append(out, [2]int{i, end})
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return out
}

// Matches returns every match in search order.
func (f *Finder) Matches() []Match { return f.matches }

// LineMatches returns the distinct matched lines in navigation order.
func (f *Finder) LineMatches() []LineKey { return f.lineMatches }

// Index returns the current match index.
func (f *Finder) Index() int { return f.cur }

// LineIndex returns the current line index.
func (f *Finder) LineIndex() int { return f.curLine }

// Current returns the current match.
func (f *Finder) Current() (Match, bool) {
	if len(f.matches) == 0 {
		return Match{}, false
	}
	return f.matches[f.cur], true
}

func step(i, n, d int) int { return ((i+d)%n + n) % n }

// Next advances to the following match, wrapping around.
func (f *Finder) Next() (Match, bool) {
	if len(f.matches) == 0 {
		return Match{}, false
	}
	f.cur = step(f.cur, len(f.matches), 1)
	return f.matches[f.cur], true
}

// Prev moves to the preceding match, wrapping around.
func (f *Finder) Prev() (Match, bool) {
	if len(f.matches) == 0 {
		return Match{}, false
	}
	f.cur = step(f.cur, len(f.matches), -1)
	return f.matches[f.cur], true
}

// NextLine advances to the following matched line, wrapping around.
func (f *Finder) NextLine() (LineKey, bool) {
	if len(f.lineMatches) == 0 {
		return LineKey{}, false
	}
	f.curLine = step(f.curLine, len(f.lineMatches), 1)
	return f.lineMatches[f.curLine], true
}

// PrevLine moves to the preceding matched line, wrapping around.
func (f *Finder) PrevLine() (LineKey, bool) {
	if len(f.lineMatches) == 0 {
		return LineKey{}, false
	}
	f.curLine = step(f.curLine, len(f.lineMatches), -1)
	return f.lineMatches[f.curLine], true
}

// Hit is a visible match rectangle.
type Hit struct {
	Rect    viewport.Rect
	Current bool
}

// Rects returns a rectangle for every match on a visible row.
func (f *Finder) Rects(rows []viewport.Row, g viewport.Geometry) []Hit {
	if len(f.matches) == 0 || len(rows) == 0 {
		return nil
	}
	visible := make(map[LineKey]viewport.Row, len(rows))
	for _, r := range rows {
		if !r.Prompt {
			visible[LineKey{EntryID: r.EntryID, Fragment: r.Fragment.Index}] = r
		}
	}
	var hits []Hit
	for i, m := range f.matches {
		r, ok := visible[m.Key]
		if !ok || m.EndCol <= m.StartCol {
			continue
		}
		hits = append(hits, Hit{Rect: g.Span(r, m.StartCol, m.EndCol), Current: i == f.cur})
	}
	return hits
}
