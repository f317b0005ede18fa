package scrollback

import (
	"sort"

	"github.com/rs/zerolog/log"
)

// DefaultLimit is the default scrollback budget in wrapped lines.
const DefaultLimit = 1000

// Store is the bounded scrollback. Entries are kept oldest first; callers
// that draw walk them newest first with Newest or EachNewest.
// Not safe for concurrent use.
type Store struct {
	entries []*Entry
	total   int
	limit   int
	nextID  int64

	charWidth int
	width     int
}

// NewStore creates an empty store with the given line budget.
func NewStore(limit int) *Store {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Store{limit: limit, nextID: PromptID + 1, charWidth: 1, width: 80}
}

// Push appends a new entry, wraps it and evicts old entries that no
// longer fit the budget.
func (s *Store) Push(kind Kind, text, color string) *Entry {
	e := NewEntry(kind, s.nextID, text, color, s.charWidth, s.width)
	s.nextID++
	s.entries = append(s.entries, e)
	s.total += e.Lines()
	s.EvictIfOverBudget()
	return e
}

// EvictIfOverBudget drops the oldest entries while the wrapped-line count
// exceeds the limit. It returns the number of evicted entries.
func (s *Store) EvictIfOverBudget() int {
	n := 0
	for s.total > s.limit && n < len(s.entries) {
		s.total -= s.entries[n].Lines()
		s.entries[n] = nil
		n++
	}
	if n > 0 {
		s.entries = s.entries[n:]
		log.Debug().Int("evicted", n).Int("lines", s.total).Msg("scrollback: evicted entries")
	}
	return n
}

// Clear removes every entry. Ids keep increasing.
func (s *Store) Clear() {
	clear(s.entries)
	s.entries = s.entries[:0]
	s.total = 0
}

// Rewrap re-wraps every entry for a new geometry.
func (s *Store) Rewrap(charWidth, width int) {
	if charWidth == s.charWidth && width == s.width {
		return
	}
	s.charWidth, s.width = charWidth, width
	s.total = 0
	for _, e := range s.entries {
		e.Rewrap(charWidth, width)
		s.total += e.Lines()
	}
	s.EvictIfOverBudget()
}

// TotalLines returns the wrapped-line count of all stored entries.
func (s *Store) TotalLines() int { return s.total }

// Len returns the number of stored entries.
func (s *Store) Len() int { return len(s.entries) }

// Limit returns the line budget.
func (s *Store) Limit() int { return s.limit }

// Newest returns the i-th entry counting from the newest (i == 0).
func (s *Store) Newest(i int) (*Entry, bool) {
	if i < 0 || i >= len(s.entries) {
		return nil, false
	}
	return s.entries[len(s.entries)-1-i], true
}

// EachNewest calls fn for every entry from newest to oldest until fn
// returns false.
func (s *Store) EachNewest(fn func(*Entry) bool) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		if !fn(s.entries[i]) {
			return
		}
	}
}

// EachOldest calls fn for every entry from oldest to newest until fn
// returns false.
func (s *Store) EachOldest(fn func(*Entry) bool) {
	for _, e := range s.entries {
		if !fn(e) {
			return
		}
	}
}

// Lookup finds a stored entry by id. Evicted ids are simply not found.
func (s *Store) Lookup(id int64) (*Entry, bool) {
	i := sort.Search(len(s.entries), func(i int) bool { return s.entries[i].ID >= id })
	if i < len(s.entries) && s.entries[i].ID == id {
		return s.entries[i], true
	}
	return nil, false
}

// LinesBelow returns how many wrapped lines of the store lie strictly
// below the given fragment of entry id, i.e. the scroll offset that puts
// it on the bottom scrollback row.
func (s *Store) LinesBelow(id int64, fragment int) (int, bool) {
	e, ok := s.Lookup(id)
	if !ok || fragment < 0 || fragment >= e.Lines() {
		return 0, false
	}
	n := e.Lines() - 1 - fragment
	for i := len(s.entries) - 1; i >= 0 && s.entries[i].ID != id; i-- {
		n += s.entries[i].Lines()
	}
	return n, true
}
