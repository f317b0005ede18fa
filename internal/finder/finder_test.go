package finder

import (
	"reflect"
	"testing"

	"github.com/xonecas/scrollcon/internal/scrollback"
	"github.com/xonecas/scrollcon/internal/viewport"
)

func store(width int, texts ...string) *scrollback.Store {
	s := scrollback.NewStore(1000)
	s.Rewrap(1, width)
	for _, t := range texts {
		s.Push(scrollback.Output, t, "")
	}
	return s
}

func TestSearchSingleMatch(t *testing.T) {
	s := store(80, "a cat sat", "no match")
	f := New(true)
	f.Search(s, "cat")

	want := []Match{{Key: LineKey{EntryID: 1, Fragment: 0}, StartCol: 2, EndCol: 5}}
	if !reflect.DeepEqual(f.Matches(), want) {
		t.Errorf("Matches = %+v, want %+v", f.Matches(), want)
	}
	if len(f.LineMatches()) != 1 {
		t.Errorf("LineMatches = %+v", f.LineMatches())
	}
}

func TestSearchEmptyAndMissing(t *testing.T) {
	s := store(80, "abc")
	f := New(true)
	for _, needle := range []string{"", "zzz"} {
		f.Search(s, needle)
		if len(f.Matches()) != 0 || len(f.LineMatches()) != 0 {
			t.Errorf("%q: got matches", needle)
		}
		if _, ok := f.Next(); ok {
			t.Errorf("%q: Next on empty returned ok", needle)
		}
		if _, ok := f.PrevLine(); ok {
			t.Errorf("%q: PrevLine on empty returned ok", needle)
		}
		if _, ok := f.Current(); ok {
			t.Errorf("%q: Current on empty returned ok", needle)
		}
	}
}

func TestSearchNonOverlapping(t *testing.T) {
	s := store(80, "aaaa")
	f := New(true)
	f.Search(s, "aa")
	want := []Match{
		{Key: LineKey{1, 0}, StartCol: 0, EndCol: 2},
		{Key: LineKey{1, 0}, StartCol: 2, EndCol: 4},
	}
	if !reflect.DeepEqual(f.Matches(), want) {
		t.Errorf("Matches = %+v", f.Matches())
	}
	if len(f.LineMatches()) != 1 {
		t.Errorf("duplicate line keys: %+v", f.LineMatches())
	}
}

func TestSearchSplitAcrossFragments(t *testing.T) {
	// width 6: "xxabcd" | "ef"
	s := store(6, "xxabcdef")
	f := New(true)
	f.Search(s, "cdef")
	want := []Match{
		{Key: LineKey{1, 0}, StartCol: 4, EndCol: 6},
		{Key: LineKey{1, 1}, StartCol: 0, EndCol: 2},
	}
	if !reflect.DeepEqual(f.Matches(), want) {
		t.Fatalf("Matches = %+v, want %+v", f.Matches(), want)
	}
	if want := []LineKey{{1, 1}, {1, 0}}; !reflect.DeepEqual(f.LineMatches(), want) {
		t.Errorf("LineMatches = %+v, want %+v", f.LineMatches(), want)
	}
}

func TestLineOrderFollowsViewport(t *testing.T) {
	// width 4: entry 1 "ab" | "ab"; entry 2 "ab"
	s := store(4, "ab ab", "ab")
	f := New(true)
	f.Search(s, "ab")

	if want := []LineKey{{2, 0}, {1, 1}, {1, 0}}; !reflect.DeepEqual(f.LineMatches(), want) {
		t.Errorf("LineMatches = %+v, want %+v", f.LineMatches(), want)
	}
	// Matches keep left-to-right order within an entry.
	var keys []LineKey
	for _, m := range f.Matches() {
		keys = append(keys, m.Key)
	}
	if want := []LineKey{{2, 0}, {1, 0}, {1, 1}}; !reflect.DeepEqual(keys, want) {
		t.Errorf("match keys = %+v, want %+v", keys, want)
	}
}

func TestNavigationWraps(t *testing.T) {
	s := store(80, "x y x", "x", "zz x")
	f := New(true)
	f.Search(s, "x")
	n := len(f.Matches())
	if n != 4 {
		t.Fatalf("%d matches", n)
	}

	start, _ := f.Current()
	for i := 0; i < n; i++ {
		f.Next()
	}
	if got, _ := f.Current(); got != start || f.Index() != 0 {
		t.Errorf("after %d Next: %+v, want %+v", n, got, start)
	}

	for i := 0; i < 2*n; i++ {
		before := f.Index()
		f.Prev()
		f.Next()
		if f.Index() != before {
			t.Fatalf("Prev then Next moved %d -> %d", before, f.Index())
		}
		f.Next()
	}

	f.Search(s, "x")
	if m, _ := f.Prev(); m != f.Matches()[n-1] {
		t.Errorf("Prev from 0 = %+v, want last match", m)
	}

	lines := len(f.LineMatches())
	for i := 0; i < lines; i++ {
		f.NextLine()
	}
	if f.LineIndex() != 0 {
		t.Errorf("LineIndex after full cycle = %d", f.LineIndex())
	}
	f.PrevLine()
	if f.LineIndex() != lines-1 {
		t.Errorf("PrevLine from 0 = %d, want %d", f.LineIndex(), lines-1)
	}
}

func TestSearchResetsCursors(t *testing.T) {
	s := store(80, "x x x")
	f := New(true)
	f.Search(s, "x")
	f.Next()
	f.NextLine()
	f.Search(s, "x")
	if f.Index() != 0 || f.LineIndex() != 0 {
		t.Errorf("cursors %d, %d after re-search", f.Index(), f.LineIndex())
	}
}

func TestRefreshKeepsCurrentMatch(t *testing.T) {
	s := scrollback.NewStore(3)
	s.Rewrap(1, 80)
	for _, text := range []string{"cat 1", "cat 2", "cat 3"} {
		s.Push(scrollback.Output, text, "")
	}
	f := New(true)
	f.Search(s, "cat")
	want, _ := f.Current() // "cat 3", newest
	wantLine := f.LineMatches()[f.LineIndex()]

	// Evicts "cat 1" and "cat 2", adds one match at the front.
	s.Push(scrollback.Output, "dog", "")
	s.Push(scrollback.Output, "a cat", "")
	f.Refresh(s)
	if n := len(f.Matches()); n != 2 {
		t.Fatalf("Matches after refresh = %+v", f.Matches())
	}
	if got, _ := f.Current(); got != want || f.Index() != 1 || f.LineIndex() != 1 {
		t.Errorf("current = %+v at %d, want %+v", got, f.Index(), want)
	}
	if got := f.LineMatches()[f.LineIndex()]; got != wantLine {
		t.Errorf("current line = %+v, want %+v", got, wantLine)
	}
}

func TestSearchDoesNotReuseResults(t *testing.T) {
	s := store(80, "a cat", "dog")
	f := New(true)
	f.Search(s, "cat")
	held, heldLines := f.Matches(), f.LineMatches()
	want, wantLine := held[0], heldLines[0]

	f.Search(s, "dog")
	if held[0] != want || heldLines[0] != wantLine {
		t.Errorf("earlier results changed: %+v %+v", held[0], heldLines[0])
	}
}

func TestCaseInsensitive(t *testing.T) {
	s := store(80, "Error: FILE not found", "ÉCOLE école")
	f := New(false)
	f.Search(s, "file")
	if len(f.Matches()) != 1 || f.Matches()[0].StartCol != 7 {
		t.Errorf("Matches = %+v", f.Matches())
	}
	f.Search(s, "école")
	if len(f.Matches()) != 2 || f.Matches()[1].StartCol != 6 {
		t.Errorf("unicode fold Matches = %+v", f.Matches())
	}
	f.SetCaseSensitive(true)
	f.Refresh(s)
	if len(f.Matches()) != 1 {
		t.Errorf("case-sensitive Matches = %+v", f.Matches())
	}
}

func TestRectsVisibleOnly(t *testing.T) {
	s := store(80, "cat one", "dog", "cat two")
	f := New(true)
	f.Search(s, "cat")
	g := viewport.Geometry{CharWidth: 2, LineHeight: 3, Bottom: 30}
	v := viewport.New()
	v.Build(s, nil, 0, 2, g)

	hits := f.Rects(v.Rows(), g)
	want := []Hit{{Rect: viewport.Rect{X: 0, Y: 30, W: 6, H: 3}, Current: true}}
	if !reflect.DeepEqual(hits, want) {
		t.Errorf("Rects = %+v, want %+v", hits, want)
	}
}

func TestStaleMatchesAreHarmless(t *testing.T) {
	s := store(80, "needle")
	f := New(true)
	f.Search(s, "needle")
	s.Clear()
	m, ok := f.Current()
	if !ok {
		t.Fatal("results dropped before refresh")
	}
	if _, found := s.Lookup(m.Key.EntryID); found {
		t.Error("cleared entry still found")
	}
	f.Refresh(s)
	if len(f.Matches()) != 0 {
		t.Errorf("Matches after refresh = %+v", f.Matches())
	}
}
