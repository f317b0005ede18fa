package scrollback

import (
	"fmt"
	"strings"
	"testing"
)

func sumLines(s *Store) int {
	n := 0
	s.EachOldest(func(e *Entry) bool {
		n += e.Lines()
		return true
	})
	return n
}

func TestStoreEvictsOldest(t *testing.T) {
	s := NewStore(2)
	s.Push(Output, "one", "")
	s.Push(Output, "two", "")
	s.Push(Output, "three", "")

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if s.TotalLines() != 2 {
		t.Fatalf("TotalLines() = %d, want 2", s.TotalLines())
	}
	newest, _ := s.Newest(0)
	older, _ := s.Newest(1)
	if newest.Text != "three" || older.Text != "two" {
		t.Errorf("kept %q, %q; want three, two", newest.Text, older.Text)
	}
	if _, ok := s.Lookup(1); ok {
		t.Error("evicted entry 1 still found")
	}
}

func TestStoreIDsIncrease(t *testing.T) {
	s := NewStore(10)
	a := s.Push(Input, "a", "")
	b := s.Push(Output, "b", "")
	if a.ID <= PromptID || b.ID <= a.ID {
		t.Errorf("ids %d, %d not increasing above prompt id", a.ID, b.ID)
	}
	s.Clear()
	c := s.Push(Output, "c", "")
	if c.ID <= b.ID {
		t.Errorf("id %d reused after Clear", c.ID)
	}
}

func TestStoreBoundHolds(t *testing.T) {
	s := NewStore(25)
	s.Rewrap(1, 10)
	for i := 0; i < 200; i++ {
		s.Push(Output, strings.Repeat(fmt.Sprintf("line %d ", i), i%5+1), "")
		if s.TotalLines() > s.Limit() {
			t.Fatalf("push %d: TotalLines %d over limit %d", i, s.TotalLines(), s.Limit())
		}
		if got := sumLines(s); got != s.TotalLines() {
			t.Fatalf("push %d: counter %d, sum of fragments %d", i, s.TotalLines(), got)
		}
	}
}

func TestStoreRewrapKeepsCounter(t *testing.T) {
	s := NewStore(1000)
	s.Rewrap(1, 40)
	for i := 0; i < 10; i++ {
		s.Push(Output, "a fairly long line of output that will need to wrap", "")
	}
	before := s.TotalLines()
	s.Rewrap(1, 10)
	if s.TotalLines() <= before {
		t.Errorf("narrower width: %d lines, was %d", s.TotalLines(), before)
	}
	if got := sumLines(s); got != s.TotalLines() {
		t.Errorf("counter %d, sum %d", s.TotalLines(), got)
	}
}

func TestStoreClear(t *testing.T) {
	s := NewStore(100)
	s.Push(Output, "x", "")
	s.Clear()
	if s.Len() != 0 || s.TotalLines() != 0 {
		t.Errorf("after Clear: Len %d TotalLines %d", s.Len(), s.TotalLines())
	}
}

func TestStoreLinesBelow(t *testing.T) {
	s := NewStore(100)
	s.Rewrap(1, 5)
	a := s.Push(Output, "aaaa bbbb", "") // 2 lines
	s.Push(Output, "cc", "")             // 1 line
	s.Push(Output, "dddd eeee ffff", "") // 3 lines

	tests := []struct {
		frag int
		want int
	}{
		{1, 4},
		{0, 5},
	}
	for _, tt := range tests {
		got, ok := s.LinesBelow(a.ID, tt.frag)
		if !ok || got != tt.want {
			t.Errorf("LinesBelow(%d, %d) = %d, %v; want %d", a.ID, tt.frag, got, ok, tt.want)
		}
	}
	if _, ok := s.LinesBelow(999, 0); ok {
		t.Error("unknown id reported as found")
	}
}

func TestPromptEntrySetText(t *testing.T) {
	e := NewEntry(Input, PromptID, "> ", "", 1, 5)
	if delta := e.SetText("> hello world"); delta != 2 {
		t.Errorf("line delta = %d, want 2 (%q)", delta, fragTexts(e.Fragments()))
	}
}
