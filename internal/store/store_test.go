package store

import (
	"path/filepath"
	"reflect"
	"sync"
	"testing"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	h, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestHistory_AppendLoad(t *testing.T) {
	h := openTestHistory(t)

	if cmds, err := h.Load(10); err != nil || len(cmds) != 0 {
		t.Fatalf("empty Load = %q, %v", cmds, err)
	}

	for _, c := range []string{"ls", "cd /tmp", "make test"} {
		h.Append(c)
	}
	h.Flush()

	got, err := h.Load(10)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := []string{"ls", "cd /tmp", "make test"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHistory_LoadLimitKeepsNewest(t *testing.T) {
	h := openTestHistory(t)
	for _, c := range []string{"a", "b", "c", "d"} {
		h.Append(c)
	}
	h.Flush()

	got, _ := h.Load(2)
	if want := []string{"c", "d"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHistory_Persists(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	h, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	h.Append("echo one")
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	h2, err := Open(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer h2.Close()
	got, _ := h2.Load(10)
	if !reflect.DeepEqual(got, []string{"echo one"}) {
		t.Errorf("after reopen: %q", got)
	}
}

func TestHistory_PruneAndClear(t *testing.T) {
	h := openTestHistory(t)
	for _, c := range []string{"a", "b", "c"} {
		h.Append(c)
	}
	h.Flush()

	if err := h.Prune(1); err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if got, _ := h.Load(10); !reflect.DeepEqual(got, []string{"c"}) {
		t.Errorf("after prune: %q", got)
	}
	if err := h.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if got, _ := h.Load(10); len(got) != 0 {
		t.Errorf("after clear: %q", got)
	}
}

func TestHistory_NilReceiver(t *testing.T) {
	var h *History
	h.Append("x")
	h.Flush()
	if cmds, err := h.Load(5); cmds != nil || err != nil {
		t.Errorf("nil Load = %q, %v", cmds, err)
	}
	if err := h.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestHistory_AppendRacesClose(t *testing.T) {
	h := openTestHistory(t)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.Append("cmd")
			}
		}()
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	wg.Wait()

	h.Append("late")
	h.Flush()
	if err := h.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}
