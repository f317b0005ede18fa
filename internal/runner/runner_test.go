package runner

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xonecas/scrollcon/internal/console"
	"github.com/xonecas/scrollcon/internal/scrollback"
	"github.com/xonecas/scrollcon/internal/shell"
)

type line struct {
	Text  string
	Color string
}

func startRunner(t *testing.T) (*console.Session, chan error) {
	t.Helper()
	s := console.New(console.Options{})
	r := New(s, shell.New(t.TempDir(), shell.DefaultBlockFuncs()), 10*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		s.Shutdown()
		<-done
	})
	return s, done
}

func submit(s *console.Session, cmd string) {
	s.TextInput(cmd)
	s.KeyDown("enter", 0)
}

// output returns the output entries, oldest first.
func output(s *console.Session) []line {
	var out []line
	s.Store().EachOldest(func(e *scrollback.Entry) bool {
		if e.Kind == scrollback.Output {
			out = append(out, line{e.Text, e.Color})
		}
		return true
	})
	return out
}

// waitOutput pumps frames until n output lines have arrived.
func waitOutput(t *testing.T, s *console.Session, n int) []line {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		s.Frame()
		if out := output(s); len(out) >= n {
			return out
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d lines, have %+v", n, output(s))
	return nil
}

func TestRunStreamsStdout(t *testing.T) {
	s, _ := startRunner(t)
	submit(s, "echo one; echo two")
	got := waitOutput(t, s, 2)
	want := []line{{"one", ""}, {"two", ""}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("output = %+v, want %+v", got, want)
	}
}

func TestRunReportsFailure(t *testing.T) {
	s, _ := startRunner(t)
	submit(s, "echo bad >&2; exit 2")
	got := waitOutput(t, s, 2)
	want := []line{{"bad", ErrorColor}, {"[exit code: 2]", ErrorColor}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("output = %+v, want %+v", got, want)
	}
}

func TestRunBlockedCommand(t *testing.T) {
	s, _ := startRunner(t)
	submit(s, "vim notes.txt")
	got := waitOutput(t, s, 2)
	if !strings.Contains(got[0].Text, `command blocked: "vim"`) || got[0].Color != ErrorColor {
		t.Errorf("first line = %+v", got[0])
	}
	if got[1] != (line{"[exit code: 1]", ErrorColor}) {
		t.Errorf("second line = %+v", got[1])
	}
}

func TestShellStatePersists(t *testing.T) {
	s, _ := startRunner(t)
	submit(s, "export NAME=world")
	submit(s, `echo "hello $NAME"`)
	got := waitOutput(t, s, 1)
	if got[0].Text != "hello world" {
		t.Errorf("output = %+v", got)
	}
}

func TestHistoryAndClearBuiltins(t *testing.T) {
	s, _ := startRunner(t)
	submit(s, "echo a")
	waitOutput(t, s, 1)
	submit(s, "history")
	got := waitOutput(t, s, 3)
	if got[1].Text != "    1  echo a" || got[2].Text != "    2  history" {
		t.Errorf("history output = %+v", got)
	}

	submit(s, "clear")
	deadline := time.Now().Add(5 * time.Second)
	for s.Store().Len() > 0 && time.Now().Before(deadline) {
		s.Frame()
		time.Sleep(5 * time.Millisecond)
	}
	if s.Store().Len() != 0 {
		t.Errorf("clear left %d entries", s.Store().Len())
	}
}

type fakeHistory struct{ cleared chan struct{} }

func (h *fakeHistory) Clear() error {
	h.cleared <- struct{}{}
	return nil
}

func TestHistoryClearBuiltin(t *testing.T) {
	s := console.New(console.Options{History: []string{"old"}})
	hist := &fakeHistory{cleared: make(chan struct{}, 1)}
	r := New(s, shell.New(t.TempDir(), nil), 10*time.Second).WithHistory(hist)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	defer func() {
		cancel()
		s.Shutdown()
		<-done
	}()

	submit(s, "history   -c")
	select {
	case <-hist.cleared:
	case <-time.After(5 * time.Second):
		t.Fatal("persisted history not cleared")
	}
	deadline := time.Now().Add(5 * time.Second)
	for len(s.Prompt().History()) > 0 && time.Now().Before(deadline) {
		s.Frame()
		time.Sleep(5 * time.Millisecond)
	}
	if h := s.Prompt().History(); len(h) != 0 {
		t.Fatalf("prompt history = %q", h)
	}

	submit(s, "history")
	if got := waitOutput(t, s, 1); got[0].Text != "    1  history" {
		t.Errorf("history after clear = %+v", got)
	}
}

func TestExitStopsRunner(t *testing.T) {
	s, done := startRunner(t)
	submit(s, "exit")
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v", err)
		}
		done <- err // for cleanup
	case <-time.After(5 * time.Second):
		t.Fatal("runner still running after exit")
	}
	if f := s.Frame(); !f.Quit {
		t.Error("exit did not request quit")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	s := console.New(console.Options{})
	defer s.Shutdown()
	r := New(s, shell.New(t.TempDir(), nil), 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
	if r.Interrupt() {
		t.Error("Interrupt reported a running command")
	}
}

func TestLineWriter(t *testing.T) {
	var got []string
	w := newLineWriter(func(s string) { got = append(got, s) })
	w.Write([]byte("ab"))
	w.Write([]byte("c\r\nde\n\nf"))
	if want := []string{"abc", "de", ""}; !reflect.DeepEqual(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}
	w.Flush()
	w.Flush()
	if got[len(got)-1] != "f" || len(got) != 4 {
		t.Errorf("after flush = %q", got)
	}
}
