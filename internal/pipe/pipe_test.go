package pipe

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestCommandFIFO(t *testing.T) {
	p := NewCommand()
	p.Push("first")
	p.Push("second")

	ctx := context.Background()
	for _, want := range []string{"first", "second"} {
		got, ok := p.WaitGet(ctx)
		if !ok || got != want {
			t.Fatalf("WaitGet() = %q, %v; want %q", got, ok, want)
		}
	}
}

func TestWaitGetAfterShutdownReturnsImmediately(t *testing.T) {
	p := NewCommand()
	p.Shutdown()

	done := make(chan bool)
	go func() {
		_, ok := p.WaitGet(context.Background())
		done <- ok
	}()
	select {
	case ok := <-done:
		if ok {
			t.Error("WaitGet returned a command after shutdown")
		}
	case <-time.After(time.Second):
		t.Fatal("WaitGet blocked after shutdown")
	}
}

func TestShutdownWakesWaiter(t *testing.T) {
	p := NewCommand()
	done := make(chan bool)
	go func() {
		_, ok := p.WaitGet(context.Background())
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	p.Shutdown()
	p.Shutdown()
	select {
	case ok := <-done:
		if ok {
			t.Error("woken waiter got a command")
		}
	case <-time.After(time.Second):
		t.Fatal("Shutdown did not wake the waiter")
	}
}

func TestShutdownDrainsQueuedThenStops(t *testing.T) {
	p := NewCommand()
	p.Push("queued")
	p.Shutdown()
	p.Push("late")

	ctx := context.Background()
	if got, ok := p.WaitGet(ctx); !ok || got != "queued" {
		t.Fatalf("WaitGet() = %q, %v; want queued command", got, ok)
	}
	if got, ok := p.WaitGet(ctx); ok {
		t.Errorf("push after shutdown observed: %q", got)
	}
}

func TestWaitGetContextCancel(t *testing.T) {
	p := NewCommand()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, ok := p.WaitGet(ctx); ok {
		t.Error("WaitGet returned ok on an empty pipe")
	}
}

func TestCommandConcurrentProducer(t *testing.T) {
	p := NewCommand()
	const n = 500

	var got []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			cmd, ok := p.WaitGet(context.Background())
			if !ok {
				return
			}
			got = append(got, cmd)
		}
	}()

	for i := 0; i < n; i++ {
		p.Push(fmt.Sprintf("cmd %d", i))
	}
	for p.Len() > 0 {
		time.Sleep(time.Millisecond)
	}
	p.Shutdown()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not exit")
	}
	if len(got) != n {
		t.Fatalf("got %d commands, want %d", len(got), n)
	}
	for i, cmd := range got {
		if want := fmt.Sprintf("cmd %d", i); cmd != want {
			t.Fatalf("command %d = %q, want %q", i, cmd, want)
		}
	}
}

func TestTasksFIFO(t *testing.T) {
	var q Tasks[*[]int]
	var out []int
	for i := 0; i < 3; i++ {
		i := i
		q.Post(func(s *[]int) { *s = append(*s, i) })
	}
	if n := q.Drain(&out); n != 3 {
		t.Errorf("Drain ran %d tasks, want 3", n)
	}
	if fmt.Sprint(out) != "[0 1 2]" {
		t.Errorf("out = %v", out)
	}
}

func TestTasksPostedWhileDrainingWait(t *testing.T) {
	var q Tasks[int]
	ran := 0
	q.Post(func(int) {
		ran++
		q.Post(func(int) { ran++ })
	})
	if n := q.Drain(0); n != 1 || ran != 1 {
		t.Fatalf("first drain: n=%d ran=%d", n, ran)
	}
	if n := q.Drain(0); n != 1 || ran != 2 {
		t.Errorf("second drain: n=%d ran=%d", n, ran)
	}
}

func TestTasksConcurrentPost(t *testing.T) {
	var q Tasks[*int]
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Post(func(n *int) { *n++ })
			}
		}()
	}
	wg.Wait()
	total := 0
	q.Drain(&total)
	if total != 800 {
		t.Errorf("total = %d, want 800", total)
	}
}
