// Package pipe holds the two queues that cross goroutine boundaries: the
// command pipe carrying submitted lines out of the UI goroutine, and the
// task queue carrying work back into it.
package pipe

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Command is an unbounded FIFO of submitted command lines with a single
// consumer. Push never blocks.
type Command struct {
	mu     sync.Mutex
	queue  []string
	closed bool

	notify chan struct{}
	done   chan struct{}
	once   sync.Once
}

// NewCommand returns an open pipe.
func NewCommand() *Command {
	return &Command{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Push queues cmd and wakes the consumer. After Shutdown the command is
// accepted and dropped.
func (p *Command) Push(cmd string) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		log.Debug().Str("cmd", cmd).Msg("pipe: push after shutdown dropped")
		return
	}
	p.queue = append(p.queue, cmd)
	p.mu.Unlock()

	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// WaitGet blocks until a command is available and returns it. It returns
// false once the pipe is shut down and every command queued before the
// shutdown has been handed out, or when ctx is done.
func (p *Command) WaitGet(ctx context.Context) (string, bool) {
	for {
		if cmd, ok := p.pop(); ok {
			return cmd, true
		}
		if p.isClosed() {
			return "", false
		}
		select {
		case <-p.notify:
			// Re-check: the wake-up may belong to a command already taken.
		case <-p.done:
		case <-ctx.Done():
			return "", false
		}
	}
}

func (p *Command) pop() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return "", false
	}
	cmd := p.queue[0]
	p.queue[0] = ""
	p.queue = p.queue[1:]
	return cmd, true
}

func (p *Command) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// Shutdown wakes every waiter for good. Safe to call more than once and
// from any goroutine.
func (p *Command) Shutdown() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		n := len(p.queue)
		p.mu.Unlock()
		close(p.done)
		log.Debug().Int("pending", n).Msg("pipe: shutdown")
	})
}

// Done is closed by Shutdown.
func (p *Command) Done() <-chan struct{} { return p.done }

// Len returns the number of queued commands.
func (p *Command) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}
