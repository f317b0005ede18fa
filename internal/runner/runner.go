// Package runner consumes submitted command lines and runs them through
// the in-process shell, streaming output back into the console.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/scrollcon/internal/console"
	"github.com/xonecas/scrollcon/internal/scrollback"
	"github.com/xonecas/scrollcon/internal/shell"
)

// ErrorColor tints stderr and failure lines.
const ErrorColor = "#ff6e6e"

// Persisted is the on-disk command history.
type Persisted interface {
	Clear() error
}

// Runner executes commands one at a time.
type Runner struct {
	session *console.Session
	sh      *shell.Shell
	hist    Persisted
	timeout time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates a runner for a session. A zero timeout means commands run
// until they finish or the runner stops.
func New(s *console.Session, sh *shell.Shell, timeout time.Duration) *Runner {
	return &Runner{session: s, sh: sh, timeout: timeout}
}

// WithHistory lets "history -c" clear the persisted history too.
func (r *Runner) WithHistory(p Persisted) *Runner {
	r.hist = p
	return r
}

// Run consumes commands until the pipe shuts down or ctx is cancelled.
// It returns ctx.Err() in the latter case and nil otherwise.
func (r *Runner) Run(ctx context.Context) error {
	for {
		cmd, ok := r.session.Commands().WaitGet(ctx)
		if !ok {
			return ctx.Err()
		}
		if !r.handle(ctx, cmd) {
			return nil
		}
	}
}

// Interrupt cancels the command currently running, if any.
func (r *Runner) Interrupt() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return false
	}
	r.cancel()
	return true
}

// handle runs one command line and reports whether to keep going.
func (r *Runner) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	if builtin, ok := builtins[strings.Join(fields, " ")]; ok {
		return builtin(r)
	}
	r.exec(ctx, line)
	return true
}

// ---------------------------------------------------------------------------
// Builtins
// ---------------------------------------------------------------------------

var builtins = map[string]func(*Runner) bool{
	"clear": func(r *Runner) bool {
		r.session.Post((*console.Session).Clear)
		return true
	},
	"history": func(r *Runner) bool {
		r.session.Post(func(s *console.Session) {
			for i, cmd := range s.Prompt().History() {
				s.Append(scrollback.Output, fmt.Sprintf("%5d  %s", i+1, cmd), "")
			}
		})
		return true
	},
	"history -c": func(r *Runner) bool {
		if r.hist != nil {
			if err := r.hist.Clear(); err != nil {
				log.Warn().Err(err).Msg("failed to clear history")
				r.session.Print(err.Error(), ErrorColor)
			}
		}
		r.session.Post(func(s *console.Session) { s.Prompt().SetHistory(nil) })
		return true
	},
	"exit": quit,
	"quit": quit,
}

func quit(r *Runner) bool {
	r.session.Post((*console.Session).RequestQuit)
	r.session.Shutdown()
	return false
}

// ---------------------------------------------------------------------------
// Shell commands
// ---------------------------------------------------------------------------

func (r *Runner) exec(ctx context.Context, line string) {
	ctx, cancel := r.commandContext(ctx)
	defer func() {
		cancel()
		r.mu.Lock()
		r.cancel = nil
		r.mu.Unlock()
	}()

	stdout := newLineWriter(func(s string) { r.session.Print(s, "") })
	stderr := newLineWriter(func(s string) { r.session.Print(s, ErrorColor) })

	start := time.Now()
	err := r.sh.ExecStream(ctx, line, stdout, stderr)
	stdout.Flush()
	stderr.Flush()

	code := shell.ExitCode(err)
	log.Debug().Str("cmd", line).Int("exit", code).Dur("took", time.Since(start)).Msg("runner: command finished")

	switch {
	case ctx.Err() == context.DeadlineExceeded:
		r.session.Print("[timed out]", ErrorColor)
	case ctx.Err() == context.Canceled:
		r.session.Print("[interrupted]", ErrorColor)
	case err != nil && !shell.IsExitStatus(err):
		r.session.Print(err.Error(), ErrorColor)
	}
	if code != 0 {
		r.session.Printf(ErrorColor, "[exit code: %d]", code)
	}
}

func (r *Runner) commandContext(ctx context.Context) (context.Context, context.CancelFunc) {
	var cancel context.CancelFunc
	if r.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
	return ctx, cancel
}

// lineWriter splits a byte stream into lines, calling emit for each
// complete one. Carriage returns are dropped.
type lineWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	emit func(string)
}

func newLineWriter(emit func(string)) *lineWriter {
	return &lineWriter{emit: emit}
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf.Write(p)
	for {
		i := bytes.IndexByte(w.buf.Bytes(), '\n')
		if i < 0 {
			break
		}
		line := string(w.buf.Next(i + 1))
		w.emit(strings.TrimRight(line, "\r\n"))
	}
	return len(p), nil
}

// Flush emits any trailing partial line.
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.emit(strings.TrimRight(w.buf.String(), "\r"))
		w.buf.Reset()
	}
}
