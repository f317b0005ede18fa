// Package store persists submitted prompt commands in SQLite so history
// survives restarts. Scrollback itself is never stored.
package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // register sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	command  TEXT NOT NULL,
	created  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_created ON history(created);
`

// saveQueueSize bounds the async write queue.
const saveQueueSize = 256

type saveReq struct {
	command string
	at      time.Time
	flush   chan struct{}
}

// History is a SQLite-backed command history. Methods are safe on a nil
// receiver, which behaves as disabled persistence.
type History struct {
	mu     sync.Mutex
	db     *sql.DB
	saveCh chan saveReq
	done   chan struct{}

	// sendMu guards saveCh against sends after Close.
	sendMu sync.RWMutex
	closed bool
}

// Open creates or opens a history database at the given path.
func Open(dbPath string) (*History, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	// SQLite pragmas for performance.
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	h := &History{
		db:     db,
		saveCh: make(chan saveReq, saveQueueSize),
		done:   make(chan struct{}),
	}
	go h.saveLoop()
	return h, nil
}

// Close drains pending writes and closes the database.
func (h *History) Close() error {
	if h == nil {
		return nil
	}
	h.sendMu.Lock()
	if h.closed {
		h.sendMu.Unlock()
		return nil
	}
	h.closed = true
	close(h.saveCh)
	h.sendMu.Unlock()

	<-h.done
	return h.db.Close()
}

// Load returns the newest limit commands, oldest first.
func (h *History) Load(limit int) ([]string, error) {
	if h == nil {
		return nil, nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	rows, err := h.db.Query(
		`SELECT command FROM (
			SELECT id, command FROM history ORDER BY id DESC LIMIT ?
		 ) ORDER BY id`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	defer rows.Close()

	var cmds []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			continue
		}
		cmds = append(cmds, c)
	}
	return cmds, rows.Err()
}

// Append queues a command for async persistence. Non-blocking.
func (h *History) Append(command string) {
	if h == nil {
		return
	}
	h.sendMu.RLock()
	defer h.sendMu.RUnlock()
	if h.closed {
		log.Warn().Str("command", command).Msg("history closed, dropping command")
		return
	}
	select {
	case h.saveCh <- saveReq{command: command, at: time.Now()}:
	default:
		log.Warn().Str("command", command).Msg("history queue full, dropping command")
	}
}

// saveLoop drains saveCh and writes commands to the DB.
func (h *History) saveLoop() {
	defer close(h.done)
	for req := range h.saveCh {
		if req.flush != nil {
			close(req.flush)
			continue
		}
		h.write(req.command, req.at)
	}
}

func (h *History) write(command string, at time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.db.Exec(
		"INSERT INTO history (command, created) VALUES (?, ?)",
		command, at.Unix(),
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to save history")
	}
}

// Flush blocks until all queued writes have reached the DB.
// Times out after 5 seconds to avoid deadlocking the caller.
func (h *History) Flush() {
	if h == nil {
		return
	}
	done := make(chan struct{})
	h.sendMu.RLock()
	if h.closed {
		h.sendMu.RUnlock()
		return
	}
	select {
	case h.saveCh <- saveReq{flush: done}:
		h.sendMu.RUnlock()
		<-done
	case <-time.After(5 * time.Second):
		h.sendMu.RUnlock()
		log.Warn().Msg("flush timed out waiting to enqueue")
	}
}

// Prune keeps only the newest keep commands.
func (h *History) Prune(keep int) error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	res, err := h.db.Exec(
		`DELETE FROM history WHERE id NOT IN (
			SELECT id FROM history ORDER BY id DESC LIMIT ?
		 )`, keep,
	)
	if err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Info().Int64("deleted", n).Msg("pruned history")
	}
	return nil
}

// Clear deletes every stored command.
func (h *History) Clear() error {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.db.Exec("DELETE FROM history"); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
