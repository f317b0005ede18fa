package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/scrollcon/internal/config"
	"github.com/xonecas/scrollcon/internal/console"
	"github.com/xonecas/scrollcon/internal/runner"
	"github.com/xonecas/scrollcon/internal/shell"
	"github.com/xonecas/scrollcon/internal/store"
	"github.com/xonecas/scrollcon/internal/tui"
)

func main() {
	configPath := flag.String("config", "", "path to config.toml (default ~/.config/scrollcon/config.toml)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error running scrollcon: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	if configPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("failed to locate config: %w", err)
		}
		configPath = p
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	closeLog, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	hist := openHistory(cfg)
	defer func() {
		if err := hist.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close history")
		}
	}()
	past, err := hist.Load(cfg.Console.HistoryLimit)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load history")
	}

	clip, native := tui.SystemClipboard()
	session := console.New(console.Options{
		Prompt:              cfg.Console.Prompt,
		ScrollbackLines:     cfg.Console.ScrollbackLines,
		HistoryLimit:        cfg.Console.HistoryLimit,
		CaseSensitiveSearch: cfg.Console.CaseSensitiveSearch,
		History:             past,
		Clipboard:           clip,
		OnSubmit:            hist.Append,
	})
	defer session.Shutdown()

	sh := shell.New("", shell.BlockFuncs(cfg.Shell.Blocked))
	cmdRunner := runner.New(session, sh, 0).WithHistory(hist)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := cmdRunner.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("runner stopped")
		}
	}()

	session.Print(fmt.Sprintf("scrollcon in %s; ctrl+d quits", sh.Dir()), "")

	opts := []tea.ProgramOption{tea.WithFilter(tui.MouseEventFilter)}
	if w := cfg.Window; w.Width > 0 && w.Height > 0 {
		opts = append(opts, tea.WithWindowSize(w.Width, w.Height))
	}
	model := tui.New(session, tui.Options{
		Theme:           cfg.UI.SyntaxThemeOrDefault(),
		NativeClipboard: native,
		Interrupt:       cmdRunner.Interrupt,
	})
	_, err = tea.NewProgram(model, opts...).Run()

	session.Shutdown()
	cmdRunner.Interrupt()
	cancel()
	wg.Wait()
	return err
}

// setupLogging points the global zerolog logger at the log file; the
// terminal belongs to the UI.
func setupLogging(cfg *config.Config) (func(), error) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	path, err := cfg.LogPath()
	if err != nil {
		return nil, fmt.Errorf("failed to locate log file: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return func() { _ = f.Close() }, nil
}

// openHistory opens the history database. Failures are logged and
// history is simply not kept; a nil *store.History is a no-op.
func openHistory(cfg *config.Config) *store.History {
	if !cfg.History.Enabled {
		return nil
	}
	path, err := cfg.HistoryPath()
	if err != nil {
		log.Warn().Err(err).Msg("failed to locate history database")
		return nil
	}
	h, err := store.Open(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("failed to open history database")
		return nil
	}
	if err := h.Prune(cfg.Console.HistoryLimit); err != nil {
		log.Warn().Err(err).Msg("failed to prune history")
	}
	return h
}
