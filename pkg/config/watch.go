package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the bursts of events editors produce on save.
const reloadDebounce = 200 * time.Millisecond

// Watch reloads filename into a fresh T whenever the file changes and hands
// each successfully loaded value to onReload. It blocks until ctx is
// cancelled.
//
// The parent directory is watched rather than the file itself so that
// atomic saves (write to temp, rename over) keep being observed. Reloads
// that fail to read, parse or validate are logged and skipped.
func Watch[T any](ctx context.Context, filename string, newTarget func() *T, logger *slog.Logger, onReload func(*T)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(filename)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger.Info("config watcher: started", slog.String("path", abs))

	var reloadTimer *time.Timer
	var reloadCh <-chan time.Time

	scheduleReload := func() {
		if reloadTimer == nil {
			reloadTimer = time.NewTimer(reloadDebounce)
			reloadCh = reloadTimer.C
		} else {
			reloadTimer.Reset(reloadDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			logger.Info("config watcher: stopped")
			return nil

		case <-reloadCh:
			target := newTarget()
			if err := Load(abs, target); err != nil {
				logger.Warn("config watcher: reload failed", slog.String("path", abs), slog.String("error", err.Error()))
				continue
			}
			logger.Info("config watcher: reloaded", slog.String("path", abs))
			onReload(target)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				logger.Debug("config watcher: change", slog.String("op", ev.Op.String()))
				scheduleReload()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("config watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
