package config

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the config file at path and calls onChange with the newly
// loaded Config after every successful reload. It blocks until ctx is
// cancelled.
//
// A failed reload (unreadable file, bad YAML, threshold ordering violation)
// is logged and skipped; the previously active config stays in effect.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		return err
	}
	slog.Info("config: watching for changes", "path", path)

	reload := func() {
		cfg, err := Load(path)
		if err != nil {
			slog.Error("config: reload failed, keeping previous config",
				"path", path, "err", err)
			return
		}
		slog.Info("config: reloaded", "path", path,
			"fill_warning", cfg.Server.Thresholds.FillWarning,
			"fill_critical", cfg.Server.Thresholds.FillCritical)
		onChange(cfg)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// Editors often replace the file on save (rename + create), so
			// treat Create like Write and re-add the path afterwards in case
			// the watched inode is gone.
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				reload()
				_ = w.Add(path)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}
