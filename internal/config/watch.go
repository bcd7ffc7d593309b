package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors path and calls onChange with the newly loaded Config
// whenever a reload actually changes a hot-reloadable check setting. It loads
// the file once at start as the comparison baseline and runs until ctx is
// cancelled.
//
// A reload that fails to parse or validate keeps the previous settings
// active; onChange is not called. Schedule intervals are deliberately outside
// the diff: the scheduler owns them until restart.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	prev, err := Load(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	slog.Info("config: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often save via rename, which surfaces as Create on the
			// watched path rather than Write.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				slog.Error("config: reload failed, keeping previous settings",
					"path", path, "err", err)
				continue
			}
			// A rename-based save replaces the inode; re-arm the watch.
			_ = watcher.Add(path)

			changes := diffChecks(prev.Server.Checks, cfg.Server.Checks)
			prev = cfg
			if len(changes) == 0 {
				slog.Debug("config: file changed, check settings unchanged", "path", path)
				continue
			}

			slog.Info("config: check settings reloaded",
				"path", path, "changes", strings.Join(changes, ", "))
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

// diffChecks lists the hot-reloadable check settings that differ between two
// configurations, as "name: old -> new" strings.
func diffChecks(old, cur ChecksConfig) []string {
	var out []string
	changed := func(name string, from, to any) {
		if from != to {
			out = append(out, fmt.Sprintf("%s: %v -> %v", name, from, to))
		}
	}
	changed("offline.window", old.Offline.Window, cur.Offline.Window)
	changed("power.timeout", old.Power.Timeout, cur.Power.Timeout)
	changed("door.open_value", old.Door.OpenValue, cur.Door.OpenValue)
	changed("door.max_open", old.Door.MaxOpen, cur.Door.MaxOpen)
	changed("expiry.days_before", old.Expiry.DaysBefore, cur.Expiry.DaysBefore)
	return out
}
