package app

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/dicompiler/internal/fsutil"
	"github.com/specialistvlad/dicompiler/internal/loader"
)

// Watch recompiles whenever one of deps changes, until ctx is done.
// Failed recompiles are logged and the previous output is kept.
func (a *App) Watch(ctx context.Context, deps []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	tracked := a.track(watcher, deps)
	a.logger.Info("Watching configuration for changes.", "files", len(tracked))

	var pending <-chan time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !a.relevant(event, tracked) {
				continue
			}
			a.logger.Debug("Configuration changed.", "file", event.Name, "op", event.Op.String())
			pending = time.After(a.debounce)

		case <-pending:
			pending = nil
			res, err := a.compile(ctx)
			if err != nil {
				a.logger.Error("Recompilation failed.", "error", err)
				continue
			}
			tracked = a.track(watcher, res.Dependencies)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Error("Configuration watcher error.", "error", err)

		case <-ctx.Done():
			a.logger.Debug("Watcher stopped.")
			return nil
		}
	}
}

// track watches the directory of every file dependency, so that files
// replaced by editors are still noticed, and returns the tracked files.
func (a *App) track(watcher *fsnotify.Watcher, deps []string) map[string]bool {
	tracked := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, d := range deps {
		if !filepath.IsAbs(d) {
			continue
		}
		tracked[d] = true
		dir := filepath.Dir(d)
		if fsutil.HasExtension(d, loader.Extensions...) {
			dirs[dir] = true
		} else {
			dirs[d] = true
		}
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			a.logger.Warn("Cannot watch directory.", "dir", dir, "error", err)
		}
	}
	return tracked
}

// relevant reports whether event touches a tracked file or adds a
// configuration file to a tracked directory.
func (a *App) relevant(event fsnotify.Event, tracked map[string]bool) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	name := filepath.Clean(event.Name)
	if tracked[name] {
		return true
	}
	if out, err := filepath.Abs(a.config.OutputPath); err == nil && (name == out || name == out+MetaSuffix) {
		return false
	}
	return tracked[filepath.Dir(name)] && fsutil.HasExtension(name, loader.Extensions...)
}
