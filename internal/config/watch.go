package config

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// ErrNoFile is returned by Watch when the config was not loaded from a file.
var ErrNoFile = errors.New("config: no config file to watch")

// Watch re-reads the config file whenever it is written and sends the new
// [detection] section on the returned channel. Only detection settings are
// hot-reloaded; everything else needs a restart. A file that fails to parse
// or validate is logged and skipped. The channel is closed when ctx is done.
func (c *Config) Watch(ctx context.Context) (<-chan DetectionConfig, error) {
	if c.path == "" {
		return nil, ErrNoFile
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Editors often replace the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(c.path)); err != nil {
		watcher.Close()
		return nil, err
	}

	out := make(chan DetectionConfig, 1)
	go c.watchLoop(ctx, watcher, out)
	return out, nil
}

func (c *Config) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, out chan DetectionConfig) {
	defer close(out)
	defer watcher.Close()

	path := filepath.Clean(c.path)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			next, err := decodeFile(c.path)
			if err != nil {
				slog.Warn("config: failed to reload", "path", c.path, "err", err)
				continue
			}
			if err := next.Detection.Validate(); err != nil {
				slog.Warn("config: ignoring invalid detection settings", "err", err)
				continue
			}
			slog.Info("config: detection settings reloaded", "path", c.path)
			// Keep only the latest reload if the consumer is behind.
			select {
			case <-out:
			default:
			}
			select {
			case out <- next.Detection:
			case <-ctx.Done():
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("config: watcher error", "err", err)
		}
	}
}
