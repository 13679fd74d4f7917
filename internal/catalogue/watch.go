package catalogue

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// reloadDelay lets editors finish writing before the file is re-read.
const reloadDelay = 100 * time.Millisecond

// Watch reloads cat whenever its source file is created or written, until ctx is done.
// The parent directory is watched so atomic rename-over saves are seen too.
// onReload, if non-nil, is called after each successful reload.
func Watch(ctx context.Context, cat *Catalogue, logger *zap.Logger, onReload func()) error {
	path := cat.Source()
	if path == "" {
		return fmt.Errorf("catalogue has no source file to watch")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("cannot watch %s: %w", filepath.Dir(path), err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				time.Sleep(reloadDelay)
				if err := cat.Reload(); err != nil {
					logger.Error("Failed to reload catalogue", zap.String("file", path), zap.Error(err))
					continue
				}
				logger.Info("Catalogue reloaded", zap.String("file", path), zap.Int("entries", cat.Len()))
				if onReload != nil {
					onReload()
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("File watcher error", zap.Error(err))

			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}
