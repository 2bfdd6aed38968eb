package jdb

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch calls fn for every filesystem event on the backing file until ctx is
// done. It returns once the watch is in place.
//
// The parent directory is watched so that editors replacing the file through
// a rename are noticed. Saves made by this Store are reported too. Watch never
// reloads: fn runs on another goroutine and must synchronize with any use of
// the Store, typically before calling [Store.Reload].
func (s *Store) Watch(ctx context.Context, fn func(fsnotify.Event)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	target := filepath.Clean(filepath.FromSlash(s.path))
	if err := w.Add(filepath.Dir(target)); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to watch %s: %w", s.path, err)
	}
	log := s.log
	go func() {
		defer func() { _ = w.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) == target {
					fn(event)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.WarnContext(ctx, "Error watching database", "path", target, "err", err)
			}
		}
	}()
	return nil
}
