package sceneconfig

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a scene file whenever it changes on disk. A file that no
// longer parses is logged and skipped, so consumers keep their last good
// scene.
type Watcher struct {
	path    string
	w       *fsnotify.Watcher
	logger  *slog.Logger
	updates chan Config
	done    chan struct{}
}

// Watch starts watching path. The parent directory is watched rather than
// the file so editors that save by rename are still seen.
func Watch(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch scene: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch scene: %w", err)
	}

	sw := &Watcher{
		path:    abs,
		w:       w,
		logger:  logger,
		updates: make(chan Config, 1),
		done:    make(chan struct{}),
	}
	go sw.loop()
	return sw, nil
}

// Updates delivers each successfully reloaded scene. Only the newest
// pending scene is kept. The channel closes after Close.
func (sw *Watcher) Updates() <-chan Config { return sw.updates }

// Close stops watching and waits for the reload goroutine to exit.
func (sw *Watcher) Close() error {
	err := sw.w.Close()
	<-sw.done
	return err
}

func (sw *Watcher) loop() {
	defer close(sw.done)
	defer close(sw.updates)

	for {
		select {
		case ev, ok := <-sw.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != sw.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			sw.reload()
		case err, ok := <-sw.w.Errors:
			if !ok {
				return
			}
			sw.logger.Warn("scene watcher error", "error", err)
		}
	}
}

func (sw *Watcher) reload() {
	c, err := Load(sw.path)
	if err != nil {
		sw.logger.Warn("scene reload failed, keeping previous scene", "path", sw.path, "error", err)
		return
	}
	sw.logger.Info("scene reloaded", "path", sw.path)

	// Replace any scene the consumer has not picked up yet.
	select {
	case <-sw.updates:
	default:
	}
	sw.updates <- c
}
