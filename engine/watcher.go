package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/jscad-view/engine/viewport"
	"github.com/fsnotify/fsnotify"
)

// payloadWatcher reloads a payload file whenever it is written or replaced.
// The directory is watched rather than the file because editors save by renaming.
type payloadWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	reload  func(path string)

	done     chan struct{}
	doneOnce sync.Once
	wg       sync.WaitGroup
}

// newPayloadWatcher starts watching path. reload runs on the watcher goroutine.
func newPayloadWatcher(path string, logger *slog.Logger, reload func(path string)) (*payloadWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve payload path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	pw := &payloadWatcher{
		path:    abs,
		watcher: w,
		logger:  logger,
		reload:  reload,
		done:    make(chan struct{}),
	}
	pw.wg.Add(1)
	go pw.run()
	return pw, nil
}

func (pw *payloadWatcher) run() {
	defer pw.wg.Done()
	for {
		select {
		case <-pw.done:
			return
		case event, ok := <-pw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != pw.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pw.reload(pw.path)
			}
		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return
			}
			pw.logger.Warn("payload watcher error", "error", err)
		}
	}
}

func (pw *payloadWatcher) Close() error {
	var err error
	pw.doneOnce.Do(func() {
		close(pw.done)
		err = pw.watcher.Close()
		pw.wg.Wait()
	})
	return err
}

// readPayload loads and decodes a payload file.
func readPayload(path string) (viewport.Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return viewport.Payload{}, fmt.Errorf("failed to read payload: %w", err)
	}
	p, err := viewport.ParsePayload(data)
	if err != nil {
		return viewport.Payload{}, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return p, nil
}
