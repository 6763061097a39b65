package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultWatchDelay = 100 * time.Millisecond

// Watcher calls a handler for template files that are written under a set
// of directories. Several writes in a short time are reported once.
type Watcher struct {
	watcher    *fsnotify.Watcher
	logger     *zap.Logger
	dirs       []string
	extensions []string
	handle     func(path string)
	delay      time.Duration

	mu         sync.Mutex
	isWatching bool
	pending    map[string]*time.Timer
	done       chan struct{}
}

// NewWatcher returns a watcher for files with one of extensions below dirs.
func NewWatcher(logger *zap.Logger, dirs, extensions []string, handle func(path string)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		watcher:    w,
		logger:     logger,
		dirs:       dirs,
		extensions: extensions,
		handle:     handle,
		delay:      defaultWatchDelay,
		pending:    make(map[string]*time.Timer),
	}, nil
}

// SetDelay sets how long the watcher waits for further writes before it
// calls the handler.
func (w *Watcher) SetDelay(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.delay = d
}

// Start begins watching in the background.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isWatching {
		return errors.New("already watching")
	}

	for _, dir := range w.dirs {
		if err := w.addTree(dir); err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	w.isWatching = true
	w.done = make(chan struct{})
	go w.watchLoop(w.done)
	return nil
}

// Stop ends watching. Pending notifications are dropped.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.isWatching {
		w.mu.Unlock()
		return errors.New("not watching")
	}
	w.isWatching = false
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	done := w.done
	w.mu.Unlock()

	err := w.watcher.Close()
	<-done
	return err
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) watchLoop(done chan struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFileEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Error("Failed to watch new directory", zap.String("dir", event.Name), zap.Error(err))
			}
			return
		}
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !w.isTarget(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.isWatching {
		return
	}
	if timer, ok := w.pending[event.Name]; ok {
		timer.Reset(w.delay)
		return
	}
	path := event.Name
	w.pending[path] = time.AfterFunc(w.delay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		watching := w.isWatching
		w.mu.Unlock()

		if watching {
			w.logger.Debug("Template changed", zap.String("file", path))
			w.handle(path)
		}
	})
}

func (w *Watcher) isTarget(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, target := range w.extensions {
		if ext == target {
			return true
		}
	}
	return false
}
