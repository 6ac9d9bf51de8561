package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-fog/engine/logging"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits after the last change before reloading.
const DefaultDebounce = 100 * time.Millisecond

type watcher struct {
	path     string
	onChange func(*Settings)
	debounce time.Duration

	fsnotify *fsnotify.Watcher
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once

	logger *log.Logger
}

// Watcher reloads a settings file whenever it changes.
type Watcher interface {
	// Close stops watching. Pending reloads are dropped.
	//
	// Returns:
	//   - error: an error if the underlying watcher could not be closed
	Close() error
}

var _ Watcher = &watcher{}

// WatcherBuilderOption is a functional option used to configure a Watcher during construction.
type WatcherBuilderOption func(*watcher)

// WithDebounce sets the quiet period between the last change and the reload.
//
// Parameters:
//   - d: the debounce duration
//
// Returns:
//   - WatcherBuilderOption: a function that sets the debounce duration
func WithDebounce(d time.Duration) WatcherBuilderOption {
	return func(w *watcher) {
		w.debounce = d
	}
}

// NewWatcher watches path and calls onChange with the reloaded settings after each write.
// Files that fail to decode or validate are logged and ignored, keeping the last good settings active.
// onChange runs on the watcher goroutine.
//
// Parameters:
//   - path: the settings file
//   - onChange: receives the new settings
//   - opts: a variadic list of WatcherBuilderOption functions
//
// Returns:
//   - Watcher: the running watcher
//   - error: an error if the file's directory cannot be watched
func NewWatcher(path string, onChange func(*Settings), opts ...WatcherBuilderOption) (Watcher, error) {
	if onChange == nil {
		return nil, errors.New("config: NewWatcher requires a change callback")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// editors often replace the file, so the directory is watched instead of the file itself
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	w := &watcher{
		path:     abs,
		onChange: onChange,
		debounce: DefaultDebounce,
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		logger:   logging.Named("config"),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.start()
	return w, nil
}

func (w *watcher) start() {
	defer w.wg.Done()

	var timer *time.Timer
	var reload <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path || e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			reload = timer.C

		case <-reload:
			reload = nil
			w.reload()

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			w.logger.Error("settings watcher", "err", err)

		case <-w.done:
			return
		}
	}
}

func (w *watcher) reload() {
	s, err := Load(w.path)
	if err != nil {
		w.logger.Warn("ignoring settings change", "err", err)
		return
	}
	w.logger.Info("settings reloaded", "path", w.path)
	w.onChange(s)
}

func (w *watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		w.wg.Wait()
		err = w.fsnotify.Close()
	})
	return err
}
