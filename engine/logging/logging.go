// Package logging owns the process-wide structured logger. Every engine package logs through a named
// child of the same root so that level and output changes apply everywhere at once.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const rootPrefix = "oxy-fog"

var (
	once  sync.Once
	mu    sync.Mutex
	root  *log.Logger
	named map[string]*log.Logger
)

func initRoot() {
	once.Do(func() {
		root = log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    false,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          rootPrefix,
			Level:           log.InfoLevel,
		})
		named = make(map[string]*log.Logger)
	})
}

// Logger returns the root logger.
//
// Returns:
//   - *log.Logger: the shared root logger
func Logger() *log.Logger {
	initRoot()
	return root
}

// Named returns the child logger for a subsystem, creating it on first use.
// Repeated calls with the same name return the same logger.
//
// Parameters:
//   - name: the subsystem name appended to the root prefix
//
// Returns:
//   - *log.Logger: the subsystem logger
func Named(name string) *log.Logger {
	initRoot()
	mu.Lock()
	defer mu.Unlock()

	if l, ok := named[name]; ok {
		return l
	}
	l := root.WithPrefix(rootPrefix + "/" + name)
	named[name] = l
	return l
}

// SetLevel parses level ("debug", "info", "warn", "error", "fatal") and applies it to the root and every named logger.
//
// Parameters:
//   - level: the textual level
//
// Returns:
//   - error: an error if the level cannot be parsed
func SetLevel(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	initRoot()
	mu.Lock()
	defer mu.Unlock()

	root.SetLevel(lvl)
	for _, l := range named {
		l.SetLevel(lvl)
	}
	return nil
}

// SetOutput redirects the root and every named logger to w.
func SetOutput(w io.Writer) {
	initRoot()
	mu.Lock()
	defer mu.Unlock()

	root.SetOutput(w)
	for _, l := range named {
		l.SetOutput(w)
	}
}
