package watcher

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce coalesces the burst of writes a single SQLite commit makes.
const DefaultDebounce = 150 * time.Millisecond

// ChangeEvent is sent when the task database was modified on disk
type ChangeEvent struct {
	Path string
}

// Watcher watches the directory holding the task database and reports
// changes to the database or its journal files
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	Events    chan ChangeEvent
	done      chan struct{}
	names     map[string]bool
	debounce  time.Duration
	logger    *zap.Logger
}

// New creates a watcher for the database at dbPath
func New(dbPath string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory: SQLite replaces and creates sibling files
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		fsw.Close()
		return nil, err
	}

	base := filepath.Base(absPath)
	return &Watcher{
		fsWatcher: fsw,
		Events:    make(chan ChangeEvent, 1),
		done:      make(chan struct{}),
		names: map[string]bool{
			base:              true,
			base + "-wal":     true,
			base + "-journal": true,
		},
		debounce: DefaultDebounce,
		logger:   logger,
	}, nil
}

// Start begins watching for changes
func (w *Watcher) Start() {
	go w.run()
}

// Stop stops the watcher. Events is closed once the loop exits.
func (w *Watcher) Stop() {
	close(w.done)
	w.fsWatcher.Close()
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
		return false
	}
	return w.names[filepath.Base(event.Name)]
}

func (w *Watcher) run() {
	defer close(w.Events)

	var (
		timer   *time.Timer
		pending <-chan time.Time
		last    string
	)

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}

			last = event.Name
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			// One queued event is enough, the receiver reloads everything
			select {
			case w.Events <- ChangeEvent{Path: last}:
			default:
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}
