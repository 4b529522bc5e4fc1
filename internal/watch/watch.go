// Package watch runs a handler for every video file that settles in a directory.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/five82/monoclip/internal/discovery"
	coreerrors "github.com/five82/monoclip/internal/errors"
	"github.com/five82/monoclip/internal/util"
)

// DefaultDebounce is how long a file must go without events before it is handled.
const DefaultDebounce = 2 * time.Second

// queueSize bounds how many settled files may wait for the handler.
const queueSize = 64

// Handler processes one settled video file. Handlers run one at a time.
type Handler func(ctx context.Context, path string) error

// Logger receives watcher diagnostics. *logging.Logger satisfies it.
type Logger interface {
	Info(format string, args ...any)
	Debug(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration
	// ProcessExisting queues the video files already in the directory.
	ProcessExisting bool
	Logger          Logger
}

// Watcher watches one directory, non-recursively.
type Watcher struct {
	dir      string
	handler  Handler
	debounce time.Duration
	existing bool
	log      Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	queue   chan string
}

// New creates a watcher for dir calling handler for each settled video file.
func New(dir string, handler Handler, opts Options) *Watcher {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	var log Logger = nopLogger{}
	if opts.Logger != nil {
		log = opts.Logger
	}
	return &Watcher{
		dir:      dir,
		handler:  handler,
		debounce: debounce,
		existing: opts.ProcessExisting,
		log:      log,
		pending:  make(map[string]*time.Timer),
		queue:    make(chan string, queueSize),
	}
}

// Run watches until ctx is cancelled. It returns nil on cancellation and an
// error if the directory cannot be watched.
func (w *Watcher) Run(ctx context.Context) error {
	if !util.DirectoryExists(w.dir) {
		return coreerrors.NewPathError(fmt.Sprintf("watch directory does not exist: %s", w.dir))
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return coreerrors.NewIOError("failed to create file watcher", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return coreerrors.NewIOError(fmt.Sprintf("failed to watch %s", w.dir), err)
	}
	w.log.Info("Watching %s (debounce %s)", w.dir, w.debounce)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(ctx)
	}()

	if w.existing {
		files, err := discovery.FindVideoFiles(w.dir)
		if err != nil && !coreerrors.IsKind(err, coreerrors.KindNoFilesFound) {
			w.log.Warn("Initial scan of %s failed: %v", w.dir, err)
		}
		for _, f := range files {
			w.schedule(f)
		}
	}

	defer func() {
		w.stopTimers()
		cancel()
		wg.Wait()
	}()

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("File watcher error: %v", err)

		case <-ctx.Done():
			w.log.Info("Stopped watching %s", w.dir)
			return nil
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if !shouldProcess(event.Name) {
		return
	}
	w.log.Debug("%s: %s", event.Op, event.Name)
	w.schedule(event.Name)
}

// shouldProcess filters out hidden and non-video files.
func shouldProcess(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return util.HasVideoExtension(name)
}

// schedule (re)starts the debounce timer for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if prev, ok := w.pending[path]; ok {
		prev.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		current := w.pending[path] == timer
		if current {
			delete(w.pending, path)
		}
		w.mu.Unlock()
		if !current {
			return
		}

		select {
		case w.queue <- path:
		default:
			w.log.Warn("Queue full, dropping %s", path)
		}
	})
	w.pending[path] = timer
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

// worker runs the handler for queued files, one at a time.
func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-w.queue:
			if !util.IsVideoFile(path) {
				w.log.Debug("Skipping %s: no longer a video file", path)
				continue
			}
			w.log.Info("Processing %s", path)
			if err := w.handler(ctx, path); err != nil {
				if coreerrors.IsCancelled(err) {
					return
				}
				w.log.Error("Processing %s failed: %v", path, err)
			}
		}
	}
}
