// Package inbox turns files dropped into a directory into notes.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/notes/pkg/core"
)

// DefaultPattern selects the files posted when none is configured.
const DefaultPattern = "**/*.txt"

// Appender is the part of core.Service the inbox needs.
type Appender interface {
	AddNote(ctx context.Context, text string) (core.NoteList, error)
}

// Config holds the configuration for the inbox worker.
type Config struct {
	Dir          string
	Pattern      string        // doublestar pattern, relative to Dir
	Debounce     time.Duration // quiet period before a file is read; zero means 50ms
	Backfill     bool          // post files already present at start
	Logger       *slog.Logger
	ErrorHandler func(error)
}

// Stats counts what the worker has done so far.
type Stats struct {
	Posted  int64 `json:"posted"`
	Failed  int64 `json:"failed"`
	Skipped int64 `json:"skipped"`
	Active  bool  `json:"active"`
}

// Worker watches Config.Dir and appends every settled matching file as a note.
type Worker struct {
	*worker.BaseWorker
	config    Config
	notes     Appender
	logger    *slog.Logger
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	cancel    context.CancelFunc
	done      chan struct{}

	postMu sync.Mutex
	posted map[string]string // path -> last posted text

	nPosted  atomic.Int64
	nFailed  atomic.Int64
	nSkipped atomic.Int64
	active   atomic.Bool
}

// New validates the configuration and creates a worker. It does not start watching.
func New(notes Appender, config Config) (*Worker, error) {
	if config.Pattern == "" {
		config.Pattern = DefaultPattern
	}
	if !doublestar.ValidatePattern(config.Pattern) {
		return nil, fmt.Errorf("invalid pattern %q", config.Pattern)
	}
	if config.Debounce <= 0 {
		config.Debounce = 50 * time.Millisecond
	}

	abs, err := filepath.Abs(config.Dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("inbox directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("inbox path is not a directory: %s", abs)
	}
	config.Dir = abs

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Worker{
		BaseWorker: worker.NewBaseWorker("inbox-watcher"),
		config:     config,
		notes:      notes,
		logger:     logger,
		done:       make(chan struct{}),
		posted:     make(map[string]string),
	}, nil
}

func (w *Worker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("inbox already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := w.recursiveAdd(watcher, w.config.Dir); err != nil {
		_ = watcher.Close()
		return err
	}

	w.watcher = watcher
	w.debouncer = newDebouncer(w.config.Debounce)
	w.active.Store(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	if w.config.Backfill {
		w.backfill(runCtx)
	}

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *Worker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}

	return w.BaseWorker.Stop(ctx)
}

func (w *Worker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"dir":               w.config.Dir,
			"pattern":           w.config.Pattern,
		}
	})
}

// Done is closed once the event loop has exited.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Stats returns a snapshot of the worker counters.
func (w *Worker) Stats() Stats {
	return Stats{
		Posted:  w.nPosted.Load(),
		Failed:  w.nFailed.Load(),
		Skipped: w.nSkipped.Load(),
		Active:  w.active.Load(),
	}
}

func (w *Worker) recursiveAdd(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(path) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// backfill posts the files already present, tracked by lifecycle like any
// other background goroutine.
func (w *Worker) backfill(ctx context.Context) {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		matches, err := doublestar.Glob(os.DirFS(w.config.Dir), w.config.Pattern, doublestar.WithFilesOnly())
		if err != nil {
			return err
		}
		for _, rel := range matches {
			if ctx.Err() != nil {
				return nil
			}
			w.post(ctx, filepath.Join(w.config.Dir, filepath.FromSlash(rel)))
		}
		return nil
	}, lifecycle.WithErrorHandler(w.reportError))
}

func (w *Worker) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			panicErr := fmt.Errorf("inbox panic: %v", recovered)
			if w.logger.Enabled(ctx, slog.LevelDebug) {
				w.logger.Error("inbox panic", "error", panicErr, "stack", string(debug.Stack()))
			} else {
				w.logger.Error("inbox panic", "error", panicErr)
			}
			err = panicErr
		}
	}()
	defer close(w.done)
	defer w.active.Store(false)
	defer w.watcher.Close()

	err = w.mainEventLoop(ctx)

	// Pending files are dropped; posts already in flight are waited for.
	w.debouncer.stopAndWait(5 * time.Second)

	return err
}

func (w *Worker) mainEventLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher events channel closed")
			}
			w.processEvent(ctx, event)

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("fsnotify error", "error", wErr)
			w.reportError(wErr)
		}
	}
}

func (w *Worker) processEvent(ctx context.Context, event fsnotify.Event) {
	w.logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if isHidden(event.Name) {
		return
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.recursiveAdd(w.watcher, event.Name); err != nil {
				w.reportError(err)
			}
			return
		}
	}

	if !w.matches(event.Name) {
		return
	}

	path := event.Name
	w.debouncer.add(path, func() {
		w.post(ctx, path)
	})
}

func (w *Worker) matches(path string) bool {
	rel, err := filepath.Rel(w.config.Dir, path)
	if err != nil {
		return false
	}
	ok, err := doublestar.Match(w.config.Pattern, filepath.ToSlash(rel))
	return err == nil && ok
}

// post reads path and appends it as a note. Empty files and files whose
// content was already posted are skipped.
func (w *Worker) post(ctx context.Context, path string) {
	w.postMu.Lock()
	defer w.postMu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			w.nFailed.Add(1)
			w.reportError(fmt.Errorf("failed to read %s: %w", path, err))
		}
		return
	}

	text := strings.TrimRight(string(data), "\r\n")
	if text == "" || w.posted[path] == text {
		w.nSkipped.Add(1)
		return
	}

	_, err = w.notes.AddNote(ctx, text)
	if err != nil && !errors.Is(err, core.ErrSuperseded) {
		w.nFailed.Add(1)
		w.reportError(fmt.Errorf("failed to post %s: %w", path, err))
		return
	}

	w.posted[path] = text
	w.nPosted.Add(1)
	w.logger.Info("note posted", "file", path, "bytes", len(text))
}

func (w *Worker) reportError(err error) {
	if w.config.ErrorHandler != nil {
		w.config.ErrorHandler(err)
		return
	}
	w.logger.Error("inbox error", "error", err)
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
