// Package watcher reports edits to a single options file. It listens on the
// parent directory through fsnotify and falls back to polling os.Stat when
// events are unavailable or TREESELECT_FORCE_POLL is set.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/treeselect/pkg/debug"
)

// DefaultPollInterval is how often the polling fallback stats the file.
const DefaultPollInterval = 2 * time.Second

var (
	ErrFileRemoved    = errors.New("options file was removed")
	ErrAlreadyStarted = errors.New("watcher already started")
)

// Event is one notification. A nil Err means the file content changed.
type Event struct {
	Err error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long a burst of writes must settle.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the stat interval of the polling fallback.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithForcePoll skips fsnotify.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// Watcher follows one file. Events are coalesced into a single-slot
// channel where the latest event wins.
type Watcher struct {
	path      string
	debounce  time.Duration
	interval  time.Duration
	forcePoll bool

	events    chan Event
	debouncer *Debouncer

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	polling bool
}

// New returns a stopped watcher for path.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     abs,
		interval: DefaultPollInterval,
		events:   make(chan Event, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Events delivers changes and errors. It is never closed.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Polling reports whether the stat fallback is in use. Only meaningful
// after Start.
func (w *Watcher) Polling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polling
}

// Start watches until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return ErrAlreadyStarted
	}

	last, err := stat(w.path)
	if err != nil {
		return err
	}

	polling := w.forcePoll || envBool("TREESELECT_FORCE_POLL")
	var fsw *fsnotify.Watcher
	if !polling {
		fsw, err = fsnotify.NewWatcher()
		if err == nil {
			if err = fsw.Add(filepath.Dir(w.path)); err != nil {
				fsw.Close()
			}
		}
		if err != nil {
			debug.Log("watcher: fsnotify unavailable, polling %s: %v", w.path, err)
			polling = true
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if polling {
			w.poll(ctx, last)
		} else {
			defer fsw.Close()
			w.listen(ctx, fsw)
		}
	}()

	w.cancel, w.done, w.polling = cancel, done, polling
	return nil
}

// Stop ends watching and waits for the watch loop to exit. A pending
// debounced change is dropped.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	w.debouncer.Cancel()
}

func (w *Watcher) listen(ctx context.Context, fsw *fsnotify.Watcher) {
	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			switch {
			case ev.Has(fsnotify.Remove):
				w.emit(Event{Err: ErrFileRemoved})
			case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create), ev.Has(fsnotify.Rename):
				w.changed(ctx)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.emit(Event{Err: err})
		}
	}
}

func (w *Watcher) poll(ctx context.Context, last fingerprint) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		cur, err := stat(w.path)
		switch {
		case err != nil:
			w.emit(Event{Err: err})
			continue
		case cur.equal(last):
			continue
		case last.exists && !cur.exists:
			w.emit(Event{Err: ErrFileRemoved})
		default:
			w.changed(ctx)
		}
		last = cur
	}
}

func (w *Watcher) changed(ctx context.Context) {
	w.debouncer.Trigger(func() {
		if ctx.Err() != nil {
			return
		}
		debug.Log("watcher: %s changed", w.path)
		w.emit(Event{})
	})
}

// emit replaces whatever event is still unread.
func (w *Watcher) emit(ev Event) {
	for {
		select {
		case w.events <- ev:
			return
		default:
		}
		select {
		case <-w.events:
		default:
		}
	}
}

// fingerprint is the part of a stat result that signals an edit.
type fingerprint struct {
	modTime time.Time
	size    int64
	exists  bool
}

func (f fingerprint) equal(g fingerprint) bool {
	return f.exists == g.exists && f.size == g.size && f.modTime.Equal(g.modTime)
}

// stat treats a missing file as an empty fingerprint so a file created
// after Start still counts as a change.
func stat(path string) (fingerprint, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		return fingerprint{modTime: info.ModTime(), size: info.Size(), exists: true}, nil
	case os.IsNotExist(err):
		return fingerprint{}, nil
	default:
		return fingerprint{}, fmt.Errorf("stat %s: %w", path, err)
	}
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
