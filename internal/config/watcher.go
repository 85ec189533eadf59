package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/sweeney/breath-pacer/internal/logging"
)

// Watcher flags out-of-band edits to the config file (for example from
// the settings UI). It never reloads by itself: the tick loop polls
// TakeChanged and reloads when no session is running.
type Watcher struct {
	path     string
	debounce time.Duration
	changed  atomic.Bool
	log      zerolog.Logger

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher creates a watcher for path.
func NewWatcher(path string) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: 500 * time.Millisecond,
		log:      logging.WithComponent("config"),
	}
}

// Start begins watching until ctx is cancelled or Stop is called. The
// parent directory is watched because atomic saves replace the file.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("watch config dir: %w", err)
	}

	w.mu.Lock()
	w.watcher = fw
	w.done = make(chan struct{})
	w.mu.Unlock()

	w.log.Info().Str("event", "config.watcher_started").Str("path", w.path).Msg("watching config file for changes")
	go w.loop(ctx, fw, w.done)
	return nil
}

func (w *Watcher) loop(ctx context.Context, fw *fsnotify.Watcher, done chan struct{}) {
	defer close(done)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			_ = fw.Close()
			return

		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.log.Debug().Str("op", ev.Op.String()).Msg("config file changed")
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() { w.changed.Store(true) })

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Str("event", "config.watcher_error").Msg("config watcher error")
		}
	}
}

// TakeChanged reports whether the file changed since the last call and
// clears the flag.
func (w *Watcher) TakeChanged() bool {
	return w.changed.Swap(false)
}

// MarkChanged sets the changed flag, as if the file had been edited.
func (w *Watcher) MarkChanged() {
	w.changed.Store(true)
}

// Stop closes the underlying watcher and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	fw, done := w.watcher, w.done
	w.watcher = nil
	w.mu.Unlock()

	if fw == nil {
		return
	}
	_ = fw.Close()
	<-done
}
