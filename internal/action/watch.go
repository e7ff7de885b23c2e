package action

import (
	"context"
	"path/filepath"
	"time"

	"github.com/NoobyNull/crowdisplay/internal/observability"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ReloadDebounce defers reload after a modification event; every further
// event restarts the window so a multi-write editor save triggers exactly
// one reload.
const ReloadDebounce = 500 * time.Millisecond

// Watcher reloads the dispatcher's binding table when the configuration
// document changes on disk.
type Watcher struct {
	path     string
	d        *Dispatcher
	debounce time.Duration
	log      zerolog.Logger
}

// NewWatcher builds a watcher for the binding document.
func NewWatcher(path string, d *Dispatcher, logger zerolog.Logger) *Watcher {
	return &Watcher{path: path, d: d, debounce: ReloadDebounce, log: logger}
}

// Run watches until ctx is canceled. The parent directory is watched, not
// the file, because editors replace the file on save.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	target, _ := filepath.Abs(w.path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			name, _ := filepath.Abs(ev.Name)
			if name != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn().Err(err).Msg("config watch error")
		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	table, err := LoadTable(w.path)
	if err != nil {
		// Keep the previous table; a half-written document must not take
		// the dispatcher down.
		w.log.Warn().Err(err).Msg("config reload failed, keeping previous table")
		return
	}
	w.d.ReloadTable(table)
	observability.RecordConfigReload()
}
