// Package storewatch signals changes made to the local token store by other
// processes, so a running client can re-derive its session state.
package storewatch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dmitrijs2005/gophbucket/internal/logging"
)

const defaultDebounce = 150 * time.Millisecond

// Watcher observes the store file and its SQLite side files (-wal, -journal).
type Watcher struct {
	path     string
	debounce time.Duration
	local    *LocalWrites
	log      logging.Logger
}

// New watches path. Writes recorded in local (which may be nil) are treated
// as this process's own and do not trigger onChange.
func New(path string, local *LocalWrites, log logging.Logger) *Watcher {
	if log == nil {
		log = logging.NewNop()
	}
	return &Watcher{path: filepath.Clean(path), debounce: defaultDebounce, local: local, log: log}
}

// Run blocks until ctx is cancelled, calling onChange once per burst of
// filesystem events on the store. A burst in which every event overlaps a
// local write is dropped. The directory is watched rather than the
// file so that atomic replaces are seen too.
func (w *Watcher) Run(ctx context.Context, onChange func()) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("storewatch: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("storewatch: watch %s: %w", filepath.Dir(w.path), err)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	external := false
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			own := w.local.recent(time.Now(), w.debounce)
			if !own {
				external = true
			}
			w.log.Debug(ctx, "store file changed", "file", ev.Name, "op", ev.Op.String(), "own", own)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn(ctx, "store watcher error", "error", err)

		case <-fire:
			fire = nil
			if external {
				external = false
				onChange()
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(ev.Name)
	return name == w.path || strings.HasPrefix(name, w.path+"-")
}
