package packrules

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Watcher invalidates a Loader when a rules file changes.
type Watcher struct {
	loader   *Loader
	log      *zap.Logger
	debounce time.Duration
	onChange func(path string)
}

// NewWatcher watches the loader's directory. onChange, if set, runs after each
// invalidation.
func NewWatcher(loader *Loader, log *zap.Logger, onChange func(path string)) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{loader: loader, log: log, debounce: 200 * time.Millisecond, onChange: onChange}
}

// Run blocks until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create rules watcher")
	}
	defer fw.Close()

	base := w.loader.Paths().BaseDir
	for _, dir := range []string{base, filepath.Join(base, "sets")} {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		if err := fw.Add(dir); err != nil {
			return errors.Wrapf(err, "watch %s", dir)
		}
	}

	// editors write in bursts; collapse them into one reload
	var timer *time.Timer
	var pending string
	fire := make(chan struct{}, 1)
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
			if !strings.HasSuffix(ev.Name, ".yaml") {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			pending = ev.Name
			if timer == nil {
				timer = time.AfterFunc(w.debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(w.debounce)
			}
		case <-fire:
			w.loader.Invalidate()
			w.log.Info("pack rules reloaded", zap.String("path", pending))
			if w.onChange != nil {
				w.onChange(pending)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("rules watcher error", zap.Error(err))
		}
	}
}
