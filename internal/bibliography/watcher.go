package bibliography

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDelay = 200 * time.Millisecond

// Watch reloads the bibliography whenever its file changes, until ctx is
// cancelled. The parent directory is watched so that editors replacing the
// file by rename are noticed. cb (if non-nil) runs after each successful
// reload.
func (b *Bibliography) Watch(ctx context.Context, cb func(entries int)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target := filepath.Clean(b.path)
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}
	b.logger.Info("bibliography: watching", slog.String("path", target))

	// Bursts of writes are folded into a single reload.
	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(reloadDelay)
			timerCh = timer.C
		} else {
			timer.Reset(reloadDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			b.logger.Info("bibliography: watcher stopped")
			return nil

		case <-timerCh:
			if err := b.Reload(); err != nil {
				b.logger.Warn("bibliography: reload failed", slog.String("error", err.Error()))
				continue
			}
			if cb != nil {
				cb(b.Len())
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			b.logger.Error("bibliography: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}
