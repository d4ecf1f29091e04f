package assets

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrWatch is returned when local skins cannot be watched.
var ErrWatch = errors.New("cannot watch asset")

// DefaultDebounce groups the bursts of events editors emit for one save.
const DefaultDebounce = 150 * time.Millisecond

// WatchFiles calls onChange with the cleaned absolute path of every watched file that
// is written or replaced. Events within debounce of each other are reported once.
// It blocks until ctx is done and returns ctx.Err().
//
// Parent directories are watched rather than the files, so files replaced by
// rename still report.
func WatchFiles(ctx context.Context, paths []string, debounce time.Duration, log *zap.Logger, onChange func(path string)) error {
	if log == nil {
		log = zap.NewNop()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWatch, err)
	}
	defer w.Close()

	want := make(map[string]bool, len(paths))
	for _, p := range paths {
		if IsRemote(p) {
			return fmt.Errorf("%w: %s is remote", ErrWatch, p)
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrWatch, err)
		}
		want[abs] = true
		if err := w.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrWatch, p, err)
		}
	}
	log.Debug("watching", zap.Strings("paths", paths))

	pending := make(map[string]bool)
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return ctx.Err()
			}
			name := filepath.Clean(ev.Name)
			if !want[name] || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			pending[name] = true
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return ctx.Err()
			}
			log.Warn("watch error", zap.Error(err))

		case <-timer.C:
			for name := range pending {
				log.Debug("asset changed", zap.String("path", name))
				onChange(name)
			}
			clear(pending)
		}
	}
}
