// Package watch re-runs the calibration pipeline when new raw frames
// arrive. It monitors the raw-data tree with fsnotify and debounces bursts
// of file events (an observing run writes many frames in quick succession)
// into a single recalibration.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/taracrutchfield/Messier-67-Lab/pkg/log"
)

// DefaultDebounce is the quiet period required after the last file event
// before a recalibration starts.
const DefaultDebounce = 2 * time.Second

// RunFunc performs one full calibration run.
type RunFunc func(ctx context.Context) error

// Watcher triggers a RunFunc when frame files change under a root.
type Watcher struct {
	root     string
	debounce time.Duration
	run      RunFunc
	logger   log.Logger
}

// New creates a watcher over root. A non-positive debounce uses
// DefaultDebounce.
func New(root string, debounce time.Duration, run RunFunc, logger log.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = log.NewNoop()
	}
	return &Watcher{root: root, debounce: debounce, run: run, logger: logger}
}

// Run blocks, recalibrating after each debounced burst of frame file
// events, until the context is canceled. A failed recalibration is logged
// and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addTree(watcher, w.root); err != nil {
		return err
	}
	w.logger.Info("watching for new frames",
		log.String("root", w.root),
		log.Any("debounce", w.debounce))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			// New subdirectories (a fresh night's frames) must be
			// watched too.
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				if err := addTree(watcher, event.Name); err != nil {
					w.logger.Warn("cannot watch new directory",
						log.String("dir", event.Name), log.Err(err))
				}
				continue
			}
			if !isFrameFile(event.Name) {
				continue
			}
			w.logger.Debug("frame file changed", log.String("file", event.Name))
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", log.Err(err))

		case <-timer.C:
			w.logger.Info("raw frames changed, recalibrating")
			if err := w.run(ctx); err != nil {
				w.logger.Error("recalibration failed", log.Err(err))
			}
		}
	}
}

// addTree watches root and every directory below it.
func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

func isFrameFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".fits") ||
		strings.HasSuffix(lower, ".fit") ||
		strings.HasSuffix(lower, ".fts")
}
