package aggregator

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mrz1836/qaforge/internal/constants"
	"github.com/mrz1836/qaforge/internal/errors"
)

// Watch calls onChange once at start and again after every burst of file
// changes under the root settles, until ctx ends. Errors from onChange are
// logged and watching continues. Hidden files (locks, temp files from
// atomic writes) are ignored.
func (a *Aggregator) Watch(ctx context.Context, debounce time.Duration, onChange func(context.Context) error) error {
	if debounce <= 0 {
		debounce = constants.WatchDebounce
	}
	if _, err := os.Stat(a.root); err != nil {
		return errors.Wrapf(errors.ErrScenariosRootNotFound, "%s", a.root)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer func() { _ = watcher.Close() }()

	if err := a.watchTree(watcher, a.root); err != nil {
		return err
	}

	fire := func() {
		if err := onChange(ctx); err != nil {
			a.logger.Warn().Err(err).Msg("summary refresh failed")
		}
	}
	fire()

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := a.watchTree(watcher, event.Name); err != nil {
						a.logger.Warn().Err(err).Str("path", event.Name).Msg("failed to watch new directory")
					}
				}
			}
			a.logger.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("change detected")
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn().Err(err).Msg("watch error")

		case <-timer.C:
			fire()
		}
	}
}

// watchTree adds dir and every directory below it. fsnotify does not
// recurse on its own.
func (a *Aggregator) watchTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := watcher.Add(path); err != nil {
			return errors.Wrapf(err, "watch %s", path)
		}
		return nil
	})
}
