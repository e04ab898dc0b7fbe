package watchlist

import (
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/chronos-tachyon/xdgmime/internal/constants"
	"github.com/chronos-tachyon/xdgmime/internal/misc"
)

// Notifier watches the directories of a List and remembers whether anything
// relevant happened since the last Reset.
//
// For each search directory D, Notifier watches D/mime if it exists, or D
// itself so that the creation of D/mime is seen.  Directories that do not
// exist at all are not watched; the List's own IsStale covers them.
type Notifier struct {
	watcher   *fsnotify.Watcher
	logger    zerolog.Logger
	watched   map[string]struct{}
	dirty     atomic.Bool
	closeCh   chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// NewNotifier starts watching the directories of list.  Failures to watch an
// individual directory are logged and aggregated into the returned error,
// but the Notifier is still usable for the remaining directories.
func NewNotifier(list *List, logger zerolog.Logger) (*Notifier, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	n := &Notifier{
		watcher: watcher,
		logger:  logger,
		watched: make(map[string]struct{}, len(list.dirs)),
		closeCh: make(chan struct{}),
	}

	var errs multierror.Error
	for _, dir := range list.dirs {
		target := filepath.Join(dir, constants.MimeDir)
		if !isDir(target) {
			target = dir
		}
		if !isDir(target) {
			continue
		}
		if _, found := n.watched[target]; found {
			continue
		}
		if err := watcher.Add(target); err != nil {
			logger.Warn().
				Str("dir", target).
				Err(err).
				Msg("failed to watch directory")
			errs.Errors = append(errs.Errors, err)
			continue
		}
		n.watched[target] = struct{}{}
		logger.Debug().
			Str("dir", target).
			Msg("watching")
	}

	n.wg.Add(1)
	go n.loop()

	return n, misc.ErrorOrNil(errs)
}

// Watched returns the number of directories being watched.
func (n *Notifier) Watched() int {
	return len(n.watched)
}

// Dirty reports whether a relevant event arrived since the last Reset.
func (n *Notifier) Dirty() bool {
	return n.dirty.Load()
}

// Reset clears the dirty flag.
func (n *Notifier) Reset() {
	n.dirty.Store(false)
}

// Close stops watching.  It is safe to call more than once.
func (n *Notifier) Close() error {
	n.closeOnce.Do(func() {
		close(n.closeCh)
		n.closeErr = n.watcher.Close()
		n.wg.Wait()
	})
	return n.closeErr
}

func (n *Notifier) loop() {
	defer n.wg.Done()
	for {
		select {
		case <-n.closeCh:
			return

		case event, ok := <-n.watcher.Events:
			if !ok {
				return
			}
			if n.relevant(event) {
				n.logger.Debug().
					Str("path", event.Name).
					Str("op", event.Op.String()).
					Msg("rule files changed")
				n.dirty.Store(true)
			}

		case err, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
			n.logger.Warn().
				Err(err).
				Msg("watch error")
			n.dirty.Store(true)
		}
	}
}

func (n *Notifier) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	switch filepath.Base(event.Name) {
	case filepath.Base(constants.GlobsFile), filepath.Base(constants.MagicFile), constants.MimeDir:
		return true
	}
	return false
}
