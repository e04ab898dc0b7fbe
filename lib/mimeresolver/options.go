package mimeresolver

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/chronos-tachyon/xdgmime/lib/fallback"
	"github.com/chronos-tachyon/xdgmime/lib/mimemagic"
)

// DefaultMinRecheckInterval is how long a loaded Resolver trusts its rule
// files before stat'ing them again.
const DefaultMinRecheckInterval = 5 * time.Second

// fallbackReadSize is how much content a Fallback detector is given when
// the magic rules themselves need less.
const fallbackReadSize = 3072

// Options configures a Resolver.  The zero value is usable.
type Options struct {
	// SearchPath lists data directories, highest precedence first.  Each
	// contributes mime/globs and mime/magic.  Nil means the XDG search
	// path from the environment, evaluated at every rebuild.
	SearchPath []string

	// MinRecheckInterval limits how often the rule files are re-stat'ed.
	// Zero means DefaultMinRecheckInterval; negative means never.
	MinRecheckInterval time.Duration

	// NowFn returns the current time.  Nil means time.Now.
	NowFn func() time.Time

	// Mutex guards the Resolver.  Nil means no locking, which is only
	// correct if a single goroutine uses the Resolver.
	Mutex sync.Locker

	// Logger receives load and rebuild events.  Nil means zerolog.Nop().
	Logger *zerolog.Logger

	// Semantics selects how magic matchlet trees are evaluated.
	Semantics mimemagic.Semantics

	// Fallback is consulted after the magic rules find nothing.  Nil
	// disables it.
	Fallback fallback.Detector

	// Metrics, if non-nil, is updated by every lookup and rebuild.
	Metrics *Metrics

	// Watch enables fsnotify-based change detection, which forces a
	// recheck as soon as a rule directory changes.
	Watch bool

	// UseXattr makes TypeForPath honor the user.mime_type attribute.
	UseXattr bool
}

func (opts *Options) init() {
	if opts.MinRecheckInterval == 0 {
		opts.MinRecheckInterval = DefaultMinRecheckInterval
	}
	if opts.NowFn == nil {
		opts.NowFn = time.Now
	}
	if opts.Mutex == nil {
		opts.Mutex = dummyLocker{}
	}
	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}
	if opts.SearchPath != nil {
		dirs := make([]string, len(opts.SearchPath))
		copy(dirs, opts.SearchPath)
		opts.SearchPath = dirs
	}
}

type dummyLocker struct{}

func (dummyLocker) Lock()   {}
func (dummyLocker) Unlock() {}

var _ sync.Locker = dummyLocker{}
