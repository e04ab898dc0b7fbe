package mimeresolver

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/chronos-tachyon/xdgmime/internal/misc"
	"github.com/chronos-tachyon/xdgmime/lib/mimeutil"
	"github.com/chronos-tachyon/xdgmime/lib/watchlist"
	"github.com/chronos-tachyon/xdgmime/lib/xattr"
)

// Resolver classifies files using the rules of its search path.
//
// Resolver is thread-safe if and only if Options.Mutex is a real lock.
type Resolver struct {
	opts      Options
	st        *state
	lastCheck time.Time
	notifier  *watchlist.Notifier
}

// New returns an unloaded Resolver.  Nothing is read until the first
// lookup.
func New(opts Options) *Resolver {
	opts.init()
	return &Resolver{opts: opts}
}

// TypeForFilename classifies by name alone.  Only the part after the last
// '/' is matched.  Names that are not valid UTF-8 are Unknown.
func (r *Resolver) TypeForFilename(name string) MimeType {
	t, outcome := r.typeForFilename(name)
	r.opts.Metrics.observeLookup(MethodFilename, outcome)
	r.trace(MethodFilename, name, t, outcome)
	return t
}

// TypeForData classifies by content alone.  An empty buffer is Unknown.
func (r *Resolver) TypeForData(buf []byte) MimeType {
	st := r.fresh()
	t, outcome := r.typeForData(st, buf)
	r.opts.Metrics.observeLookup(MethodData, outcome)
	r.opts.Logger.Trace().
		Str("method", MethodData).
		Int("size", len(buf)).
		Str("type", string(t)).
		Str("outcome", outcome).
		Msg("classified")
	return t
}

// TypeForFile classifies by name, then, if the name says nothing, by the
// leading bytes of the file.  Only regular files are read.  I/O errors are
// not reported; they simply leave the answer at Unknown.
func (r *Resolver) TypeForFile(path string) MimeType {
	t, outcome := r.typeForFile(path)
	r.opts.Metrics.observeLookup(MethodFile, outcome)
	r.trace(MethodFile, path, t, outcome)
	return t
}

// TypeForPath is TypeForFile for arbitrary filesystem objects.
//
// Directories, FIFOs, sockets and devices map to the "inode/*" types.  For
// regular files, the user.mime_type extended attribute wins when
// Options.UseXattr is set.  Paths that cannot be stat'ed fall back to
// TypeForFilename.
func (r *Resolver) TypeForPath(path string) MimeType {
	t, outcome := r.typeForPath(path)
	r.opts.Metrics.observeLookup(MethodPath, outcome)
	r.trace(MethodPath, path, t, outcome)
	return t
}

// MaxRequiredReadSize returns how many leading bytes of a file TypeForData
// may look at.
func (r *Resolver) MaxRequiredReadSize() int {
	return r.fresh().magic.RequiredBufferSize()
}

// ContentReadSize returns how many leading bytes TypeForFile reads: the
// magic requirement, raised when a Fallback detector is configured.
func (r *Resolver) ContentReadSize() int {
	return r.contentReadSize(r.fresh())
}

func (r *Resolver) contentReadSize(st *state) int {
	want := st.magic.RequiredBufferSize()
	if r.opts.Fallback != nil && want < fallbackReadSize {
		want = fallbackReadSize
	}
	return want
}

// SearchPath returns the data directories of the currently loaded rules.
func (r *Resolver) SearchPath() []string {
	st := r.fresh()
	out := make([]string, len(st.dirs))
	copy(out, st.dirs)
	return out
}

// Reload discards the loaded rules and loads them again immediately.  It
// returns the errors of any rule files that exist but failed to load; the
// Resolver is usable either way.
func (r *Resolver) Reload() error {
	r.opts.Mutex.Lock()
	defer r.opts.Mutex.Unlock()
	return r.rebuildLocked(r.opts.NowFn(), "reload")
}

// Shutdown discards the loaded rules and stops watching.  The next lookup
// loads them again.  It is safe to call at any time, any number of times.
func (r *Resolver) Shutdown() {
	r.opts.Mutex.Lock()
	defer r.opts.Mutex.Unlock()

	r.closeNotifierLocked()
	if r.st != nil {
		r.opts.Logger.Debug().
			Msg("shutdown")
	}
	r.st = nil
	r.lastCheck = time.Time{}
}

// IsLoaded reports whether rules are currently loaded.
func (r *Resolver) IsLoaded() bool {
	r.opts.Mutex.Lock()
	defer r.opts.Mutex.Unlock()
	return r.st != nil
}

func (r *Resolver) typeForFilename(name string) (MimeType, string) {
	if !mimeutil.ValidUTF8(name) {
		return Unknown, OutcomeUnknown
	}
	return r.fresh().typeForName(name)
}

func (st *state) typeForName(name string) (MimeType, string) {
	if t, ok := st.globs.BestMatch(mimeutil.BaseName(name)); ok {
		return MimeType(t), OutcomeName
	}
	return Unknown, OutcomeUnknown
}

func (r *Resolver) typeForData(st *state, buf []byte) (MimeType, string) {
	if len(buf) == 0 {
		return Unknown, OutcomeUnknown
	}
	if t, ok := st.magic.Lookup(buf); ok {
		return MimeType(t), OutcomeMagic
	}
	if r.opts.Fallback != nil {
		if t, ok := r.opts.Fallback.Detect(buf); ok && IsValidMimeType(t) && mimeutil.HasMediaSlash(t) {
			return MimeType(t), OutcomeFallback
		}
	}
	return Unknown, OutcomeUnknown
}

func (r *Resolver) typeForFile(path string) (MimeType, string) {
	if t, outcome := r.typeForFilename(path); t != Unknown {
		return t, outcome
	}

	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return Unknown, OutcomeUnknown
	}
	return r.typeForContent(path, fi.Size())
}

func (r *Resolver) typeForContent(path string, size int64) (MimeType, string) {
	st := r.fresh()

	want := r.contentReadSize(st)
	if size < int64(want) {
		want = int(size)
	}
	if want <= 0 {
		return Unknown, OutcomeUnknown
	}

	buf, err := readHead(path, want)
	if err != nil {
		r.opts.Logger.Debug().
			Str("path", path).
			Err(err).
			Msg("failed to read file")
		return Unknown, OutcomeUnknown
	}
	r.opts.Metrics.observeRead(len(buf))
	return r.typeForData(st, buf)
}

func (r *Resolver) typeForPath(path string) (MimeType, string) {
	fi, err := os.Stat(path)
	if err != nil {
		return r.typeForFilename(path)
	}

	mode := fi.Mode()
	switch {
	case mode.IsRegular():
		// handled below
	case mode.IsDir():
		return InodeDirectory, OutcomeInode
	case mode&os.ModeNamedPipe != 0:
		return InodeFifo, OutcomeInode
	case mode&os.ModeSocket != 0:
		return InodeSocket, OutcomeInode
	case mode&os.ModeCharDevice != 0:
		return InodeCharDevice, OutcomeInode
	case mode&os.ModeDevice != 0:
		return InodeBlockDevice, OutcomeInode
	default:
		return InodeUnknown, OutcomeInode
	}

	if r.opts.UseXattr {
		value, err := xattr.Get(path)
		switch {
		case err == nil && IsValidMimeType(value) && mimeutil.HasMediaSlash(value):
			return MimeType(value), OutcomeXattr
		case err == nil:
			r.opts.Logger.Debug().
				Str("path", path).
				Str("value", value).
				Msg("ignoring malformed " + xattr.Name)
		case !errors.Is(err, xattr.ErrNoAttribute) && !errors.Is(err, xattr.ErrNotSupported):
			r.opts.Logger.Debug().
				Str("path", path).
				Err(err).
				Msg("failed to read " + xattr.Name)
		}
	}

	if t, outcome := r.typeForFilename(path); t != Unknown {
		return t, outcome
	}
	return r.typeForContent(path, fi.Size())
}

// fresh returns the current state, loading or rebuilding it first if
// needed.
func (r *Resolver) fresh() *state {
	r.opts.Mutex.Lock()
	defer r.opts.Mutex.Unlock()

	now := r.opts.NowFn()
	if r.st == nil {
		_ = r.rebuildLocked(now, "initial load")
		return r.st
	}

	dirty := r.notifier != nil && r.notifier.Dirty()
	if !dirty {
		if r.opts.MinRecheckInterval < 0 {
			return r.st
		}
		if now.Sub(r.lastCheck) < r.opts.MinRecheckInterval {
			return r.st
		}
	}

	r.lastCheck = now
	changed := r.st.watch.Changed()
	if len(changed) == 0 && !dirty {
		return r.st
	}

	r.opts.Logger.Info().
		Strs("changed", changed).
		Bool("notified", dirty).
		Msg("rule files changed; rebuilding")
	_ = r.rebuildLocked(now, "stale")
	return r.st
}

func (r *Resolver) rebuildLocked(now time.Time, reason string) error {
	dirs := searchPath(&r.opts)
	st, err := loadState(dirs, r.opts.Semantics, r.opts.Logger)

	r.closeNotifierLocked()
	if r.opts.Watch {
		n, nerr := watchlist.NewNotifier(st.watch, *r.opts.Logger)
		if nerr != nil {
			r.opts.Logger.Warn().
				Err(nerr).
				Msg("failed to watch rule directories")
		}
		r.notifier = n
	}

	r.st = st
	r.lastCheck = now
	r.opts.Metrics.observeRebuild(st, len(misc.Errors(err)))
	r.opts.Logger.Debug().
		Str("reason", reason).
		Strs("dirs", dirs).
		Int("globs", st.globs.Len()).
		Int("rules", st.magic.Len()).
		Msg("rules loaded")
	return err
}

func (r *Resolver) closeNotifierLocked() {
	if r.notifier == nil {
		return
	}
	if err := r.notifier.Close(); err != nil {
		r.opts.Logger.Debug().
			Err(err).
			Msg("failed to close watcher")
	}
	r.notifier = nil
}

func (r *Resolver) trace(method string, subject string, t MimeType, outcome string) {
	r.opts.Logger.Trace().
		Str("method", method).
		Str("subject", subject).
		Str("type", string(t)).
		Str("outcome", outcome).
		Msg("classified")
}

// openForRead opens a file for content sniffing.  Tests replace it to
// inject I/O failures.
var openForRead = func(path string) (io.ReadCloser, error) {
	return os.Open(path)
}

func readHead(path string, n int) ([]byte, error) {
	f, err := openForRead(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	buf := make([]byte, n)
	got, err := io.ReadFull(f, buf)
	switch {
	case err == nil:
		return buf, nil
	case errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF):
		return buf[:got], nil
	default:
		return nil, err
	}
}
