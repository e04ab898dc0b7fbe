package mainutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"sync"
	"time"

	multierror "github.com/hashicorp/go-multierror"
	getopt "github.com/pborman/getopt/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/journald"
	"github.com/rs/zerolog/log"

	"github.com/chronos-tachyon/xdgmime/internal/misc"
	"github.com/chronos-tachyon/xdgmime/lib/mimeutil"
)

type loggingFlags struct {
	version  bool
	verbose  bool
	trace    bool
	stderr   bool
	journald bool
	file     string
}

var (
	gFlags        loggingFlags
	gLogFile      *RotatingLogWriter
	gDefaultLevel = zerolog.InfoLevel
)

// RegisterVersionFlag registers the -V/--version flag.
func RegisterVersionFlag() {
	getopt.FlagLong(&gFlags.version, "version", 'V', "print version and exit")
}

// RegisterLoggingFlags registers the flags that control log output.
func RegisterLoggingFlags() {
	getopt.FlagLong(&gFlags.verbose, "verbose", 'v', "enable debug logging")
	getopt.FlagLong(&gFlags.trace, "debug", 'd', "enable debug and trace logging")
	getopt.FlagLong(&gFlags.stderr, "log-stderr", 'S', "log JSON to stderr")
	getopt.FlagLong(&gFlags.journald, "log-journald", 'J', "log to journald")
	getopt.FlagLong(&gFlags.file, "log-file", 'l', "log JSON to file")
}

// InitVersion prints the version and exits if -V was given.
func InitVersion() {
	if gFlags.version {
		fmt.Println(AppVersion())
		os.Exit(0)
	}
}

// SetDefaultLogLevel changes the level used when neither -v nor -d is given.
// It must be called before InitLogging.
func SetDefaultLogLevel(level zerolog.Level) {
	gDefaultLevel = level
}

// InitLogging applies the logging flags to log.Logger and to the standard
// "log" package.  Invalid flag combinations are fatal.
//
// The caller must ensure that DoneLogging gets called by the end of the
// program's lifecycle.
func InitLogging() {
	out, err := gFlags.output()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.DurationFieldUnit = time.Second
	zerolog.DurationFieldInteger = false
	zerolog.SetGlobalLevel(gFlags.level())

	if out != nil {
		log.Logger = log.Output(out)
	}
	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)
}

func (f *loggingFlags) level() zerolog.Level {
	switch {
	case f.trace:
		return zerolog.TraceLevel
	case f.verbose:
		return zerolog.DebugLevel
	default:
		return gDefaultLevel
	}
}

// output returns the writer for log.Logger, or nil to keep zerolog's JSON
// on stderr.
func (f *loggingFlags) output() (io.Writer, error) {
	numSinks := 0
	for _, on := range []bool{f.stderr, f.journald, f.file != ""} {
		if on {
			numSinks++
		}
	}
	if numSinks > 1 {
		return nil, errors.New("flags '--log-stderr', '--log-journald' and '--log-file' are mutually exclusive")
	}

	switch {
	case f.stderr:
		return nil, nil

	case f.journald:
		return journald.NewJournalDWriter(), nil

	case f.file != "":
		abs, err := mimeutil.ExpandPath(f.file)
		if err != nil {
			return nil, fmt.Errorf("--log-file: %w", err)
		}
		w, err := NewRotatingLogWriter(abs)
		if err != nil {
			return nil, fmt.Errorf("--log-file: failed to open %q for append: %w", abs, err)
		}
		gLogFile = w
		return w, nil

	default:
		return zerolog.ConsoleWriter{Out: os.Stderr}, nil
	}
}

// PackageLogger returns a copy of log.Logger tagged with a package name, for
// handing to library code.
func PackageLogger(pkg string) *zerolog.Logger {
	logger := log.Logger.With().Str("package", pkg).Logger()
	return &logger
}

// DoneLogging flushes and closes the log file, if any.
func DoneLogging() {
	if gLogFile != nil {
		_ = gLogFile.Close()
	}
}

// RotateLogs reopens the log file, if logging to one.  It has the signature
// of a MultiServer.OnReload hook.
func RotateLogs(ctx context.Context) error {
	if gLogFile == nil {
		return nil
	}
	err := gLogFile.Rotate()
	if err != nil {
		log.Logger.Error().
			Err(err).
			Msg("failed to rotate logs")
	}
	return err
}

// type RotatingLogWriter {{{

// RotatingLogWriter appends to a named file and can reopen it by name, so
// that logrotate(8) may move the old file aside.
//
// Writes share a read lock; Rotate and Close take the write lock, so a
// rotation never lands in the middle of a write.
type RotatingLogWriter struct {
	name string
	mu   sync.RWMutex
	file *os.File
}

// NewRotatingLogWriter opens name for append, creating it if needed.
func NewRotatingLogWriter(name string) (*RotatingLogWriter, error) {
	file, err := openLogFile(name)
	if err != nil {
		return nil, err
	}
	return &RotatingLogWriter{name: name, file: file}, nil
}

// Write appends p, which should be a single log line.
func (w *RotatingLogWriter) Write(p []byte) (int, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.file == nil {
		return 0, os.ErrClosed
	}
	return w.file.Write(p)
}

// Rotate switches to a freshly opened file of the same name.
func (w *RotatingLogWriter) Rotate() error {
	file, err := openLogFile(w.name)
	if err != nil {
		return err
	}

	w.mu.Lock()
	old := w.file
	w.file = file
	w.mu.Unlock()

	return closeLogFile(old)
}

// Close flushes and closes the file.  Later writes fail with os.ErrClosed.
func (w *RotatingLogWriter) Close() error {
	w.mu.Lock()
	old := w.file
	w.file = nil
	w.mu.Unlock()

	return closeLogFile(old)
}

func openLogFile(name string) (*os.File, error) {
	return os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o666)
}

func closeLogFile(file *os.File) error {
	if file == nil {
		return nil
	}
	var errs multierror.Error
	if err := file.Sync(); err != nil {
		errs.Errors = append(errs.Errors, err)
	}
	if err := file.Close(); err != nil {
		errs.Errors = append(errs.Errors, err)
	}
	return misc.ErrorOrNil(errs)
}

var _ io.WriteCloser = (*RotatingLogWriter)(nil)

// }}}

// type PromLoggerBridge {{{

// PromLoggerBridge is a promhttp.Logger that forwards to log.Logger.
type PromLoggerBridge struct{}

// Println fulfills promhttp.Logger.
func (PromLoggerBridge) Println(v ...interface{}) {
	log.Logger.Error().
		Str("package", "promhttp").
		Msg(fmt.Sprint(v...))
}

var _ promhttp.Logger = PromLoggerBridge{}

// }}}
