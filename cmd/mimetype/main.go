// Command "mimetype" prints the MIME type of each file named on its command
// line, using the shared-mime-info rules found on the XDG data path.
//
// Usage:
//
//	mimetype [<flags>] <path>...
//
// Flags:
//
//	-V, --version               print version and exit
//	-n, --name-only             classify by file name only
//	-D, --data-only             classify by file contents only
//	-i, --stdin                 classify standard input by contents
//	    --set=type              store type in the user.mime_type attribute
//	-p, --data-dirs=a:b         directories to search instead of $XDG_DATA_*
//	-m, --magic-semantics=s     "conjunctive" or "freedesktop"
//	-F, --fallback=name         "none", "mimetype" or "filetype"
//	-x, --xattr                 honor the user.mime_type attribute
//	    --max-read              print the magic read size and exit
//	-J, --log-journald          log to journald
//	-l, --log-file=path         log JSON to file
//	-S, --log-stderr            log JSON to stderr
//	-v, --verbose               enable debug logging
//	-d, --debug                 enable debug and trace logging
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	getopt "github.com/pborman/getopt/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chronos-tachyon/xdgmime/lib/fallback"
	"github.com/chronos-tachyon/xdgmime/lib/mainutil"
	"github.com/chronos-tachyon/xdgmime/lib/mimemagic"
	"github.com/chronos-tachyon/xdgmime/lib/mimeresolver"
	"github.com/chronos-tachyon/xdgmime/lib/mimeutil"
	"github.com/chronos-tachyon/xdgmime/lib/xattr"
)

var (
	flagNameOnly       bool
	flagDataOnly       bool
	flagStdin          bool
	flagSet            string
	flagDataDirs       string
	flagMagicSemantics string = "conjunctive"
	flagFallback       string = "none"
	flagXattr          bool
	flagMaxRead        bool
)

func init() {
	getopt.SetParameters("<path>...")

	mainutil.SetAppVersion(mainutil.ProjectVersion())
	mainutil.RegisterVersionFlag()
	mainutil.RegisterLoggingFlags()

	getopt.FlagLong(&flagNameOnly, "name-only", 'n', "classify by file name only")
	getopt.FlagLong(&flagDataOnly, "data-only", 'D', "classify by file contents only")
	getopt.FlagLong(&flagStdin, "stdin", 'i', "classify standard input by contents")
	getopt.FlagLong(&flagSet, "set", 0, "store this type in the "+xattr.Name+" attribute of each path")
	getopt.FlagLong(&flagDataDirs, "data-dirs", 'p', "colon-separated data directories, highest precedence first")
	getopt.FlagLong(&flagMagicSemantics, "magic-semantics", 'm', "magic evaluation: conjunctive or freedesktop")
	getopt.FlagLong(&flagFallback, "fallback", 'F', "content sniffer to try after magic: none, mimetype, filetype")
	getopt.FlagLong(&flagXattr, "xattr", 'x', "honor the "+xattr.Name+" attribute")
	getopt.FlagLong(&flagMaxRead, "max-read", 0, "print the number of bytes magic matching needs, then exit")
}

func main() {
	getopt.Parse()

	mainutil.InitVersion()

	mainutil.SetDefaultLogLevel(zerolog.WarnLevel)
	mainutil.InitLogging()
	defer mainutil.DoneLogging()

	if flagNameOnly && flagDataOnly {
		log.Logger.Fatal().
			Msg("flags '--name-only' and '--data-only' are mutually exclusive")
	}

	if flagSet != "" {
		os.Exit(setTypes(flagSet, getopt.Args()))
	}

	opts, err := buildOptions()
	if err != nil {
		log.Logger.Fatal().
			Err(err).
			Msg("invalid flags")
	}
	resolver := mimeresolver.New(opts)
	defer resolver.Shutdown()

	if flagMaxRead {
		fmt.Println(resolver.MaxRequiredReadSize())
		return
	}

	out := bufio.NewWriter(os.Stdout)
	defer func() {
		_ = out.Flush()
	}()

	if flagStdin {
		t, err := classifyReader(resolver, os.Stdin)
		if err != nil {
			log.Logger.Fatal().
				Err(err).
				Msg("failed to read standard input")
		}
		fmt.Fprintf(out, "-: %s\n", t)
		return
	}

	if getopt.NArgs() == 0 {
		getopt.Usage()
		os.Exit(2)
	}

	for _, path := range getopt.Args() {
		fmt.Fprintf(out, "%s: %s\n", path, classify(resolver, path))
	}
}

func buildOptions() (mimeresolver.Options, error) {
	var opts mimeresolver.Options

	semantics, err := mimemagic.ParseSemantics(flagMagicSemantics)
	if err != nil {
		return opts, fmt.Errorf("--magic-semantics: %w", err)
	}

	detector, err := fallback.ByName(flagFallback)
	if err != nil {
		return opts, fmt.Errorf("--fallback: %w", err)
	}

	if flagDataDirs != "" {
		dirs, err := mimeutil.ExpandPathList(flagDataDirs)
		if err != nil {
			return opts, fmt.Errorf("--data-dirs: %w", err)
		}
		opts.SearchPath = dirs
	}

	opts.MinRecheckInterval = -1
	opts.Logger = mainutil.PackageLogger("mimeresolver")
	opts.Semantics = semantics
	opts.Fallback = detector
	opts.UseXattr = flagXattr
	return opts, nil
}

func classify(resolver *mimeresolver.Resolver, path string) mimeresolver.MimeType {
	switch {
	case flagNameOnly:
		return resolver.TypeForFilename(path)

	case flagDataOnly:
		f, err := os.Open(path)
		if err != nil {
			log.Logger.Warn().
				Str("path", path).
				Err(err).
				Msg("failed to open file")
			return mimeresolver.Unknown
		}
		defer func() {
			_ = f.Close()
		}()
		t, err := classifyReader(resolver, f)
		if err != nil {
			log.Logger.Warn().
				Str("path", path).
				Err(err).
				Msg("failed to read file")
		}
		return t

	default:
		return resolver.TypeForPath(path)
	}
}

func classifyReader(resolver *mimeresolver.Resolver, r io.Reader) (mimeresolver.MimeType, error) {
	n := resolver.ContentReadSize()
	if n <= 0 {
		return mimeresolver.Unknown, nil
	}
	buf := make([]byte, n)
	n, err := io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = nil
	}
	if err != nil {
		return mimeresolver.Unknown, err
	}
	return resolver.TypeForData(buf[:n]), nil
}

func setTypes(mimeType string, paths []string) int {
	if !mimeresolver.IsValidMimeType(mimeType) {
		log.Logger.Error().
			Str("type", mimeType).
			Msg("--set: not a valid MIME type")
		return 1
	}

	exitCode := 0
	for _, path := range paths {
		if err := xattr.Set(path, mimeType); err != nil {
			log.Logger.Error().
				Str("path", path).
				Err(err).
				Msg("failed to set type")
			exitCode = 1
		}
	}
	return exitCode
}
