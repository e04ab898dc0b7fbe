package mimeresolver

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/chronos-tachyon/xdgmime/internal/constants"
	"github.com/chronos-tachyon/xdgmime/internal/misc"
	"github.com/chronos-tachyon/xdgmime/lib/basedir"
	"github.com/chronos-tachyon/xdgmime/lib/mimeglob"
	"github.com/chronos-tachyon/xdgmime/lib/mimemagic"
	"github.com/chronos-tachyon/xdgmime/lib/watchlist"
)

// state is one immutable generation of loaded rules.  It is replaced
// wholesale, never patched, so lookups may keep using an old one while a
// new one is swapped in.
type state struct {
	dirs  []string
	globs *mimeglob.Table
	magic *mimemagic.Matcher
	watch *watchlist.List
}

// loadState reads every rule file under dirs.  Missing files are normal and
// silently skipped; files that exist but cannot be loaded are logged and
// returned as a multierror.  The watch list is taken before any file is
// read, so that a change racing with the load is seen by the next check.
func loadState(dirs []string, semantics mimemagic.Semantics, logger *zerolog.Logger) (*state, error) {
	st := &state{
		dirs:  dirs,
		globs: mimeglob.New(),
		magic: mimemagic.New(semantics),
		watch: watchlist.Build(dirs),
	}

	var errs multierror.Error
	for _, dir := range dirs {
		globsPath := filepath.Join(dir, constants.GlobsFile)
		globStats, err := st.globs.LoadFile(globsPath)
		if err = checkLoad(logger, globsPath, err, len(globStats.Skipped)); err != nil {
			errs.Errors = append(errs.Errors, err)
		}
		for _, skipped := range globStats.Skipped {
			logger.Debug().
				Str("path", globsPath).
				Err(skipped).
				Msg("skipped glob rule")
		}
		if globStats.Added != 0 {
			logger.Debug().
				Str("path", globsPath).
				Int("globs", globStats.Added).
				Msg("loaded")
		}

		magicPath := filepath.Join(dir, constants.MagicFile)
		magicStats, err := st.magic.LoadFile(magicPath)
		if err = checkLoad(logger, magicPath, err, len(magicStats.Skipped)); err != nil {
			errs.Errors = append(errs.Errors, err)
		}
		for _, skipped := range magicStats.Skipped {
			logger.Debug().
				Str("path", magicPath).
				Err(skipped).
				Msg("skipped magic section")
		}
		if magicStats.Added != 0 {
			logger.Debug().
				Str("path", magicPath).
				Int("rules", magicStats.Added).
				Msg("loaded")
		}
	}

	return st, misc.ErrorOrNil(errs)
}

func checkLoad(logger *zerolog.Logger, path string, err error, numSkipped int) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		logger.Trace().
			Str("path", path).
			Msg("not present")
		return nil
	}
	logger.Warn().
		Str("path", path).
		Int("skipped", numSkipped).
		Err(err).
		Msg("failed to load rule file")
	return err
}

func searchPath(opts *Options) []string {
	if opts.SearchPath != nil {
		return opts.SearchPath
	}
	return basedir.SearchPath(os.LookupEnv)
}
