package main

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/chronos-tachyon/xdgmime/internal/misc"
	"github.com/chronos-tachyon/xdgmime/lib/fallback"
	"github.com/chronos-tachyon/xdgmime/lib/mainutil"
	"github.com/chronos-tachyon/xdgmime/lib/mimeresolver"
	"github.com/chronos-tachyon/xdgmime/lib/mimeutil"
)

// Impl is one generation of loaded configuration.  SIGHUP replaces it.
type Impl struct {
	configPath   string
	cfg          *Config
	resolver     *mimeresolver.Resolver
	maxBodyBytes int64
}

// LoadImpl reads configPath, or uses the defaults if configPath is empty,
// and builds a Resolver from it.  Rule files that fail to load are logged
// but do not fail the call.
func LoadImpl(configPath string, metrics *mimeresolver.Metrics) (*Impl, error) {
	impl := &Impl{
		configPath: configPath,
		cfg:        new(Config),
	}

	if configPath != "" {
		raw, err := os.ReadFile(configPath)
		if err != nil {
			return nil, ConfigLoadError{
				Path: configPath,
				Err:  fmt.Errorf("failed to read config file: %w", err),
			}
		}

		err = misc.StrictUnmarshalJSON(raw, impl.cfg)
		if err != nil {
			return nil, ConfigLoadError{
				Path: configPath,
				Err:  err,
			}
		}
	}

	opts := mimeresolver.Options{
		Mutex:     &sync.Mutex{},
		Logger:    mainutil.PackageLogger("mimeresolver"),
		Semantics: impl.cfg.MagicSemantics,
		Metrics:   metrics,
		Watch:     impl.cfg.Watch,
		UseXattr:  impl.cfg.Xattr,
	}

	if impl.cfg.DataDirs != nil {
		opts.SearchPath = make([]string, 0, len(impl.cfg.DataDirs))
		for index, dir := range impl.cfg.DataDirs {
			abs, err := mimeutil.ExpandPath(dir)
			if err != nil {
				return nil, ConfigLoadError{
					Path:    configPath,
					Section: fmt.Sprintf("dataDirs[%d]", index),
					Err:     err,
				}
			}
			opts.SearchPath = append(opts.SearchPath, abs)
		}
	}

	if str := impl.cfg.RecheckInterval; str != "" {
		if str == "never" {
			opts.MinRecheckInterval = -1
		} else {
			d, err := time.ParseDuration(str)
			if err == nil && d <= 0 {
				err = errors.New("must be positive, or \"never\"")
			}
			if err != nil {
				return nil, ConfigLoadError{
					Path:    configPath,
					Section: "recheckInterval",
					Err:     err,
				}
			}
			opts.MinRecheckInterval = d
		}
	}

	detector, err := fallback.ByName(impl.cfg.Fallback)
	if err != nil {
		return nil, ConfigLoadError{
			Path:    configPath,
			Section: "fallback",
			Err:     err,
		}
	}
	opts.Fallback = detector

	impl.maxBodyBytes = impl.cfg.MaxBodyBytes
	switch {
	case impl.maxBodyBytes == 0:
		impl.maxBodyBytes = defaultMaxBodyBytes
	case impl.maxBodyBytes < 0:
		return nil, ConfigLoadError{
			Path:    configPath,
			Section: "maxBodyBytes",
			Err:     fmt.Errorf("must not be negative, got %d", impl.maxBodyBytes),
		}
	}

	impl.resolver = mimeresolver.New(opts)
	if err := impl.resolver.Reload(); err != nil {
		log.Logger.Warn().
			Err(err).
			Msg("some rule files failed to load")
	}

	log.Logger.Info().
		Strs("dataDirs", impl.resolver.SearchPath()).
		Str("magicSemantics", opts.Semantics.String()).
		Msg("loaded")
	return impl, nil
}

// Resolver returns this generation's Resolver.
func (impl *Impl) Resolver() *mimeresolver.Resolver {
	return impl.resolver
}

// MaxBodyBytes returns how much of a POST /v1/data body is classified.
func (impl *Impl) MaxBodyBytes() int64 {
	return impl.maxBodyBytes
}

// Close stops the Resolver's file watches and drops its rules.
func (impl *Impl) Close() error {
	impl.resolver.Shutdown()
	return nil
}
