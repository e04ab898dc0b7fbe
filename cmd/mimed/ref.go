package main

import (
	"sync/atomic"

	"github.com/chronos-tachyon/xdgmime/lib/mimeresolver"
)

// Ref publishes the current Impl to request handlers.  Readers never block;
// Load replaces the Impl wholesale and shuts the old one down.
type Ref struct {
	Metrics *mimeresolver.Metrics

	current atomic.Pointer[Impl]
}

// Load builds a fresh Impl from configPath.  On error the current Impl is
// left in place.
func (ref *Ref) Load(configPath string) error {
	next, err := LoadImpl(configPath, ref.Metrics)
	if err != nil {
		return err
	}
	return closeImpl(ref.current.Swap(next))
}

// Close drops the current Impl.  Get returns nil afterward.
func (ref *Ref) Close() error {
	return closeImpl(ref.current.Swap(nil))
}

// Get returns the current Impl, or nil if none is loaded.
func (ref *Ref) Get() *Impl {
	return ref.current.Load()
}

func closeImpl(impl *Impl) error {
	if impl == nil {
		return nil
	}
	return impl.Close()
}
