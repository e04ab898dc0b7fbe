package mainutil

import (
	"context"
	"sync"
)

// rootCtx is the process-wide context.  Cancelling it tells every
// long-running goroutine to give up.
var rootCtx struct {
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
}

// InitContext replaces the root context with a fresh, uncancelled one.
func InitContext() {
	ctx, cancel := context.WithCancel(context.Background())
	rootCtx.mu.Lock()
	rootCtx.ctx, rootCtx.cancel = ctx, cancel
	rootCtx.mu.Unlock()
}

// RootContext returns the root context, creating it on first use.
func RootContext() context.Context {
	rootCtx.mu.Lock()
	defer rootCtx.mu.Unlock()
	if rootCtx.ctx == nil {
		rootCtx.ctx, rootCtx.cancel = context.WithCancel(context.Background())
	}
	return rootCtx.ctx
}

// CancelRootContext cancels the root context.  It is a no-op before the
// context exists.
func CancelRootContext() {
	rootCtx.mu.Lock()
	cancel := rootCtx.cancel
	rootCtx.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
