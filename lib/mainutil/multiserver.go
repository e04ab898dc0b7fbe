package mainutil

import (
	"context"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/chronos-tachyon/xdgmime/internal/misc"
)

const gracePeriod = 5 * time.Second

// HealthWatchFunc is called whenever a subsystem's health changes.
type HealthWatchFunc func(subsystemName string, isHealthy bool, isStopped bool)

// WatchID identifies a HealthWatchFunc registered with WatchHealth.
type WatchID uint64

// MultiServer runs a set of servers until SIGINT or SIGTERM arrives or one
// of them fails.  SIGHUP runs the OnReload hooks.
//
// It also tracks a health bit per subsystem, served over gRPC by
// HealthServer.  The "" subsystem is the process as a whole.
type MultiServer struct {
	wg           sync.WaitGroup
	runList      []func()
	reloadList   []func(context.Context) error
	shutdownList []func(bool) error
	exitList     []func() error

	mu            sync.Mutex
	shutdownCh    chan struct{}
	alreadyTermed bool
	alreadyClosed bool
	stopped       bool
	health        map[string]bool
	watches       map[WatchID]HealthWatchFunc
	lastWatchID   WatchID
}

// Go runs fn in a goroutine that Run waits for.
func (m *MultiServer) Go(fn func()) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		fn()
	}()
}

// OnRun registers fn to run in its own goroutine when Run starts.
func (m *MultiServer) OnRun(fn func()) {
	m.runList = append(m.runList, fn)
}

// OnReload registers fn to run on SIGHUP.
func (m *MultiServer) OnReload(fn func(context.Context) error) {
	m.reloadList = append(m.reloadList, fn)
}

// OnShutdown registers fn to run when shutting down.  Its argument is true
// if this is a forced shutdown.
func (m *MultiServer) OnShutdown(fn func(bool) error) {
	m.shutdownList = append(m.shutdownList, fn)
}

// OnExit registers fn to run after every OnShutdown hook has finished.
func (m *MultiServer) OnExit(fn func() error) {
	m.exitList = append(m.exitList, fn)
}

// AddHTTPServer serves server on listen for the lifetime of Run.
func (m *MultiServer) AddHTTPServer(name string, server *http.Server, listen net.Listener) {
	if server == nil {
		panic(errors.New("*http.Server is nil"))
	}
	m.addServer(name, listen, server.Serve, func(force bool) error {
		if force {
			return server.Close()
		}
		ctx, cancel := context.WithTimeout(RootContext(), gracePeriod)
		defer cancel()
		return server.Shutdown(ctx)
	})
}

// AddGRPCServer serves server on listen for the lifetime of Run.
func (m *MultiServer) AddGRPCServer(name string, server *grpc.Server, listen net.Listener) {
	if server == nil {
		panic(errors.New("*grpc.Server is nil"))
	}
	m.addServer(name, listen, server.Serve, func(force bool) error {
		if force {
			server.Stop()
		} else {
			go server.GracefulStop()
		}
		return nil
	})
}

// addServer marks the subsystem healthy until serve returns.  The first
// server to stop takes the whole process down with it.
func (m *MultiServer) addServer(
	name string,
	listen net.Listener,
	serve func(net.Listener) error,
	stop func(force bool) error,
) {
	if listen == nil {
		panic(errors.New("net.Listener is nil"))
	}
	m.SetHealth(name, true)
	m.OnRun(func() {
		err := serve(listen)
		m.SetHealth(name, false)
		m.closeShutdownCh()
		if isRealShutdownError(err) {
			log.Logger.Error().
				Str("subsystem", name).
				Err(err).
				Msg("server exited")
		}
	})
	m.OnShutdown(func(force bool) error {
		err := stop(force)
		if !isRealShutdownError(err) {
			return nil
		}
		log.Logger.Error().
			Str("subsystem", name).
			Bool("force", force).
			Err(err).
			Msg("failed to stop server")
		return err
	})
}

// HealthServer returns a gRPC health service backed by this MultiServer.
func (m *MultiServer) HealthServer() grpc_health_v1.HealthServer {
	return healthServer{m: m}
}

// SetHealth records the health of a subsystem and notifies watchers.
func (m *MultiServer) SetHealth(subsystemName string, isHealthy bool) {
	m.mu.Lock()
	if m.health == nil {
		m.health = make(map[string]bool, 4)
	}
	old, found := m.health[subsystemName]
	m.health[subsystemName] = isHealthy
	watches := m.sortedWatchesLocked()
	stopped := m.stopped
	m.mu.Unlock()

	if found && old == isHealthy {
		return
	}
	for _, fn := range watches {
		fn(subsystemName, isHealthy, stopped)
	}
}

// GetHealth returns the health of a subsystem.  found is false if
// SetHealth was never called for it.
func (m *MultiServer) GetHealth(subsystemName string) (isHealthy bool, found bool) {
	m.mu.Lock()
	isHealthy, found = m.health[subsystemName]
	m.mu.Unlock()
	return
}

// WatchHealth registers fn to be called on every health change.
func (m *MultiServer) WatchHealth(fn HealthWatchFunc) WatchID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.watches == nil {
		m.watches = make(map[WatchID]HealthWatchFunc, 4)
	}
	m.lastWatchID++
	id := m.lastWatchID
	m.watches[id] = fn
	return id
}

// CancelWatchHealth unregisters a function registered with WatchHealth.
func (m *MultiServer) CancelWatchHealth(id WatchID) {
	m.mu.Lock()
	delete(m.watches, id)
	m.mu.Unlock()
}

func (m *MultiServer) sortedWatchesLocked() []HealthWatchFunc {
	ids := make([]WatchID, 0, len(m.watches))
	for id := range m.watches {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]HealthWatchFunc, len(ids))
	for i, id := range ids {
		out[i] = m.watches[id]
	}
	return out
}

// Run starts every server and blocks until all of them have stopped.
func (m *MultiServer) Run() {
	m.mu.Lock()
	m.shutdownCh = make(chan struct{})
	m.alreadyTermed = false
	m.alreadyClosed = false
	m.mu.Unlock()

	m.SetHealth("", true)
	sdNotify("READY=1")

	for _, fn := range m.runList {
		m.Go(fn)
	}

	ctx := RootContext()
	exitCh := make(chan struct{})
	go m.stopWhenAnyServerExits(ctx, exitCh)
	go m.handleSignals(ctx, exitCh)

	m.wg.Wait()
	close(exitCh)
}

// stopWhenAnyServerExits shuts the rest down gracefully once one server has
// stopped, escalating to a forced stop after gracePeriod.
func (m *MultiServer) stopWhenAnyServerExits(ctx context.Context, exitCh <-chan struct{}) {
	select {
	case <-ctx.Done():
		return
	case <-m.shutdownCh:
	}

	_ = m.Shutdown(true)

	t := time.NewTimer(gracePeriod)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-exitCh:
	case <-t.C:
		_ = m.Shutdown(false)
	}
}

func (m *MultiServer) handleSignals(ctx context.Context, exitCh <-chan struct{}) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	for {
		var sig os.Signal
		select {
		case <-ctx.Done():
			return
		case <-exitCh:
			return
		case sig = <-sigCh:
		}

		log.Logger.Info().
			Str("sig", sig.String()).
			Msg("got signal")

		if sig == syscall.SIGHUP {
			_ = m.Reload(ctx)
		} else {
			_ = m.Shutdown(true)
		}
	}
}

// Reload runs every OnReload hook and aggregates their errors.
func (m *MultiServer) Reload(ctx context.Context) error {
	var errs multierror.Error
	sdNotify("RELOADING=1")
	for _, fn := range m.reloadList {
		if err := fn(ctx); err != nil {
			errs.Errors = append(errs.Errors, err)
		}
	}
	sdNotify("READY=1")
	return misc.ErrorOrNil(errs)
}

// Shutdown stops every server.  The first call with graceful true waits for
// in-flight requests; any later call forces the issue.
//
// OnShutdown hooks run concurrently, in reverse registration order; OnExit
// hooks run afterward, one at a time, also in reverse.
func (m *MultiServer) Shutdown(graceful bool) error {
	m.mu.Lock()
	force := m.alreadyTermed
	m.alreadyTermed = true
	m.stopped = true
	m.mu.Unlock()

	if force && graceful {
		return nil
	}
	if force {
		log.Logger.Warn().
			Msg("forcing dirty shutdown")
		CancelRootContext()
	}

	m.SetHealth("", false)
	sdNotify("STOPPING=1")

	var (
		wg    sync.WaitGroup
		errMu sync.Mutex
		errs  multierror.Error
	)
	addErr := func(err error) {
		if err != nil {
			errMu.Lock()
			errs.Errors = append(errs.Errors, err)
			errMu.Unlock()
		}
	}

	for i := len(m.shutdownList) - 1; i >= 0; i-- {
		fn := m.shutdownList[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			addErr(fn(force))
		}()
	}
	wg.Wait()

	for i := len(m.exitList) - 1; i >= 0; i-- {
		addErr(m.exitList[i]())
	}
	return misc.ErrorOrNil(errs)
}

func (m *MultiServer) closeShutdownCh() {
	m.mu.Lock()
	if !m.alreadyClosed && m.shutdownCh != nil {
		m.alreadyClosed = true
		close(m.shutdownCh)
	}
	m.mu.Unlock()
}

// expectedShutdownErrors are what Serve and friends return when stopped on
// purpose.
var expectedShutdownErrors = []error{
	fs.ErrClosed,
	net.ErrClosed,
	http.ErrServerClosed,
	grpc.ErrServerStopped,
	context.Canceled,
}

func isRealShutdownError(err error) bool {
	if err == nil {
		return false
	}
	for _, expected := range expectedShutdownErrors {
		if errors.Is(err, expected) {
			return false
		}
	}
	return true
}
