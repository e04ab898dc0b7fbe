// Command "mimed" is an HTTP service that classifies files by MIME type
// using the shared-mime-info rules found on the XDG data path.
//
// Usage:
//
//	mimed [<flags>]
//
// Flags:
//
//	-V, --version              print version and exit
//	-c, --config=path          JSON configuration file (optional)
//	-L, --listen=addr          address for the classification API
//	    --prometheus-addr=addr address for Prometheus metrics
//	    --admin-addr=addr      address for the gRPC health service
//	-J, --log-journald         log to journald
//	-l, --log-file=path        log JSON to file
//	-S, --log-stderr           log JSON to stderr
//	-v, --verbose              enable debug logging
//	-d, --debug                enable debug and trace logging
//
// Addresses take the form "<host:port>", "/path/to/unix.socket" or
// "@abstract", optionally followed by ";net=<network>".  An empty address
// disables that listener.
//
// SIGHUP reopens the log file and reloads the configuration, which also
// discards and reloads the MIME rules.
package main

import (
	"context"
	"net"
	"net/http"
	"time"

	getopt "github.com/pborman/getopt/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/chronos-tachyon/xdgmime/internal/constants"
	"github.com/chronos-tachyon/xdgmime/lib/mainutil"
	"github.com/chronos-tachyon/xdgmime/lib/mimeresolver"
	"github.com/chronos-tachyon/xdgmime/lib/mimeutil"
)

var (
	flagConfig    string
	flagListen    string = "localhost:6880"
	flagPromAddr  string = "localhost:6881"
	flagAdminAddr string = "/run/mimed/admin.socket"
)

func init() {
	getopt.SetParameters("")

	mainutil.SetAppVersion(mainutil.ProjectVersion())
	mainutil.RegisterVersionFlag()
	mainutil.RegisterLoggingFlags()

	getopt.FlagLong(&flagConfig, "config", 'c', "path to JSON configuration file")
	getopt.FlagLong(&flagListen, "listen", 'L', "address for the classification API")
	getopt.FlagLong(&flagPromAddr, "prometheus-addr", 0, "address for Prometheus monitoring metrics")
	getopt.FlagLong(&flagAdminAddr, "admin-addr", 0, "address for the gRPC health service")
}

var (
	gRef         Ref
	gMultiServer mainutil.MultiServer
)

func main() {
	getopt.Parse()

	mainutil.InitVersion()

	mainutil.InitContext()
	defer mainutil.CancelRootContext()
	ctx := mainutil.RootContext()

	mainutil.InitLogging()
	defer mainutil.DoneLogging()

	if flagConfig != "" {
		abs, err := mimeutil.ExpandPath(flagConfig)
		if err != nil {
			log.Logger.Fatal().
				Str("input", flagConfig).
				Err(err).
				Msg("--config: failed to process path")
		}
		flagConfig = abs
	}

	var apiConfig, promConfig, adminConfig mainutil.ListenConfig
	parseListenFlag(&apiConfig, constants.SubsystemHTTP, "--listen", flagListen)
	parseListenFlag(&promConfig, constants.SubsystemProm, "--prometheus-addr", flagPromAddr)
	parseListenFlag(&adminConfig, constants.SubsystemAdmin, "--admin-addr", flagAdminAddr)

	gRef.Metrics = mimeresolver.NewMetrics(metricsNamespace)
	gRef.Metrics.MustRegister(prometheus.DefaultRegisterer)

	apiMetrics := NewMetrics(constants.SubsystemHTTP)
	apiMetrics.MustRegister(prometheus.DefaultRegisterer)
	promMetrics := NewMetrics(constants.SubsystemProm)
	promMetrics.MustRegister(prometheus.DefaultRegisterer)

	if err := gRef.Load(flagConfig); err != nil {
		log.Logger.Fatal().
			Str("path", flagConfig).
			Err(err).
			Msg("failed to load config file")
	}

	gMultiServer.OnExit(func() error {
		if err := gRef.Close(); err != nil {
			log.Logger.Error().
				Err(err).
				Msg("failed to close resolver")
			return err
		}
		return nil
	})

	var apiHandler http.Handler
	apiHandler = APIHandler{Ref: &gRef}
	apiHandler = RootHandler{Subsystem: constants.SubsystemHTTP, Metrics: apiMetrics, Next: apiHandler}
	apiServer := newHTTPServer(ctx, apiHandler)

	var promHandler http.Handler
	promHandler = promhttp.HandlerFor(
		prometheus.DefaultGatherer,
		promhttp.HandlerOpts{
			ErrorLog:            mainutil.PromLoggerBridge{},
			Registry:            prometheus.DefaultRegisterer,
			MaxRequestsInFlight: 4,
			EnableOpenMetrics:   true,
		})
	promHandler = RootHandler{Subsystem: constants.SubsystemProm, Metrics: promMetrics, Next: promHandler}
	promServer := newHTTPServer(ctx, promHandler)

	adminServer := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(adminServer, gMultiServer.HealthServer())

	apiListener := listen(ctx, constants.SubsystemHTTP, apiConfig)
	promListener := listen(ctx, constants.SubsystemProm, promConfig)
	adminListener := listen(ctx, constants.SubsystemAdmin, adminConfig)

	gMultiServer.AddHTTPServer(constants.SubsystemHTTP, apiServer, apiListener)
	gMultiServer.AddHTTPServer(constants.SubsystemProm, promServer, promListener)
	gMultiServer.AddGRPCServer(constants.SubsystemAdmin, adminServer, adminListener)

	gMultiServer.OnReload(mainutil.RotateLogs)
	gMultiServer.OnReload(func(ctx context.Context) error {
		if err := gRef.Load(flagConfig); err != nil {
			log.Logger.Error().
				Str("path", flagConfig).
				Err(err).
				Msg("failed to reload config file; keeping old config")
			if impl := gRef.Get(); impl != nil {
				impl.Resolver().Shutdown()
			}
			return err
		}
		return nil
	})

	gMultiServer.OnRun(func() {
		log.Logger.Info().
			Str("listen", apiConfig.String()).
			Msg("Running")
	})

	gMultiServer.Run()

	log.Logger.Info().
		Msg("Exit")
}

func parseListenFlag(lc *mainutil.ListenConfig, subsystem string, flagName string, input string) {
	if err := lc.Parse(input); err != nil {
		log.Logger.Fatal().
			Str("subsystem", subsystem).
			Str("input", input).
			Err(err).
			Msg(flagName + ": failed to parse config")
	}

	log.Logger.Trace().
		Str("subsystem", subsystem).
		Interface("config", lc).
		Msg("ready")
}

func listen(ctx context.Context, subsystem string, lc mainutil.ListenConfig) net.Listener {
	l, err := lc.Listen(ctx)
	if err != nil {
		log.Logger.Fatal().
			Err(mainutil.ListenError{Subsystem: subsystem, Config: lc, Err: err}).
			Msg("failed to Listen")
	}
	return l
}

func newHTTPServer(ctx context.Context, handler http.Handler) *http.Server {
	return &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
}
