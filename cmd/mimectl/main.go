// Command "mimectl" is the admin CLI for "mimed".
//
// Usage:
//
//	mimectl [<flags>] <cmd> [<args>...]
//
// Flags:
//
//	-V, --version        print version and exit
//	-s, --server=addr    address of the mimed admin port
//	     [default: "/run/mimed/admin.socket"]
//	-J, --log-journald   log to journald
//	-l, --log-file=path  log JSON to file
//	-S, --log-stderr     log JSON to stderr
//	-v, --verbose        enable debug logging
//	-d, --debug          enable debug and trace logging
//
// Commands:
//
//	help                 list available commands
//	healthcheck [name]   check the health of the named subsystem(*)
//	watch [name]         print health changes of the named subsystem(*)
//
//	(*) The empty string, the default, is mimed as a whole.  The other
//	    subsystems are "http", "prom" and "admin".
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	getopt "github.com/pborman/getopt/v2"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/chronos-tachyon/xdgmime/internal/constants"
	"github.com/chronos-tachyon/xdgmime/lib/mainutil"
)

var flagAdminTarget = "/run/mimed/admin.socket"

// command runs against the admin health service and returns the process
// exit status.
type command func(ctx context.Context, health grpc_health_v1.HealthClient, service string) int

var commands = map[string]command{
	"healthcheck": runHealthcheck,
	"watch":       runWatch,
}

func init() {
	getopt.SetParameters("<cmd> [<subsystem>]")

	mainutil.SetAppVersion(mainutil.ProjectVersion())
	mainutil.RegisterVersionFlag()
	mainutil.RegisterLoggingFlags()

	getopt.FlagLong(&flagAdminTarget, "server", 's', "address for the admin gRPC interface")
}

func main() {
	getopt.Parse()
	mainutil.InitVersion()
	mainutil.InitLogging()
	mainutil.InitContext()

	os.Exit(run(getopt.Args()))
}

func run(args []string) int {
	defer mainutil.DoneLogging()
	defer mainutil.CancelRootContext()

	if len(args) == 0 || args[0] == "help" {
		printHelp()
		return 0
	}
	if len(args) > 2 {
		log.Logger.Error().
			Int("expect", 2).
			Int("actual", len(args)).
			Msg("too many arguments")
		return 2
	}

	fn, found := commands[args[0]]
	if !found {
		log.Logger.Error().
			Str("cmd", args[0]).
			Msg("unknown command")
		return 2
	}

	var service string
	if len(args) == 2 {
		service = args[1]
	}

	var adminConfig mainutil.ListenConfig
	if err := adminConfig.Parse(flagAdminTarget); err != nil {
		log.Logger.Error().
			Str("input", flagAdminTarget).
			Err(err).
			Msg("--server: failed to parse")
		return 2
	}

	ctx := mainutil.RootContext()
	cc, err := grpc.DialContext(
		ctx,
		dialTarget(adminConfig),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Logger.Error().
			Str("target", adminConfig.String()).
			Err(err).
			Msg("--server: failed to dial")
		return 1
	}
	defer func() {
		_ = cc.Close()
	}()

	return fn(ctx, grpc_health_v1.NewHealthClient(cc), service)
}

func printHelp() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("mimectl [<flags>] <cmd> [<subsystem>]")
	fmt.Println("Commands available:")
	fmt.Println("\thelp")
	for _, name := range names {
		fmt.Printf("\t%s [<subsystem>]\n", name)
	}
}

func runHealthcheck(ctx context.Context, health grpc_health_v1.HealthClient, service string) int {
	resp, err := health.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		logRPCError("Check", err)
		return 1
	}
	fmt.Printf("%q: %s\n", service, resp.Status)
	if resp.Status != grpc_health_v1.HealthCheckResponse_SERVING {
		return 1
	}
	return 0
}

func runWatch(ctx context.Context, health grpc_health_v1.HealthClient, service string) int {
	stream, err := health.Watch(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		logRPCError("Watch", err)
		return 1
	}
	for {
		resp, err := stream.Recv()
		switch {
		case err == io.EOF:
			return 0
		case status.Code(err) == codes.Canceled:
			return 0
		case err != nil:
			logRPCError("Watch", err)
			return 1
		}
		fmt.Printf("%q: %s\n", service, resp.Status)
	}
}

func logRPCError(method string, err error) {
	log.Logger.Error().
		Str("rpcService", "grpc.health.v1.Health").
		Str("rpcMethod", method).
		Err(err).
		Msg("RPC failed")
}

// dialTarget converts a listen address into a gRPC dial target.
func dialTarget(lc mainutil.ListenConfig) string {
	if constants.IsNetUnix(lc.Network) {
		if lc.Address != "" && lc.Address[0] == '\x00' {
			return "unix-abstract:" + lc.Address[1:]
		}
		return "unix://" + lc.Address
	}
	return "passthrough:///" + lc.Address
}
