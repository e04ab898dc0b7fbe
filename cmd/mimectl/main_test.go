package main

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/chronos-tachyon/xdgmime/lib/mainutil"
)

func TestDialTarget(t *testing.T) {
	type testRow struct {
		input  string
		output string
	}

	testData := [...]testRow{
		{"/run/mimed/admin.socket", "unix:///run/mimed/admin.socket"},
		{"@mimed", "unix-abstract:mimed"},
		{"localhost:6882", "passthrough:///localhost:6882"},
	}

	for _, row := range testData {
		t.Run(row.input, func(t *testing.T) {
			var lc mainutil.ListenConfig
			if err := lc.Parse(row.input); err != nil {
				t.Fatalf("Parse: unexpected error: %v", err)
			}
			if actual := dialTarget(lc); actual != row.output {
				t.Errorf("expected %q, got %q", row.output, actual)
			}
		})
	}
}

func startHealthServer(t *testing.T, ms *mainutil.MultiServer) grpc_health_v1.HealthClient {
	t.Helper()

	lis := bufconn.Listen(1 << 16)
	srv := grpc.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, ms.HealthServer())
	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	cc, err := grpc.DialContext(
		context.Background(),
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("DialContext: unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = cc.Close() })
	return grpc_health_v1.NewHealthClient(cc)
}

func TestRunHealthcheck(t *testing.T) {
	var ms mainutil.MultiServer
	ms.SetHealth("", true)
	ms.SetHealth("http", false)
	health := startHealthServer(t, &ms)
	ctx := context.Background()

	if code := runHealthcheck(ctx, health, ""); code != 0 {
		t.Errorf("healthy: expected exit 0, got %d", code)
	}
	if code := runHealthcheck(ctx, health, "http"); code != 1 {
		t.Errorf("unhealthy: expected exit 1, got %d", code)
	}
	if code := runHealthcheck(ctx, health, "bogus"); code != 1 {
		t.Errorf("unknown: expected exit 1, got %d", code)
	}
}

func TestRunWatch_Canceled(t *testing.T) {
	var ms mainutil.MultiServer
	ms.SetHealth("", true)
	health := startHealthServer(t, &ms)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan int, 1)
	go func() {
		done <- runWatch(ctx, health, "")
	}()

	time.Sleep(50 * time.Millisecond)
	ms.SetHealth("", false)
	cancel()

	select {
	case code := <-done:
		if code != 0 {
			t.Errorf("expected exit 0 after cancel, got %d", code)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runWatch did not return after cancel")
	}
}

func TestRun_BadArgs(t *testing.T) {
	mainutil.InitContext()
	if code := run([]string{"frobnicate"}); code != 2 {
		t.Errorf("unknown command: expected exit 2, got %d", code)
	}
	mainutil.InitContext()
	if code := run([]string{"healthcheck", "a", "b"}); code != 2 {
		t.Errorf("too many args: expected exit 2, got %d", code)
	}
}
