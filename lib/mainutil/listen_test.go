package mainutil

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
)

func TestListenConfig_Parse(t *testing.T) {
	type testRow struct {
		name    string
		input   string
		network string
		address string
		enabled bool
		str     string
	}

	testData := [...]testRow{
		{"empty", "", "", "", false, ""},
		{"tcp", "localhost:8080", "tcp", "localhost:8080", true, "localhost:8080"},
		{"tcp-port-only", ":8080", "tcp", ":8080", true, ":8080"},
		{"unix-path", "/run/mimed.sock", "unix", "/run/mimed.sock", true, "/run/mimed.sock"},
		{"abstract", "@mimed", "unix", "\x00mimed", true, "@mimed"},
		{"explicit-tcp6", "[::1]:80;net=tcp6", "tcp6", "[::1]:80", true, "[::1]:80;net=tcp6"},
		{"unixgram", "/run/x.sock;net=unixgram", "unixgram", "/run/x.sock", true, "/run/x.sock;net=unixgram"},
	}

	for _, row := range testData {
		t.Run(row.name, func(t *testing.T) {
			var lc ListenConfig
			if err := lc.Parse(row.input); err != nil {
				t.Fatalf("Parse: unexpected error: %v", err)
			}
			if lc.Enabled != row.enabled {
				t.Errorf("Enabled: expected %v, got %v", row.enabled, lc.Enabled)
			}
			if lc.Network != row.network {
				t.Errorf("Network: expected %q, got %q", row.network, lc.Network)
			}
			if lc.Address != row.address {
				t.Errorf("Address: expected %q, got %q", row.address, lc.Address)
			}
			if str := lc.String(); str != row.str {
				t.Errorf("String: expected %q, got %q", row.str, str)
			}
		})
	}
}

func TestListenConfig_ParseErrors(t *testing.T) {
	var lc ListenConfig

	err := lc.Parse("localhost:80;bogus=1")
	var optErr OptionError
	if !errors.As(err, &optErr) {
		t.Fatalf("expected OptionError, got %#v", err)
	}
	if optErr.Name != "bogus" {
		t.Errorf("Name: expected %q, got %q", "bogus", optErr.Name)
	}
	if !errors.As(err, &UnknownOptionError{}) {
		t.Errorf("expected UnknownOptionError in chain, got %v", err)
	}

	if err := lc.Parse("localhost:80;noequals"); err == nil {
		t.Errorf("expected error for option without '='")
	}
	if err := lc.Parse(";net=tcp"); err == nil {
		t.Errorf("expected error for empty address")
	}
}

func TestListenConfig_JSON(t *testing.T) {
	type testRow struct {
		name    string
		input   string
		network string
		address string
		enabled bool
	}

	testData := [...]testRow{
		{"null", `null`, "", "", false},
		{"string", `"localhost:9000"`, "tcp", "localhost:9000", true},
		{"object", `{"network":"tcp4","address":"127.0.0.1:9000"}`, "tcp4", "127.0.0.1:9000", true},
		{"object-unix", `{"address":"/tmp/m.sock"}`, "unix", "/tmp/m.sock", true},
	}

	for _, row := range testData {
		t.Run(row.name, func(t *testing.T) {
			var lc ListenConfig
			if err := json.Unmarshal([]byte(row.input), &lc); err != nil {
				t.Fatalf("Unmarshal: unexpected error: %v", err)
			}
			if lc.Enabled != row.enabled || lc.Network != row.network || lc.Address != row.address {
				t.Errorf("expected {%v %q %q}, got {%v %q %q}", row.enabled, row.network, row.address, lc.Enabled, lc.Network, lc.Address)
			}

			raw, err := json.Marshal(lc)
			if err != nil {
				t.Fatalf("Marshal: unexpected error: %v", err)
			}
			var again ListenConfig
			if err := json.Unmarshal(raw, &again); err != nil {
				t.Fatalf("Unmarshal(%s): unexpected error: %v", raw, err)
			}
			if again != lc {
				t.Errorf("round trip: expected %#v, got %#v", lc, again)
			}
		})
	}

	var lc ListenConfig
	if err := json.Unmarshal([]byte(`{"address":"x:1","extra":true}`), &lc); err == nil {
		t.Errorf("expected error for unknown field")
	}
}

func TestListenConfig_Listen(t *testing.T) {
	var lc ListenConfig
	if err := lc.Parse("127.0.0.1:0"); err != nil {
		t.Fatalf("Parse: unexpected error: %v", err)
	}
	l, err := lc.Listen(context.Background())
	if err != nil {
		t.Skipf("cannot listen on loopback: %v", err)
	}
	if l.Addr().Network() != "tcp" {
		t.Errorf("expected tcp listener, got %q", l.Addr().Network())
	}
	_ = l.Close()

	dummy, err := ListenConfig{}.Listen(context.Background())
	if err != nil {
		t.Fatalf("disabled Listen: unexpected error: %v", err)
	}
	errCh := make(chan error, 1)
	go func() {
		_, err := dummy.Accept()
		errCh <- err
	}()
	_ = dummy.Close()
	if err := <-errCh; !errors.Is(err, net.ErrClosed) {
		t.Errorf("Accept: expected net.ErrClosed, got %v", err)
	}
}
