package mainutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"

	"github.com/chronos-tachyon/xdgmime/internal/constants"
	"github.com/chronos-tachyon/xdgmime/internal/misc"
	"github.com/chronos-tachyon/xdgmime/lib/mimeutil"
)

// ListenConfig describes one listening socket.
//
// The string form is "<address>[;net=<network>]".  An address that starts
// with '/' is a Unix socket path, one that starts with '@' is a Linux
// abstract socket, and anything else is a TCP host:port unless net= says
// otherwise.  The empty string disables the listener.
type ListenConfig struct {
	Enabled bool
	Network string
	Address string
}

type lcJSON struct {
	Network string `json:"network"`
	Address string `json:"address"`
}

// String returns the string form, or "" if disabled.
func (lc ListenConfig) String() string {
	if !lc.Enabled {
		return ""
	}
	var buf strings.Builder
	buf.WriteString(escapeListenAddress(lc.Address))
	if lc.Network != constants.NetTCP && lc.Network != constants.NetUnix {
		buf.WriteString(";net=")
		buf.WriteString(lc.Network)
	}
	return buf.String()
}

// MarshalJSON fulfills json.Marshaler.
func (lc ListenConfig) MarshalJSON() ([]byte, error) {
	if !lc.Enabled {
		return []byte("null"), nil
	}
	return json.Marshal(lcJSON{
		Network: lc.Network,
		Address: escapeListenAddress(lc.Address),
	})
}

// UnmarshalJSON fulfills json.Unmarshaler.  Both the object form and the
// string form are accepted.
func (lc *ListenConfig) UnmarshalJSON(raw []byte) error {
	*lc = ListenConfig{}

	if bytes.Equal(raw, []byte("null")) {
		return nil
	}

	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return lc.Parse(str)
	}

	var alt lcJSON
	if err := misc.StrictUnmarshalJSON(raw, &alt); err != nil {
		return err
	}

	tmp, err := ListenConfig{
		Enabled: true,
		Network: alt.Network,
		Address: alt.Address,
	}.postprocess()
	if err != nil {
		return err
	}
	*lc = tmp
	return nil
}

// Parse parses the string form.
func (lc *ListenConfig) Parse(str string) error {
	*lc = ListenConfig{}

	if str == "" {
		return nil
	}

	pieces := strings.Split(str, ";")

	tmp := ListenConfig{Enabled: true, Address: pieces[0]}
	for _, item := range pieces[1:] {
		i := strings.IndexByte(item, '=')
		if i < 0 {
			return OptionError{Name: item, Err: UnknownOptionError{}}
		}
		name, value := item[:i], item[i+1:]
		switch name {
		case "net", "network":
			tmp.Network = value
		default:
			return OptionError{Name: name, Value: value, Complete: true, Err: UnknownOptionError{}}
		}
	}

	tmp, err := tmp.postprocess()
	if err != nil {
		return err
	}
	*lc = tmp
	return nil
}

// Listen opens the socket.  A disabled ListenConfig yields a listener that
// never accepts anything.
func (lc ListenConfig) Listen(ctx context.Context) (net.Listener, error) {
	if !lc.Enabled {
		return newDummyListener(), nil
	}
	var cfg net.ListenConfig
	return cfg.Listen(ctx, lc.Network, lc.Address)
}

func (lc ListenConfig) postprocess() (ListenConfig, error) {
	if lc.Address == "" {
		return ListenConfig{}, fmt.Errorf("invalid address %q: must not be empty", lc.Address)
	}

	maybeUnix := (lc.Network == "") || constants.IsNetUnix(lc.Network)
	if maybeUnix {
		switch {
		case lc.Address[0] == '/' || lc.Address[0] == '\x00':
			// already absolute

		case lc.Address[0] == '@':
			lc.Address = unescapeListenAddress(lc.Address)

		case lc.Network != "" || strings.Contains(lc.Address, "/"):
			abs, err := mimeutil.ExpandPath(lc.Address)
			if err != nil {
				return ListenConfig{}, err
			}
			lc.Address = abs

		default:
			maybeUnix = false
		}
		if maybeUnix && lc.Network == "" {
			lc.Network = constants.NetUnix
		}
	}

	if lc.Network == "" {
		lc.Network = constants.NetTCP
	}
	return lc, nil
}

func escapeListenAddress(addr string) string {
	if addr != "" && addr[0] == '\x00' {
		return "@" + addr[1:]
	}
	return addr
}

func unescapeListenAddress(addr string) string {
	if addr != "" && addr[0] == '@' {
		return "\x00" + addr[1:]
	}
	return addr
}

// type dummyListener {{{

type dummyListener struct {
	ch chan struct{}
}

func newDummyListener() net.Listener {
	return dummyListener{ch: make(chan struct{})}
}

func (l dummyListener) Addr() net.Addr {
	return &net.TCPAddr{
		IP:   net.ParseIP("127.0.0.1"),
		Port: 0,
	}
}

func (l dummyListener) Accept() (net.Conn, error) {
	<-l.ch
	return nil, net.ErrClosed
}

func (l dummyListener) Close() error {
	close(l.ch)
	return nil
}

var _ net.Listener = dummyListener{}

// }}}
