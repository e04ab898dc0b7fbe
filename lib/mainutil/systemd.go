package mainutil

import (
	"net"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/chronos-tachyon/xdgmime/internal/constants"
)

// sdNotify reports a state change to systemd, if $NOTIFY_SOCKET names a
// socket.  See sd_notify(3).  Failures are logged and otherwise ignored.
func sdNotify(state string) {
	socketName := os.Getenv("NOTIFY_SOCKET")
	if socketName == "" {
		return
	}

	addr := &net.UnixAddr{Net: constants.NetUnixgram, Name: socketName}
	if socketName[0] == '@' {
		addr.Name = "\x00" + socketName[1:]
	}

	op := "Dial"
	conn, err := net.DialUnix(addr.Net, nil, addr)
	if err == nil {
		op = "Write"
		_, err = conn.Write([]byte(state))
		_ = conn.Close()
	}

	if err != nil {
		log.Logger.Warn().
			Str("socket", socketName).
			Str("state", state).
			Err(err).
			Msg("sdNotify: failed to " + op)
		return
	}

	log.Logger.Trace().
		Str("socket", socketName).
		Str("state", state).
		Msg("sdNotify: sent")
}
