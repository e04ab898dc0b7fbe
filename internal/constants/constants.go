package constants

// Various constants.
const (
	// EnvDataHome et al are the environment variables consulted when
	// building the rule search path.
	EnvDataHome = "XDG_DATA_HOME"
	EnvDataDirs = "XDG_DATA_DIRS"
	EnvHome     = "HOME"

	// DefaultDataHomeSuffix is joined onto $HOME when $XDG_DATA_HOME is unset.
	DefaultDataHomeSuffix = ".local/share"

	// DefaultDataDirs is used when $XDG_DATA_DIRS is unset.
	DefaultDataDirs = "/usr/local/share/:/usr/share/"

	// GlobsFile and MagicFile are the rule files read from each search
	// directory, relative to that directory.
	GlobsFile = "mime/globs"
	MagicFile = "mime/magic"
	MimeDir   = "mime"

	// XattrMimeType is the extended attribute that overrides detection.
	XattrMimeType = "user.mime_type"

	// TypeUnknown et al are well-known MIME types.
	TypeUnknown          = "application/octet-stream"
	TypeInodeDirectory   = "inode/directory"
	TypeInodeFifo        = "inode/fifo"
	TypeInodeSocket      = "inode/socket"
	TypeInodeBlockDevice = "inode/blockdevice"
	TypeInodeCharDevice  = "inode/chardevice"
	TypeInodeUnknown     = "inode/unknown"

	// NetTCP et al are networks for net.Listen() and friends.
	NetTCP      = "tcp"
	NetUnix     = "unix"
	NetUnixgram = "unixgram"

	// SubsystemAdmin et al are server subsystem names.
	SubsystemAdmin = "admin"
	SubsystemProm  = "prom"
	SubsystemHTTP  = "http"

	// HeaderXID et al are HTTP header names.
	HeaderXID         = "X-ID"
	HeaderServer      = "Server"
	HeaderContentType = "Content-Type"
	HeaderXCTO        = "X-Content-Type-Options"
	HeaderAllow       = "Allow"

	// ContentTypeJSON is the Content-Type of mimed responses.
	ContentTypeJSON = "application/json; charset=utf-8"
)

// IsNetUnix returns true iff its argument is an AF_UNIX network.
func IsNetUnix(str string) bool {
	switch str {
	case NetUnix:
		return true
	case NetUnixgram:
		return true
	default:
		return false
	}
}
