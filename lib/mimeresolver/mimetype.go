package mimeresolver

import (
	"github.com/chronos-tachyon/xdgmime/internal/constants"
	"github.com/chronos-tachyon/xdgmime/lib/mimeutil"
)

// MimeType is a type/subtype string such as "text/plain".
type MimeType string

// Unknown is returned whenever nothing better is known.
const Unknown = MimeType(constants.TypeUnknown)

// Well-known types returned by TypeForPath for things that are not regular
// files.
const (
	InodeDirectory   = MimeType(constants.TypeInodeDirectory)
	InodeFifo        = MimeType(constants.TypeInodeFifo)
	InodeSocket      = MimeType(constants.TypeInodeSocket)
	InodeBlockDevice = MimeType(constants.TypeInodeBlockDevice)
	InodeCharDevice  = MimeType(constants.TypeInodeCharDevice)
	InodeUnknown     = MimeType(constants.TypeInodeUnknown)
)

// String returns the type as a plain string.
func (t MimeType) String() string {
	return string(t)
}

// IsUnknown returns true iff t is Unknown.
func (t MimeType) IsUnknown() bool {
	return t == Unknown
}

// IsValidMimeType reports whether s is well-formed UTF-8.  It does not
// consult any registry of known types.
func IsValidMimeType(s string) bool {
	return mimeutil.IsValidMimeType(s)
}
