// Package xattr reads and writes the "user.mime_type" extended attribute,
// which overrides content detection for a single file.
package xattr

import (
	"fmt"

	"github.com/chronos-tachyon/xdgmime/internal/constants"
)

// Name is the extended attribute holding a file's MIME type.
const Name = constants.XattrMimeType

// ErrNotSupported et al are returned by Get and Set.
var (
	ErrNotSupported = xattrError("extended attributes are not supported here")
	ErrNoAttribute  = xattrError("no " + Name + " attribute")
)

// type xattrError {{{

type xattrError string

// Error fulfills the error interface.
func (err xattrError) Error() string {
	return string(err)
}

var _ error = xattrError("")

// }}}

// type AttrError {{{

// AttrError wraps a failed attribute operation with its path.
type AttrError struct {
	Op   string
	Path string
	Err  error
}

// Error fulfills the error interface.
func (err AttrError) Error() string {
	return fmt.Sprintf("%s %s %q: %v", err.Op, Name, err.Path, err.Err)
}

// Unwrap returns the underlying cause of this error.
func (err AttrError) Unwrap() error {
	return err.Err
}

var _ error = AttrError{}

// }}}
