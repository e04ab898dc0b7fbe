//go:build linux

package xattr

import (
	"errors"

	"golang.org/x/sys/unix"
)

// Get returns the value of the attribute on path.  Symlinks are followed.
func Get(path string) (string, error) {
	var buf [256]byte
	for {
		n, err := unix.Getxattr(path, Name, buf[:])
		if err == nil {
			return string(buf[:n]), nil
		}
		if !errors.Is(err, unix.ERANGE) {
			return "", AttrError{Op: "get", Path: path, Err: mapErrno(err)}
		}
		// Value longer than buf; ask for its size and retry.
		size, err := unix.Getxattr(path, Name, nil)
		if err != nil {
			return "", AttrError{Op: "get", Path: path, Err: mapErrno(err)}
		}
		big := make([]byte, size)
		n, err = unix.Getxattr(path, Name, big)
		if err == nil {
			return string(big[:n]), nil
		}
		if !errors.Is(err, unix.ERANGE) {
			return "", AttrError{Op: "get", Path: path, Err: mapErrno(err)}
		}
	}
}

// Set stores mimeType as the attribute on path.
func Set(path string, mimeType string) error {
	if err := unix.Setxattr(path, Name, []byte(mimeType), 0); err != nil {
		return AttrError{Op: "set", Path: path, Err: mapErrno(err)}
	}
	return nil
}

// Remove deletes the attribute from path.
func Remove(path string) error {
	if err := unix.Removexattr(path, Name); err != nil {
		return AttrError{Op: "remove", Path: path, Err: mapErrno(err)}
	}
	return nil
}

func mapErrno(err error) error {
	switch {
	case errors.Is(err, unix.ENOTSUP):
		return ErrNotSupported
	case errors.Is(err, unix.ENODATA):
		return ErrNoAttribute
	default:
		return err
	}
}
