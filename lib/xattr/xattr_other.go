//go:build !linux

package xattr

// Get always fails with ErrNotSupported on this platform.
func Get(path string) (string, error) {
	return "", AttrError{Op: "get", Path: path, Err: ErrNotSupported}
}

// Set always fails with ErrNotSupported on this platform.
func Set(path string, mimeType string) error {
	return AttrError{Op: "set", Path: path, Err: ErrNotSupported}
}

// Remove always fails with ErrNotSupported on this platform.
func Remove(path string) error {
	return AttrError{Op: "remove", Path: path, Err: ErrNotSupported}
}
