package mimeutil

import (
	"strings"
	"unicode/utf8"
)

// ValidUTF8 reports whether s is well-formed UTF-8.  Overlong encodings,
// surrogate halves and truncated sequences are all rejected.
func ValidUTF8(s string) bool {
	return utf8.ValidString(s)
}

// BaseName returns everything after the last '/' in path.  It touches no
// filesystem and does not strip trailing slashes, so "a/b/" yields "".
func BaseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// IsValidMimeType reports whether s could name a MIME type.  Only UTF-8
// well-formedness is checked; there is no registry of known types.
func IsValidMimeType(s string) bool {
	return ValidUTF8(s)
}

// HasMediaSlash returns true iff s looks like "media/subtype": a non-empty
// media part, one '/', and a non-empty subtype.
func HasMediaSlash(s string) bool {
	i := strings.IndexByte(s, '/')
	return i > 0 && i < len(s)-1 && strings.IndexByte(s[i+1:], '/') < 0
}
