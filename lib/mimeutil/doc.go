// Package mimeutil provides the small leaf utilities shared by the rest of
// xdgmime: byte-order aware integer reads, UTF-8 validation, base name
// extraction, and path expansion for command-line flags.
//
package mimeutil
