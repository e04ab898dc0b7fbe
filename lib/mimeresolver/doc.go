// Package mimeresolver answers "what MIME type is this?" for file names,
// byte buffers and paths, using freedesktop.org shared-mime-info rule files
// found along the XDG data directories.
//
// A Resolver loads lazily on first use.  Afterwards, at most once per
// Options.MinRecheckInterval, it re-stats the rule files it was built from
// and rebuilds everything if any of them changed.  Lookups never return
// errors: anything that cannot be classified is Unknown.
package mimeresolver
