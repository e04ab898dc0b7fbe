// Package mainutil holds the main() plumbing shared by the xdgmime
// binaries.  The logging and version flags, listener parsing and the
// MultiServer lifecycle all live here.
package mainutil
