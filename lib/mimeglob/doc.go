// Package mimeglob implements the filename half of MIME type detection: a
// table of shell-glob rules, loaded from freedesktop "globs" files, that
// maps a base name to a MIME type.
//
// Rules come in three shapes.  A literal rule ("Makefile") matches a whole
// name exactly.  A suffix rule ("*.tar.gz", "*~") is a '*' followed by a
// literal.  Anything else is a general glob evaluated with doublestar.
// Brackets or braces that doublestar cannot pair are taken literally, as
// fnmatch(3) would.
// Literal rules beat suffix rules, longer suffixes beat shorter ones, and
// general globs are only consulted when nothing else matched.
//
package mimeglob
