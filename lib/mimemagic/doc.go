// Package mimemagic implements content sniffing from freedesktop "magic"
// rule files.
//
// A Rule names a MIME type, a priority from 0 to 100, and a tree of
// Matchlets.  Each Matchlet compares a (possibly masked) byte string
// against the buffer at one of several candidate offsets.  How the tree is
// combined is chosen by Semantics:
//
//	Conjunctive   every top-level matchlet and every child must match;
//	              children are anchored just past their parent's match.
//	Freedesktop   any top-level matchlet may match; a matchlet with
//	              children also needs one matching child; all offsets are
//	              absolute.  This is what shared-mime-info databases expect.
//
// Lookups walk rules by descending priority.  Among matches at the same
// priority, the more specific rule wins, then the lexically smaller type.
//
package mimemagic
