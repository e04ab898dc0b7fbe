package mimemagic

import (
	"github.com/chronos-tachyon/xdgmime/lib/mimeutil"
)

// Matchlet is one byte comparison in a rule's tree.
//
// The comparison is tried at every position from Offset to
// Offset+RangeLength-1.  Value and Mask are given in file order: for
// WordSize 2 or 4 they hold big-endian words, which are compared against
// the buffer in host byte order.
type Matchlet struct {
	Offset      int
	RangeLength int
	Value       []byte
	Mask        []byte
	WordSize    int
	Children    []Matchlet
}

// Rule is one MIME type's magic.
type Rule struct {
	Type      string
	Priority  int
	Matchlets []Matchlet
}

// DefaultPriority is the priority of rules that do not declare one.
const DefaultPriority = 50

// MaxPriority is the largest legal priority.
const MaxPriority = 100

// MaxExtent bounds how far into a file any matchlet may look, counting
// nested offsets and ranges.  Rules reaching further are rejected with
// ErrOffsetOutOfRange.
const MaxExtent = 1 << 20

// compiled form: private copies with words already in host order.
type matchlet struct {
	offset      int
	rangeLength int
	value       []byte
	mask        []byte
	children    []matchlet
	size        int
}

// compileMatchlets compiles one level of the tree.  base is the furthest
// position the parent's match can end at, or zero at the top level.
func compileMatchlets(in []Matchlet, base int) ([]matchlet, error) {
	out := make([]matchlet, len(in))
	for i := range in {
		if err := compileMatchlet(&out[i], &in[i], base); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func compileMatchlet(out *matchlet, in *Matchlet, base int) error {
	if in.Offset < 0 || in.Offset > MaxExtent {
		return ErrOffsetOutOfRange
	}
	if len(in.Value) == 0 {
		return ErrBadValue
	}
	if len(in.Value) > MaxExtent {
		return ErrOffsetOutOfRange
	}
	if in.Mask != nil && len(in.Mask) != len(in.Value) {
		return ErrBadMask
	}

	switch in.WordSize {
	case 0, 1:
		// pass
	case 2, 4:
		if len(in.Value)%in.WordSize != 0 {
			return ErrBadWordSize
		}
	default:
		return ErrBadWordSize
	}

	rangeLength := in.RangeLength
	if rangeLength == 0 {
		rangeLength = 1
	}
	if rangeLength < 0 {
		return ErrBadRange
	}
	if rangeLength > MaxExtent {
		return ErrOffsetOutOfRange
	}

	// Every term is at most MaxExtent, so this cannot overflow.
	end := base + in.Offset + rangeLength - 1 + len(in.Value)
	if end > MaxExtent {
		return ErrOffsetOutOfRange
	}

	value := append([]byte(nil), in.Value...)
	if err := mimeutil.BigEndian.ConvertWords(mimeutil.Host, value, in.WordSize); err != nil {
		return ErrBadWordSize
	}

	var mask []byte
	if in.Mask != nil {
		mask = append([]byte(nil), in.Mask...)
		if err := mimeutil.BigEndian.ConvertWords(mimeutil.Host, mask, in.WordSize); err != nil {
			return ErrBadWordSize
		}
	}

	children, err := compileMatchlets(in.Children, end)
	if err != nil {
		return err
	}

	size := 1
	for i := range children {
		size += children[i].size
	}

	*out = matchlet{
		offset:      in.Offset,
		rangeLength: rangeLength,
		value:       value,
		mask:        mask,
		children:    children,
		size:        size,
	}
	return nil
}

// compareAt reports whether the value matches buf at exactly pos.
func (ml *matchlet) compareAt(buf []byte, pos int) bool {
	n := len(ml.value)
	if pos < 0 || n > len(buf) || pos > len(buf)-n {
		return false
	}
	window := buf[pos : pos+n]
	if ml.mask == nil {
		for i := 0; i < n; i++ {
			if window[i] != ml.value[i] {
				return false
			}
		}
		return true
	}
	for i := 0; i < n; i++ {
		if window[i]&ml.mask[i] != ml.value[i]&ml.mask[i] {
			return false
		}
	}
	return true
}

// matchAll is the Conjunctive evaluation.  base is where Offset counts
// from: zero at the top level, the parent's match end below it.
func (ml *matchlet) matchAll(buf []byte, base int) bool {
	start := base + ml.offset
	for i := 0; i < ml.rangeLength; i++ {
		pos := start + i
		if pos > len(buf)-len(ml.value) {
			return false
		}
		if !ml.compareAt(buf, pos) {
			continue
		}
		end := pos + len(ml.value)
		ok := true
		for j := range ml.children {
			if !ml.children[j].matchAll(buf, end) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// matchAny is the Freedesktop evaluation.  It returns the depth of the
// deepest matching chain rooted here, or 0.
func (ml *matchlet) matchAny(buf []byte) int {
	found := false
	for i := 0; i < ml.rangeLength; i++ {
		pos := ml.offset + i
		if pos > len(buf)-len(ml.value) {
			break
		}
		if ml.compareAt(buf, pos) {
			found = true
			break
		}
	}
	if !found {
		return 0
	}
	if len(ml.children) == 0 {
		return 1
	}

	best := 0
	for j := range ml.children {
		if depth := ml.children[j].matchAny(buf); depth > best {
			best = depth
		}
	}
	if best == 0 {
		return 0
	}
	return 1 + best
}

// extent returns one past the furthest byte this subtree can inspect.
func (ml *matchlet) extent(base int, semantics Semantics) int {
	end := base + ml.offset + ml.rangeLength - 1 + len(ml.value)
	max := end
	for j := range ml.children {
		childBase := 0
		if semantics == Conjunctive {
			childBase = end
		}
		if x := ml.children[j].extent(childBase, semantics); x > max {
			max = x
		}
	}
	return max
}
