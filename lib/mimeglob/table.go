package mimeglob

import (
	"strings"

	radix "github.com/armon/go-radix"
	doublestar "github.com/bmatcuk/doublestar/v4"

	"github.com/chronos-tachyon/xdgmime/lib/mimeutil"
)

// DefaultWeight is the weight of rules that do not declare one.
const DefaultWeight = 50

// MaxWeight is the largest legal weight.
const MaxWeight = 100

// Rule is one glob -> MIME type association.
type Rule struct {
	Pattern string
	Type    string
	Weight  int

	kind Kind
	seq  uint64
	expr string
}

// Kind returns the shape the rule was indexed under.
func (r Rule) Kind() Kind {
	return r.kind
}

// Match describes the rule that won a lookup.
type Match struct {
	Type    string
	Pattern string
	Weight  int
	Kind    Kind
}

// Table holds glob rules indexed by shape.  The zero value is not usable;
// call New.
//
// Table is not thread-safe.  Loading is additive, so the same Table may be
// fed several files in order of decreasing precedence.
type Table struct {
	literals map[string][]*Rule
	suffixes *radix.Tree
	globs    []*Rule
	nextSeq  uint64
}

// New returns an empty Table.
func New() *Table {
	return &Table{
		literals: make(map[string][]*Rule, 64),
		suffixes: radix.New(),
	}
}

// Len returns the number of rules in the table.
func (t *Table) Len() int {
	return int(t.nextSeq)
}

// Add registers one rule.  Rules added earlier win ties against rules with
// the same key and weight that are added later.
func (t *Table) Add(pattern string, mimeType string, weight int) error {
	switch {
	case pattern == "":
		return InvalidGlobError{Glob: pattern, Err: ErrEmptyGlob}
	case strings.IndexByte(pattern, 0) >= 0:
		return InvalidGlobError{Glob: pattern, Err: ErrIllegalGlobChar}
	case !mimeutil.ValidUTF8(pattern):
		return InvalidGlobError{Glob: pattern, Err: ErrBadEncoding}
	case !mimeutil.HasMediaSlash(mimeType) || !mimeutil.ValidUTF8(mimeType):
		return InvalidGlobError{Glob: pattern, Err: ErrBadMimeType}
	case weight < 0 || weight > MaxWeight:
		return InvalidGlobError{Glob: pattern, Err: ErrBadWeight}
	}

	kind := ClassifyPattern(pattern)
	expr, key := pattern, pattern
	if kind == GlobKind && !doublestar.ValidatePattern(pattern) {
		var ok bool
		expr, ok = escapeUnbalanced(pattern)
		if !ok {
			return InvalidGlobError{Glob: pattern, Err: doublestar.ErrBadPattern}
		}
		kind, key = classifyEscaped(expr)
	}

	rule := &Rule{
		Pattern: pattern,
		Type:    mimeType,
		Weight:  weight,
		kind:    kind,
		seq:     t.nextSeq,
		expr:    expr,
	}
	t.nextSeq++

	switch kind {
	case LiteralKind:
		t.literals[key] = insertRule(t.literals[key], rule)

	case SuffixKind:
		key := reverse(key[1:])
		var list []*Rule
		if existing, found := t.suffixes.Get(key); found {
			list = existing.([]*Rule)
		}
		t.suffixes.Insert(key, insertRule(list, rule))

	default:
		t.globs = append(t.globs, rule)
	}
	return nil
}

// BestMatch returns the MIME type for a base name, or false if no rule
// matches.
func (t *Table) BestMatch(name string) (string, bool) {
	m, ok := t.Lookup(name)
	return m.Type, ok
}

// Lookup is BestMatch with details about the winning rule.
//
// Literal rules are tried first, then the longest matching suffix, then
// general globs by weight.  Each stage tries the name as given before trying
// its lowercase form.
func (t *Table) Lookup(name string) (Match, bool) {
	if name == "" {
		return Match{}, false
	}

	lower := strings.ToLower(name)
	candidates := []string{name}
	if lower != name {
		candidates = append(candidates, lower)
	}

	for _, candidate := range candidates {
		if list := t.literals[candidate]; len(list) != 0 {
			return makeMatch(list[0]), true
		}
	}

	for _, candidate := range candidates {
		if _, value, found := t.suffixes.LongestPrefix(reverse(candidate)); found {
			return makeMatch(value.([]*Rule)[0]), true
		}
	}

	for _, candidate := range candidates {
		if rule := t.bestGlob(candidate); rule != nil {
			return makeMatch(rule), true
		}
	}

	return Match{}, false
}

// Rules returns a copy of every rule in registration order.
func (t *Table) Rules() []Rule {
	out := make([]Rule, t.nextSeq)
	visit := func(list []*Rule) {
		for _, rule := range list {
			out[rule.seq] = *rule
		}
	}
	for _, list := range t.literals {
		visit(list)
	}
	t.suffixes.Walk(func(_ string, value interface{}) bool {
		visit(value.([]*Rule))
		return false
	})
	visit(t.globs)
	return out
}

func (t *Table) bestGlob(name string) *Rule {
	var best *Rule
	for _, rule := range t.globs {
		if best != nil && rule.Weight <= best.Weight {
			continue
		}
		if ok, _ := doublestar.Match(rule.expr, name); ok {
			best = rule
		}
	}
	return best
}

// insertRule keeps list ordered by weight descending, then registration
// order ascending.
func insertRule(list []*Rule, rule *Rule) []*Rule {
	index := len(list)
	for i, existing := range list {
		if existing.Weight < rule.Weight {
			index = i
			break
		}
	}
	list = append(list, nil)
	copy(list[index+1:], list[index:])
	list[index] = rule
	return list
}

func makeMatch(rule *Rule) Match {
	return Match{
		Type:    rule.Type,
		Pattern: rule.Pattern,
		Weight:  rule.Weight,
		Kind:    rule.kind,
	}
}

// escapeUnbalanced rewrites a pattern that doublestar rejects so that it
// means what fnmatch(3) would make of it: brackets and braces without a
// partner, and a trailing backslash, match themselves.  Braces are tried
// first, then brackets.
func escapeUnbalanced(pattern string) (string, bool) {
	for _, specials := range []string{`{}`, `{}[]`} {
		expr := escapeChars(pattern, specials)
		if doublestar.ValidatePattern(expr) {
			return expr, true
		}
	}
	return "", false
}

func escapeChars(pattern string, specials string) string {
	var buf strings.Builder
	buf.Grow(len(pattern) + 4)
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '\\' && i+1 < len(pattern):
			buf.WriteByte(ch)
			i++
			buf.WriteByte(pattern[i])
			continue
		case ch == '\\':
			buf.WriteByte('\\')
		case strings.IndexByte(specials, ch) >= 0:
			buf.WriteByte('\\')
		}
		buf.WriteByte(ch)
	}
	return buf.String()
}

// classifyEscaped indexes an escaped pattern as a literal or suffix rule
// when its only wildcard is a leading '*'.  The key is unescaped.
func classifyEscaped(expr string) (Kind, string) {
	if lit, ok := unescapeLiteral(expr); ok {
		return LiteralKind, lit
	}
	if expr[0] == '*' {
		if lit, ok := unescapeLiteral(expr[1:]); ok && lit != "" {
			return SuffixKind, "*" + lit
		}
	}
	return GlobKind, expr
}

func unescapeLiteral(expr string) (string, bool) {
	var buf strings.Builder
	for i := 0; i < len(expr); i++ {
		ch := expr[i]
		switch {
		case ch == '\\' && i+1 < len(expr):
			i++
			buf.WriteByte(expr[i])
		case strings.IndexByte(`*?[{`, ch) >= 0:
			return "", false
		default:
			buf.WriteByte(ch)
		}
	}
	return buf.String(), true
}

func reverse(str string) string {
	n := len(str)
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		buf[n-1-i] = str[i]
	}
	return string(buf)
}
