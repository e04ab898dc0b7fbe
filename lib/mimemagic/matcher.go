package mimemagic

import (
	"sort"

	"github.com/chronos-tachyon/xdgmime/lib/mimeutil"
)

// Match describes the rule that won a lookup.
type Match struct {
	Type        string
	Priority    int
	Specificity int
}

type rule struct {
	mimeType  string
	priority  int
	matchlets []matchlet
}

// Matcher holds magic rules ordered for lookup.  The zero value is not
// usable; call New.
//
// Matcher is not thread-safe for writes.  Once loading is finished, any
// number of goroutines may call Lookup concurrently.
type Matcher struct {
	semantics Semantics
	rules     []*rule
	extent    int
}

// New returns an empty Matcher that evaluates rules with the given
// semantics.
func New(semantics Semantics) *Matcher {
	return &Matcher{semantics: semantics}
}

// Semantics returns the evaluation mode chosen at construction.
func (m *Matcher) Semantics() Semantics {
	return m.semantics
}

// Len returns the number of rules loaded.
func (m *Matcher) Len() int {
	return len(m.rules)
}

// RequiredBufferSize returns how many leading bytes of a file are needed to
// evaluate every loaded rule.
func (m *Matcher) RequiredBufferSize() int {
	return m.extent
}

// Types returns the MIME type of each rule in lookup order.
func (m *Matcher) Types() []string {
	out := make([]string, len(m.rules))
	for i, r := range m.rules {
		out[i] = r.mimeType
	}
	return out
}

// AddRule compiles r and inserts it in lookup order.  The rule's slices are
// copied, so the caller may reuse them.
func (m *Matcher) AddRule(r Rule) error {
	switch {
	case !mimeutil.HasMediaSlash(r.Type) || !mimeutil.ValidUTF8(r.Type):
		return InvalidRuleError{Type: r.Type, Err: ErrBadMimeType}
	case r.Priority < 0 || r.Priority > MaxPriority:
		return InvalidRuleError{Type: r.Type, Err: ErrBadPriority}
	case len(r.Matchlets) == 0:
		return InvalidRuleError{Type: r.Type, Err: ErrNoMatchlets}
	}

	matchlets, err := compileMatchlets(r.Matchlets, 0)
	if err != nil {
		return InvalidRuleError{Type: r.Type, Err: err}
	}

	compiled := &rule{
		mimeType:  r.Type,
		priority:  r.Priority,
		matchlets: matchlets,
	}

	// Descending priority, then ascending type; equal keys keep insertion
	// order.
	index := sort.Search(len(m.rules), func(i int) bool {
		other := m.rules[i]
		if other.priority != compiled.priority {
			return other.priority < compiled.priority
		}
		return other.mimeType > compiled.mimeType
	})
	m.rules = append(m.rules, nil)
	copy(m.rules[index+1:], m.rules[index:])
	m.rules[index] = compiled

	for i := range matchlets {
		if x := matchlets[i].extent(0, m.semantics); x > m.extent {
			m.extent = x
		}
	}
	return nil
}

// Lookup returns the MIME type of the best rule matching buf, or false if
// none does.  An empty buffer never matches.
func (m *Matcher) Lookup(buf []byte) (string, bool) {
	match, ok := m.LookupMatch(buf)
	return match.Type, ok
}

// LookupMatch is Lookup with details about the winning rule.
func (m *Matcher) LookupMatch(buf []byte) (Match, bool) {
	var best Match
	found := false

	if len(buf) == 0 {
		return best, false
	}

	for _, r := range m.rules {
		if found && r.priority < best.Priority {
			break
		}
		specificity, ok := r.match(buf, m.semantics)
		if !ok {
			continue
		}
		if !found || specificity > best.Specificity {
			best = Match{
				Type:        r.mimeType,
				Priority:    r.priority,
				Specificity: specificity,
			}
			found = true
		}
	}
	return best, found
}

func (r *rule) match(buf []byte, semantics Semantics) (int, bool) {
	if semantics == Freedesktop {
		best := 0
		for i := range r.matchlets {
			if depth := r.matchlets[i].matchAny(buf); depth > best {
				best = depth
			}
		}
		return best, best > 0
	}

	specificity := 0
	for i := range r.matchlets {
		ml := &r.matchlets[i]
		if !ml.matchAll(buf, 0) {
			return 0, false
		}
		specificity += ml.size
	}
	return specificity, true
}
