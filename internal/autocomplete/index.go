// Package autocomplete implements the in-memory name store and lookup index
// behind /pal name suggestions.
//
// An [Index] is built once at startup from the full Paldeck name list and is
// never mutated afterwards, so any number of interaction handlers may query
// it concurrently without locking. Refreshing the list means building a new
// Index and swapping the reference, not mutating in place.
//
// Lookup combines three matching stages:
//
//  1. Prefix: names whose lowercased form starts with the query, found via a
//     patricia trie subtree visit. Prefix matches always rank first.
//  2. Phonetic: Double Metaphone code overlap between query and name tokens,
//     accepted above the phonetic threshold (default 0.70).
//  3. Fuzzy: plain Jaro-Winkler similarity above the fuzzy threshold
//     (default 0.85), which catches typos the phonetic stage misses.
//
// Within each group results are ordered by descending Jaro-Winkler score so
// that closer, more specific names come first; score ties break
// lexicographically.
package autocomplete

import (
	"cmp"
	"slices"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/tchap/go-patricia/v2/patricia"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.85
)

// Option is a functional option for configuring an [Index].
type Option func(*Index)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score required for a
// phonetically-matched name to be accepted. Default: 0.70.
func WithPhoneticThreshold(threshold float64) Option {
	return func(idx *Index) {
		idx.phoneticThreshold = threshold
	}
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score required for a name
// with no phonetic overlap to be accepted. Default: 0.85.
func WithFuzzyThreshold(threshold float64) Option {
	return func(idx *Index) {
		idx.fuzzyThreshold = threshold
	}
}

// WithLimit caps the number of names returned for a non-empty query.
// Zero (the default) means unlimited. The empty query always returns the
// full name list regardless of the limit.
func WithLimit(n int) Option {
	return func(idx *Index) {
		idx.limit = n
	}
}

// Index answers partial-name queries over a fixed set of names. It is
// read-only after construction and safe for concurrent use.
type Index struct {
	names []string                  // unique, sorted lexicographically
	codes []map[string]struct{}     // Double Metaphone codes, parallel to names
	trie  *patricia.Trie            // lowercased name → index into names

	phoneticThreshold float64
	fuzzyThreshold    float64
	limit             int
}

// New builds an Index over names. The input is copied, trimmed of blanks,
// de-duplicated, and sorted; the caller's slice is never retained.
func New(names []string, opts ...Option) *Index {
	idx := &Index{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	for _, o := range opts {
		o(idx)
	}

	seen := make(map[string]struct{}, len(names))
	idx.names = make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		idx.names = append(idx.names, n)
	}
	slices.Sort(idx.names)

	idx.trie = patricia.NewTrie()
	idx.codes = make([]map[string]struct{}, len(idx.names))
	for i, n := range idx.names {
		idx.trie.Insert(patricia.Prefix(strings.ToLower(n)), i)
		idx.codes[i] = codesForTokens(strings.Fields(strings.ToLower(n)))
	}
	return idx
}

// Names returns a copy of the stored name list in its sorted order.
func (idx *Index) Names() []string {
	return slices.Clone(idx.names)
}

// Len returns the number of names in the store.
func (idx *Index) Len() int {
	return len(idx.names)
}

// scored is one candidate match during a Lookup.
type scored struct {
	name   string
	score  float64
	prefix bool
}

// Lookup returns the names matching partial, closest first. An empty or
// blank query bypasses matching entirely and returns the full name list.
func (idx *Index) Lookup(partial string) []string {
	query := strings.ToLower(strings.TrimSpace(partial))
	if query == "" {
		return idx.Names()
	}

	inPrefix := make(map[string]struct{})
	var matches []scored

	// Stage 1: prefix matches via the trie.
	_ = idx.trie.VisitSubtree(patricia.Prefix(query), func(_ patricia.Prefix, item patricia.Item) error {
		name := idx.names[item.(int)]
		inPrefix[name] = struct{}{}
		matches = append(matches, scored{
			name:   name,
			score:  matchr.JaroWinkler(query, strings.ToLower(name), false),
			prefix: true,
		})
		return nil
	})

	// Stages 2 and 3: phonetic and fuzzy matches over the remainder.
	queryCodes := codesForTokens(strings.Fields(query))
	for i, name := range idx.names {
		if _, ok := inPrefix[name]; ok {
			continue
		}
		score := matchr.JaroWinkler(query, strings.ToLower(name), false)
		phonetic := codesOverlap(queryCodes, idx.codes[i])
		if phonetic && score >= idx.phoneticThreshold {
			matches = append(matches, scored{name: name, score: score})
			continue
		}
		if score >= idx.fuzzyThreshold {
			matches = append(matches, scored{name: name, score: score})
		}
	}

	slices.SortFunc(matches, func(a, b scored) int {
		if a.prefix != b.prefix {
			if a.prefix {
				return -1
			}
			return 1
		}
		if a.score != b.score {
			return cmp.Compare(b.score, a.score)
		}
		return cmp.Compare(a.name, b.name)
	})

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.name)
		if idx.limit > 0 && len(out) >= idx.limit {
			break
		}
	}
	return out
}

// codesForTokens returns the union of the Double Metaphone codes of tokens.
// Empty codes are excluded.
func codesForTokens(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

// codesOverlap reports whether the two code sets share at least one code.
func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}
