package categorization

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// keywordSet matches many lowercase substrings in a single pass using the
// Aho-Corasick algorithm. Each pattern may select several groups.
type keywordSet struct {
	matcher  *ahocorasick.Matcher
	patterns []string
	groups   [][]int // groups selected by each pattern, same order as patterns
}

// newKeywordSet builds a matcher where groups[i] is the keyword list of group i.
// Duplicate keywords across groups share one pattern.
func newKeywordSet(groups ...[]string) *keywordSet {
	ks := &keywordSet{}
	index := make(map[string]int)

	for g, keywords := range groups {
		for _, kw := range keywords {
			kw = strings.ToLower(kw)
			if kw == "" {
				continue
			}
			if idx, ok := index[kw]; ok {
				if !containsInt(ks.groups[idx], g) {
					ks.groups[idx] = append(ks.groups[idx], g)
				}
				continue
			}
			index[kw] = len(ks.patterns)
			ks.patterns = append(ks.patterns, kw)
			ks.groups = append(ks.groups, []int{g})
		}
	}

	if len(ks.patterns) > 0 {
		ks.matcher = ahocorasick.NewStringMatcher(ks.patterns)
	}
	return ks
}

// hits returns, per group, whether any of its keywords occurs in the lowercased text.
func (ks *keywordSet) hits(lower string, groupCount int) []bool {
	out := make([]bool, groupCount)
	if ks.matcher == nil {
		return out
	}
	for _, idx := range ks.matcher.MatchThreadSafe([]byte(lower)) {
		if idx < 0 || idx >= len(ks.groups) {
			continue
		}
		for _, g := range ks.groups[idx] {
			out[g] = true
		}
	}
	return out
}

// any reports whether any keyword occurs in the lowercased text.
func (ks *keywordSet) any(lower string) bool {
	if ks.matcher == nil {
		return false
	}
	return len(ks.matcher.MatchThreadSafe([]byte(lower))) > 0
}

// PatternCount returns the number of distinct keywords loaded.
func (ks *keywordSet) PatternCount() int {
	return len(ks.patterns)
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
