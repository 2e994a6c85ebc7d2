// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"slices"
	"strings"

	"github.com/pdiddy/research-discovery/pkg/types"
)

// SortByComposite orders ideas by composite score, highest first. Ties
// keep their input order.
func SortByComposite(ideas []types.ScoredIdea) {
	slices.SortStableFunc(ideas, func(a, b types.ScoredIdea) int {
		switch {
		case a.CompositeScore > b.CompositeScore:
			return -1
		case a.CompositeScore < b.CompositeScore:
			return 1
		default:
			return 0
		}
	})
}

// SelectDiverse picks up to n ideas from a list sorted by score, skipping
// near-duplicates. The first idea is always kept. A later idea is admitted
// only if its lower-cased title shares at most maxShared words with every
// idea already selected.
//
// When the list has n or fewer ideas it is returned unchanged. When fewer
// than n ideas pass the filter, the filter is dropped and the plain top n
// is returned, so the result may then contain near-duplicate titles.
//
// The returned slice is a copy; sorted is not modified.
func SelectDiverse(sorted []types.ScoredIdea, n, maxShared int) []types.ScoredIdea {
	if len(sorted) <= n {
		return slices.Clone(sorted)
	}

	selected := []types.ScoredIdea{sorted[0]}
	words := []map[string]struct{}{titleWords(sorted[0].Idea.Title)}

	for _, cand := range sorted[1:] {
		if len(selected) >= n {
			break
		}
		cw := titleWords(cand.Idea.Title)
		if !diverseFromAll(cw, words, maxShared) {
			continue
		}
		selected = append(selected, cand)
		words = append(words, cw)
	}

	if len(selected) < n {
		return slices.Clone(sorted[:n])
	}
	return selected
}

func diverseFromAll(cand map[string]struct{}, chosen []map[string]struct{}, maxShared int) bool {
	for _, w := range chosen {
		if sharedWords(cand, w) > maxShared {
			return false
		}
	}
	return true
}

// titleWords is the set of whitespace-separated words in the lower-cased title.
func titleWords(title string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(title)) {
		set[w] = struct{}{}
	}
	return set
}

func sharedWords(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}
