package posts

import (
	"cmp"
	"slices"
	"strings"

	"github.com/matzehuels/tagcloud/pkg/cloud"
)

// CountTags returns one tag per distinct label, weighted by the number of
// posts carrying it. Blank labels are dropped and a label repeated within
// one post counts once. The result is sorted by
// weight descending, then label ascending, so it is stable across runs.
func CountTags(posts []Post) []cloud.Tag {
	counts := make(map[string]int)
	for _, p := range posts {
		seen := make(map[string]bool, len(p.Tags))
		for _, t := range p.Tags {
			if t = strings.TrimSpace(t); t != "" && !seen[t] {
				seen[t] = true
				counts[t]++
			}
		}
	}

	tags := make([]cloud.Tag, 0, len(counts))
	for label, n := range counts {
		tags = append(tags, cloud.Tag{Label: label, Weight: n})
	}
	slices.SortFunc(tags, func(a, b cloud.Tag) int {
		if c := cmp.Compare(b.Weight, a.Weight); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return tags
}
