package feeds

import (
	"sort"

	"github.com/goliatone/go-pagesync/internal/store"
)

// TagCount pairs a tag with the number of pages carrying it.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CountTags aggregates tag usage across pages. A tag repeated inside one
// page counts once for that page. Results are ordered by count descending
// with name ascending as the tie-break.
func CountTags(pages []*store.Page) []TagCount {
	counts := map[string]int{}
	for _, page := range pages {
		seen := map[string]struct{}{}
		for _, tag := range page.Tags {
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			counts[tag]++
		}
	}

	out := make([]TagCount, 0, len(counts))
	for name, count := range counts {
		out = append(out, TagCount{Name: name, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
