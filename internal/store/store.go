package store

import (
	"context"
	"sort"
	"strings"
)

const (
	// DefaultListLimit bounds rows returned by List when callers do not ask
	// for less. ListHardLimit is the ceiling regardless of the request.
	DefaultListLimit = 50
	ListHardLimit    = 100

	// DefaultSearchLimit caps quick-search results. Candidate rows fetched
	// for ranking are bounded separately so memory stays flat.
	DefaultSearchLimit   = 5
	searchCandidateLimit = 50
)

// ListOptions scopes and bounds a collection listing.
type ListOptions struct {
	DatasourceID string
	Limit        int
	Offset       int
}

func (o ListOptions) effectiveLimit() int {
	limit := o.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > ListHardLimit {
		limit = ListHardLimit
	}
	return limit
}

// PageStore is the persistence contract for canonical pages and sync
// cursors. All writes go through Upsert so the (datasource_id, slug)
// invariant has a single enforcement point.
type PageStore interface {
	Upsert(ctx context.Context, page *Page) (*Page, error)
	GetByID(ctx context.Context, pageID string) (*Page, error)
	GetBySlug(ctx context.Context, datasourceID, slug string) (*Page, error)
	List(ctx context.Context, opts ListOptions) ([]*Page, error)
	Search(ctx context.Context, query string, limit int) ([]*Page, error)
	Unpublish(ctx context.Context, pageID string) (*Page, error)

	GetCursor(ctx context.Context, datasourceID string) (string, error)
	SetCursor(ctx context.Context, datasourceID, cursor string) error
}

// rankMatches orders candidate pages by case-insensitive match count over
// title and content, breaking ties by updated_at descending then page id,
// and truncates to limit. Both store implementations rank through this
// helper so results are identical regardless of backend.
func rankMatches(candidates []*Page, query string, limit int) []*Page {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}

	type scored struct {
		page  *Page
		count int
	}
	matches := make([]scored, 0, len(candidates))
	for _, page := range candidates {
		if page == nil {
			continue
		}
		count := strings.Count(strings.ToLower(page.Title), needle)
		if page.Content != nil {
			count += strings.Count(strings.ToLower(*page.Content), needle)
		}
		if count == 0 {
			continue
		}
		matches = append(matches, scored{page: page, count: count})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].count != matches[j].count {
			return matches[i].count > matches[j].count
		}
		if !matches[i].page.UpdatedAt.Equal(matches[j].page.UpdatedAt) {
			return matches[i].page.UpdatedAt.After(matches[j].page.UpdatedAt)
		}
		return matches[i].page.PageID < matches[j].page.PageID
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]*Page, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.page)
	}
	return out
}
