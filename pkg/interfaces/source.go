package interfaces

import "context"

// ExternalRecord is the raw page payload yielded by a content source
// adapter. Field presence is source-dependent; the ingestion transformer
// owns validation and normalization.
type ExternalRecord struct {
	PageID       string
	DatasourceID string
	Title        string
	Slug         string
	Content      *string
	PublishAt    *string
	Tags         []any
	Authors      []any
	Meta         map[string]any
}

// FetchRequest scopes a source fetch to a datasource and an optional cursor
// returned by a previous fetch. An empty cursor requests the full
// authoritative set.
type FetchRequest struct {
	DatasourceID string
	Cursor       string
}

// FetchResult carries the records for one reconciliation pass. NextCursor is
// empty when the source does not support incremental fetches; in that case
// Records is the full authoritative set for the datasource.
type FetchResult struct {
	Records    []ExternalRecord
	NextCursor string
}

// PageSource is the adapter boundary to the external content system. The
// coordinator depends only on this contract so alternate sources can be
// substituted without touching ingestion logic. Fetch failures (network,
// rate limits, timeouts) must surface as errors, never as partial results.
type PageSource interface {
	Name() string
	Fetch(ctx context.Context, req FetchRequest) (*FetchResult, error)
}
