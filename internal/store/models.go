package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Page is the canonical content unit kept in sync with the external source.
// Tags, Authors, and Meta are schemaless containers: the engine never
// assumes specific keys or shapes beyond "tags hold strings".
type Page struct {
	bun.BaseModel `bun:"table:pages,alias:p"`

	ID           uuid.UUID      `bun:",pk,type:uuid"                    json:"id"`
	PageID       string         `bun:"page_id,notnull,unique"           json:"page_id"`
	DatasourceID string         `bun:"datasource_id,notnull"            json:"datasource_id"`
	Title        string         `bun:"title,notnull"                    json:"title"`
	Slug         string         `bun:"slug,notnull"                     json:"slug"`
	Content      *string        `bun:"content"                          json:"content,omitempty"`
	PublishAt    *time.Time     `bun:"publish_at,nullzero"              json:"publish_at,omitempty"`
	Tags         []string       `bun:"tags,type:jsonb"                  json:"tags"`
	Authors      []any          `bun:"authors,type:jsonb"               json:"authors"`
	Meta         map[string]any `bun:"meta,type:jsonb"                  json:"meta"`
	CreatedAt    time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate results without touching
// store-held state.
func (p *Page) Clone() *Page {
	if p == nil {
		return nil
	}
	cloned := *p
	if p.Content != nil {
		content := *p.Content
		cloned.Content = &content
	}
	if p.PublishAt != nil {
		at := *p.PublishAt
		cloned.PublishAt = &at
	}
	cloned.Tags = append([]string(nil), p.Tags...)
	cloned.Authors = append([]any(nil), p.Authors...)
	if p.Meta != nil {
		cloned.Meta = make(map[string]any, len(p.Meta))
		for k, v := range p.Meta {
			cloned.Meta[k] = v
		}
	}
	return &cloned
}

// SyncCursor is the per-datasource watermark persisted after a successful
// incremental sync.
type SyncCursor struct {
	bun.BaseModel `bun:"table:sync_cursors,alias:sc"`

	ID           uuid.UUID `bun:",pk,type:uuid"           json:"id"`
	DatasourceID string    `bun:"datasource_id,notnull,unique" json:"datasource_id"`
	Cursor       string    `bun:"cursor,notnull"          json:"cursor"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}
