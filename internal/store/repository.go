package store

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func NewPageRepository(db *bun.DB) repository.Repository[*Page] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Page]{
		NewRecord: func() *Page { return &Page{} },
		GetID: func(p *Page) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Page, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "page_id"
		},
		GetIdentifierValue: func(p *Page) string {
			return p.PageID
		},
	})
}

func NewSyncCursorRepository(db *bun.DB) repository.Repository[*SyncCursor] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*SyncCursor]{
		NewRecord: func() *SyncCursor { return &SyncCursor{} },
		GetID: func(c *SyncCursor) uuid.UUID {
			return c.ID
		},
		SetID: func(c *SyncCursor, id uuid.UUID) {
			c.ID = id
		},
		GetIdentifier: func() string {
			return "datasource_id"
		},
		GetIdentifierValue: func(c *SyncCursor) string {
			return c.DatasourceID
		},
	})
}
