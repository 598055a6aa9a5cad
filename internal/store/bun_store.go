package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-pagesync/internal/identity"
)

// BunPageStore persists pages through bun. Reads go through
// go-repository-bun repositories; the upsert runs raw bun statements inside
// a transaction so the slug invariant check and the write share visibility.
type BunPageStore struct {
	db      *bun.DB
	pages   repository.Repository[*Page]
	cursors repository.Repository[*SyncCursor]
	now     func() time.Time
}

var _ PageStore = (*BunPageStore)(nil)

func NewBunPageStore(db *bun.DB) *BunPageStore {
	return NewBunPageStoreWithCache(db, nil, nil)
}

// NewBunPageStoreWithCache constructs a PageStore backed by bun with optional read caching.
func NewBunPageStoreWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunPageStore {
	return &BunPageStore{
		db:      db,
		pages:   wrapWithCache(NewPageRepository(db), cacheService, keySerializer),
		cursors: wrapWithCache(NewSyncCursorRepository(db), cacheService, keySerializer),
		now:     time.Now,
	}
}

func (s *BunPageStore) Upsert(ctx context.Context, page *Page) (*Page, error) {
	if err := validatePageKeys(page); err != nil {
		return nil, err
	}
	if s.db == nil {
		return nil, ErrStoreUnavailable
	}

	record := page.Clone()
	normalizeContainers(record)
	if record.ID == uuid.Nil {
		record.ID = identity.PageUUID(record.PageID)
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing := new(Page)
		err := tx.NewSelect().
			Model(existing).
			Where("?TableAlias.page_id = ?", record.PageID).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			existing = nil
		} else if err != nil {
			return fmt.Errorf("page lookup: %w", err)
		}

		owner := new(Page)
		err = tx.NewSelect().
			Model(owner).
			Where("?TableAlias.datasource_id = ?", record.DatasourceID).
			Where("?TableAlias.slug = ?", record.Slug).
			Where("?TableAlias.page_id != ?", record.PageID).
			Limit(1).
			Scan(ctx)
		if err == nil {
			return &SlugConflictError{
				DatasourceID: record.DatasourceID,
				Slug:         record.Slug,
				PageID:       record.PageID,
				OwnerPageID:  owner.PageID,
			}
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("slug ownership check: %w", err)
		}

		now := s.now().UTC()
		if existing == nil {
			record.CreatedAt = now
			record.UpdatedAt = now
			if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
				if conflict := slugConflictFromDriver(err, record); conflict != nil {
					return conflict
				}
				return fmt.Errorf("insert page: %w", err)
			}
			return nil
		}

		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		record.UpdatedAt = nextUpdatedAt(existing.UpdatedAt, now)
		if _, err := tx.NewUpdate().
			Model(record).
			Column("datasource_id", "title", "slug", "content", "publish_at", "tags", "authors", "meta", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			if conflict := slugConflictFromDriver(err, record); conflict != nil {
				return conflict
			}
			return fmt.Errorf("update page: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *BunPageStore) GetByID(ctx context.Context, pageID string) (*Page, error) {
	result, err := s.pages.GetByIdentifier(ctx, pageID)
	if err != nil {
		return nil, mapRepositoryError(err, "page", pageID)
	}
	return result, nil
}

func (s *BunPageStore) GetBySlug(ctx context.Context, datasourceID, slug string) (*Page, error) {
	records, _, err := s.pages.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.datasource_id = ?", datasourceID).
				Where("?TableAlias.slug = ?", slug)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "page", slug)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "page", Key: datasourceID + "/" + slug}
	}
	return records[0], nil
}

func (s *BunPageStore) List(ctx context.Context, opts ListOptions) ([]*Page, error) {
	processors := []repository.SelectCriteria{
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.updated_at DESC")
		}),
		repository.SelectPaginate(opts.effectiveLimit(), opts.Offset),
	}
	if ds := strings.TrimSpace(opts.DatasourceID); ds != "" {
		processors = append(processors, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.datasource_id = ?", ds)
		}))
	}
	records, _, err := s.pages.List(ctx, processors...)
	if err != nil {
		return nil, fmt.Errorf("page list: %w", err)
	}
	return records, nil
}

func (s *BunPageStore) Search(ctx context.Context, query string, limit int) ([]*Page, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}
	pattern := "%" + needle + "%"
	candidates, _, err := s.pages.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.Where("LOWER(?TableAlias.title) LIKE ?", pattern).
					WhereOr("LOWER(COALESCE(?TableAlias.content, '')) LIKE ?", pattern)
			}).OrderExpr("?TableAlias.updated_at DESC")
		}),
		repository.SelectPaginate(searchCandidateLimit, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("page search: %w", err)
	}
	return rankMatches(candidates, query, limit), nil
}

func (s *BunPageStore) Unpublish(ctx context.Context, pageID string) (*Page, error) {
	existing, err := s.GetByID(ctx, pageID)
	if err != nil {
		return nil, err
	}

	existing.PublishAt = nil
	existing.UpdatedAt = nextUpdatedAt(existing.UpdatedAt, s.now().UTC())
	if _, err := s.db.NewUpdate().
		Model(existing).
		Column("publish_at", "updated_at").
		WherePK().
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("unpublish page: %w", err)
	}
	return existing, nil
}

func (s *BunPageStore) GetCursor(ctx context.Context, datasourceID string) (string, error) {
	record, err := s.cursors.GetByIdentifier(ctx, datasourceID)
	if err != nil {
		if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("cursor lookup: %w", err)
	}
	return record.Cursor, nil
}

func (s *BunPageStore) SetCursor(ctx context.Context, datasourceID, cursor string) error {
	if s.db == nil {
		return ErrStoreUnavailable
	}
	record := &SyncCursor{
		ID:           identity.CursorUUID(datasourceID),
		DatasourceID: datasourceID,
		Cursor:       cursor,
		UpdatedAt:    s.now().UTC(),
	}
	if _, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (datasource_id) DO UPDATE").
		Set("cursor = EXCLUDED.cursor").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}
	return nil
}

// slugConflictFromDriver classifies a write rejected by the slug unique
// constraint. The ownership SELECT above runs before the write, so a
// concurrent insert between check and write surfaces here instead; the
// constraint itself is the authority. Postgres names the constraint in the
// error, sqlite names the columns.
func slugConflictFromDriver(err error, record *Page) *SlugConflictError {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !strings.Contains(msg, "uq_pages_datasource_slug") &&
		!strings.Contains(msg, "pages.datasource_id, pages.slug") {
		return nil
	}
	return &SlugConflictError{
		DatasourceID: record.DatasourceID,
		Slug:         record.Slug,
		PageID:       record.PageID,
	}
}

func validatePageKeys(page *Page) error {
	if page == nil || strings.TrimSpace(page.PageID) == "" {
		return ErrPageIDRequired
	}
	if strings.TrimSpace(page.DatasourceID) == "" {
		return ErrDatasourceRequired
	}
	if strings.TrimSpace(page.Slug) == "" {
		return ErrSlugRequired
	}
	return nil
}

func normalizeContainers(page *Page) {
	if page.Tags == nil {
		page.Tags = []string{}
	}
	if page.Authors == nil {
		page.Authors = []any{}
	}
	if page.Meta == nil {
		page.Meta = map[string]any{}
	}
}

// nextUpdatedAt keeps updated_at monotonic: a write never moves it backward
// even when clocks disagree across processes.
func nextUpdatedAt(existing, now time.Time) time.Time {
	if now.Before(existing) {
		return existing
	}
	return now
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}

	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}

	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
