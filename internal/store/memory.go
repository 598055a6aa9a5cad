package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-pagesync/internal/identity"
)

// MemoryPageStore is a mutex-guarded PageStore used by tests and
// bootstrapping hosts that do not need durable persistence. It mirrors the
// bun store's semantics, including the slug ownership invariant and
// monotonic updated_at.
type MemoryPageStore struct {
	mu      sync.RWMutex
	byID    map[string]*Page // keyed by external page id
	bySlug  map[string]string
	cursors map[string]string
	now     func() time.Time
}

var _ PageStore = (*MemoryPageStore)(nil)

func NewMemoryPageStore() *MemoryPageStore {
	return &MemoryPageStore{
		byID:    make(map[string]*Page),
		bySlug:  make(map[string]string),
		cursors: make(map[string]string),
		now:     time.Now,
	}
}

// SetClock overrides the store clock. Test helper.
func (m *MemoryPageStore) SetClock(now func() time.Time) {
	if now != nil {
		m.now = now
	}
}

func (m *MemoryPageStore) Upsert(_ context.Context, page *Page) (*Page, error) {
	if err := validatePageKeys(page); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	record := page.Clone()
	normalizeContainers(record)
	if record.ID == uuid.Nil {
		record.ID = identity.PageUUID(record.PageID)
	}

	slugKey := scopedSlug(record.DatasourceID, record.Slug)
	if ownerID, ok := m.bySlug[slugKey]; ok && ownerID != record.PageID {
		return nil, &SlugConflictError{
			DatasourceID: record.DatasourceID,
			Slug:         record.Slug,
			PageID:       record.PageID,
			OwnerPageID:  ownerID,
		}
	}

	now := m.now().UTC()
	if existing, ok := m.byID[record.PageID]; ok {
		delete(m.bySlug, scopedSlug(existing.DatasourceID, existing.Slug))
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
		record.UpdatedAt = nextUpdatedAt(existing.UpdatedAt, now)
	} else {
		record.CreatedAt = now
		record.UpdatedAt = now
	}

	m.byID[record.PageID] = record
	m.bySlug[slugKey] = record.PageID
	return record.Clone(), nil
}

func (m *MemoryPageStore) GetByID(_ context.Context, pageID string) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[pageID]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: pageID}
	}
	return record.Clone(), nil
}

func (m *MemoryPageStore) GetBySlug(_ context.Context, datasourceID, slug string) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pageID, ok := m.bySlug[scopedSlug(datasourceID, slug)]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: datasourceID + "/" + slug}
	}
	return m.byID[pageID].Clone(), nil
}

func (m *MemoryPageStore) List(_ context.Context, opts ListOptions) ([]*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ds := strings.TrimSpace(opts.DatasourceID)
	records := make([]*Page, 0, len(m.byID))
	for _, record := range m.byID {
		if ds != "" && record.DatasourceID != ds {
			continue
		}
		records = append(records, record.Clone())
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].UpdatedAt.Equal(records[j].UpdatedAt) {
			return records[i].UpdatedAt.After(records[j].UpdatedAt)
		}
		return records[i].PageID < records[j].PageID
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(records) {
			return []*Page{}, nil
		}
		records = records[opts.Offset:]
	}
	if limit := opts.effectiveLimit(); len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (m *MemoryPageStore) Search(_ context.Context, query string, limit int) ([]*Page, error) {
	m.mu.RLock()
	candidates := make([]*Page, 0, len(m.byID))
	for _, record := range m.byID {
		candidates = append(candidates, record.Clone())
	}
	m.mu.RUnlock()

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].UpdatedAt.After(candidates[j].UpdatedAt)
	})
	if len(candidates) > searchCandidateLimit {
		candidates = candidates[:searchCandidateLimit]
	}
	return rankMatches(candidates, query, limit), nil
}

func (m *MemoryPageStore) Unpublish(_ context.Context, pageID string) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.byID[pageID]
	if !ok {
		return nil, &NotFoundError{Resource: "page", Key: pageID}
	}
	record.PublishAt = nil
	record.UpdatedAt = nextUpdatedAt(record.UpdatedAt, m.now().UTC())
	return record.Clone(), nil
}

func (m *MemoryPageStore) GetCursor(_ context.Context, datasourceID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cursors[datasourceID], nil
}

func (m *MemoryPageStore) SetCursor(_ context.Context, datasourceID, cursor string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursors[datasourceID] = cursor
	return nil
}

func scopedSlug(datasourceID, slug string) string {
	return datasourceID + "\x00" + slug
}
