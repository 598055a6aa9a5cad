package source

import (
	"context"
	"strconv"
	"sync"

	"github.com/goliatone/go-pagesync/pkg/interfaces"
)

// StaticSource serves a fixed record set, optionally split into cursor-driven
// batches. It backs examples and tests that need a predictable upstream.
type StaticSource struct {
	mu        sync.RWMutex
	name      string
	records   []interfaces.ExternalRecord
	batchSize int
}

// NewStaticSource builds a source named name over the given records. A batch
// size of zero or less serves everything in a single full-set fetch.
func NewStaticSource(name string, records []interfaces.ExternalRecord, batchSize int) *StaticSource {
	if name == "" {
		name = "static"
	}
	return &StaticSource{
		name:      name,
		records:   append([]interfaces.ExternalRecord(nil), records...),
		batchSize: batchSize,
	}
}

func (s *StaticSource) Name() string { return s.name }

// Replace swaps the record set, simulating upstream drift between syncs.
func (s *StaticSource) Replace(records []interfaces.ExternalRecord) {
	s.mu.Lock()
	s.records = append([]interfaces.ExternalRecord(nil), records...)
	s.mu.Unlock()
}

// Fetch returns the batch addressed by the request cursor. Cursors are
// opaque offsets; an unparseable cursor restarts from the beginning.
func (s *StaticSource) Fetch(ctx context.Context, req interfaces.FetchRequest) (*interfaces.FetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	records := filterByDatasource(s.records, req.DatasourceID)

	if s.batchSize <= 0 {
		return &interfaces.FetchResult{
			Records: append([]interfaces.ExternalRecord(nil), records...),
		}, nil
	}

	offset := 0
	if req.Cursor != "" {
		if parsed, err := strconv.Atoi(req.Cursor); err == nil && parsed > 0 {
			offset = parsed
		}
	}
	if offset >= len(records) {
		return &interfaces.FetchResult{}, nil
	}

	end := offset + s.batchSize
	next := ""
	if end < len(records) {
		next = strconv.Itoa(end)
	} else {
		end = len(records)
	}

	return &interfaces.FetchResult{
		Records:    append([]interfaces.ExternalRecord(nil), records[offset:end]...),
		NextCursor: next,
	}, nil
}

func filterByDatasource(records []interfaces.ExternalRecord, datasourceID string) []interfaces.ExternalRecord {
	if datasourceID == "" {
		return records
	}
	out := make([]interfaces.ExternalRecord, 0, len(records))
	for _, record := range records {
		if record.DatasourceID == "" || record.DatasourceID == datasourceID {
			out = append(out, record)
		}
	}
	return out
}
