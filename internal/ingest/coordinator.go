package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-pagesync/internal/logging"
	"github.com/goliatone/go-pagesync/internal/store"
	"github.com/goliatone/go-pagesync/pkg/interfaces"
)

// DefaultUntitledPlaceholder is substituted when the source omits a title.
// The transformer passes empty titles through; the placeholder policy is
// owned here, at the ingestion call site.
const DefaultUntitledPlaceholder = "Untitled"

// RecordValidator optionally gates raw records before transformation.
// Failures count as skipped-invalid, same as transformer rejections.
type RecordValidator interface {
	Validate(record interfaces.ExternalRecord) error
}

// Coordinator reconciles the external source with the page store, one
// datasource at a time. At most one sync runs per datasource; a concurrent
// request for the same datasource is rejected with ErrSyncInProgress while
// different datasources proceed independently.
type Coordinator struct {
	store            store.PageStore
	source           interfaces.PageSource
	validator        RecordValidator
	logger           interfaces.Logger
	locks            *keyedLocks
	tombstoneMissing bool
	placeholderTitle string
	now              func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger injects the sync logger. Defaults to a no-op logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecordValidator gates raw records through a schema check before the
// transformer runs.
func WithRecordValidator(validator RecordValidator) Option {
	return func(c *Coordinator) {
		c.validator = validator
	}
}

// WithTombstoneMissing unpublishes stored pages absent from a full-set
// fetch. The policy only applies when no cursor was in play: an incremental
// delta says nothing about pages it does not mention.
func WithTombstoneMissing(enabled bool) Option {
	return func(c *Coordinator) {
		c.tombstoneMissing = enabled
	}
}

// WithUntitledPlaceholder overrides the title substituted for records the
// source delivered without one.
func WithUntitledPlaceholder(title string) Option {
	return func(c *Coordinator) {
		if strings.TrimSpace(title) != "" {
			c.placeholderTitle = title
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCoordinator wires a coordinator over the given store and source.
func NewCoordinator(pageStore store.PageStore, source interfaces.PageSource, opts ...Option) (*Coordinator, error) {
	if pageStore == nil {
		return nil, ErrStoreRequired
	}
	if source == nil {
		return nil, ErrSourceRequired
	}
	c := &Coordinator{
		store:            pageStore,
		source:           source,
		logger:           logging.NoOp(),
		locks:            newKeyedLocks(),
		placeholderTitle: DefaultUntitledPlaceholder,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SyncDatasource runs one reconciliation pass. Per-record failures are
// collected into the report; only sync-level failures return an error.
// Already-committed records stay committed when the pass aborts midway.
func (c *Coordinator) SyncDatasource(ctx context.Context, datasourceID string) (*SyncReport, error) {
	datasourceID = strings.TrimSpace(datasourceID)
	if datasourceID == "" {
		return nil, ErrDatasourceRequired
	}

	release, ok := c.locks.tryAcquire(datasourceID)
	if !ok {
		return nil, ErrSyncInProgress
	}
	defer release()

	logger := logging.WithSyncContext(c.logger, datasourceID, "", "sync")
	started := c.now().UTC()
	report := &SyncReport{
		DatasourceID: datasourceID,
		StartedAt:    started,
	}

	cursor, err := c.store.GetCursor(ctx, datasourceID)
	if err != nil {
		return nil, fmt.Errorf("%w: load cursor: %v", ErrStoreFailure, err)
	}

	result, err := c.source.Fetch(ctx, interfaces.FetchRequest{
		DatasourceID: datasourceID,
		Cursor:       cursor,
	})
	if err != nil {
		logger.Error("sync.fetch.failed", "error", err)
		return nil, &AdapterError{Source: c.source.Name(), Err: err}
	}
	if result == nil {
		result = &interfaces.FetchResult{}
	}

	// A fetch is authoritative only when no cursor was in play on either
	// side: a resumed delta or a paginated first batch both omit pages that
	// still exist upstream.
	fullSet := cursor == "" && result.NextCursor == ""
	seen := make(map[string]struct{}, len(result.Records))

	for _, record := range result.Records {
		if err := ctx.Err(); err != nil {
			report.Duration = c.now().UTC().Sub(started)
			return report, err
		}
		if strings.TrimSpace(record.DatasourceID) == "" {
			record.DatasourceID = datasourceID
		}

		outcome, err := c.ingestRecord(ctx, datasourceID, record, report, seen)
		if err != nil {
			// Store unreachable: abort, partial progress stays visible.
			report.Duration = c.now().UTC().Sub(started)
			return report, err
		}
		logging.WithSyncContext(logger, "", record.PageID, string(outcome)).
			Debug("sync.record.done")
	}

	if c.tombstoneMissing && fullSet {
		tombstoned, err := c.tombstoneAbsent(ctx, datasourceID, seen)
		if err != nil {
			report.Duration = c.now().UTC().Sub(started)
			return report, err
		}
		report.Tombstoned = tombstoned
	}

	if result.NextCursor != "" {
		if err := c.store.SetCursor(ctx, datasourceID, result.NextCursor); err != nil {
			report.Duration = c.now().UTC().Sub(started)
			return report, fmt.Errorf("%w: save cursor: %v", ErrStoreFailure, err)
		}
		report.CursorAdvanced = true
	}

	report.Duration = c.now().UTC().Sub(started)
	logger.Info("sync.completed",
		"created", report.Created,
		"updated", report.Updated,
		"skipped_invalid", report.SkippedInvalid,
		"conflicts", report.Conflicts,
		"failed", report.Failed,
		"tombstoned", report.Tombstoned,
	)
	return report, nil
}

func (c *Coordinator) ingestRecord(
	ctx context.Context,
	datasourceID string,
	record interfaces.ExternalRecord,
	report *SyncReport,
	seen map[string]struct{},
) (Outcome, error) {
	if c.validator != nil {
		if err := c.validator.Validate(record); err != nil {
			report.SkippedInvalid++
			report.recordFailure(record.PageID, OutcomeSkippedInvalid, err.Error())
			return OutcomeSkippedInvalid, nil
		}
	}

	page, err := Transform(record)
	if err != nil {
		report.SkippedInvalid++
		report.recordFailure(record.PageID, OutcomeSkippedInvalid, err.Error())
		return OutcomeSkippedInvalid, nil
	}
	if page.DatasourceID != datasourceID {
		report.SkippedInvalid++
		report.recordFailure(page.PageID, OutcomeSkippedInvalid,
			fmt.Sprintf("record belongs to datasource %q", page.DatasourceID))
		return OutcomeSkippedInvalid, nil
	}
	if page.Title == "" {
		page.Title = c.placeholderTitle
	}

	existed := true
	if _, err := c.store.GetByID(ctx, page.PageID); err != nil {
		if !store.IsNotFound(err) {
			return OutcomeFailed, fmt.Errorf("%w: page lookup: %v", ErrStoreFailure, err)
		}
		existed = false
	}

	if _, err := c.store.Upsert(ctx, page); err != nil {
		switch {
		case store.IsSlugConflict(err):
			report.Conflicts++
			report.recordFailure(page.PageID, OutcomeConflict, err.Error())
			return OutcomeConflict, nil
		case errors.Is(err, store.ErrStoreUnavailable), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return OutcomeFailed, fmt.Errorf("%w: %v", ErrStoreFailure, err)
		default:
			report.Failed++
			report.recordFailure(page.PageID, OutcomeFailed, err.Error())
			return OutcomeFailed, nil
		}
	}

	seen[page.PageID] = struct{}{}
	if existed {
		report.Updated++
		return OutcomeUpdated, nil
	}
	report.Created++
	return OutcomeCreated, nil
}

// tombstoneAbsent unpublishes stored pages the full-set fetch did not
// mention. Rows are walked in store-bounded chunks.
func (c *Coordinator) tombstoneAbsent(ctx context.Context, datasourceID string, seen map[string]struct{}) (int, error) {
	var absent []string
	offset := 0
	for {
		batch, err := c.store.List(ctx, store.ListOptions{
			DatasourceID: datasourceID,
			Limit:        store.ListHardLimit,
			Offset:       offset,
		})
		if err != nil {
			return 0, fmt.Errorf("%w: list for tombstone: %v", ErrStoreFailure, err)
		}
		for _, page := range batch {
			if _, ok := seen[page.PageID]; ok {
				continue
			}
			if page.PublishAt == nil {
				continue
			}
			absent = append(absent, page.PageID)
		}
		if len(batch) < store.ListHardLimit {
			break
		}
		offset += len(batch)
	}

	count := 0
	for _, pageID := range absent {
		if _, err := c.store.Unpublish(ctx, pageID); err != nil {
			if store.IsNotFound(err) {
				continue
			}
			return count, fmt.Errorf("%w: tombstone %s: %v", ErrStoreFailure, pageID, err)
		}
		count++
	}
	return count, nil
}
