package ingest

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-pagesync/internal/logging"
	"github.com/goliatone/go-pagesync/pkg/interfaces"
)

// DefaultPollInterval is how often the poller re-syncs when no interval is
// configured.
const DefaultPollInterval = time.Minute

// Poller drives the coordinator on a fixed interval. Each tick runs one sync
// pass over every configured datasource; an in-flight sync for a datasource
// is skipped rather than queued, so a slow upstream never piles up runs.
type Poller struct {
	coordinator *Coordinator
	datasources []string
	interval    time.Duration
	logger      interfaces.Logger
}

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithPollInterval overrides the tick interval.
func WithPollInterval(interval time.Duration) PollerOption {
	return func(p *Poller) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithPollLogger injects the poll loop logger.
func WithPollLogger(logger interfaces.Logger) PollerOption {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewPoller(coordinator *Coordinator, datasources []string, opts ...PollerOption) (*Poller, error) {
	if coordinator == nil {
		return nil, ErrCoordinatorRequired
	}

	cleaned := make([]string, 0, len(datasources))
	for _, ds := range datasources {
		if trimmed := strings.TrimSpace(ds); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return nil, ErrNoDatasources
	}

	p := &Poller{
		coordinator: coordinator,
		datasources: cleaned,
		interval:    DefaultPollInterval,
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Process runs a single sync pass over every datasource. Failures are
// logged and do not stop the pass; only context cancellation aborts early.
func (p *Poller) Process(ctx context.Context) error {
	for _, datasource := range p.datasources {
		if err := ctx.Err(); err != nil {
			return err
		}

		report, err := p.coordinator.SyncDatasource(ctx, datasource)
		switch {
		case errors.Is(err, ErrSyncInProgress):
			p.logger.Debug("poll.sync.skipped", "datasource_id", datasource)
		case err != nil:
			p.logger.Error("poll.sync.failed", "datasource_id", datasource, "error", err)
		default:
			p.logger.Debug("poll.sync.completed",
				"datasource_id", datasource,
				"created", report.Created,
				"updated", report.Updated,
			)
		}
	}
	return nil
}

// Run processes immediately and then on every tick until the context ends.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.Process(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.Process(ctx); err != nil {
				return err
			}
		}
	}
}
