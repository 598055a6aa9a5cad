package synccmd

import (
	"context"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-pagesync/internal/commands"
	"github.com/goliatone/go-pagesync/internal/ingest"
	"github.com/goliatone/go-pagesync/internal/logging"
	"github.com/goliatone/go-pagesync/pkg/interfaces"
)

const syncOperation = "sync.datasource"

var _ command.Commander[SyncDatasourceCommand] = (*SyncDatasourceHandler)(nil)

// Syncer is the coordinator surface the handler drives.
type Syncer interface {
	SyncDatasource(ctx context.Context, datasourceID string) (*ingest.SyncReport, error)
}

// SyncDatasourceHandler runs reconciliation passes through the shared
// command handler foundation. The latest report is retained so callers that
// dispatch through the Commander interface can still read the outcome.
type SyncDatasourceHandler struct {
	inner      *commands.Handler[SyncDatasourceCommand]
	lastReport *ingest.SyncReport
}

// NewSyncDatasourceHandler binds a handler to the supplied coordinator.
func NewSyncDatasourceHandler(syncer Syncer, logger interfaces.Logger, opts ...commands.HandlerOption[SyncDatasourceCommand]) *SyncDatasourceHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	handler := &SyncDatasourceHandler{}

	exec := func(ctx context.Context, msg SyncDatasourceCommand) error {
		report, err := syncer.SyncDatasource(ctx, msg.DatasourceID)
		handler.lastReport = report
		if err != nil {
			return err
		}
		logging.WithFields(baseLogger, map[string]any{
			"datasource":      report.DatasourceID,
			"created":         report.Created,
			"updated":         report.Updated,
			"skipped_invalid": report.SkippedInvalid,
			"conflicts":       report.Conflicts,
			"tombstoned":      report.Tombstoned,
		}).Info("sync.command.completed")
		return nil
	}

	handlerOpts := append([]commands.HandlerOption[SyncDatasourceCommand]{
		commands.WithLogger[SyncDatasourceCommand](baseLogger),
		commands.WithOperation[SyncDatasourceCommand](syncOperation),
	}, opts...)

	handler.inner = commands.NewHandler(exec, handlerOpts...)
	return handler
}

// Execute implements command.Commander.
func (h *SyncDatasourceHandler) Execute(ctx context.Context, msg SyncDatasourceCommand) error {
	return h.inner.Execute(ctx, msg)
}

// LastReport returns the report from the most recent execution, nil when no
// pass has run. Reads are only meaningful after Execute returns.
func (h *SyncDatasourceHandler) LastReport() *ingest.SyncReport {
	return h.lastReport
}
