package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-pagesync/pkg/interfaces"
)

const (
	rootModule      = "pagesync"
	storeModule     = "pagesync.store"
	syncModule      = "pagesync.sync"
	retrievalModule = "pagesync.retrieval"
	markdownModule  = "pagesync.markdown"
	feedsModule     = "pagesync.feeds"
	httpModule      = "pagesync.http"
)

const (
	fieldDatasource = "datasource_id"
	fieldPageID     = "page_id"
	fieldSyncAction = "sync_action"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// StoreLogger returns the logger namespace reserved for the page store.
func StoreLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storeModule)
}

// SyncLogger returns the logger namespace reserved for the sync coordinator.
func SyncLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, syncModule)
}

// RetrievalLogger returns the logger namespace reserved for read services.
func RetrievalLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, retrievalModule)
}

// MarkdownLogger returns the logger namespace reserved for rendering.
func MarkdownLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, markdownModule)
}

// FeedsLogger returns the logger namespace reserved for feed generation.
func FeedsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, feedsModule)
}

// HTTPLogger returns the logger namespace reserved for the HTTP surface.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// WithSyncContext enriches the provided logger with common sync fields such
// as datasource, page id, and action. Empty values are ignored.
func WithSyncContext(logger interfaces.Logger, datasourceID, pageID, action string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(datasourceID); trimmed != "" {
		fields[fieldDatasource] = trimmed
	}
	if trimmed := strings.TrimSpace(pageID); trimmed != "" {
		fields[fieldPageID] = trimmed
	}
	if trimmed := strings.TrimSpace(action); trimmed != "" {
		fields[fieldSyncAction] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
