package pagesync

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-pagesync/internal/commands"
	synccmd "github.com/goliatone/go-pagesync/internal/commands/sync"
	"github.com/goliatone/go-pagesync/internal/feeds"
	pshttp "github.com/goliatone/go-pagesync/internal/http"
	"github.com/goliatone/go-pagesync/internal/ingest"
	"github.com/goliatone/go-pagesync/internal/logging"
	"github.com/goliatone/go-pagesync/internal/logging/gologger"
	"github.com/goliatone/go-pagesync/internal/markdown"
	"github.com/goliatone/go-pagesync/internal/retrieval"
	"github.com/goliatone/go-pagesync/internal/store"
	"github.com/goliatone/go-pagesync/internal/validation"
	"github.com/goliatone/go-pagesync/pkg/interfaces"
)

// ErrSourceRequired indicates the module was built without a page source.
var ErrSourceRequired = errors.New("pagesync: page source is required")

// ErrDatabaseRequired indicates bun storage was selected without a database.
var ErrDatabaseRequired = errors.New("pagesync: bun storage requires a database")

// PageStore exports the storage contract.
type PageStore = store.PageStore

// Page exports the canonical page row.
type Page = store.Page

// ListOptions exports list pagination options.
type ListOptions = store.ListOptions

// SyncReport exports the reconciliation report.
type SyncReport = ingest.SyncReport

// Post exports the composed read-side page.
type Post = retrieval.Post

// TagCount exports the tag aggregate pair.
type TagCount = feeds.TagCount

// Module is the top level engine facade: it owns the sync coordinator, the
// read services, and the HTTP surface over one shared page store.
type Module struct {
	cfg      Config
	provider interfaces.LoggerProvider

	store       store.PageStore
	renderer    interfaces.MarkdownRenderer
	coordinator *ingest.Coordinator
	retrieval   *retrieval.Service
	links       *feeds.LinkBuilder
	feeds       *feeds.Builder
	api         *pshttp.API
	syncHandler *synccmd.SyncDatasourceHandler
}

// Option overrides module collaborators.
type Option func(*moduleDeps)

type moduleDeps struct {
	db            *bun.DB
	source        interfaces.PageSource
	pageStore     store.PageStore
	provider      interfaces.LoggerProvider
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
}

// WithDB supplies the bun database backing the page store.
func WithDB(db *bun.DB) Option {
	return func(d *moduleDeps) {
		d.db = db
	}
}

// WithSource supplies the external page source to reconcile against.
func WithSource(source interfaces.PageSource) Option {
	return func(d *moduleDeps) {
		d.source = source
	}
}

// WithPageStore overrides the page store entirely, bypassing the storage
// provider selection.
func WithPageStore(pageStore store.PageStore) Option {
	return func(d *moduleDeps) {
		d.pageStore = pageStore
	}
}

// WithLoggerProvider overrides the logger provider built from config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(d *moduleDeps) {
		d.provider = provider
	}
}

// WithRepositoryCache wires the repository read cache used by the bun store.
func WithRepositoryCache(service cache.CacheService, serializer cache.KeySerializer) Option {
	return func(d *moduleDeps) {
		d.cacheService = service
		d.keySerializer = serializer
	}
}

// New constructs the engine from configuration plus collaborator options.
func New(cfg Config, opts ...Option) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	deps := &moduleDeps{}
	for _, opt := range opts {
		if opt != nil {
			opt(deps)
		}
	}
	if deps.source == nil {
		return nil, ErrSourceRequired
	}

	provider := deps.provider
	if provider == nil && cfg.Logging.Enabled {
		built, err := gologger.NewProvider(gologger.Config{
			Level:     cfg.Logging.Level,
			Format:    cfg.Logging.Format,
			AddSource: cfg.Logging.AddSource,
			Focus:     cfg.Logging.Focus,
		})
		if err != nil {
			return nil, err
		}
		provider = built
	}

	pageStore, err := buildStore(cfg, deps)
	if err != nil {
		return nil, err
	}

	renderer := buildRenderer(cfg)

	coordinatorOpts := []ingest.Option{
		ingest.WithLogger(logging.SyncLogger(provider)),
		ingest.WithTombstoneMissing(cfg.Sync.TombstoneMissing),
		ingest.WithUntitledPlaceholder(cfg.Sync.UntitledPlaceholder),
	}
	if len(cfg.RecordSchema) > 0 {
		validator, err := validation.NewRecordValidator(cfg.RecordSchema)
		if err != nil {
			return nil, err
		}
		coordinatorOpts = append(coordinatorOpts, ingest.WithRecordValidator(validator))
	}
	coordinator, err := ingest.NewCoordinator(pageStore, deps.source, coordinatorOpts...)
	if err != nil {
		return nil, err
	}

	reader, err := retrieval.NewService(pageStore,
		retrieval.WithRenderer(renderer),
		retrieval.WithRenderOptions(renderOptions(cfg)),
		retrieval.WithLogger(logging.RetrievalLogger(provider)),
	)
	if err != nil {
		return nil, err
	}

	links := feeds.NewLinkBuilder(cfg.BaseURL)
	feedBuilder := feeds.NewBuilder(links)

	api := pshttp.NewAPI(
		pshttp.WithBasePath(cfg.HTTP.BasePath),
		pshttp.WithSyncer(coordinator),
		pshttp.WithRetrievalService(reader),
		pshttp.WithFeedBuilder(feedBuilder),
		pshttp.WithLinkBuilder(links),
		pshttp.WithFeedTitle(cfg.Feed.Title),
		pshttp.WithLogger(logging.HTTPLogger(provider)),
	)

	syncHandler := synccmd.NewSyncDatasourceHandler(coordinator, logging.SyncLogger(provider),
		commands.WithTimeout[synccmd.SyncDatasourceCommand](cfg.Sync.HandlerTimeout),
	)

	return &Module{
		cfg:         cfg,
		provider:    provider,
		store:       pageStore,
		renderer:    renderer,
		coordinator: coordinator,
		retrieval:   reader,
		links:       links,
		feeds:       feedBuilder,
		api:         api,
		syncHandler: syncHandler,
	}, nil
}

func buildStore(cfg Config, deps *moduleDeps) (store.PageStore, error) {
	if deps.pageStore != nil {
		return deps.pageStore, nil
	}
	switch {
	case strings.EqualFold(strings.TrimSpace(cfg.Storage.Provider), "memory"):
		return store.NewMemoryPageStore(), nil
	default:
		if deps.db == nil {
			return nil, ErrDatabaseRequired
		}
		if cfg.Cache.Enabled && deps.cacheService != nil {
			return store.NewBunPageStoreWithCache(deps.db, deps.cacheService, deps.keySerializer), nil
		}
		return store.NewBunPageStore(deps.db), nil
	}
}

func buildRenderer(cfg Config) interfaces.MarkdownRenderer {
	base := markdown.NewGoldmarkRenderer(renderOptions(cfg))
	return markdown.NewCachingRenderer(base, cfg.Markdown.CacheSize)
}

func renderOptions(cfg Config) interfaces.RenderOptions {
	return interfaces.RenderOptions{
		Extensions: cfg.Markdown.Extensions,
		HardWraps:  cfg.Markdown.HardWraps,
		SafeMode:   cfg.Markdown.SafeMode,
		Sanitize:   cfg.Markdown.Sanitize,
	}
}

// Store returns the configured page store.
func (m *Module) Store() PageStore {
	return m.store
}

// Coordinator returns the sync coordinator.
func (m *Module) Coordinator() *ingest.Coordinator {
	return m.coordinator
}

// Retrieval returns the read-side service.
func (m *Module) Retrieval() *retrieval.Service {
	return m.retrieval
}

// Feeds returns the Atom feed builder.
func (m *Module) Feeds() *feeds.Builder {
	return m.feeds
}

// Links returns the URL builder for content routes.
func (m *Module) Links() *feeds.LinkBuilder {
	return m.links
}

// Renderer returns the markdown renderer shared across read surfaces.
func (m *Module) Renderer() interfaces.MarkdownRenderer {
	return m.renderer
}

// HTTPHandler returns the API mux with every route registered.
func (m *Module) HTTPHandler() http.Handler {
	return m.api.Handler()
}

// RegisterRoutes attaches the API routes onto a host-owned mux.
func (m *Module) RegisterRoutes(mux *http.ServeMux) {
	m.api.Register(mux)
}

// NewPoller builds an interval sync runner over this module's coordinator.
func (m *Module) NewPoller(datasources []string, interval time.Duration) (*ingest.Poller, error) {
	opts := []ingest.PollerOption{ingest.WithPollInterval(interval)}
	if m.provider != nil {
		opts = append(opts, ingest.WithPollLogger(logging.SyncLogger(m.provider)))
	}
	return ingest.NewPoller(m.coordinator, datasources, opts...)
}

// SyncCommand returns the go-command handler for dispatch-based sync runs.
func (m *Module) SyncCommand() *synccmd.SyncDatasourceHandler {
	return m.syncHandler
}

// LoggerProvider exposes the provider so hosts can share module namespaces.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	return m.provider
}
