package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-pagesync/internal/feeds"
	"github.com/goliatone/go-pagesync/internal/ingest"
	"github.com/goliatone/go-pagesync/internal/logging"
	"github.com/goliatone/go-pagesync/internal/retrieval"
	"github.com/goliatone/go-pagesync/pkg/interfaces"
)

// Syncer triggers reconciliation passes.
type Syncer interface {
	SyncDatasource(ctx context.Context, datasourceID string) (*ingest.SyncReport, error)
}

// API exposes the engine over HTTP: a sync trigger plus the read surfaces
// for posts, search, feeds, and tag aggregates.
type API struct {
	basePath  string
	syncer    Syncer
	retrieval *retrieval.Service
	feeds     *feeds.Builder
	links     *feeds.LinkBuilder
	feedTitle string
	logger    interfaces.Logger
}

// Option mutates the API configuration.
type Option func(*API)

// NewAPI constructs an API instance.
func NewAPI(opts ...Option) *API {
	api := &API{
		basePath:  "/api",
		feedTitle: "Pages",
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// WithBasePath overrides the base API path (defaults to "/api").
func WithBasePath(path string) Option {
	return func(api *API) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithSyncer wires the sync coordinator.
func WithSyncer(syncer Syncer) Option {
	return func(api *API) {
		api.syncer = syncer
	}
}

// WithRetrievalService wires the read-side service.
func WithRetrievalService(service *retrieval.Service) Option {
	return func(api *API) {
		api.retrieval = service
	}
}

// WithFeedBuilder wires the Atom feed builder.
func WithFeedBuilder(builder *feeds.Builder) Option {
	return func(api *API) {
		api.feeds = builder
	}
}

// WithLinkBuilder wires the public URL builder used for self links.
func WithLinkBuilder(links *feeds.LinkBuilder) Option {
	return func(api *API) {
		api.links = links
	}
}

// WithFeedTitle sets the feed document title.
func WithFeedTitle(title string) Option {
	return func(api *API) {
		if trimmed := strings.TrimSpace(title); trimmed != "" {
			api.feedTitle = trimmed
		}
	}
}

// WithLogger injects the HTTP logger. Defaults to a no-op logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(api *API) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// Register attaches all routes to the provided mux.
func (api *API) Register(mux *http.ServeMux) {
	if api == nil || mux == nil {
		return
	}
	base := api.basePath

	mux.HandleFunc("POST "+joinPath(base, "sync/{datasource}"), api.handleSync)
	mux.HandleFunc("GET "+joinPath(base, "posts"), api.handlePostList)
	mux.HandleFunc("GET "+joinPath(base, "posts/{slug}"), api.handlePostGet)
	mux.HandleFunc("GET "+joinPath(base, "search"), api.handleSearch)
	mux.HandleFunc("GET "+joinPath(base, "feed.atom"), api.handleFeed)
	mux.HandleFunc("GET "+joinPath(base, "tags"), api.handleTags)
}

// Handler returns a mux with every route registered.
func (api *API) Handler() http.Handler {
	mux := http.NewServeMux()
	api.Register(mux)
	return mux
}
