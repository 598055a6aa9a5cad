package retrieval

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-pagesync/internal/logging"
	"github.com/goliatone/go-pagesync/internal/store"
	"github.com/goliatone/go-pagesync/pkg/interfaces"
)

// ErrSlugRequired indicates a blank slug argument.
var ErrSlugRequired = errors.New("retrieval: slug is required")

// ErrStoreRequired indicates a service constructed without a page store.
var ErrStoreRequired = errors.New("retrieval: page store is required")

// Post is a stored page composed with its rendered body. HTML and TOC stay
// empty when rendering was not requested or the page has no content.
type Post struct {
	Page *store.Page           `json:"page"`
	HTML string                `json:"html,omitempty"`
	TOC  []interfaces.TOCEntry `json:"toc,omitempty"`
}

// Service is the read side: listing, slug lookup with render composition,
// and best-effort search. Writes only happen through the sync coordinator.
type Service struct {
	store      store.PageStore
	renderer   interfaces.MarkdownRenderer
	logger     interfaces.Logger
	renderOpts interfaces.RenderOptions
}

// Option configures a Service.
type Option func(*Service)

// WithRenderer attaches the markdown renderer used to compose post bodies.
// Without one, slug lookups return the raw page only.
func WithRenderer(renderer interfaces.MarkdownRenderer) Option {
	return func(s *Service) {
		s.renderer = renderer
	}
}

// WithRenderOptions sets the default render options for composed posts.
func WithRenderOptions(opts interfaces.RenderOptions) Option {
	return func(s *Service) {
		s.renderOpts = opts
	}
}

// WithLogger injects the retrieval logger. Defaults to a no-op logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService builds the read-side service over the given store.
func NewService(pageStore store.PageStore, opts ...Option) (*Service, error) {
	if pageStore == nil {
		return nil, ErrStoreRequired
	}
	s := &Service{
		store:  pageStore,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GetAllPosts lists stored pages ordered by recency. Options bound the page
// size; the store enforces its hard cap regardless of what callers ask for.
func (s *Service) GetAllPosts(ctx context.Context, opts store.ListOptions) ([]*store.Page, error) {
	return s.store.List(ctx, opts)
}

// GetPostBySlug resolves a slug inside a datasource and composes the
// rendered body. A caller-supplied RenderOptions overrides the service
// defaults for that request only. Rendering failures degrade to the raw
// page rather than hiding a stored document behind a renderer bug.
func (s *Service) GetPostBySlug(ctx context.Context, datasourceID, slugValue string, renderOpts ...interfaces.RenderOptions) (*Post, error) {
	if strings.TrimSpace(slugValue) == "" {
		return nil, ErrSlugRequired
	}

	page, err := s.store.GetBySlug(ctx, datasourceID, slugValue)
	if err != nil {
		return nil, err
	}

	post := &Post{Page: page}
	if s.renderer == nil || page.Content == nil || *page.Content == "" {
		return post, nil
	}

	opts := s.renderOpts
	if len(renderOpts) > 0 {
		opts = renderOpts[0]
	}

	result, err := s.renderer.Render(ctx, []byte(*page.Content), opts)
	if err != nil {
		s.logger.Error("retrieval.render.failed",
			"slug", slugValue,
			"page_id", page.PageID,
			"error", err,
		)
		return post, nil
	}
	post.HTML = result.HTML
	post.TOC = result.TOC
	return post, nil
}

// SearchQuickly runs a relevance-ranked lookup and degrades to an empty
// result when the store misbehaves. Search is advisory; a broken index
// should not take reads down with it.
func (s *Service) SearchQuickly(ctx context.Context, query string, limit int) []*store.Page {
	matches, err := s.store.Search(ctx, query, limit)
	if err != nil {
		s.logger.Warn("retrieval.search.degraded", "query", query, "error", err)
		return []*store.Page{}
	}
	if matches == nil {
		matches = []*store.Page{}
	}
	return matches
}
