package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-pagesync/internal/markdown"
	"github.com/goliatone/go-pagesync/internal/store"
	"github.com/goliatone/go-pagesync/pkg/interfaces"
)

func strPtr(s string) *string { return &s }

func seedPage(t *testing.T, pages *store.MemoryPageStore, pageID, slug, content string) {
	t.Helper()
	_, err := pages.Upsert(context.Background(), &store.Page{
		PageID:       pageID,
		DatasourceID: "tenant-a",
		Title:        "Page " + pageID,
		Slug:         slug,
		Content:      strPtr(content),
	})
	if err != nil {
		t.Fatalf("seed %s: %v", pageID, err)
	}
}

func TestGetAllPosts(t *testing.T) {
	pages := store.NewMemoryPageStore()
	seedPage(t, pages, "pg_1", "one", "alpha")
	seedPage(t, pages, "pg_2", "two", "beta")

	svc, err := NewService(pages)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	posts, err := svc.GetAllPosts(context.Background(), store.ListOptions{DatasourceID: "tenant-a"})
	if err != nil {
		t.Fatalf("GetAllPosts: %v", err)
	}
	if len(posts) != 2 {
		t.Errorf("posts = %d", len(posts))
	}
}

func TestGetPostBySlugComposesRenderedBody(t *testing.T) {
	pages := store.NewMemoryPageStore()
	seedPage(t, pages, "pg_doc", "doc", "# Title\n\n## Section\n\nbody\n")

	svc, err := NewService(pages,
		WithRenderer(markdown.NewGoldmarkRenderer(interfaces.RenderOptions{})),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	post, err := svc.GetPostBySlug(context.Background(), "tenant-a", "doc")
	if err != nil {
		t.Fatalf("GetPostBySlug: %v", err)
	}
	if !strings.Contains(post.HTML, "<h1") {
		t.Errorf("html = %q", post.HTML)
	}
	if len(post.TOC) != 2 {
		t.Errorf("toc = %+v", post.TOC)
	}
	if post.Page.PageID != "pg_doc" {
		t.Errorf("page = %+v", post.Page)
	}
}

func TestGetPostBySlugHonorsPerRequestRenderOptions(t *testing.T) {
	pages := store.NewMemoryPageStore()
	seedPage(t, pages, "pg_raw", "raw", "<script>alert(1)</script>\n\n# Title\n")

	svc, err := NewService(pages,
		WithRenderer(markdown.NewGoldmarkRenderer(interfaces.RenderOptions{})),
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	ctx := context.Background()

	post, err := svc.GetPostBySlug(ctx, "tenant-a", "raw")
	if err != nil {
		t.Fatalf("default render: %v", err)
	}
	if !strings.Contains(post.HTML, "<script>") {
		t.Errorf("default options should pass raw HTML through:\n%s", post.HTML)
	}

	post, err = svc.GetPostBySlug(ctx, "tenant-a", "raw", interfaces.RenderOptions{SafeMode: true})
	if err != nil {
		t.Fatalf("safe render: %v", err)
	}
	if strings.Contains(post.HTML, "<script>") {
		t.Errorf("per-request SafeMode should suppress raw HTML:\n%s", post.HTML)
	}
	if !strings.Contains(post.HTML, "<h1") {
		t.Errorf("markdown body should still render:\n%s", post.HTML)
	}
}

func TestGetPostBySlugWithoutRenderer(t *testing.T) {
	pages := store.NewMemoryPageStore()
	seedPage(t, pages, "pg_doc", "doc", "# Title")

	svc, err := NewService(pages)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	post, err := svc.GetPostBySlug(context.Background(), "tenant-a", "doc")
	if err != nil {
		t.Fatalf("GetPostBySlug: %v", err)
	}
	if post.HTML != "" || post.TOC != nil {
		t.Errorf("raw post expected, got html=%q toc=%v", post.HTML, post.TOC)
	}
}

func TestGetPostBySlugMisses(t *testing.T) {
	pages := store.NewMemoryPageStore()
	svc, err := NewService(pages)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	if _, err := svc.GetPostBySlug(context.Background(), "tenant-a", "ghost"); !store.IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
	if _, err := svc.GetPostBySlug(context.Background(), "tenant-a", "  "); !errors.Is(err, ErrSlugRequired) {
		t.Errorf("blank slug: %v", err)
	}
}

type failingRenderer struct{}

func (failingRenderer) Render(context.Context, []byte, interfaces.RenderOptions) (interfaces.RenderResult, error) {
	return interfaces.RenderResult{}, errors.New("renderer exploded")
}

func TestGetPostBySlugDegradesOnRenderFailure(t *testing.T) {
	pages := store.NewMemoryPageStore()
	seedPage(t, pages, "pg_doc", "doc", "# Title")

	svc, err := NewService(pages, WithRenderer(failingRenderer{}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	post, err := svc.GetPostBySlug(context.Background(), "tenant-a", "doc")
	if err != nil {
		t.Fatalf("GetPostBySlug: %v", err)
	}
	if post.HTML != "" {
		t.Errorf("render failure should yield raw post, html=%q", post.HTML)
	}
}

type failingStore struct {
	store.PageStore
}

func (failingStore) Search(context.Context, string, int) ([]*store.Page, error) {
	return nil, errors.New("index offline")
}

func TestSearchQuicklyDegradesToEmpty(t *testing.T) {
	svc, err := NewService(failingStore{PageStore: store.NewMemoryPageStore()})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	matches := svc.SearchQuickly(context.Background(), "anything", 5)
	if matches == nil || len(matches) != 0 {
		t.Errorf("expected empty slice, got %v", matches)
	}
}

func TestSearchQuicklyRanksMatches(t *testing.T) {
	pages := store.NewMemoryPageStore()
	seedPage(t, pages, "pg_light", "light", "needle once")
	seedPage(t, pages, "pg_heavy", "heavy", "needle needle needle")

	svc, err := NewService(pages)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	matches := svc.SearchQuickly(context.Background(), "needle", 5)
	if len(matches) != 2 {
		t.Fatalf("matches = %d", len(matches))
	}
	if matches[0].PageID != "pg_heavy" {
		t.Errorf("ranking order: %s first", matches[0].PageID)
	}
}
