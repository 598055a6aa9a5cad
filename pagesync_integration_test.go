package pagesync_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	pagesync "github.com/goliatone/go-pagesync"
	synccmd "github.com/goliatone/go-pagesync/internal/commands/sync"
	"github.com/goliatone/go-pagesync/internal/source"
	"github.com/goliatone/go-pagesync/pkg/interfaces"
)

func strPtr(s string) *string { return &s }

func fixtureRecords() []interfaces.ExternalRecord {
	return []interfaces.ExternalRecord{
		{
			PageID:       "pg_welcome",
			DatasourceID: "tenant-a",
			Title:        "Welcome",
			Slug:         "welcome",
			Content:      strPtr("# Welcome\n\n## Getting Started\n\nHello there.\n"),
			PublishAt:    strPtr("2024-01-15T09:00:00Z"),
			Tags:         []any{"intro"},
		},
		{
			PageID:       "pg_guide",
			DatasourceID: "tenant-a",
			Title:        "Guide",
			Slug:         "guide",
			Content:      strPtr("# Guide\n\nsearchable needle content\n"),
			PublishAt:    strPtr("2024-03-20T09:00:00Z"),
			Tags:         []any{"intro", "docs"},
		},
	}
}

func newModule(t *testing.T) *pagesync.Module {
	t.Helper()
	cfg := pagesync.DefaultConfig()
	cfg.Storage.Provider = "memory"
	cfg.Logging.Enabled = false
	cfg.BaseURL = "https://pages.example.test"

	module, err := pagesync.New(cfg,
		pagesync.WithSource(source.NewStaticSource("fixture", fixtureRecords(), 0)),
	)
	if err != nil {
		t.Fatalf("pagesync.New: %v", err)
	}
	return module
}

func TestModuleRequiresSource(t *testing.T) {
	cfg := pagesync.DefaultConfig()
	cfg.Storage.Provider = "memory"
	cfg.Logging.Enabled = false

	if _, err := pagesync.New(cfg); err != pagesync.ErrSourceRequired {
		t.Errorf("expected ErrSourceRequired, got %v", err)
	}
}

func TestModuleSyncAndRead(t *testing.T) {
	module := newModule(t)
	ctx := context.Background()

	report, err := module.Coordinator().SyncDatasource(ctx, "tenant-a")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if report.Created != 2 {
		t.Fatalf("created = %d", report.Created)
	}

	post, err := module.Retrieval().GetPostBySlug(ctx, "tenant-a", "welcome")
	if err != nil {
		t.Fatalf("GetPostBySlug: %v", err)
	}
	if !strings.Contains(post.HTML, "<h1") {
		t.Errorf("html = %q", post.HTML)
	}
	if len(post.TOC) != 2 {
		t.Errorf("toc = %+v", post.TOC)
	}

	matches := module.Retrieval().SearchQuickly(ctx, "needle", 5)
	if len(matches) != 1 || matches[0].PageID != "pg_guide" {
		t.Errorf("matches = %+v", matches)
	}
}

func TestModuleHTTPSurface(t *testing.T) {
	module := newModule(t)
	handler := module.HTTPHandler()

	do := func(method, target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
		return rec
	}

	if res := do(http.MethodPost, "/api/sync/tenant-a"); res.Code != http.StatusOK {
		t.Fatalf("sync status = %d body %s", res.Code, res.Body.String())
	}

	res := do(http.MethodGet, "/api/posts?ds=tenant-a")
	if res.Code != http.StatusOK {
		t.Fatalf("posts status = %d", res.Code)
	}
	var posts []*pagesync.Page
	if err := json.Unmarshal(res.Body.Bytes(), &posts); err != nil {
		t.Fatalf("decode posts: %v", err)
	}
	if len(posts) != 2 {
		t.Errorf("posts = %d", len(posts))
	}

	res = do(http.MethodGet, "/api/feed.atom?ds=tenant-a")
	if res.Code != http.StatusOK {
		t.Fatalf("feed status = %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "https://pages.example.test/posts/guide") {
		t.Errorf("feed links wrong:\n%s", res.Body.String())
	}

	res = do(http.MethodGet, "/api/tags?ds=tenant-a")
	if res.Code != http.StatusOK {
		t.Fatalf("tags status = %d", res.Code)
	}
	var counts []pagesync.TagCount
	if err := json.Unmarshal(res.Body.Bytes(), &counts); err != nil {
		t.Fatalf("decode tags: %v", err)
	}
	if len(counts) != 2 || counts[0].Name != "intro" || counts[0].Count != 2 {
		t.Errorf("counts = %+v", counts)
	}
}

func TestModuleSyncCommand(t *testing.T) {
	module := newModule(t)
	ctx := context.Background()

	cmd := synccmd.SyncDatasourceCommand{DatasourceID: "tenant-a"}
	if err := module.SyncCommand().Execute(ctx, cmd); err != nil {
		t.Fatalf("execute: %v", err)
	}

	report := module.SyncCommand().LastReport()
	if report == nil || report.Created != 2 {
		t.Errorf("report = %+v", report)
	}
}
