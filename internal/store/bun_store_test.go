package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-pagesync/internal/store"
	"github.com/goliatone/go-pagesync/pkg/testsupport"
)

func newBunStore(t *testing.T) *store.BunPageStore {
	t.Helper()

	sqlDB, err := testsupport.NewSQLiteMemoryDB()
	if err != nil {
		t.Fatalf("new sqlite db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	bunDB := bun.NewDB(sqlDB, sqlitedialect.New())
	bunDB.SetMaxOpenConns(1)

	ctx := context.Background()
	if _, err := bunDB.NewCreateTable().Model((*store.Page)(nil)).IfNotExists().Exec(ctx); err != nil {
		t.Fatalf("create pages table: %v", err)
	}
	if _, err := bunDB.NewCreateTable().Model((*store.SyncCursor)(nil)).IfNotExists().Exec(ctx); err != nil {
		t.Fatalf("create sync_cursors table: %v", err)
	}

	return store.NewBunPageStore(bunDB)
}

func bunPage(pageID, slug string) *store.Page {
	content := "body for " + pageID
	publish := time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC)
	return &store.Page{
		PageID:       pageID,
		DatasourceID: "tenant-a",
		Title:        "Title " + pageID,
		Slug:         slug,
		Content:      &content,
		PublishAt:    &publish,
		Tags:         []string{"go"},
	}
}

func TestBunStoreUpsertCreatesAndUpdates(t *testing.T) {
	ctx := context.Background()
	pageStore := newBunStore(t)

	created, err := pageStore.Upsert(ctx, bunPage("pg_1", "first"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not set: %+v", created)
	}

	update := bunPage("pg_1", "first")
	update.Title = "Updated Title"
	updated, err := pageStore.Upsert(ctx, update)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("row identity changed: %s vs %s", updated.ID, created.ID)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("created_at moved: %v vs %v", updated.CreatedAt, created.CreatedAt)
	}

	got, err := pageStore.GetByID(ctx, "pg_1")
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.Title != "Updated Title" {
		t.Errorf("title = %q", got.Title)
	}
}

func TestBunStoreRejectsSlugConflicts(t *testing.T) {
	ctx := context.Background()
	pageStore := newBunStore(t)

	if _, err := pageStore.Upsert(ctx, bunPage("pg_owner", "shared")); err != nil {
		t.Fatalf("seed owner: %v", err)
	}

	_, err := pageStore.Upsert(ctx, bunPage("pg_rival", "shared"))
	if !store.IsSlugConflict(err) {
		t.Fatalf("expected slug conflict, got %v", err)
	}

	var conflict *store.SlugConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *SlugConflictError, got %T", err)
	}
	if conflict.OwnerPageID != "pg_owner" {
		t.Errorf("owner = %q", conflict.OwnerPageID)
	}

	other := bunPage("pg_other", "shared")
	other.DatasourceID = "tenant-b"
	if _, err := pageStore.Upsert(ctx, other); err != nil {
		t.Errorf("same slug in another datasource should land: %v", err)
	}
}

func TestBunStoreGetBySlugAndList(t *testing.T) {
	ctx := context.Background()
	pageStore := newBunStore(t)

	for _, p := range []*store.Page{bunPage("pg_1", "first"), bunPage("pg_2", "second")} {
		if _, err := pageStore.Upsert(ctx, p); err != nil {
			t.Fatalf("seed %s: %v", p.PageID, err)
		}
	}

	got, err := pageStore.GetBySlug(ctx, "tenant-a", "second")
	if err != nil {
		t.Fatalf("get by slug: %v", err)
	}
	if got.PageID != "pg_2" {
		t.Errorf("page_id = %q", got.PageID)
	}

	if _, err := pageStore.GetBySlug(ctx, "tenant-a", "missing"); !store.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}

	pages, err := pageStore.List(ctx, store.ListOptions{DatasourceID: "tenant-a"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pages) != 2 {
		t.Errorf("pages = %d", len(pages))
	}

	pages, err = pageStore.List(ctx, store.ListOptions{DatasourceID: "tenant-b"})
	if err != nil {
		t.Fatalf("list other tenant: %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("expected empty tenant, got %d", len(pages))
	}
}

func TestBunStoreSearch(t *testing.T) {
	ctx := context.Background()
	pageStore := newBunStore(t)

	match := bunPage("pg_match", "match")
	content := "this body mentions kubernetes twice: kubernetes"
	match.Content = &content
	other := bunPage("pg_other", "other")

	for _, p := range []*store.Page{match, other} {
		if _, err := pageStore.Upsert(ctx, p); err != nil {
			t.Fatalf("seed %s: %v", p.PageID, err)
		}
	}

	results, err := pageStore.Search(ctx, "Kubernetes", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].PageID != "pg_match" {
		t.Errorf("results = %+v", results)
	}

	results, err = pageStore.Search(ctx, "   ", 5)
	if err != nil {
		t.Fatalf("blank search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("blank query should match nothing, got %d", len(results))
	}
}

func TestBunStoreUnpublish(t *testing.T) {
	ctx := context.Background()
	pageStore := newBunStore(t)

	if _, err := pageStore.Upsert(ctx, bunPage("pg_1", "first")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	gone, err := pageStore.Unpublish(ctx, "pg_1")
	if err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if gone.PublishAt != nil {
		t.Errorf("publish_at = %v", gone.PublishAt)
	}

	got, err := pageStore.GetByID(ctx, "pg_1")
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.PublishAt != nil {
		t.Errorf("unpublish not persisted: %v", got.PublishAt)
	}

	if _, err := pageStore.Unpublish(ctx, "pg_missing"); !store.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestBunStoreCursors(t *testing.T) {
	ctx := context.Background()
	pageStore := newBunStore(t)

	cursor, err := pageStore.GetCursor(ctx, "tenant-a")
	if err != nil {
		t.Fatalf("get empty cursor: %v", err)
	}
	if cursor != "" {
		t.Errorf("cursor = %q", cursor)
	}

	if err := pageStore.SetCursor(ctx, "tenant-a", "cursor-1"); err != nil {
		t.Fatalf("set cursor: %v", err)
	}
	if err := pageStore.SetCursor(ctx, "tenant-a", "cursor-2"); err != nil {
		t.Fatalf("replace cursor: %v", err)
	}

	cursor, err = pageStore.GetCursor(ctx, "tenant-a")
	if err != nil {
		t.Fatalf("get cursor: %v", err)
	}
	if cursor != "cursor-2" {
		t.Errorf("cursor = %q", cursor)
	}
}
