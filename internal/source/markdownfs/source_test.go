package markdownfs

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-pagesync/pkg/interfaces"
)

func fixtureFS() fstest.MapFS {
	return fstest.MapFS{
		"guides/install.md": &fstest.MapFile{Data: []byte(`---
id: guide-install
title: Install Guide
slug: install
publish_at: "2024-02-01T09:00:00Z"
tags:
  - setup
  - docs
authors:
  - ana
lang: en
---
# Install

Steps here.
`)},
		"notes/draft.md": &fstest.MapFile{Data: []byte(`---
title: WIP
draft: true
---
not ready
`)},
		"README.txt": &fstest.MapFile{Data: []byte("ignored")},
	}
}

func TestFetchParsesDocuments(t *testing.T) {
	src := New(fixtureFS(), Config{})

	result, err := src.Fetch(context.Background(), interfaces.FetchRequest{DatasourceID: "tenant-a"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(result.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(result.Records))
	}
	if result.NextCursor != "" {
		t.Errorf("filesystem source must always report a full set, cursor = %q", result.NextCursor)
	}

	guide := result.Records[0]
	if guide.PageID != "guide-install" || guide.Slug != "install" {
		t.Errorf("guide identity: %+v", guide)
	}
	if guide.DatasourceID != "tenant-a" {
		t.Errorf("datasource = %q", guide.DatasourceID)
	}
	if guide.Title != "Install Guide" {
		t.Errorf("title = %q", guide.Title)
	}
	if guide.PublishAt == nil || *guide.PublishAt != "2024-02-01T09:00:00Z" {
		t.Errorf("publish_at = %v", guide.PublishAt)
	}
	if len(guide.Tags) != 2 || guide.Tags[0] != "setup" {
		t.Errorf("tags = %v", guide.Tags)
	}
	if len(guide.Authors) != 1 || guide.Authors[0] != "ana" {
		t.Errorf("authors = %v", guide.Authors)
	}
	if guide.Meta["lang"] != "en" {
		t.Errorf("meta = %v", guide.Meta)
	}
	if guide.Content == nil || len(*guide.Content) == 0 {
		t.Error("content missing")
	}
}

func TestFetchDerivesIdentityFromPath(t *testing.T) {
	src := New(fixtureFS(), Config{})

	result, err := src.Fetch(context.Background(), interfaces.FetchRequest{DatasourceID: "tenant-a"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	draft := result.Records[1]
	if draft.PageID != "notes/draft" {
		t.Errorf("page id = %q", draft.PageID)
	}
	if draft.Slug != "notes/draft" {
		t.Errorf("slug = %q", draft.Slug)
	}
	if draft.PublishAt != nil {
		t.Error("drafts must not carry a publish date")
	}
}

func TestFetchRejectsBrokenFrontmatter(t *testing.T) {
	broken := fstest.MapFS{
		"bad.md": &fstest.MapFile{Data: []byte("---\ntitle: [unclosed\n---\nbody\n")},
	}
	src := New(broken, Config{})

	if _, err := src.Fetch(context.Background(), interfaces.FetchRequest{DatasourceID: "tenant-a"}); err == nil {
		t.Fatal("expected parse error")
	}
}
