package ingest

import (
	"errors"
	"testing"

	"github.com/goliatone/go-pagesync/pkg/interfaces"
)

func strPtr(s string) *string { return &s }

func TestTransformMapsRecord(t *testing.T) {
	record := interfaces.ExternalRecord{
		PageID:       "pg_123",
		DatasourceID: "tenant-a",
		Title:        "  Release Notes  ",
		Slug:         "Release Notes",
		Content:      strPtr("# Hello"),
		PublishAt:    strPtr("2024-03-01T10:00:00Z"),
		Tags:         []any{"go", 42, "infra"},
		Authors:      []any{"ana"},
		Meta:         map[string]any{"lang": "en"},
	}

	page, err := Transform(record)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if page.Title != "Release Notes" {
		t.Errorf("title = %q", page.Title)
	}
	if page.Slug != "release-notes" {
		t.Errorf("slug = %q", page.Slug)
	}
	if page.Content == nil || *page.Content != "# Hello" {
		t.Errorf("content = %v", page.Content)
	}
	if page.PublishAt == nil || page.PublishAt.Format("2006-01-02") != "2024-03-01" {
		t.Errorf("publish_at = %v", page.PublishAt)
	}
	if len(page.Tags) != 2 || page.Tags[0] != "go" || page.Tags[1] != "infra" {
		t.Errorf("non-string tags should be dropped, got %v", page.Tags)
	}
	if page.Meta["lang"] != "en" {
		t.Errorf("meta = %v", page.Meta)
	}
}

func TestTransformIsDeterministic(t *testing.T) {
	record := interfaces.ExternalRecord{
		PageID:       "pg_det",
		DatasourceID: "tenant-a",
		Slug:         "stable",
	}

	first, err := Transform(record)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	second, err := Transform(record)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if first.ID != second.ID {
		t.Errorf("row id drifted: %s vs %s", first.ID, second.ID)
	}
}

func TestTransformRejectsMissingKeys(t *testing.T) {
	cases := []struct {
		name   string
		record interfaces.ExternalRecord
		field  string
	}{
		{
			name:   "missing page id",
			record: interfaces.ExternalRecord{DatasourceID: "tenant-a", Slug: "s"},
			field:  "page_id",
		},
		{
			name:   "blank datasource",
			record: interfaces.ExternalRecord{PageID: "pg", DatasourceID: "  ", Slug: "s"},
			field:  "datasource_id",
		},
		{
			name:   "missing slug",
			record: interfaces.ExternalRecord{PageID: "pg", DatasourceID: "tenant-a"},
			field:  "slug",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Transform(tc.record)
			var verr *RecordValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected RecordValidationError, got %v", err)
			}
			if verr.Field != tc.field {
				t.Errorf("field = %q, want %q", verr.Field, tc.field)
			}
			if !errors.Is(err, ErrRecordInvalid) {
				t.Error("should unwrap to ErrRecordInvalid")
			}
		})
	}
}

func TestTransformRejectsBadTimestamp(t *testing.T) {
	record := interfaces.ExternalRecord{
		PageID:       "pg_bad_ts",
		DatasourceID: "tenant-a",
		Slug:         "ok",
		PublishAt:    strPtr("next tuesday"),
	}

	_, err := Transform(record)
	var verr *RecordValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected RecordValidationError, got %v", err)
	}
	if verr.Field != "publish_at" {
		t.Errorf("field = %q", verr.Field)
	}
}

func TestTransformAcceptsDateOnlyTimestamp(t *testing.T) {
	record := interfaces.ExternalRecord{
		PageID:       "pg_date",
		DatasourceID: "tenant-a",
		Slug:         "ok",
		PublishAt:    strPtr("2024-01-15"),
	}

	page, err := Transform(record)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if page.PublishAt == nil {
		t.Fatal("publish_at should be set")
	}
}

func TestTransformLeavesTitleEmpty(t *testing.T) {
	record := interfaces.ExternalRecord{
		PageID:       "pg_untitled",
		DatasourceID: "tenant-a",
		Slug:         "untitled-draft",
	}

	page, err := Transform(record)
	if err != nil {
		t.Fatalf("Transform: %v", err)
	}
	if page.Title != "" {
		t.Errorf("title should pass through empty, got %q", page.Title)
	}
	if page.Tags == nil || page.Authors == nil || page.Meta == nil {
		t.Error("absent containers should normalize to empty, not nil")
	}
}
