package ingest

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	slug "github.com/goliatone/go-slug"

	"github.com/goliatone/go-pagesync/internal/identity"
	"github.com/goliatone/go-pagesync/internal/store"
	"github.com/goliatone/go-pagesync/pkg/interfaces"
)

// publishAtLayouts lists accepted timestamp shapes for publish_at, tried in
// order. Sources disagree on precision; date-only values are common.
var publishAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
}

// Transform maps an external record into the canonical Page. It is a pure
// function: no I/O, deterministic for identical input. Missing page_id,
// datasource, or slug rejects the record; a missing title is passed through
// empty because the placeholder policy belongs to the caller. Absent
// tags/authors/meta normalize to empty containers; content is never
// invented or altered.
func Transform(record interfaces.ExternalRecord) (*store.Page, error) {
	if err := validateRecord(&record); err != nil {
		return nil, err
	}

	normalizedSlug, err := slug.Normalize(record.Slug)
	if err != nil || strings.TrimSpace(normalizedSlug) == "" {
		return nil, &RecordValidationError{
			PageID: record.PageID,
			Field:  "slug",
			Reason: "slug cannot be normalized",
		}
	}

	publishAt, err := parsePublishAt(record.PublishAt)
	if err != nil {
		return nil, &RecordValidationError{
			PageID: record.PageID,
			Field:  "publish_at",
			Reason: err.Error(),
		}
	}

	page := &store.Page{
		ID:           identity.PageUUID(record.PageID),
		PageID:       strings.TrimSpace(record.PageID),
		DatasourceID: strings.TrimSpace(record.DatasourceID),
		Title:        strings.TrimSpace(record.Title),
		Slug:         normalizedSlug,
		PublishAt:    publishAt,
		Tags:         stringTags(record.Tags),
		Authors:      append([]any{}, record.Authors...),
		Meta:         cloneMeta(record.Meta),
	}
	if record.Content != nil {
		content := *record.Content
		page.Content = &content
	}
	return page, nil
}

func validateRecord(record *interfaces.ExternalRecord) error {
	err := validation.ValidateStruct(record,
		validation.Field(&record.PageID, validation.Required, validation.By(notBlank)),
		validation.Field(&record.DatasourceID, validation.Required, validation.By(notBlank)),
		validation.Field(&record.Slug, validation.Required, validation.By(notBlank)),
	)
	if err == nil {
		return nil
	}

	if fieldErrors, ok := err.(validation.Errors); ok {
		for _, field := range []string{"PageID", "DatasourceID", "Slug"} {
			if fieldErr, found := fieldErrors[field]; found {
				return &RecordValidationError{
					PageID: record.PageID,
					Field:  snakeField(field),
					Reason: fieldErr.Error(),
				}
			}
		}
	}
	return &RecordValidationError{PageID: record.PageID, Reason: err.Error()}
}

func notBlank(value any) error {
	str, _ := value.(string)
	if strings.TrimSpace(str) == "" {
		return validation.NewError("pagesync.record.blank", "cannot be blank")
	}
	return nil
}

func snakeField(field string) string {
	switch field {
	case "PageID":
		return "page_id"
	case "DatasourceID":
		return "datasource_id"
	default:
		return strings.ToLower(field)
	}
}

func parsePublishAt(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil, nil
	}
	for _, layout := range publishAtLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			utc := parsed.UTC()
			return &utc, nil
		}
	}
	return nil, fmt.Errorf("unrecognized timestamp %q", value)
}

// stringTags keeps string tag values and drops everything else silently.
// Duplicates are preserved; consumers deduplicate.
func stringTags(raw []any) []string {
	tags := make([]string, 0, len(raw))
	for _, value := range raw {
		if tag, ok := value.(string); ok {
			tags = append(tags, tag)
		}
	}
	return tags
}

func cloneMeta(meta map[string]any) map[string]any {
	out := make(map[string]any, len(meta))
	for key, value := range meta {
		out[key] = value
	}
	return out
}
