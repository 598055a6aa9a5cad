package store

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrPageIDRequired      = errors.New("store: page id is required")
	ErrDatasourceRequired  = errors.New("store: datasource id is required")
	ErrSlugRequired        = errors.New("store: slug is required")
	ErrSlugConflict        = errors.New("store: slug already owned by another page")
	ErrNotFound            = errors.New("store: not found")
	ErrStoreUnavailable    = errors.New("store: database not configured")
	ErrUpdatedAtRegression = errors.New("store: updated_at would move backward")
)

// NotFoundError reports a retrieval miss. It is a normal absent result, not
// an internal failure; callers map it to empty/404 responses.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return ErrNotFound.Error()
	}
	resource := strings.TrimSpace(e.Resource)
	if resource == "" {
		resource = "record"
	}
	if key := strings.TrimSpace(e.Key); key != "" {
		return fmt.Sprintf("%s: %s %q", ErrNotFound.Error(), resource, key)
	}
	return fmt.Sprintf("%s: %s", ErrNotFound.Error(), resource)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// SlugConflictError reports an upsert that would give two pages the same
// slug under one datasource. The original row is left untouched.
type SlugConflictError struct {
	DatasourceID string
	Slug         string
	PageID       string
	OwnerPageID  string
}

func (e *SlugConflictError) Error() string {
	if e == nil {
		return ErrSlugConflict.Error()
	}
	return fmt.Sprintf("%s: datasource=%s slug=%s owner=%s", ErrSlugConflict.Error(), e.DatasourceID, e.Slug, e.OwnerPageID)
}

func (e *SlugConflictError) Unwrap() error {
	return ErrSlugConflict
}

// IsNotFound reports whether err represents a retrieval miss.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsSlugConflict reports whether err represents a slug ownership conflict.
func IsSlugConflict(err error) bool {
	return errors.Is(err, ErrSlugConflict)
}
