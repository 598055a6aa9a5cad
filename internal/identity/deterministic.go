package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// PageUUID derives the stable row id for an externally assigned page id.
// The external id is globally unique, so repeated syncs always address the
// same row regardless of datasource.
func PageUUID(pageID string) uuid.UUID {
	return UUID("go-pagesync:page:" + strings.TrimSpace(pageID))
}

// CursorUUID derives the stable row id for a datasource sync cursor.
func CursorUUID(datasourceID string) uuid.UUID {
	return UUID("go-pagesync:cursor:" + strings.TrimSpace(datasourceID))
}
