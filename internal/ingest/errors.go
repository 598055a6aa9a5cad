package ingest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSyncInProgress     = errors.New("sync: already in progress for datasource")
	ErrDatasourceRequired = errors.New("sync: datasource id is required")
	ErrStoreRequired      = errors.New("sync: page store is required")
	ErrSourceRequired     = errors.New("sync: page source is required")
	ErrRecordInvalid      = errors.New("sync: record invalid")
	ErrAdapterFailure     = errors.New("sync: source fetch failed")
	ErrStoreFailure       = errors.New("sync: store unreachable")

	ErrCoordinatorRequired = errors.New("sync: coordinator is required")
	ErrNoDatasources       = errors.New("sync: poller needs at least one datasource")
)

// RecordValidationError reports a malformed external record. It is recorded
// in the SyncReport and never aborts the remaining records.
type RecordValidationError struct {
	PageID string
	Field  string
	Reason string
}

func (e *RecordValidationError) Error() string {
	if e == nil {
		return ErrRecordInvalid.Error()
	}
	parts := []string{ErrRecordInvalid.Error()}
	if field := strings.TrimSpace(e.Field); field != "" {
		parts = append(parts, "field="+field)
	}
	if reason := strings.TrimSpace(e.Reason); reason != "" {
		parts = append(parts, reason)
	}
	return strings.Join(parts, ": ")
}

func (e *RecordValidationError) Unwrap() error {
	return ErrRecordInvalid
}

// AdapterError wraps a failure at the external source boundary. It aborts
// the current sync attempt without advancing the cursor; the trigger layer
// decides on retry/backoff.
type AdapterError struct {
	Source string
	Err    error
}

func (e *AdapterError) Error() string {
	if e == nil {
		return ErrAdapterFailure.Error()
	}
	source := strings.TrimSpace(e.Source)
	if source == "" {
		source = "source"
	}
	return fmt.Sprintf("%s: %s: %v", ErrAdapterFailure.Error(), source, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return ErrAdapterFailure
}

// IsAdapterError reports whether err originated at the source boundary.
func IsAdapterError(err error) bool {
	return errors.Is(err, ErrAdapterFailure)
}

// IsRecordInvalid reports whether err is a per-record validation failure.
func IsRecordInvalid(err error) bool {
	return errors.Is(err, ErrRecordInvalid)
}
