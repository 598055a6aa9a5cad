package ingest

import "time"

// Outcome classifies the result of ingesting one external record.
type Outcome string

const (
	OutcomeCreated        Outcome = "created"
	OutcomeUpdated        Outcome = "updated"
	OutcomeSkippedInvalid Outcome = "skipped-invalid"
	OutcomeConflict       Outcome = "conflict"
	OutcomeFailed         Outcome = "failed"
)

// RecordFailure captures why a single record did not land.
type RecordFailure struct {
	PageID  string  `json:"page_id"`
	Outcome Outcome `json:"outcome"`
	Reason  string  `json:"reason"`
}

// SyncReport summarizes one reconciliation pass for a datasource.
// Per-record failures are aggregated here and never propagate past the
// coordinator; only sync-level failures (source or store unreachable)
// surface as errors.
type SyncReport struct {
	DatasourceID   string          `json:"datasource_id"`
	Created        int             `json:"created"`
	Updated        int             `json:"updated"`
	SkippedInvalid int             `json:"skipped_invalid"`
	Conflicts      int             `json:"conflicts"`
	Failed         int             `json:"failed"`
	Tombstoned     int             `json:"tombstoned"`
	Failures       []RecordFailure `json:"failures,omitempty"`
	CursorAdvanced bool            `json:"cursor_advanced"`
	StartedAt      time.Time       `json:"started_at"`
	Duration       time.Duration   `json:"duration"`
}

// Total returns the number of records considered during the pass.
func (r *SyncReport) Total() int {
	if r == nil {
		return 0
	}
	return r.Created + r.Updated + r.SkippedInvalid + r.Conflicts + r.Failed
}

func (r *SyncReport) recordFailure(pageID string, outcome Outcome, reason string) {
	r.Failures = append(r.Failures, RecordFailure{
		PageID:  pageID,
		Outcome: outcome,
		Reason:  reason,
	})
}
