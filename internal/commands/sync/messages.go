package synccmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const syncDatasourceMessageType = "pagesync.sync.datasource"

// SyncDatasourceCommand triggers one reconciliation pass for a datasource.
type SyncDatasourceCommand struct {
	// DatasourceID selects the tenant scope to reconcile.
	DatasourceID string `json:"datasource_id"`
}

// Type implements command.Message.
func (SyncDatasourceCommand) Type() string { return syncDatasourceMessageType }

// Validate ensures a datasource is named before handlers execute.
func (cmd SyncDatasourceCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.DatasourceID, validation.Required, validation.By(func(value any) error {
			if strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("pagesync.sync.datasource_required", "datasource_id is required")
			}
			return nil
		})),
	)
}
