package sheets

import (
	"context"

	"masjid/internal/records"
)

// Ports for outbound adapters.
type (
	// RecordAppender mirrors a stored record as one ledger row.
	RecordAppender interface {
		// AppendRecord writes record to the tab of kind and returns the updated range.
		AppendRecord(ctx context.Context, kind records.Kind, record any) (rowRef string, err error)
	}
)
