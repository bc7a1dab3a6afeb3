package reports

import (
	"context"

	"github.com/dmitrijs2005/fieldreport/internal/agent/models"
)

// Repository is the durable holding area for report records, queryable by
// sync state. Implementations are backed by the agent's local SQLite database.
type Repository interface {
	// Add inserts a new record with sync_state=pending and no remote id,
	// returning the store-assigned local key. Storage failures propagate to
	// the caller so the capture flow can warn the user.
	Add(ctx context.Context, r *models.Report) (int64, error)

	// ListPending returns all pending records in insertion order (oldest
	// first) to keep the retry sequence fair and predictable.
	ListPending(ctx context.Context) ([]*models.Report, error)

	// CountPending returns the number of pending records.
	CountPending(ctx context.Context) (int, error)

	// MarkSynced atomically flips the record to synced and stores the
	// server-assigned id. Calling it twice with the same arguments is a
	// no-op; a record deleted while its submission was in flight is
	// tolerated silently.
	MarkSynced(ctx context.Context, localKey int64, remoteID string) error

	// MarkRejected flags a permanently refused record so it leaves the
	// retry set but stays visible for manual review.
	MarkRejected(ctx context.Context, localKey int64, reason string) error

	// ListAll returns every record, newest capture first, for display.
	ListAll(ctx context.Context) ([]*models.Report, error)

	// Delete removes a record. Sync attempts in flight for the deleted key
	// are tolerated by MarkSynced.
	Delete(ctx context.Context, localKey int64) error
}
