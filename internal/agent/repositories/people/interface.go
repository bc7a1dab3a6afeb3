package people

import (
	"context"

	"github.com/dmitrijs2005/fieldreport/internal/agent/models"
)

// Repository is the durable holding area for person records. It mirrors the
// report repository: same bookkeeping, same sync-state queries.
type Repository interface {
	Add(ctx context.Context, p *models.Person) (int64, error)
	ListPending(ctx context.Context) ([]*models.Person, error)
	CountPending(ctx context.Context) (int, error)
	MarkSynced(ctx context.Context, localKey int64, remoteID string) error
	MarkRejected(ctx context.Context, localKey int64, reason string) error
	ListAll(ctx context.Context) ([]*models.Person, error)
	Delete(ctx context.Context, localKey int64) error
}
