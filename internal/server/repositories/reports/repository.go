package reports

import (
	"context"

	"github.com/dmitrijs2005/fieldreport/internal/server/models"
)

// Repository persists incident reports. Create is idempotent on the client
// supplied idempotency key: re-submitting the same capture returns the id of
// the already stored row instead of inserting a duplicate.
type Repository interface {
	Create(ctx context.Context, r *models.Report) (string, error)
	GetByID(ctx context.Context, id string) (*models.Report, error)
	List(ctx context.Context, limit, offset int) ([]*models.Report, error)
	Count(ctx context.Context) (int, error)
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
}
