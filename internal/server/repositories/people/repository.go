package people

import (
	"context"

	"github.com/dmitrijs2005/fieldreport/internal/server/models"
)

// Repository persists community contacts with the same idempotent-create
// contract as the report repository.
type Repository interface {
	Create(ctx context.Context, p *models.Person) (string, error)
	List(ctx context.Context, limit, offset int) ([]*models.Person, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
}
