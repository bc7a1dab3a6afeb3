package users

import (
	"context"

	"github.com/dmitrijs2005/fieldreport/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	Count(ctx context.Context) (int, error)
}
