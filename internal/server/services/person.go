package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/fieldreport/internal/common"
	"github.com/dmitrijs2005/fieldreport/internal/logging"
	"github.com/dmitrijs2005/fieldreport/internal/server/models"
	"github.com/dmitrijs2005/fieldreport/internal/server/repositories/repomanager"
)

// PersonService handles community-contact intake with the same idempotent
// creation contract as reports.
type PersonService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewPersonService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *PersonService {
	return &PersonService{
		db:          db,
		repomanager: m,
		log:         log.With("module", "people"),
	}
}

func (s *PersonService) Create(ctx context.Context, rec *models.Person) (string, error) {
	if err := validatePerson(rec); err != nil {
		return "", err
	}

	id, err := s.repomanager.People(s.db).Create(ctx, rec)
	if err != nil {
		return "", err
	}

	s.log.Info(ctx, "person stored", "id", id)
	return id, nil
}

// PersonPage is one page of contacts plus the listing totals.
type PersonPage struct {
	Items []*models.Person
	Total int
	Page  int
	Pages int
}

func (s *PersonService) List(ctx context.Context, page, limit int) (*PersonPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	repo := s.repomanager.People(s.db)

	total, err := repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	items, err := repo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	pages := (total + limit - 1) / limit

	return &PersonPage{Items: items, Total: total, Page: page, Pages: pages}, nil
}

func (s *PersonService) Delete(ctx context.Context, id string) error {
	return s.repomanager.People(s.db).Delete(ctx, id)
}

func validatePerson(rec *models.Person) error {
	switch {
	case rec.Name == "":
		return fmt.Errorf("%w: name is required", common.ErrValidation)
	case rec.IdempotencyKey == "":
		return fmt.Errorf("%w: idempotency key is required", common.ErrValidation)
	}
	return nil
}
