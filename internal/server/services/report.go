package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/fieldreport/internal/common"
	"github.com/dmitrijs2005/fieldreport/internal/logging"
	"github.com/dmitrijs2005/fieldreport/internal/server/config"
	"github.com/dmitrijs2005/fieldreport/internal/server/models"
	"github.com/dmitrijs2005/fieldreport/internal/server/repositories/repomanager"
)

// EvidenceStore is the object-storage edge used for oversized evidence
// payloads. Satisfied by *evidence.Store.
type EvidenceStore interface {
	Put(ctx context.Context, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
	PresignGetURL(ctx context.Context, key string) (string, error)
}

// ReportService handles report intake and triage. Creation is idempotent on
// the client-supplied key: the same capture submitted twice yields one row
// and the same id both times.
type ReportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	evidence    EvidenceStore
	inlineLimit int
	log         logging.Logger
}

func NewReportService(db *sql.DB, m repomanager.RepositoryManager, ev EvidenceStore, cfg *config.Config, log logging.Logger) *ReportService {
	return &ReportService{
		db:          db,
		repomanager: m,
		evidence:    ev,
		inlineLimit: cfg.EvidenceInlineLimit,
		log:         log.With("module", "reports"),
	}
}

// Create validates and stores a report. Evidence beyond the inline limit is
// offloaded to object storage before the row is written, so the database
// never carries oversized payloads.
func (s *ReportService) Create(ctx context.Context, rec *models.Report) (string, error) {
	if err := validateReport(rec); err != nil {
		return "", err
	}

	if len(rec.EvidenceBase64) > s.inlineLimit {
		key, err := s.evidence.Put(ctx, []byte(rec.EvidenceBase64))
		if err != nil {
			return "", fmt.Errorf("error storing evidence: %w", err)
		}
		rec.EvidenceKey = key
		rec.EvidenceBase64 = ""
	}

	id, err := s.repomanager.Reports(s.db).Create(ctx, rec)
	if err != nil {
		return "", err
	}

	s.log.Info(ctx, "report stored", "id", id, "need_type", rec.NeedType)
	return id, nil
}

// Page is one page of reports plus the listing totals.
type Page struct {
	Items []*models.Report
	Total int
	Page  int
	Pages int
}

// List returns one page of reports, newest first, with presigned download
// URLs resolved for offloaded evidence.
func (s *ReportService) List(ctx context.Context, page, limit int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	repo := s.repomanager.Reports(s.db)

	total, err := repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	items, err := repo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	pages := (total + limit - 1) / limit

	return &Page{Items: items, Total: total, Page: page, Pages: pages}, nil
}

// EvidenceURL resolves a download URL for a report's offloaded evidence.
// Reports with inline (or no) evidence return an empty string.
func (s *ReportService) EvidenceURL(ctx context.Context, rec *models.Report) string {
	if rec.EvidenceKey == "" {
		return ""
	}
	url, err := s.evidence.PresignGetURL(ctx, rec.EvidenceKey)
	if err != nil {
		s.log.Warn(ctx, "failed to presign evidence url", "id", rec.ID, "error", err)
		return ""
	}
	return url
}

// UpdateStatus moves a report through triage.
func (s *ReportService) UpdateStatus(ctx context.Context, id, status string) error {
	switch status {
	case models.StatusPending, models.StatusInProgress, models.StatusResolved:
	default:
		return fmt.Errorf("%w: unknown status %q", common.ErrValidation, status)
	}
	return s.repomanager.Reports(s.db).UpdateStatus(ctx, id, status)
}

// Delete removes a report and its offloaded evidence, if any. A failed
// object-storage cleanup is logged but does not block the deletion.
func (s *ReportService) Delete(ctx context.Context, id string) error {
	repo := s.repomanager.Reports(s.db)

	rec, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := repo.Delete(ctx, id); err != nil {
		return err
	}

	if rec.EvidenceKey != "" {
		if err := s.evidence.Delete(ctx, rec.EvidenceKey); err != nil {
			s.log.Warn(ctx, "failed to delete evidence object", "id", id, "key", rec.EvidenceKey, "error", err)
		}
	}

	return nil
}

func validateReport(rec *models.Report) error {
	switch {
	case rec.Municipio == "":
		return fmt.Errorf("%w: municipio is required", common.ErrValidation)
	case rec.Comunidad == "":
		return fmt.Errorf("%w: comunidad is required", common.ErrValidation)
	case rec.NeedType == "":
		return fmt.Errorf("%w: needType is required", common.ErrValidation)
	case rec.Description == "":
		return fmt.Errorf("%w: description is required", common.ErrValidation)
	case rec.IdempotencyKey == "":
		return fmt.Errorf("%w: idempotency key is required", common.ErrValidation)
	}
	return nil
}
