package reports

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fieldreport/internal/common"
	"github.com/dmitrijs2005/fieldreport/internal/dbx"
	"github.com/dmitrijs2005/fieldreport/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts the report and returns its id. When a row with the same
// idempotency key already exists, the insert is skipped and the existing id
// is returned, so a client retry after a lost response cannot duplicate.
func (r *PostgresRepository) Create(ctx context.Context, rec *models.Report) (string, error) {

	query :=
		`INSERT INTO reports (idempotency_key, municipio, comunidad, lat, lng, need_type,
		                      description, evidence_base64, evidence_key, status, reported_by, reported_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (idempotency_key) DO NOTHING
		 RETURNING id
		 `

	status := rec.Status
	if status == "" {
		status = models.StatusPending
	}

	var id string
	err := r.db.QueryRowContext(ctx, query,
		rec.IdempotencyKey, rec.Municipio, rec.Comunidad, rec.Lat, rec.Lng, rec.NeedType,
		rec.Description, rec.EvidenceBase64, rec.EvidenceKey, status, rec.ReportedBy, rec.Timestamp).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		// duplicate submission: hand back the id stored the first time
		err = r.db.QueryRowContext(ctx,
			`SELECT id FROM reports WHERE idempotency_key = $1`, rec.IdempotencyKey).Scan(&id)
	}
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}

	rec.ID = id
	return id, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	query :=
		`SELECT id, idempotency_key, municipio, comunidad, lat, lng, need_type,
		        description, evidence_base64, evidence_key, status, reported_by, reported_at
		 FROM reports
		 WHERE id = $1
		 `

	rec := &models.Report{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.IdempotencyKey, &rec.Municipio, &rec.Comunidad, &rec.Lat, &rec.Lng, &rec.NeedType,
		&rec.Description, &rec.EvidenceBase64, &rec.EvidenceKey, &rec.Status, &rec.ReportedBy, &rec.Timestamp)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return rec, nil
}

// List returns one page of reports, newest first.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*models.Report, error) {
	query :=
		`SELECT id, idempotency_key, municipio, comunidad, lat, lng, need_type,
		        description, evidence_base64, evidence_key, status, reported_by, reported_at
		 FROM reports
		 ORDER BY reported_at DESC
		 LIMIT $1 OFFSET $2
		 `

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Report
	for rows.Next() {
		rec := &models.Report{}
		if err := rows.Scan(
			&rec.ID, &rec.IdempotencyKey, &rec.Municipio, &rec.Comunidad, &rec.Lat, &rec.Lng, &rec.NeedType,
			&rec.Description, &rec.EvidenceBase64, &rec.EvidenceKey, &rec.Status, &rec.ReportedBy, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return out, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE reports SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
