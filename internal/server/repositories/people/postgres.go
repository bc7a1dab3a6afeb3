package people

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

func (r *PostgresRepository) Create(ctx context.Context, rec *models.Person) (string, error) {

	query :=
		`INSERT INTO people (idempotency_key, name, role, phone, community, reported_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (idempotency_key) DO NOTHING
		 RETURNING id
		 `

	var id string
	err := r.db.QueryRowContext(ctx, query,
		rec.IdempotencyKey, rec.Name, rec.Role, rec.Phone, rec.Community, rec.Timestamp).Scan(&id)

	if errors.Is(err, sql.ErrNoRows) {
		err = r.db.QueryRowContext(ctx,
			`SELECT id FROM people WHERE idempotency_key = $1`, rec.IdempotencyKey).Scan(&id)
	}
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}

	rec.ID = id
	return id, nil
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]*models.Person, error) {
	query :=
		`SELECT id, idempotency_key, name, role, phone, community, reported_at
		 FROM people
		 ORDER BY reported_at DESC
		 LIMIT $1 OFFSET $2
		 `

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Person
	for rows.Next() {
		rec := &models.Person{}
		if err := rows.Scan(
			&rec.ID, &rec.IdempotencyKey, &rec.Name, &rec.Role, &rec.Phone, &rec.Community, &rec.Timestamp); err != nil {
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
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM people`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM people WHERE id = $1`, id)
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
