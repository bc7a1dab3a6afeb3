// Package people provides the SQLite-backed durable queue for person
// records awaiting synchronization.
package people

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/fieldreport/internal/agent/models"
	"github.com/dmitrijs2005/fieldreport/internal/common"
	"github.com/dmitrijs2005/fieldreport/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Add(ctx context.Context, rec *models.Person) (int64, error) {
	query := `INSERT INTO people (idempotency_key, captured_at, name, role, phone, community)
			VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		rec.IdempotencyKey, rec.CapturedAt.UnixMilli(), rec.Name, rec.Role, rec.Phone, rec.Community)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to insert person: %w", common.ErrStorage, err)
	}
	key, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get local key: %w", common.ErrStorage, err)
	}
	rec.LocalKey = key
	rec.SyncState = models.SyncStatePending
	return key, nil
}

const selectColumns = `local_key, remote_id, sync_state, last_error, idempotency_key, captured_at,
		name, role, phone, community`

func (r *SQLiteRepository) ListPending(ctx context.Context) ([]*models.Person, error) {
	query := `SELECT ` + selectColumns + ` FROM people WHERE sync_state=0 ORDER BY local_key ASC`
	return r.selectPeople(ctx, query)
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]*models.Person, error) {
	query := `SELECT ` + selectColumns + ` FROM people ORDER BY captured_at DESC, local_key DESC`
	return r.selectPeople(ctx, query)
}

func (r *SQLiteRepository) selectPeople(ctx context.Context, query string, args ...any) ([]*models.Person, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select people: %w", err)
	}
	defer rows.Close()

	var result []*models.Person
	for rows.Next() {
		item := &models.Person{}
		var remoteID sql.NullString
		var capturedAt int64
		if err := rows.Scan(
			&item.LocalKey, &remoteID, &item.SyncState, &item.LastError, &item.IdempotencyKey,
			&capturedAt, &item.Name, &item.Role, &item.Phone, &item.Community,
		); err != nil {
			return nil, err
		}
		item.RemoteID = remoteID.String
		item.CapturedAt = time.UnixMilli(capturedAt)
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM people WHERE sync_state=0`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending people: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, localKey int64, remoteID string) error {
	var existing sql.NullString
	var state models.SyncState
	err := r.db.QueryRowContext(ctx,
		`SELECT remote_id, sync_state FROM people WHERE local_key=?`, localKey).
		Scan(&existing, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load person %d: %w", localKey, err)
	}

	if state == models.SyncStateSynced {
		if existing.String == remoteID {
			return nil
		}
		return fmt.Errorf("person %d already synced as %q: %w", localKey, existing.String, common.ErrRemoteIDConflict)
	}

	var taken bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM people WHERE remote_id=? AND local_key<>?)`, remoteID, localKey).
		Scan(&taken)
	if err != nil {
		return fmt.Errorf("failed to check remote id %q: %w", remoteID, err)
	}
	if taken {
		return fmt.Errorf("remote id %q: %w", remoteID, common.ErrRemoteIDConflict)
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE people SET sync_state=1, remote_id=?, last_error='' WHERE local_key=?`,
		remoteID, localKey)
	if err != nil {
		return fmt.Errorf("failed to mark person %d synced: %w", localKey, err)
	}
	return nil
}

func (r *SQLiteRepository) MarkRejected(ctx context.Context, localKey int64, reason string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE people SET sync_state=2, last_error=? WHERE local_key=? AND sync_state=0`,
		reason, localKey)
	if err != nil {
		return fmt.Errorf("failed to mark person %d rejected: %w", localKey, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, localKey int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM people WHERE local_key=?`, localKey)
	if err != nil {
		return fmt.Errorf("failed to delete person %d: %w", localKey, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrorNotFound
	}
	return nil
}
