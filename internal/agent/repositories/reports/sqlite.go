// Package reports provides the SQLite-backed durable queue for report
// records awaiting synchronization.
package reports

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

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Add(ctx context.Context, rec *models.Report) (int64, error) {
	query := `INSERT INTO reports
			(idempotency_key, captured_at, municipality, community, lat, lng, need_type, description, evidence_base64, author)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		rec.IdempotencyKey, rec.CapturedAt.UnixMilli(), rec.Municipality, rec.Community,
		rec.Location.Lat, rec.Location.Lng, string(rec.NeedType), rec.Description,
		rec.EvidenceBase64, rec.Author)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to insert report: %w", common.ErrStorage, err)
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
		municipality, community, lat, lng, need_type, description, evidence_base64, author`

func (r *SQLiteRepository) ListPending(ctx context.Context) ([]*models.Report, error) {
	query := `SELECT ` + selectColumns + ` FROM reports WHERE sync_state=0 ORDER BY local_key ASC`
	return r.selectReports(ctx, query)
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]*models.Report, error) {
	query := `SELECT ` + selectColumns + ` FROM reports ORDER BY captured_at DESC, local_key DESC`
	return r.selectReports(ctx, query)
}

func (r *SQLiteRepository) selectReports(ctx context.Context, query string, args ...any) ([]*models.Report, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select reports: %w", err)
	}
	defer rows.Close()

	var result []*models.Report
	for rows.Next() {
		item, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanReport(rows *sql.Rows) (*models.Report, error) {
	item := &models.Report{}
	var remoteID sql.NullString
	var capturedAt int64
	var needType string
	if err := rows.Scan(
		&item.LocalKey, &remoteID, &item.SyncState, &item.LastError, &item.IdempotencyKey,
		&capturedAt, &item.Municipality, &item.Community, &item.Location.Lat, &item.Location.Lng,
		&needType, &item.Description, &item.EvidenceBase64, &item.Author,
	); err != nil {
		return nil, err
	}
	item.RemoteID = remoteID.String
	item.CapturedAt = time.UnixMilli(capturedAt)
	item.NeedType = models.NeedType(needType)
	return item, nil
}

func (r *SQLiteRepository) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM reports WHERE sync_state=0`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending reports: %w", err)
	}
	return n, nil
}

// MarkSynced is the single writer for sync_state/remote_id. The transition is
// monotonic: a record already synced with the same remote id is a no-op, a
// vanished record is dropped silently, and a remote id held by a different
// local record is a conflict.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, localKey int64, remoteID string) error {
	var existing sql.NullString
	var state models.SyncState
	err := r.db.QueryRowContext(ctx,
		`SELECT remote_id, sync_state FROM reports WHERE local_key=?`, localKey).
		Scan(&existing, &state)
	if errors.Is(err, sql.ErrNoRows) {
		// record deleted while the submission was in flight
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load report %d: %w", localKey, err)
	}

	if state == models.SyncStateSynced {
		if existing.String == remoteID {
			return nil
		}
		return fmt.Errorf("report %d already synced as %q: %w", localKey, existing.String, common.ErrRemoteIDConflict)
	}

	var taken bool
	err = r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM reports WHERE remote_id=? AND local_key<>?)`, remoteID, localKey).
		Scan(&taken)
	if err != nil {
		return fmt.Errorf("failed to check remote id %q: %w", remoteID, err)
	}
	if taken {
		return fmt.Errorf("remote id %q: %w", remoteID, common.ErrRemoteIDConflict)
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE reports SET sync_state=1, remote_id=?, last_error='' WHERE local_key=?`,
		remoteID, localKey)
	if err != nil {
		return fmt.Errorf("failed to mark report %d synced: %w", localKey, err)
	}
	return nil
}

func (r *SQLiteRepository) MarkRejected(ctx context.Context, localKey int64, reason string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE reports SET sync_state=2, last_error=? WHERE local_key=? AND sync_state=0`,
		reason, localKey)
	if err != nil {
		return fmt.Errorf("failed to mark report %d rejected: %w", localKey, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, localKey int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reports WHERE local_key=?`, localKey)
	if err != nil {
		return fmt.Errorf("failed to delete report %d: %w", localKey, err)
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
