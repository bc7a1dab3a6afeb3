package people

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/fieldreport/internal/agent/models"
	"github.com/dmitrijs2005/fieldreport/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE people (
  local_key INTEGER PRIMARY KEY AUTOINCREMENT,
  remote_id TEXT UNIQUE,
  sync_state INTEGER NOT NULL DEFAULT 0,
  last_error TEXT NOT NULL DEFAULT '',
  idempotency_key TEXT NOT NULL,
  captured_at INTEGER NOT NULL,
  name TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  community TEXT NOT NULL DEFAULT ''
);
`)
	require.NoError(t, err)

	return db
}

func newPerson(key string) *models.Person {
	return &models.Person{
		IdempotencyKey: key,
		CapturedAt:     time.UnixMilli(1700000000000),
		Name:           "María López",
		Role:           "Delegada",
		Phone:          "981-000-0000",
		Community:      "Lerma",
	}
}

func TestAddAndListPending(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	k1, err := r.Add(ctx, newPerson("p1"))
	require.NoError(t, err)
	k2, err := r.Add(ctx, newPerson("p2"))
	require.NoError(t, err)
	assert.Greater(t, k2, k1)

	got, err := r.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, k1, got[0].LocalKey)
	assert.Equal(t, "María López", got[0].Name)
}

func TestMarkSynced_IdempotentAndMonotonic(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	key, err := r.Add(ctx, newPerson("p1"))
	require.NoError(t, err)

	require.NoError(t, r.MarkSynced(ctx, key, "srv-9"))
	require.NoError(t, r.MarkSynced(ctx, key, "srv-9"))
	require.ErrorIs(t, r.MarkSynced(ctx, key, "srv-other"), common.ErrRemoteIDConflict)

	n, err := r.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestMarkSynced_VanishedRecordIsTolerated(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	key, err := r.Add(ctx, newPerson("p1"))
	require.NoError(t, err)
	require.NoError(t, r.Delete(ctx, key))

	assert.NoError(t, r.MarkSynced(ctx, key, "srv-1"))
}

func TestMarkRejected(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	key, err := r.Add(ctx, newPerson("p1"))
	require.NoError(t, err)
	require.NoError(t, r.MarkRejected(ctx, key, "name required"))

	all, err := r.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.SyncStateRejected, all[0].SyncState)
	assert.Equal(t, "name required", all[0].LastError)
}
