package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMigrate verifies the embedded schema applies cleanly and is idempotent.
//
// WHY: Both the server and the CLI call OpenAndMigrate on every start; a second
// run against an up-to-date database must be a no-op.
func TestMigrate(t *testing.T) {
	ctx := context.Background()
	db, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	version, err := Migrate(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	version, err = Migrate(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	for _, table := range []string{"account", "transaction", "symbol_price", "dividend_event", "exchange_rate", "secret"} {
		var name string
		err := db.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	var fk int
	require.NoError(t, db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpenAndMigrate_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tracker.db")

	db, err := OpenAndMigrate(context.Background(), path)
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, HealthCheck(context.Background(), db))
	assert.FileExists(t, path)
}

func TestWithTransaction(t *testing.T) {
	ctx := context.Background()
	db, err := OpenAndMigrate(ctx, MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	insert := func(tx *sql.Tx, name string) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO secret (name, ciphertext, updated_at) VALUES (?, 'x', '2024-01-01T00:00:00Z')`, name)
		return err
	}
	count := func() int {
		var n int
		require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM secret`).Scan(&n))
		return n
	}

	t.Run("commits on success", func(t *testing.T) {
		err := WithTransaction(ctx, db, func(tx *sql.Tx) error { return insert(tx, "a") })
		require.NoError(t, err)
		assert.Equal(t, 1, count())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := WithTransaction(ctx, db, func(tx *sql.Tx) error {
			require.NoError(t, insert(tx, "b"))
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, count())
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		err := WithTransaction(ctx, db, func(tx *sql.Tx) error {
			require.NoError(t, insert(tx, "c"))
			panic("bad")
		})
		assert.ErrorContains(t, err, "panic in transaction")
		assert.Equal(t, 1, count())
	})
}
