package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_CreatesAllTables(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, Migrate(database))

	for _, table := range []string{"organizations", "content_plans", "content_plan_items"} {
		var name string
		err := database.QueryRow(
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, Migrate(database))

	// Re-running the full migration set must not fail.
	require.NoError(t, Migrate(database))
}

func TestOpenDB_ForeignKeysEnforced(t *testing.T) {
	database, err := OpenDB(":memory:")
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, Migrate(database))

	_, err = database.Exec(`INSERT INTO content_plan_items
		(id, content_plan_id, publication_date, content_title, created_at, updated_at)
		VALUES ('i1', 'missing-plan', '2030-01-01T00:00:00Z', 'x', '2030-01-01T00:00:00Z', '2030-01-01T00:00:00Z')`)
	assert.Error(t, err, "orphan item should violate foreign key")
}
