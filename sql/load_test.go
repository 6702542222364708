package sql

import (
	"database/sql"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Initialize database extensions", func(t *testing.T) {
		err := Init(db.Instance)
		assert.NoError(t, err)

		var exists bool
		err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = 'vector');").Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "pgvector extension should be created")
	})

	t.Run("Initialize database extensions is idempotent", func(t *testing.T) {
		err := Init(db.Instance)
		assert.NoError(t, err)
	})
}

func assertFunctionsExist(t *testing.T, db *sql.DB, functions []string) {
	t.Helper()
	for _, funcName := range functions {
		var exists bool
		err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "Function %s should exist", funcName)
	}
}

func TestLoadEventsSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Load events SQL functions", func(t *testing.T) {
		err := LoadEventsSql(db.Instance, false)
		assert.NoError(t, err)
		assertFunctionsExist(t, db.Instance, EventsFunctions)
	})

	t.Run("Load events SQL is idempotent without force", func(t *testing.T) {
		err := LoadEventsSql(db.Instance, false)
		assert.NoError(t, err)
	})

	t.Run("Load events SQL with force reloads", func(t *testing.T) {
		err := LoadEventsSql(db.Instance, true)
		assert.NoError(t, err)
		assertFunctionsExist(t, db.Instance, EventsFunctions)
	})

	t.Run("Init events creates table", func(t *testing.T) {
		_, err := db.Instance.Exec("SELECT init_events($1);", 3)
		require.NoError(t, err)

		var exists bool
		err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM information_schema.tables WHERE table_name = 'disaster_events');").Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists)
	})
}

func TestLoadStatisticsSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Load statistics SQL functions", func(t *testing.T) {
		err := LoadStatisticsSql(db.Instance, false)
		assert.NoError(t, err)
		assertFunctionsExist(t, db.Instance, StatisticsFunctions)
	})

	t.Run("Load statistics SQL with force reloads", func(t *testing.T) {
		err := LoadStatisticsSql(db.Instance, true)
		assert.NoError(t, err)
	})
}

func TestLoadAllSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Load all SQL functions", func(t *testing.T) {
		err := LoadAllSql(db.Instance, false)
		assert.NoError(t, err)
		assertFunctionsExist(t, db.Instance, EventsFunctions)
		assertFunctionsExist(t, db.Instance, StatisticsFunctions)
	})

	t.Run("Load all SQL is idempotent without force", func(t *testing.T) {
		err := LoadAllSql(db.Instance, false)
		assert.NoError(t, err)
	})
}

func TestCheckFunctions(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Check functions returns false when functions don't exist", func(t *testing.T) {
		exists, err := checkFunctions(db.Instance, []string{"nonexistent_function"})
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Check functions returns false before loading", func(t *testing.T) {
		exists, err := checkFunctions(db.Instance, EventsFunctions)
		assert.NoError(t, err)
		assert.False(t, exists, "Expected a fresh catalog without event functions")
	})

	t.Run("Check functions returns true when all functions exist", func(t *testing.T) {
		err := LoadStatisticsSql(db.Instance, false)
		require.NoError(t, err)

		exists, err := checkFunctions(db.Instance, StatisticsFunctions)
		assert.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Check functions returns false when some functions don't exist", func(t *testing.T) {
		exists, err := checkFunctions(db.Instance, []string{"init_statistics", "nonexistent_function"})
		assert.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("Check functions with empty list", func(t *testing.T) {
		exists, err := checkFunctions(db.Instance, []string{})
		assert.NoError(t, err)
		assert.False(t, exists, "an empty list never sets allExist")
	})
}

func TestEmbeddedSQL(t *testing.T) {
	assert.Contains(t, initSQL, "CREATE EXTENSION")
	assert.Contains(t, eventsSQL, "disaster_events")
	assert.Contains(t, statisticsSQL, "consumption_statistics")
	for _, f := range EventsFunctions {
		assert.Contains(t, eventsSQL, f)
	}
	for _, f := range StatisticsFunctions {
		assert.Contains(t, statisticsSQL, f)
	}
}
