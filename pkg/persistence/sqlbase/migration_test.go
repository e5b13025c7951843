package sqlbase

import (
	"errors"
	"log/slog"
	"os"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

func TestMigrationManager_AppliesPendingMigrationsInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	migrations := map[int]string{
		3: "CREATE TABLE three (id INT)",
		1: "CREATE TABLE one (id INT)",
		2: "CREATE TABLE two (id INT)",
	}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(1))

	for _, step := range []struct {
		version int
		table   string
	}{{2, "two"}, {3, "three"}} {
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE " + step.table).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (version) VALUES ($1)")).
			WithArgs(step.version).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()
	}

	manager := NewMigrationManager(testLogger, db, migrations)
	assert.Equal(t, 3, manager.LatestVersion())

	require.NoError(t, manager.RunMigrations(t.Context()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrationManager_UpToDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(2))

	manager := NewMigrationManager(testLogger, db, map[int]string{1: "SELECT 1", 2: "SELECT 2"})

	require.NoError(t, manager.RunMigrations(t.Context()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrationManager_RollsBackFailedMigration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE broken").WillReturnError(errors.New("syntax error"))
	mock.ExpectRollback()

	manager := NewMigrationManager(testLogger, db, map[int]string{1: "CREATE TABLE broken ("})

	err = manager.RunMigrations(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to execute migration 1")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrationManager_CreateTableFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnError(errors.New("permission denied"))

	manager := NewMigrationManager(testLogger, db, map[int]string{1: "SELECT 1"})

	err = manager.RunMigrations(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}
