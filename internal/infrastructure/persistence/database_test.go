package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	appaccess "github.com/compmath/schedule-bot/internal/application/access"
	"github.com/compmath/schedule-bot/internal/domain/access"
	"github.com/compmath/schedule-bot/internal/domain/shared"
	"github.com/compmath/schedule-bot/internal/infrastructure/config"
	"github.com/compmath/schedule-bot/internal/infrastructure/persistence/models"
	"github.com/compmath/schedule-bot/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase_SQLite(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Driver: DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "bot.db"),
	}

	db, err := NewDatabase(cfg)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.AutoMigrate())
	assert.NoError(t, db.Ping())

	for _, m := range models.All() {
		assert.True(t, db.DB.Migrator().HasTable(m), "%T", m)
	}
	assert.True(t, db.DB.Migrator().HasIndex(&models.ScheduleModel{}, "uq_schedule_day_time_week_type"))

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
	assert.False(t, isPostgres(db.DB))
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(&config.DatabaseConfig{Driver: "mysql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "bot.db?_foreign_keys=on&_busy_timeout=5000", sqliteDSN("bot.db"))
	assert.Equal(t, "file::memory:?cache=shared", sqliteDSN("file::memory:?cache=shared"))
}

func TestDatabase_PingAndClose(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	db := &Database{DB: mockDB.DB}
	assert.True(t, isPostgres(db.DB))

	mockDB.Mock.ExpectPing()
	assert.NoError(t, db.Ping())

	mockDB.Mock.ExpectClose()
	assert.NoError(t, db.Close())
	mockDB.ExpectationsWereMet(t)
}

func TestGormTransactionScope(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		scope := NewGormTransactionScope(db)

		err := scope.Execute(ctx, func(repos appaccess.TransactionalRepositories) error {
			return repos.Users().Save(ctx, access.NewAuthorizedUser(5))
		})
		require.NoError(t, err)

		_, err = NewGormAuthorizedUserRepository(db).FindByUserID(ctx, 5)
		assert.NoError(t, err)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db := testutil.NewSQLiteDB(t)
		scope := NewGormTransactionScope(db)
		boom := errors.New("boom")

		err := scope.Execute(ctx, func(repos appaccess.TransactionalRepositories) error {
			if err := repos.Users().Save(ctx, access.NewAuthorizedUser(5)); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = NewGormAuthorizedUserRepository(db).FindByUserID(ctx, 5)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("postgres locks inside the transaction", func(t *testing.T) {
		mockDB := testutil.NewMockDB(t)
		defer mockDB.Close()

		mockDB.Mock.ExpectBegin()
		mockDB.Mock.ExpectQuery(`FOR UPDATE`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mockDB.Mock.ExpectRollback()

		err := NewGormTransactionScope(mockDB.DB).Execute(ctx, func(repos appaccess.TransactionalRepositories) error {
			_, err := repos.Users().FindByUserIDForUpdate(ctx, 9)
			return err
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
		mockDB.ExpectationsWereMet(t)
	})
}
