package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yamdb/backend/internal/config"
	"gorm.io/driver/postgres"
)

func TestPing_ReportsDatabaseState(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()

	// gorm pings once while opening
	mock.ExpectPing()
	db, err := Open(postgres.New(postgres.Config{Conn: sqlDB}))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	mock.ExpectPing()
	assert.NoError(t, Ping(ctx, db))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.Error(t, Ping(ctx, db))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnect_SQLiteMigrates(t *testing.T) {
	cfg := &config.Config{
		DatabaseDriver: config.DriverSQLite,
		DatabaseURL:    "file:connect_test?mode=memory&cache=shared",
	}

	db, err := Connect(cfg)
	require.NoError(t, err)
	defer Close(db)

	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "categories", "genres", "titles", "title_genres", "reviews", "comments"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	var fk int
	require.NoError(t, db.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
}
