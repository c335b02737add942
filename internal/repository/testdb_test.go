package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"parking-service/internal/model"
)

// newTestDB opens an in-memory database with the same schema guarantees as
// production: translated constraint errors and the partial unique index
// that enforces one OPEN session per plate. A single connection keeps the
// in-memory database alive and serializes concurrent test traffic.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.Slot{}, &model.Session{}))
	require.NoError(t, db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uniq_parking_sessions_open_plate
		 ON parking_sessions (plate) WHERE status = 'OPEN'`,
	).Error)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
