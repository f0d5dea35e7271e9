// Package testutil holds helpers shared by package tests.
package testutil

import (
	"testing"

	"go_polyseo/internal/db"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB returns a migrated in-memory SQLite database scoped to the test.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	// every connection to ":memory:" is a fresh database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(gdb, Logger()))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gdb
}

// Logger returns a quiet logrus entry for components under test.
func Logger() *logrus.Entry {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}
