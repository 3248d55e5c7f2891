// Package testutil holds helpers shared by package tests.
package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"crmbridge/internal/db"
)

// NewDB returns a migrated, empty in-memory database closed when the test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	gdb, err := db.Open("sqlite:///:memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb, false, Logger()))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
