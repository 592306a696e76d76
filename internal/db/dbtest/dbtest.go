// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/homeloto/retail-api/internal/db"
)

// SQLite opens a file-backed sqlite database in a temp dir that is removed with the test.
// A file rather than :memory: keeps every pooled connection on the same data.
func SQLite(t testing.TB) *gorm.DB {
	t.Helper()

	conn, err := db.OpenWithURL(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return conn
}
