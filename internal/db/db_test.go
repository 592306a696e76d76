package db

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectDialect(t *testing.T) {
	tests := []struct {
		dsn  string
		want string
	}{
		{"postgres://u:p@localhost:5432/loto", DialectPostgres},
		{"host=localhost user=u dbname=loto", DialectPostgres},
		{"file:var/loto.db", DialectSQLite},
		{"sqlite://var/loto.db", DialectSQLite},
		{"var/loto.db", DialectSQLite},
	}
	for _, tt := range tests {
		got, err := detectDialect(tt.dsn)
		require.NoError(t, err, tt.dsn)
		assert.Equal(t, tt.want, got, tt.dsn)
	}

	_, err := detectDialect("mysql://root@localhost/loto")
	assert.Error(t, err)
}

func TestOpenWithURLSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "loto.db")

	conn, err := OpenWithURL(path)
	require.NoError(t, err)
	assert.Equal(t, DialectSQLite, DialectName(conn))

	var one int
	require.NoError(t, conn.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestOpenWithURLEmpty(t *testing.T) {
	_, err := OpenWithURL("  ")
	assert.Error(t, err)
}

func TestNormalizeSQLiteDSN(t *testing.T) {
	got := normalizeSQLiteDSN("sqlite://var/loto.db")
	assert.Contains(t, got, "file:var/loto.db?")
	assert.Contains(t, got, "_txlock=immediate")

	got = normalizeSQLiteDSN("file:loto.db?_txlock=immediate")
	assert.Equal(t, 1, strings.Count(got, "_txlock=immediate"))
}
