package migrations

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedFiles(t *testing.T) {
	for _, dir := range []string{"sqlite", "postgres"} {
		entries, err := fs.ReadDir(files, dir)
		require.NoError(t, err)
		assert.NotEmpty(t, entries, dir)
	}
}

func TestUp_UsesDialectDir(t *testing.T) {
	orig := upContext
	t.Cleanup(func() { upContext = orig })

	var gotDir string
	upContext = func(ctx context.Context, db *sql.DB, dir string) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, Up(context.Background(), nil, DialectPostgres))
	assert.Equal(t, "postgres", gotDir)

	upContext = func(ctx context.Context, db *sql.DB, dir string) error { return errors.New("locked") }
	assert.ErrorContains(t, Up(context.Background(), nil, DialectSQLite), "migrate sqlite")

	assert.Error(t, Up(context.Background(), nil, "mysql"))
}
