package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644))
	}
}

func TestListMigrations_OrdersByVersion(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"010_add_index.sql",
		"002_add_owner.sql",
		"001_create_courses.sql",
		"README.md",
		"notes.sql",
		"000_zero.sql",
	)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "003_dir.sql"), 0o755))

	got, err := listMigrations(dir)
	require.NoError(t, err)

	var names []string
	for _, m := range got {
		names = append(names, m.name)
	}
	assert.Equal(t, []string{"001_create_courses.sql", "002_add_owner.sql", "010_add_index.sql"}, names)
	assert.Equal(t, 10, got[2].version)
}

func TestListMigrations_RejectsDuplicateVersion(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "001_a.sql", "1_b.sql")

	_, err := listMigrations(dir)
	assert.Error(t, err)
}

func TestListMigrations_MissingDir(t *testing.T) {
	_, err := listMigrations(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}

func TestListMigrations_ShippedSchema(t *testing.T) {
	got, err := listMigrations(filepath.Join("..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, 1, got[0].version)
}
