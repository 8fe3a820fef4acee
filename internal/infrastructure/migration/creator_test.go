package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add transaction items", "ledger table")
	require.NoError(t, err)

	assert.Len(t, mf.Version, 14)
	assert.FileExists(t, mf.UpPath)
	assert.FileExists(t, mf.DownPath)
	assert.Contains(t, filepath.Base(mf.UpPath), "add_transaction_items.up.sql")
	assert.Contains(t, filepath.Base(mf.DownPath), "add_transaction_items.down.sql")

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: add transaction items")
	assert.Contains(t, string(up), "-- Description: ledger table")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")
}

func TestCreateMigration_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	mf, err := CreateMigration(dir, "init", "first")
	require.NoError(t, err)
	assert.FileExists(t, mf.UpPath)
}

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"add transaction items", "add_transaction_items"},
		{"Add-Order-Events", "add_order_events"},
		{"weird!!chars##", "weirdchars"},
		{"trailing space ", "trailing_space"},
		{"multi  separators--x", "multi_separators_x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeName(tt.input), tt.input)
	}
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()

	_, err := CreateMigration(dir, "create orders", "")
	require.NoError(t, err)

	// A stray non-migration file must not be listed
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0644))

	list, err := ListMigrations(dir)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, list[0], "create_orders")
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	list, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, list)
}
