package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestGetSetRoundtrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, ok, err := db.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Set(ctx, "k", "v1"))
	got, ok, err := db.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v1", got)

	// upsert
	require.NoError(t, db.Set(ctx, "k", "v2"))
	got, _, err = db.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", got)
}

func TestRemove(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Set(ctx, "k", "v"))
	require.NoError(t, db.Remove(ctx, "k"))
	_, ok, err := db.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	// removing a missing key is not an error
	assert.NoError(t, db.Remove(ctx, "k"))
}

func TestListKeysByPrefix(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, k := range []string{"cache:a", "cache:b", "budget:state", "cachet"} {
		require.NoError(t, db.Set(ctx, k, "x"))
	}

	keys, err := db.ListKeys(ctx, "cache:")
	require.NoError(t, err)
	assert.Equal(t, []string{"cache:a", "cache:b"}, keys)

	keys, err = db.ListKeys(ctx, "nope:")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRemoveAll(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, db.Set(ctx, k, "x"))
	}
	require.NoError(t, db.RemoveAll(ctx, []string{"a", "c"}))

	_, ok, _ := db.Get(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = db.Get(ctx, "b")
	assert.True(t, ok)
	_, ok, _ = db.Get(ctx, "c")
	assert.False(t, ok)

	assert.NoError(t, db.RemoveAll(ctx, nil))
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	ctx := context.Background()

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Set(ctx, "k", "v"))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	got, ok, err := db.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "v", got)
}
