package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteGetSet(t *testing.T) {
	db, err := NewSQLite(filepath.Join(t.TempDir(), "continuum.db"))
	require.NoError(t, err)
	defer db.Close()

	_, ok, err := db.Get("missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Set("k", []byte("one")))
	require.NoError(t, db.Set("k", []byte("two")))

	v, ok, err := db.Get("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "two", string(v))
}

func TestSQLiteBackedRecordStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "continuum.db")
	db, err := NewSQLite(path)
	require.NoError(t, err)

	require.NoError(t, NewRecordStore(db).Add(decision(1, "Persisted", "work")))
	require.NoError(t, db.Close())

	reopened, err := NewSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := NewRecordStore(reopened).List()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Persisted", records[0].Title)
}
