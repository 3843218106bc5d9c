// Package dbtest holds the behavioural checks every ethdb backend must pass.
package dbtest

import (
	"testing"

	"github.com/dominant-strategies/eth-light-client/ethdb"
	"github.com/stretchr/testify/require"
)

// TestDatabaseSuite runs a suite of tests against a KeyValueStore database
// implementation.
func TestDatabaseSuite(t *testing.T, New func() ethdb.KeyValueStore) {
	t.Run("KeyValueOperations", func(t *testing.T) {
		db := New()
		defer db.Close()

		key := []byte("foo")
		ok, err := db.Has(key)
		require.NoError(t, err)
		require.False(t, ok)

		_, err = db.Get(key)
		require.ErrorIs(t, err, ethdb.ErrNotFound)

		require.NoError(t, db.Put(key, []byte("bar")))
		ok, err = db.Has(key)
		require.NoError(t, err)
		require.True(t, ok)

		got, err := db.Get(key)
		require.NoError(t, err)
		require.Equal(t, []byte("bar"), got)

		// Overwrites replace the value.
		require.NoError(t, db.Put(key, []byte("baz")))
		got, err = db.Get(key)
		require.NoError(t, err)
		require.Equal(t, []byte("baz"), got)

		require.NoError(t, db.Delete(key))
		_, err = db.Get(key)
		require.ErrorIs(t, err, ethdb.ErrNotFound)
	})

	t.Run("ReturnedValueIsCopy", func(t *testing.T) {
		db := New()
		defer db.Close()

		require.NoError(t, db.Put([]byte("k"), []byte("value")))
		got, err := db.Get([]byte("k"))
		require.NoError(t, err)
		got[0] = 'X'

		again, err := db.Get([]byte("k"))
		require.NoError(t, err)
		require.Equal(t, []byte("value"), again)
	})

	t.Run("BatchWrite", func(t *testing.T) {
		db := New()
		defer db.Close()

		require.NoError(t, db.Put([]byte("stale"), []byte("1")))

		b := db.NewBatch()
		require.NoError(t, b.Put([]byte("a"), []byte("1")))
		require.NoError(t, b.Put([]byte("b"), []byte("22")))
		require.NoError(t, b.Delete([]byte("stale")))
		require.Equal(t, 1+1+1+2+5, b.ValueSize())

		// Nothing is visible before the batch is written.
		ok, err := db.Has([]byte("a"))
		require.NoError(t, err)
		require.False(t, ok)
		ok, err = db.Has([]byte("stale"))
		require.NoError(t, err)
		require.True(t, ok)

		require.NoError(t, b.Write())
		for key, want := range map[string]string{"a": "1", "b": "22"} {
			got, err := db.Get([]byte(key))
			require.NoError(t, err)
			require.Equal(t, []byte(want), got)
		}
		ok, err = db.Has([]byte("stale"))
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("BatchReset", func(t *testing.T) {
		db := New()
		defer db.Close()

		b := db.NewBatch()
		require.NoError(t, b.Put([]byte("dropped"), []byte("1")))
		b.Reset()
		require.Zero(t, b.ValueSize())

		require.NoError(t, b.Put([]byte("kept"), []byte("2")))
		require.NoError(t, b.Write())

		ok, err := db.Has([]byte("dropped"))
		require.NoError(t, err)
		require.False(t, ok)
		ok, err = db.Has([]byte("kept"))
		require.NoError(t, err)
		require.True(t, ok)
	})
}
