// Package kvtest exercises a webcache.Store implementation against the
// get/gets/add/cas/set/delete contract (spec §6), extending the teacher's
// bare Has/Get/Set/Delete conformance helper (test.Cache) to also cover
// Add-if-absent and CAS conflict behavior.
package kvtest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mchtech/webcache"
)

// Exercise runs the full Store contract against store. Each check uses its
// own key so backends may be run against a shared, already-populated
// instance.
func Exercise(t *testing.T, store webcache.Store) {
	t.Run("get miss", func(t *testing.T) {
		_, ok := store.Get("kvtest-missing")
		require.False(t, ok)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, store.Set("kvtest-set", []byte("hello")))
		value, ok := store.Get("kvtest-set")
		require.True(t, ok)
		require.Equal(t, []byte("hello"), value)
	})

	t.Run("add inserts only once", func(t *testing.T) {
		ok, err := store.Add("kvtest-add", []byte("first"))
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = store.Add("kvtest-add", []byte("second"))
		require.NoError(t, err)
		require.False(t, ok, "second add must not overwrite")

		value, ok := store.Get("kvtest-add")
		require.True(t, ok)
		require.Equal(t, []byte("first"), value)
	})

	t.Run("gets returns a usable token", func(t *testing.T) {
		require.NoError(t, store.Set("kvtest-gets", []byte("v1")))

		value, token, ok := store.Gets("kvtest-gets")
		require.True(t, ok)
		require.Equal(t, []byte("v1"), value)

		ok2, err := store.CAS("kvtest-gets", []byte("v2"), token)
		require.NoError(t, err)
		require.True(t, ok2)

		value, ok = store.Get("kvtest-gets")
		require.True(t, ok)
		require.Equal(t, []byte("v2"), value)
	})

	t.Run("cas fails on stale token", func(t *testing.T) {
		require.NoError(t, store.Set("kvtest-stale", []byte("v1")))
		_, token, ok := store.Gets("kvtest-stale")
		require.True(t, ok)

		// A concurrent writer updates the value first.
		require.NoError(t, store.Set("kvtest-stale", []byte("v2")))

		ok2, err := store.CAS("kvtest-stale", []byte("v3"), token)
		require.False(t, ok2)
		require.ErrorIs(t, err, webcache.ErrNotFound)

		value, _ := store.Get("kvtest-stale")
		require.Equal(t, []byte("v2"), value, "losing CAS must not overwrite")
	})

	t.Run("cas fails on absent key", func(t *testing.T) {
		ok, err := store.CAS("kvtest-absent", []byte("v1"), 0)
		require.False(t, ok)
		require.Error(t, err)
	})

	t.Run("delete removes the key", func(t *testing.T) {
		require.NoError(t, store.Set("kvtest-delete", []byte("v1")))
		require.NoError(t, store.Delete("kvtest-delete"))

		_, ok := store.Get("kvtest-delete")
		require.False(t, ok)

		// Deleting an already-absent key is not an error.
		require.NoError(t, store.Delete("kvtest-delete"))
	})
}
