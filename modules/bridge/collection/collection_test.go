package collection

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCollectionFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "collection.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	t.Run("assigns_dense_token_ids", func(t *testing.T) {
		path := writeCollectionFile(t, `[
			{"id": "a1i0"},
			{"id": "b2i0", "meta": {"name": "Ape #2"}},
			{"id": "c3i1"}
		]`)

		coll, err := LoadFromFile(path, "Test Apes", "TAPE")
		require.NoError(t, err)
		assert.Equal(t, "Test Apes", coll.Name())
		assert.Equal(t, "TAPE", coll.Symbol())
		require.Equal(t, 3, coll.Size())

		for i, item := range coll.Items() {
			assert.Equal(t, int64(i), item.TokenId)
		}

		item, ok := coll.ByInscriptionId("b2i0")
		require.True(t, ok)
		assert.Equal(t, int64(1), item.TokenId)
		assert.JSONEq(t, `{"name": "Ape #2"}`, string(item.Meta))

		item, ok = coll.ByTokenId(2)
		require.True(t, ok)
		assert.Equal(t, "c3i1", item.InscriptionId)
	})

	t.Run("skips_empty_and_duplicate_ids", func(t *testing.T) {
		path := writeCollectionFile(t, `[
			{"id": "a1i0"},
			{"id": ""},
			{"id": "a1i0"},
			{"id": "b2i0"}
		]`)

		coll, err := LoadFromFile(path, "Test Apes", "TAPE")
		require.NoError(t, err)
		require.Equal(t, 2, coll.Size())

		// token ids are dense over the survivors
		item, ok := coll.ByInscriptionId("b2i0")
		require.True(t, ok)
		assert.Equal(t, int64(1), item.TokenId)

		_, ok = coll.ByInscriptionId("")
		assert.False(t, ok)
	})

	t.Run("empty_collection", func(t *testing.T) {
		path := writeCollectionFile(t, `[]`)

		coll, err := LoadFromFile(path, "Test Apes", "TAPE")
		require.NoError(t, err)
		assert.Zero(t, coll.Size())
		assert.False(t, coll.Contains("a1i0"))
	})

	t.Run("missing_file", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"), "Test Apes", "TAPE")
		assert.Error(t, err)
	})

	t.Run("malformed_json", func(t *testing.T) {
		path := writeCollectionFile(t, `{"not": "an array"}`)
		_, err := LoadFromFile(path, "Test Apes", "TAPE")
		assert.Error(t, err)
	})
}
