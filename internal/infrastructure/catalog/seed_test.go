package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSeedFile(t *testing.T) {
	t.Run("parses a valid seed file", func(t *testing.T) {
		path := writeSeedFile(t, `[
			{
				"itemNumber": "FB-001",
				"description": "Grade 8 hex bolt",
				"productName": "hex bolt",
				"category": "Fasteners",
				"properties": {"grade": "8", "size": "1/2-13"}
			},
			{
				"itemNumber": "BR-001",
				"productName": "ball bearing",
				"category": "Bearings"
			}
		]`)

		items, err := LoadSeedFile(path)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, "FB-001", items[0].ItemNumber)
		assert.Equal(t, "8", items[0].Properties["grade"])
		assert.Equal(t, "Bearings", items[1].Category)
	})

	t.Run("rejects duplicate item numbers", func(t *testing.T) {
		path := writeSeedFile(t, `[
			{"itemNumber": "FB-001", "productName": "hex bolt", "category": "Fasteners"},
			{"itemNumber": "FB-001", "productName": "hex bolt", "category": "Fasteners"}
		]`)

		_, err := LoadSeedFile(path)
		assert.ErrorContains(t, err, "duplicate item number")
	})

	t.Run("rejects an empty item number", func(t *testing.T) {
		path := writeSeedFile(t, `[{"productName": "hex bolt", "category": "Fasteners"}]`)

		_, err := LoadSeedFile(path)
		assert.ErrorContains(t, err, "empty item number")
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		path := writeSeedFile(t, `{"not": "an array"}`)

		_, err := LoadSeedFile(path)
		assert.ErrorContains(t, err, "parsing seed file")
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := LoadSeedFile(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})
}
