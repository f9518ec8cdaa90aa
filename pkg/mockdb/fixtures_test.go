package mockdb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFixtures(t *testing.T) {
	f := DefaultFixtures()
	assert.Equal(t, []string{"Book Store", "Car Dealership"}, f.DatabaseNames())

	db, ok := f.Database("Car Dealership")
	require.True(t, ok)
	assert.Equal(t, []string{"Car", "Make", "Model", "Employee", "Customer", "Order"}, db.TableNames())
	assert.NotEmpty(t, f.RawQueryResult)
}

func TestParseFixturesRejectsRaggedRows(t *testing.T) {
	_, err := ParseFixtures([]byte(`
databases:
  - name: Shop
    tables:
      - name: Item
        columns: [{name: id, type: integer}]
        rows: [["1", "extra"]]
`))
	assert.ErrorIs(t, err, ErrFixture)
}

func TestParseFixturesRejectsDuplicates(t *testing.T) {
	_, err := ParseFixtures([]byte(`
databases:
  - name: Shop
  - name: Shop
`))
	assert.ErrorIs(t, err, ErrFixture)
}

func TestLoadFixtures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte("databases:\n  - name: Solo\n"), 0o644))

	f, err := LoadFixtures(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Solo"}, f.DatabaseNames())

	_, err = LoadFixtures(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
