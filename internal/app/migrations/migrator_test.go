package migrations

import (
	"io/fs"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFiles_OrdersByNameAndSkipsOthers(t *testing.T) {
	fsys := fstest.MapFS{
		"002_relations.sql": {Data: []byte("SELECT 2;")},
		"001_init.sql":      {Data: []byte("SELECT 1;")},
		"README.md":         {Data: []byte("docs")},
		"old/003_x.sql":     {Data: []byte("SELECT 3;")},
	}

	files, err := ListFiles(fsys)
	require.NoError(t, err)
	assert.Equal(t, []File{
		{Version: "001", Name: "001_init.sql"},
		{Version: "002", Name: "002_relations.sql"},
	}, files)
}

func TestListFiles_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"001_init.sql":  {Data: []byte("SELECT 1;")},
		"001_other.sql": {Data: []byte("SELECT 1;")},
	}

	_, err := ListFiles(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "share version 001")
}

func TestEmbedded_ContainsSchema(t *testing.T) {
	files, err := ListFiles(Embedded())
	require.NoError(t, err)
	require.NotEmpty(t, files)
	assert.Equal(t, "001", files[0].Version)

	content, err := fs.ReadFile(Embedded(), files[0].Name)
	require.NoError(t, err)
	schema := string(content)
	for _, table := range []string{"attributes", "entities", "attribute_values", "entity_relations", "accounts"} {
		assert.True(t, strings.Contains(schema, "CREATE TABLE IF NOT EXISTS "+table+" "), table)
	}
	assert.Contains(t, schema, "UNIQUE (entity_id, attribute_id)")
	assert.Contains(t, schema, "ON DELETE SET NULL")
}
