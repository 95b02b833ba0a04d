package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geocopy/internal/db"
)

var zikaColumns = db.Schema{
	{Name: "BLOCKID10", Type: "character varying(80)"},
	{Name: "pop_per_sq_km", Type: "real"},
	{Name: "zika_risk", Type: "bool"},
}

func TestParseColumns_Mapping(t *testing.T) {
	doc := `
columns:
  BLOCKID10: character varying(80)
  pop_per_sq_km: real
  zika_risk: bool
`
	schema, err := ParseColumns([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, zikaColumns, schema)
}

func TestParseColumns_MappingKeepsOrder(t *testing.T) {
	doc := `
columns:
  z: text
  a: int
  m: numeric(10,2)
`
	schema, err := ParseColumns([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m"}, schema.Names())
	assert.Equal(t, "numeric(10,2)", schema[2].Type)
}

func TestParseColumns_Sequence(t *testing.T) {
	doc := `
columns:
  - name: BLOCKID10
    type: character varying(80)
  - {name: pop_per_sq_km, type: real}
  - {name: zika_risk, type: bool}
`
	schema, err := ParseColumns([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, zikaColumns, schema)
}

func TestParseColumns_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		msg  string
	}{
		{"no columns key", "other: 1\n", "has no columns"},
		{"scalar", "columns: nope\n", "must be a list or mapping"},
		{"nested type", "columns:\n  a:\n    b: c\n", `column "a": type must be a string`},
		{"duplicate in list", "columns:\n  - {name: a, type: int}\n  - {name: a, type: int}\n", `duplicate column "a"`},
		{"empty list", "columns: []\n", "no columns"},
		{"missing type", "columns:\n  - {name: a}\n", "has no type"},
		{"bad yaml", "columns: [\n", "parse columns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseColumns([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseColumns_InvalidSchemaKind(t *testing.T) {
	_, err := ParseColumns([]byte("columns: []\n"))
	assert.True(t, errors.Is(err, db.ErrInvalidSchema))
}

func TestLoadColumns_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "columns.yaml")
	require.NoError(t, os.WriteFile(path, []byte("columns:\n  id: text\n"), 0644))

	schema, err := LoadColumns(path)
	require.NoError(t, err)
	assert.Equal(t, db.Schema{{Name: "id", Type: "text"}}, schema)
}

func TestLoadColumns_Missing(t *testing.T) {
	_, err := LoadColumns(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read columns file")
}
