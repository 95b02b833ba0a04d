package derive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_ZikaDensity(t *testing.T) {
	tbl, err := Lookup("zika_density")
	require.NoError(t, err)

	assert.Equal(t, "florida_zika", tbl.Table)
	assert.Equal(t, []string{"BLOCKID10", "pop_per_sq_km", "zika_risk"}, tbl.Schema.Names())
	assert.NoError(t, tbl.Schema.Validate())
	assert.IsType(t, ZikaDensity{}, tbl.Derivation)
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown derivation "nope"`)
	assert.Contains(t, err.Error(), "zika_density")
}

func TestNames(t *testing.T) {
	assert.Contains(t, Names(), "zika_density")
}
