package geo

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

func TestEncodeEWKBHex_Polygon(t *testing.T) {
	p := geom.NewPolygonFlat(geom.XY, square(-80, 25, 1), []int{10})

	s, err := EncodeEWKBHex(p)
	require.NoError(t, err)

	data, err := hex.DecodeString(s)
	require.NoError(t, err)
	g, err := ewkb.Unmarshal(data)
	require.NoError(t, err)

	mp, ok := g.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, SRID, mp.SRID())
	assert.Equal(t, 1, mp.NumPolygons())
	assert.Equal(t, p.FlatCoords(), mp.Polygon(0).FlatCoords())
	assert.Equal(t, 0, p.SRID(), "input geometry must not be modified")
}

func TestEncodeEWKBHex_MultiPolygonNotModified(t *testing.T) {
	flat := append(square(0, 0, 1), square(2, 0, 1)...)
	mp := geom.NewMultiPolygonFlat(geom.XY, flat, [][]int{{10}, {20}})

	s, err := EncodeEWKBHex(mp)
	require.NoError(t, err)
	assert.NotEmpty(t, s)
	assert.Equal(t, 0, mp.SRID())
}

func TestToMultiPolygon_Collection(t *testing.T) {
	gc := geom.NewGeometryCollection()
	require.NoError(t, gc.Push(
		geom.NewPolygonFlat(geom.XY, square(0, 0, 1), []int{10}),
		geom.NewMultiPolygonFlat(geom.XY, append(square(2, 0, 1), square(4, 0, 1)...), [][]int{{10}, {20}}),
	))

	mp, err := ToMultiPolygon(gc)
	require.NoError(t, err)
	assert.Equal(t, 3, mp.NumPolygons())
}

func TestToMultiPolygon_Errors(t *testing.T) {
	for _, g := range []geom.T{
		nil,
		geom.NewPointFlat(geom.XY, []float64{1, 2}),
		geom.NewGeometryCollection(),
	} {
		_, err := ToMultiPolygon(g)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrGeometry))
	}
}
