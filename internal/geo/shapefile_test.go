package geo

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

// clockwise square in shapefile winding order.
func shpSquare(x0, y0, side float64) []shp.Point {
	return []shp.Point{
		{X: x0, Y: y0},
		{X: x0, Y: y0 + side},
		{X: x0 + side, Y: y0 + side},
		{X: x0 + side, Y: y0},
		{X: x0, Y: y0},
	}
}

func writeBlocks(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "zika_risk.shp")

	w, err := shp.Create(path, shp.POLYGON)
	require.NoError(t, err)

	require.NoError(t, w.SetFields([]shp.Field{
		shp.StringField("BLOCKID10", 15),
		shp.NumberField("POP10", 10),
		shp.NumberField("risk_zone", 1),
		shp.StringField("NAME", 20),
	}))

	pts := shpSquare(0, 0, kmSide)
	w.Write(&shp.Polygon{NumParts: 1, NumPoints: int32(len(pts)), Parts: []int32{0}, Points: pts})
	require.NoError(t, w.WriteAttribute(0, 0, "120860001"))
	require.NoError(t, w.WriteAttribute(0, 1, 500))
	require.NoError(t, w.WriteAttribute(0, 2, 1))
	require.NoError(t, w.WriteAttribute(0, 3, "Miami"))

	pts = shpSquare(1, 0, kmSide)
	w.Write(&shp.Polygon{NumParts: 1, NumPoints: int32(len(pts)), Parts: []int32{0}, Points: pts})
	require.NoError(t, w.WriteAttribute(1, 0, "120860002"))
	require.NoError(t, w.WriteAttribute(1, 1, 20))
	require.NoError(t, w.WriteAttribute(1, 2, 0))

	w.Close()
	fixDBFName(t, path)
	return path
}

// fixDBFName moves the attribute table go-shp's writer leaves at
// "<base>dbf" to "<base>.dbf", where readers look for it.
func fixDBFName(t *testing.T, shpPath string) {
	t.Helper()
	base := strings.TrimSuffix(shpPath, ".shp")
	if _, err := os.Stat(base + "dbf"); err == nil {
		require.NoError(t, os.Rename(base+"dbf", base+".dbf"))
	}
	_, err := os.Stat(base + ".dbf")
	require.NoError(t, err, "fixture should have an attribute table")
}

// truncate cuts n bytes off the end of path.
func truncate(t *testing.T, path string, n int64) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(path, info.Size()-n))
}

func TestShapefileSource_Features(t *testing.T) {
	path := writeBlocks(t, t.TempDir())

	src, err := Open(path, Options{DBFEncoding: "windows-1252"})
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	features, err := collect(t, src.Features())
	require.NoError(t, err)
	require.Len(t, features, 2)

	f := features[0]
	assert.Equal(t, "0", f.ID)
	assert.Equal(t, "120860001", f.Properties["BLOCKID10"])
	assert.Equal(t, float64(500), f.Properties["POP10"])
	assert.Equal(t, float64(1), f.Properties["risk_zone"])
	assert.Equal(t, "Miami", f.Properties["NAME"])
	require.IsType(t, &geom.MultiPolygon{}, f.Geometry)

	a, err := Area(f.Geometry)
	require.NoError(t, err)
	assert.InDelta(t, 1_000_000, a, 1)

	assert.Equal(t, float64(0), features[1].Properties["risk_zone"])
	assert.Nil(t, features[1].Properties["NAME"])
}

func TestShapefileSource_TruncatedShapes(t *testing.T) {
	path := writeBlocks(t, t.TempDir())
	truncate(t, path, 30)

	src, err := OpenShapefile(path, "")
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	features, err := collect(t, src.Features())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shapefile: read")
	assert.Len(t, features, 1)
}

func TestOpenShapefile_MissingDBF(t *testing.T) {
	path := writeBlocks(t, t.TempDir())
	require.NoError(t, os.Remove(strings.TrimSuffix(path, ".shp")+".dbf"))

	_, err := OpenShapefile(path, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shapefile: attribute table")
}

func TestOpenShapefile_BadCharset(t *testing.T) {
	_, err := OpenShapefile(filepath.Join(t.TempDir(), "x.shp"), "klingon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported charset")
}

func TestOpenShapefile_Missing(t *testing.T) {
	_, err := OpenShapefile(filepath.Join(t.TempDir(), "x.shp"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shapefile: open")
}

func TestPolygonToMultiPolygon_HolesAttachToOuter(t *testing.T) {
	outer := shpSquare(0, 0, 2*kmSide)
	// counter-clockwise ring inside outer
	hole := []shp.Point{
		{X: kmSide / 2, Y: kmSide / 2},
		{X: 1.5 * kmSide, Y: kmSide / 2},
		{X: 1.5 * kmSide, Y: 1.5 * kmSide},
		{X: kmSide / 2, Y: 1.5 * kmSide},
		{X: kmSide / 2, Y: kmSide / 2},
	}
	second := shpSquare(1, 0, kmSide)

	pts := append(append(append([]shp.Point{}, outer...), hole...), second...)
	p := &shp.Polygon{NumParts: 3, Parts: []int32{0, 5, 10}, Points: pts}

	g := polygonToMultiPolygon(p)
	require.NotNil(t, g)
	mp := g.(*geom.MultiPolygon)
	require.Equal(t, 2, mp.NumPolygons())
	assert.Equal(t, 2, mp.Polygon(0).NumLinearRings())
	assert.Equal(t, 1, mp.Polygon(1).NumLinearRings())

	a, err := Area(mp)
	require.NoError(t, err)
	assert.InDelta(t, 4_000_000, a, 10)
}

func TestPolygonToMultiPolygon_Empty(t *testing.T) {
	assert.Nil(t, polygonToMultiPolygon(&shp.Polygon{}))
	assert.Nil(t, polygonToMultiPolygon(nil))
}

func TestShapeToGeom(t *testing.T) {
	g := shapeToGeom(&shp.Point{X: -80.19, Y: 25.77})
	require.IsType(t, &geom.Point{}, g)
	assert.Equal(t, []float64{-80.19, 25.77}, g.FlatCoords())

	assert.Nil(t, shapeToGeom(&shp.PolyLine{}))
	assert.Nil(t, shapeToGeom(nil))
}

func TestSignedPlanarArea(t *testing.T) {
	ccw := []float64{0, 0, 1, 0, 1, 1, 0, 1, 0, 0}
	assert.InDelta(t, 1.0, signedPlanarArea(ccw), 1e-12)

	cw := []float64{0, 0, 0, 1, 1, 1, 1, 0, 0, 0}
	assert.InDelta(t, -1.0, signedPlanarArea(cw), 1e-12)
}
