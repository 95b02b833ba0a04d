package derive

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/geocopy/internal/db"
	"github.com/sells-group/geocopy/internal/geo"
)

// ZikaSchema is the florida_zika table layout.
var ZikaSchema = db.Schema{
	{Name: "BLOCKID10", Type: "character varying(80)"},
	{Name: "pop_per_sq_km", Type: "real"},
	{Name: "zika_risk", Type: "bool"},
}

// ZikaDensity derives population density and the Aedes aegypti risk flag
// for a 2010 census block.
//
// pop_per_sq_km is POP10 / area_m2 * 1000. Despite the column name this is
// not people per km² (that would be * 1e6).
type ZikaDensity struct {
	// Area measures the block geometry in m². Defaults to geo.Area.
	Area func(geom.T) (float64, error)
}

// Derive implements Derivation.
func (z ZikaDensity) Derive(f *geojson.Feature) (db.Row, error) {
	id, err := Property(f, "BLOCKID10")
	if err != nil {
		return nil, err
	}
	pop, err := Number(f, "POP10")
	if err != nil {
		return nil, err
	}

	area := z.Area
	if area == nil {
		area = geo.Area
	}
	sqMeters, err := area(f.Geometry)
	if err != nil {
		return nil, eris.Wrapf(err, "derive: area of block %v", id)
	}
	if sqMeters == 0 {
		return nil, eris.Wrapf(geo.ErrGeometry, "derive: block %v has zero area", id)
	}

	return db.Row{
		"BLOCKID10":     db.FormatValue(id),
		"pop_per_sq_km": pop / sqMeters * 1000,
		"zika_risk":     f.Properties["risk_zone"],
	}, nil
}
