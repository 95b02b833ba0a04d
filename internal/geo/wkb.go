package geo

import (
	"encoding/hex"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

// SRID is the spatial reference of every geometry this package emits.
const SRID = 4326

// EncodeEWKBHex converts a polygonal geometry to hex EWKB as a
// MultiPolygon with SRID 4326, the text form PostGIS accepts in COPY data.
func EncodeEWKBHex(g geom.T) (string, error) {
	mp, err := ToMultiPolygon(g)
	if err != nil {
		return "", err
	}

	data, err := ewkb.Marshal(mp.Clone().SetSRID(SRID), ewkb.NDR)
	if err != nil {
		return "", eris.Wrap(err, "geo: encode WKB")
	}
	return hex.EncodeToString(data), nil
}

// ToMultiPolygon promotes a Polygon, MultiPolygon or polygon-only
// GeometryCollection to a MultiPolygon.
func ToMultiPolygon(g geom.T) (*geom.MultiPolygon, error) {
	switch t := g.(type) {
	case *geom.MultiPolygon:
		return t, nil
	case *geom.Polygon:
		mp := geom.NewMultiPolygon(t.Layout())
		if err := mp.Push(t); err != nil {
			return nil, eris.Wrapf(ErrGeometry, "geo: promote polygon: %v", err)
		}
		return mp, nil
	case *geom.GeometryCollection:
		var mp *geom.MultiPolygon
		for i, member := range t.Geoms() {
			part, err := ToMultiPolygon(member)
			if err != nil {
				return nil, eris.Wrapf(err, "geo: collection member %d", i)
			}
			if mp == nil {
				mp = geom.NewMultiPolygon(part.Layout())
			}
			for j := 0; j < part.NumPolygons(); j++ {
				if err := mp.Push(part.Polygon(j)); err != nil {
					return nil, eris.Wrapf(ErrGeometry, "geo: collection member %d: %v", i, err)
				}
			}
		}
		if mp == nil {
			return nil, eris.Wrap(ErrGeometry, "geo: empty geometry collection")
		}
		return mp, nil
	case nil:
		return nil, eris.Wrap(ErrGeometry, "geo: nil geometry")
	default:
		return nil, eris.Wrapf(ErrGeometry, "geo: %T is not polygonal", g)
	}
}
