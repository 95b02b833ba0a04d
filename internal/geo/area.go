package geo

import (
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// ErrGeometry is returned for geometries that have no measurable area.
var ErrGeometry = eris.New("invalid geometry")

// EarthRadius is the WGS84 equatorial radius in meters.
const EarthRadius = 6378137.0

// Area returns the spherical area of g in square meters. Polygon holes are
// subtracted; multi-geometries and collections sum their members. Points,
// lines, nil geometries and rings with fewer than three coordinates are
// reported as ErrGeometry.
func Area(g geom.T) (float64, error) {
	switch t := g.(type) {
	case nil:
		return 0, eris.Wrap(ErrGeometry, "geo: area of nil geometry")
	case *geom.Polygon:
		return polygonArea(t)
	case *geom.MultiPolygon:
		var total float64
		for i := 0; i < t.NumPolygons(); i++ {
			a, err := polygonArea(t.Polygon(i))
			if err != nil {
				return 0, eris.Wrapf(err, "geo: polygon %d", i)
			}
			total += a
		}
		if t.NumPolygons() == 0 {
			return 0, eris.Wrap(ErrGeometry, "geo: empty multipolygon")
		}
		return total, nil
	case *geom.GeometryCollection:
		if t.NumGeoms() == 0 {
			return 0, eris.Wrap(ErrGeometry, "geo: empty geometry collection")
		}
		var total float64
		for i, member := range t.Geoms() {
			a, err := Area(member)
			if err != nil {
				return 0, eris.Wrapf(err, "geo: collection member %d", i)
			}
			total += a
		}
		return total, nil
	default:
		return 0, eris.Wrapf(ErrGeometry, "geo: %T has no area", g)
	}
}

func polygonArea(p *geom.Polygon) (float64, error) {
	if p == nil || p.NumLinearRings() == 0 {
		return 0, eris.Wrap(ErrGeometry, "geo: polygon has no rings")
	}

	var area float64
	for i := 0; i < p.NumLinearRings(); i++ {
		coords := p.LinearRing(i).Coords()
		if len(coords) < 3 {
			return 0, eris.Wrapf(ErrGeometry, "geo: ring %d has %d coordinates", i, len(coords))
		}
		a := math.Abs(ringArea(coords))
		if i == 0 {
			area = a
		} else {
			area -= a
		}
	}
	return area, nil
}

// ringArea is the signed spherical excess approximation for a lon/lat ring
// (Chamberlain & Duquette). Indices wrap around, so the result is the same
// whether or not the ring repeats its first coordinate.
func ringArea(coords []geom.Coord) float64 {
	n := len(coords)
	var sum float64
	for i := 0; i < n; i++ {
		lower := coords[i]
		middle := coords[(i+1)%n]
		upper := coords[(i+2)%n]
		sum += (rad(upper.X()) - rad(lower.X())) * math.Sin(rad(middle.Y()))
	}
	return sum * EarthRadius * EarthRadius / 2
}

func rad(deg float64) float64 { return deg * math.Pi / 180 }
