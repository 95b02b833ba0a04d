// Package derive maps geographic features to table rows.
package derive

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/geocopy/internal/db"
	"github.com/sells-group/geocopy/internal/geo"
)

// ErrDerivation is returned when a feature lacks the properties a
// derivation needs.
var ErrDerivation = eris.New("derivation failed")

// Derivation computes the column values of one table row from a feature.
// Implementations must not modify the feature.
type Derivation interface {
	Derive(f *geojson.Feature) (db.Row, error)
}

// Func adapts a plain function to Derivation.
type Func func(f *geojson.Feature) (db.Row, error)

// Derive calls fn(f).
func (fn Func) Derive(f *geojson.Feature) (db.Row, error) { return fn(f) }

// DeriveRow runs d on f. The row holds exactly the keys d populated; no
// defaults are filled in.
func DeriveRow(f *geojson.Feature, d Derivation) (db.Row, error) {
	if f == nil {
		return nil, eris.Wrap(ErrDerivation, "derive: nil feature")
	}
	row, err := d.Derive(f)
	if err != nil {
		if f.ID != "" {
			return nil, eris.Wrapf(err, "derive: feature %s", f.ID)
		}
		return nil, err
	}
	if row == nil {
		row = db.Row{}
	}
	return row, nil
}

// GeometryColumn is the column added for WithGeometry.
func GeometryColumn(name string) db.Column {
	return db.Column{Name: name, Type: "geometry(MultiPolygon,4326)"}
}

// WithGeometry wraps d so that every row also carries the feature geometry
// as hex EWKB under column.
func WithGeometry(d Derivation, column string) Derivation {
	return Func(func(f *geojson.Feature) (db.Row, error) {
		row, err := d.Derive(f)
		if err != nil {
			return nil, err
		}
		wkb, err := geo.EncodeEWKBHex(f.Geometry)
		if err != nil {
			return nil, eris.Wrapf(err, "derive: geometry column %s", column)
		}
		out := make(db.Row, len(row)+1)
		for k, v := range row {
			out[k] = v
		}
		out[column] = wkb
		return out, nil
	})
}

// Property returns a required property. Missing and null values are
// ErrDerivation.
func Property(f *geojson.Feature, key string) (any, error) {
	v, ok := f.Properties[key]
	if !ok || v == nil {
		return nil, eris.Wrapf(ErrDerivation, "derive: property %s is missing", key)
	}
	return v, nil
}

// Number returns a required numeric property. Numeric strings are parsed;
// anything else is ErrDerivation.
func Number(f *geojson.Feature, key string) (float64, error) {
	v, err := Property(f, key)
	if err != nil {
		return 0, err
	}

	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, eris.Wrapf(ErrDerivation, "derive: property %s is not a number: %q", key, n)
		}
		return parsed, nil
	default:
		return 0, eris.Wrapf(ErrDerivation, "derive: property %s has type %T, want number", key, v)
	}
}
