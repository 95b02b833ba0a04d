package geo

import (
	"iter"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// ShapefileSource yields features from an ESRI shapefile and its .dbf
// attribute table.
type ShapefileSource struct {
	path    string
	reader  *shp.Reader
	fields  []shp.Field
	decoder *encoding.Decoder
}

// OpenShapefile opens shpPath. Attribute text is decoded from charset
// (any WHATWG label, e.g. "windows-1252"); empty means UTF-8.
func OpenShapefile(shpPath, charset string) (*ShapefileSource, error) {
	if charset == "" {
		charset = "utf-8"
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, eris.Wrapf(err, "shapefile: unsupported charset %q", charset)
	}

	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "shapefile: open %s", shpPath)
	}

	// go-shp opens the .dbf lazily and drops the error, which would leave
	// every feature without attributes.
	dbfPath := strings.TrimSuffix(shpPath, filepath.Ext(shpPath)) + ".dbf"
	if _, err := os.Stat(dbfPath); err != nil {
		_ = reader.Close()
		return nil, eris.Wrapf(err, "shapefile: attribute table %s", dbfPath)
	}

	return &ShapefileSource{
		path:    shpPath,
		reader:  reader,
		fields:  reader.Fields(),
		decoder: enc.NewDecoder(),
	}, nil
}

// Features iterates over the shapefile records in file order. A source can
// be iterated once.
func (s *ShapefileSource) Features() iter.Seq2[*geojson.Feature, error] {
	return func(yield func(*geojson.Feature, error) bool) {
		var missing int
		for s.reader.Next() {
			idx, shape := s.reader.Shape()

			props, err := s.attributes()
			if err != nil {
				yield(nil, eris.Wrapf(err, "shapefile: record %d", idx))
				return
			}

			g := shapeToGeom(shape)
			if g == nil && shape != nil {
				missing++
			}

			f := &geojson.Feature{
				ID:         strconv.Itoa(idx),
				Geometry:   g,
				Properties: props,
			}
			if !yield(f, nil) {
				return
			}
		}

		if err := s.reader.Err(); err != nil {
			yield(nil, eris.Wrapf(err, "shapefile: read %s", s.path))
			return
		}

		if missing > 0 {
			zap.L().Debug("shapefile: records without usable geometry",
				zap.String("path", s.path),
				zap.Int("count", missing),
			)
		}
	}
}

// Close releases the underlying files.
func (s *ShapefileSource) Close() error {
	return s.reader.Close()
}

// attributes reads the current record's DBF fields. Numeric fields become
// float64, logical fields bool, blanks nil; everything else is text.
func (s *ShapefileSource) attributes() (map[string]any, error) {
	props := make(map[string]any, len(s.fields))
	for i, f := range s.fields {
		name := strings.TrimRight(f.String(), "\x00")
		raw := strings.TrimSpace(strings.TrimRight(s.reader.Attribute(i), "\x00"))
		if raw == "" {
			props[name] = nil
			continue
		}

		switch f.Fieldtype {
		case 'N', 'F':
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, eris.Wrapf(err, "field %s: parse number %q", name, raw)
			}
			props[name] = v
		case 'L':
			switch strings.ToUpper(raw) {
			case "T", "Y":
				props[name] = true
			case "F", "N":
				props[name] = false
			default:
				props[name] = nil
			}
		default:
			text, err := s.decoder.String(raw)
			if err != nil {
				return nil, eris.Wrapf(err, "field %s: decode text", name)
			}
			props[name] = text
		}
	}
	return props, nil
}

// shapeToGeom converts a go-shp shape to a go-geom geometry. Returns nil for
// shapes without a geometry counterpart.
func shapeToGeom(shape shp.Shape) geom.T {
	switch s := shape.(type) {
	case *shp.Point:
		return geom.NewPointFlat(geom.XY, []float64{s.X, s.Y})
	case *shp.Polygon:
		return polygonToMultiPolygon(s)
	default:
		return nil
	}
}

// polygonToMultiPolygon converts a shapefile Polygon to a geom.MultiPolygon.
// Shapefile outer rings are clockwise; counter-clockwise rings are holes of
// the preceding outer ring.
func polygonToMultiPolygon(p *shp.Polygon) geom.T {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	var current *geom.Polygon

	flush := func() {
		if current == nil {
			return
		}
		if err := mp.Push(current); err != nil {
			zap.L().Debug("shapefile: skipping malformed polygon part", zap.Error(err))
		}
		current = nil
	}

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if end-start < 3 {
			continue
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if signedPlanarArea(flat) > 0 && current != nil {
			if err := current.Push(ring); err != nil {
				zap.L().Debug("shapefile: skipping malformed hole", zap.Int32("part", i), zap.Error(err))
			}
			continue
		}

		flush()
		current = geom.NewPolygon(geom.XY)
		if err := current.Push(ring); err != nil {
			zap.L().Debug("shapefile: skipping malformed polygon ring", zap.Int32("part", i), zap.Error(err))
			current = nil
		}
	}
	flush()

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}

// signedPlanarArea is the shoelace area of flat XY pairs; positive for
// counter-clockwise rings.
func signedPlanarArea(flat []float64) float64 {
	n := len(flat) / 2
	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += flat[2*i]*flat[2*j+1] - flat[2*j]*flat[2*i+1]
	}
	return sum / 2
}
