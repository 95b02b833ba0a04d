// Package geo reads geographic features from GeoJSON and shapefiles and
// measures their area on the sphere.
package geo

import (
	"bufio"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Source is a single-pass sequence of features backed by an open input.
type Source interface {
	Features() iter.Seq2[*geojson.Feature, error]
	Close() error
}

// Options configures Open.
type Options struct {
	DBFEncoding string // charset of shapefile attribute text; default UTF-8
}

// Open returns a Source for path, chosen by extension: ".shp" opens a
// shapefile, anything else is read as GeoJSON.
func Open(path string, opts Options) (Source, error) {
	if strings.EqualFold(filepath.Ext(path), ".shp") {
		s, err := OpenShapefile(path, opts.DBFEncoding)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := OpenGeoJSON(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GeoJSONSource streams features from a GeoJSON file.
type GeoJSONSource struct {
	file *os.File
	r    io.Reader
}

// OpenGeoJSON opens a GeoJSON file for streaming.
func OpenGeoJSON(path string) (*GeoJSONSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geojson: open %s", path)
	}
	return &GeoJSONSource{file: f, r: bufio.NewReaderSize(f, 64*1024)}, nil
}

// Features iterates over the file's features. A source can be iterated once.
func (s *GeoJSONSource) Features() iter.Seq2[*geojson.Feature, error] {
	return ReadGeoJSON(s.r)
}

// Close closes the file.
func (s *GeoJSONSource) Close() error {
	return s.file.Close()
}
