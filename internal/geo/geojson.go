package geo

import (
	"encoding/json"
	"errors"
	"io"
	"iter"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// ReadGeoJSON lazily decodes features from r. The input may be a
// FeatureCollection object or a bare JSON array of Features; only one
// feature is held in memory at a time. Iteration stops after the first
// error, which is yielded with a nil feature.
func ReadGeoJSON(r io.Reader) iter.Seq2[*geojson.Feature, error] {
	return func(yield func(*geojson.Feature, error) bool) {
		dec := json.NewDecoder(r)

		tok, err := dec.Token()
		if err == io.EOF {
			yield(nil, eris.New("geojson: empty input"))
			return
		}
		if err != nil {
			yield(nil, eris.Wrap(err, "geojson: read opening token"))
			return
		}

		switch tok {
		case json.Delim('['):
			err = decodeFeatureArray(dec, yield)
		case json.Delim('{'):
			err = decodeCollection(dec, yield)
		default:
			err = eris.Errorf("geojson: expected object or array, got %v", tok)
		}
		if err != nil && !errors.Is(err, errStopped) {
			yield(nil, err)
		}
	}
}

// errStopped signals that the consumer stopped iterating.
var errStopped = eris.New("geojson: iteration stopped")

func decodeCollection(dec *json.Decoder, yield func(*geojson.Feature, error) bool) error {
	var sawFeatures bool
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return eris.Wrap(err, "geojson: read member name")
		}
		key, ok := tok.(string)
		if !ok {
			return eris.Errorf("geojson: expected member name, got %v", tok)
		}

		switch key {
		case "type":
			var typ string
			if err := dec.Decode(&typ); err != nil {
				return eris.Wrap(err, "geojson: decode type")
			}
			if typ != "FeatureCollection" {
				return eris.Errorf("geojson: expected FeatureCollection, got %q", typ)
			}
		case "features":
			tok, err := dec.Token()
			if err != nil {
				return eris.Wrap(err, "geojson: read features token")
			}
			if tok != json.Delim('[') {
				return eris.Errorf("geojson: expected features array, got %v", tok)
			}
			sawFeatures = true
			if err := decodeFeatureArray(dec, yield); err != nil {
				return err
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return eris.Wrapf(err, "geojson: skip member %q", key)
			}
		}
	}

	if _, err := dec.Token(); err != nil {
		return eris.Wrap(err, "geojson: read closing token")
	}
	if !sawFeatures {
		return eris.New("geojson: collection has no features member")
	}
	return nil
}

// decodeFeatureArray decodes elements after the opening '[' and consumes
// the closing ']'.
func decodeFeatureArray(dec *json.Decoder, yield func(*geojson.Feature, error) bool) error {
	var n int
	for dec.More() {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return eris.Wrapf(err, "geojson: decode feature %d", n)
		}
		f := &geojson.Feature{}
		if err := json.Unmarshal(raw, f); err != nil {
			return featureError(raw, n, err)
		}
		n++
		if !yield(f, nil) {
			return errStopped
		}
	}
	if _, err := dec.Token(); err != nil {
		return eris.Wrap(err, "geojson: read end of features array")
	}
	return nil
}

// featureError classifies a well-formed feature that failed to decode. A
// geometry go-geom rejects is ErrGeometry; anything else stays a decode
// error.
func featureError(raw json.RawMessage, n int, err error) error {
	var parts struct {
		Geometry *geojson.Geometry `json:"geometry"`
	}
	if json.Unmarshal(raw, &parts) == nil && parts.Geometry != nil {
		if _, gerr := parts.Geometry.Decode(); gerr != nil {
			return eris.Wrapf(ErrGeometry, "geojson: decode feature %d: %v", n, gerr)
		}
	}
	return eris.Wrapf(err, "geojson: decode feature %d", n)
}
