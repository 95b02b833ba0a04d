package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/geocopy/internal/db"
)

// columnsFile is the on-disk layout of a columns file. Columns may be a
// sequence of {name, type} entries or a mapping of name to type; mapping
// order is kept.
type columnsFile struct {
	Columns yaml.Node `yaml:"columns"`
}

// LoadColumns reads an ordered column list from a YAML file:
//
//	columns:
//	  BLOCKID10: character varying(80)
//	  pop_per_sq_km: real
//
// or
//
//	columns:
//	  - {name: BLOCKID10, type: character varying(80)}
//	  - {name: pop_per_sq_km, type: real}
func LoadColumns(path string) (db.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read columns file %s", path)
	}
	return ParseColumns(data)
}

// ParseColumns decodes a columns document. The schema is validated.
func ParseColumns(data []byte) (db.Schema, error) {
	var doc columnsFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrap(err, "config: parse columns")
	}

	var schema db.Schema
	node := doc.Columns
	switch node.Kind {
	case yaml.SequenceNode:
		if err := node.Decode(&schema); err != nil {
			return nil, eris.Wrap(err, "config: decode column list")
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			name, typ := node.Content[i], node.Content[i+1]
			if typ.Kind != yaml.ScalarNode {
				return nil, eris.Errorf("config: column %q: type must be a string (line %d)", name.Value, typ.Line)
			}
			schema = append(schema, db.Column{Name: name.Value, Type: typ.Value})
		}
	case 0:
		return nil, eris.Wrap(db.ErrInvalidSchema, "config: columns file has no columns")
	default:
		return nil, eris.Errorf("config: columns must be a list or mapping (line %d)", node.Line)
	}

	if err := schema.Validate(); err != nil {
		return nil, eris.Wrap(err, "config: columns")
	}
	return schema, nil
}
