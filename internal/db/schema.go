// Package db builds PostgreSQL bulk-load scripts: a schema preamble, COPY
// text rows, and the trailer that terminates the COPY and commits.
package db

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrInvalidSchema is returned when a table name or column list cannot
// produce a CREATE TABLE statement.
var ErrInvalidSchema = eris.New("invalid schema")

// Column describes one table column.
type Column struct {
	Name string `yaml:"name" mapstructure:"name"` // e.g., "BLOCKID10"
	Type string `yaml:"type" mapstructure:"type"` // opaque to us, e.g., "character varying(80)"
}

// Schema is an ordered column list. Order is both the physical column order
// of the created table and the field order of every COPY row.
type Schema []Column

// Row maps column names to scalar values for one COPY line.
type Row map[string]any

// Names returns the column names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// Validate checks that the schema has at least one column, that every
// column has a name and a type, and that names are distinct.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return eris.Wrap(ErrInvalidSchema, "db: schema has no columns")
	}

	seen := make(map[string]bool, len(s))
	for i, c := range s {
		if strings.TrimSpace(c.Name) == "" {
			return eris.Wrapf(ErrInvalidSchema, "db: column %d has no name", i)
		}
		if strings.TrimSpace(c.Type) == "" {
			return eris.Wrapf(ErrInvalidSchema, "db: column %q has no type", c.Name)
		}
		if seen[c.Name] {
			return eris.Wrapf(ErrInvalidSchema, "db: duplicate column %q", c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}

// With returns a copy of the schema with extra columns appended.
func (s Schema) With(cols ...Column) Schema {
	out := make(Schema, 0, len(s)+len(cols))
	out = append(out, s...)
	return append(out, cols...)
}
