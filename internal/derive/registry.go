package derive

import (
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geocopy/internal/db"
)

// Table pairs a derivation with the table it was written for.
type Table struct {
	Name        string // registry key, e.g., "zika_density"
	Table       string // default target table
	Description string
	Schema      db.Schema
	Derivation  Derivation
}

var tables = map[string]Table{
	"zika_density": {
		Name:        "zika_density",
		Table:       "florida_zika",
		Description: "Census block population density and Aedes aegypti risk zone flag",
		Schema:      ZikaSchema,
		Derivation:  ZikaDensity{},
	},
}

// Lookup returns the registered table for name.
func Lookup(name string) (Table, error) {
	t, ok := tables[name]
	if !ok {
		return Table{}, eris.Errorf("derive: unknown derivation %q (available: %v)", name, Names())
	}
	return t, nil
}

// Names lists registered derivations in sorted order.
func Names() []string {
	names := make([]string, 0, len(tables))
	for n := range tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
