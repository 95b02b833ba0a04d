package db

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// Trailer ends the COPY data block and commits the transaction.
const Trailer = "\\.\nCOMMIT;\n\n"

// Preamble returns the five script lines that precede the COPY data:
// client encoding, standard conforming strings, BEGIN, CREATE TABLE and the
// COPY ... FROM stdin header.
//
// Column names and types are emitted as given. Only the table name in
// CREATE TABLE is quoted; callers are responsible for identifier-safe names.
func Preamble(table string, schema Schema) (string, error) {
	if strings.TrimSpace(table) == "" {
		return "", eris.Wrap(ErrInvalidSchema, "db: table name is empty")
	}
	if err := schema.Validate(); err != nil {
		return "", err
	}

	defs := make([]string, len(schema))
	for i, c := range schema {
		defs[i] = c.Name + " " + c.Type
	}

	var b strings.Builder
	b.WriteString("SET CLIENT_ENCODING TO UTF8;\n")
	b.WriteString("SET STANDARD_CONFORMING_STRINGS TO ON;\n")
	b.WriteString("BEGIN;\n")
	fmt.Fprintf(&b, "CREATE TABLE %s (%s);\n", pgx.Identifier{table}.Sanitize(), strings.Join(defs, ","))
	fmt.Fprintf(&b, "COPY %s (%s) FROM stdin;\n", table, strings.Join(schema.Names(), ","))
	return b.String(), nil
}

// SerializeRow renders one tab-delimited COPY line (with trailing newline)
// in schema order. Columns missing from row render as empty fields.
// Values are not escaped.
func SerializeRow(row Row, schema Schema) string {
	var b strings.Builder
	for i, c := range schema {
		if i > 0 {
			b.WriteByte('\t')
		}
		b.WriteString(FormatValue(row[c.Name]))
	}
	b.WriteByte('\n')
	return b.String()
}
