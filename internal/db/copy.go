package db

import (
	"io"

	"github.com/rotisserie/eris"
)

// CopyWriter streams a bulk-load script to w: Begin writes the preamble,
// each Write appends one COPY line, and Finish writes the trailer. Nothing
// is buffered beyond the line being written.
type CopyWriter struct {
	w      io.Writer
	table  string
	schema Schema

	rows     int64
	begun    bool
	finished bool
}

// NewCopyWriter validates the table name and schema and returns a writer.
// No output is produced until Begin.
func NewCopyWriter(w io.Writer, table string, schema Schema) (*CopyWriter, error) {
	if _, err := Preamble(table, schema); err != nil {
		return nil, err
	}
	return &CopyWriter{w: w, table: table, schema: schema}, nil
}

// Begin writes the preamble. It must be called exactly once, before Write.
func (c *CopyWriter) Begin() error {
	if c.begun {
		return eris.New("db: copy script already begun")
	}
	text, err := Preamble(c.table, c.schema)
	if err != nil {
		return err
	}
	c.begun = true
	if _, err := io.WriteString(c.w, text); err != nil {
		return eris.Wrapf(err, "db: write preamble for %s", c.table)
	}
	return nil
}

// Write appends one COPY line for row.
func (c *CopyWriter) Write(row Row) error {
	if !c.begun || c.finished {
		return eris.New("db: copy row written outside of Begin/Finish")
	}
	if _, err := io.WriteString(c.w, SerializeRow(row, c.schema)); err != nil {
		return eris.Wrapf(err, "db: write row %d into %s", c.rows+1, c.table)
	}
	c.rows++
	return nil
}

// Finish writes the COPY terminator and COMMIT. It is valid after zero rows.
func (c *CopyWriter) Finish() error {
	if !c.begun {
		return eris.New("db: copy script finished before Begin")
	}
	if c.finished {
		return eris.New("db: copy script already finished")
	}
	c.finished = true
	if _, err := io.WriteString(c.w, Trailer); err != nil {
		return eris.Wrapf(err, "db: write trailer for %s", c.table)
	}
	return nil
}

// Rows returns the number of rows written so far.
func (c *CopyWriter) Rows() int64 { return c.rows }

// Schema returns the column order rows are written in.
func (c *CopyWriter) Schema() Schema { return c.schema }
