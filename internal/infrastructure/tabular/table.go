// Package tabular reads header-first CSV tables into memory.
package tabular

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/turtacn/odorscape/pkg/errors"
)

// Table is an in-memory CSV table with named columns.
type Table struct {
	Header []string
	Rows   [][]string
	index  map[string]int
}

// Read parses a CSV stream whose first record is the header.  Rows may be
// ragged; missing trailing cells read as empty.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.CodeMalformedTable, "table has no header")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeMalformedTable, "failed to read header")
	}

	t := &Table{Header: header, index: make(map[string]int, len(header))}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		t.Header[i] = h
		if _, dup := t.index[h]; dup {
			return nil, errors.New(errors.CodeMalformedTable, "duplicate column").WithDetail(h)
		}
		t.index[h] = i
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeMalformedTable, "failed to read row")
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// Opener opens a named input for reading.
type Opener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Load opens name through o and reads it as a table.
func Load(ctx context.Context, o Opener, name string) (*Table, error) {
	rc, err := o.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	t, err := Read(rc)
	if err != nil {
		return nil, errors.Wrap(err, errors.GetCode(err), "failed to parse table").WithDetail(name)
	}
	return t, nil
}

// Len is the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Has reports whether the table has column name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the index of column name.
func (t *Table) Column(name string) (int, error) {
	i, ok := t.index[name]
	if !ok {
		return -1, errors.New(errors.CodeMissingColumn, "missing column").WithDetail(name)
	}
	return i, nil
}

// Require checks that every named column exists.
func (t *Table) Require(names ...string) error {
	for _, n := range names {
		if _, err := t.Column(n); err != nil {
			return err
		}
	}
	return nil
}

// Cell returns the trimmed value at row, col, or "" when the row is short.
func (t *Table) Cell(row, col int) string {
	if col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.Rows[row][col])
}

// Float parses the cell at row, col.  ok is false for blank or non-numeric
// cells, including NaN.
func (t *Table) Float(row, col int) (v float64, ok bool) {
	s := t.Cell(row, col)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != v {
		return 0, false
	}
	return v, true
}
