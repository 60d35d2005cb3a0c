package dataset

import (
	"github.com/turtacn/odorscape/pkg/errors"
)

// Dataset is an ordered, identifier-unique collection of records.
type Dataset struct {
	records []*Record
	index   map[string]int
}

// New builds a dataset.  A repeated SMILES identifier is data corruption and
// fails with CodeDuplicateIdentifier.
func New(records []*Record) (*Dataset, error) {
	d := &Dataset{
		records: make([]*Record, 0, len(records)),
		index:   make(map[string]int, len(records)),
	}
	for _, r := range records {
		if r == nil {
			return nil, errors.InvalidParam("nil record")
		}
		if prev, dup := d.index[r.SMILES]; dup {
			return nil, errors.New(errors.CodeDuplicateIdentifier, "duplicate identifier in dataset").
				WithDetailf("%s (rows %d and %d)", r.SMILES, d.records[prev].Row, r.Row)
		}
		d.index[r.SMILES] = len(d.records)
		d.records = append(d.records, r)
	}
	return d, nil
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Records returns the records in load order.  The slice is shared and must
// not be modified.
func (d *Dataset) Records() []*Record { return d.records }

// At returns the record at position i.
func (d *Dataset) At(i int) *Record { return d.records[i] }

// Get looks a record up by identifier.
func (d *Dataset) Get(smiles string) (*Record, bool) {
	i, ok := d.index[smiles]
	if !ok {
		return nil, false
	}
	return d.records[i], true
}

// IndexOf returns the position of an identifier, or -1.
func (d *Dataset) IndexOf(smiles string) int {
	if i, ok := d.index[smiles]; ok {
		return i
	}
	return -1
}

// IDs returns the identifiers in load order.
func (d *Dataset) IDs() []string {
	out := make([]string, len(d.records))
	for i, r := range d.records {
		out[i] = r.SMILES
	}
	return out
}

// LabelCounts returns the number of records per label.
func (d *Dataset) LabelCounts() map[Label]int {
	out := make(map[Label]int, 3)
	for _, r := range d.records {
		out[r.Label]++
	}
	return out
}
