// Package dataset defines the labelled molecule records that every analysis
// stage consumes, and the Dataset collection that guarantees identifier
// uniqueness.
package dataset

import (
	"math"
	"strings"

	"github.com/turtacn/odorscape/internal/domain/molecule"
)

// ─────────────────────────────────────────────────────────────────────────────
// Label
// ─────────────────────────────────────────────────────────────────────────────

// Label is the odor annotation of a record.
type Label int8

const (
	LabelUnknown  Label = 0
	LabelOdorless Label = -1
	LabelOdorous  Label = 1
)

// String returns the string representation of the label.
func (l Label) String() string {
	switch l {
	case LabelOdorous:
		return "odorous"
	case LabelOdorless:
		return "odorless"
	default:
		return "unknown"
	}
}

// Known reports whether the label is odorous or odorless.
func (l Label) Known() bool { return l != LabelUnknown }

// Positive reports whether the label is odorous.
func (l Label) Positive() bool { return l == LabelOdorous }

// Vocabulary maps raw label cells to labels, case-insensitively.
type Vocabulary struct {
	odorous  map[string]struct{}
	odorless map[string]struct{}
}

// NewVocabulary builds a vocabulary from the two token lists.
func NewVocabulary(odorous, odorless []string) Vocabulary {
	v := Vocabulary{
		odorous:  make(map[string]struct{}, len(odorous)),
		odorless: make(map[string]struct{}, len(odorless)),
	}
	for _, t := range odorous {
		v.odorous[normalizeToken(t)] = struct{}{}
	}
	for _, t := range odorless {
		v.odorless[normalizeToken(t)] = struct{}{}
	}
	return v
}

// Classify returns the label for raw, LabelUnknown when raw is in neither
// list.
func (v Vocabulary) Classify(raw string) Label {
	t := normalizeToken(raw)
	if _, ok := v.odorous[t]; ok {
		return LabelOdorous
	}
	if _, ok := v.odorless[t]; ok {
		return LabelOdorless
	}
	return LabelUnknown
}

func normalizeToken(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// ─────────────────────────────────────────────────────────────────────────────
// Record
// ─────────────────────────────────────────────────────────────────────────────

// Record is one cleaned dataset row.  It is created once by the loader and
// not modified afterwards.
type Record struct {
	// SMILES is the identifier cell as read from the source, unique across
	// the dataset.  It may carry trailing text that parsing ignores, so
	// Molecule.SMILES can be shorter.
	SMILES   string
	Molecule *molecule.Molecule
	Label    Label

	// Precomputed descriptor columns; NaN when the column is absent or blank.
	MW         float64
	BP         float64
	LogPColumn float64
	DatasetTag string

	// LogP is the partition coefficient computed from the structure.
	LogP float64

	// Row is the zero-based data row of the source table.
	Row int
}

// NewRecord builds a record for a sanitized molecule under identifier id;
// an empty id falls back to the molecule's SMILES.  Descriptor columns start
// as NaN.
func NewRecord(id string, m *molecule.Molecule, label Label, row int) *Record {
	if id == "" {
		id = m.SMILES
	}
	return &Record{
		SMILES:     id,
		Molecule:   m,
		Label:      label,
		MW:         math.NaN(),
		BP:         math.NaN(),
		LogPColumn: math.NaN(),
		LogP:       m.Properties.LogP,
		Row:        row,
	}
}

// MolecularWeight returns the precomputed MW column when present, otherwise
// the weight computed from the structure.
func (r *Record) MolecularWeight() float64 {
	if !math.IsNaN(r.MW) {
		return r.MW
	}
	return r.Molecule.Properties.MolecularWeight
}

// Heteroatoms is the count of atoms other than carbon and hydrogen.
func (r *Record) Heteroatoms() int { return r.Molecule.HeteroatomCount() }

// HeavyAtoms is the heavy-atom count.
func (r *Record) HeavyAtoms() int { return r.Molecule.HeavyAtomCount() }
