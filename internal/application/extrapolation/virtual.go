package extrapolation

import (
	"context"
	"math"
	"strconv"

	"github.com/turtacn/odorscape/internal/config"
	"github.com/turtacn/odorscape/internal/domain/molecule"
	"github.com/turtacn/odorscape/internal/infrastructure/tabular"
	"github.com/turtacn/odorscape/pkg/errors"
)

// VirtualRecord is one molecule of the virtual-space sample.
type VirtualRecord struct {
	SMILES      string
	Molecule    *molecule.Molecule
	HAC         int
	Probability float64

	// Derived by the extrapolator.
	MaxSimilarity float64
	Weight        float64
}

// VirtualSample is the parsed virtual-space sample.
type VirtualSample struct {
	Source  string
	Records []*VirtualRecord
	// Dropped counts rows whose structure did not parse or sanitize.
	Dropped int
}

// Molecules returns the parsed structures in sample order.
func (s *VirtualSample) Molecules() []*molecule.Molecule {
	out := make([]*molecule.Molecule, len(s.Records))
	for i, r := range s.Records {
		out[i] = r.Molecule
	}
	return out
}

// ReadVirtualSample parses t using the virtual-sample column names.  A blank
// HAC cell falls back to the parsed heavy-atom count; the probability must be
// a number in [0, 1].
func ReadVirtualSample(t *tabular.Table, cols config.VirtualConfig) (*VirtualSample, error) {
	smilesCol, err := t.Column(cols.SMILESColumn)
	if err != nil {
		return nil, err
	}
	probCol, err := t.Column(cols.ProbabilityColumn)
	if err != nil {
		return nil, err
	}
	hacCol := -1
	if cols.HACColumn != "" && t.Has(cols.HACColumn) {
		hacCol, _ = t.Column(cols.HACColumn)
	}

	s := &VirtualSample{Records: make([]*VirtualRecord, 0, t.Len())}
	seen := make(map[string]int, t.Len())
	for row := 0; row < t.Len(); row++ {
		smiles := t.Cell(row, smilesCol)
		if smiles == "" {
			s.Dropped++
			continue
		}
		if prev, dup := seen[smiles]; dup {
			return nil, errors.New(errors.CodeDuplicateIdentifier, "duplicate identifier in virtual sample").
				WithDetailf("%s (rows %d and %d)", smiles, prev, row)
		}
		seen[smiles] = row

		p, ok := t.Float(row, probCol)
		if !ok || p < 0 || p > 1 {
			return nil, errors.New(errors.CodeMalformedTable, "probability must be a number in [0, 1]").
				WithDetailf("row %d: %q", row, t.Cell(row, probCol))
		}
		m, err := molecule.NewMolecule(smiles)
		if err != nil {
			s.Dropped++
			continue
		}
		hac := m.HeavyAtomCount()
		if hacCol >= 0 {
			if cell := t.Cell(row, hacCol); cell != "" {
				v, err := strconv.Atoi(cell)
				if err != nil {
					return nil, errors.Wrap(err, errors.CodeMalformedTable, "non-integer heavy-atom count").WithDetailf("row %d", row)
				}
				hac = v
			}
		}
		s.Records = append(s.Records, &VirtualRecord{
			SMILES:        smiles,
			Molecule:      m,
			HAC:           hac,
			Probability:   p,
			MaxSimilarity: math.NaN(),
			Weight:        math.NaN(),
		})
	}
	return s, nil
}

// LoadVirtualSample opens cols.Path through o and reads it with
// ReadVirtualSample.
func LoadVirtualSample(ctx context.Context, o tabular.Opener, cols config.VirtualConfig) (*VirtualSample, error) {
	t, err := tabular.Load(ctx, o, cols.Path)
	if err != nil {
		return nil, err
	}
	s, err := ReadVirtualSample(t, cols)
	if err != nil {
		return nil, err
	}
	s.Source = cols.Path
	return s, nil
}
