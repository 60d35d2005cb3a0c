package extrapolation

import (
	"context"
	"sort"
	"strconv"

	"github.com/turtacn/odorscape/internal/infrastructure/tabular"
	"github.com/turtacn/odorscape/pkg/errors"
)

// Sampling-table column names.
const (
	ColumnHAC     = "hac"
	ColumnTotal   = "total_count"
	ColumnSampled = "sampled_count"
)

// Stratum is one heavy-atom-count row of the sampling table.
type Stratum struct {
	HAC     int     `json:"hac" yaml:"hac"`
	Total   float64 `json:"total_count" yaml:"total_count"`
	Sampled float64 `json:"sampled_count" yaml:"sampled_count"`
}

// Ratio is Total / Sampled.
func (s Stratum) Ratio() float64 { return s.Total / s.Sampled }

// SamplingTable maps heavy-atom count to the ratio between the size of the
// full virtual space and the size of the sample at that count.  It is
// immutable once built.
type SamplingTable struct {
	strata map[int]Stratum
}

// NewSamplingTable validates strata and returns a table.  Every stratum must
// have a positive sampled count, a total at least as large, and a unique HAC.
func NewSamplingTable(strata []Stratum) (*SamplingTable, error) {
	if len(strata) == 0 {
		return nil, errors.New(errors.CodeInvalidSamplingTable, "sampling table is empty")
	}
	t := &SamplingTable{strata: make(map[int]Stratum, len(strata))}
	for _, s := range strata {
		if _, dup := t.strata[s.HAC]; dup {
			return nil, errors.New(errors.CodeInvalidSamplingTable, "duplicate heavy-atom count").WithDetailf("hac=%d", s.HAC)
		}
		if s.HAC < 0 || s.Sampled <= 0 || s.Total < s.Sampled {
			return nil, errors.New(errors.CodeInvalidSamplingTable, "invalid stratum").
				WithDetailf("hac=%d total=%g sampled=%g", s.HAC, s.Total, s.Sampled)
		}
		t.strata[s.HAC] = s
	}
	return t, nil
}

// Ratio returns the reweighting multiplier for hac.  A count outside the
// table is an error; there is no default weight.
func (t *SamplingTable) Ratio(hac int) (float64, error) {
	s, ok := t.strata[hac]
	if !ok {
		return 0, errors.New(errors.CodeMissingLookupKey, "heavy-atom count not in sampling table").WithDetailf("hac=%d", hac)
	}
	return s.Ratio(), nil
}

// Strata returns the rows in ascending HAC order.
func (t *SamplingTable) Strata() []Stratum {
	out := make([]Stratum, 0, len(t.strata))
	for _, s := range t.strata {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HAC < out[j].HAC })
	return out
}

// ReadSamplingTable interprets t as a sampling table with the hac,
// total_count and sampled_count columns.
func ReadSamplingTable(t *tabular.Table) (*SamplingTable, error) {
	if err := t.Require(ColumnHAC, ColumnTotal, ColumnSampled); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidSamplingTable, "sampling table is missing a column")
	}
	hacCol, _ := t.Column(ColumnHAC)
	totalCol, _ := t.Column(ColumnTotal)
	sampledCol, _ := t.Column(ColumnSampled)

	strata := make([]Stratum, 0, t.Len())
	for row := 0; row < t.Len(); row++ {
		hac, err := strconv.Atoi(t.Cell(row, hacCol))
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidSamplingTable, "non-integer heavy-atom count").WithDetailf("row %d", row)
		}
		total, ok := t.Float(row, totalCol)
		if !ok {
			return nil, errors.New(errors.CodeInvalidSamplingTable, "non-numeric total count").WithDetailf("row %d", row)
		}
		sampled, ok := t.Float(row, sampledCol)
		if !ok {
			return nil, errors.New(errors.CodeInvalidSamplingTable, "non-numeric sampled count").WithDetailf("row %d", row)
		}
		strata = append(strata, Stratum{HAC: hac, Total: total, Sampled: sampled})
	}
	return NewSamplingTable(strata)
}

// LoadSamplingTable opens path through o and reads it with ReadSamplingTable.
func LoadSamplingTable(ctx context.Context, o tabular.Opener, path string) (*SamplingTable, error) {
	t, err := tabular.Load(ctx, o, path)
	if err != nil {
		return nil, err
	}
	return ReadSamplingTable(t)
}
