// Package scoring provides the interchangeable odor-likelihood models: a
// fixed rule over molecular weight and heteroatom count, and precomputed
// held-out score tables produced by externally trained classifiers.
package scoring

import (
	"context"
	"math"
	"strconv"

	"github.com/turtacn/odorscape/internal/domain/dataset"
	"github.com/turtacn/odorscape/internal/domain/prediction"
	"github.com/turtacn/odorscape/internal/infrastructure/tabular"
	"github.com/turtacn/odorscape/pkg/errors"
)

// Scorer produces one continuous score per test record, aligned to test.
// NaN marks a test record the model has no held-out score for.
type Scorer interface {
	Name() string
	Score(fold int, train, test []*dataset.Record) ([]float64, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// Rule of three
// ─────────────────────────────────────────────────────────────────────────────

// Rule constants.  The score peaks at the midpoint of [MinWeight, MaxWeight];
// each heteroatom costs a third of that midpoint weight.
const (
	MinWeight         = 30.0
	MaxWeight         = 300.0
	HeteroatomPenalty = (MinWeight + MaxWeight) / 2 / 3
)

// RuleOfThreeName is the model name of the rule scorer.
const RuleOfThreeName = "rule_of_three"

// RuleScore returns min(mw−30, 300−mw) − 55·heteroatoms.
func RuleScore(mw float64, heteroatoms int) float64 {
	return math.Min(mw-MinWeight, MaxWeight-mw) - HeteroatomPenalty*float64(heteroatoms)
}

// RuleOfThree scores molecules with RuleScore.  It ignores the training
// records.
type RuleOfThree struct{}

// Name implements Scorer.
func (RuleOfThree) Name() string { return RuleOfThreeName }

// Score implements Scorer.
func (RuleOfThree) Score(_ int, _, test []*dataset.Record) ([]float64, error) {
	out := make([]float64, len(test))
	for i, r := range test {
		out[i] = RuleScore(r.MolecularWeight(), r.Heteroatoms())
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Precomputed score tables
// ─────────────────────────────────────────────────────────────────────────────

// Precomputed replays a recorded score table.
type Precomputed struct {
	table *prediction.ScoreTable
}

// NewPrecomputed wraps table.
func NewPrecomputed(table *prediction.ScoreTable) *Precomputed {
	return &Precomputed{table: table}
}

// Name implements Scorer.
func (p *Precomputed) Name() string { return p.table.Model() }

// Table returns the underlying score table.
func (p *Precomputed) Table() *prediction.ScoreTable { return p.table }

// Score implements Scorer.
func (p *Precomputed) Score(fold int, _, test []*dataset.Record) ([]float64, error) {
	if fold < 0 || fold >= p.table.Folds() {
		return nil, errors.New(errors.CodeFoldCountMismatch, "fold not present in score table").
			WithDetailf("model %s has %d folds, requested %d", p.table.Model(), p.table.Folds(), fold)
	}
	out := make([]float64, len(test))
	for i, r := range test {
		v, ok := p.table.Score(r.SMILES, fold)
		if !ok {
			v = math.NaN()
		}
		out[i] = v
	}
	return out, nil
}

// ReadScoreTable interprets t as a score table: the first column holds the
// identifier and every other column one fold, in order.  Blank and NaN cells
// are absent scores.
func ReadScoreTable(t *tabular.Table, model string) (*prediction.ScoreTable, error) {
	if len(t.Header) < 2 {
		return nil, errors.New(errors.CodeMalformedTable, "score table needs an identifier column and at least one fold column").
			WithDetail(model)
	}
	b := prediction.NewBuilder(model, t.Header[1:])
	for row := 0; row < t.Len(); row++ {
		id := t.Cell(row, 0)
		if id == "" {
			continue
		}
		if err := b.Add(id); err != nil {
			return nil, err
		}
		for k := 1; k < len(t.Header); k++ {
			s := t.Cell(row, k)
			if s == "" {
				continue
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, errors.Wrap(err, errors.CodeMalformedTable, "non-numeric score").
					WithDetailf("%s row %d column %q", model, row, t.Header[k])
			}
			if math.IsNaN(v) {
				continue
			}
			b.Set(id, k-1, v)
		}
	}
	return b.Build(), nil
}

// LoadScoreTable opens path through o and reads it with ReadScoreTable.
func LoadScoreTable(ctx context.Context, o tabular.Opener, path, model string) (*prediction.ScoreTable, error) {
	t, err := tabular.Load(ctx, o, path)
	if err != nil {
		return nil, err
	}
	return ReadScoreTable(t, model)
}
