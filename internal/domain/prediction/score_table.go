// Package prediction holds held-out score tables: one continuous score per
// (molecule identifier, fold) for the molecules a model did not train on.
package prediction

import (
	"sort"

	"github.com/turtacn/odorscape/pkg/errors"
)

// ScoreTable maps (identifier, fold) to a score.  Folds are numbered from 0
// in column order.  It is immutable once built.
type ScoreTable struct {
	model      string
	foldLabels []string
	scores     map[string][]float64
	present    map[string][]bool
	order      []string
}

// Builder accumulates a ScoreTable.
type Builder struct {
	t *ScoreTable
}

// NewBuilder starts a table for model with one fold per label.
func NewBuilder(model string, foldLabels []string) *Builder {
	return &Builder{t: &ScoreTable{
		model:      model,
		foldLabels: append([]string(nil), foldLabels...),
		scores:     make(map[string][]float64),
		present:    make(map[string][]bool),
	}}
}

// Add registers an identifier row.  A repeated identifier fails with
// CodeDuplicateIdentifier.
func (b *Builder) Add(id string) error {
	if _, dup := b.t.scores[id]; dup {
		return errors.New(errors.CodeDuplicateIdentifier, "duplicate identifier in score table").
			WithDetailf("%s in %s", id, b.t.model)
	}
	n := len(b.t.foldLabels)
	b.t.scores[id] = make([]float64, n)
	b.t.present[id] = make([]bool, n)
	b.t.order = append(b.t.order, id)
	return nil
}

// Set records the score of id in fold.  id must have been added.
func (b *Builder) Set(id string, fold int, score float64) {
	b.t.scores[id][fold] = score
	b.t.present[id][fold] = true
}

// Build returns the finished table.  The builder must not be used again.
func (b *Builder) Build() *ScoreTable {
	t := b.t
	b.t = nil
	return t
}

// Model returns the name of the model that produced the scores.
func (t *ScoreTable) Model() string { return t.model }

// Folds returns the number of fold columns.
func (t *ScoreTable) Folds() int { return len(t.foldLabels) }

// FoldLabel returns the header of fold column k.
func (t *ScoreTable) FoldLabel(k int) string { return t.foldLabels[k] }

// IDs returns the identifiers in table order.
func (t *ScoreTable) IDs() []string { return append([]string(nil), t.order...) }

// Score returns the score of id in fold k.  ok is false when the cell is
// blank or id is not in the table.
func (t *ScoreTable) Score(id string, k int) (float64, bool) {
	p, found := t.present[id]
	if !found || k < 0 || k >= len(p) || !p[k] {
		return 0, false
	}
	return t.scores[id][k], true
}

// Scored returns the identifiers with a score in fold k, sorted.
func (t *ScoreTable) Scored(k int) []string {
	var out []string
	for id, p := range t.present {
		if k >= 0 && k < len(p) && p[k] {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
