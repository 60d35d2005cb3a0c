// Package splits builds the fold ensemble: repeated seeded train/test
// partitions of the dataset, or the same membership re-derived from a
// recorded score table.
package splits

import (
	"math"
	"math/rand"

	"github.com/turtacn/odorscape/internal/domain/prediction"
	"github.com/turtacn/odorscape/pkg/errors"
)

// Membership flags.
const (
	FlagTest  = 0
	FlagTrain = 1
)

// Fold is one partition of the dataset positions.
type Fold struct {
	Index int
	// Train[i] is true when dataset position i is in the training part.
	Train []bool
}

// Flag returns the 0/1 membership flag of position i.
func (f Fold) Flag(i int) int {
	if f.Train[i] {
		return FlagTrain
	}
	return FlagTest
}

// TrainIndices returns the training positions in ascending order.
func (f Fold) TrainIndices() []int { return f.indices(true) }

// TestIndices returns the held-out positions in ascending order.
func (f Fold) TestIndices() []int { return f.indices(false) }

// TestSize is the number of held-out positions.
func (f Fold) TestSize() int {
	n := 0
	for _, tr := range f.Train {
		if !tr {
			n++
		}
	}
	return n
}

func (f Fold) indices(train bool) []int {
	out := make([]int, 0, len(f.Train))
	for i, tr := range f.Train {
		if tr == train {
			out = append(out, i)
		}
	}
	return out
}

// Ensemble is an ordered set of folds over the same M positions.
type Ensemble struct {
	Size  int
	Folds []Fold
}

// Count returns the number of folds.
func (e *Ensemble) Count() int { return len(e.Folds) }

// TestSize returns ceil(fraction·m), kept within [1, m-1].
func TestSize(m int, fraction float64) int {
	// The epsilon keeps exact products such as 0.2·15 from rounding up.
	n := int(math.Ceil(fraction*float64(m) - 1e-9))
	if n < 1 {
		n = 1
	}
	if n > m-1 {
		n = m - 1
	}
	return n
}

// Generate builds n folds over m positions.  Fold i is drawn from a source
// seeded with i, so each fold is reproducible on its own.
func Generate(n, m int, testFraction float64) (*Ensemble, error) {
	if n < 1 {
		return nil, errors.InvalidParam("fold count must be ≥ 1").WithDetailf("folds=%d", n)
	}
	if m < 2 {
		return nil, errors.New(errors.CodeInsufficientSample, "at least two molecules are needed to split").WithDetailf("size=%d", m)
	}
	if testFraction <= 0 || testFraction >= 1 {
		return nil, errors.InvalidParam("test fraction must be in (0, 1)").WithDetailf("test_fraction=%g", testFraction)
	}

	testSize := TestSize(m, testFraction)
	e := &Ensemble{Size: m, Folds: make([]Fold, n)}
	for i := 0; i < n; i++ {
		e.Folds[i] = generateFold(i, m, testSize)
	}
	return e, nil
}

func generateFold(index, m, testSize int) Fold {
	rng := rand.New(rand.NewSource(int64(index)))
	perm := rng.Perm(m)
	train := make([]bool, m)
	for _, p := range perm[testSize:] {
		train[p] = true
	}
	return Fold{Index: index, Train: train}
}

// FromScoreTable re-derives fold membership for ids from a recorded score
// table: a present score sets FlagTrain, a blank or absent entry FlagTest.
func FromScoreTable(ids []string, table *prediction.ScoreTable) *Ensemble {
	e := &Ensemble{Size: len(ids), Folds: make([]Fold, table.Folds())}
	for k := range e.Folds {
		train := make([]bool, len(ids))
		for i, id := range ids {
			_, train[i] = table.Score(id, k)
		}
		e.Folds[k] = Fold{Index: k, Train: train}
	}
	return e
}

// CheckCount fails with CodeFoldCountMismatch unless every ensemble has
// exactly want folds.
func CheckCount(want int, ensembles ...*Ensemble) error {
	for i, e := range ensembles {
		if e.Count() != want {
			return errors.New(errors.CodeFoldCountMismatch, "fold ensemble size mismatch").
				WithDetailf("ensemble %d has %d folds, expected %d", i, e.Count(), want)
		}
	}
	return nil
}
