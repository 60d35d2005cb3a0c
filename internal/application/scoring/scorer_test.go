package scoring

import (
	"context"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/odorscape/internal/domain/dataset"
	"github.com/turtacn/odorscape/internal/domain/molecule"
	"github.com/turtacn/odorscape/internal/infrastructure/tabular"
	"github.com/turtacn/odorscape/pkg/errors"
)

func records(t *testing.T, smiles ...string) []*dataset.Record {
	t.Helper()
	out := make([]*dataset.Record, len(smiles))
	for i, s := range smiles {
		m, err := molecule.NewMolecule(s)
		require.NoError(t, err)
		out[i] = dataset.NewRecord("", m, dataset.LabelOdorous, i)
	}
	return out
}

func TestRuleScore(t *testing.T) {
	tests := []struct {
		name        string
		mw          float64
		heteroatoms int
		want        float64
	}{
		{"midpoint_no_heteroatoms", 165, 0, 135},
		{"lower_bound", 30, 0, 0},
		{"upper_bound", 300, 0, 0},
		// The documented zero crossing at three heteroatoms does not hold
		// for these coefficients; the literal formula gives 135 − 165.
		{"midpoint_three_heteroatoms", 165, 3, -30},
		{"light_molecule", 46.07, 1, -38.93},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RuleScore(tt.mw, tt.heteroatoms), 1e-9)
		})
	}
	assert.Equal(t, 55.0, HeteroatomPenalty)
}

func TestRuleOfThree_Score(t *testing.T) {
	test := records(t, "CCO", "c1ccccc1")
	test[0].MW = 46.07

	var s Scorer = RuleOfThree{}
	assert.Equal(t, RuleOfThreeName, s.Name())

	got, err := s.Score(3, nil, test)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.InDelta(t, 16.07-55, got[0], 1e-9)
	assert.InDelta(t, 78.114-30, got[1], 1e-3)
}

func TestReadScoreTable(t *testing.T) {
	src := "smiles,0,1,2\nCCO,0.9,,NaN\nO,,0.2,\n,0.5,0.5,0.5\n"
	tbl, err := tabular.Read(strings.NewReader(src))
	require.NoError(t, err)

	st, err := ReadScoreTable(tbl, "gbm_a")
	require.NoError(t, err)
	assert.Equal(t, "gbm_a", st.Model())
	assert.Equal(t, 3, st.Folds())
	assert.Equal(t, []string{"CCO", "O"}, st.IDs())

	v, ok := st.Score("CCO", 0)
	assert.True(t, ok)
	assert.Equal(t, 0.9, v)
	_, ok = st.Score("CCO", 2)
	assert.False(t, ok, "NaN cell is absent")
}

func TestReadScoreTable_Malformed(t *testing.T) {
	for name, src := range map[string]string{
		"no_fold_columns": "smiles\nCCO\n",
		"non_numeric":     "smiles,0\nCCO,high\n",
	} {
		t.Run(name, func(t *testing.T) {
			tbl, err := tabular.Read(strings.NewReader(src))
			require.NoError(t, err)
			_, err = ReadScoreTable(tbl, "m")
			assert.True(t, errors.IsCode(err, errors.CodeMalformedTable))
		})
	}

	tbl, err := tabular.Read(strings.NewReader("smiles,0\nCCO,1\nCCO,2\n"))
	require.NoError(t, err)
	_, err = ReadScoreTable(tbl, "m")
	assert.True(t, errors.IsCode(err, errors.CodeDuplicateIdentifier))
}

type stringOpener map[string]string

func (o stringOpener) Open(_ context.Context, name string) (io.ReadCloser, error) {
	body, ok := o[name]
	if !ok {
		return nil, errors.NotFound("missing")
	}
	return io.NopCloser(strings.NewReader(body)), nil
}

func TestPrecomputed_Score(t *testing.T) {
	o := stringOpener{"a.csv": "id,f0,f1\nCCO,0.8,\nc1ccccc1,,0.3\n"}
	st, err := LoadScoreTable(context.Background(), o, "a.csv", "gbm_a")
	require.NoError(t, err)

	var s Scorer = NewPrecomputed(st)
	assert.Equal(t, "gbm_a", s.Name())

	test := records(t, "CCO", "c1ccccc1", "O")
	got, err := s.Score(0, nil, test)
	require.NoError(t, err)
	assert.Equal(t, 0.8, got[0])
	assert.True(t, math.IsNaN(got[1]))
	assert.True(t, math.IsNaN(got[2]))

	got, err = s.Score(1, nil, test)
	require.NoError(t, err)
	assert.Equal(t, 0.3, got[1])

	_, err = s.Score(2, nil, test)
	assert.True(t, errors.IsCode(err, errors.CodeFoldCountMismatch))

	_, err = LoadScoreTable(context.Background(), o, "b.csv", "gbm_b")
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}
