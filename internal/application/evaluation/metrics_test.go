package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/odorscape/pkg/errors"
)

func TestAUROC(t *testing.T) {
	tests := []struct {
		name     string
		scores   []float64
		positive []bool
		want     float64
	}{
		{"mixed ranking", []float64{0.1, 0.35, 0.4, 0.8}, []bool{true, false, true, false}, 0.25},
		{"perfect", []float64{0.9, 0.8, 0.2, 0.1}, []bool{true, true, false, false}, 1},
		{"inverted", []float64{0.1, 0.2, 0.8, 0.9}, []bool{true, true, false, false}, 0},
		{"all tied", []float64{5, 5, 5, 5}, []bool{true, false, true, false}, 0.5},
		{"unsorted input", []float64{3, 1, 2}, []bool{true, false, false}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AUROC(tt.scores, tt.positive)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestAUROC_DoesNotReorderInput(t *testing.T) {
	scores := []float64{3, 1, 2}
	positive := []bool{true, false, false}
	_, err := AUROC(scores, positive)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 1, 2}, scores)
	assert.Equal(t, []bool{true, false, false}, positive)
}

func TestAUROC_Errors(t *testing.T) {
	_, err := AUROC([]float64{1, 2}, []bool{true, true})
	assert.True(t, errors.IsCode(err, errors.CodeInsufficientSample))

	_, err = AUROC([]float64{1, 2}, []bool{false, false})
	assert.True(t, errors.IsCode(err, errors.CodeInsufficientSample))

	_, err = AUROC([]float64{1, 2}, []bool{true})
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestRankIndex(t *testing.T) {
	assert.Equal(t, 1, RankIndex(80, 0.0125))
	assert.Equal(t, 0, RankIndex(10, 0.0125))
	assert.Equal(t, 5, RankIndex(100, 0.05))
	assert.Equal(t, 0, RankIndex(1, 0.5))
	assert.Equal(t, 1, RankIndex(4, 0.5))
	assert.Equal(t, 0, RankIndex(0, 0.1))
}

func TestSummarize(t *testing.T) {
	samples := make([]float64, 10)
	for i := range samples {
		samples[i] = 0.7
	}
	iv, err := Summarize(samples, 0.0125)
	require.NoError(t, err)
	assert.Equal(t, Interval{Estimate: 0.7, Lower: 0.7, Upper: 0.7, N: 10}, iv)

	iv, err = Summarize([]float64{0.9, 0.5, 0.7, 0.6, 0.8}, 0.2)
	require.NoError(t, err)
	assert.Equal(t, 0.7, iv.Estimate)
	assert.Equal(t, 0.6, iv.Lower)
	assert.Equal(t, 0.8, iv.Upper)

	iv, err = Summarize([]float64{0.4, 0.6}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, iv.Estimate, 1e-12)
	assert.Equal(t, 0.4, iv.Lower)
	assert.Equal(t, 0.6, iv.Upper)

	_, err = Summarize(nil, 0.0125)
	assert.True(t, errors.IsCode(err, errors.CodeInsufficientSample))
}

func TestSummarize_EightyFolds(t *testing.T) {
	samples := make([]float64, 80)
	for i := range samples {
		samples[i] = float64(79-i) / 100
	}
	iv, err := Summarize(samples, 0.0125)
	require.NoError(t, err)
	assert.Equal(t, 0.01, iv.Lower)
	assert.Equal(t, 0.78, iv.Upper)
	assert.InDelta(t, 0.395, iv.Estimate, 1e-12)
	assert.Equal(t, 80, iv.N)
}
