package evaluation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"github.com/turtacn/odorscape/pkg/errors"
)

// AUROC returns the area under the ROC curve of scores against the binary
// labels.  Tied scores earn half credit.  Both label values must be present.
func AUROC(scores []float64, positive []bool) (float64, error) {
	if len(scores) != len(positive) {
		return 0, errors.InvalidParam("scores and labels differ in length").
			WithDetailf("%d scores, %d labels", len(scores), len(positive))
	}
	pos := 0
	for _, p := range positive {
		if p {
			pos++
		}
	}
	if pos == 0 || pos == len(positive) {
		return 0, errors.New(errors.CodeInsufficientSample, "AUROC needs both label values")
	}

	y := append([]float64(nil), scores...)
	classes := append([]bool(nil), positive...)
	stat.SortWeightedLabeled(y, classes, nil)
	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr), nil
}

// Interval is the summary of a fold-sample distribution.
type Interval struct {
	Estimate float64 `json:"estimate" yaml:"estimate"`
	Lower    float64 `json:"lower" yaml:"lower"`
	Upper    float64 `json:"upper" yaml:"upper"`
	N        int     `json:"n" yaml:"n"`
}

// RankIndex returns k = round(n·tail) clamped to [0, (n−1)/2]: the rank of
// the lower bound in the ascending sample, the upper bound sitting at n−1−k.
// At n = 80 and tail = 0.0125 this is k = 1, the second-smallest and
// second-largest samples.
func RankIndex(n int, tail float64) int {
	if n <= 0 {
		return 0
	}
	k := int(math.Round(float64(n) * tail))
	if k < 0 {
		k = 0
	}
	if limit := (n - 1) / 2; k > limit {
		k = limit
	}
	return k
}

// Summarize returns the median and the rank-rule bounds of samples.
func Summarize(samples []float64, tail float64) (Interval, error) {
	n := len(samples)
	if n == 0 {
		return Interval{}, errors.New(errors.CodeInsufficientSample, "no samples to summarize")
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	median := sorted[n/2]
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	k := RankIndex(n, tail)
	return Interval{Estimate: median, Lower: sorted[k], Upper: sorted[n-1-k], N: n}, nil
}
