package molecule

import (
	"math/bits"

	"github.com/turtacn/odorscape/pkg/errors"
)

// SimilarityMetric defines the algorithm used for molecular similarity measurement.
type SimilarityMetric string

const (
	MetricTanimoto SimilarityMetric = "tanimoto"
)

// String returns the string representation of the similarity metric.
func (m SimilarityMetric) String() string {
	return string(m)
}

// TanimotoCalculator implements Tanimoto similarity (Jaccard index).
type TanimotoCalculator struct{}

// Calculate computes Tanimoto similarity.
func (c *TanimotoCalculator) Calculate(fp1, fp2 *Fingerprint) (float64, error) {
	if fp1 == nil || fp2 == nil {
		return 0, errors.InvalidParam("nil fingerprint")
	}
	if fp1.Length != fp2.Length {
		return 0, errors.Newf(errors.CodeValidation, "fingerprint lengths differ: %d vs %d", fp1.Length, fp2.Length)
	}
	return Tanimoto(fp1, fp2), nil
}

// Metric returns MetricTanimoto.
func (c *TanimotoCalculator) Metric() SimilarityMetric { return MetricTanimoto }

// Tanimoto returns |a ∧ b| / |a ∨ b| for fingerprints of equal length, and 0
// when both are empty.  Lengths are not checked.
func Tanimoto(a, b *Fingerprint) float64 {
	common := 0
	for i, w := range a.Words {
		common += bits.OnesCount64(w & b.Words[i])
	}
	union := a.NumOnBits + b.NumOnBits - common
	if union == 0 {
		return 0
	}
	return float64(common) / float64(union)
}
