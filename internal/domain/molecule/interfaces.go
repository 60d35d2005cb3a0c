package molecule

// FingerprintCalcOptions defines parameters for fingerprint generation.
type FingerprintCalcOptions struct {
	Radius int
	Bits   int
}

// DefaultFingerprintCalcOptions returns the radius-2, 2048-bit setting.
func DefaultFingerprintCalcOptions() FingerprintCalcOptions {
	return FingerprintCalcOptions{Radius: 2, Bits: 2048}
}

// FingerprintCalculator computes a bit-vector fingerprint of a molecule.
type FingerprintCalculator interface {
	Calculate(m *Molecule) (*Fingerprint, error)
}

// SimilarityCalculator compares two fingerprints.
type SimilarityCalculator interface {
	Calculate(fp1, fp2 *Fingerprint) (float64, error)
	Metric() SimilarityMetric
}

// SubstructureMatcher decides whether a molecule contains a pattern.
type SubstructureMatcher interface {
	Matches(m *Molecule) bool
}
