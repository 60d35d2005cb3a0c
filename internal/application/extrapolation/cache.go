package extrapolation

import (
	"context"
	"fmt"

	"github.com/turtacn/odorscape/internal/domain/molecule"
	"github.com/turtacn/odorscape/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/odorscape/internal/infrastructure/monitoring/prometheus"
)

// Cache lookup results recorded in metrics.
const (
	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)

// FingerprintStore keeps encoded fingerprints between runs.
type FingerprintStore interface {
	GetMany(ctx context.Context, keys []string) (map[string][]byte, error)
	SetMany(ctx context.Context, entries map[string][]byte) error
}

// FingerprintKey identifies the fingerprint of smiles under calc's settings.
func FingerprintKey(calc *molecule.MorganCalculator, smiles string) string {
	return fmt.Sprintf("morgan:r%d:b%d:%s", calc.Radius, calc.Bits, smiles)
}

// CachedFingerprints is Fingerprints with a read-through store.  Store
// failures and undecodable entries fall back to computing; they never fail
// the call.  A nil store computes everything.
func CachedFingerprints(ctx context.Context, store FingerprintStore, calc *molecule.MorganCalculator, mols []*molecule.Molecule, workers int, logger logging.Logger, metrics *prom.RunMetrics) ([]*molecule.Fingerprint, error) {
	if store == nil {
		return Fingerprints(ctx, calc, mols, workers)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	keys := make([]string, len(mols))
	for i, m := range mols {
		keys[i] = FingerprintKey(calc, m.SMILES)
	}

	stored, err := store.GetMany(ctx, keys)
	if err != nil {
		logger.Warn("fingerprint cache unavailable, computing all", logging.Err(err))
		metrics.RecordCacheLookups(cacheError, len(keys))
		stored = nil
	}

	out := make([]*molecule.Fingerprint, len(mols))
	var missIdx []int
	for i, k := range keys {
		data, ok := stored[k]
		if ok {
			fp := &molecule.Fingerprint{}
			if err := fp.UnmarshalBinary(data); err == nil && fp.Length == calc.Bits {
				out[i] = fp
				continue
			}
			logger.Debug("discarding undecodable cache entry", logging.String("key", k))
		}
		missIdx = append(missIdx, i)
	}
	if err == nil {
		metrics.RecordCacheLookups(cacheHit, len(keys)-len(missIdx))
		metrics.RecordCacheLookups(cacheMiss, len(missIdx))
	}
	if len(missIdx) == 0 {
		return out, nil
	}

	missing := make([]*molecule.Molecule, len(missIdx))
	for j, i := range missIdx {
		missing[j] = mols[i]
	}
	computed, cerr := Fingerprints(ctx, calc, missing, workers)
	if cerr != nil {
		return nil, cerr
	}

	entries := make(map[string][]byte, len(missIdx))
	for j, i := range missIdx {
		out[i] = computed[j]
		data, _ := computed[j].MarshalBinary()
		entries[keys[i]] = data
	}
	if err == nil {
		if werr := store.SetMany(ctx, entries); werr != nil {
			logger.Warn("fingerprint cache write failed", logging.Err(werr))
		}
	}
	return out, nil
}
