package extrapolation

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/odorscape/internal/domain/molecule"
	"github.com/turtacn/odorscape/pkg/errors"
)

// tanimoto is the metric of every similarity scan.
var tanimoto molecule.SimilarityCalculator = &molecule.TanimotoCalculator{}

// Fingerprints computes one fingerprint per molecule with calc, in parallel
// over at most workers goroutines.  Output order matches mols.
func Fingerprints(ctx context.Context, calc molecule.FingerprintCalculator, mols []*molecule.Molecule, workers int) ([]*molecule.Fingerprint, error) {
	out := make([]*molecule.Fingerprint, len(mols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerLimit(workers))
	for i, m := range mols {
		i, m := i, m
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fp, err := calc.Calculate(m)
			if err != nil {
				return errors.Wrap(err, errors.CodeFingerprintGenerationFailed, "fingerprint failed").WithDetailf("molecule %d", i)
			}
			out[i] = fp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// MaxSimilarity returns, for every query fingerprint, the largest Tanimoto
// similarity to any reference fingerprint.  Rows are scanned in parallel;
// each row writes only its own slot, so the result equals a serial scan.
// An empty reference yields zeros.
func MaxSimilarity(ctx context.Context, query, reference []*molecule.Fingerprint, workers int) ([]float64, error) {
	if err := checkLengths(query, reference); err != nil {
		return nil, err
	}
	return scan(ctx, query, reference, false, workers)
}

// SelfMaxSimilarity compares fps against itself with the diagonal zeroed: a
// molecule's own similarity of 1.0 never counts, while an identical
// fingerprint elsewhere in the collection still does.
func SelfMaxSimilarity(ctx context.Context, fps []*molecule.Fingerprint, workers int) ([]float64, error) {
	if err := checkLengths(fps, nil); err != nil {
		return nil, err
	}
	return scan(ctx, fps, fps, true, workers)
}

func scan(ctx context.Context, query, reference []*molecule.Fingerprint, self bool, workers int) ([]float64, error) {
	out := make([]float64, len(query))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerLimit(workers))
	for i := range query {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			best := 0.0
			for j, ref := range reference {
				if self && i == j {
					continue
				}
				s, err := tanimoto.Calculate(query[i], ref)
				if err != nil {
					return err
				}
				if s > best {
					best = s
				}
			}
			out[i] = best
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// checkLengths requires every fingerprint in both collections to be non-nil
// and of one length.
func checkLengths(a, b []*molecule.Fingerprint) error {
	length := -1
	for _, set := range [][]*molecule.Fingerprint{a, b} {
		for i, fp := range set {
			if fp == nil {
				return errors.InvalidParam("nil fingerprint").WithDetailf("index %d", i)
			}
			if length < 0 {
				length = fp.Length
			}
			if fp.Length != length {
				return errors.New(errors.CodeValidation, "fingerprint lengths differ").
					WithDetailf("%d vs %d at index %d", length, fp.Length, i)
			}
		}
	}
	return nil
}

func workerLimit(workers int) int {
	if workers < 1 {
		return 1
	}
	return workers
}
