// Package evaluation measures each model's discrimination per chemical class
// across the fold ensemble and summarizes the fold AUROCs with an empirical
// interval.
package evaluation

import (
	"context"
	"math"
	"time"

	"github.com/turtacn/odorscape/internal/application/scoring"
	"github.com/turtacn/odorscape/internal/application/splits"
	"github.com/turtacn/odorscape/internal/application/stratify"
	"github.com/turtacn/odorscape/internal/config"
	"github.com/turtacn/odorscape/internal/domain/dataset"
	"github.com/turtacn/odorscape/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/odorscape/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/odorscape/pkg/errors"
)

// Skip reasons for a fold that contributes no AUROC sample.
const (
	SkipTooFew      = "too_few"
	SkipSingleLabel = "single_label"
)

// Model pairs a scorer with the fold membership it was evaluated under.
type Model struct {
	Scorer scoring.Scorer
	Folds  *splits.Ensemble
	// HeldOut is the membership flag of the positions the model scores.
	// Generated folds hold out splits.FlagTest; recorded score tables flag
	// their scored entries splits.FlagTrain.
	HeldOut int
}

// Options configures the evaluator.
type Options struct {
	MinClassMembers int
	IntervalTail    float64
}

// OptionsFromConfig maps the evaluation section of the configuration.
func OptionsFromConfig(cfg config.EvaluationConfig) Options {
	return Options{MinClassMembers: cfg.MinClassMembers, IntervalTail: cfg.IntervalTail}
}

// Result is the evaluation record of one (model, class) pair.
type Result struct {
	Model string `json:"model" yaml:"model"`
	Class string `json:"class" yaml:"class"`

	Interval `yaml:",inline"`

	// Valid is false when no fold contributed a sample; the interval is
	// then zero.
	Valid       bool           `json:"valid" yaml:"valid"`
	Skipped     int            `json:"skipped" yaml:"skipped"`
	SkipReasons map[string]int `json:"skip_reasons,omitempty" yaml:"skip_reasons,omitempty"`
	Samples     []float64      `json:"-" yaml:"-"`
}

// Evaluator runs the per-class, per-fold AUROC evaluation.
type Evaluator struct {
	opts    Options
	classes stratify.ClassSet
	logger  logging.Logger
	metrics *prom.RunMetrics
}

// NewEvaluator returns an evaluator.  metrics may be nil.
func NewEvaluator(opts Options, classes stratify.ClassSet, logger logging.Logger, metrics *prom.RunMetrics) *Evaluator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if opts.MinClassMembers < 2 {
		opts.MinClassMembers = 2
	}
	return &Evaluator{opts: opts, classes: classes, logger: logger.Named("evaluation"), metrics: metrics}
}

// Evaluate returns one result per (model, class), models outer, classes in
// definition order.  All models must share the same fold count.
func (e *Evaluator) Evaluate(ctx context.Context, ds *dataset.Dataset, models []Model) ([]Result, error) {
	start := time.Now()
	defer e.metrics.ObserveStage("evaluate", start)

	if len(models) == 0 {
		return nil, errors.InvalidParam("no models to evaluate")
	}
	ensembles := make([]*splits.Ensemble, len(models))
	for i, m := range models {
		if m.Scorer == nil || m.Folds == nil {
			return nil, errors.InvalidParam("model needs a scorer and folds").WithDetailf("model %d", i)
		}
		if m.Folds.Size != ds.Len() {
			return nil, errors.InvalidParam("fold ensemble does not cover the dataset").
				WithDetailf("%s: ensemble size %d, dataset size %d", m.Scorer.Name(), m.Folds.Size, ds.Len())
		}
		ensembles[i] = m.Folds
	}
	if err := splits.CheckCount(models[0].Folds.Count(), ensembles...); err != nil {
		return nil, err
	}

	memberships := e.classes.Stratify(ds)
	var results []Result
	for _, m := range models {
		rs, err := e.evaluateModel(ctx, ds, m, memberships)
		if err != nil {
			return nil, err
		}
		results = append(results, rs...)
	}
	logging.LogStage(e.logger, "evaluate", start,
		logging.Int("models", len(models)),
		logging.Int("classes", len(memberships)),
		logging.Int("folds", models[0].Folds.Count()))
	return results, nil
}

func (e *Evaluator) evaluateModel(ctx context.Context, ds *dataset.Dataset, m Model, memberships []stratify.Membership) ([]Result, error) {
	name := m.Scorer.Name()
	results := make([]Result, len(memberships))
	for ci, mb := range memberships {
		results[ci] = Result{Model: name, Class: mb.Class, SkipReasons: make(map[string]int)}
	}

	for _, fold := range m.Folds.Folds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var trainIdx, testIdx []int
		for i := range fold.Train {
			if fold.Flag(i) == m.HeldOut {
				testIdx = append(testIdx, i)
			} else {
				trainIdx = append(trainIdx, i)
			}
		}
		scores, err := m.Scorer.Score(fold.Index, recordsAt(ds, trainIdx), recordsAt(ds, testIdx))
		if err != nil {
			return nil, errors.Wrap(err, errors.GetCode(err), "scoring failed").
				WithDetailf("model %s fold %d", name, fold.Index)
		}

		for ci, mb := range memberships {
			r := &results[ci]
			auc, reason := e.foldSample(ds, testIdx, scores, mb.Members)
			e.metrics.RecordFold(name, mb.Class, reason)
			if reason != "" {
				r.Skipped++
				r.SkipReasons[reason]++
				continue
			}
			r.Samples = append(r.Samples, auc)
		}
	}

	for ci := range results {
		r := &results[ci]
		if len(r.SkipReasons) == 0 {
			r.SkipReasons = nil
		}
		iv, err := Summarize(r.Samples, e.opts.IntervalTail)
		if err != nil {
			e.logger.Debug("no fold contributed a sample",
				logging.String("model", r.Model), logging.String("class", r.Class))
			continue
		}
		r.Interval, r.Valid = iv, true
		e.metrics.SetAUROCMedian(r.Model, r.Class, iv.Estimate)
	}
	return results, nil
}

// foldSample restricts one fold's scored test positions to class members
// with a known label and returns their AUROC, or the reason the fold
// contributes nothing.
func (e *Evaluator) foldSample(ds *dataset.Dataset, testIdx []int, scores []float64, members []bool) (float64, string) {
	var ys []float64
	var labels []bool
	for j, pos := range testIdx {
		rec := ds.At(pos)
		if !members[pos] || !rec.Label.Known() || math.IsNaN(scores[j]) {
			continue
		}
		ys = append(ys, scores[j])
		labels = append(labels, rec.Label.Positive())
	}
	if len(ys) < e.opts.MinClassMembers {
		return 0, SkipTooFew
	}
	auc, err := AUROC(ys, labels)
	if err != nil {
		return 0, SkipSingleLabel
	}
	return auc, ""
}

func recordsAt(ds *dataset.Dataset, idx []int) []*dataset.Record {
	out := make([]*dataset.Record, len(idx))
	for i, p := range idx {
		out[i] = ds.At(p)
	}
	return out
}
