// Package loading reads the labelled odor dataset, drops rows whose structure
// is missing or does not sanitize, and attaches the parsed structure and
// computed logP to every surviving row.
package loading

import (
	"context"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/turtacn/odorscape/internal/config"
	"github.com/turtacn/odorscape/internal/domain/dataset"
	"github.com/turtacn/odorscape/internal/domain/molecule"
	"github.com/turtacn/odorscape/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/odorscape/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/odorscape/internal/infrastructure/tabular"
	"github.com/turtacn/odorscape/pkg/errors"
)

// DropReason classifies a discarded row.
type DropReason string

const (
	// DropMissing marks a blank structure cell, the CSV form of a non-string
	// identifier.
	DropMissing  DropReason = "missing"
	DropParse    DropReason = "parse"
	DropSanitize DropReason = "sanitize"
)

// outcomeKept is the metrics outcome for a surviving row.
const outcomeKept = "kept"

// Summary describes one descriptor over the kept rows.
type Summary struct {
	Min  float64 `json:"min" yaml:"min"`
	Mean float64 `json:"mean" yaml:"mean"`
	Max  float64 `json:"max" yaml:"max"`
}

// Report is the diagnostic output of a load.
type Report struct {
	Source  string             `json:"source" yaml:"source"`
	Rows    int                `json:"rows" yaml:"rows"`
	Kept    int                `json:"kept" yaml:"kept"`
	Dropped map[DropReason]int `json:"dropped" yaml:"dropped"`
	Labels  map[string]int     `json:"labels" yaml:"labels"`

	MolecularWeight Summary `json:"molecular_weight" yaml:"molecular_weight"`
	LogP            Summary `json:"logp" yaml:"logp"`
	HeavyAtoms      Summary `json:"heavy_atoms" yaml:"heavy_atoms"`
}

// DroppedTotal is the number of discarded rows.
func (r *Report) DroppedTotal() int {
	n := 0
	for _, c := range r.Dropped {
		n += c
	}
	return n
}

// Options configures the loader.
type Options struct {
	Columns    config.ColumnConfig
	Vocabulary dataset.Vocabulary
}

// OptionsFromConfig builds loader options from the data section.
func OptionsFromConfig(cfg config.DataConfig) Options {
	return Options{
		Columns:    cfg.Columns,
		Vocabulary: dataset.NewVocabulary(cfg.Labels.Odorous, cfg.Labels.Odorless),
	}
}

// Loader builds a Dataset from a tabular source.
type Loader struct {
	source  tabular.Opener
	opts    Options
	logger  logging.Logger
	metrics *prom.RunMetrics
}

// NewLoader returns a loader.  metrics may be nil.
func NewLoader(source tabular.Opener, opts Options, logger logging.Logger, metrics *prom.RunMetrics) *Loader {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Loader{source: source, opts: opts, logger: logger.Named("loader"), metrics: metrics}
}

// Load reads and cleans the dataset at path.
func (l *Loader) Load(ctx context.Context, path string) (*dataset.Dataset, *Report, error) {
	start := time.Now()
	defer l.metrics.ObserveStage("load", start)

	t, err := tabular.Load(ctx, l.source, path)
	if err != nil {
		return nil, nil, err
	}
	ds, report, err := l.FromTable(t)
	if err != nil {
		return nil, nil, err
	}
	report.Source = path
	logging.LogStage(l.logger, "load", start,
		logging.String("source", path),
		logging.Int("rows", report.Rows),
		logging.Int("kept", report.Kept),
		logging.Int("dropped_missing", report.Dropped[DropMissing]),
		logging.Int("dropped_parse", report.Dropped[DropParse]),
		logging.Int("dropped_sanitize", report.Dropped[DropSanitize]),
	)
	return ds, report, nil
}

// FromTable cleans an in-memory table.  A duplicated identifier aborts
// before any structure is parsed.
func (l *Loader) FromTable(t *tabular.Table) (*dataset.Dataset, *Report, error) {
	cols := l.opts.Columns
	smilesCol, err := t.Column(cols.SMILES)
	if err != nil {
		return nil, nil, err
	}
	labelCol, err := t.Column(cols.Label)
	if err != nil {
		return nil, nil, err
	}
	optional := func(name string) int {
		if name == "" || !t.Has(name) {
			return -1
		}
		i, _ := t.Column(name)
		return i
	}
	mwCol, bpCol, logpCol, tagCol := optional(cols.MW), optional(cols.BP), optional(cols.LogP), optional(cols.DatasetTag)

	if err := checkDuplicates(t, smilesCol); err != nil {
		l.logger.Error("dataset contains duplicate identifiers", logging.Err(err))
		return nil, nil, err
	}

	report := &Report{
		Rows:    t.Len(),
		Dropped: map[DropReason]int{DropMissing: 0, DropParse: 0, DropSanitize: 0},
		Labels:  make(map[string]int, 3),
	}
	records := make([]*dataset.Record, 0, t.Len())
	for row := 0; row < t.Len(); row++ {
		smiles := t.Cell(row, smilesCol)
		if smiles == "" {
			report.Dropped[DropMissing]++
			continue
		}
		m, err := molecule.NewMolecule(smiles)
		if err != nil {
			reason := DropSanitize
			if errors.IsCode(err, errors.CodeMoleculeInvalidSMILES) {
				reason = DropParse
			}
			report.Dropped[reason]++
			l.logger.Debug("dropping row",
				logging.Int("row", row),
				logging.String("smiles", smiles),
				logging.String("reason", string(reason)),
				logging.Err(err))
			continue
		}

		r := dataset.NewRecord(smiles, m, l.opts.Vocabulary.Classify(t.Cell(row, labelCol)), row)
		if mwCol >= 0 {
			if v, ok := t.Float(row, mwCol); ok {
				r.MW = v
			}
		}
		if bpCol >= 0 {
			if v, ok := t.Float(row, bpCol); ok {
				r.BP = v
			}
		}
		if logpCol >= 0 {
			if v, ok := t.Float(row, logpCol); ok {
				r.LogPColumn = v
			}
		}
		if tagCol >= 0 {
			r.DatasetTag = t.Cell(row, tagCol)
		}
		records = append(records, r)
		report.Labels[r.Label.String()]++
	}

	ds, err := dataset.New(records)
	if err != nil {
		return nil, nil, err
	}
	report.Kept = ds.Len()
	report.MolecularWeight, report.LogP, report.HeavyAtoms = summarize(ds)

	l.metrics.RecordRows(outcomeKept, report.Kept)
	for reason, n := range report.Dropped {
		l.metrics.RecordRows(string(reason), n)
	}
	return ds, report, nil
}

// checkDuplicates fails on the first identifier that appears twice among
// non-blank cells.
func checkDuplicates(t *tabular.Table, col int) error {
	seen := make(map[string]int, t.Len())
	for row := 0; row < t.Len(); row++ {
		id := t.Cell(row, col)
		if id == "" {
			continue
		}
		if prev, dup := seen[id]; dup {
			return errors.New(errors.CodeDuplicateIdentifier, "duplicate identifier in dataset").
				WithDetailf("%s (rows %d and %d)", id, prev, row)
		}
		seen[id] = row
	}
	return nil
}

func summarize(ds *dataset.Dataset) (mw, logp, hac Summary) {
	n := ds.Len()
	if n == 0 {
		return
	}
	mws := make([]float64, n)
	logps := make([]float64, n)
	hacs := make([]float64, n)
	for i, r := range ds.Records() {
		mws[i] = r.Molecule.Properties.MolecularWeight
		logps[i] = r.LogP
		hacs[i] = float64(r.HeavyAtoms())
	}
	describe := func(x []float64) Summary {
		return Summary{Min: floats.Min(x), Mean: stat.Mean(x, nil), Max: floats.Max(x)}
	}
	return describe(mws), describe(logps), describe(hacs)
}
