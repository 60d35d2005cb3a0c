// Package extrapolation estimates odor prevalence across a large virtual
// chemical space.  Each sampled virtual molecule gets its maximum structural
// similarity to a reference collection and a reweighting multiplier from a
// heavy-atom-count sampling table; reweighted counts above probability
// thresholds are then reported per similarity band.
package extrapolation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/turtacn/odorscape/internal/config"
	"github.com/turtacn/odorscape/internal/domain/molecule"
	"github.com/turtacn/odorscape/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/odorscape/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/odorscape/pkg/errors"
)

// Collection labels for fingerprint metrics.
const (
	CollectionVirtual   = "virtual"
	CollectionReference = "reference"
)

// ─────────────────────────────────────────────────────────────────────────────
// Similarity bands and cumulative counts
// ─────────────────────────────────────────────────────────────────────────────

// Band is a half-open similarity interval [Lower, Upper).  The last band of a
// set also includes its upper edge.
type Band struct {
	Lower float64 `json:"lower" yaml:"lower"`
	Upper float64 `json:"upper" yaml:"upper"`
}

// String renders the band as "lower-upper".
func (b Band) String() string { return fmt.Sprintf("%g-%g", b.Lower, b.Upper) }

// BandsFromEdges turns ascending edges into consecutive bands.
func BandsFromEdges(edges []float64) ([]Band, error) {
	if len(edges) < 2 {
		return nil, errors.InvalidParam("similarity bands need at least two edges").WithDetailf("%v", edges)
	}
	bands := make([]Band, len(edges)-1)
	for i := range bands {
		if edges[i+1] <= edges[i] {
			return nil, errors.InvalidParam("similarity band edges must be strictly ascending").WithDetailf("%v", edges)
		}
		bands[i] = Band{Lower: edges[i], Upper: edges[i+1]}
	}
	return bands, nil
}

// bandOf returns the index of the band containing s, or -1.
func bandOf(bands []Band, s float64) int {
	last := len(bands) - 1
	for i, b := range bands {
		if s >= b.Lower && (s < b.Upper || (i == last && s == b.Upper)) {
			return i
		}
	}
	return -1
}

// Counts is the reweighted virtual-space tally.
type Counts struct {
	Thresholds []float64 `json:"thresholds" yaml:"thresholds"`
	Bands      []Band    `json:"bands" yaml:"bands"`
	// Weights[t][b] sums the multipliers of molecules with probability above
	// Thresholds[t] and maximum similarity in Bands[b].
	Weights [][]float64 `json:"weights" yaml:"weights"`
	// Above[t] sums the multipliers above Thresholds[t] in any band.
	Above []float64 `json:"above" yaml:"above"`
	// Total is the estimated size of the whole virtual space.
	Total float64 `json:"total" yaml:"total"`
}

// CountRow is one (threshold, band) cell of Counts.
type CountRow struct {
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Band      string  `json:"band" yaml:"band"`
	Weight    float64 `json:"weight" yaml:"weight"`
}

// Rows flattens the tally, thresholds outer and bands inner, with an "all"
// band row closing each threshold.
func (c *Counts) Rows() []CountRow {
	rows := make([]CountRow, 0, len(c.Thresholds)*(len(c.Bands)+1))
	for t, th := range c.Thresholds {
		for b, band := range c.Bands {
			rows = append(rows, CountRow{Threshold: th, Band: band.String(), Weight: c.Weights[t][b]})
		}
		rows = append(rows, CountRow{Threshold: th, Band: "all", Weight: c.Above[t]})
	}
	return rows
}

// Reweight assigns every record the sampling ratio of its heavy-atom count.
// A count missing from the table fails the whole pass.
func Reweight(records []*VirtualRecord, table *SamplingTable) error {
	for _, r := range records {
		w, err := table.Ratio(r.HAC)
		if err != nil {
			return errors.Wrap(err, errors.CodeMissingLookupKey, "cannot reweight virtual molecule").WithDetail(r.SMILES)
		}
		r.Weight = w
	}
	return nil
}

// CumulativeCounts sums the record weights with probability strictly above
// each threshold, split by the band of their maximum similarity.  Records
// must already be reweighted.
func CumulativeCounts(records []*VirtualRecord, thresholds []float64, bands []Band) *Counts {
	ths := append([]float64(nil), thresholds...)
	sort.Float64s(ths)
	c := &Counts{
		Thresholds: ths,
		Bands:      append([]Band(nil), bands...),
		Weights:    make([][]float64, len(ths)),
		Above:      make([]float64, len(ths)),
	}
	for t := range c.Weights {
		c.Weights[t] = make([]float64, len(bands))
	}
	for _, r := range records {
		c.Total += r.Weight
		b := bandOf(bands, r.MaxSimilarity)
		for t, th := range ths {
			if r.Probability <= th {
				continue
			}
			c.Above[t] += r.Weight
			if b >= 0 {
				c.Weights[t][b] += r.Weight
			}
		}
	}
	return c
}

// ─────────────────────────────────────────────────────────────────────────────
// Extrapolator
// ─────────────────────────────────────────────────────────────────────────────

// Options configures the extrapolator.
type Options struct {
	Fingerprint molecule.FingerprintCalcOptions
	Workers     int
	Bands       []float64
	Thresholds  []float64
	// Cache, when set, is consulted before computing a fingerprint.
	Cache FingerprintStore
}

// OptionsFromConfig maps the fingerprint, similarity and extrapolation
// sections of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Fingerprint: molecule.FingerprintCalcOptions{Radius: cfg.Fingerprint.RadiusOrDefault(), Bits: cfg.Fingerprint.Bits},
		Workers:     cfg.Similarity.Workers,
		Bands:       cfg.Similarity.Bands,
		Thresholds:  cfg.Extrapolation.Thresholds,
	}
}

// Result is the outcome of one extrapolation run.
type Result struct {
	Counts *Counts `json:"counts" yaml:"counts"`
	// Self is true when the sample was compared against itself.
	Self      bool             `json:"self" yaml:"self"`
	Virtual   int              `json:"virtual" yaml:"virtual"`
	Reference int              `json:"reference" yaml:"reference"`
	Records   []*VirtualRecord `json:"-" yaml:"-"`
}

// Extrapolator runs the similarity scan, reweighting and tally.
type Extrapolator struct {
	opts    Options
	calc    *molecule.MorganCalculator
	bands   []Band
	table   *SamplingTable
	logger  logging.Logger
	metrics *prom.RunMetrics
}

// NewExtrapolator validates opts and returns an extrapolator over table.
// metrics may be nil.
func NewExtrapolator(opts Options, table *SamplingTable, logger logging.Logger, metrics *prom.RunMetrics) (*Extrapolator, error) {
	if table == nil {
		return nil, errors.New(errors.CodeInvalidSamplingTable, "sampling table is required")
	}
	calc, err := molecule.NewMorganCalculator(opts.Fingerprint)
	if err != nil {
		return nil, err
	}
	bands, err := BandsFromEdges(opts.Bands)
	if err != nil {
		return nil, err
	}
	if len(opts.Thresholds) == 0 {
		return nil, errors.InvalidParam("at least one probability threshold is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Extrapolator{
		opts:    opts,
		calc:    calc,
		bands:   bands,
		table:   table,
		logger:  logger.Named("extrapolation"),
		metrics: metrics,
	}, nil
}

// Run fills MaxSimilarity and Weight on every sample record and tallies the
// counts.  A nil reference compares the sample against itself.
func (x *Extrapolator) Run(ctx context.Context, sample *VirtualSample, reference []*molecule.Molecule) (*Result, error) {
	start := time.Now()
	defer x.metrics.ObserveStage("extrapolate", start)

	// A missing HAC fails before the scan starts.
	if err := Reweight(sample.Records, x.table); err != nil {
		x.logger.Error("reweighting failed", logging.Err(err))
		return nil, err
	}

	sims, err := x.similarities(ctx, sample, reference)
	if err != nil {
		return nil, err
	}
	for i, r := range sample.Records {
		r.MaxSimilarity = sims[i]
	}

	counts := CumulativeCounts(sample.Records, x.opts.Thresholds, x.bands)
	for _, row := range counts.Rows() {
		x.metrics.SetVirtualWeight(row.Threshold, row.Band, row.Weight)
	}

	res := &Result{
		Counts:    counts,
		Self:      reference == nil,
		Virtual:   len(sample.Records),
		Reference: len(reference),
		Records:   sample.Records,
	}
	if res.Self {
		res.Reference = len(sample.Records)
	}
	logging.LogStage(x.logger, "extrapolate", start,
		logging.Int("virtual", res.Virtual),
		logging.Int("reference", res.Reference),
		logging.Bool("self", res.Self),
		logging.Float64("total", counts.Total))
	return res, nil
}

func (x *Extrapolator) similarities(ctx context.Context, sample *VirtualSample, reference []*molecule.Molecule) ([]float64, error) {
	start := time.Now()
	defer x.metrics.ObserveStage("similarity", start)

	virtual, err := CachedFingerprints(ctx, x.opts.Cache, x.calc, sample.Molecules(), x.opts.Workers, x.logger, x.metrics)
	if err != nil {
		return nil, err
	}
	x.metrics.RecordFingerprints(CollectionVirtual, len(virtual))

	if reference == nil {
		x.metrics.RecordPairs(len(virtual) * (len(virtual) - 1))
		return SelfMaxSimilarity(ctx, virtual, x.opts.Workers)
	}
	refs, err := CachedFingerprints(ctx, x.opts.Cache, x.calc, reference, x.opts.Workers, x.logger, x.metrics)
	if err != nil {
		return nil, err
	}
	x.metrics.RecordFingerprints(CollectionReference, len(refs))
	x.metrics.RecordPairs(len(virtual) * len(refs))
	return MaxSimilarity(ctx, virtual, refs, x.opts.Workers)
}
