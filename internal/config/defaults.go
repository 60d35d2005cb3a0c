package config

import (
	"runtime"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"

	DefaultSMILESColumn = "smiles"
	DefaultLabelColumn  = "label"
	DefaultMWColumn     = "mw"
	DefaultLogPColumn   = "logp"
	DefaultBPColumn     = "bp"
	DefaultTagColumn    = "dataset"

	DefaultVirtualSMILESColumn      = "smiles"
	DefaultVirtualHACColumn         = "hac"
	DefaultVirtualProbabilityColumn = "probability"

	DefaultFolds        = 80
	DefaultTestFraction = 0.2

	DefaultFingerprintRadius = 2
	DefaultFingerprintBits   = 2048

	DefaultMinClassMembers = 2

	// DefaultIntervalTail yields rank 1 at 80 folds.
	DefaultIntervalTail = 0.0125

	DefaultRedisMode      = "standalone"
	DefaultRedisKeyPrefix = "odorscape:fp:"
	DefaultRedisTTL       = 30 * 24 * time.Hour

	DefaultMetricsNamespace = "odorscape"
)

// DefaultOdorousLabels and DefaultOdorlessLabels are the label vocabularies.
var (
	DefaultOdorousLabels   = []string{"odorous", "odor", "1", "true", "yes"}
	DefaultOdorlessLabels  = []string{"odorless", "odourless", "0", "false", "no"}
	DefaultSimilarityBands = []float64{0, 0.3, 0.5, 0.7, 1}
	DefaultThresholds      = []float64{0.5, 0.7, 0.9}
)

// ApplyDefaults fills every zero-value field in cfg with its default.
// Fields that have been set explicitly are left unchanged.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Data ──────────────────────────────────────────────────────────────────
	cols := &cfg.Data.Columns
	setString(&cols.SMILES, DefaultSMILESColumn)
	setString(&cols.Label, DefaultLabelColumn)
	setString(&cols.MW, DefaultMWColumn)
	setString(&cols.LogP, DefaultLogPColumn)
	setString(&cols.BP, DefaultBPColumn)
	setString(&cols.DatasetTag, DefaultTagColumn)
	if len(cfg.Data.Labels.Odorous) == 0 {
		cfg.Data.Labels.Odorous = append([]string(nil), DefaultOdorousLabels...)
	}
	if len(cfg.Data.Labels.Odorless) == 0 {
		cfg.Data.Labels.Odorless = append([]string(nil), DefaultOdorlessLabels...)
	}
	setString(&cfg.Data.Virtual.SMILESColumn, DefaultVirtualSMILESColumn)
	setString(&cfg.Data.Virtual.HACColumn, DefaultVirtualHACColumn)
	setString(&cfg.Data.Virtual.ProbabilityColumn, DefaultVirtualProbabilityColumn)

	// ── Splits ────────────────────────────────────────────────────────────────
	if cfg.Splits.Folds == 0 {
		cfg.Splits.Folds = DefaultFolds
	}
	if cfg.Splits.TestFraction == 0 {
		cfg.Splits.TestFraction = DefaultTestFraction
	}

	// ── Fingerprint ───────────────────────────────────────────────────────────
	if cfg.Fingerprint.Radius == nil {
		r := DefaultFingerprintRadius
		cfg.Fingerprint.Radius = &r
	}
	if cfg.Fingerprint.Bits == 0 {
		cfg.Fingerprint.Bits = DefaultFingerprintBits
	}

	// ── Evaluation ────────────────────────────────────────────────────────────
	if cfg.Evaluation.MinClassMembers == 0 {
		cfg.Evaluation.MinClassMembers = DefaultMinClassMembers
	}
	if cfg.Evaluation.IntervalTail == 0 {
		cfg.Evaluation.IntervalTail = DefaultIntervalTail
	}

	// ── Similarity / extrapolation ────────────────────────────────────────────
	if cfg.Similarity.Workers == 0 {
		cfg.Similarity.Workers = runtime.GOMAXPROCS(0)
	}
	if len(cfg.Similarity.Bands) == 0 {
		cfg.Similarity.Bands = append([]float64(nil), DefaultSimilarityBands...)
	}
	if len(cfg.Extrapolation.Thresholds) == 0 {
		cfg.Extrapolation.Thresholds = append([]float64(nil), DefaultThresholds...)
	}

	// ── Cache ─────────────────────────────────────────────────────────────────
	setString(&cfg.Cache.Redis.Mode, DefaultRedisMode)
	setString(&cfg.Cache.Redis.KeyPrefix, DefaultRedisKeyPrefix)
	if cfg.Cache.Redis.TTL == 0 {
		cfg.Cache.Redis.TTL = DefaultRedisTTL
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	setString(&cfg.Metrics.Namespace, DefaultMetricsNamespace)
}

// NewDefaultConfig returns a Config with every default applied.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

func setString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}
