// Package config defines all configuration structures for odorscape.
// No I/O or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"sort"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// ColumnConfig names the columns of the labelled dataset.
type ColumnConfig struct {
	SMILES     string `mapstructure:"smiles"`
	Label      string `mapstructure:"label"`
	MW         string `mapstructure:"mw"`
	LogP       string `mapstructure:"logp"`
	BP         string `mapstructure:"bp"`
	DatasetTag string `mapstructure:"dataset_tag"`
}

// LabelConfig lists the label tokens (case-insensitive) that mark a row as
// odorous or odorless.  Anything else is unknown.
type LabelConfig struct {
	Odorous  []string `mapstructure:"odorous"`
	Odorless []string `mapstructure:"odorless"`
}

// VirtualConfig describes the virtual-sample table.
type VirtualConfig struct {
	Path              string `mapstructure:"path"`
	SMILESColumn      string `mapstructure:"smiles_column"`
	HACColumn         string `mapstructure:"hac_column"`
	ProbabilityColumn string `mapstructure:"probability_column"`
}

// DataConfig holds input locations.  Paths may be local files or
// s3://bucket/key objects.
type DataConfig struct {
	Dataset     string            `mapstructure:"dataset"`
	Columns     ColumnConfig      `mapstructure:"columns"`
	Labels      LabelConfig       `mapstructure:"labels"`
	Predictions map[string]string `mapstructure:"predictions"` // model name → score table path
	Virtual     VirtualConfig     `mapstructure:"virtual"`
}

// SplitConfig parameterises the fold ensemble.
type SplitConfig struct {
	Folds        int     `mapstructure:"folds"`
	TestFraction float64 `mapstructure:"test_fraction"`
}

// FingerprintConfig parameterises the circular fingerprint.  Radius is a
// pointer because 0 (atom environments only) is a valid setting.
type FingerprintConfig struct {
	Radius *int `mapstructure:"radius"`
	Bits   int  `mapstructure:"bits"`
}

// RadiusOrDefault returns the configured radius, or the default when unset.
func (f FingerprintConfig) RadiusOrDefault() int {
	if f.Radius == nil {
		return DefaultFingerprintRadius
	}
	return *f.Radius
}

// ClassConfig is one substructure class definition.
type ClassConfig struct {
	Name    string `mapstructure:"name"`
	Pattern string `mapstructure:"pattern"`
	Invert  bool   `mapstructure:"invert"`
}

// EvaluationConfig parameterises the performance aggregator.
type EvaluationConfig struct {
	MinClassMembers int           `mapstructure:"min_class_members"`
	IntervalTail    float64       `mapstructure:"interval_tail"`
	Classes         []ClassConfig `mapstructure:"classes"` // empty → built-in classes
}

// SimilarityConfig parameterises the max-similarity scan.
type SimilarityConfig struct {
	Workers int       `mapstructure:"workers"`
	Bands   []float64 `mapstructure:"bands"` // ascending band edges in [0, 1]
}

// ExtrapolationConfig parameterises the virtual-space reweighting.
type ExtrapolationConfig struct {
	SamplingTable string    `mapstructure:"sampling_table"`
	Thresholds    []float64 `mapstructure:"thresholds"`
}

// RedisConfig configures the optional fingerprint cache.
type RedisConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Mode          string        `mapstructure:"mode"` // "standalone" | "sentinel" | "cluster"
	Addr          string        `mapstructure:"addr"`
	MasterName    string        `mapstructure:"master_name"`
	SentinelAddrs []string      `mapstructure:"sentinel_addrs"`
	ClusterAddrs  []string      `mapstructure:"cluster_addrs"`
	Username      string        `mapstructure:"username"`
	Password      string        `mapstructure:"password"`
	DB            int           `mapstructure:"db"`
	TLSEnabled    bool          `mapstructure:"tls_enabled"`
	TLSCAFile     string        `mapstructure:"tls_ca_file"`
	KeyPrefix     string        `mapstructure:"key_prefix"`
	TTL           time.Duration `mapstructure:"ttl"`
}

// CacheConfig groups cache backends.
type CacheConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

// MinIOConfig holds S3-compatible object-storage parameters used for s3://
// sources.
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Region    string `mapstructure:"region"`
}

// StorageConfig groups storage backends.
type StorageConfig struct {
	MinIO MinIOConfig `mapstructure:"minio"`
}

// MetricsConfig controls run metrics.
type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
	Textfile  string `mapstructure:"textfile"` // empty → metrics stay in memory
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration structure.
type Config struct {
	Log           LogConfig           `mapstructure:"log"`
	Data          DataConfig          `mapstructure:"data"`
	Splits        SplitConfig         `mapstructure:"splits"`
	Fingerprint   FingerprintConfig   `mapstructure:"fingerprint"`
	Evaluation    EvaluationConfig    `mapstructure:"evaluation"`
	Similarity    SimilarityConfig    `mapstructure:"similarity"`
	Extrapolation ExtrapolationConfig `mapstructure:"extrapolation"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate performs semantic validation of the fully-populated Config.
// Input paths are not required here; each command checks the ones it needs.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	if c.Data.Columns.SMILES == "" {
		return fmt.Errorf("config: data.columns.smiles is required")
	}
	if c.Data.Columns.Label == "" {
		return fmt.Errorf("config: data.columns.label is required")
	}

	if c.Splits.Folds < 1 {
		return fmt.Errorf("config: splits.folds must be ≥ 1, got %d", c.Splits.Folds)
	}
	if c.Splits.TestFraction <= 0 || c.Splits.TestFraction >= 1 {
		return fmt.Errorf("config: splits.test_fraction must be in (0, 1), got %g", c.Splits.TestFraction)
	}

	if r := c.Fingerprint.RadiusOrDefault(); r < 0 {
		return fmt.Errorf("config: fingerprint.radius must be ≥ 0, got %d", r)
	}
	if c.Fingerprint.Bits < 8 {
		return fmt.Errorf("config: fingerprint.bits must be ≥ 8, got %d", c.Fingerprint.Bits)
	}

	if c.Evaluation.MinClassMembers < 2 {
		return fmt.Errorf("config: evaluation.min_class_members must be ≥ 2, got %d", c.Evaluation.MinClassMembers)
	}
	if c.Evaluation.IntervalTail < 0 || c.Evaluation.IntervalTail >= 0.5 {
		return fmt.Errorf("config: evaluation.interval_tail must be in [0, 0.5), got %g", c.Evaluation.IntervalTail)
	}
	for i, cl := range c.Evaluation.Classes {
		if cl.Name == "" || cl.Pattern == "" {
			return fmt.Errorf("config: evaluation.classes[%d] needs name and pattern", i)
		}
	}

	if c.Similarity.Workers < 1 {
		return fmt.Errorf("config: similarity.workers must be ≥ 1, got %d", c.Similarity.Workers)
	}
	if !sort.Float64sAreSorted(c.Similarity.Bands) {
		return fmt.Errorf("config: similarity.bands must be ascending")
	}
	for _, b := range c.Similarity.Bands {
		if b < 0 || b > 1 {
			return fmt.Errorf("config: similarity.bands value %g outside [0, 1]", b)
		}
	}

	if r := c.Cache.Redis; r.Enabled {
		switch r.Mode {
		case "standalone":
			if r.Addr == "" {
				return fmt.Errorf("config: cache.redis.addr is required in standalone mode")
			}
		case "sentinel":
			if r.MasterName == "" || len(r.SentinelAddrs) == 0 {
				return fmt.Errorf("config: cache.redis sentinel mode needs master_name and sentinel_addrs")
			}
		case "cluster":
			if len(r.ClusterAddrs) == 0 {
				return fmt.Errorf("config: cache.redis.cluster_addrs is required in cluster mode")
			}
		default:
			return fmt.Errorf("config: cache.redis.mode %q is invalid; expected standalone|sentinel|cluster", r.Mode)
		}
		if r.TTL < 0 {
			return fmt.Errorf("config: cache.redis.ttl must be ≥ 0, got %s", r.TTL)
		}
	}

	if c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required")
	}

	return nil
}
