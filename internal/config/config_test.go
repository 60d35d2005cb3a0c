package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/odorscape/internal/config"
)

// validConfig returns a Config that passes Validate() with every default set.
func validConfig() *config.Config {
	return config.NewDefaultConfig()
}

func TestConfig_Validate_ValidConfig(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_Rejections(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"log level", func(c *config.Config) { c.Log.Level = "verbose" }, "log.level"},
		{"log format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
		{"smiles column", func(c *config.Config) { c.Data.Columns.SMILES = "" }, "data.columns.smiles"},
		{"label column", func(c *config.Config) { c.Data.Columns.Label = "" }, "data.columns.label"},
		{"folds", func(c *config.Config) { c.Splits.Folds = 0 }, "splits.folds"},
		{"test fraction high", func(c *config.Config) { c.Splits.TestFraction = 1 }, "splits.test_fraction"},
		{"test fraction negative", func(c *config.Config) { c.Splits.TestFraction = -0.2 }, "splits.test_fraction"},
		{"radius", func(c *config.Config) { r := -1; c.Fingerprint.Radius = &r }, "fingerprint.radius"},
		{"bits", func(c *config.Config) { c.Fingerprint.Bits = 4 }, "fingerprint.bits"},
		{"min members", func(c *config.Config) { c.Evaluation.MinClassMembers = 1 }, "evaluation.min_class_members"},
		{"tail", func(c *config.Config) { c.Evaluation.IntervalTail = 0.5 }, "evaluation.interval_tail"},
		{"class pattern", func(c *config.Config) {
			c.Evaluation.Classes = []config.ClassConfig{{Name: "Amine"}}
		}, "evaluation.classes[0]"},
		{"workers", func(c *config.Config) { c.Similarity.Workers = 0 }, "similarity.workers"},
		{"bands order", func(c *config.Config) { c.Similarity.Bands = []float64{0.5, 0.3} }, "ascending"},
		{"bands range", func(c *config.Config) { c.Similarity.Bands = []float64{0, 1.5} }, "outside"},
		{"redis addr", func(c *config.Config) { c.Cache.Redis.Enabled = true }, "cache.redis.addr"},
		{"redis mode", func(c *config.Config) {
			c.Cache.Redis.Enabled = true
			c.Cache.Redis.Mode = "ring"
		}, "cache.redis.mode"},
		{"redis sentinel", func(c *config.Config) {
			c.Cache.Redis.Enabled = true
			c.Cache.Redis.Mode = "sentinel"
		}, "sentinel"},
		{"redis cluster", func(c *config.Config) {
			c.Cache.Redis.Enabled = true
			c.Cache.Redis.Mode = "cluster"
		}, "cache.redis.cluster_addrs"},
		{"namespace", func(c *config.Config) { c.Metrics.Namespace = "" }, "metrics.namespace"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestConfig_SubStructs_ZeroValues(t *testing.T) {
	t.Parallel()
	var cfg config.Config
	assert.Empty(t, cfg.Data.Dataset)
	assert.Nil(t, cfg.Data.Predictions)
	assert.Zero(t, cfg.Splits.Folds)
	assert.False(t, cfg.Storage.MinIO.UseSSL)
}
