package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "ODORSCAPE"

// newViper builds a Viper instance with YAML file type, ODORSCAPE_ env prefix,
// automatic env binding, and a "." → "_" key replacer so that nested keys like
// "splits.folds" resolve to "ODORSCAPE_SPLITS_FOLDS".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvKeys(v)
	return v
}

// bindEnvKeys registers the scalar keys so AutomaticEnv can see them during
// Unmarshal even when no config file mentions them.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"log.level", "log.format",
		"data.dataset",
		"data.columns.smiles", "data.columns.label", "data.columns.mw",
		"data.columns.logp", "data.columns.bp", "data.columns.dataset_tag",
		"data.virtual.path", "data.virtual.smiles_column",
		"data.virtual.hac_column", "data.virtual.probability_column",
		"splits.folds", "splits.test_fraction",
		"fingerprint.radius", "fingerprint.bits",
		"evaluation.min_class_members", "evaluation.interval_tail",
		"similarity.workers",
		"extrapolation.sampling_table",
		"storage.minio.endpoint", "storage.minio.access_key",
		"storage.minio.secret_key", "storage.minio.use_ssl", "storage.minio.region",
		"cache.redis.enabled", "cache.redis.mode", "cache.redis.addr",
		"cache.redis.master_name", "cache.redis.username", "cache.redis.password",
		"cache.redis.db", "cache.redis.tls_enabled", "cache.redis.tls_ca_file",
		"cache.redis.key_prefix", "cache.redis.ttl",
		"metrics.namespace", "metrics.textfile",
	} {
		_ = v.BindEnv(key)
	}
}

// Load reads the YAML file at configPath, merges ODORSCAPE_* environment
// overrides, applies defaults for unset fields, and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from ODORSCAPE_* environment variables and
// defaults only.
//
//	ODORSCAPE_<SECTION>_<FIELD>   e.g.  ODORSCAPE_DATA_DATASET, ODORSCAPE_SPLITS_FOLDS
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// unmarshalAndFinalize unmarshals viper state into a Config, applies defaults,
// and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}
