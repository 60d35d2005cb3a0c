package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/odorscape/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/odorscape/pkg/errors"
)

const (
	DefaultKeyPrefix = "odorscape:fp:"
	DefaultTTL       = 30 * 24 * time.Hour
)

// FingerprintCache stores encoded fingerprints as plain string values under
// a key prefix.  Reads and writes are pipelined so cluster mode can route
// each key to its own slot.
type FingerprintCache struct {
	client *Client
	logger logging.Logger
	prefix string
	ttl    time.Duration
}

// CacheOption configures a FingerprintCache.
type CacheOption func(*FingerprintCache)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) CacheOption {
	return func(c *FingerprintCache) { c.prefix = prefix }
}

// WithTTL sets the expiry of written entries.  Zero keeps them forever.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *FingerprintCache) { c.ttl = ttl }
}

// NewFingerprintCache returns a cache over client.
func NewFingerprintCache(client *Client, log logging.Logger, opts ...CacheOption) *FingerprintCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &FingerprintCache{
		client: client,
		logger: log,
		prefix: DefaultKeyPrefix,
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *FingerprintCache) fullKey(key string) string {
	return c.prefix + key
}

// GetMany returns the stored value of every key that is present.  Absent
// keys are simply missing from the result.
func (c *FingerprintCache) GetMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	if len(keys) == 0 {
		return map[string][]byte{}, nil
	}
	if c.client.isClosed() {
		return nil, ErrClientClosed
	}

	pipe := c.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(keys))
	for i, k := range keys {
		cmds[i] = pipe.Get(ctx, c.fullKey(k))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "fingerprint cache read failed")
	}

	out := make(map[string][]byte, len(keys))
	for i, cmd := range cmds {
		data, err := cmd.Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeStorage, "fingerprint cache read failed").WithDetail(keys[i])
		}
		out[keys[i]] = data
	}
	return out, nil
}

// SetMany writes every entry with the configured TTL.
func (c *FingerprintCache) SetMany(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}
	if c.client.isClosed() {
		return ErrClientClosed
	}

	pipe := c.client.Pipeline()
	for k, v := range entries {
		pipe.Set(ctx, c.fullKey(k), v, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CodeStorage, "fingerprint cache write failed")
	}
	c.logger.Debug("fingerprints cached", logging.Int("entries", len(entries)))
	return nil
}
