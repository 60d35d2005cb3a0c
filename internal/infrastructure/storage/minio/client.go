// Package minio reads input tables from S3-compatible object storage.
package minio

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/turtacn/odorscape/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/odorscape/pkg/errors"
)

// MinIOAPI is the subset of *minio.Client used here.
type MinIOAPI interface {
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// MinIOConfig holds connection parameters.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Region          string
	RequestTimeout  time.Duration
}

// MinIOClient opens objects for streaming reads.
type MinIOClient struct {
	client MinIOAPI
	config *MinIOConfig
	logger logging.Logger
	mu     sync.RWMutex
	closed bool
}

func applyDefaults(cfg *MinIOConfig) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
}

// NewMinIOClient builds a client.  No request is made until an object is
// opened, so an unreachable endpoint surfaces on first use.
func NewMinIOClient(cfg *MinIOConfig, log logging.Logger) (*MinIOClient, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, errors.InvalidParam("minio endpoint is required")
	}
	applyDefaults(cfg)

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeStorage, "failed to create minio client")
	}
	return newWithAPI(client, cfg, log), nil
}

func newWithAPI(api MinIOAPI, cfg *MinIOConfig, log logging.Logger) *MinIOClient {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &MinIOClient{client: api, config: cfg, logger: log.Named("minio")}
}

// Open returns a reader over bucket/object.  The object is stat'ed first so a
// missing key is reported here rather than on the first Read.
func (c *MinIOClient) Open(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return nil, errors.New(errors.CodeStorage, "minio client is closed")
	}

	statCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	info, err := c.client.StatObject(statCtx, bucket, object, minio.StatObjectOptions{})
	cancel()
	if err != nil {
		return nil, mapError(err, bucket, object)
	}

	// The body is streamed lazily, so the read is bound to ctx, not the timeout.
	obj, err := c.client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err, bucket, object)
	}
	c.logger.Debug("object opened",
		logging.String("bucket", bucket),
		logging.String("object", object),
		logging.Any("size", info.Size))
	return obj, nil
}

// Close marks the client closed.  minio-go holds no long-lived connections
// that need explicit release.
func (c *MinIOClient) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func mapError(err error, bucket, object string) error {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return errors.Wrap(err, errors.CodeNotFound, "object not found").
			WithDetailf("s3://%s/%s", bucket, object)
	}
	return errors.Wrap(err, errors.CodeStorage, "failed to read object").
		WithDetailf("s3://%s/%s", bucket, object)
}
