// Package storage resolves input locations to readers.  A location is either
// a local path or an s3://bucket/key object.
package storage

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/turtacn/odorscape/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/odorscape/pkg/errors"
)

const s3Scheme = "s3://"

// ObjectReader opens objects in a bucket.  *minio.MinIOClient satisfies it.
type ObjectReader interface {
	Open(ctx context.Context, bucket, object string) (io.ReadCloser, error)
}

// Location is a parsed input location.
type Location struct {
	Bucket string // empty for local files
	Key    string
	Path   string
}

// IsObject reports whether l refers to object storage.
func (l Location) IsObject() bool { return l.Bucket != "" }

func (l Location) String() string {
	if l.IsObject() {
		return s3Scheme + l.Bucket + "/" + l.Key
	}
	return l.Path
}

// ParseLocation splits an s3://bucket/key location; anything else is a local path.
func ParseLocation(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{}, errors.InvalidParam("empty input location")
	}
	rest, ok := strings.CutPrefix(raw, s3Scheme)
	if !ok {
		return Location{Path: raw}, nil
	}
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return Location{}, errors.InvalidParam("object location needs bucket and key").WithDetail(raw)
	}
	return Location{Bucket: bucket, Key: key}, nil
}

// Source opens local files and, when configured, object-storage keys.
type Source struct {
	objects ObjectReader
	logger  logging.Logger
}

// NewSource returns a Source.  objects may be nil, in which case s3://
// locations are rejected.
func NewSource(objects ObjectReader, logger logging.Logger) *Source {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Source{objects: objects, logger: logger}
}

// Open returns a reader for raw.  The caller closes it.
func (s *Source) Open(ctx context.Context, raw string) (io.ReadCloser, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, err
	}
	if loc.IsObject() {
		if s.objects == nil {
			return nil, errors.New(errors.CodeNotSupported, "object storage is not configured").WithDetail(loc.String())
		}
		s.logger.Debug("opening object", logging.String("location", loc.String()))
		return s.objects.Open(ctx, loc.Bucket, loc.Key)
	}

	f, err := os.Open(loc.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.CodeNotFound, "input file not found").WithDetail(loc.Path)
		}
		return nil, errors.Wrap(err, errors.CodeStorage, "failed to open input file").WithDetail(loc.Path)
	}
	s.logger.Debug("opening file", logging.String("location", loc.Path))
	return f, nil
}
