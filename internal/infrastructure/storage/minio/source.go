package minio

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/cyclome/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cyclome/pkg/errors"
)

// Source serves structure files from one bucket prefix.  Object names are
// reported relative to the prefix, and only objects directly under it are
// listed.
type Source struct {
	client *MinIOClient
	prefix string
}

func NewSource(client *MinIOClient) *Source {
	prefix := strings.Trim(client.config.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &Source{client: client, prefix: prefix}
}

// Describe returns "s3://bucket/prefix".
func (s *Source) Describe() string {
	return "s3://" + s.client.config.Bucket + "/" + s.prefix
}

// List enumerates the objects under the prefix.
func (s *Source) List(ctx context.Context) ([]string, error) {
	if s.client.isClosed() {
		return nil, ErrMinIOClientClosed
	}

	objects := s.client.client.ListObjects(ctx, s.client.config.Bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix,
		Recursive: false,
	})

	var names []string
	for obj := range objects {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeSourceUnavailable, "failed to list structure bucket").
				WithDetail(s.Describe())
		}
		name := strings.TrimPrefix(obj.Key, s.prefix)
		if name == "" || strings.HasSuffix(name, "/") {
			continue
		}
		names = append(names, name)
	}

	s.client.logger.Debug("listed structure bucket",
		logging.String("source", s.Describe()),
		logging.Int("objects", len(names)))
	return names, nil
}

// Open streams one object.  A missing object maps to
// ErrCodeStructureFileMissing.
func (s *Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if s.client.isClosed() {
		return nil, ErrMinIOClientClosed
	}
	if name == "" || name != path.Base(name) {
		return nil, errors.New(errors.ErrCodeStructureFileMissing, "file missing on server").WithDetail(name)
	}

	bucket := s.client.config.Bucket
	object := s.prefix + name
	if _, err := s.client.client.StatObject(ctx, bucket, object, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return nil, errors.Wrap(err, errors.ErrCodeStructureFileMissing, "file missing on server").WithDetail(name)
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to stat structure object").WithDetail(object)
	}

	rc, err := s.client.client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageError, "failed to get structure object").WithDetail(object)
	}
	return rc, nil
}

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

//Personal.AI order the ending
