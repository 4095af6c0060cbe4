package minio

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/MetaNetX-Resolver/internal/domain/snapshot"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MetaNetX-Resolver/pkg/errors"
)

// Objects is a key space inside one bucket.  It serves both as a snapshot
// backend and as a source fetcher.
type Objects struct {
	client *Client
	bucket string
	prefix string
}

func normalizePrefix(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

func (o *Objects) objectName(key string) string { return o.prefix + strings.TrimLeft(key, "/") }

func isNoSuchKey(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchObject"
}

// Put uploads r under key.  A single PutObject replaces the object
// atomically.
func (o *Objects) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	opts := minio.PutObjectOptions{ContentType: contentType(key)}
	info, err := o.client.api.PutObject(ctx, o.bucket, o.objectName(key), r, size, opts)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "upload failed").WithDetail(o.bucket + "/" + o.objectName(key))
	}
	o.client.logger.Debug("object uploaded",
		logging.String("bucket", o.bucket),
		logging.String("key", info.Key),
		logging.Int64("size", info.Size))
	return nil
}

// Get opens key.  A missing key returns snapshot.ErrObjectNotFound.
func (o *Objects) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	name := o.objectName(key)
	if _, err := o.client.api.StatObject(ctx, o.bucket, name, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return nil, snapshot.ErrObjectNotFound
		}
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "stat failed").WithDetail(o.bucket + "/" + name)
	}
	rc, err := o.client.api.GetObject(ctx, o.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, snapshot.ErrObjectNotFound
		}
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "download failed").WithDetail(o.bucket + "/" + name)
	}
	return rc, nil
}

// Fetch opens a source file by name.
func (o *Objects) Fetch(ctx context.Context, name string) (io.ReadCloser, error) {
	return o.Get(ctx, name)
}

// List returns keys under prefix, relative to the store root, sorted.
func (o *Objects) List(ctx context.Context, prefix string) ([]string, error) {
	ch := o.client.api.ListObjects(ctx, o.bucket, minio.ListObjectsOptions{
		Prefix:    o.objectName(prefix),
		Recursive: true,
	})
	var keys []string
	for obj := range ch {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeExternalService, "list failed").WithDetail(o.bucket)
		}
		keys = append(keys, strings.TrimPrefix(obj.Key, o.prefix))
	}
	sort.Strings(keys)
	return keys, nil
}

func contentType(key string) string {
	switch {
	case strings.HasSuffix(key, ".json"):
		return "application/json"
	case strings.HasSuffix(key, ".gz"):
		return "application/gzip"
	default:
		return "text/plain"
	}
}

//Personal.AI order the ending
