package minio

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/druglike/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/druglike/pkg/errors"
)

// ContentTypeTSV is stored on uploaded dataset objects.
const ContentTypeTSV = "text/tab-separated-values"

// ErrObjectNotFound is returned when a dataset key does not exist.
var ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")

// DatasetObject describes one stored dataset.
type DatasetObject struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
}

// DatasetRepository reads and writes dataset objects in the bucket.
type DatasetRepository interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Upload(ctx context.Context, key string, r io.Reader, size int64) (*DatasetObject, error)
	Stat(ctx context.Context, key string) (*DatasetObject, error)
	List(ctx context.Context, prefix string) ([]DatasetObject, error)
}

type minioRepository struct {
	client *MinIOClient
	logger logging.Logger
}

// NewDatasetRepository returns a repository over client's bucket.
func NewDatasetRepository(client *MinIOClient, logger logging.Logger) DatasetRepository {
	return &minioRepository{client: client, logger: logging.OrNop(logger)}
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == 404
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" || strings.HasPrefix(key, "/") {
		return errors.New(errors.ErrCodeValidation, "invalid object key").WithDetail("key=" + key)
	}
	return nil
}

// Open streams an object.  The caller closes the reader.
func (r *minioRepository) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if _, err := r.Stat(ctx, key); err != nil {
		return nil, err
	}
	api, err := r.client.api()
	if err != nil {
		return nil, err
	}
	rc, err := api.GetObject(ctx, r.client.Bucket(), key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to open object").WithDetail("key=" + key)
	}
	return rc, nil
}

// Upload stores a dataset object.  size may be -1 for unknown length.
func (r *minioRepository) Upload(ctx context.Context, key string, body io.Reader, size int64) (*DatasetObject, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	api, err := r.client.api()
	if err != nil {
		return nil, err
	}
	info, err := api.PutObject(ctx, r.client.Bucket(), key, body, size, minio.PutObjectOptions{ContentType: ContentTypeTSV})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to upload object").WithDetail("key=" + key)
	}
	r.logger.Info("dataset uploaded",
		logging.String("bucket", r.client.Bucket()),
		logging.String("key", key),
		logging.Int64("size", info.Size))
	return &DatasetObject{
		Key:          key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  ContentTypeTSV,
		LastModified: info.LastModified,
	}, nil
}

// Stat returns object metadata or ErrObjectNotFound.
func (r *minioRepository) Stat(ctx context.Context, key string) (*DatasetObject, error) {
	api, err := r.client.api()
	if err != nil {
		return nil, err
	}
	info, err := api.StatObject(ctx, r.client.Bucket(), key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrObjectNotFound.WithDetail("key=" + key)
		}
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to stat object").WithDetail("key=" + key)
	}
	return &DatasetObject{
		Key:          key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  info.ContentType,
		LastModified: info.LastModified,
	}, nil
}

// List returns the objects under prefix sorted by key.
func (r *minioRepository) List(ctx context.Context, prefix string) ([]DatasetObject, error) {
	api, err := r.client.api()
	if err != nil {
		return nil, err
	}
	var out []DatasetObject
	for obj := range api.ListObjects(ctx, r.client.Bucket(), minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeExternalService, "failed to list objects")
		}
		out = append(out, DatasetObject{
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			ContentType:  obj.ContentType,
			LastModified: obj.LastModified,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
