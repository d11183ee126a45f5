// Package storage wraps the MinIO client used for avatars and complex
// photos. Keys are namespaced by category ("avatars/...", "complexes/...")
// so a file row can be checked against the section it is requested from.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/spaps/rental-backend/internal/config"
)

// ObjectStorage is the thin object-store facade handlers depend on.
type ObjectStorage struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// New connects to MinIO and ensures the bucket exists.
func New(ctx context.Context, cfg config.Minio) (*ObjectStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("bucket create: %w", err)
		}
	}

	return &ObjectStorage{client: client, bucket: cfg.Bucket, publicURL: cfg.PublicURL}, nil
}

// Upload stores the object under <category>/<uuid>-<filename> and returns
// the generated key and its public URL.
func (s *ObjectStorage) Upload(ctx context.Context, category, filename, contentType string, r io.Reader, size int64) (key, url string, err error) {
	key = fmt.Sprintf("%s/%s-%s", category, uuid.NewString(), filename)
	_, err = s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", "", fmt.Errorf("put object: %w", err)
	}
	return key, fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key), nil
}

// Get opens the object for streaming. The caller closes the reader.
func (s *ObjectStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	return obj, nil
}

// Remove deletes the object; removing an absent key is not an error.
func (s *ObjectStorage) Remove(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}
