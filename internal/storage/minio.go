package storage

import (
	"context"
	"io"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/gnegDev/path/internal/common"
)

// MinioStore implements ObjectStore against a MinIO (S3-compatible) endpoint.
type MinioStore struct {
	client *minio.Client
	bucket string
	log    *slog.Logger
}

func NewMinioStore(cfg common.StorageConfig, log *slog.Logger) (*MinioStore, error) {
	if log == nil {
		log = slog.Default()
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStore{client: client, bucket: cfg.Bucket, log: log}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *MinioStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return &common.StorageError{Key: s.bucket, Cause: err}
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return &common.StorageError{Key: s.bucket, Cause: err}
		}
		s.log.Info("created bucket", "bucket", s.bucket)
	}
	return nil
}

func (s *MinioStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", &common.StorageError{Key: key, Cause: err}
	}
	s.log.Info("uploaded object", "bucket", s.bucket, "key", key, "bytes", size)
	return key, nil
}

func (s *MinioStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, &common.StorageError{Key: key, Cause: err}
	}
	// GetObject is lazy; surface missing objects on first stat.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, &common.StorageError{Key: key, Cause: err}
	}
	return obj, nil
}
