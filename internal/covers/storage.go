package covers

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage uploads and serves book cover images from an object store.
type Storage struct {
	client *minio.Client
	bucket string
}

// NewStorage creates the client and ensures the bucket exists.
func NewStorage(cfg *Config) (*Storage, error) {
	if cfg == nil || cfg.Endpoint == "" {
		return nil, fmt.Errorf("cover storage not configured")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &Storage{client: mc, bucket: cfg.Bucket}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		// bucket may already exist
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("ensure bucket %s: %w", s.bucket, err)
		}
	}
	return s, nil
}

// Upload stores a cover image under the book's id and returns its key.
func (s *Storage) Upload(ctx context.Context, bookID string, r io.Reader, size int64, contentType string) (string, error) {
	key := "covers/" + bookID
	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", err
	}
	return key, nil
}

// URL returns a presigned GET URL for a stored cover.
func (s *Storage) URL(ctx context.Context, key string, expires time.Duration) (string, error) {
	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, key, expires, make(url.Values))
	if err != nil {
		return "", err
	}
	return presigned.String(), nil
}
