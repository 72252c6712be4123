package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/example/storeadmin/internal/config"
)

// S3Store implements ObjectStore against S3 (or any S3-compatible endpoint).
// The client is constructed once at startup; credentials are not checked
// here, so a misconfigured bucket fails at the first PutObject.
type S3Store struct {
	client     *minio.Client
	bucket     string
	publicBase string
}

// NewS3Store builds the S3 client from configuration.
func NewS3Store(cfg *config.Config) (*S3Store, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		Secure: cfg.S3UseSSL,
		Region: cfg.S3Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	return &S3Store{
		client:     client,
		bucket:     cfg.S3Bucket,
		publicBase: strings.TrimRight(cfg.S3PublicBase, "/"),
	}, nil
}

// Upload writes the payload under key with the given content type. Objects
// are never overwritten in practice: every caller generates a fresh key.
func (s *S3Store) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %q: %w", key, err)
	}
	return nil
}

// Delete removes the object at key from the bucket.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// PublicURL returns the virtual-hosted-style URL for key, e.g.
// "https://store-admin-media.s3.amazonaws.com/products/abc.png". The URL is
// deterministic: no signing, no expiry.
func (s *S3Store) PublicURL(key string) string {
	return s.publicBase + "/" + key
}
