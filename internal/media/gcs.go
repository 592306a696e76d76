package media

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
)

const gcsPublicBaseURL = "https://storage.googleapis.com"

// GCS uploads to a bucket with uniform public read access.
type GCS struct {
	client *storage.Client
	bucket string
}

// NewGCS uses application default credentials.
func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("media: gcs bucket is empty")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient -> %w", err)
	}

	return &GCS{
		client: client,
		bucket: bucket,
	}, nil
}

func (s *GCS) Put(ctx context.Context, folder, name string, png []byte) (string, error) {
	key, err := objectKey(folder, name)
	if err != nil {
		return "", err
	}

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "image/png"
	w.CacheControl = "public, max-age=86400"
	if _, err = w.Write(png); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("w.Write -> %w", err)
	}
	if err = w.Close(); err != nil {
		return "", fmt.Errorf("w.Close -> %w", err)
	}

	return publicURL(s.bucket, key), nil
}

func (s *GCS) Close() error {
	return s.client.Close()
}

func publicURL(bucket, key string) string {
	return gcsPublicBaseURL + "/" + bucket + "/" + key
}
