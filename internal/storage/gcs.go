// Package storage wraps Google Cloud Storage behind a narrow object-store
// interface covering exactly what the gateway needs: upload a payload,
// list object names under a prefix, and download a single object.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// ObjectStore defines the storage operations used by the gateway.
type ObjectStore interface {
	// Upload writes data to gs://bucket/object, overwriting any existing object.
	Upload(ctx context.Context, bucket, object string, data []byte) error

	// List returns the names of all objects under the given prefix.
	List(ctx context.Context, bucket, prefix string) ([]string, error)

	// Download reads the full content of gs://bucket/object.
	Download(ctx context.Context, bucket, object string) ([]byte, error)
}

// GCSObjectStore implements ObjectStore using the Cloud Storage client.
type GCSObjectStore struct {
	client *gcs.Client
}

// NewGCSObjectStore creates an object store with credentials from environment.
// It expects either GOOGLE_CREDENTIALS inline JSON or a
// GOOGLE_APPLICATION_CREDENTIALS file path, falling back to ADC.
func NewGCSObjectStore(ctx context.Context) (ObjectStore, error) {
	var opts []option.ClientOption
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		opts = append(opts, option.WithCredentialsFile(credFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSObjectStore{client: client}, nil
}

// NewGCSObjectStoreWithClient creates an object store with an explicit client (for testing).
func NewGCSObjectStoreWithClient(client *gcs.Client) ObjectStore {
	return &GCSObjectStore{client: client}
}

func (s *GCSObjectStore) Upload(ctx context.Context, bucket, object string, data []byte) error {
	w := s.client.Bucket(bucket).Object(object).NewWriter(ctx)
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		w.Close()
		return fmt.Errorf("failed to write %s: %w", URI(bucket, object), err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", URI(bucket, object), err)
	}
	return nil
}

func (s *GCSObjectStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	var names []string
	it := s.client.Bucket(bucket).Objects(ctx, &gcs.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list gs://%s/%s: %w", bucket, prefix, err)
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}

func (s *GCSObjectStore) Download(ctx context.Context, bucket, object string) ([]byte, error) {
	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", URI(bucket, object), err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", URI(bucket, object), err)
	}
	return data, nil
}

// Close closes the underlying storage client.
func (s *GCSObjectStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
