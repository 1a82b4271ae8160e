package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/tigerroll/riptide/internal/support/logger"
)

// gcsAdapter implements Connection for Google Cloud Storage.
type gcsAdapter struct {
	client *gcs.Client
	cfg    StorageConfig
	name   string
}

var _ Connection = (*gcsAdapter)(nil)

// NewGCSAdapter creates a new GCS storage connection. Credentials come from
// the configured service account key file, or application default credentials
// when none is configured.
func NewGCSAdapter(ctx context.Context, cfg StorageConfig, name string) (Connection, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs storage adapter '%s': failed to create client: %w", name, err)
	}

	return &gcsAdapter{client: client, cfg: cfg, name: name}, nil
}

// Close releases the underlying GCS client.
func (a *gcsAdapter) Close() error {
	logger.Debugf("GCS storage adapter '%s' closed.", a.name)
	return a.client.Close()
}

// Type returns "gcs".
func (a *gcsAdapter) Type() string { return "gcs" }

// Name returns the name of this connection.
func (a *gcsAdapter) Name() string { return a.name }

// bucketName falls back to the configured default bucket when the caller
// passes an empty bucket.
func (a *gcsAdapter) bucketName(bucket string) (string, error) {
	if bucket != "" {
		return bucket, nil
	}
	if a.cfg.BucketName == "" {
		return "", fmt.Errorf("gcs storage adapter '%s': no bucket specified and no default bucket configured", a.name)
	}
	return a.cfg.BucketName, nil
}

// Upload writes data to the object in the given bucket.
func (a *gcsAdapter) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	b, err := a.bucketName(bucket)
	if err != nil {
		return err
	}

	wc := a.client.Bucket(b).Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := io.Copy(wc, data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to write object 'gs://%s/%s': %w", b, objectName, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to finalize object 'gs://%s/%s': %w", b, objectName, err)
	}
	logger.Debugf("Uploaded data to 'gs://%s/%s' (gcs adapter '%s').", b, objectName, a.name)
	return nil
}

// Download opens a reader on the object in the given bucket.
func (a *gcsAdapter) Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error) {
	b, err := a.bucketName(bucket)
	if err != nil {
		return nil, err
	}
	rc, err := a.client.Bucket(b).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open object 'gs://%s/%s': %w", b, objectName, err)
	}
	return rc, nil
}

// ListObjects iterates objects under the prefix and calls fn for each name.
func (a *gcsAdapter) ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error {
	b, err := a.bucketName(bucket)
	if err != nil {
		return err
	}

	it := a.client.Bucket(b).Objects(ctx, &gcs.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to list objects under 'gs://%s/%s': %w", b, prefix, err)
		}
		if err := fn(attrs.Name); err != nil {
			return err
		}
	}
}

// DeleteObject removes the object from the bucket.
func (a *gcsAdapter) DeleteObject(ctx context.Context, bucket, objectName string) error {
	b, err := a.bucketName(bucket)
	if err != nil {
		return err
	}
	if err := a.client.Bucket(b).Object(objectName).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object 'gs://%s/%s': %w", b, objectName, err)
	}
	return nil
}
