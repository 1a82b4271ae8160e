// Package storage abstracts object storage for the Gold export step,
// allowing exports to target either the local file system or a GCS bucket
// through a unified API.
package storage

import (
	"context"
	"io"

	"github.com/tigerroll/riptide/internal/support/exception"
)

const moduleName = "storage"

// StorageConfig holds configuration for a single storage connection.
type StorageConfig struct {
	Type            string `yaml:"type" mapstructure:"type"`                         // Storage type ("local", "gcs").
	BucketName      string `yaml:"bucket_name" mapstructure:"bucket_name"`           // Default bucket for operations.
	CredentialsFile string `yaml:"credentials_file" mapstructure:"credentials_file"` // Service account key path for GCS.
	BaseDir         string `yaml:"base_dir" mapstructure:"base_dir"`                 // Base directory for local operations.
}

// Connection represents a generic object storage connection.
type Connection interface {
	// Upload uploads data to the specified bucket and object name.
	// 'contentType' is the MIME type of the data.
	Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error
	// Download downloads data from the specified bucket and object name.
	// The returned ReadCloser must be closed by the caller.
	Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error)
	// ListObjects lists objects under the given prefix, calling fn for each
	// object name found.
	ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error
	// DeleteObject deletes the specified object from the bucket.
	DeleteObject(ctx context.Context, bucket, objectName string) error

	// Close releases any resources held by the connection.
	Close() error
	// Type returns the adapter type ("local", "gcs").
	Type() string
	// Name returns the configured connection name.
	Name() string
}

// NewConnection creates a storage connection for the configured type.
func NewConnection(ctx context.Context, cfg StorageConfig, name string) (Connection, error) {
	switch cfg.Type {
	case "local":
		return NewLocalAdapter(cfg, name)
	case "gcs":
		return NewGCSAdapter(ctx, cfg, name)
	default:
		return nil, exception.NewETLErrorf(moduleName, "unsupported storage type '%s' for connection '%s'", cfg.Type, name)
	}
}
