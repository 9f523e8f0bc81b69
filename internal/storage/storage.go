package storage

import (
	"context"
	"fmt"
	"log/slog"

	cfg "github.com/templui/vows/internal/config"
)

const (
	DriverS3     = "s3"
	DriverObject = "object"
)

// New builds the gallery transport selected by STORAGE_DRIVER.
// For development: Use MinIO behind S3_ENDPOINT
// For production: any S3-compatible provider or the hosted object API
func New(ctx context.Context, c *cfg.Config) (Transport, error) {
	switch c.StorageDriver {
	case DriverS3:
		slog.Info("initializing S3 storage",
			"bucket", c.S3Bucket,
			"region", c.S3Region,
			"endpoint", c.S3Endpoint,
		)
		return NewS3Transport(ctx, S3Config{
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Endpoint:  c.S3Endpoint,
		})
	case DriverObject:
		if c.ObjectStorageURL == "" {
			return nil, fmt.Errorf("STORAGE_DRIVER=object requires OBJECT_STORAGE_URL")
		}
		slog.Info("initializing object storage",
			"url", c.ObjectStorageURL,
			"bucket", c.ObjectStorageBucket,
		)
		return NewObjectTransport(ObjectConfig{
			BaseURL: c.ObjectStorageURL,
			Bucket:  c.ObjectStorageBucket,
		}), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", c.StorageDriver)
}

// NewMedia builds the video transport from the media CDN settings.
func NewMedia(c *cfg.Config) *MediaTransport {
	return NewMediaTransport(MediaConfig{
		APIURL:       c.MediaAPIURL,
		DeliveryURL:  c.MediaDeliveryURL,
		CloudName:    c.MediaCloudName,
		UploadPreset: c.MediaUploadPreset,
		Transform:    c.MediaTransform,
		Format:       c.MediaFormat,
		Folder:       "wishes",
	})
}
