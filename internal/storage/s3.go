package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Transport uploads gallery images to S3-compatible storage
// Works with AWS S3, MinIO, DigitalOcean Spaces, Cloudflare R2, etc.
type S3Transport struct {
	client    *s3.Client
	bucket    string
	publicURL string // Base URL for generating public object URLs
}

// S3Config holds configuration for S3 storage
type S3Config struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Endpoint  string // Optional: for S3-compatible services
}

// NewS3Transport creates the client and makes sure the bucket exists
func NewS3Transport(ctx context.Context, cfg S3Config) (*S3Transport, error) {
	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client
	if cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO and some S3-compatible services
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	t := &S3Transport{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: s3PublicURL(cfg),
	}

	err = t.ensureBucket(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return t, nil
}

func s3PublicURL(cfg S3Config) string {
	if cfg.Endpoint == "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
}

// ensureBucket checks if bucket exists, creates it if not
func (t *S3Transport) ensureBucket(ctx context.Context) error {
	_, err := t.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(t.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = t.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(t.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %q does not exist and could not be created: %w", t.bucket, err)
	}

	slog.Info("created S3 bucket", "bucket", t.bucket)
	return nil
}

// Send stores the file under destPath. Credentials come from the client, so
// token is unused.
func (t *S3Transport) Send(ctx context.Context, f File, destPath, _ string, onProgress ProgressFunc) (string, error) {
	if f.Open == nil {
		return "", &TransportError{Op: "upload", Path: destPath, Err: fmt.Errorf("file %s has no content", f.Name)}
	}
	src, err := f.Open()
	if err != nil {
		return "", &TransportError{Op: "upload", Path: destPath, Err: err}
	}
	defer func() { _ = src.Close() }()

	body, progress := wrapProgress(src, f.Size, onProgress)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(t.bucket),
		Key:         aws.String(destPath),
		Body:        body,
		ContentType: aws.String(f.contentType()),
	}
	if f.Size > 0 {
		input.ContentLength = aws.Int64(f.Size)
	}

	_, err = t.client.PutObject(ctx, input)
	if err != nil {
		return "", &TransportError{Op: "upload", Path: destPath, Err: err}
	}

	progress.finish()
	return t.URL(destPath), nil
}

// Remove deletes an object from the bucket
func (t *S3Transport) Remove(ctx context.Context, destPath, _ string) error {
	_, err := t.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(destPath),
	})
	if err != nil {
		return &TransportError{Op: "remove", Path: destPath, Err: err}
	}
	return nil
}

// URL returns the public URL for accessing the object
func (t *S3Transport) URL(destPath string) string {
	return fmt.Sprintf("%s/%s", t.publicURL, destPath)
}
