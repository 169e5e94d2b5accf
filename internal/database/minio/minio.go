package minio

import (
	"context"
	"fmt"
	"insurance-service/internal/config"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioClient wraps the MinIO client for dataset ingestion
type MinioClient struct {
	client *minio.Client
	config config.MinioConfig
}

// NewMinioClient initializes a new MinIO client and verifies connectivity
func NewMinioClient(cfg config.MinioConfig) (*MinioClient, error) {
	endpoint := strings.TrimPrefix(cfg.MinioURL, "http://")
	endpoint = strings.TrimPrefix(endpoint, "https://")

	isSecure, err := strconv.ParseBool(cfg.MinioSecure)
	if err != nil {
		slog.Warn("Invalid value for MinIO secure flag, defaulting to false", "value", cfg.MinioSecure)
		isSecure = false
	}

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: isSecure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err = minioClient.ListBuckets(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to MinIO server: %w", err)
	}

	slog.Info("Successfully connected to MinIO", "endpoint", cfg.MinioURL)
	return &MinioClient{client: minioClient, config: cfg}, nil
}

// EnsureBucket creates a bucket if it doesn't exist
func (mc *MinioClient) EnsureBucket(ctx context.Context, bucketName string) error {
	exists, err := mc.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if exists {
		return nil
	}

	err = mc.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: mc.config.MinioLocation})
	if err != nil {
		return fmt.Errorf("error creating bucket %s: %w", bucketName, err)
	}
	slog.Info("Created bucket", "bucket", bucketName)
	return nil
}

// Open returns a reader over an object. The caller closes it.
func (mc *MinioClient) Open(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error) {
	if _, err := mc.client.StatObject(ctx, bucketName, objectName, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("object %s not found in bucket %s", objectName, bucketName)
		}
		return nil, fmt.Errorf("failed to stat %s in bucket %s: %w", objectName, bucketName, err)
	}

	object, err := mc.client.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s from bucket %s: %w", objectName, bucketName, err)
	}
	return object, nil
}
