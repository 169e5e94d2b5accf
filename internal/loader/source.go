package loader

import (
	"context"
	"fmt"
	"insurance-service/internal/database/minio"
	"io"
	"os"
	"path/filepath"
)

// Source opens one dataset file by name, e.g. "clientes.csv".
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

type DirSource struct {
	Dir string
}

func (s DirSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	file, err := os.Open(filepath.Join(s.Dir, name))
	if err != nil {
		return nil, fmt.Errorf("dataset %s not found in %s: %w", name, s.Dir, err)
	}
	return file, nil
}

// BucketSource reads datasets from a MinIO bucket.
type BucketSource struct {
	Client *minio.MinioClient
	Bucket string
}

func (s BucketSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return s.Client.Open(ctx, s.Bucket, name)
}
