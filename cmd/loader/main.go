package main

import (
	"context"
	"insurance-service/internal/app"
	"insurance-service/internal/config"
	"insurance-service/internal/database/minio"
	"insurance-service/internal/loader"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))
	slog.Info("Starting data load")

	cfg := config.New()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, redisClient, err := app.ConnectStores(cfg, false)
	if err != nil {
		slog.Error("Failed to connect to the stores", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	defer redisClient.Close()

	source, err := newSource(ctx, cfg.LoaderCfg, cfg.MinioCfg)
	if err != nil {
		slog.Error("Failed to open dataset source", "error", err)
		os.Exit(1)
	}

	svc := app.NewServices(db, redisClient.GetClient(), cfg.StoreTimeout, nil)
	l := &loader.Loader{
		Source:       source,
		Customers:    svc.CustomerDB,
		Agents:       svc.Agents,
		Claims:       svc.ClaimDB,
		Policies:     svc.Policies,
		PrimaryReset: loader.ResetFunc(svc.Primary.Truncate),
		DerivedReset: svc.Coordinator,
		Workers:      cfg.LoaderCfg.Workers,
	}

	summary, err := l.Run(ctx)
	if err != nil {
		slog.Error("Data load failed", "error", err, "loaded", summary)
		os.Exit(1)
	}
	slog.Info("Data load completed",
		"customers", summary.Customers,
		"agents", summary.Agents,
		"claims", summary.Claims,
		"policies", summary.Policies,
		"skipped_rows", summary.SkippedRows,
		"partial_failures", summary.PartialFailures)
}

func newSource(ctx context.Context, cfg config.LoaderConfig, minioCfg config.MinioConfig) (loader.Source, error) {
	if cfg.Source != "minio" {
		slog.Info("Reading datasets from directory", "dir", cfg.CSVDir)
		return loader.DirSource{Dir: cfg.CSVDir}, nil
	}

	client, err := minio.NewMinioClient(minioCfg)
	if err != nil {
		return nil, err
	}
	if err := client.EnsureBucket(ctx, cfg.Bucket); err != nil {
		return nil, err
	}
	slog.Info("Reading datasets from bucket", "bucket", cfg.Bucket)
	return loader.BucketSource{Client: client, Bucket: cfg.Bucket}, nil
}
