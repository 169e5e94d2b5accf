package main

import (
	"context"
	"fmt"
	"insurance-service/internal/app"
	"insurance-service/internal/config"
	"insurance-service/internal/event"
	"insurance-service/internal/handlers"
	"insurance-service/internal/services"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func setupLogging(logDir string) (*os.File, error) {
	fmt.Println("Log directory:", logDir)
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %v", err)
	}

	logFileName := fmt.Sprintf("log_%s.log", time.Now().Format("2006-01-02"))
	logFile := filepath.Join(logDir, logFileName)

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %v", err)
	}

	if absPath, err := filepath.Abs(logFile); err == nil {
		fmt.Printf("Logging to: %s\n", absPath)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{AddSource: true})))
	log.SetOutput(file)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	return file, nil
}

func main() {
	cfg := config.New()

	logFile, err := setupLogging(cfg.LogDir)
	if err != nil {
		fmt.Printf("Failed to set up logging, using stdout: %v\n", err)
	} else {
		defer logFile.Close()
	}

	db, redisClient, err := app.ConnectStores(cfg, true)
	if err != nil {
		log.Fatalf("Failed to connect stores: %v", err)
	}
	defer db.Close()
	defer redisClient.Close()

	var notifier services.ReconcileNotifier
	if cfg.RabbitMQCfg.Host != "" {
		rabbit, err := event.ConnectRabbitMQ(cfg.RabbitMQCfg)
		if err != nil {
			slog.Error("RabbitMQ unavailable, reconcile alerts are log-only", "error", err)
		} else {
			defer rabbit.Close()
			notifier = event.NewReconcilePublisher(rabbit)
		}
	}

	svc := app.NewServices(db, redisClient.GetClient(), cfg.StoreTimeout, notifier)

	server := fiber.New()
	server.Get("/checkhealth", func(c fiber.Ctx) error {
		if err := db.PingContext(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).SendString("Primary store unreachable")
		}
		if err := redisClient.GetClient().Ping(c.Context()).Err(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).SendString("Derived index store unreachable")
		}
		return c.Status(fiber.StatusOK).SendString("Insurance service is healthy")
	})
	server.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handlers.NewReportHandler(svc.Reports).Register(server)
	handlers.NewCustomerHandler(svc.Customers).Register(server)
	handlers.NewClaimHandler(svc.Claims).Register(server)
	handlers.NewPolicyHandler(svc.Policies).Register(server)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Shutting down insurance service")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.ShutdownWithContext(ctx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Insurance service starting", "port", cfg.Port)
	if err := server.Listen(":" + cfg.Port); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
