package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"insurance-service/internal/config"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

func connString(cfg config.PostgresConfig, dbname string) string {
	timeoutSeconds := int(cfg.ConnectTimeout / time.Second)
	if timeoutSeconds < 1 {
		timeoutSeconds = 1
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable connect_timeout=%d",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, dbname, timeoutSeconds)
}

// ConnectAndCreateDB connects to the maintenance database, creates the target
// database when missing, then applies schema.sql to the target.
func ConnectAndCreateDB(cfg config.PostgresConfig) (*sqlx.DB, error) {
	slog.Info("Connecting to PostgreSQL",
		"host", cfg.Host,
		"port", cfg.Port,
		"user", cfg.Username,
		"dbname", cfg.DBname)

	defaultDB, err := sql.Open("postgres", connString(cfg, "postgres"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to default postgres db: %w", err)
	}
	defer defaultDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	var exists bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	err = defaultDB.QueryRowContext(ctx, checkQuery, cfg.DBname).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check if database exists: %w", err)
	}

	if !exists {
		createQuery := fmt.Sprintf(`CREATE DATABASE "%s"`, cfg.DBname)
		if _, err = defaultDB.ExecContext(ctx, createQuery); err != nil {
			return nil, fmt.Errorf("failed to create database %s: %w", cfg.DBname, err)
		}
		slog.Info("Database created", "dbname", cfg.DBname)
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", connString(cfg, cfg.DBname))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to target database: %w", err)
	}

	if err := ExecuteSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}

// ExecuteSchema applies the embedded schema. Every statement is idempotent.
func ExecuteSchema(ctx context.Context, db *sqlx.DB) error {
	successCount := 0
	for i, statement := range splitStatements(schemaSQL) {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("statement %d failed: %w", i+1, err)
		}
		successCount++
	}

	slog.Info("Schema execution completed", "statements", successCount)
	return nil
}

func splitStatements(schema string) []string {
	var statements []string
	for _, raw := range strings.Split(schema, ";") {
		var lines []string
		for _, line := range strings.Split(raw, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		statement := strings.TrimSpace(strings.Join(lines, "\n"))
		if statement == "" {
			continue
		}
		statements = append(statements, statement)
	}
	return statements
}

func RetryConnectOnFailed(waitAmount time.Duration, db **sqlx.DB, cfg config.PostgresConfig) {
	for {
		if *db != nil {
			if err := (*db).Ping(); err == nil {
				slog.Info("database connection is healthy, no retry needed")
				return
			}
		}

		newDB, err := ConnectAndCreateDB(cfg)
		if err == nil {
			*db = newDB
			slog.Info("database retry connection successfully")
			return
		}
		slog.Error("failed to retry connect database", "error", err, "next_retry", waitAmount)
		time.Sleep(waitAmount)
	}
}
