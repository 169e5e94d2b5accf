package app

import (
	"fmt"
	"insurance-service/internal/config"
	"insurance-service/internal/database/postgres"
	redisdb "insurance-service/internal/database/redis"
	"insurance-service/internal/repository"
	"insurance-service/internal/services"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// Services is the wired service layer shared by the HTTP server, the loader
// and the query runner.
type Services struct {
	Customers   *services.CustomerService
	Claims      *services.ClaimService
	Policies    *services.PolicyService
	Reports     *services.ReportService
	Coordinator *services.ConsistencyCoordinator
	Primary     *repository.ReportRepository
	Agents      *repository.AgentRepository
	CustomerDB  *repository.CustomerRepository
	ClaimDB     *repository.ClaimRepository
}

// NewServices builds repositories and services over open connections. notifier
// may be nil.
func NewServices(db *sqlx.DB, redisClient *redis.Client, timeout time.Duration, notifier services.ReconcileNotifier) *Services {
	customerRepo := repository.NewCustomerRepository(db, timeout)
	agentRepo := repository.NewAgentRepository(db, timeout)
	policyRepo := repository.NewPolicyRepository(db, timeout)
	claimRepo := repository.NewClaimRepository(db, timeout)
	reportRepo := repository.NewReportRepository(db, timeout)
	derivedRepo := repository.NewDerivedIndexRepository(redisClient, timeout)

	coordinator := services.NewConsistencyCoordinator(derivedRepo)

	return &Services{
		Customers:   services.NewCustomerService(customerRepo),
		Claims:      services.NewClaimService(claimRepo, policyRepo),
		Policies:    services.NewPolicyService(customerRepo, agentRepo, policyRepo, coordinator, notifier),
		Reports:     services.NewReportService(reportRepo, customerRepo, agentRepo, policyRepo, claimRepo, coordinator),
		Coordinator: coordinator,
		Primary:     reportRepo,
		Agents:      agentRepo,
		CustomerDB:  customerRepo,
		ClaimDB:     claimRepo,
	}
}

// ConnectStores opens Postgres and Redis. When retry is set a failed Postgres
// connection is retried until it succeeds.
func ConnectStores(cfg *config.InsuranceServiceConfig, retry bool) (*sqlx.DB, *redisdb.Client, error) {
	slog.Info("Connecting to PostgreSQL",
		"host", cfg.PostgresCfg.Host, "port", cfg.PostgresCfg.Port,
		"user", cfg.PostgresCfg.Username, "dbname", cfg.PostgresCfg.DBname)

	db, err := postgres.ConnectAndCreateDB(cfg.PostgresCfg)
	if err != nil {
		if !retry {
			return nil, nil, fmt.Errorf("error connect to database: %w", err)
		}
		slog.Error("error connect to database, retrying", "error", err)
		postgres.RetryConnectOnFailed(30*time.Second, &db, cfg.PostgresCfg)
	}

	redisClient, err := redisdb.NewRedisClient(cfg.RedisCfg)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	slog.Info("Connected to Redis", "host", cfg.RedisCfg.Host, "port", cfg.RedisCfg.Port, "db", cfg.RedisCfg.DB)
	return db, redisClient, nil
}
