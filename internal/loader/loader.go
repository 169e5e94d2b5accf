package loader

import (
	"context"
	"errors"
	"fmt"
	"insurance-service/internal/models"
	"insurance-service/internal/worker"
	"log/slog"

	"github.com/google/uuid"
)

const (
	CustomersFile = "clientes.csv"
	VehiclesFile  = "vehiculos.csv"
	AgentsFile    = "agentes.csv"
	PoliciesFile  = "polizas.csv"
	ClaimsFile    = "siniestros.csv"
)

type CustomerWriter interface {
	Create(ctx context.Context, customer *models.Customer) (uuid.UUID, error)
}

type AgentWriter interface {
	Create(ctx context.Context, agent *models.Agent) (uuid.UUID, error)
}

type ClaimWriter interface {
	Create(ctx context.Context, claim *models.Claim) (uuid.UUID, error)
}

type PolicyIngester interface {
	IngestPolicy(ctx context.Context, policy models.Policy) error
}

type Resetter interface {
	Reset(ctx context.Context) error
}

// ResetFunc adapts a plain function to Resetter.
type ResetFunc func(ctx context.Context) error

func (f ResetFunc) Reset(ctx context.Context) error { return f(ctx) }

// Loader performs a clean reload of both stores from the five datasets.
type Loader struct {
	Source       Source
	Customers    CustomerWriter
	Agents       AgentWriter
	Claims       ClaimWriter
	Policies     PolicyIngester
	PrimaryReset Resetter
	DerivedReset Resetter
	Workers      int
}

type Summary struct {
	Customers       int
	Agents          int
	Claims          int
	Policies        int
	SkippedRows     int
	PartialFailures int
}

func (l *Loader) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	tables := map[string]*table{}
	for _, name := range []string{CustomersFile, VehiclesFile, AgentsFile, PoliciesFile, ClaimsFile} {
		t, err := l.read(ctx, name)
		if err != nil {
			return summary, err
		}
		tables[name] = t
	}
	if err := l.checkColumns(tables); err != nil {
		return summary, err
	}
	slog.Info("CSV datasets read")

	// nothing is reset until every dataset has been read
	slog.Info("Cleaning both stores for a clean load")
	if err := l.PrimaryReset.Reset(ctx); err != nil {
		return summary, fmt.Errorf("failed to reset primary store: %w", err)
	}
	if err := l.DerivedReset.Reset(ctx); err != nil {
		return summary, fmt.Errorf("failed to reset derived index: %w", err)
	}

	customers, errs := parseCustomers(tables[CustomersFile], tables[VehiclesFile])
	summary.SkippedRows += logSkipped(errs)
	for i := range customers {
		if _, err := l.Customers.Create(ctx, &customers[i]); err != nil {
			return summary, err
		}
		summary.Customers++
	}
	slog.Info("Customers loaded", "count", summary.Customers)

	agents, errs := parseAgents(tables[AgentsFile])
	summary.SkippedRows += logSkipped(errs)
	for i := range agents {
		if _, err := l.Agents.Create(ctx, &agents[i]); err != nil {
			return summary, err
		}
		summary.Agents++
	}
	slog.Info("Agents loaded", "count", summary.Agents)

	claims, errs := parseClaims(tables[ClaimsFile])
	summary.SkippedRows += logSkipped(errs)
	for i := range claims {
		if _, err := l.Claims.Create(ctx, &claims[i]); err != nil {
			return summary, err
		}
		summary.Claims++
	}
	slog.Info("Claims loaded", "count", summary.Claims)

	policies, errs := parsePolicies(tables[PoliciesFile])
	summary.SkippedRows += logSkipped(errs)
	loaded, partial, err := l.ingestPolicies(ctx, policies)
	summary.Policies = loaded
	summary.PartialFailures = partial
	if err != nil {
		return summary, err
	}
	slog.Info("Policies loaded and derived index updated",
		"count", summary.Policies, "partial_failures", summary.PartialFailures)

	return summary, nil
}

// ingestPolicies stores policies on the worker pool. A policy whose derived
// update failed is still loaded and only counted; any other error is fatal.
func (l *Loader) ingestPolicies(ctx context.Context, policies []models.Policy) (int, int, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	pool := worker.NewWorkingPool(l.Workers, len(policies))
	pool.Start(ctx)

	results := make(chan error, len(policies))
	for _, policy := range policies {
		pool.SubmitJob(func(ctx context.Context) error {
			err := l.Policies.IngestPolicy(ctx, policy)
			var partial *models.PartialFailureError
			if errors.As(err, &partial) {
				slog.Warn("Policy loaded without full derived update",
					"nro_poliza", policy.PolicyNumber, "failed_keys", partial.FailedKeys())
			} else if err != nil {
				cancel(err)
			}
			results <- err
			return err
		})
	}
	pool.Close()
	close(results)

	loaded, partials := 0, 0
	for err := range results {
		var partial *models.PartialFailureError
		switch {
		case err == nil:
			loaded++
		case errors.As(err, &partial):
			loaded++
			partials++
		}
	}
	if cause := context.Cause(ctx); cause != nil {
		return loaded, partials, fmt.Errorf("failed to load policies: %w", cause)
	}
	return loaded, partials, nil
}

func (l *Loader) read(ctx context.Context, name string) (*table, error) {
	file, err := l.Source.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return readTable(name, file)
}

func (l *Loader) checkColumns(tables map[string]*table) error {
	required := map[string][]string{
		CustomersFile: {"id_cliente", "nombre", "apellido", "activo"},
		VehiclesFile:  {"id_vehiculo", "id_cliente", "patente", "asegurado"},
		AgentsFile:    {"id_agente", "nombre", "apellido", "activo"},
		PoliciesFile:  {"nro_poliza", "id_cliente", "id_agente", "fecha_inicio", "cobertura_total", "estado"},
		ClaimsFile:    {"id_siniestro", "nro_poliza", "fecha", "tipo", "estado"},
	}
	for name, columns := range required {
		if err := tables[name].require(columns...); err != nil {
			return err
		}
	}
	return nil
}

func logSkipped(errs []error) int {
	for _, err := range errs {
		slog.Warn("Skipping CSV row", "error", err)
	}
	return len(errs)
}
