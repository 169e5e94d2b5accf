package repository

import (
	"context"
	"fmt"
	"insurance-service/internal/models"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const policyColumns = `id, nro_poliza, id_cliente, id_agente, tipo, fecha_inicio, fecha_fin,
		       prima_mensual, cobertura_total, estado, created_at`

type PolicyRepository struct {
	db *sqlx.DB
	boundedCall
}

func NewPolicyRepository(db *sqlx.DB, timeout time.Duration) *PolicyRepository {
	return &PolicyRepository{db: db, boundedCall: boundedCall{timeout: timeout}}
}

func (r *PolicyRepository) GetByNumber(ctx context.Context, policyNumber string) (*models.Policy, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var policy models.Policy
	query := `SELECT ` + policyColumns + ` FROM polizas WHERE nro_poliza = $1`
	if err := r.db.GetContext(ctx, &policy, query, policyNumber); err != nil {
		return nil, fmt.Errorf("failed to get policy %s: %w", policyNumber, classifyError(err))
	}
	return &policy, nil
}

// GetByNumbers resolves a key set; missing keys are absent from the result.
func (r *PolicyRepository) GetByNumbers(ctx context.Context, policyNumbers []string) ([]models.Policy, error) {
	if len(policyNumbers) == 0 {
		return []models.Policy{}, nil
	}

	ctx, cancel := r.bound(ctx)
	defer cancel()

	var policies []models.Policy
	query := `SELECT ` + policyColumns + ` FROM polizas WHERE nro_poliza = ANY($1)`
	if err := r.db.SelectContext(ctx, &policies, query, pq.StringArray(policyNumbers)); err != nil {
		return nil, fmt.Errorf("failed to get policies by numbers: %w", classifyError(err))
	}
	return policies, nil
}

// Create is the durability boundary of policy issuance.
func (r *PolicyRepository) Create(ctx context.Context, policy *models.Policy) (uuid.UUID, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	policy.ID = uuid.New()
	policy.CreatedAt = time.Now()

	query := `
		INSERT INTO polizas (
			id, nro_poliza, id_cliente, id_agente, tipo, fecha_inicio, fecha_fin,
			prima_mensual, cobertura_total, estado, created_at
		) VALUES (
			:id, :nro_poliza, :id_cliente, :id_agente, :tipo, :fecha_inicio, :fecha_fin,
			:prima_mensual, :cobertura_total, :estado, :created_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, policy); err != nil {
		slog.Error("Failed to create policy", "nro_poliza", policy.PolicyNumber, "error", err)
		return uuid.Nil, fmt.Errorf("failed to create policy %s: %w", policy.PolicyNumber, classifyError(err))
	}

	slog.Info("Policy created",
		"nro_poliza", policy.PolicyNumber,
		"id_cliente", policy.CustomerID,
		"id_agente", policy.AgentID,
		"storage_ref", policy.ID)
	return policy.ID, nil
}
