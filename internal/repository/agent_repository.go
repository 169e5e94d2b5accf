package repository

import (
	"context"
	"fmt"
	"insurance-service/internal/models"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const agentColumns = `id, id_agente, nombre, apellido, matricula, telefono, email, zona, activo`

type AgentRepository struct {
	db *sqlx.DB
	boundedCall
}

func NewAgentRepository(db *sqlx.DB, timeout time.Duration) *AgentRepository {
	return &AgentRepository{db: db, boundedCall: boundedCall{timeout: timeout}}
}

func (r *AgentRepository) GetByAgentID(ctx context.Context, agentID int) (*models.Agent, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var agent models.Agent
	query := `SELECT ` + agentColumns + ` FROM agentes WHERE id_agente = $1`
	if err := r.db.GetContext(ctx, &agent, query, agentID); err != nil {
		return nil, fmt.Errorf("failed to get agent %d: %w", agentID, classifyError(err))
	}
	return &agent, nil
}

// ListActive returns every active agent ordered by key.
func (r *AgentRepository) ListActive(ctx context.Context) ([]models.Agent, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var agents []models.Agent
	query := `SELECT ` + agentColumns + ` FROM agentes WHERE activo ORDER BY id_agente`
	if err := r.db.SelectContext(ctx, &agents, query); err != nil {
		return nil, fmt.Errorf("failed to list active agents: %w", classifyError(err))
	}
	return agents, nil
}

// Create is used by bulk ingestion only; agents have no lifecycle command.
func (r *AgentRepository) Create(ctx context.Context, agent *models.Agent) (uuid.UUID, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	agent.ID = uuid.New()
	query := `
		INSERT INTO agentes (id, id_agente, nombre, apellido, matricula, telefono, email, zona, activo)
		VALUES (:id, :id_agente, :nombre, :apellido, :matricula, :telefono, :email, :zona, :activo)`

	if _, err := r.db.NamedExecContext(ctx, query, agent); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create agent %d: %w", agent.AgentID, classifyError(err))
	}
	return agent.ID, nil
}
