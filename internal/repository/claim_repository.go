package repository

import (
	"context"
	"fmt"
	"insurance-service/internal/models"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const claimColumns = `id, id_siniestro, nro_poliza, fecha, tipo, monto_estimado, descripcion, estado, created_at`

type ClaimRepository struct {
	db *sqlx.DB
	boundedCall
}

func NewClaimRepository(db *sqlx.DB, timeout time.Duration) *ClaimRepository {
	return &ClaimRepository{db: db, boundedCall: boundedCall{timeout: timeout}}
}

func (r *ClaimRepository) GetByClaimID(ctx context.Context, claimID int) (*models.Claim, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var claim models.Claim
	query := `SELECT ` + claimColumns + ` FROM siniestros WHERE id_siniestro = $1`
	if err := r.db.GetContext(ctx, &claim, query, claimID); err != nil {
		return nil, fmt.Errorf("failed to get claim %d: %w", claimID, classifyError(err))
	}
	return &claim, nil
}

// ListByType matches tipo case-insensitively against a lower-case literal.
func (r *ClaimRepository) ListByType(ctx context.Context, claimType string) ([]models.Claim, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var claims []models.Claim
	query := `SELECT ` + claimColumns + ` FROM siniestros WHERE LOWER(tipo) = $1 ORDER BY id_siniestro`
	if err := r.db.SelectContext(ctx, &claims, query, claimType); err != nil {
		return nil, fmt.Errorf("failed to list claims of type %s: %w", claimType, classifyError(err))
	}
	return claims, nil
}

func (r *ClaimRepository) Create(ctx context.Context, claim *models.Claim) (uuid.UUID, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	claim.ID = uuid.New()
	claim.CreatedAt = time.Now()

	query := `
		INSERT INTO siniestros (
			id, id_siniestro, nro_poliza, fecha, tipo, monto_estimado, descripcion, estado, created_at
		) VALUES (
			:id, :id_siniestro, :nro_poliza, :fecha, :tipo, :monto_estimado, :descripcion, :estado, :created_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, claim); err != nil {
		slog.Error("Failed to create claim", "id_siniestro", claim.ClaimID, "error", err)
		return uuid.Nil, fmt.Errorf("failed to create claim %d: %w", claim.ClaimID, classifyError(err))
	}

	slog.Info("Claim created", "id_siniestro", claim.ClaimID, "nro_poliza", claim.PolicyNumber, "storage_ref", claim.ID)
	return claim.ID, nil
}
