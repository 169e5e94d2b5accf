package repository

import (
	"context"
	"fmt"
	"insurance-service/internal/models"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ReportRepository holds the join-style compositions over the primary store.
// Status and type literals are passed in lower case and compared against
// LOWER(column), so rows stored in any casing match.
type ReportRepository struct {
	db *sqlx.DB
	boundedCall
}

func NewReportRepository(db *sqlx.DB, timeout time.Duration) *ReportRepository {
	return &ReportRepository{db: db, boundedCall: boundedCall{timeout: timeout}}
}

func (r *ReportRepository) selectRows(ctx context.Context, report string, dest any, query string, args ...any) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	start := time.Now()
	if err := r.db.SelectContext(ctx, dest, query, args...); err != nil {
		slog.Error("Report query failed", "report", report, "error", err)
		return fmt.Errorf("failed to run report %s: %w", report, classifyError(err))
	}
	slog.Debug("Report query completed", "report", report, "duration", time.Since(start))
	return nil
}

func (r *ReportRepository) ActiveCustomersWithPolicies(ctx context.Context, activeStatus string) ([]models.ActiveCustomerPolicies, error) {
	var rows []struct {
		FullName string         `db:"nombre_completo"`
		Policies pq.StringArray `db:"polizas"`
	}
	query := `
		SELECT TRIM(c.nombre || ' ' || c.apellido) AS nombre_completo,
		       array_agg(p.nro_poliza ORDER BY p.nro_poliza) AS polizas
		FROM clientes c
		JOIN polizas p ON p.id_cliente = c.id_cliente
		WHERE c.activo AND LOWER(p.estado) = $1
		GROUP BY c.id_cliente, c.nombre, c.apellido
		ORDER BY c.id_cliente`
	if err := r.selectRows(ctx, "active_customers_with_policies", &rows, query, activeStatus); err != nil {
		return nil, err
	}

	result := make([]models.ActiveCustomerPolicies, len(rows))
	for i, row := range rows {
		result[i] = models.ActiveCustomerPolicies{FullName: row.FullName, ActivePolicies: []string(row.Policies)}
	}
	return result, nil
}

func (r *ReportRepository) OpenClaimsWithCustomer(ctx context.Context, openStatus string) ([]models.OpenClaimWithCustomer, error) {
	rows := []models.OpenClaimWithCustomer{}
	query := `
		SELECT s.id_siniestro, s.nro_poliza, s.fecha, s.tipo, s.monto_estimado, s.descripcion,
		       c.id_cliente, TRIM(c.nombre || ' ' || c.apellido) AS cliente
		FROM siniestros s
		JOIN polizas p ON p.nro_poliza = s.nro_poliza
		JOIN clientes c ON c.id_cliente = p.id_cliente
		WHERE LOWER(s.estado) = $1
		ORDER BY s.id_siniestro`
	if err := r.selectRows(ctx, "open_claims_with_customer", &rows, query, openStatus); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReportRepository) InsuredVehiclesWithPolicy(ctx context.Context) ([]models.InsuredVehicleWithPolicy, error) {
	var rows []struct {
		models.InsuredVehicleWithPolicy
		PolicyNumbers pq.StringArray `db:"polizas"`
	}
	query := `
		SELECT c.id_cliente,
		       TRIM(c.nombre || ' ' || c.apellido) AS cliente,
		       COALESCE(v->>'patente', '') AS patente,
		       COALESCE(v->>'marca', '') AS marca,
		       COALESCE(v->>'modelo', '') AS modelo,
		       COALESCE((v->>'anio')::numeric, 0)::int AS anio,
		       array_agg(p.nro_poliza ORDER BY p.nro_poliza) AS polizas
		FROM clientes c
		CROSS JOIN LATERAL jsonb_array_elements(c.vehiculos) AS v
		JOIN polizas p ON p.id_cliente = c.id_cliente
		WHERE v->'asegurado' = 'true'::jsonb
		GROUP BY c.id_cliente, c.nombre, c.apellido, v
		ORDER BY c.id_cliente, patente`
	if err := r.selectRows(ctx, "insured_vehicles_with_policy", &rows, query); err != nil {
		return nil, err
	}

	result := make([]models.InsuredVehicleWithPolicy, len(rows))
	for i, row := range rows {
		result[i] = row.InsuredVehicleWithPolicy
		result[i].Policies = []string(row.PolicyNumbers)
	}
	return result, nil
}

func (r *ReportRepository) CustomersWithoutActivePolicies(ctx context.Context, activeStatus string) ([]models.CustomerWithoutActivePolicy, error) {
	rows := []models.CustomerWithoutActivePolicy{}
	query := `
		SELECT c.id_cliente, TRIM(c.nombre || ' ' || c.apellido) AS nombre_completo, c.email, c.activo
		FROM clientes c
		WHERE NOT EXISTS (
			SELECT 1 FROM polizas p
			WHERE p.id_cliente = c.id_cliente AND LOWER(p.estado) = $1
		)
		ORDER BY c.id_cliente`
	if err := r.selectRows(ctx, "customers_without_active_policies", &rows, query, activeStatus); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReportRepository) ExpiredPoliciesWithCustomer(ctx context.Context, expiredStatus string) ([]models.ExpiredPolicyWithCustomer, error) {
	rows := []models.ExpiredPolicyWithCustomer{}
	query := `
		SELECT p.nro_poliza, p.tipo, p.fecha_inicio, p.fecha_fin,
		       c.id_cliente, TRIM(c.nombre || ' ' || c.apellido) AS cliente
		FROM polizas p
		JOIN clientes c ON c.id_cliente = p.id_cliente
		WHERE LOWER(p.estado) = $1
		ORDER BY p.nro_poliza`
	if err := r.selectRows(ctx, "expired_policies_with_customer", &rows, query, expiredStatus); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReportRepository) SuspendedPoliciesWithCustomerStatus(ctx context.Context, suspendedStatus string) ([]models.SuspendedPolicyCustomerStatus, error) {
	rows := []models.SuspendedPolicyCustomerStatus{}
	query := `
		SELECT p.nro_poliza, p.tipo, c.id_cliente,
		       TRIM(c.nombre || ' ' || c.apellido) AS cliente,
		       c.activo AS cliente_activo
		FROM polizas p
		JOIN clientes c ON c.id_cliente = p.id_cliente
		WHERE LOWER(p.estado) = $1
		ORDER BY p.nro_poliza`
	if err := r.selectRows(ctx, "suspended_policies_with_customer_status", &rows, query, suspendedStatus); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ReportRepository) CustomersWithMultipleInsuredVehicles(ctx context.Context) ([]models.CustomerInsuredVehicles, error) {
	var rows []struct {
		models.CustomerInsuredVehicles
		PlateList pq.StringArray `db:"patentes"`
	}
	query := `
		SELECT c.id_cliente,
		       TRIM(c.nombre || ' ' || c.apellido) AS nombre_completo,
		       COUNT(*) AS vehiculos_asegurados,
		       array_agg(COALESCE(v->>'patente', '') ORDER BY v->>'patente') AS patentes
		FROM clientes c
		CROSS JOIN LATERAL jsonb_array_elements(c.vehiculos) AS v
		WHERE v->'asegurado' = 'true'::jsonb
		GROUP BY c.id_cliente, c.nombre, c.apellido
		HAVING COUNT(*) > 1
		ORDER BY c.id_cliente`
	if err := r.selectRows(ctx, "customers_with_multiple_insured_vehicles", &rows, query); err != nil {
		return nil, err
	}

	result := make([]models.CustomerInsuredVehicles, len(rows))
	for i, row := range rows {
		result[i] = row.CustomerInsuredVehicles
		result[i].Plates = []string(row.PlateList)
	}
	return result, nil
}

func (r *ReportRepository) ClaimCountPerAgent(ctx context.Context) ([]models.AgentClaimCount, error) {
	rows := []models.AgentClaimCount{}
	query := `
		SELECT a.id_agente,
		       TRIM(a.nombre || ' ' || a.apellido) AS nombre_completo,
		       COUNT(s.id) AS cantidad_siniestros
		FROM agentes a
		LEFT JOIN polizas p ON p.id_agente = a.id_agente
		LEFT JOIN siniestros s ON s.nro_poliza = p.nro_poliza
		GROUP BY a.id_agente, a.nombre, a.apellido
		ORDER BY cantidad_siniestros DESC, a.id_agente`
	if err := r.selectRows(ctx, "claim_count_per_agent", &rows, query); err != nil {
		return nil, err
	}
	return rows, nil
}

// Truncate empties every primary collection. Used by bulk ingestion before a
// clean reload.
func (r *ReportRepository) Truncate(ctx context.Context) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `TRUNCATE siniestros, polizas, agentes, clientes`); err != nil {
		return fmt.Errorf("failed to truncate primary store: %w", classifyError(err))
	}
	slog.Info("Primary store truncated")
	return nil
}
