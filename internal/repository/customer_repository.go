package repository

import (
	"context"
	"fmt"
	"insurance-service/internal/models"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const customerColumns = `id, id_cliente, nombre, apellido, dni, email, telefono, direccion,
		       ciudad, provincia, activo, vehiculos, created_at, updated_at`

type CustomerRepository struct {
	db *sqlx.DB
	boundedCall
}

func NewCustomerRepository(db *sqlx.DB, timeout time.Duration) *CustomerRepository {
	return &CustomerRepository{db: db, boundedCall: boundedCall{timeout: timeout}}
}

// GetByCustomerID returns the customer or an error wrapping models.ErrNotFound.
func (r *CustomerRepository) GetByCustomerID(ctx context.Context, customerID int) (*models.Customer, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var customer models.Customer
	query := `SELECT ` + customerColumns + ` FROM clientes WHERE id_cliente = $1`

	if err := r.db.GetContext(ctx, &customer, query, customerID); err != nil {
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, classifyError(err))
	}
	return &customer, nil
}

// GetByCustomerIDs resolves a key set. Missing keys are simply absent from the
// result and the order is unspecified.
func (r *CustomerRepository) GetByCustomerIDs(ctx context.Context, customerIDs []int) ([]models.Customer, error) {
	if len(customerIDs) == 0 {
		return []models.Customer{}, nil
	}

	ctx, cancel := r.bound(ctx)
	defer cancel()

	ids := make(pq.Int64Array, len(customerIDs))
	for i, id := range customerIDs {
		ids[i] = int64(id)
	}

	var customers []models.Customer
	query := `SELECT ` + customerColumns + ` FROM clientes WHERE id_cliente = ANY($1)`
	if err := r.db.SelectContext(ctx, &customers, query, ids); err != nil {
		return nil, fmt.Errorf("failed to get customers by ids: %w", classifyError(err))
	}
	return customers, nil
}

// Create inserts the customer and returns its storage reference. The unique
// constraint on id_cliente turns a concurrent duplicate into ErrDuplicateKey.
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) (uuid.UUID, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	customer.ID = uuid.New()
	customer.CreatedAt = time.Now()
	customer.UpdatedAt = customer.CreatedAt
	if customer.Vehicles == nil {
		customer.Vehicles = models.Vehicles{}
	}

	query := `
		INSERT INTO clientes (
			id, id_cliente, nombre, apellido, dni, email, telefono, direccion,
			ciudad, provincia, activo, vehiculos, created_at, updated_at
		) VALUES (
			:id, :id_cliente, :nombre, :apellido, :dni, :email, :telefono, :direccion,
			:ciudad, :provincia, :activo, :vehiculos, :created_at, :updated_at
		)`

	if _, err := r.db.NamedExecContext(ctx, query, customer); err != nil {
		slog.Error("Failed to create customer", "id_cliente", customer.CustomerID, "error", err)
		return uuid.Nil, fmt.Errorf("failed to create customer %d: %w", customer.CustomerID, classifyError(err))
	}

	slog.Info("Customer created", "id_cliente", customer.CustomerID, "storage_ref", customer.ID)
	return customer.ID, nil
}

// Update applies the patch and returns how many rows actually changed. A row
// whose columns already hold the patched values is not counted.
func (r *CustomerRepository) Update(ctx context.Context, customerID int, patch models.CustomerPatch) (int64, error) {
	columns, values := patch.Columns()
	if len(columns) == 0 {
		return 0, nil
	}

	ctx, cancel := r.bound(ctx)
	defer cancel()

	sets := make([]string, len(columns))
	changed := make([]string, len(columns))
	args := make([]any, 0, len(values)+1)
	for i, column := range columns {
		sets[i] = fmt.Sprintf("%s = $%d", column, i+1)
		changed[i] = fmt.Sprintf("%s IS DISTINCT FROM $%d", column, i+1)
		args = append(args, values[i])
	}
	args = append(args, customerID)

	query := fmt.Sprintf(`UPDATE clientes SET %s, updated_at = now() WHERE id_cliente = $%d AND (%s)`,
		strings.Join(sets, ", "), len(args), strings.Join(changed, " OR "))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update customer %d: %w", customerID, classifyError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	slog.Info("Customer updated", "id_cliente", customerID, "fields", columns, "modified", rowsAffected)
	return rowsAffected, nil
}
