package services

import (
	"context"
	"errors"
	"fmt"
	"insurance-service/internal/models"
	"log/slog"
)

type CustomerService struct {
	customers CustomerStore
}

func NewCustomerService(customers CustomerStore) *CustomerService {
	return &CustomerService{customers: customers}
}

// CreateCustomer inserts a new customer. active defaults to true and vehicles
// to an empty list.
func (s *CustomerService) CreateCustomer(ctx context.Context, req models.CreateCustomerRequest) (*models.CommandResult, error) {
	customer := req.ToCustomer()

	if _, err := s.customers.GetByCustomerID(ctx, customer.CustomerID); err == nil {
		return nil, fmt.Errorf("%w: customer %d already exists", models.ErrDuplicateKey, customer.CustomerID)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	ref, err := s.customers.Create(ctx, &customer)
	if err != nil {
		return nil, err
	}

	return &models.CommandResult{
		Message:    fmt.Sprintf("Cliente %d creado", customer.CustomerID),
		StorageRef: ref,
		Matched:    1,
		Modified:   1,
	}, nil
}

// UpdateCustomer merges the patch into the stored customer. Modified is 0
// when every patched field already held the given value.
func (s *CustomerService) UpdateCustomer(ctx context.Context, customerID int, patch models.CustomerPatch) (*models.CommandResult, error) {
	if patch.IsEmpty() {
		return nil, fmt.Errorf("%w: at least one field is required", models.ErrInvalidField)
	}

	if _, err := s.customers.GetByCustomerID(ctx, customerID); err != nil {
		return nil, err
	}

	modified, err := s.customers.Update(ctx, customerID, patch)
	if err != nil {
		return nil, err
	}

	return &models.CommandResult{
		Message:  fmt.Sprintf("Cliente %d modificado (%d documentos)", customerID, modified),
		Matched:  1,
		Modified: modified,
	}, nil
}

// DeactivateCustomer soft-deletes a customer. Deactivating twice succeeds and
// reports zero modified documents the second time.
func (s *CustomerService) DeactivateCustomer(ctx context.Context, customerID int) (*models.CommandResult, error) {
	if _, err := s.customers.GetByCustomerID(ctx, customerID); err != nil {
		return nil, err
	}

	inactive := false
	modified, err := s.customers.Update(ctx, customerID, models.CustomerPatch{Active: &inactive})
	if err != nil {
		return nil, err
	}

	slog.Info("Customer deactivated", "id_cliente", customerID, "modified", modified)
	return &models.CommandResult{
		Message:  fmt.Sprintf("Cliente %d dado de baja (%d documentos)", customerID, modified),
		Matched:  1,
		Modified: modified,
	}, nil
}
