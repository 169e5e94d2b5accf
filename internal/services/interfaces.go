package services

import (
	"context"
	"insurance-service/internal/models"

	"github.com/google/uuid"
)

// The services depend on these narrow views of the repositories so they can
// be exercised against in-memory stores.

type CustomerStore interface {
	GetByCustomerID(ctx context.Context, customerID int) (*models.Customer, error)
	GetByCustomerIDs(ctx context.Context, customerIDs []int) ([]models.Customer, error)
	Create(ctx context.Context, customer *models.Customer) (uuid.UUID, error)
	Update(ctx context.Context, customerID int, patch models.CustomerPatch) (int64, error)
}

type AgentStore interface {
	GetByAgentID(ctx context.Context, agentID int) (*models.Agent, error)
	ListActive(ctx context.Context) ([]models.Agent, error)
}

type PolicyStore interface {
	GetByNumber(ctx context.Context, policyNumber string) (*models.Policy, error)
	GetByNumbers(ctx context.Context, policyNumbers []string) ([]models.Policy, error)
	Create(ctx context.Context, policy *models.Policy) (uuid.UUID, error)
}

type ClaimStore interface {
	GetByClaimID(ctx context.Context, claimID int) (*models.Claim, error)
	ListByType(ctx context.Context, claimType string) ([]models.Claim, error)
	Create(ctx context.Context, claim *models.Claim) (uuid.UUID, error)
}

type ReportStore interface {
	ActiveCustomersWithPolicies(ctx context.Context, activeStatus string) ([]models.ActiveCustomerPolicies, error)
	OpenClaimsWithCustomer(ctx context.Context, openStatus string) ([]models.OpenClaimWithCustomer, error)
	InsuredVehiclesWithPolicy(ctx context.Context) ([]models.InsuredVehicleWithPolicy, error)
	CustomersWithoutActivePolicies(ctx context.Context, activeStatus string) ([]models.CustomerWithoutActivePolicy, error)
	ExpiredPoliciesWithCustomer(ctx context.Context, expiredStatus string) ([]models.ExpiredPolicyWithCustomer, error)
	SuspendedPoliciesWithCustomerStatus(ctx context.Context, suspendedStatus string) ([]models.SuspendedPolicyCustomerStatus, error)
	CustomersWithMultipleInsuredVehicles(ctx context.Context) ([]models.CustomerInsuredVehicles, error)
	ClaimCountPerAgent(ctx context.Context) ([]models.AgentClaimCount, error)
}

type DerivedIndexStore interface {
	HashIncrement(ctx context.Context, key, field string, delta int64) (int64, error)
	HashGetAll(ctx context.Context, key string) (map[string]string, error)
	SortedSetIncrementScore(ctx context.Context, set, member string, delta float64) (float64, error)
	SortedSetAdd(ctx context.Context, set, member string, score float64) error
	SortedSetRangeDesc(ctx context.Context, set string, start, stop int64) ([]models.ScoredMember, error)
	SortedSetRangeAsc(ctx context.Context, set string, start, stop int64) ([]models.ScoredMember, error)
	Delete(ctx context.Context, keys ...string) error
}

// ReconcileNotifier is told about every critical partial failure so an
// operator can repair the derived index.
type ReconcileNotifier interface {
	NotifyPartialFailure(ctx context.Context, failure *models.PartialFailureError) error
}
