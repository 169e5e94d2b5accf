package services

import (
	"context"
	"errors"
	"fmt"
	"insurance-service/internal/metrics"
	"insurance-service/internal/models"
	"log/slog"
	"strings"

	"github.com/google/uuid"
)

type PolicyService struct {
	customers   CustomerStore
	agents      AgentStore
	policies    PolicyStore
	coordinator *ConsistencyCoordinator
	notifier    ReconcileNotifier
}

// NewPolicyService wires the issuance flow. notifier may be nil, in which
// case partial failures are only logged and counted.
func NewPolicyService(
	customers CustomerStore,
	agents AgentStore,
	policies PolicyStore,
	coordinator *ConsistencyCoordinator,
	notifier ReconcileNotifier,
) *PolicyService {
	return &PolicyService{
		customers:   customers,
		agents:      agents,
		policies:    policies,
		coordinator: coordinator,
		notifier:    notifier,
	}
}

// IssuePolicy validates references, key, dates and status, commits the policy
// to the primary store and then updates the derived index. Once the insert
// commits the policy exists: a derived failure after that point is returned
// as *models.PartialFailureError and the insert is kept.
func (s *PolicyService) IssuePolicy(ctx context.Context, req models.IssuePolicyRequest) (*models.CommandResult, error) {
	policyNumber := models.NormalizedPolicyNumber(req.PolicyNumber)

	if err := s.checkReferences(ctx, req.CustomerID, req.AgentID); err != nil {
		return nil, err
	}

	if _, err := s.policies.GetByNumber(ctx, policyNumber); err == nil {
		return nil, fmt.Errorf("%w: policy %s already exists", models.ErrDuplicateKey, policyNumber)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	if _, err := models.ParseDate(req.StartDate); err != nil {
		return nil, fmt.Errorf("fecha_inicio: %w", err)
	}
	if _, err := models.ParseDate(req.EndDate); err != nil {
		return nil, fmt.Errorf("fecha_fin: %w", err)
	}

	status, err := models.ParsePolicyStatus(req.Status)
	if err != nil {
		return nil, err
	}

	policy := models.Policy{
		PolicyNumber:   policyNumber,
		CustomerID:     req.CustomerID,
		AgentID:        req.AgentID,
		Type:           strings.TrimSpace(req.Type),
		StartDate:      strings.TrimSpace(req.StartDate),
		EndDate:        strings.TrimSpace(req.EndDate),
		MonthlyPremium: req.MonthlyPremium,
		TotalCoverage:  req.TotalCoverage,
		Status:         status,
	}
	ref, err := s.policies.Create(ctx, &policy)
	if err != nil {
		return nil, err
	}
	metrics.PoliciesIssued.Inc()

	if err := s.applyDerived(ctx, ref, policy); err != nil {
		return nil, err
	}

	slog.Info("Policy issued", "nro_poliza", policyNumber, "storage_ref", ref)
	return &models.CommandResult{
		Message:    fmt.Sprintf("Póliza %s emitida", policyNumber),
		StorageRef: ref,
		Matched:    1,
		Modified:   1,
	}, nil
}

// IngestPolicy stores a bulk-loaded policy as given, without reference or
// status validation, and then applies the same derived updates as IssuePolicy.
func (s *PolicyService) IngestPolicy(ctx context.Context, policy models.Policy) error {
	policy.PolicyNumber = strings.TrimSpace(policy.PolicyNumber)
	ref, err := s.policies.Create(ctx, &policy)
	if err != nil {
		return err
	}
	metrics.PoliciesIssued.Inc()
	return s.applyDerived(ctx, ref, policy)
}

func (s *PolicyService) applyDerived(ctx context.Context, ref uuid.UUID, policy models.Policy) error {
	failures, err := s.coordinator.ApplyPolicyIssued(ctx, policy)
	if err == nil {
		return nil
	}
	partial := &models.PartialFailureError{
		StorageRef:   ref,
		PolicyNumber: policy.PolicyNumber,
		Failures:     failures,
		Err:          err,
	}
	s.reportPartialFailure(ctx, partial)
	return partial
}

// checkReferences reports a missing customer or agent before an inactive one.
func (s *PolicyService) checkReferences(ctx context.Context, customerID, agentID int) error {
	customer, err := s.customers.GetByCustomerID(ctx, customerID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return err
	}
	agent, agentErr := s.agents.GetByAgentID(ctx, agentID)
	if agentErr != nil && !errors.Is(agentErr, models.ErrNotFound) {
		return agentErr
	}

	switch {
	case customer == nil:
		return fmt.Errorf("%w: customer %d does not exist", models.ErrUnknownReference, customerID)
	case agent == nil:
		return fmt.Errorf("%w: agent %d does not exist", models.ErrUnknownReference, agentID)
	case !customer.Active:
		return fmt.Errorf("%w: customer %d is inactive", models.ErrInactiveReference, customerID)
	case !agent.Active:
		return fmt.Errorf("%w: agent %d is inactive", models.ErrInactiveReference, agentID)
	}
	return nil
}

func (s *PolicyService) reportPartialFailure(ctx context.Context, partial *models.PartialFailureError) {
	metrics.PartialFailures.Inc()
	slog.Error("CRITICAL: policy stored but derived index not updated",
		"nro_poliza", partial.PolicyNumber,
		"storage_ref", partial.StorageRef,
		"failed_keys", partial.FailedKeys(),
		"error", partial.Err)

	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyPartialFailure(context.WithoutCancel(ctx), partial); err != nil {
		slog.Error("Failed to publish reconcile event", "nro_poliza", partial.PolicyNumber, "error", err)
	}
}
