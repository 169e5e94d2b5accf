package services

import (
	"context"
	"errors"
	"fmt"
	"insurance-service/internal/metrics"
	"insurance-service/internal/models"
	"log/slog"
	"strconv"
	"strings"
)

// Derived keys. The names are shared with other readers of the index and must
// not change.
const (
	AgentPolicyCountKey     = "agente:stats"
	CustomerCoverageRankKey = "ranking:clientes:cobertura"
	ActivePolicyIndexKey    = "idx:polizas:activas"
)

// ConsistencyCoordinator is the only writer of the derived index. It runs
// after the primary insert has committed and never touches the primary store.
type ConsistencyCoordinator struct {
	index DerivedIndexStore
}

func NewConsistencyCoordinator(index DerivedIndexStore) *ConsistencyCoordinator {
	return &ConsistencyCoordinator{index: index}
}

// ApplyPolicyIssued attempts every derived write for one issued policy. Each
// key is written independently; a failure on one does not skip the others.
// Bulk loaded rows keep their original casing, so the active check ignores
// case. The returned error joins the individual failures and is nil when all
// applied.
func (c *ConsistencyCoordinator) ApplyPolicyIssued(ctx context.Context, policy models.Policy) ([]models.DerivedKeyFailure, error) {
	var failures []models.DerivedKeyFailure
	var errs []error
	record := func(key, member string, err error) {
		if err == nil {
			return
		}
		slog.Error("Derived index update failed",
			"key", key, "member", member, "nro_poliza", policy.PolicyNumber, "error", err)
		metrics.DerivedUpdateFailures.WithLabelValues(key).Inc()
		failures = append(failures, models.DerivedKeyFailure{Key: key, Member: member, Error: err.Error()})
		errs = append(errs, fmt.Errorf("%s[%s]: %w", key, member, err))
	}

	agentMember := strconv.Itoa(policy.AgentID)
	_, err := c.index.HashIncrement(ctx, AgentPolicyCountKey, agentMember, 1)
	record(AgentPolicyCountKey, agentMember, err)

	customerMember := strconv.Itoa(policy.CustomerID)
	_, err = c.index.SortedSetIncrementScore(ctx, CustomerCoverageRankKey, customerMember, policy.TotalCoverage)
	record(CustomerCoverageRankKey, customerMember, err)

	if strings.EqualFold(strings.TrimSpace(string(policy.Status)), models.MatchPolicyActive) {
		start, err := models.ParseDate(policy.StartDate)
		if err == nil {
			err = c.index.SortedSetAdd(ctx, ActivePolicyIndexKey, policy.PolicyNumber, float64(start.Unix()))
		}
		record(ActivePolicyIndexKey, policy.PolicyNumber, err)
	}

	return failures, errors.Join(errs...)
}

// AgentPolicyCounts returns the counter of every agent that has one. Agents
// without issued policies are absent.
func (c *ConsistencyCoordinator) AgentPolicyCounts(ctx context.Context) (map[int]int64, error) {
	raw, err := c.index.HashGetAll(ctx, AgentPolicyCountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read agent policy counts: %w", err)
	}

	counts := make(map[int]int64, len(raw))
	for field, value := range raw {
		agentID, err := strconv.Atoi(field)
		if err != nil {
			slog.Warn("Skipping non-numeric agent counter", "field", field)
			continue
		}
		count, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			slog.Warn("Skipping non-numeric agent counter value", "field", field, "value", value)
			continue
		}
		counts[agentID] = count
	}
	return counts, nil
}

// TopCustomersByCoverage returns up to n customer keys, highest coverage first.
func (c *ConsistencyCoordinator) TopCustomersByCoverage(ctx context.Context, n int) ([]models.ScoredMember, error) {
	if n <= 0 {
		return []models.ScoredMember{}, nil
	}
	members, err := c.index.SortedSetRangeDesc(ctx, CustomerCoverageRankKey, 0, int64(n-1))
	if err != nil {
		return nil, fmt.Errorf("failed to read coverage ranking: %w", err)
	}
	return members, nil
}

// ActivePoliciesByStart returns every indexed policy key, earliest start first.
// Entries are added on issuance and never removed.
func (c *ConsistencyCoordinator) ActivePoliciesByStart(ctx context.Context) ([]models.ScoredMember, error) {
	members, err := c.index.SortedSetRangeAsc(ctx, ActivePolicyIndexKey, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to read active policy index: %w", err)
	}
	return members, nil
}

// Reset removes all derived state. Used before a bulk reload.
func (c *ConsistencyCoordinator) Reset(ctx context.Context) error {
	if err := c.index.Delete(ctx, AgentPolicyCountKey, CustomerCoverageRankKey, ActivePolicyIndexKey); err != nil {
		return fmt.Errorf("failed to reset derived index: %w", err)
	}
	slog.Info("Derived index reset")
	return nil
}
