package services

import (
	"context"
	"fmt"
	"insurance-service/internal/metrics"
	"insurance-service/internal/models"
	"log/slog"
	"strconv"
	"time"
)

const (
	TopCoverageLimit   = 10
	accidentWindowDays = 365
)

// ReportService composes the read-only reports. Some run on the primary store
// alone, one reads the derived index alone, and two read an ordered key set
// from the derived index and resolve it against the primary store.
type ReportService struct {
	reports     ReportStore
	customers   CustomerStore
	agents      AgentStore
	policies    PolicyStore
	claims      ClaimStore
	coordinator *ConsistencyCoordinator
	now         func() time.Time
}

func NewReportService(
	reports ReportStore,
	customers CustomerStore,
	agents AgentStore,
	policies PolicyStore,
	claims ClaimStore,
	coordinator *ConsistencyCoordinator,
) *ReportService {
	return &ReportService{
		reports:     reports,
		customers:   customers,
		agents:      agents,
		policies:    policies,
		claims:      claims,
		coordinator: coordinator,
		now:         time.Now,
	}
}

// ActiveCustomersWithPolicies lists active customers with the keys of their active policies.
func (s *ReportService) ActiveCustomersWithPolicies(ctx context.Context) ([]models.ActiveCustomerPolicies, error) {
	defer metrics.ObserveReport("active_customers_with_policies")()
	return s.reports.ActiveCustomersWithPolicies(ctx, models.MatchPolicyActive)
}

// OpenClaimsWithCustomer lists open claims with the customer behind each policy.
func (s *ReportService) OpenClaimsWithCustomer(ctx context.Context) ([]models.OpenClaimWithCustomer, error) {
	defer metrics.ObserveReport("open_claims_with_customer")()
	return s.reports.OpenClaimsWithCustomer(ctx, models.MatchClaimOpen)
}

// InsuredVehiclesWithPolicy lists insured vehicles of customers holding at least one policy.
func (s *ReportService) InsuredVehiclesWithPolicy(ctx context.Context) ([]models.InsuredVehicleWithPolicy, error) {
	defer metrics.ObserveReport("insured_vehicles_with_policy")()
	return s.reports.InsuredVehiclesWithPolicy(ctx)
}

// CustomersWithoutActivePolicies lists customers with no active policy, inactive customers included.
func (s *ReportService) CustomersWithoutActivePolicies(ctx context.Context) ([]models.CustomerWithoutActivePolicy, error) {
	defer metrics.ObserveReport("customers_without_active_policies")()
	return s.reports.CustomersWithoutActivePolicies(ctx, models.MatchPolicyActive)
}

// AgentsWithPolicyCount lists every active agent with its issued-policy
// counter. An agent without a counter has issued nothing and reports 0.
func (s *ReportService) AgentsWithPolicyCount(ctx context.Context) ([]models.AgentPolicyCount, error) {
	defer metrics.ObserveReport("agents_with_policy_count")()

	agents, err := s.agents.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.coordinator.AgentPolicyCounts(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]models.AgentPolicyCount, len(agents))
	for i, agent := range agents {
		rows[i] = models.AgentPolicyCount{
			AgentID:     agent.AgentID,
			FullName:    agent.FullName(),
			License:     agent.License,
			PolicyCount: counts[agent.AgentID],
		}
	}
	return rows, nil
}

// ExpiredPoliciesWithCustomer lists expired policies with their customer.
func (s *ReportService) ExpiredPoliciesWithCustomer(ctx context.Context) ([]models.ExpiredPolicyWithCustomer, error) {
	defer metrics.ObserveReport("expired_policies_with_customer")()
	return s.reports.ExpiredPoliciesWithCustomer(ctx, models.MatchPolicyExpired)
}

// TopCustomersByCoverage returns the n customers with the highest accumulated
// coverage in ranking order. A ranked key with no customer behind it is kept
// and marked as not found.
func (s *ReportService) TopCustomersByCoverage(ctx context.Context, n int) ([]models.CustomerCoverageRank, error) {
	defer metrics.ObserveReport("top_customers_by_coverage")()

	ranked, err := s.coordinator.TopCustomersByCoverage(ctx, n)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(ranked))
	for _, member := range ranked {
		if id, err := strconv.Atoi(member.Member); err == nil {
			ids = append(ids, id)
		}
	}
	customers, err := s.customers.GetByCustomerIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]models.Customer, len(customers))
	for _, customer := range customers {
		byKey[strconv.Itoa(customer.CustomerID)] = customer
	}

	rows := make([]models.CustomerCoverageRank, len(ranked))
	for i, member := range ranked {
		row := models.CustomerCoverageRank{
			Position:      i + 1,
			CustomerKey:   member.Member,
			FullName:      models.NameNotFound,
			TotalCoverage: member.Score,
		}
		if customer, ok := byKey[member.Member]; ok {
			row.FullName = customer.FullName()
			row.Found = true
		} else {
			slog.Warn("Ranked customer not found in primary store", "id_cliente", member.Member)
		}
		rows[i] = row
	}
	return rows, nil
}

// AccidentClaimsLastYear returns accident claims dated within the last 365
// days up to now. Claims whose date does not parse are left out.
func (s *ReportService) AccidentClaimsLastYear(ctx context.Context) ([]models.AccidentClaim, error) {
	defer metrics.ObserveReport("accident_claims_last_year")()

	claims, err := s.claims.ListByType(ctx, models.MatchClaimAccident)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cutoff := now.AddDate(0, 0, -accidentWindowDays)
	rows := []models.AccidentClaim{}
	for _, claim := range claims {
		date, err := models.ParseDate(claim.Date)
		if err != nil {
			slog.Warn("Skipping claim with unparsable date", "id_siniestro", claim.ClaimID, "fecha", claim.Date)
			continue
		}
		if date.Before(cutoff) || !date.Before(now) {
			continue
		}
		rows = append(rows, models.AccidentClaim{
			ClaimID:         claim.ClaimID,
			PolicyNumber:    claim.PolicyNumber,
			Date:            claim.Date,
			Type:            claim.Type,
			EstimatedAmount: claim.EstimatedAmount,
			Description:     claim.Description,
			Status:          string(claim.Status),
		})
	}
	return rows, nil
}

// ActivePoliciesByStart returns the indexed policies ordered by start date,
// earliest first. The index is append-only, so a policy that left the active
// state after issuance still appears with its current status.
func (s *ReportService) ActivePoliciesByStart(ctx context.Context) ([]models.ActivePolicyByStart, error) {
	defer metrics.ObserveReport("active_policies_by_start")()

	indexed, err := s.coordinator.ActivePoliciesByStart(ctx)
	if err != nil {
		return nil, err
	}

	numbers := make([]string, len(indexed))
	for i, member := range indexed {
		numbers[i] = member.Member
	}
	policies, err := s.policies.GetByNumbers(ctx, numbers)
	if err != nil {
		return nil, err
	}
	byNumber := make(map[string]models.Policy, len(policies))
	for _, policy := range policies {
		byNumber[policy.PolicyNumber] = policy
	}

	rows := make([]models.ActivePolicyByStart, len(indexed))
	for i, member := range indexed {
		ts := int64(member.Score)
		row := models.ActivePolicyByStart{
			PolicyNumber:   member.Member,
			StartTimestamp: ts,
			StartDate:      time.Unix(ts, 0).In(time.Local).Format(models.DateLayout),
		}
		if policy, ok := byNumber[member.Member]; ok {
			row.CustomerID = policy.CustomerID
			row.Type = policy.Type
			row.Status = string(policy.Status)
			row.TotalCoverage = policy.TotalCoverage
			row.Found = true
		} else {
			slog.Warn("Indexed policy not found in primary store", "nro_poliza", member.Member)
		}
		rows[i] = row
	}
	return rows, nil
}

// SuspendedPoliciesWithCustomerStatus lists suspended policies with the customer's active flag.
func (s *ReportService) SuspendedPoliciesWithCustomerStatus(ctx context.Context) ([]models.SuspendedPolicyCustomerStatus, error) {
	defer metrics.ObserveReport("suspended_policies_with_customer_status")()
	return s.reports.SuspendedPoliciesWithCustomerStatus(ctx, models.MatchPolicySuspended)
}

func (s *ReportService) CustomersWithMultipleInsuredVehicles(ctx context.Context) ([]models.CustomerInsuredVehicles, error) {
	defer metrics.ObserveReport("customers_with_multiple_insured_vehicles")()
	return s.reports.CustomersWithMultipleInsuredVehicles(ctx)
}

// ClaimCountPerAgent counts claims across each agent's policies; agents without claims report 0.
func (s *ReportService) ClaimCountPerAgent(ctx context.Context) ([]models.AgentClaimCount, error) {
	defer metrics.ObserveReport("claim_count_per_agent")()
	return s.reports.ClaimCountPerAgent(ctx)
}

// ReportNames maps report numbers to the names used in routes and logs.
var ReportNames = map[int]string{
	1:  "active-customers",
	2:  "open-claims",
	3:  "insured-vehicles",
	4:  "customers-without-active-policies",
	5:  "agents-policy-count",
	6:  "expired-policies",
	7:  "top-customers-coverage",
	8:  "accident-claims-last-year",
	9:  "active-policies-by-start",
	10: "suspended-policies",
	11: "customers-multiple-vehicles",
	12: "claims-per-agent",
}

// Run executes report n (1..12) and returns its rows.
func (s *ReportService) Run(ctx context.Context, n int) (any, error) {
	switch n {
	case 1:
		return s.ActiveCustomersWithPolicies(ctx)
	case 2:
		return s.OpenClaimsWithCustomer(ctx)
	case 3:
		return s.InsuredVehiclesWithPolicy(ctx)
	case 4:
		return s.CustomersWithoutActivePolicies(ctx)
	case 5:
		return s.AgentsWithPolicyCount(ctx)
	case 6:
		return s.ExpiredPoliciesWithCustomer(ctx)
	case 7:
		return s.TopCustomersByCoverage(ctx, TopCoverageLimit)
	case 8:
		return s.AccidentClaimsLastYear(ctx)
	case 9:
		return s.ActivePoliciesByStart(ctx)
	case 10:
		return s.SuspendedPoliciesWithCustomerStatus(ctx)
	case 11:
		return s.CustomersWithMultipleInsuredVehicles(ctx)
	case 12:
		return s.ClaimCountPerAgent(ctx)
	default:
		return nil, fmt.Errorf("%w: report %d does not exist, choose 1 to %d", models.ErrNotFound, n, len(ReportNames))
	}
}
