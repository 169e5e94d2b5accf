package services

import (
	"context"
	"fmt"
	"insurance-service/internal/models"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type memCustomers struct {
	mu      sync.Mutex
	byID    map[int]models.Customer
	creates int
	updates int
}

func newMemCustomers(customers ...models.Customer) *memCustomers {
	m := &memCustomers{byID: map[int]models.Customer{}}
	for _, c := range customers {
		m.byID[c.CustomerID] = c
	}
	return m
}

func (m *memCustomers) GetByCustomerID(_ context.Context, id int) (*models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("customer %d: %w", id, models.ErrNotFound)
	}
	return &c, nil
}

// GetByCustomerIDs answers in ascending key order, whatever order was asked.
func (m *memCustomers) GetByCustomerIDs(_ context.Context, ids []int) ([]models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Customer{}
	for _, id := range ids {
		if c, ok := m.byID[id]; ok {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CustomerID < out[j].CustomerID })
	return out, nil
}

func (m *memCustomers) Create(_ context.Context, c *models.Customer) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[c.CustomerID]; ok {
		return uuid.Nil, models.ErrDuplicateKey
	}
	c.ID = uuid.New()
	m.byID[c.CustomerID] = *c
	m.creates++
	return c.ID, nil
}

func (m *memCustomers) Update(_ context.Context, id int, patch models.CustomerPatch) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	c, ok := m.byID[id]
	if !ok {
		return 0, nil
	}
	updated := applyPatch(c, patch)
	if reflect.DeepEqual(c, updated) {
		return 0, nil
	}
	m.byID[id] = updated
	return 1, nil
}

// applyPatch merges the set fields the way the UPDATE statement does.
func applyPatch(c models.Customer, p models.CustomerPatch) models.Customer {
	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
	if p.DNI != nil {
		c.DNI = *p.DNI
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Phone != nil {
		c.Phone = *p.Phone
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.City != nil {
		c.City = *p.City
	}
	if p.Province != nil {
		c.Province = *p.Province
	}
	if p.Active != nil {
		c.Active = *p.Active
	}
	return c
}

type memAgents struct {
	byID map[int]models.Agent
}

func newMemAgents(agents ...models.Agent) *memAgents {
	m := &memAgents{byID: map[int]models.Agent{}}
	for _, a := range agents {
		m.byID[a.AgentID] = a
	}
	return m
}

func (m *memAgents) GetByAgentID(_ context.Context, id int) (*models.Agent, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("agent %d: %w", id, models.ErrNotFound)
	}
	return &a, nil
}

func (m *memAgents) ListActive(context.Context) ([]models.Agent, error) {
	out := []models.Agent{}
	for _, a := range m.byID {
		if a.Active {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AgentID < out[j].AgentID })
	return out, nil
}

type memPolicies struct {
	mu        sync.Mutex
	byNumber  map[string]models.Policy
	createErr error
}

func newMemPolicies() *memPolicies {
	return &memPolicies{byNumber: map[string]models.Policy{}}
}

func (m *memPolicies) GetByNumber(_ context.Context, number string) (*models.Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byNumber[number]
	if !ok {
		return nil, fmt.Errorf("policy %s: %w", number, models.ErrNotFound)
	}
	return &p, nil
}

// GetByNumbers answers in descending key order so callers cannot rely on it.
func (m *memPolicies) GetByNumbers(_ context.Context, numbers []string) ([]models.Policy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Policy{}
	for _, n := range numbers {
		if p, ok := m.byNumber[n]; ok {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PolicyNumber > out[j].PolicyNumber })
	return out, nil
}

func (m *memPolicies) Create(_ context.Context, p *models.Policy) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return uuid.Nil, m.createErr
	}
	if _, ok := m.byNumber[p.PolicyNumber]; ok {
		return uuid.Nil, models.ErrDuplicateKey
	}
	p.ID = uuid.New()
	m.byNumber[p.PolicyNumber] = *p
	return p.ID, nil
}

func (m *memPolicies) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byNumber)
}

func (m *memPolicies) setStatus(number string, status models.PolicyStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.byNumber[number]
	p.Status = status
	m.byNumber[number] = p
}

type memClaims struct {
	byID map[int]models.Claim
}

func newMemClaims(claims ...models.Claim) *memClaims {
	m := &memClaims{byID: map[int]models.Claim{}}
	for _, c := range claims {
		m.byID[c.ClaimID] = c
	}
	return m
}

func (m *memClaims) GetByClaimID(_ context.Context, id int) (*models.Claim, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, fmt.Errorf("claim %d: %w", id, models.ErrNotFound)
	}
	return &c, nil
}

func (m *memClaims) ListByType(_ context.Context, claimType string) ([]models.Claim, error) {
	out := []models.Claim{}
	for _, c := range m.byID {
		if equalFoldTrim(c.Type, claimType) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClaimID < out[j].ClaimID })
	return out, nil
}

func (m *memClaims) Create(_ context.Context, c *models.Claim) (uuid.UUID, error) {
	if _, ok := m.byID[c.ClaimID]; ok {
		return uuid.Nil, models.ErrDuplicateKey
	}
	c.ID = uuid.New()
	m.byID[c.ClaimID] = *c
	return c.ID, nil
}

// memIndex mimics the Redis commands used by the coordinator. failKeys makes
// every write to the named key fail with the given error.
type memIndex struct {
	mu       sync.Mutex
	hashes   map[string]map[string]int64
	sets     map[string]map[string]float64
	failKeys map[string]error
	readErr  error
	writes   []string
	deleted  []string
}

func newMemIndex() *memIndex {
	return &memIndex{
		hashes:   map[string]map[string]int64{},
		sets:     map[string]map[string]float64{},
		failKeys: map[string]error{},
	}
}

func (m *memIndex) HashIncrement(_ context.Context, key, field string, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, key)
	if err := m.failKeys[key]; err != nil {
		return 0, err
	}
	if m.hashes[key] == nil {
		m.hashes[key] = map[string]int64{}
	}
	m.hashes[key][field] += delta
	return m.hashes[key][field], nil
}

func (m *memIndex) HashGetAll(_ context.Context, key string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	out := map[string]string{}
	for field, value := range m.hashes[key] {
		out[field] = fmt.Sprint(value)
	}
	return out, nil
}

func (m *memIndex) SortedSetIncrementScore(_ context.Context, set, member string, delta float64) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, set)
	if err := m.failKeys[set]; err != nil {
		return 0, err
	}
	if m.sets[set] == nil {
		m.sets[set] = map[string]float64{}
	}
	m.sets[set][member] += delta
	return m.sets[set][member], nil
}

func (m *memIndex) SortedSetAdd(_ context.Context, set, member string, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, set)
	if err := m.failKeys[set]; err != nil {
		return err
	}
	if m.sets[set] == nil {
		m.sets[set] = map[string]float64{}
	}
	m.sets[set][member] = score
	return nil
}

func (m *memIndex) sorted(set string) []models.ScoredMember {
	out := []models.ScoredMember{}
	for member, score := range m.sets[set] {
		out = append(out, models.ScoredMember{Member: member, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score < out[j].Score
		}
		return out[i].Member < out[j].Member
	})
	return out
}

func window(members []models.ScoredMember, start, stop int64) []models.ScoredMember {
	n := int64(len(members))
	if stop < 0 {
		stop += n
	}
	if stop >= n {
		stop = n - 1
	}
	if start >= n || start > stop {
		return []models.ScoredMember{}
	}
	return members[start : stop+1]
}

func (m *memIndex) SortedSetRangeDesc(_ context.Context, set string, start, stop int64) ([]models.ScoredMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	asc := m.sorted(set)
	desc := make([]models.ScoredMember, len(asc))
	for i := range asc {
		desc[i] = asc[len(asc)-1-i]
	}
	return window(desc, start, stop), nil
}

func (m *memIndex) SortedSetRangeAsc(_ context.Context, set string, start, stop int64) ([]models.ScoredMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	return window(m.sorted(set), start, stop), nil
}

func (m *memIndex) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.hashes, key)
		delete(m.sets, key)
		m.deleted = append(m.deleted, key)
	}
	return nil
}

func (m *memIndex) hashValue(key, field string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hashes[key][field]
}

func (m *memIndex) score(set, member string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	score, ok := m.sets[set][member]
	return score, ok
}

func (m *memIndex) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.writes)
}

type recordingNotifier struct {
	failures []*models.PartialFailureError
}

func (n *recordingNotifier) NotifyPartialFailure(_ context.Context, failure *models.PartialFailureError) error {
	n.failures = append(n.failures, failure)
	return nil
}

// stubReports returns canned rows and remembers the literal each query got.
type stubReports struct {
	literals []string
}

func (s *stubReports) ActiveCustomersWithPolicies(_ context.Context, status string) ([]models.ActiveCustomerPolicies, error) {
	s.literals = append(s.literals, status)
	return []models.ActiveCustomerPolicies{{FullName: "Ana Lopez", ActivePolicies: []string{"POL1"}}}, nil
}

func (s *stubReports) OpenClaimsWithCustomer(_ context.Context, status string) ([]models.OpenClaimWithCustomer, error) {
	s.literals = append(s.literals, status)
	return []models.OpenClaimWithCustomer{}, nil
}

func (s *stubReports) InsuredVehiclesWithPolicy(context.Context) ([]models.InsuredVehicleWithPolicy, error) {
	return []models.InsuredVehicleWithPolicy{}, nil
}

func (s *stubReports) CustomersWithoutActivePolicies(_ context.Context, status string) ([]models.CustomerWithoutActivePolicy, error) {
	s.literals = append(s.literals, status)
	return []models.CustomerWithoutActivePolicy{}, nil
}

func (s *stubReports) ExpiredPoliciesWithCustomer(_ context.Context, status string) ([]models.ExpiredPolicyWithCustomer, error) {
	s.literals = append(s.literals, status)
	return []models.ExpiredPolicyWithCustomer{}, nil
}

func (s *stubReports) SuspendedPoliciesWithCustomerStatus(_ context.Context, status string) ([]models.SuspendedPolicyCustomerStatus, error) {
	s.literals = append(s.literals, status)
	return []models.SuspendedPolicyCustomerStatus{}, nil
}

func (s *stubReports) CustomersWithMultipleInsuredVehicles(context.Context) ([]models.CustomerInsuredVehicles, error) {
	return []models.CustomerInsuredVehicles{}, nil
}

func (s *stubReports) ClaimCountPerAgent(context.Context) ([]models.AgentClaimCount, error) {
	return []models.AgentClaimCount{}, nil
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
