package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"insurance-service/internal/metrics"
	"insurance-service/internal/models"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCommands struct {
	err        error
	lastPolicy models.IssuePolicyRequest
	lastPatch  models.CustomerPatch
	lastID     int
}

func (s *stubCommands) result() (*models.CommandResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.CommandResult{Message: "ok", Matched: 1, Modified: 1}, nil
}

func (s *stubCommands) CreateCustomer(context.Context, models.CreateCustomerRequest) (*models.CommandResult, error) {
	return s.result()
}

func (s *stubCommands) UpdateCustomer(_ context.Context, id int, patch models.CustomerPatch) (*models.CommandResult, error) {
	s.lastID = id
	s.lastPatch = patch
	return s.result()
}

func (s *stubCommands) DeactivateCustomer(_ context.Context, id int) (*models.CommandResult, error) {
	s.lastID = id
	return s.result()
}

func (s *stubCommands) CreateClaim(context.Context, models.CreateClaimRequest) (*models.CommandResult, error) {
	return s.result()
}

func (s *stubCommands) IssuePolicy(_ context.Context, req models.IssuePolicyRequest) (*models.CommandResult, error) {
	s.lastPolicy = req
	return s.result()
}

type stubRunner struct{}

func (stubRunner) Run(_ context.Context, n int) (any, error) {
	if n == 5 {
		return []models.AgentPolicyCount{{AgentID: 1, PolicyCount: 2}}, nil
	}
	return nil, fmt.Errorf("%w: report %d", models.ErrNotFound, n)
}

func newTestApp(commands *stubCommands) *fiber.App {
	app := fiber.New()
	NewCustomerHandler(commands).Register(app)
	NewClaimHandler(commands).Register(app)
	NewPolicyHandler(commands).Register(app)
	NewReportHandler(stubRunner{}).Register(app)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	return resp.StatusCode, decoded
}

func errorCode(body map[string]any) string {
	errBody, _ := body["error"].(map[string]any)
	code, _ := errBody["code"].(string)
	return code
}

func TestIssuePolicy_TrimsInput(t *testing.T) {
	commands := &stubCommands{}
	app := newTestApp(commands)

	status, body := doJSON(t, app, http.MethodPost, "/insurance/public/api/v1/policies",
		`{"nro_poliza":" POL1 ","id_cliente":1,"id_agente":1,"estado":" activa ","cobertura_total":1000,"fecha_inicio":"01/01/2025","fecha_fin":"01/01/2026"}`)

	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "POL1", commands.lastPolicy.PolicyNumber)
	assert.Equal(t, "activa", commands.lastPolicy.Status)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{models.ErrDuplicateKey, http.StatusConflict, "DUPLICATE_KEY"},
		{models.ErrUnknownReference, http.StatusUnprocessableEntity, "UNKNOWN_REFERENCE"},
		{models.ErrInactiveReference, http.StatusUnprocessableEntity, "INACTIVE_REFERENCE"},
		{models.ErrInvalidDate, http.StatusBadRequest, "INVALID_DATE"},
		{models.ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
		{fmt.Errorf("ping: %w", models.ErrStoreUnavailable), http.StatusServiceUnavailable, "STORE_UNAVAILABLE"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.wantCode, func(t *testing.T) {
			app := newTestApp(&stubCommands{err: tt.err})
			failures := metrics.CommandFailures.WithLabelValues("create claim", tt.wantCode)
			before := testutil.ToFloat64(failures)

			status, body := doJSON(t, app, http.MethodPost, "/insurance/public/api/v1/claims", `{"id_siniestro":1}`)

			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, errorCode(body))
			assert.Equal(t, before+1, testutil.ToFloat64(failures))
		})
	}
}

func TestIssuePolicy_PartialFailureCarriesStorageRef(t *testing.T) {
	ref := uuid.New()
	app := newTestApp(&stubCommands{err: &models.PartialFailureError{
		StorageRef:   ref,
		PolicyNumber: "POL1",
		Failures:     []models.DerivedKeyFailure{{Key: "agente:stats", Member: "1", Error: "timeout"}},
		Err:          errors.New("timeout"),
	}})

	status, body := doJSON(t, app, http.MethodPost, "/insurance/public/api/v1/policies", `{"nro_poliza":"POL1"}`)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "CRITICAL_PARTIAL_FAILURE", errorCode(body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, ref.String(), details["storage_ref"])
}

func TestUpdateCustomer_BuildsPatch(t *testing.T) {
	commands := &stubCommands{}
	app := newTestApp(commands)

	status, _ := doJSON(t, app, http.MethodPatch, "/insurance/public/api/v1/customers/7", `{"ciudad":" Rosario ","activo":false}`)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 7, commands.lastID)
	require.NotNil(t, commands.lastPatch.City)
	assert.Equal(t, "Rosario", *commands.lastPatch.City)
	require.NotNil(t, commands.lastPatch.Active)
	assert.False(t, *commands.lastPatch.Active)
}

func TestUpdateCustomer_NumericValueKeepsDigits(t *testing.T) {
	commands := &stubCommands{}
	app := newTestApp(commands)

	status, _ := doJSON(t, app, http.MethodPatch, "/insurance/public/api/v1/customers/7", `{"dni":30123456,"telefono":3415550101}`)

	assert.Equal(t, http.StatusOK, status)
	require.NotNil(t, commands.lastPatch.DNI)
	assert.Equal(t, "30123456", *commands.lastPatch.DNI)
	require.NotNil(t, commands.lastPatch.Phone)
	assert.Equal(t, "3415550101", *commands.lastPatch.Phone)
}

func TestUpdateCustomer_RejectsNonScalarValues(t *testing.T) {
	for name, body := range map[string]string{
		"null":   `{"dni":30123456,"email":null}`,
		"object": `{"ciudad":{"nombre":"Rosario"}}`,
		"array":  `{"telefono":["1","2"]}`,
	} {
		t.Run(name, func(t *testing.T) {
			commands := &stubCommands{}
			app := newTestApp(commands)

			status, resp := doJSON(t, app, http.MethodPatch, "/insurance/public/api/v1/customers/7", body)

			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "INVALID_FIELD", errorCode(resp))
			assert.Zero(t, commands.lastID, "update must not reach the service")
		})
	}
}

func TestUpdateCustomer_RejectsUnknownField(t *testing.T) {
	app := newTestApp(&stubCommands{})

	status, body := doJSON(t, app, http.MethodPatch, "/insurance/public/api/v1/customers/7", `{"saldo":"10"}`)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_FIELD", errorCode(body))
}

func TestDeactivateCustomer_BadID(t *testing.T) {
	app := newTestApp(&stubCommands{})

	status, body := doJSON(t, app, http.MethodDelete, "/insurance/public/api/v1/customers/abc", "")

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_REQUEST", errorCode(body))
}

func TestRunReport(t *testing.T) {
	app := newTestApp(&stubCommands{})

	status, body := doJSON(t, app, http.MethodGet, "/insurance/public/api/v1/reports/5", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["meta"].(map[string]any)["count"])

	status, body = doJSON(t, app, http.MethodGet, "/insurance/public/api/v1/reports/99", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))

	status, body = doJSON(t, app, http.MethodGet, "/insurance/public/api/v1/reports", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 12)
}
