package loader

import (
	"context"
	"errors"
	"fmt"
	"insurance-service/internal/models"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSource map[string]string

func (m mapSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	content, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("dataset %s not found", name)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

type recorder struct {
	mu        sync.Mutex
	customers []models.Customer
	agents    []models.Agent
	claims    []models.Claim
	policies  []models.Policy
	resets    []string
	failOn    map[string]error
}

type customerSink struct{ *recorder }
type agentSink struct{ *recorder }
type claimSink struct{ *recorder }

func (s customerSink) Create(_ context.Context, c *models.Customer) (uuid.UUID, error) {
	s.customers = append(s.customers, *c)
	return uuid.New(), nil
}

func (s agentSink) Create(_ context.Context, a *models.Agent) (uuid.UUID, error) {
	s.agents = append(s.agents, *a)
	return uuid.New(), nil
}

func (s claimSink) Create(_ context.Context, c *models.Claim) (uuid.UUID, error) {
	s.claims = append(s.claims, *c)
	return uuid.New(), nil
}

func (r *recorder) IngestPolicy(_ context.Context, p models.Policy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies = append(r.policies, p)
	return r.failOn[p.PolicyNumber]
}

func newTestLoader(source Source, r *recorder) *Loader {
	return &Loader{
		Source:       source,
		Customers:    customerSink{r},
		Agents:       agentSink{r},
		Claims:       claimSink{r},
		Policies:     r,
		PrimaryReset: ResetFunc(func(context.Context) error { r.resets = append(r.resets, "primary"); return nil }),
		DerivedReset: ResetFunc(func(context.Context) error { r.resets = append(r.resets, "derived"); return nil }),
		Workers:      2,
	}
}

func datasets() mapSource {
	return mapSource{
		CustomersFile: "id_cliente,nombre,apellido,dni,email,telefono,direccion,ciudad,provincia,activo\n" +
			"1,Ana,Lopez,30111222,ana@mail.com,111,Calle 1,Rosario,Santa Fe,True\n" +
			"2,Bruno,Diaz,30222333,bruno@mail.com,222,Calle 2,Cordoba,Cordoba,False\n" +
			"x,Roto,Roto,,,,,,,True\n",
		VehiclesFile: "id_vehiculo,id_cliente,marca,modelo,anio,patente,nro_chasis,asegurado\n" +
			"1,1,Fiat,Cronos,2021,AA111AA,CH1,True\n" +
			"2,1,Ford,Ka,2018,BB222BB,CH2,False\n",
		AgentsFile: "id_agente,nombre,apellido,matricula,telefono,email,zona,activo\n" +
			"1,Diego,Paz,M-1,333,diego@mail.com,Norte,True\n",
		PoliciesFile: "nro_poliza,id_cliente,tipo,fecha_inicio,fecha_fin,prima_mensual,cobertura_total,id_agente,estado\n" +
			"POL1001,1,Auto,01/01/2025,01/01/2026,1500.5,1000000,1,activa\n" +
			"POL1002,2,Hogar,15/03/2024,15/03/2025,800,500000,1,Vencida\n",
		ClaimsFile: "id_siniestro,nro_poliza,fecha,tipo,monto_estimado,descripcion,estado\n" +
			"10,POL1001,10/03/2025,Accidente,150000,\"Choque, leve\",abierto\n",
	}
}

func TestLoader_Run(t *testing.T) {
	r := &recorder{}

	summary, err := newTestLoader(datasets(), r).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"primary", "derived"}, r.resets)
	assert.Equal(t, Summary{Customers: 2, Agents: 1, Claims: 1, Policies: 2, SkippedRows: 1}, summary)

	require.Len(t, r.customers, 2)
	ana := r.customers[0]
	assert.True(t, ana.Active)
	require.Len(t, ana.Vehicles, 2)
	assert.Equal(t, "AA111AA", ana.Vehicles[0].Plate)
	assert.True(t, ana.Vehicles[0].Insured)
	assert.False(t, ana.Vehicles[1].Insured)
	assert.NotNil(t, r.customers[1].Vehicles)
	assert.Empty(t, r.customers[1].Vehicles)

	assert.Equal(t, "Choque, leve", r.claims[0].Description)
	assert.Equal(t, models.ClaimStatus("abierto"), r.claims[0].Status, "bulk rows keep their casing")

	assert.ElementsMatch(t, []string{"POL1001", "POL1002"}, []string{r.policies[0].PolicyNumber, r.policies[1].PolicyNumber})
}

func TestLoader_PartialFailuresAreCounted(t *testing.T) {
	r := &recorder{failOn: map[string]error{
		"POL1002": &models.PartialFailureError{PolicyNumber: "POL1002", Err: errors.New("timeout")},
	}}

	summary, err := newTestLoader(datasets(), r).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, summary.Policies)
	assert.Equal(t, 1, summary.PartialFailures)
}

func TestLoader_PrimaryFailureStops(t *testing.T) {
	r := &recorder{failOn: map[string]error{"POL1001": models.ErrStoreUnavailable}}

	_, err := newTestLoader(datasets(), r).Run(context.Background())

	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}

func TestLoader_MissingDatasetOrColumn(t *testing.T) {
	missing := datasets()
	delete(missing, AgentsFile)
	_, err := newTestLoader(missing, &recorder{}).Run(context.Background())
	assert.ErrorContains(t, err, AgentsFile)

	badHeader := datasets()
	badHeader[PoliciesFile] = "nro_poliza,id_cliente\nPOL1,1\n"
	_, err = newTestLoader(badHeader, &recorder{}).Run(context.Background())
	assert.ErrorContains(t, err, `column "id_agente" not found in polizas.csv`)
}

func TestReadTable_AcceptsFloatIntegers(t *testing.T) {
	tbl, err := readTable("t.csv", strings.NewReader("id,activo\n3.0,false\n"))
	require.NoError(t, err)

	r := tbl.row(0)
	assert.Equal(t, 3, r.integer("id"))
	assert.False(t, r.flag("activo"))
	assert.NoError(t, r.err)
}

func TestLoader_MissingDatasetKeepsStores(t *testing.T) {
	missing := datasets()
	delete(missing, ClaimsFile)
	r := &recorder{}

	_, err := newTestLoader(missing, r).Run(context.Background())

	require.Error(t, err)
	assert.Empty(t, r.resets)
}
