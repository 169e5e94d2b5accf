package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"insurance-service/internal/models"
	"io"
	"strconv"
	"strings"
)

// table is a header-indexed CSV file.
type table struct {
	name    string
	columns map[string]int
	rows    [][]string
}

func readTable(name string, r io.Reader) (*table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", name, err)
	}
	t := &table{name: name, columns: make(map[string]int, len(header))}
	for i, column := range header {
		t.columns[strings.TrimSpace(strings.TrimPrefix(column, "\uFEFF"))] = i
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		t.rows = append(t.rows, record)
	}
	return t, nil
}

func (t *table) require(columns ...string) error {
	for _, column := range columns {
		if _, ok := t.columns[column]; !ok {
			return fmt.Errorf("column %q not found in %s", column, t.name)
		}
	}
	return nil
}

// row reads typed values from one record. The first conversion error is kept
// and later reads are no-ops.
type row struct {
	table  *table
	line   int
	record []string
	err    error
}

func (t *table) row(i int) *row {
	return &row{table: t, line: i + 2, record: t.rows[i]}
}

func (r *row) str(column string) string {
	i, ok := r.table.columns[column]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

func (r *row) integer(column string) int {
	raw := r.str(column)
	if r.err != nil {
		return 0
	}
	// pandas writes integer columns with missing values as floats
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || value != float64(int(value)) {
		r.fail(column, raw)
		return 0
	}
	return int(value)
}

func (r *row) number(column string) float64 {
	raw := r.str(column)
	if r.err != nil || raw == "" {
		return 0
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.fail(column, raw)
		return 0
	}
	return value
}

func (r *row) flag(column string) bool {
	raw := r.str(column)
	if r.err != nil {
		return false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		r.fail(column, raw)
		return false
	}
	return value
}

func (r *row) fail(column, raw string) {
	r.err = fmt.Errorf("%s line %d: invalid %s %q", r.table.name, r.line, column, raw)
}

func parseCustomers(customers, vehicles *table) ([]models.Customer, []error) {
	var errs []error
	byCustomer := map[int]models.Vehicles{}
	for i := range vehicles.rows {
		r := vehicles.row(i)
		customerID := r.integer("id_cliente")
		vehicle := models.Vehicle{
			VehicleID:     r.integer("id_vehiculo"),
			Plate:         r.str("patente"),
			Make:          r.str("marca"),
			Model:         r.str("modelo"),
			Year:          r.integer("anio"),
			ChassisNumber: r.str("nro_chasis"),
			Insured:       r.flag("asegurado"),
		}
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		byCustomer[customerID] = append(byCustomer[customerID], vehicle)
	}

	out := make([]models.Customer, 0, len(customers.rows))
	for i := range customers.rows {
		r := customers.row(i)
		customer := models.Customer{
			CustomerID: r.integer("id_cliente"),
			FirstName:  r.str("nombre"),
			LastName:   r.str("apellido"),
			DNI:        r.str("dni"),
			Email:      r.str("email"),
			Phone:      r.str("telefono"),
			Address:    r.str("direccion"),
			City:       r.str("ciudad"),
			Province:   r.str("provincia"),
			Active:     r.flag("activo"),
		}
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		customer.Vehicles = byCustomer[customer.CustomerID]
		if customer.Vehicles == nil {
			customer.Vehicles = models.Vehicles{}
		}
		out = append(out, customer)
	}
	return out, errs
}

func parseAgents(t *table) ([]models.Agent, []error) {
	var errs []error
	out := make([]models.Agent, 0, len(t.rows))
	for i := range t.rows {
		r := t.row(i)
		agent := models.Agent{
			AgentID:   r.integer("id_agente"),
			FirstName: r.str("nombre"),
			LastName:  r.str("apellido"),
			License:   r.str("matricula"),
			Phone:     r.str("telefono"),
			Email:     r.str("email"),
			Zone:      r.str("zona"),
			Active:    r.flag("activo"),
		}
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		out = append(out, agent)
	}
	return out, errs
}

// Rows are kept as written: statuses and dates are not normalized on load.
func parseClaims(t *table) ([]models.Claim, []error) {
	var errs []error
	out := make([]models.Claim, 0, len(t.rows))
	for i := range t.rows {
		r := t.row(i)
		claim := models.Claim{
			ClaimID:         r.integer("id_siniestro"),
			PolicyNumber:    r.str("nro_poliza"),
			Date:            r.str("fecha"),
			Type:            r.str("tipo"),
			EstimatedAmount: r.number("monto_estimado"),
			Description:     r.str("descripcion"),
			Status:          models.ClaimStatus(r.str("estado")),
		}
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		out = append(out, claim)
	}
	return out, errs
}

func parsePolicies(t *table) ([]models.Policy, []error) {
	var errs []error
	out := make([]models.Policy, 0, len(t.rows))
	for i := range t.rows {
		r := t.row(i)
		policy := models.Policy{
			PolicyNumber:   r.str("nro_poliza"),
			CustomerID:     r.integer("id_cliente"),
			AgentID:        r.integer("id_agente"),
			Type:           r.str("tipo"),
			StartDate:      r.str("fecha_inicio"),
			EndDate:        r.str("fecha_fin"),
			MonthlyPremium: r.number("prima_mensual"),
			TotalCoverage:  r.number("cobertura_total"),
			Status:         models.PolicyStatus(r.str("estado")),
		}
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		out = append(out, policy)
	}
	return out, errs
}
