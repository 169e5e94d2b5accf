package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID         uuid.UUID `json:"-" db:"id"`
	CustomerID int       `json:"id_cliente" db:"id_cliente"`
	FirstName  string    `json:"nombre" db:"nombre"`
	LastName   string    `json:"apellido" db:"apellido"`
	DNI        string    `json:"dni" db:"dni"`
	Email      string    `json:"email" db:"email"`
	Phone      string    `json:"telefono" db:"telefono"`
	Address    string    `json:"direccion" db:"direccion"`
	City       string    `json:"ciudad" db:"ciudad"`
	Province   string    `json:"provincia" db:"provincia"`
	Active     bool      `json:"activo" db:"activo"`
	Vehicles   Vehicles  `json:"vehiculos" db:"vehiculos"`
	CreatedAt  time.Time `json:"-" db:"created_at"`
	UpdatedAt  time.Time `json:"-" db:"updated_at"`
}

func (c Customer) FullName() string {
	return joinName(c.FirstName, c.LastName)
}

// Vehicle is embedded in its owning customer and has no identity outside it.
type Vehicle struct {
	VehicleID     int    `json:"id_vehiculo"`
	Plate         string `json:"patente"`
	Make          string `json:"marca"`
	Model         string `json:"modelo"`
	Year          int    `json:"anio"`
	ChassisNumber string `json:"nro_chasis"`
	Insured       bool   `json:"asegurado"`
}

// Vehicles is stored as a JSONB array on the customer row.
type Vehicles []Vehicle

func (v Vehicles) Value() (driver.Value, error) {
	if v == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(v)
}

func (v *Vehicles) Scan(value any) error {
	if value == nil {
		*v = Vehicles{}
		return nil
	}

	var b []byte
	switch raw := value.(type) {
	case []byte:
		b = raw
	case string:
		b = []byte(raw)
	default:
		return fmt.Errorf("Vehicles: Scan failed, expected []byte but got %T", value)
	}

	return json.Unmarshal(b, v)
}

func (v Vehicles) InsuredCount() int {
	count := 0
	for _, vehicle := range v {
		if vehicle.Insured {
			count++
		}
	}
	return count
}

// CreateCustomerRequest is the Alta input. Active defaults to true and
// Vehicles to an empty list when omitted.
type CreateCustomerRequest struct {
	CustomerID int      `json:"id_cliente"`
	FirstName  string   `json:"nombre"`
	LastName   string   `json:"apellido"`
	DNI        string   `json:"dni"`
	Email      string   `json:"email"`
	Phone      string   `json:"telefono"`
	Address    string   `json:"direccion"`
	City       string   `json:"ciudad"`
	Province   string   `json:"provincia"`
	Active     *bool    `json:"activo,omitempty"`
	Vehicles   Vehicles `json:"vehiculos,omitempty"`
}

func (r CreateCustomerRequest) ToCustomer() Customer {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	vehicles := r.Vehicles
	if vehicles == nil {
		vehicles = Vehicles{}
	}
	return Customer{
		CustomerID: r.CustomerID,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		DNI:        r.DNI,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		City:       r.City,
		Province:   r.Province,
		Active:     active,
		Vehicles:   vehicles,
	}
}

// CustomerPatch carries the Modificar field changes. Nil fields keep their
// stored value.
type CustomerPatch struct {
	FirstName *string `json:"nombre,omitempty"`
	LastName  *string `json:"apellido,omitempty"`
	DNI       *string `json:"dni,omitempty"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"telefono,omitempty"`
	Address   *string `json:"direccion,omitempty"`
	City      *string `json:"ciudad,omitempty"`
	Province  *string `json:"provincia,omitempty"`
	Active    *bool   `json:"activo,omitempty"`
}

// PatchableCustomerFields lists the wire names accepted by NewCustomerPatch.
var PatchableCustomerFields = []string{
	"nombre", "apellido", "dni", "email", "telefono", "direccion", "ciudad", "provincia", "activo",
}

// NewCustomerPatch builds a patch from wire field names, rejecting any field
// outside PatchableCustomerFields.
func NewCustomerPatch(fields map[string]string) (CustomerPatch, error) {
	var patch CustomerPatch
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := fields[name]
		key := strings.ToLower(strings.TrimSpace(name))
		switch key {
		case "nombre":
			patch.FirstName = &value
		case "apellido":
			patch.LastName = &value
		case "dni":
			patch.DNI = &value
		case "email":
			patch.Email = &value
		case "telefono":
			patch.Phone = &value
		case "direccion":
			patch.Address = &value
		case "ciudad":
			patch.City = &value
		case "provincia":
			patch.Province = &value
		case "activo":
			active, err := strconv.ParseBool(strings.TrimSpace(value))
			if err != nil {
				return CustomerPatch{}, fmt.Errorf("%w: activo must be true or false, got %q", ErrInvalidField, value)
			}
			patch.Active = &active
		default:
			return CustomerPatch{}, fmt.Errorf("%w: %q is not one of %s", ErrInvalidField, name, strings.Join(PatchableCustomerFields, ", "))
		}
	}
	return patch, nil
}

// Columns returns the column/value pairs set by the patch, in a stable order.
func (p CustomerPatch) Columns() ([]string, []any) {
	var columns []string
	var values []any
	add := func(column string, value any) {
		columns = append(columns, column)
		values = append(values, value)
	}
	if p.FirstName != nil {
		add("nombre", *p.FirstName)
	}
	if p.LastName != nil {
		add("apellido", *p.LastName)
	}
	if p.DNI != nil {
		add("dni", *p.DNI)
	}
	if p.Email != nil {
		add("email", *p.Email)
	}
	if p.Phone != nil {
		add("telefono", *p.Phone)
	}
	if p.Address != nil {
		add("direccion", *p.Address)
	}
	if p.City != nil {
		add("ciudad", *p.City)
	}
	if p.Province != nil {
		add("provincia", *p.Province)
	}
	if p.Active != nil {
		add("activo", *p.Active)
	}
	return columns, values
}

func (p CustomerPatch) IsEmpty() bool {
	columns, _ := p.Columns()
	return len(columns) == 0
}
