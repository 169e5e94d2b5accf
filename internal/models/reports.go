package models

// Report rows never carry storage-internal identifiers.

type ActiveCustomerPolicies struct {
	FullName       string   `json:"nombre_completo" db:"nombre_completo"`
	ActivePolicies []string `json:"polizas_vigentes" db:"-"`
}

type OpenClaimWithCustomer struct {
	ClaimID         int     `json:"id_siniestro" db:"id_siniestro"`
	PolicyNumber    string  `json:"nro_poliza" db:"nro_poliza"`
	Date            string  `json:"fecha" db:"fecha"`
	Type            string  `json:"tipo" db:"tipo"`
	EstimatedAmount float64 `json:"monto_estimado" db:"monto_estimado"`
	Description     string  `json:"descripcion" db:"descripcion"`
	CustomerID      int     `json:"id_cliente" db:"id_cliente"`
	CustomerName    string  `json:"cliente" db:"cliente"`
}

type InsuredVehicleWithPolicy struct {
	CustomerID   int      `json:"id_cliente" db:"id_cliente"`
	CustomerName string   `json:"cliente" db:"cliente"`
	Plate        string   `json:"patente" db:"patente"`
	Make         string   `json:"marca" db:"marca"`
	Model        string   `json:"modelo" db:"modelo"`
	Year         int      `json:"anio" db:"anio"`
	Policies     []string `json:"polizas" db:"-"`
}

type CustomerWithoutActivePolicy struct {
	CustomerID int    `json:"id_cliente" db:"id_cliente"`
	FullName   string `json:"nombre_completo" db:"nombre_completo"`
	Email      string `json:"email" db:"email"`
	Active     bool   `json:"activo" db:"activo"`
}

type AgentPolicyCount struct {
	AgentID     int    `json:"id_agente"`
	FullName    string `json:"nombre_completo"`
	License     string `json:"matricula"`
	PolicyCount int64  `json:"cantidad_polizas"`
}

type ExpiredPolicyWithCustomer struct {
	PolicyNumber string `json:"nro_poliza" db:"nro_poliza"`
	Type         string `json:"tipo" db:"tipo"`
	StartDate    string `json:"fecha_inicio" db:"fecha_inicio"`
	EndDate      string `json:"fecha_fin" db:"fecha_fin"`
	CustomerID   int    `json:"id_cliente" db:"id_cliente"`
	CustomerName string `json:"cliente" db:"cliente"`
}

// NameNotFound marks a derived-index key that no longer resolves in the
// primary store.
const NameNotFound = "Nombre no encontrado"

type CustomerCoverageRank struct {
	Position      int     `json:"posicion"`
	CustomerKey   string  `json:"id_cliente"`
	FullName      string  `json:"nombre_completo"`
	TotalCoverage float64 `json:"cobertura_total"`
	Found         bool    `json:"encontrado"`
}

type AccidentClaim struct {
	ClaimID         int     `json:"id_siniestro"`
	PolicyNumber    string  `json:"nro_poliza"`
	Date            string  `json:"fecha"`
	Type            string  `json:"tipo"`
	EstimatedAmount float64 `json:"monto_estimado"`
	Description     string  `json:"descripcion"`
	Status          string  `json:"estado"`
}

type ActivePolicyByStart struct {
	PolicyNumber   string  `json:"nro_poliza"`
	StartTimestamp int64   `json:"timestamp_inicio"`
	StartDate      string  `json:"fecha_inicio"`
	CustomerID     int     `json:"id_cliente,omitempty"`
	Type           string  `json:"tipo,omitempty"`
	Status         string  `json:"estado,omitempty"`
	TotalCoverage  float64 `json:"cobertura_total,omitempty"`
	Found          bool    `json:"encontrado"`
}

type SuspendedPolicyCustomerStatus struct {
	PolicyNumber   string `json:"nro_poliza" db:"nro_poliza"`
	Type           string `json:"tipo" db:"tipo"`
	CustomerID     int    `json:"id_cliente" db:"id_cliente"`
	CustomerName   string `json:"cliente" db:"cliente"`
	CustomerActive bool   `json:"cliente_activo" db:"cliente_activo"`
}

type CustomerInsuredVehicles struct {
	CustomerID      int      `json:"id_cliente" db:"id_cliente"`
	FullName        string   `json:"nombre_completo" db:"nombre_completo"`
	InsuredVehicles int      `json:"vehiculos_asegurados" db:"vehiculos_asegurados"`
	Plates          []string `json:"patentes" db:"-"`
}

type AgentClaimCount struct {
	AgentID    int    `json:"id_agente" db:"id_agente"`
	FullName   string `json:"nombre_completo" db:"nombre_completo"`
	ClaimCount int    `json:"cantidad_siniestros" db:"cantidad_siniestros"`
}

// ScoredMember is one entry of a derived sorted set.
type ScoredMember struct {
	Member string
	Score  float64
}
