package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Policy struct {
	ID             uuid.UUID    `json:"-" db:"id"`
	PolicyNumber   string       `json:"nro_poliza" db:"nro_poliza"`
	CustomerID     int          `json:"id_cliente" db:"id_cliente"`
	AgentID        int          `json:"id_agente" db:"id_agente"`
	Type           string       `json:"tipo" db:"tipo"`
	StartDate      string       `json:"fecha_inicio" db:"fecha_inicio"`
	EndDate        string       `json:"fecha_fin" db:"fecha_fin"`
	MonthlyPremium float64      `json:"prima_mensual" db:"prima_mensual"`
	TotalCoverage  float64      `json:"cobertura_total" db:"cobertura_total"`
	Status         PolicyStatus `json:"estado" db:"estado"`
	CreatedAt      time.Time    `json:"-" db:"created_at"`
}

// IssuePolicyRequest is the Emitir Póliza input as received from callers.
type IssuePolicyRequest struct {
	PolicyNumber   string  `json:"nro_poliza"`
	CustomerID     int     `json:"id_cliente"`
	AgentID        int     `json:"id_agente"`
	Type           string  `json:"tipo"`
	StartDate      string  `json:"fecha_inicio"`
	EndDate        string  `json:"fecha_fin"`
	MonthlyPremium float64 `json:"prima_mensual"`
	TotalCoverage  float64 `json:"cobertura_total"`
	Status         string  `json:"estado"`
}

// NormalizedPolicyNumber applies the upper-casing every entry point uses for
// policy keys.
func NormalizedPolicyNumber(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
