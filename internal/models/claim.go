package models

import (
	"time"

	"github.com/google/uuid"
)

type Claim struct {
	ID              uuid.UUID   `json:"-" db:"id"`
	ClaimID         int         `json:"id_siniestro" db:"id_siniestro"`
	PolicyNumber    string      `json:"nro_poliza" db:"nro_poliza"`
	Date            string      `json:"fecha" db:"fecha"`
	Type            string      `json:"tipo" db:"tipo"`
	EstimatedAmount float64     `json:"monto_estimado" db:"monto_estimado"`
	Description     string      `json:"descripcion" db:"descripcion"`
	Status          ClaimStatus `json:"estado" db:"estado"`
	CreatedAt       time.Time   `json:"-" db:"created_at"`
}

type CreateClaimRequest struct {
	ClaimID         int     `json:"id_siniestro"`
	PolicyNumber    string  `json:"nro_poliza"`
	Date            string  `json:"fecha"`
	Type            string  `json:"tipo"`
	EstimatedAmount float64 `json:"monto_estimado"`
	Description     string  `json:"descripcion"`
	Status          string  `json:"estado"`
}
