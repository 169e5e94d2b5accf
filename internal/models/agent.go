package models

import "github.com/google/uuid"

type Agent struct {
	ID        uuid.UUID `json:"-" db:"id"`
	AgentID   int       `json:"id_agente" db:"id_agente"`
	FirstName string    `json:"nombre" db:"nombre"`
	LastName  string    `json:"apellido" db:"apellido"`
	License   string    `json:"matricula" db:"matricula"`
	Phone     string    `json:"telefono" db:"telefono"`
	Email     string    `json:"email" db:"email"`
	Zone      string    `json:"zona" db:"zona"`
	Active    bool      `json:"activo" db:"activo"`
}

func (a Agent) FullName() string {
	return joinName(a.FirstName, a.LastName)
}
