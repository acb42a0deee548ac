package paciente

import (
	"time"

	"github.com/google/uuid"
)

// Paciente is the patient demographic record charts hang off of. RUT is
// stored normalized (no dots or dashes, upper-case check digit).
type Paciente struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	RUT             string     `json:"rut" db:"rut"`
	Nombre          string     `json:"nombre" db:"nombre"`
	ApellidoPaterno *string    `json:"apellido_paterno,omitempty" db:"apellido_paterno"`
	ApellidoMaterno *string    `json:"apellido_materno,omitempty" db:"apellido_materno"`
	FechaNacimiento *time.Time `json:"fecha_nacimiento,omitempty" db:"fecha_nacimiento"`
	Sexo            *string    `json:"sexo,omitempty" db:"sexo"`
	Direccion       *string    `json:"direccion,omitempty" db:"direccion"`
	Telefono        *string    `json:"telefono,omitempty" db:"telefono"`
	Activo          bool       `json:"activo" db:"activo"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// NombreCompleto joins the name parts for display.
func (p *Paciente) NombreCompleto() string {
	s := p.Nombre
	if p.ApellidoPaterno != nil && *p.ApellidoPaterno != "" {
		s += " " + *p.ApellidoPaterno
	}
	if p.ApellidoMaterno != nil && *p.ApellidoMaterno != "" {
		s += " " + *p.ApellidoMaterno
	}
	return s
}
