package establecimiento

import (
	"time"

	"github.com/google/uuid"
)

// Establecimiento is a healthcare facility. Chart numbering and custody
// movements are always scoped to one establishment.
type Establecimiento struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Nombre    string    `json:"nombre" db:"nombre"`
	Codigo    *string   `json:"codigo,omitempty" db:"codigo"`
	Direccion *string   `json:"direccion,omitempty" db:"direccion"`
	Activo    bool      `json:"activo" db:"activo"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Sector is a physical archive area inside an establishment.
type Sector struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Nombre            string    `json:"nombre" db:"nombre"`
	EstablecimientoID uuid.UUID `json:"establecimiento_id" db:"establecimiento_id"`
	Activo            bool      `json:"activo" db:"activo"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// ServicioClinico is a clinical service charts move between.
type ServicioClinico struct {
	ID                uuid.UUID `json:"id" db:"id"`
	Nombre            string    `json:"nombre" db:"nombre"`
	EstablecimientoID uuid.UUID `json:"establecimiento_id" db:"establecimiento_id"`
	Activo            bool      `json:"activo" db:"activo"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// Profesional is a staff member who sends or receives charts.
type Profesional struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	RUT               string     `json:"rut" db:"rut"`
	Nombre            string     `json:"nombre" db:"nombre"`
	Apellido          *string    `json:"apellido,omitempty" db:"apellido"`
	Correo            *string    `json:"correo,omitempty" db:"correo"`
	EstablecimientoID *uuid.UUID `json:"establecimiento_id,omitempty" db:"establecimiento_id"`
	Activo            bool       `json:"activo" db:"activo"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}
