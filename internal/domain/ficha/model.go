package ficha

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Ficha is the paper chart record for one patient at one establishment.
// NumeroFichaSistema is assigned sequentially per establishment and never
// reused; NumeroFichaRespaldo keeps the previous system number whenever a
// new one is assigned by hand.
type Ficha struct {
	ID                  uuid.UUID  `json:"id" db:"id"`
	PacienteID          uuid.UUID  `json:"paciente_id" db:"paciente_id"`
	EstablecimientoID   uuid.UUID  `json:"establecimiento_id" db:"establecimiento_id"`
	SectorID            *uuid.UUID `json:"sector_id,omitempty" db:"sector_id"`
	NumeroFichaSistema  int64      `json:"numero_ficha_sistema" db:"numero_ficha_sistema"`
	NumeroFichaTarjeta  *int64     `json:"numero_ficha_tarjeta,omitempty" db:"numero_ficha_tarjeta"`
	NumeroFichaRespaldo *int64     `json:"numero_ficha_respaldo,omitempty" db:"numero_ficha_respaldo"`
	Pasivado            bool       `json:"pasivado" db:"pasivado"`
	Observacion         *string    `json:"observacion,omitempty" db:"observacion"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// Etiqueta renders the chart number zero-padded for labels.
func (f *Ficha) Etiqueta() string {
	return fmt.Sprintf("Ficha #%04d", f.NumeroFichaSistema)
}
