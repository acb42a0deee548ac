package busqueda

import (
	"time"

	"github.com/google/uuid"

	"github.com/Jarot-Fierro/kardex-api/internal/domain/movimiento"
)

// Etapas of the lookup. Each workflow screen needs a different slice of
// movement state attached to the hit.
const (
	EtapaSalida    = "salida"
	EtapaRecepcion = "recepcion"
	EtapaTraspaso  = "traspaso"
)

// Resultado is one lookup hit, shaped for the workflow screens.
type Resultado struct {
	PacienteID         uuid.UUID          `json:"paciente_id"`
	FichaID            uuid.UUID          `json:"ficha_id"`
	RUT                string             `json:"rut"`
	NumeroFichaSistema int64              `json:"numero_ficha_sistema"`
	NombreCompleto     string             `json:"nombre_completo"`
	EnTransito         bool               `json:"en_transito"`
	Movimiento         *MovimientoResumen `json:"movimiento,omitempty"`
}

// MovimientoResumen is the movement slice attached to reception and
// transfer lookups, with service and professional names resolved.
type MovimientoResumen struct {
	ID                uuid.UUID         `json:"id"`
	ServicioEnvio     *string           `json:"servicio_envio,omitempty"`
	ServicioRecepcion *string           `json:"servicio_recepcion,omitempty"`
	ProfesionalEnvio  *string           `json:"profesional_envio,omitempty"`
	EstadoRecepcion   movimiento.Estado `json:"estado_recepcion"`
	EstadoTraspaso    movimiento.Estado `json:"estado_traspaso"`
	FechaEnvio        *time.Time        `json:"fecha_envio,omitempty"`
}

// fichaPaciente is the joined ficha+paciente row the search query yields.
type fichaPaciente struct {
	FichaID            uuid.UUID
	NumeroFichaSistema int64
	PacienteID         uuid.UUID
	RUT                string
	Nombre             string
	ApellidoPaterno    *string
	ApellidoMaterno    *string
}

func (fp *fichaPaciente) nombreCompleto() string {
	s := fp.Nombre
	if fp.ApellidoPaterno != nil && *fp.ApellidoPaterno != "" {
		s += " " + *fp.ApellidoPaterno
	}
	if fp.ApellidoMaterno != nil && *fp.ApellidoMaterno != "" {
		s += " " + *fp.ApellidoMaterno
	}
	return s
}

// MovimientoDetalle is one fully resolved movement row for the per-patient
// history endpoint.
type MovimientoDetalle struct {
	FichaID              uuid.UUID         `json:"ficha_id"`
	NumeroFichaSistema   int64             `json:"numero_ficha_sistema"`
	FechaEnvio           *time.Time        `json:"fecha_envio"`
	FechaRecepcion       *time.Time        `json:"fecha_recepcion"`
	FechaTraspaso        *time.Time        `json:"fecha_traspaso"`
	EstadoEnvio          movimiento.Estado `json:"estado_envio"`
	EstadoRecepcion      movimiento.Estado `json:"estado_recepcion"`
	EstadoTraspaso       movimiento.Estado `json:"estado_traspaso"`
	ServicioEnvio        *string           `json:"servicio_envio"`
	ServicioRecepcion    *string           `json:"servicio_recepcion"`
	ServicioTraspaso     *string           `json:"servicio_traspaso"`
	UsuarioEnvio         *string           `json:"usuario_envio"`
	UsuarioRecepcion     *string           `json:"usuario_recepcion"`
	UsuarioTraspaso      *string           `json:"usuario_traspaso"`
	ProfesionalEnvio     *string           `json:"profesional_envio"`
	ProfesionalRecepcion *string           `json:"profesional_recepcion"`
	ProfesionalTraspaso  *string           `json:"profesional_traspaso"`
	ObservacionEnvio     *string           `json:"observacion_envio"`
	ObservacionRecepcion *string           `json:"observacion_recepcion"`
	ObservacionTraspaso  *string           `json:"observacion_traspaso"`
}

// HistorialPaciente is the per-patient movement history, scoped to one
// establishment.
type HistorialPaciente struct {
	Establecimiento  Ref                  `json:"establecimiento"`
	Paciente         PacienteRef          `json:"paciente"`
	TotalMovimientos int                  `json:"total_movimientos"`
	Movimientos      []*MovimientoDetalle `json:"movimientos"`
}

type Ref struct {
	ID     uuid.UUID `json:"id"`
	Nombre string    `json:"nombre"`
}

type PacienteRef struct {
	ID              uuid.UUID `json:"id"`
	RUT             string    `json:"rut"`
	Nombre          string    `json:"nombre"`
	ApellidoPaterno *string   `json:"apellido_paterno"`
	ApellidoMaterno *string   `json:"apellido_materno"`
}
