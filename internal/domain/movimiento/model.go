package movimiento

import (
	"time"

	"github.com/google/uuid"
)

// Estado is a movement phase state. The column values form a closed
// vocabulary; typing them keeps free strings out of the state machine.
type Estado string

// Estados of the three movement phases. A single row carries a chart
// through send, receive and optional transfer; the phases never spawn
// separate rows.
const (
	EstadoEnviado     Estado = "ENVIADO"
	EstadoNoEnviado   Estado = "NO ENVIADO"
	EstadoRecibido    Estado = "RECIBIDO"
	EstadoEnEspera    Estado = "EN ESPERA"
	EstadoTraspasado  Estado = "TRASPASADO"
	EstadoSinTraspaso Estado = "SIN TRASPASO"
)

// legacy rows carry the misspelled transfer state
const estadoTraspasadoLegacy Estado = "TRASPASDO"

// SinRUT marks an absent identifier in rows imported from the old system.
const SinRUT = "SIN RUT"

// NormalizeEstadoTraspaso maps the legacy spelling to the canonical one.
func NormalizeEstadoTraspaso(s Estado) Estado {
	if s == estadoTraspasadoLegacy {
		return EstadoTraspasado
	}
	return s
}

// Movimiento is one custody movement of a chart between clinical services.
type Movimiento struct {
	ID                  uuid.UUID  `json:"id" db:"id"`
	FichaID             uuid.UUID  `json:"ficha_id" db:"ficha_id"`
	EstablecimientoID   uuid.UUID  `json:"establecimiento_id" db:"establecimiento_id"`
	ServicioEnvioID     uuid.UUID  `json:"servicio_clinico_envio_id" db:"servicio_clinico_envio_id"`
	ServicioRecepcionID uuid.UUID  `json:"servicio_clinico_recepcion_id" db:"servicio_clinico_recepcion_id"`
	ServicioTraspasoID  *uuid.UUID `json:"servicio_clinico_traspaso_id,omitempty" db:"servicio_clinico_traspaso_id"`
	ProfesionalEnvioID  *uuid.UUID `json:"profesional_envio_id,omitempty" db:"profesional_envio_id"`
	ProfesionalRecepID  *uuid.UUID `json:"profesional_recepcion_id,omitempty" db:"profesional_recepcion_id"`
	ProfesionalTraspID  *uuid.UUID `json:"profesional_traspaso_id,omitempty" db:"profesional_traspaso_id"`
	UsuarioEnvio        *string    `json:"usuario_envio,omitempty" db:"usuario_envio"`
	UsuarioRecepcion    *string    `json:"usuario_recepcion,omitempty" db:"usuario_recepcion"`
	UsuarioTraspaso     *string    `json:"usuario_traspaso,omitempty" db:"usuario_traspaso"`
	EstadoEnvio         Estado     `json:"estado_envio" db:"estado_envio"`
	EstadoRecepcion     Estado     `json:"estado_recepcion" db:"estado_recepcion"`
	EstadoTraspaso      Estado     `json:"estado_traspaso" db:"estado_traspaso"`
	FechaEnvio          *time.Time `json:"fecha_envio,omitempty" db:"fecha_envio"`
	FechaRecepcion      *time.Time `json:"fecha_recepcion,omitempty" db:"fecha_recepcion"`
	FechaTraspaso       *time.Time `json:"fecha_traspaso,omitempty" db:"fecha_traspaso"`
	ObservacionEnvio    *string    `json:"observacion_envio,omitempty" db:"observacion_envio"`
	ObservacionRecep    *string    `json:"observacion_recepcion,omitempty" db:"observacion_recepcion"`
	ObservacionTrasp    *string    `json:"observacion_traspaso,omitempty" db:"observacion_traspaso"`

	// Pre-migration references carried over from the old system. The RUT
	// fields fall back to SIN RUT when the import had no identifier.
	RutAnterior              string  `json:"rut_anterior" db:"rut_anterior"`
	RutAnteriorProfesional   string  `json:"rut_anterior_profesional" db:"rut_anterior_profesional"`
	UsuarioEnvioAnterior     *string `json:"usuario_envio_anterior,omitempty" db:"usuario_envio_anterior"`
	UsuarioRecepcionAnterior *string `json:"usuario_recepcion_anterior,omitempty" db:"usuario_recepcion_anterior"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EnTransito reports whether the chart is out of the archive on this
// movement: sent but not yet received, or transferred onward.
func (m *Movimiento) EnTransito() bool {
	if m.EstadoEnvio == EstadoEnviado && m.EstadoRecepcion != EstadoRecibido {
		return true
	}
	return m.EstadoTraspaso == EstadoTraspasado
}
