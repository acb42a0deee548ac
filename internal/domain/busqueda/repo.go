package busqueda

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the read model behind the lookup and history endpoints.
// It queries across charts, patients and movements; writes stay in their
// owning packages.
type Repository interface {
	// SearchFichas matches the normalized RUT or, when numero is non-nil,
	// the chart's system number, within the establishment.
	SearchFichas(ctx context.Context, establecimientoID uuid.UUID, rut string, numero *int64) ([]*fichaPaciente, error)
	// HasOpenMovimiento reports whether the chart has a movement still
	// waiting for reception in the establishment.
	HasOpenMovimiento(ctx context.Context, establecimientoID, fichaID uuid.UUID) (bool, error)
	// PendingRecepcion returns the chart's sent-and-waiting movement with
	// names resolved, or nil.
	PendingRecepcion(ctx context.Context, fichaID uuid.UUID) (*MovimientoResumen, error)
	// LatestParaTraspaso returns the chart's most recent sent movement not
	// yet transferred, or nil.
	LatestParaTraspaso(ctx context.Context, fichaID uuid.UUID) (*MovimientoResumen, error)
	// FindPaciente looks a patient up by normalized RUT, nil when absent.
	FindPaciente(ctx context.Context, rut string) (*PacienteRef, error)
	// GetEstablecimiento resolves the establishment reference.
	GetEstablecimiento(ctx context.Context, id uuid.UUID) (*Ref, error)
	// MovimientosPorPaciente lists the patient's movements in the
	// establishment, names resolved, newest send first.
	MovimientosPorPaciente(ctx context.Context, establecimientoID, pacienteID uuid.UUID) ([]*MovimientoDetalle, error)
}
