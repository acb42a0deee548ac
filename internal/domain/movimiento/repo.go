package movimiento

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Movimiento) error
	GetByID(ctx context.Context, id uuid.UUID) (*Movimiento, error)
	// FindOpenByFicha returns the chart's pending movement (EN ESPERA),
	// newest send first, or nil when the chart is at rest.
	FindOpenByFicha(ctx context.Context, fichaID uuid.UUID) (*Movimiento, error)
	// FindLatestSent returns the most recently touched movement that has a
	// send date, or nil. Transfers resolve their target through it.
	FindLatestSent(ctx context.Context, fichaID uuid.UUID) (*Movimiento, error)
	Update(ctx context.Context, m *Movimiento) error
	ListByFicha(ctx context.Context, fichaID uuid.UUID, limit, offset int) ([]*Movimiento, int, error)
	// ListByEstado pages movements in the establishment filtered by
	// reception state; estadoRecepcion empty means all.
	ListByEstado(ctx context.Context, establecimientoID uuid.UUID, estadoRecepcion Estado, limit, offset int) ([]*Movimiento, int, error)
	// ListEnTransito pages movements whose chart is out of the archive.
	ListEnTransito(ctx context.Context, establecimientoID uuid.UUID, limit, offset int) ([]*Movimiento, int, error)
}
