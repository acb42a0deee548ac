package ficha

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create inserts the chart with its number already set.
	Create(ctx context.Context, f *Ficha) error
	// NextNumero locks the establishment row and returns max+1. Must run
	// inside a transaction so the lock holds until the insert commits.
	NextNumero(ctx context.Context, establecimientoID uuid.UUID) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Ficha, error)
	// GetForUpdate reads the chart with a row lock. Must run inside a
	// transaction.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Ficha, error)
	GetByPaciente(ctx context.Context, pacienteID, establecimientoID uuid.UUID) (*Ficha, error)
	GetByNumero(ctx context.Context, establecimientoID uuid.UUID, numero int64) (*Ficha, error)
	// NumeroEnUso reports whether numero collides with another chart's
	// system or card number in the establishment, excluding excludeID.
	NumeroEnUso(ctx context.Context, establecimientoID uuid.UUID, numero int64, excludeID uuid.UUID) (*Ficha, error)
	Update(ctx context.Context, f *Ficha) error
	List(ctx context.Context, establecimientoID uuid.UUID, limit, offset int) ([]*Ficha, int, error)
	ListPasivadas(ctx context.Context, establecimientoID uuid.UUID, limit, offset int) ([]*Ficha, int, error)
}
