package paciente

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Paciente) error
	GetByID(ctx context.Context, id uuid.UUID) (*Paciente, error)
	GetByRUT(ctx context.Context, rut string) (*Paciente, error)
	Update(ctx context.Context, p *Paciente) error
	List(ctx context.Context, limit, offset int) ([]*Paciente, int, error)
}
