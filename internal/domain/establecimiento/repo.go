package establecimiento

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, e *Establecimiento) error
	GetByID(ctx context.Context, id uuid.UUID) (*Establecimiento, error)
	Update(ctx context.Context, e *Establecimiento) error
	List(ctx context.Context, limit, offset int) ([]*Establecimiento, int, error)

	CreateSector(ctx context.Context, s *Sector) error
	ListSectores(ctx context.Context, establecimientoID uuid.UUID) ([]*Sector, error)

	CreateServicio(ctx context.Context, sc *ServicioClinico) error
	GetServicio(ctx context.Context, id uuid.UUID) (*ServicioClinico, error)
	ListServicios(ctx context.Context, establecimientoID uuid.UUID) ([]*ServicioClinico, error)

	CreateProfesional(ctx context.Context, p *Profesional) error
	GetProfesional(ctx context.Context, id uuid.UUID) (*Profesional, error)
	ListProfesionales(ctx context.Context, establecimientoID uuid.UUID) ([]*Profesional, error)
}
