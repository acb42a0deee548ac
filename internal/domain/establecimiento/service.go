package establecimiento

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Jarot-Fierro/kardex-api/pkg/rut"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateEstablecimiento(ctx context.Context, e *Establecimiento) error {
	if e.Nombre == "" {
		return fmt.Errorf("nombre is required")
	}
	return s.repo.Create(ctx, e)
}

func (s *Service) GetEstablecimiento(ctx context.Context, id uuid.UUID) (*Establecimiento, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateEstablecimiento(ctx context.Context, e *Establecimiento) error {
	if e.Nombre == "" {
		return fmt.Errorf("nombre is required")
	}
	return s.repo.Update(ctx, e)
}

func (s *Service) ListEstablecimientos(ctx context.Context, limit, offset int) ([]*Establecimiento, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) CreateSector(ctx context.Context, sec *Sector) error {
	if sec.Nombre == "" {
		return fmt.Errorf("nombre is required")
	}
	if sec.EstablecimientoID == uuid.Nil {
		return fmt.Errorf("establecimiento_id is required")
	}
	return s.repo.CreateSector(ctx, sec)
}

func (s *Service) ListSectores(ctx context.Context, establecimientoID uuid.UUID) ([]*Sector, error) {
	return s.repo.ListSectores(ctx, establecimientoID)
}

func (s *Service) CreateServicio(ctx context.Context, sc *ServicioClinico) error {
	if sc.Nombre == "" {
		return fmt.Errorf("nombre is required")
	}
	if sc.EstablecimientoID == uuid.Nil {
		return fmt.Errorf("establecimiento_id is required")
	}
	return s.repo.CreateServicio(ctx, sc)
}

func (s *Service) GetServicio(ctx context.Context, id uuid.UUID) (*ServicioClinico, error) {
	return s.repo.GetServicio(ctx, id)
}

func (s *Service) ListServicios(ctx context.Context, establecimientoID uuid.UUID) ([]*ServicioClinico, error) {
	return s.repo.ListServicios(ctx, establecimientoID)
}

func (s *Service) CreateProfesional(ctx context.Context, p *Profesional) error {
	if p.Nombre == "" {
		return fmt.Errorf("nombre is required")
	}
	if !rut.Validate(p.RUT) {
		return fmt.Errorf("rut invalido: %s", p.RUT)
	}
	p.RUT = rut.Normalize(p.RUT)
	return s.repo.CreateProfesional(ctx, p)
}

func (s *Service) GetProfesional(ctx context.Context, id uuid.UUID) (*Profesional, error) {
	return s.repo.GetProfesional(ctx, id)
}

func (s *Service) ListProfesionales(ctx context.Context, establecimientoID uuid.UUID) ([]*Profesional, error) {
	return s.repo.ListProfesionales(ctx, establecimientoID)
}
