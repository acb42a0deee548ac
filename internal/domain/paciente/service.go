package paciente

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Jarot-Fierro/kardex-api/pkg/rut"
)

var (
	ErrRUTInvalido  = errors.New("rut invalido")
	ErrNoEncontrado = errors.New("paciente no encontrado")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreatePaciente(ctx context.Context, p *Paciente) error {
	if p.Nombre == "" {
		return fmt.Errorf("nombre is required")
	}
	if !rut.Validate(p.RUT) {
		return fmt.Errorf("%w: %s", ErrRUTInvalido, p.RUT)
	}
	p.RUT = rut.Normalize(p.RUT)
	return s.repo.Create(ctx, p)
}

func (s *Service) GetPaciente(ctx context.Context, id uuid.UUID) (*Paciente, error) {
	return s.repo.GetByID(ctx, id)
}

// GetPacienteByRUT looks a patient up by any spelling of their RUT.
func (s *Service) GetPacienteByRUT(ctx context.Context, raw string) (*Paciente, error) {
	if !rut.Validate(raw) {
		return nil, fmt.Errorf("%w: %s", ErrRUTInvalido, raw)
	}
	p, err := s.repo.GetByRUT(ctx, rut.Normalize(raw))
	if err != nil {
		return nil, ErrNoEncontrado
	}
	return p, nil
}

func (s *Service) UpdatePaciente(ctx context.Context, p *Paciente) error {
	if p.RUT != "" {
		if !rut.Validate(p.RUT) {
			return fmt.Errorf("%w: %s", ErrRUTInvalido, p.RUT)
		}
		p.RUT = rut.Normalize(p.RUT)
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) ListPacientes(ctx context.Context, limit, offset int) ([]*Paciente, int, error) {
	return s.repo.List(ctx, limit, offset)
}
