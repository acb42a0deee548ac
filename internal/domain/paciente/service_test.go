package paciente

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	pacientes map[uuid.UUID]*Paciente
}

func newMockRepo() *mockRepo {
	return &mockRepo{pacientes: make(map[uuid.UUID]*Paciente)}
}

func (m *mockRepo) Create(_ context.Context, p *Paciente) error {
	p.ID = uuid.New()
	p.Activo = true
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.pacientes[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Paciente, error) {
	p, ok := m.pacientes[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockRepo) GetByRUT(_ context.Context, rut string) (*Paciente, error) {
	for _, p := range m.pacientes {
		if p.RUT == rut {
			return p, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockRepo) Update(_ context.Context, p *Paciente) error {
	m.pacientes[p.ID] = p
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Paciente, int, error) {
	var result []*Paciente
	for _, p := range m.pacientes {
		result = append(result, p)
	}
	return result, len(result), nil
}

// -- Tests --

func newTestService() *Service {
	return NewService(newMockRepo())
}

func TestCreatePaciente(t *testing.T) {
	svc := newTestService()

	p := &Paciente{RUT: "7.654.321-6", Nombre: "Maria"}
	if err := svc.CreatePaciente(context.Background(), p); err != nil {
		t.Fatalf("CreatePaciente() error: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected ID to be assigned")
	}
	if p.RUT != "76543216" {
		t.Errorf("expected normalized RUT 76543216, got %q", p.RUT)
	}
}

func TestCreatePaciente_InvalidRUT(t *testing.T) {
	svc := newTestService()

	err := svc.CreatePaciente(context.Background(), &Paciente{RUT: "7.654.321-0", Nombre: "Maria"})
	if !errors.Is(err, ErrRUTInvalido) {
		t.Fatalf("expected ErrRUTInvalido, got %v", err)
	}
}

func TestCreatePaciente_MissingNombre(t *testing.T) {
	svc := newTestService()

	if err := svc.CreatePaciente(context.Background(), &Paciente{RUT: "7.654.321-6"}); err == nil {
		t.Fatal("expected error for missing nombre")
	}
}

func TestGetPacienteByRUT_AnySpelling(t *testing.T) {
	svc := newTestService()

	p := &Paciente{RUT: "7654321-6", Nombre: "Maria"}
	if err := svc.CreatePaciente(context.Background(), p); err != nil {
		t.Fatalf("CreatePaciente() error: %v", err)
	}

	for _, spelling := range []string{"7.654.321-6", "7654321-6", "76543216", "07.654.321-6"} {
		got, err := svc.GetPacienteByRUT(context.Background(), spelling)
		if err != nil {
			t.Fatalf("GetPacienteByRUT(%q) error: %v", spelling, err)
		}
		if got.ID != p.ID {
			t.Errorf("GetPacienteByRUT(%q) returned wrong patient", spelling)
		}
	}
}

func TestGetPacienteByRUT_NotFound(t *testing.T) {
	svc := newTestService()

	_, err := svc.GetPacienteByRUT(context.Background(), "12.345.678-5")
	if !errors.Is(err, ErrNoEncontrado) {
		t.Fatalf("expected ErrNoEncontrado, got %v", err)
	}
}

func TestNombreCompleto(t *testing.T) {
	ap, am := "Gonzalez", "Rojas"
	p := &Paciente{Nombre: "Maria", ApellidoPaterno: &ap, ApellidoMaterno: &am}
	if got := p.NombreCompleto(); got != "Maria Gonzalez Rojas" {
		t.Errorf("NombreCompleto() = %q", got)
	}

	p2 := &Paciente{Nombre: "Maria"}
	if got := p2.NombreCompleto(); got != "Maria" {
		t.Errorf("NombreCompleto() = %q", got)
	}
}
