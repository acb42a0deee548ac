package ficha

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jarot-Fierro/kardex-api/internal/platform/auth"
	"github.com/Jarot-Fierro/kardex-api/internal/platform/db"
)

var (
	ErrNoEncontrada       = errors.New("ficha no encontrada")
	ErrSinEstablecimiento = errors.New("establecimiento requerido")
	ErrNumeroDuplicado    = errors.New("numero de ficha ya existe en este establecimiento")
	ErrNumeroInvalido     = errors.New("numero de ficha debe ser mayor a 0")
)

// Historial records chart changes. Satisfied by audit.Store.
type Historial interface {
	Record(ctx context.Context, entidad string, entidadID uuid.UUID, accion, usuario string, detalle any) error
}

type Service struct {
	repo Repository
	pool *pgxpool.Pool
	hist Historial
}

// NewService wires the chart service. pool may be nil in tests; operations
// then run without an explicit transaction. hist may be nil to skip history.
func NewService(repo Repository, pool *pgxpool.Pool, hist Historial) *Service {
	return &Service{repo: repo, pool: pool, hist: hist}
}

func (s *Service) withTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	return db.WithTx(ctx, s.pool, fn)
}

func (s *Service) record(ctx context.Context, id uuid.UUID, accion string, detalle any) {
	if s.hist == nil {
		return
	}
	_ = s.hist.Record(ctx, "ficha", id, accion, auth.UserIDFromContext(ctx), detalle)
}

// CreateOrGetFicha returns the patient's chart at the establishment,
// creating it with the next sequential number if it does not exist yet.
// A concurrent create of the same number is retried once; a concurrent
// create of the same patient chart resolves to the winner's row.
func (s *Service) CreateOrGetFicha(ctx context.Context, pacienteID, establecimientoID uuid.UUID) (*Ficha, error) {
	if establecimientoID == uuid.Nil {
		return nil, ErrSinEstablecimiento
	}
	if pacienteID == uuid.Nil {
		return nil, fmt.Errorf("paciente_id is required")
	}

	if existing, err := s.repo.GetByPaciente(ctx, pacienteID, establecimientoID); err == nil {
		return existing, nil
	}

	f, err := s.createNumbered(ctx, pacienteID, establecimientoID)
	if err == nil {
		s.record(ctx, f.ID, "crear", map[string]any{"numero_ficha_sistema": f.NumeroFichaSistema})
		return f, nil
	}

	if db.IsUniqueViolation(err, "uq_ficha_paciente_establecimiento") {
		return s.repo.GetByPaciente(ctx, pacienteID, establecimientoID)
	}
	if db.IsUniqueViolation(err, "uq_ficha_numero_sistema") {
		// One retry after losing the numbering race
		f, err = s.createNumbered(ctx, pacienteID, establecimientoID)
		if err != nil {
			return nil, err
		}
		s.record(ctx, f.ID, "crear", map[string]any{"numero_ficha_sistema": f.NumeroFichaSistema})
		return f, nil
	}
	return nil, err
}

func (s *Service) createNumbered(ctx context.Context, pacienteID, establecimientoID uuid.UUID) (*Ficha, error) {
	var f *Ficha
	err := s.withTx(ctx, func(ctx context.Context) error {
		numero, err := s.repo.NextNumero(ctx, establecimientoID)
		if err != nil {
			return err
		}
		f = &Ficha{
			PacienteID:         pacienteID,
			EstablecimientoID:  establecimientoID,
			NumeroFichaSistema: numero,
		}
		return s.repo.Create(ctx, f)
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) GetFicha(ctx context.Context, id uuid.UUID) (*Ficha, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNoEncontrada
	}
	return f, nil
}

func (s *Service) GetFichaByPaciente(ctx context.Context, pacienteID, establecimientoID uuid.UUID) (*Ficha, error) {
	f, err := s.repo.GetByPaciente(ctx, pacienteID, establecimientoID)
	if err != nil {
		return nil, ErrNoEncontrada
	}
	return f, nil
}

// TogglePasivado flips the chart's archived flag under a row lock and
// returns the new value.
func (s *Service) TogglePasivado(ctx context.Context, id uuid.UUID) (bool, error) {
	var pasivado bool
	err := s.withTx(ctx, func(ctx context.Context) error {
		f, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return ErrNoEncontrada
		}
		f.Pasivado = !f.Pasivado
		pasivado = f.Pasivado
		return s.repo.Update(ctx, f)
	})
	if err != nil {
		return false, err
	}
	s.record(ctx, id, "pasivado", map[string]any{"pasivado": pasivado})
	return pasivado, nil
}

// AsignarNumero hand-assigns a chart number. The previous system number is
// kept in NumeroFichaRespaldo, the new one becomes the system number and,
// when esTarjeta is set, the card number too. The number must not collide
// with any other chart's system or card number in the establishment.
func (s *Service) AsignarNumero(ctx context.Context, id uuid.UUID, numero int64, esTarjeta bool) (*Ficha, error) {
	if numero <= 0 {
		return nil, ErrNumeroInvalido
	}

	var updated *Ficha
	err := s.withTx(ctx, func(ctx context.Context) error {
		f, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return ErrNoEncontrada
		}

		conflicto, err := s.repo.NumeroEnUso(ctx, f.EstablecimientoID, numero, f.ID)
		if err != nil {
			return err
		}
		if conflicto != nil {
			return fmt.Errorf("%w: en uso por ficha #%d", ErrNumeroDuplicado, conflicto.NumeroFichaSistema)
		}

		respaldo := f.NumeroFichaSistema
		f.NumeroFichaRespaldo = &respaldo
		f.NumeroFichaSistema = numero
		if esTarjeta {
			n := numero
			f.NumeroFichaTarjeta = &n
		}
		if err := s.repo.Update(ctx, f); err != nil {
			return err
		}
		updated = f
		return nil
	})
	if err != nil {
		// Two racing assignments of the same number both pass NumeroEnUso;
		// the loser hits the unique index on commit.
		if db.IsUniqueViolation(err, "uq_ficha_numero_sistema") || db.IsUniqueViolation(err, "uq_ficha_numero_tarjeta") {
			return nil, ErrNumeroDuplicado
		}
		return nil, err
	}
	s.record(ctx, id, "asignar_numero", map[string]any{
		"numero_ficha_sistema":  updated.NumeroFichaSistema,
		"numero_ficha_respaldo": updated.NumeroFichaRespaldo,
		"es_tarjeta":            esTarjeta,
	})
	return updated, nil
}

func (s *Service) ListFichas(ctx context.Context, establecimientoID uuid.UUID, limit, offset int) ([]*Ficha, int, error) {
	if establecimientoID == uuid.Nil {
		return nil, 0, ErrSinEstablecimiento
	}
	return s.repo.List(ctx, establecimientoID, limit, offset)
}

// IDPorNumero resolves the chart id behind a printed chart number. Movement
// requests address charts this way when the operator works off the paper slip.
func (s *Service) IDPorNumero(ctx context.Context, establecimientoID uuid.UUID, numero int64) (uuid.UUID, error) {
	if establecimientoID == uuid.Nil {
		return uuid.Nil, ErrSinEstablecimiento
	}
	f, err := s.repo.GetByNumero(ctx, establecimientoID, numero)
	if err != nil {
		return uuid.Nil, ErrNoEncontrada
	}
	return f.ID, nil
}

// NumeroPorID returns the chart's system number.
func (s *Service) NumeroPorID(ctx context.Context, fichaID uuid.UUID) (int64, error) {
	f, err := s.repo.GetByID(ctx, fichaID)
	if err != nil {
		return 0, ErrNoEncontrada
	}
	return f.NumeroFichaSistema, nil
}

// ListPasivadas pages the establishment's archived charts.
func (s *Service) ListPasivadas(ctx context.Context, establecimientoID uuid.UUID, limit, offset int) ([]*Ficha, int, error) {
	if establecimientoID == uuid.Nil {
		return nil, 0, ErrSinEstablecimiento
	}
	return s.repo.ListPasivadas(ctx, establecimientoID, limit, offset)
}
