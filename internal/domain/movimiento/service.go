package movimiento

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jarot-Fierro/kardex-api/internal/platform/auth"
	"github.com/Jarot-Fierro/kardex-api/internal/platform/db"
)

var (
	ErrFichaEnTransito     = errors.New("la ficha ya tiene un envio pendiente de recepcion")
	ErrYaRecibida          = errors.New("el movimiento ya fue recepcionado")
	ErrSinMovimientoPrevio = errors.New("no existe un envio previo para esta ficha")
	ErrMismoServicio       = errors.New("el servicio de recepcion no puede ser igual al de envio")
	ErrNoEncontrado        = errors.New("movimiento no encontrado")
	ErrFichaNoEncontrada   = errors.New("ficha no encontrada")
)

// Historial records movement changes. Satisfied by audit.Store.
type Historial interface {
	Record(ctx context.Context, entidad string, entidadID uuid.UUID, accion, usuario string, detalle any) error
}

// Fichas resolves charts between their row id and the printed chart
// number the physical workflow runs on. Satisfied by ficha.Service.
type Fichas interface {
	IDPorNumero(ctx context.Context, establecimientoID uuid.UUID, numero int64) (uuid.UUID, error)
	NumeroPorID(ctx context.Context, fichaID uuid.UUID) (int64, error)
}

type Service struct {
	repo   Repository
	pool   *pgxpool.Pool
	hist   Historial
	fichas Fichas
}

func NewService(repo Repository, pool *pgxpool.Pool, hist Historial, fichas Fichas) *Service {
	return &Service{repo: repo, pool: pool, hist: hist, fichas: fichas}
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
	_ = s.hist.Record(ctx, "movimiento_ficha", id, accion, auth.UserIDFromContext(ctx), detalle)
}

// resolveFicha turns the request's chart reference into a row id. The
// printed chart number only resolves within the caller's establishment.
func (s *Service) resolveFicha(ctx context.Context, fichaID uuid.UUID, numero *int64, establecimientoID uuid.UUID) (uuid.UUID, error) {
	if fichaID != uuid.Nil {
		return fichaID, nil
	}
	if numero == nil || s.fichas == nil {
		return uuid.Nil, fmt.Errorf("ficha_id o numero_ficha es requerido")
	}
	id, err := s.fichas.IDPorNumero(ctx, establecimientoID, *numero)
	if err != nil {
		return uuid.Nil, ErrFichaNoEncontrada
	}
	return id, nil
}

// EnvioRequest is the payload to send a chart out of the archive. The
// chart may be addressed by row id or by its printed number.
type EnvioRequest struct {
	FichaID             uuid.UUID  `json:"ficha_id"`
	NumeroFicha         *int64     `json:"numero_ficha,omitempty"`
	EstablecimientoID   uuid.UUID  `json:"establecimiento_id"`
	ServicioEnvioID     uuid.UUID  `json:"servicio_clinico_envio_id"`
	ServicioRecepcionID uuid.UUID  `json:"servicio_clinico_recepcion_id"`
	ProfesionalEnvioID  *uuid.UUID `json:"profesional_envio_id,omitempty"`
	Observacion         *string    `json:"observacion,omitempty"`
}

// EnvioResponse confirms a send. The routing slip the archive prints
// carries the chart number, not the row id.
type EnvioResponse struct {
	MovimientoID uuid.UUID   `json:"movimiento_id"`
	NumeroFicha  int64       `json:"numero_ficha,omitempty"`
	FechaEnvio   *time.Time  `json:"fecha_envio"`
	Movimiento   *Movimiento `json:"movimiento"`
}

// Enviar opens a movement for the chart. A chart with a pending movement
// cannot be sent again until it is received.
func (s *Service) Enviar(ctx context.Context, req EnvioRequest) (*EnvioResponse, error) {
	fichaID, err := s.resolveFicha(ctx, req.FichaID, req.NumeroFicha, req.EstablecimientoID)
	if err != nil {
		return nil, err
	}
	if req.ServicioEnvioID == uuid.Nil || req.ServicioRecepcionID == uuid.Nil {
		return nil, fmt.Errorf("servicio de envio y recepcion son requeridos")
	}
	if req.ServicioEnvioID == req.ServicioRecepcionID {
		return nil, ErrMismoServicio
	}

	usuario := auth.UserIDFromContext(ctx)
	now := time.Now().UTC()
	m := &Movimiento{
		FichaID:                fichaID,
		EstablecimientoID:      req.EstablecimientoID,
		ServicioEnvioID:        req.ServicioEnvioID,
		ServicioRecepcionID:    req.ServicioRecepcionID,
		ProfesionalEnvioID:     req.ProfesionalEnvioID,
		EstadoEnvio:            EstadoEnviado,
		EstadoRecepcion:        EstadoEnEspera,
		EstadoTraspaso:         EstadoSinTraspaso,
		FechaEnvio:             &now,
		ObservacionEnvio:       req.Observacion,
		RutAnterior:            SinRUT,
		RutAnteriorProfesional: SinRUT,
	}
	if usuario != "" {
		m.UsuarioEnvio = &usuario
	}

	err = s.withTx(ctx, func(ctx context.Context) error {
		open, err := s.repo.FindOpenByFicha(ctx, fichaID)
		if err != nil {
			return err
		}
		if open != nil {
			return ErrFichaEnTransito
		}
		return s.repo.Create(ctx, m)
	})
	if err != nil {
		// A concurrent send can slip past the read; the partial unique
		// index turns it into a conflict here.
		if db.IsUniqueViolation(err, "uq_movimiento_abierto") {
			return nil, ErrFichaEnTransito
		}
		return nil, err
	}

	s.record(ctx, m.ID, "envio", map[string]any{"ficha_id": m.FichaID, "servicio_recepcion": m.ServicioRecepcionID})

	resp := &EnvioResponse{MovimientoID: m.ID, FechaEnvio: m.FechaEnvio, Movimiento: m}
	if req.NumeroFicha != nil {
		resp.NumeroFicha = *req.NumeroFicha
	} else if s.fichas != nil {
		if numero, err := s.fichas.NumeroPorID(ctx, fichaID); err == nil {
			resp.NumeroFicha = numero
		}
	}
	return resp, nil
}

// RecepcionRequest is the payload to mark a pending movement as received.
type RecepcionRequest struct {
	FichaID            uuid.UUID  `json:"ficha_id"`
	NumeroFicha        *int64     `json:"numero_ficha,omitempty"`
	EstablecimientoID  uuid.UUID  `json:"establecimiento_id"`
	ProfesionalRecepID *uuid.UUID `json:"profesional_recepcion_id,omitempty"`
	FechaRecepcion     *time.Time `json:"fecha_recepcion,omitempty"`
	Observacion        *string    `json:"observacion,omitempty"`
}

// ajeno reports whether the movement belongs to a different establishment
// than the caller's. Foreign charts must look like they do not exist.
func ajeno(m *Movimiento, establecimientoID uuid.UUID) bool {
	return establecimientoID != uuid.Nil && m.EstablecimientoID != establecimientoID
}

// Recibir closes the chart's pending movement. Receiving an already
// received movement is rejected, not made idempotent, so double scans
// surface to the operator.
func (s *Service) Recibir(ctx context.Context, req RecepcionRequest) (*Movimiento, error) {
	fichaID, err := s.resolveFicha(ctx, req.FichaID, req.NumeroFicha, req.EstablecimientoID)
	if err != nil {
		return nil, err
	}

	var m *Movimiento
	err = s.withTx(ctx, func(ctx context.Context) error {
		open, err := s.repo.FindOpenByFicha(ctx, fichaID)
		if err != nil {
			return err
		}
		if open != nil && ajeno(open, req.EstablecimientoID) {
			return ErrNoEncontrado
		}
		if open == nil {
			latest, err := s.repo.FindLatestSent(ctx, fichaID)
			if err != nil {
				return err
			}
			if latest != nil && !ajeno(latest, req.EstablecimientoID) && latest.EstadoRecepcion == EstadoRecibido {
				return ErrYaRecibida
			}
			return ErrNoEncontrado
		}

		now := time.Now().UTC()
		if req.FechaRecepcion != nil {
			now = *req.FechaRecepcion
		}
		open.EstadoRecepcion = EstadoRecibido
		open.FechaRecepcion = &now
		open.ProfesionalRecepID = req.ProfesionalRecepID
		open.ObservacionRecep = req.Observacion
		if usuario := auth.UserIDFromContext(ctx); usuario != "" {
			open.UsuarioRecepcion = &usuario
		}
		if err := s.repo.Update(ctx, open); err != nil {
			return err
		}
		m = open
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, m.ID, "recepcion", map[string]any{"ficha_id": m.FichaID})
	return m, nil
}

// TraspasoRequest is the payload to hand a received chart to another service.
type TraspasoRequest struct {
	FichaID            uuid.UUID  `json:"ficha_id"`
	NumeroFicha        *int64     `json:"numero_ficha,omitempty"`
	EstablecimientoID  uuid.UUID  `json:"establecimiento_id"`
	ServicioTraspasoID uuid.UUID  `json:"servicio_clinico_traspaso_id"`
	ProfesionalTraspID *uuid.UUID `json:"profesional_traspaso_id,omitempty"`
	FechaTraspaso      *time.Time `json:"fecha_traspaso,omitempty"`
	Observacion        *string    `json:"observacion,omitempty"`
}

// Traspasar records a transfer on the chart's latest sent movement.
// The movement row is reused; no new row is created.
func (s *Service) Traspasar(ctx context.Context, req TraspasoRequest) (*Movimiento, error) {
	fichaID, err := s.resolveFicha(ctx, req.FichaID, req.NumeroFicha, req.EstablecimientoID)
	if err != nil {
		return nil, err
	}
	if req.ServicioTraspasoID == uuid.Nil {
		return nil, fmt.Errorf("servicio_clinico_traspaso_id is required")
	}

	var m *Movimiento
	err = s.withTx(ctx, func(ctx context.Context) error {
		latest, err := s.repo.FindLatestSent(ctx, fichaID)
		if err != nil {
			return err
		}
		if latest == nil || ajeno(latest, req.EstablecimientoID) {
			return ErrSinMovimientoPrevio
		}

		fecha := time.Now().UTC()
		if req.FechaTraspaso != nil {
			fecha = *req.FechaTraspaso
		}
		latest.EstadoTraspaso = EstadoTraspasado
		latest.FechaTraspaso = &fecha
		latest.ServicioTraspasoID = &req.ServicioTraspasoID
		latest.ProfesionalTraspID = req.ProfesionalTraspID
		latest.ObservacionTrasp = req.Observacion
		if usuario := auth.UserIDFromContext(ctx); usuario != "" {
			latest.UsuarioTraspaso = &usuario
		}
		if err := s.repo.Update(ctx, latest); err != nil {
			return err
		}
		m = latest
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, m.ID, "traspaso", map[string]any{"ficha_id": m.FichaID, "servicio_traspaso": req.ServicioTraspasoID})
	return m, nil
}

func (s *Service) GetMovimiento(ctx context.Context, id uuid.UUID) (*Movimiento, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNoEncontrado
	}
	return m, nil
}

// FichaEnTransito reports whether the chart currently has an open movement.
func (s *Service) FichaEnTransito(ctx context.Context, fichaID uuid.UUID) (bool, error) {
	open, err := s.repo.FindOpenByFicha(ctx, fichaID)
	if err != nil {
		return false, err
	}
	return open != nil, nil
}

func (s *Service) ListByFicha(ctx context.Context, fichaID uuid.UUID, limit, offset int) ([]*Movimiento, int, error) {
	return s.repo.ListByFicha(ctx, fichaID, limit, offset)
}

// ListSalidas pages all movements of the establishment, newest sends first.
func (s *Service) ListSalidas(ctx context.Context, establecimientoID uuid.UUID, limit, offset int) ([]*Movimiento, int, error) {
	return s.repo.ListByEstado(ctx, establecimientoID, "", limit, offset)
}

// ListRecepcionesPendientes pages movements still waiting to be received.
func (s *Service) ListRecepcionesPendientes(ctx context.Context, establecimientoID uuid.UUID, limit, offset int) ([]*Movimiento, int, error) {
	return s.repo.ListByEstado(ctx, establecimientoID, EstadoEnEspera, limit, offset)
}

// ListEnTransito pages movements whose chart is out of the archive.
func (s *Service) ListEnTransito(ctx context.Context, establecimientoID uuid.UUID, limit, offset int) ([]*Movimiento, int, error) {
	return s.repo.ListEnTransito(ctx, establecimientoID, limit, offset)
}
