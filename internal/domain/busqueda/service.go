package busqueda

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Jarot-Fierro/kardex-api/internal/domain/movimiento"
	"github.com/Jarot-Fierro/kardex-api/pkg/rut"
)

var (
	ErrSinEstablecimiento   = errors.New("usuario no tiene establecimiento asociado")
	ErrPacienteNoEncontrado = errors.New("paciente no encontrado")
	ErrEtapaInvalida        = errors.New("etapa de busqueda desconocida")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// parseQuery splits the raw query into a normalized RUT candidate and,
// when it reads as a number or a PAC-<n> label, a chart number candidate.
func parseQuery(q string) (rutNorm string, numero *int64) {
	rutNorm = rut.Normalize(q)

	clean := strings.NewReplacer(".", "", "-", "", " ", "").Replace(q)
	if upper := strings.ToUpper(strings.TrimSpace(q)); strings.HasPrefix(upper, "PAC-") {
		clean = upper[4:]
	}
	if n, err := strconv.ParseInt(clean, 10, 64); err == nil && n > 0 {
		numero = &n
	}
	return rutNorm, numero
}

// Search looks charts up by patient RUT or chart number within the
// establishment and decorates each hit for the requested workflow stage.
// An empty query yields an empty result, not an error.
func (s *Service) Search(ctx context.Context, q string, establecimientoID uuid.UUID, etapa string) ([]*Resultado, error) {
	if establecimientoID == uuid.Nil {
		return nil, ErrSinEstablecimiento
	}
	if etapa == "" {
		etapa = EtapaSalida
	}
	if etapa != EtapaSalida && etapa != EtapaRecepcion && etapa != EtapaTraspaso {
		return nil, ErrEtapaInvalida
	}

	q = strings.TrimSpace(q)
	if q == "" {
		return []*Resultado{}, nil
	}
	rutNorm, numero := parseQuery(q)

	hits, err := s.repo.SearchFichas(ctx, establecimientoID, rutNorm, numero)
	if err != nil {
		return nil, err
	}

	results := make([]*Resultado, 0, len(hits))
	for _, fp := range hits {
		res := &Resultado{
			PacienteID:         fp.PacienteID,
			FichaID:            fp.FichaID,
			RUT:                rut.Format(fp.RUT),
			NumeroFichaSistema: fp.NumeroFichaSistema,
			NombreCompleto:     fp.nombreCompleto(),
		}

		switch etapa {
		case EtapaSalida:
			enTransito, err := s.repo.HasOpenMovimiento(ctx, establecimientoID, fp.FichaID)
			if err != nil {
				return nil, err
			}
			res.EnTransito = enTransito
		case EtapaRecepcion:
			mov, err := s.repo.PendingRecepcion(ctx, fp.FichaID)
			if err != nil {
				return nil, err
			}
			res.Movimiento = mov
			res.EnTransito = mov != nil
		case EtapaTraspaso:
			mov, err := s.repo.LatestParaTraspaso(ctx, fp.FichaID)
			if err != nil {
				return nil, err
			}
			res.Movimiento = mov
			res.EnTransito = mov != nil && mov.EstadoRecepcion != movimiento.EstadoRecibido
		}
		results = append(results, res)
	}
	return results, nil
}

// HistorialPorRUT assembles the patient's movement history within the
// establishment.
func (s *Service) HistorialPorRUT(ctx context.Context, rawRUT string, establecimientoID uuid.UUID) (*HistorialPaciente, error) {
	if establecimientoID == uuid.Nil {
		return nil, ErrSinEstablecimiento
	}

	p, err := s.repo.FindPaciente(ctx, rut.Normalize(rawRUT))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPacienteNoEncontrado
	}

	est, err := s.repo.GetEstablecimiento(ctx, establecimientoID)
	if err != nil {
		return nil, err
	}
	movs, err := s.repo.MovimientosPorPaciente(ctx, establecimientoID, p.ID)
	if err != nil {
		return nil, err
	}
	if movs == nil {
		movs = []*MovimientoDetalle{}
	}

	p.RUT = rut.Format(p.RUT)
	return &HistorialPaciente{
		Establecimiento:  *est,
		Paciente:         *p,
		TotalMovimientos: len(movs),
		Movimientos:      movs,
	}, nil
}
