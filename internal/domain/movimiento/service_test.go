package movimiento

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	movs map[uuid.UUID]*Movimiento
	seq  int
}

func newMockRepo() *mockRepo {
	return &mockRepo{movs: make(map[uuid.UUID]*Movimiento)}
}

func (m *mockRepo) Create(_ context.Context, mv *Movimiento) error {
	mv.ID = uuid.New()
	m.seq++
	mv.CreatedAt = time.Now().Add(time.Duration(m.seq) * time.Millisecond)
	mv.UpdatedAt = mv.CreatedAt
	m.movs[mv.ID] = mv
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Movimiento, error) {
	mv, ok := m.movs[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return mv, nil
}

func (m *mockRepo) FindOpenByFicha(_ context.Context, fichaID uuid.UUID) (*Movimiento, error) {
	var open *Movimiento
	for _, mv := range m.movs {
		if mv.FichaID != fichaID || mv.EstadoRecepcion != EstadoEnEspera {
			continue
		}
		if open == nil || mv.CreatedAt.After(open.CreatedAt) {
			open = mv
		}
	}
	return open, nil
}

func (m *mockRepo) FindLatestSent(_ context.Context, fichaID uuid.UUID) (*Movimiento, error) {
	var latest *Movimiento
	for _, mv := range m.movs {
		if mv.FichaID != fichaID || mv.FechaEnvio == nil {
			continue
		}
		if latest == nil || mv.UpdatedAt.After(latest.UpdatedAt) {
			latest = mv
		}
	}
	return latest, nil
}

func (m *mockRepo) Update(_ context.Context, mv *Movimiento) error {
	m.seq++
	mv.UpdatedAt = time.Now().Add(time.Duration(m.seq) * time.Millisecond)
	m.movs[mv.ID] = mv
	return nil
}

func (m *mockRepo) ListByFicha(_ context.Context, fichaID uuid.UUID, limit, offset int) ([]*Movimiento, int, error) {
	var result []*Movimiento
	for _, mv := range m.movs {
		if mv.FichaID == fichaID {
			result = append(result, mv)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, len(result), nil
}

func (m *mockRepo) ListByEstado(_ context.Context, establecimientoID uuid.UUID, estadoRecepcion Estado, limit, offset int) ([]*Movimiento, int, error) {
	var result []*Movimiento
	for _, mv := range m.movs {
		if mv.EstablecimientoID != establecimientoID {
			continue
		}
		if estadoRecepcion != "" && mv.EstadoRecepcion != estadoRecepcion {
			continue
		}
		result = append(result, mv)
	}
	return result, len(result), nil
}

func (m *mockRepo) ListEnTransito(_ context.Context, establecimientoID uuid.UUID, limit, offset int) ([]*Movimiento, int, error) {
	var result []*Movimiento
	for _, mv := range m.movs {
		if mv.EstablecimientoID == establecimientoID && mv.EnTransito() {
			result = append(result, mv)
		}
	}
	return result, len(result), nil
}

// -- Mock chart resolver --

type mockFichas struct {
	porNumero map[int64]uuid.UUID
	numeroDe  map[uuid.UUID]int64
}

func newMockFichas() *mockFichas {
	return &mockFichas{porNumero: make(map[int64]uuid.UUID), numeroDe: make(map[uuid.UUID]int64)}
}

func (m *mockFichas) add(numero int64, fichaID uuid.UUID) {
	m.porNumero[numero] = fichaID
	m.numeroDe[fichaID] = numero
}

func (m *mockFichas) IDPorNumero(_ context.Context, _ uuid.UUID, numero int64) (uuid.UUID, error) {
	id, ok := m.porNumero[numero]
	if !ok {
		return uuid.Nil, fmt.Errorf("not found")
	}
	return id, nil
}

func (m *mockFichas) NumeroPorID(_ context.Context, fichaID uuid.UUID) (int64, error) {
	n, ok := m.numeroDe[fichaID]
	if !ok {
		return 0, fmt.Errorf("not found")
	}
	return n, nil
}

// -- Tests --

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, nil, nil, nil), repo
}

func newTestServiceConFichas() (*Service, *mockRepo, *mockFichas) {
	repo := newMockRepo()
	fichas := newMockFichas()
	return NewService(repo, nil, nil, fichas), repo, fichas
}

func envioReq(fichaID uuid.UUID) EnvioRequest {
	return EnvioRequest{
		FichaID:             fichaID,
		EstablecimientoID:   uuid.New(),
		ServicioEnvioID:     uuid.New(),
		ServicioRecepcionID: uuid.New(),
	}
}

func TestEnviar(t *testing.T) {
	svc, _ := newTestService()

	resp, err := svc.Enviar(context.Background(), envioReq(uuid.New()))
	if err != nil {
		t.Fatalf("Enviar() error: %v", err)
	}
	m := resp.Movimiento
	if resp.MovimientoID != m.ID {
		t.Error("response movimiento_id must match the created row")
	}
	if m.EstadoEnvio != EstadoEnviado {
		t.Errorf("estado_envio = %q, want %q", m.EstadoEnvio, EstadoEnviado)
	}
	if m.EstadoRecepcion != EstadoEnEspera {
		t.Errorf("estado_recepcion = %q, want %q", m.EstadoRecepcion, EstadoEnEspera)
	}
	if m.EstadoTraspaso != EstadoSinTraspaso {
		t.Errorf("estado_traspaso = %q, want %q", m.EstadoTraspaso, EstadoSinTraspaso)
	}
	if m.FechaEnvio == nil {
		t.Error("expected fecha_envio to be set")
	}
	if m.RutAnterior != SinRUT || m.RutAnteriorProfesional != SinRUT {
		t.Errorf("pre-migration ruts = %q/%q, want %q", m.RutAnterior, m.RutAnteriorProfesional, SinRUT)
	}
	if !m.EnTransito() {
		t.Error("a freshly sent chart must be in transit")
	}
}

func TestEnviar_PorNumeroFicha(t *testing.T) {
	svc, _, fichas := newTestServiceConFichas()
	ficha := uuid.New()
	fichas.add(347, ficha)
	numero := int64(347)

	req := envioReq(uuid.Nil)
	req.NumeroFicha = &numero
	resp, err := svc.Enviar(context.Background(), req)
	if err != nil {
		t.Fatalf("Enviar() error: %v", err)
	}
	if resp.Movimiento.FichaID != ficha {
		t.Error("expected the chart to resolve through its printed number")
	}
	if resp.NumeroFicha != 347 {
		t.Errorf("numero_ficha = %d, want 347", resp.NumeroFicha)
	}
}

func TestEnviar_NumeroFichaDesconocido(t *testing.T) {
	svc, _, _ := newTestServiceConFichas()
	numero := int64(999)

	req := envioReq(uuid.Nil)
	req.NumeroFicha = &numero
	_, err := svc.Enviar(context.Background(), req)
	if !errors.Is(err, ErrFichaNoEncontrada) {
		t.Fatalf("expected ErrFichaNoEncontrada, got %v", err)
	}
}

func TestEnviar_BloqueaSegundoEnvio(t *testing.T) {
	svc, _ := newTestService()
	ficha := uuid.New()

	if _, err := svc.Enviar(context.Background(), envioReq(ficha)); err != nil {
		t.Fatalf("Enviar() error: %v", err)
	}
	_, err := svc.Enviar(context.Background(), envioReq(ficha))
	if !errors.Is(err, ErrFichaEnTransito) {
		t.Fatalf("expected ErrFichaEnTransito, got %v", err)
	}
}

func TestEnviar_MismoServicio(t *testing.T) {
	svc, _ := newTestService()
	req := envioReq(uuid.New())
	req.ServicioRecepcionID = req.ServicioEnvioID

	_, err := svc.Enviar(context.Background(), req)
	if !errors.Is(err, ErrMismoServicio) {
		t.Fatalf("expected ErrMismoServicio, got %v", err)
	}
}

func TestRecibir(t *testing.T) {
	svc, _ := newTestService()
	ficha := uuid.New()

	if _, err := svc.Enviar(context.Background(), envioReq(ficha)); err != nil {
		t.Fatalf("Enviar() error: %v", err)
	}
	m, err := svc.Recibir(context.Background(), RecepcionRequest{FichaID: ficha})
	if err != nil {
		t.Fatalf("Recibir() error: %v", err)
	}
	if m.EstadoRecepcion != EstadoRecibido {
		t.Errorf("estado_recepcion = %q, want %q", m.EstadoRecepcion, EstadoRecibido)
	}
	if m.FechaRecepcion == nil {
		t.Error("expected fecha_recepcion to be set")
	}
	if m.EnTransito() {
		t.Error("a received chart must not be in transit")
	}
}

func TestRecibir_DobleRecepcion(t *testing.T) {
	svc, _ := newTestService()
	ficha := uuid.New()

	if _, err := svc.Enviar(context.Background(), envioReq(ficha)); err != nil {
		t.Fatalf("Enviar() error: %v", err)
	}
	if _, err := svc.Recibir(context.Background(), RecepcionRequest{FichaID: ficha}); err != nil {
		t.Fatalf("Recibir() error: %v", err)
	}

	_, err := svc.Recibir(context.Background(), RecepcionRequest{FichaID: ficha})
	if !errors.Is(err, ErrYaRecibida) {
		t.Fatalf("expected ErrYaRecibida, got %v", err)
	}
}

func TestRecibir_FechaExplicita(t *testing.T) {
	svc, _ := newTestService()
	ficha := uuid.New()
	fecha := time.Date(2026, 5, 20, 9, 30, 0, 0, time.UTC)

	if _, err := svc.Enviar(context.Background(), envioReq(ficha)); err != nil {
		t.Fatalf("Enviar() error: %v", err)
	}
	m, err := svc.Recibir(context.Background(), RecepcionRequest{FichaID: ficha, FechaRecepcion: &fecha})
	if err != nil {
		t.Fatalf("Recibir() error: %v", err)
	}
	if m.FechaRecepcion == nil || !m.FechaRecepcion.Equal(fecha) {
		t.Errorf("fecha_recepcion = %v, want %v", m.FechaRecepcion, fecha)
	}
}

func TestRecibir_OtroEstablecimiento(t *testing.T) {
	svc, _ := newTestService()
	ficha := uuid.New()

	if _, err := svc.Enviar(context.Background(), envioReq(ficha)); err != nil {
		t.Fatalf("Enviar() error: %v", err)
	}

	// a pending movement in another establishment must look nonexistent
	_, err := svc.Recibir(context.Background(), RecepcionRequest{FichaID: ficha, EstablecimientoID: uuid.New()})
	if !errors.Is(err, ErrNoEncontrado) {
		t.Fatalf("expected ErrNoEncontrado, got %v", err)
	}
}

func TestRecibir_SinEnvio(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Recibir(context.Background(), RecepcionRequest{FichaID: uuid.New()})
	if !errors.Is(err, ErrNoEncontrado) {
		t.Fatalf("expected ErrNoEncontrado, got %v", err)
	}
}

func TestRecibir_LiberaParaNuevoEnvio(t *testing.T) {
	svc, _ := newTestService()
	ficha := uuid.New()

	if _, err := svc.Enviar(context.Background(), envioReq(ficha)); err != nil {
		t.Fatalf("Enviar() error: %v", err)
	}
	if _, err := svc.Recibir(context.Background(), RecepcionRequest{FichaID: ficha}); err != nil {
		t.Fatalf("Recibir() error: %v", err)
	}

	// once received, the chart can move again
	if _, err := svc.Enviar(context.Background(), envioReq(ficha)); err != nil {
		t.Fatalf("Enviar() after receive error: %v", err)
	}
}

func TestTraspasar(t *testing.T) {
	svc, _ := newTestService()
	ficha := uuid.New()
	destino := uuid.New()

	if _, err := svc.Enviar(context.Background(), envioReq(ficha)); err != nil {
		t.Fatalf("Enviar() error: %v", err)
	}
	if _, err := svc.Recibir(context.Background(), RecepcionRequest{FichaID: ficha}); err != nil {
		t.Fatalf("Recibir() error: %v", err)
	}

	m, err := svc.Traspasar(context.Background(), TraspasoRequest{FichaID: ficha, ServicioTraspasoID: destino})
	if err != nil {
		t.Fatalf("Traspasar() error: %v", err)
	}
	if m.EstadoTraspaso != EstadoTraspasado {
		t.Errorf("estado_traspaso = %q, want %q", m.EstadoTraspaso, EstadoTraspasado)
	}
	if m.ServicioTraspasoID == nil || *m.ServicioTraspasoID != destino {
		t.Error("expected servicio_clinico_traspaso_id to be set")
	}
	if m.FechaTraspaso == nil {
		t.Error("expected fecha_traspaso to be set")
	}
	if !m.EnTransito() {
		t.Error("a transferred chart must count as in transit")
	}
}

func TestTraspasar_ReutilizaMovimiento(t *testing.T) {
	svc, repo := newTestService()
	ficha := uuid.New()

	sent, err := svc.Enviar(context.Background(), envioReq(ficha))
	if err != nil {
		t.Fatalf("Enviar() error: %v", err)
	}
	m, err := svc.Traspasar(context.Background(), TraspasoRequest{FichaID: ficha, ServicioTraspasoID: uuid.New()})
	if err != nil {
		t.Fatalf("Traspasar() error: %v", err)
	}
	if m.ID != sent.MovimientoID {
		t.Error("transfer must reuse the sent movement row")
	}
	if len(repo.movs) != 1 {
		t.Errorf("movement count = %d, want 1", len(repo.movs))
	}
}

func TestTraspasar_OtroEstablecimiento(t *testing.T) {
	svc, _ := newTestService()
	ficha := uuid.New()

	if _, err := svc.Enviar(context.Background(), envioReq(ficha)); err != nil {
		t.Fatalf("Enviar() error: %v", err)
	}

	_, err := svc.Traspasar(context.Background(), TraspasoRequest{
		FichaID:            ficha,
		ServicioTraspasoID: uuid.New(),
		EstablecimientoID:  uuid.New(),
	})
	if !errors.Is(err, ErrSinMovimientoPrevio) {
		t.Fatalf("expected ErrSinMovimientoPrevio, got %v", err)
	}
}

func TestTraspasar_SinEnvioPrevio(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Traspasar(context.Background(), TraspasoRequest{FichaID: uuid.New(), ServicioTraspasoID: uuid.New()})
	if !errors.Is(err, ErrSinMovimientoPrevio) {
		t.Fatalf("expected ErrSinMovimientoPrevio, got %v", err)
	}
}

func TestTraspasar_FechaExplicita(t *testing.T) {
	svc, _ := newTestService()
	ficha := uuid.New()
	fecha := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	if _, err := svc.Enviar(context.Background(), envioReq(ficha)); err != nil {
		t.Fatalf("Enviar() error: %v", err)
	}
	m, err := svc.Traspasar(context.Background(), TraspasoRequest{
		FichaID:            ficha,
		ServicioTraspasoID: uuid.New(),
		FechaTraspaso:      &fecha,
	})
	if err != nil {
		t.Fatalf("Traspasar() error: %v", err)
	}
	if m.FechaTraspaso == nil || !m.FechaTraspaso.Equal(fecha) {
		t.Errorf("fecha_traspaso = %v, want %v", m.FechaTraspaso, fecha)
	}
}

func TestFichaEnTransito(t *testing.T) {
	svc, _ := newTestService()
	ficha := uuid.New()

	enTransito, err := svc.FichaEnTransito(context.Background(), ficha)
	if err != nil {
		t.Fatalf("FichaEnTransito() error: %v", err)
	}
	if enTransito {
		t.Error("chart without movements must be at rest")
	}

	if _, err := svc.Enviar(context.Background(), envioReq(ficha)); err != nil {
		t.Fatalf("Enviar() error: %v", err)
	}
	enTransito, err = svc.FichaEnTransito(context.Background(), ficha)
	if err != nil {
		t.Fatalf("FichaEnTransito() error: %v", err)
	}
	if !enTransito {
		t.Error("chart with a pending movement must be in transit")
	}
}

func TestNormalizeEstadoTraspaso(t *testing.T) {
	if got := NormalizeEstadoTraspaso("TRASPASDO"); got != EstadoTraspasado {
		t.Errorf("NormalizeEstadoTraspaso(legacy) = %q, want %q", got, EstadoTraspasado)
	}
	if got := NormalizeEstadoTraspaso(EstadoSinTraspaso); got != EstadoSinTraspaso {
		t.Errorf("NormalizeEstadoTraspaso() must pass through %q", EstadoSinTraspaso)
	}
}
