package movimiento

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jarot-Fierro/kardex-api/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const movCols = `id, ficha_id, establecimiento_id,
	servicio_clinico_envio_id, servicio_clinico_recepcion_id, servicio_clinico_traspaso_id,
	profesional_envio_id, profesional_recepcion_id, profesional_traspaso_id,
	usuario_envio, usuario_recepcion, usuario_traspaso,
	estado_envio, estado_recepcion, estado_traspaso,
	fecha_envio, fecha_recepcion, fecha_traspaso,
	observacion_envio, observacion_recepcion, observacion_traspaso,
	rut_anterior, rut_anterior_profesional, usuario_envio_anterior, usuario_recepcion_anterior,
	created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, m *Movimiento) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO movimiento_ficha (
			id, ficha_id, establecimiento_id,
			servicio_clinico_envio_id, servicio_clinico_recepcion_id, servicio_clinico_traspaso_id,
			profesional_envio_id, profesional_recepcion_id, profesional_traspaso_id,
			usuario_envio, usuario_recepcion, usuario_traspaso,
			estado_envio, estado_recepcion, estado_traspaso,
			fecha_envio, fecha_recepcion, fecha_traspaso,
			observacion_envio, observacion_recepcion, observacion_traspaso,
			rut_anterior, rut_anterior_profesional, usuario_envio_anterior, usuario_recepcion_anterior
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,
			$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
			$21,$22,$23,$24,$25
		)`,
		m.ID, m.FichaID, m.EstablecimientoID,
		m.ServicioEnvioID, m.ServicioRecepcionID, m.ServicioTraspasoID,
		m.ProfesionalEnvioID, m.ProfesionalRecepID, m.ProfesionalTraspID,
		m.UsuarioEnvio, m.UsuarioRecepcion, m.UsuarioTraspaso,
		m.EstadoEnvio, m.EstadoRecepcion, m.EstadoTraspaso,
		m.FechaEnvio, m.FechaRecepcion, m.FechaTraspaso,
		m.ObservacionEnvio, m.ObservacionRecep, m.ObservacionTrasp,
		m.RutAnterior, m.RutAnteriorProfesional, m.UsuarioEnvioAnterior, m.UsuarioRecepcionAnterior,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Movimiento, error) {
	return scanMov(r.conn(ctx).QueryRow(ctx, `SELECT `+movCols+` FROM movimiento_ficha WHERE id = $1`, id))
}

func (r *repoPG) FindOpenByFicha(ctx context.Context, fichaID uuid.UUID) (*Movimiento, error) {
	m, err := scanMov(r.conn(ctx).QueryRow(ctx, `
		SELECT `+movCols+` FROM movimiento_ficha
		WHERE ficha_id = $1 AND estado_recepcion = $2
		ORDER BY fecha_envio DESC NULLS LAST
		LIMIT 1
		FOR UPDATE`,
		fichaID, EstadoEnEspera))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *repoPG) FindLatestSent(ctx context.Context, fichaID uuid.UUID) (*Movimiento, error) {
	m, err := scanMov(r.conn(ctx).QueryRow(ctx, `
		SELECT `+movCols+` FROM movimiento_ficha
		WHERE ficha_id = $1 AND fecha_envio IS NOT NULL
		ORDER BY updated_at DESC
		LIMIT 1
		FOR UPDATE`,
		fichaID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

func (r *repoPG) Update(ctx context.Context, m *Movimiento) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE movimiento_ficha SET
			servicio_clinico_traspaso_id=$2,
			profesional_recepcion_id=$3, profesional_traspaso_id=$4,
			usuario_recepcion=$5, usuario_traspaso=$6,
			estado_envio=$7, estado_recepcion=$8, estado_traspaso=$9,
			fecha_recepcion=$10, fecha_traspaso=$11,
			observacion_recepcion=$12, observacion_traspaso=$13,
			updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.ServicioTraspasoID,
		m.ProfesionalRecepID, m.ProfesionalTraspID,
		m.UsuarioRecepcion, m.UsuarioTraspaso,
		m.EstadoEnvio, m.EstadoRecepcion, m.EstadoTraspaso,
		m.FechaRecepcion, m.FechaTraspaso,
		m.ObservacionRecep, m.ObservacionTrasp,
	)
	return err
}

func (r *repoPG) ListByFicha(ctx context.Context, fichaID uuid.UUID, limit, offset int) ([]*Movimiento, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM movimiento_ficha WHERE ficha_id = $1`, fichaID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+movCols+` FROM movimiento_ficha
		WHERE ficha_id = $1
		ORDER BY fecha_envio DESC NULLS LAST, created_at DESC
		LIMIT $2 OFFSET $3`,
		fichaID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectMovs(rows, total)
}

func (r *repoPG) ListByEstado(ctx context.Context, establecimientoID uuid.UUID, estadoRecepcion Estado, limit, offset int) ([]*Movimiento, int, error) {
	where := `establecimiento_id = $1`
	args := []interface{}{establecimientoID}
	if estadoRecepcion != "" {
		where += ` AND estado_recepcion = $2`
		args = append(args, estadoRecepcion)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM movimiento_ficha WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	n := len(args)
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+movCols+` FROM movimiento_ficha
		WHERE `+where+`
		ORDER BY fecha_envio DESC NULLS LAST, created_at DESC
		LIMIT $`+strconv.Itoa(n-1)+` OFFSET $`+strconv.Itoa(n), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectMovs(rows, total)
}

func (r *repoPG) ListEnTransito(ctx context.Context, establecimientoID uuid.UUID, limit, offset int) ([]*Movimiento, int, error) {
	const where = `establecimiento_id = $1 AND (
		(estado_envio = 'ENVIADO' AND estado_recepcion <> 'RECIBIDO')
		OR estado_traspaso IN ('TRASPASADO', 'TRASPASDO')
	)`

	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM movimiento_ficha WHERE `+where, establecimientoID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+movCols+` FROM movimiento_ficha
		WHERE `+where+`
		ORDER BY fecha_envio DESC NULLS LAST, created_at DESC
		LIMIT $2 OFFSET $3`,
		establecimientoID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return collectMovs(rows, total)
}

func scanMov(row pgx.Row) (*Movimiento, error) {
	var m Movimiento
	err := row.Scan(
		&m.ID, &m.FichaID, &m.EstablecimientoID,
		&m.ServicioEnvioID, &m.ServicioRecepcionID, &m.ServicioTraspasoID,
		&m.ProfesionalEnvioID, &m.ProfesionalRecepID, &m.ProfesionalTraspID,
		&m.UsuarioEnvio, &m.UsuarioRecepcion, &m.UsuarioTraspaso,
		&m.EstadoEnvio, &m.EstadoRecepcion, &m.EstadoTraspaso,
		&m.FechaEnvio, &m.FechaRecepcion, &m.FechaTraspaso,
		&m.ObservacionEnvio, &m.ObservacionRecep, &m.ObservacionTrasp,
		&m.RutAnterior, &m.RutAnteriorProfesional, &m.UsuarioEnvioAnterior, &m.UsuarioRecepcionAnterior,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.EstadoTraspaso = NormalizeEstadoTraspaso(m.EstadoTraspaso)
	return &m, nil
}

func collectMovs(rows pgx.Rows, total int) ([]*Movimiento, int, error) {
	var movs []*Movimiento
	for rows.Next() {
		var m Movimiento
		err := rows.Scan(
			&m.ID, &m.FichaID, &m.EstablecimientoID,
			&m.ServicioEnvioID, &m.ServicioRecepcionID, &m.ServicioTraspasoID,
			&m.ProfesionalEnvioID, &m.ProfesionalRecepID, &m.ProfesionalTraspID,
			&m.UsuarioEnvio, &m.UsuarioRecepcion, &m.UsuarioTraspaso,
			&m.EstadoEnvio, &m.EstadoRecepcion, &m.EstadoTraspaso,
			&m.FechaEnvio, &m.FechaRecepcion, &m.FechaTraspaso,
			&m.ObservacionEnvio, &m.ObservacionRecep, &m.ObservacionTrasp,
			&m.RutAnterior, &m.RutAnteriorProfesional, &m.UsuarioEnvioAnterior, &m.UsuarioRecepcionAnterior,
			&m.CreatedAt, &m.UpdatedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		m.EstadoTraspaso = NormalizeEstadoTraspaso(m.EstadoTraspaso)
		movs = append(movs, &m)
	}
	return movs, total, rows.Err()
}
