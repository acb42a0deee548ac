package busqueda

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jarot-Fierro/kardex-api/internal/domain/movimiento"
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

const searchCols = `f.id, f.numero_ficha_sistema, p.id, p.rut, p.nombre, p.apellido_paterno, p.apellido_materno`

func (r *repoPG) SearchFichas(ctx context.Context, establecimientoID uuid.UUID, rut string, numero *int64) ([]*fichaPaciente, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if numero != nil {
		rows, err = r.conn(ctx).Query(ctx, `
			SELECT `+searchCols+`
			FROM ficha f JOIN paciente p ON p.id = f.paciente_id
			WHERE f.establecimiento_id = $1
			  AND (p.rut = $2 OR f.numero_ficha_sistema = $3)
			ORDER BY f.numero_ficha_sistema`,
			establecimientoID, rut, *numero)
	} else {
		rows, err = r.conn(ctx).Query(ctx, `
			SELECT `+searchCols+`
			FROM ficha f JOIN paciente p ON p.id = f.paciente_id
			WHERE f.establecimiento_id = $1 AND p.rut = $2
			ORDER BY f.numero_ficha_sistema`,
			establecimientoID, rut)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hits []*fichaPaciente
	for rows.Next() {
		var fp fichaPaciente
		if err := rows.Scan(
			&fp.FichaID, &fp.NumeroFichaSistema, &fp.PacienteID,
			&fp.RUT, &fp.Nombre, &fp.ApellidoPaterno, &fp.ApellidoMaterno,
		); err != nil {
			return nil, err
		}
		hits = append(hits, &fp)
	}
	return hits, rows.Err()
}

func (r *repoPG) HasOpenMovimiento(ctx context.Context, establecimientoID, fichaID uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM movimiento_ficha
			WHERE ficha_id = $1 AND establecimiento_id = $2 AND estado_recepcion = 'EN ESPERA'
		)`, fichaID, establecimientoID).Scan(&exists)
	return exists, err
}

const resumenCols = `m.id, se.nombre, sr.nombre, pe.nombre, m.estado_recepcion, m.estado_traspaso, m.fecha_envio`

const resumenJoins = `
	FROM movimiento_ficha m
	LEFT JOIN servicio_clinico se ON se.id = m.servicio_clinico_envio_id
	LEFT JOIN servicio_clinico sr ON sr.id = m.servicio_clinico_recepcion_id
	LEFT JOIN profesional pe ON pe.id = m.profesional_envio_id`

func (r *repoPG) PendingRecepcion(ctx context.Context, fichaID uuid.UUID) (*MovimientoResumen, error) {
	res, err := scanResumen(r.conn(ctx).QueryRow(ctx, `
		SELECT `+resumenCols+resumenJoins+`
		WHERE m.ficha_id = $1 AND m.estado_envio = 'ENVIADO' AND m.estado_recepcion = 'EN ESPERA'
		ORDER BY m.fecha_envio DESC NULLS LAST
		LIMIT 1`, fichaID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return res, err
}

func (r *repoPG) LatestParaTraspaso(ctx context.Context, fichaID uuid.UUID) (*MovimientoResumen, error) {
	res, err := scanResumen(r.conn(ctx).QueryRow(ctx, `
		SELECT `+resumenCols+resumenJoins+`
		WHERE m.ficha_id = $1 AND m.fecha_envio IS NOT NULL
		  AND m.estado_traspaso NOT IN ('TRASPASADO', 'TRASPASDO')
		ORDER BY m.updated_at DESC
		LIMIT 1`, fichaID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return res, err
}

func scanResumen(row pgx.Row) (*MovimientoResumen, error) {
	var res MovimientoResumen
	err := row.Scan(
		&res.ID, &res.ServicioEnvio, &res.ServicioRecepcion, &res.ProfesionalEnvio,
		&res.EstadoRecepcion, &res.EstadoTraspaso, &res.FechaEnvio,
	)
	if err != nil {
		return nil, err
	}
	res.EstadoTraspaso = movimiento.NormalizeEstadoTraspaso(res.EstadoTraspaso)
	return &res, nil
}

func (r *repoPG) FindPaciente(ctx context.Context, rut string) (*PacienteRef, error) {
	var p PacienteRef
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, rut, nombre, apellido_paterno, apellido_materno
		FROM paciente WHERE rut = $1`, rut).
		Scan(&p.ID, &p.RUT, &p.Nombre, &p.ApellidoPaterno, &p.ApellidoMaterno)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) GetEstablecimiento(ctx context.Context, id uuid.UUID) (*Ref, error) {
	var ref Ref
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT id, nombre FROM establecimiento WHERE id = $1`, id).
		Scan(&ref.ID, &ref.Nombre)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *repoPG) MovimientosPorPaciente(ctx context.Context, establecimientoID, pacienteID uuid.UUID) ([]*MovimientoDetalle, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT m.ficha_id, f.numero_ficha_sistema,
		       m.fecha_envio, m.fecha_recepcion, m.fecha_traspaso,
		       m.estado_envio, m.estado_recepcion, m.estado_traspaso,
		       se.nombre, sr.nombre, st.nombre,
		       m.usuario_envio, m.usuario_recepcion, m.usuario_traspaso,
		       pe.nombre, pr.nombre, pt.nombre,
		       m.observacion_envio, m.observacion_recepcion, m.observacion_traspaso
		FROM movimiento_ficha m
		JOIN ficha f ON f.id = m.ficha_id
		LEFT JOIN servicio_clinico se ON se.id = m.servicio_clinico_envio_id
		LEFT JOIN servicio_clinico sr ON sr.id = m.servicio_clinico_recepcion_id
		LEFT JOIN servicio_clinico st ON st.id = m.servicio_clinico_traspaso_id
		LEFT JOIN profesional pe ON pe.id = m.profesional_envio_id
		LEFT JOIN profesional pr ON pr.id = m.profesional_recepcion_id
		LEFT JOIN profesional pt ON pt.id = m.profesional_traspaso_id
		WHERE f.paciente_id = $1 AND m.establecimiento_id = $2
		ORDER BY m.fecha_envio DESC NULLS LAST, m.created_at DESC`,
		pacienteID, establecimientoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movs []*MovimientoDetalle
	for rows.Next() {
		var d MovimientoDetalle
		if err := rows.Scan(
			&d.FichaID, &d.NumeroFichaSistema,
			&d.FechaEnvio, &d.FechaRecepcion, &d.FechaTraspaso,
			&d.EstadoEnvio, &d.EstadoRecepcion, &d.EstadoTraspaso,
			&d.ServicioEnvio, &d.ServicioRecepcion, &d.ServicioTraspaso,
			&d.UsuarioEnvio, &d.UsuarioRecepcion, &d.UsuarioTraspaso,
			&d.ProfesionalEnvio, &d.ProfesionalRecepcion, &d.ProfesionalTraspaso,
			&d.ObservacionEnvio, &d.ObservacionRecepcion, &d.ObservacionTraspaso,
		); err != nil {
			return nil, err
		}
		d.EstadoTraspaso = movimiento.NormalizeEstadoTraspaso(d.EstadoTraspaso)
		movs = append(movs, &d)
	}
	return movs, rows.Err()
}
