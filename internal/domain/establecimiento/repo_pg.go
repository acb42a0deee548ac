package establecimiento

import (
	"context"

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

const estCols = `id, nombre, codigo, direccion, activo, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, e *Establecimiento) error {
	e.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO establecimiento (id, nombre, codigo, direccion, activo)
		VALUES ($1,$2,$3,$4,$5)`,
		e.ID, e.Nombre, e.Codigo, e.Direccion, true,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Establecimiento, error) {
	var e Establecimiento
	err := r.conn(ctx).QueryRow(ctx, `SELECT `+estCols+` FROM establecimiento WHERE id = $1`, id).
		Scan(&e.ID, &e.Nombre, &e.Codigo, &e.Direccion, &e.Activo, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repoPG) Update(ctx context.Context, e *Establecimiento) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE establecimiento SET nombre=$2, codigo=$3, direccion=$4, activo=$5, updated_at=NOW()
		WHERE id = $1`,
		e.ID, e.Nombre, e.Codigo, e.Direccion, e.Activo,
	)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Establecimiento, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM establecimiento`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+estCols+` FROM establecimiento ORDER BY nombre LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var ests []*Establecimiento
	for rows.Next() {
		var e Establecimiento
		if err := rows.Scan(&e.ID, &e.Nombre, &e.Codigo, &e.Direccion, &e.Activo, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		ests = append(ests, &e)
	}
	return ests, total, rows.Err()
}

func (r *repoPG) CreateSector(ctx context.Context, s *Sector) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO sector (id, nombre, establecimiento_id, activo)
		VALUES ($1,$2,$3,$4)`,
		s.ID, s.Nombre, s.EstablecimientoID, true,
	)
	return err
}

func (r *repoPG) ListSectores(ctx context.Context, establecimientoID uuid.UUID) ([]*Sector, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, nombre, establecimiento_id, activo, created_at, updated_at
		FROM sector WHERE establecimiento_id = $1 ORDER BY nombre`, establecimientoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sectores []*Sector
	for rows.Next() {
		var s Sector
		if err := rows.Scan(&s.ID, &s.Nombre, &s.EstablecimientoID, &s.Activo, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sectores = append(sectores, &s)
	}
	return sectores, rows.Err()
}

func (r *repoPG) CreateServicio(ctx context.Context, sc *ServicioClinico) error {
	sc.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO servicio_clinico (id, nombre, establecimiento_id, activo)
		VALUES ($1,$2,$3,$4)`,
		sc.ID, sc.Nombre, sc.EstablecimientoID, true,
	)
	return err
}

func (r *repoPG) GetServicio(ctx context.Context, id uuid.UUID) (*ServicioClinico, error) {
	var sc ServicioClinico
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, nombre, establecimiento_id, activo, created_at, updated_at
		FROM servicio_clinico WHERE id = $1`, id).
		Scan(&sc.ID, &sc.Nombre, &sc.EstablecimientoID, &sc.Activo, &sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sc, nil
}

func (r *repoPG) ListServicios(ctx context.Context, establecimientoID uuid.UUID) ([]*ServicioClinico, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, nombre, establecimiento_id, activo, created_at, updated_at
		FROM servicio_clinico WHERE establecimiento_id = $1 ORDER BY nombre`, establecimientoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var servicios []*ServicioClinico
	for rows.Next() {
		var sc ServicioClinico
		if err := rows.Scan(&sc.ID, &sc.Nombre, &sc.EstablecimientoID, &sc.Activo, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, err
		}
		servicios = append(servicios, &sc)
	}
	return servicios, rows.Err()
}

func (r *repoPG) CreateProfesional(ctx context.Context, p *Profesional) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO profesional (id, rut, nombre, apellido, correo, establecimiento_id, activo)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.RUT, p.Nombre, p.Apellido, p.Correo, p.EstablecimientoID, true,
	)
	return err
}

func (r *repoPG) GetProfesional(ctx context.Context, id uuid.UUID) (*Profesional, error) {
	var p Profesional
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, rut, nombre, apellido, correo, establecimiento_id, activo, created_at, updated_at
		FROM profesional WHERE id = $1`, id).
		Scan(&p.ID, &p.RUT, &p.Nombre, &p.Apellido, &p.Correo, &p.EstablecimientoID, &p.Activo, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) ListProfesionales(ctx context.Context, establecimientoID uuid.UUID) ([]*Profesional, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, rut, nombre, apellido, correo, establecimiento_id, activo, created_at, updated_at
		FROM profesional WHERE establecimiento_id = $1 ORDER BY nombre`, establecimientoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profs []*Profesional
	for rows.Next() {
		var p Profesional
		if err := rows.Scan(&p.ID, &p.RUT, &p.Nombre, &p.Apellido, &p.Correo, &p.EstablecimientoID, &p.Activo, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		profs = append(profs, &p)
	}
	return profs, rows.Err()
}
