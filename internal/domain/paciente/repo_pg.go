package paciente

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

const pacCols = `id, rut, nombre, apellido_paterno, apellido_materno,
	fecha_nacimiento, sexo, direccion, telefono, activo, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Paciente) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO paciente (
			id, rut, nombre, apellido_paterno, apellido_materno,
			fecha_nacimiento, sexo, direccion, telefono, activo
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.RUT, p.Nombre, p.ApellidoPaterno, p.ApellidoMaterno,
		p.FechaNacimiento, p.Sexo, p.Direccion, p.Telefono, true,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Paciente, error) {
	return scanPac(r.conn(ctx).QueryRow(ctx, `SELECT `+pacCols+` FROM paciente WHERE id = $1`, id))
}

func (r *repoPG) GetByRUT(ctx context.Context, rut string) (*Paciente, error) {
	return scanPac(r.conn(ctx).QueryRow(ctx, `SELECT `+pacCols+` FROM paciente WHERE rut = $1`, rut))
}

func (r *repoPG) Update(ctx context.Context, p *Paciente) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE paciente SET
			rut=$2, nombre=$3, apellido_paterno=$4, apellido_materno=$5,
			fecha_nacimiento=$6, sexo=$7, direccion=$8, telefono=$9, activo=$10,
			updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.RUT, p.Nombre, p.ApellidoPaterno, p.ApellidoMaterno,
		p.FechaNacimiento, p.Sexo, p.Direccion, p.Telefono, p.Activo,
	)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Paciente, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM paciente`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+pacCols+` FROM paciente ORDER BY nombre LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var pacs []*Paciente
	for rows.Next() {
		var p Paciente
		if err := rows.Scan(
			&p.ID, &p.RUT, &p.Nombre, &p.ApellidoPaterno, &p.ApellidoMaterno,
			&p.FechaNacimiento, &p.Sexo, &p.Direccion, &p.Telefono, &p.Activo,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		pacs = append(pacs, &p)
	}
	return pacs, total, rows.Err()
}

func scanPac(row pgx.Row) (*Paciente, error) {
	var p Paciente
	err := row.Scan(
		&p.ID, &p.RUT, &p.Nombre, &p.ApellidoPaterno, &p.ApellidoMaterno,
		&p.FechaNacimiento, &p.Sexo, &p.Direccion, &p.Telefono, &p.Activo,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
