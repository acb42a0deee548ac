package ficha

import (
	"context"
	"errors"

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

const fichaCols = `id, paciente_id, establecimiento_id, sector_id,
	numero_ficha_sistema, numero_ficha_tarjeta, numero_ficha_respaldo,
	pasivado, observacion, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, f *Ficha) error {
	f.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO ficha (
			id, paciente_id, establecimiento_id, sector_id,
			numero_ficha_sistema, numero_ficha_tarjeta, numero_ficha_respaldo,
			pasivado, observacion
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		f.ID, f.PacienteID, f.EstablecimientoID, f.SectorID,
		f.NumeroFichaSistema, f.NumeroFichaTarjeta, f.NumeroFichaRespaldo,
		f.Pasivado, f.Observacion,
	)
	return err
}

func (r *repoPG) NextNumero(ctx context.Context, establecimientoID uuid.UUID) (int64, error) {
	// Serialize numbering per establishment
	_, err := r.conn(ctx).Exec(ctx,
		`SELECT 1 FROM establecimiento WHERE id = $1 FOR UPDATE`, establecimientoID)
	if err != nil {
		return 0, err
	}

	var next int64
	err = r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(MAX(numero_ficha_sistema), 0) + 1
		FROM ficha WHERE establecimiento_id = $1`, establecimientoID).Scan(&next)
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Ficha, error) {
	return scanFicha(r.conn(ctx).QueryRow(ctx, `SELECT `+fichaCols+` FROM ficha WHERE id = $1`, id))
}

func (r *repoPG) GetForUpdate(ctx context.Context, id uuid.UUID) (*Ficha, error) {
	return scanFicha(r.conn(ctx).QueryRow(ctx, `SELECT `+fichaCols+` FROM ficha WHERE id = $1 FOR UPDATE`, id))
}

func (r *repoPG) GetByPaciente(ctx context.Context, pacienteID, establecimientoID uuid.UUID) (*Ficha, error) {
	return scanFicha(r.conn(ctx).QueryRow(ctx,
		`SELECT `+fichaCols+` FROM ficha WHERE paciente_id = $1 AND establecimiento_id = $2`,
		pacienteID, establecimientoID))
}

func (r *repoPG) GetByNumero(ctx context.Context, establecimientoID uuid.UUID, numero int64) (*Ficha, error) {
	return scanFicha(r.conn(ctx).QueryRow(ctx, `
		SELECT `+fichaCols+` FROM ficha
		WHERE establecimiento_id = $1 AND (numero_ficha_sistema = $2 OR numero_ficha_tarjeta = $2)`,
		establecimientoID, numero))
}

func (r *repoPG) NumeroEnUso(ctx context.Context, establecimientoID uuid.UUID, numero int64, excludeID uuid.UUID) (*Ficha, error) {
	f, err := scanFicha(r.conn(ctx).QueryRow(ctx, `
		SELECT `+fichaCols+` FROM ficha
		WHERE establecimiento_id = $1
		  AND (numero_ficha_sistema = $2 OR numero_ficha_tarjeta = $2)
		  AND id <> $3
		LIMIT 1`,
		establecimientoID, numero, excludeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

func (r *repoPG) Update(ctx context.Context, f *Ficha) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE ficha SET
			sector_id=$2, numero_ficha_sistema=$3, numero_ficha_tarjeta=$4,
			numero_ficha_respaldo=$5, pasivado=$6, observacion=$7, updated_at=NOW()
		WHERE id = $1`,
		f.ID, f.SectorID, f.NumeroFichaSistema, f.NumeroFichaTarjeta,
		f.NumeroFichaRespaldo, f.Pasivado, f.Observacion,
	)
	return err
}

func (r *repoPG) List(ctx context.Context, establecimientoID uuid.UUID, limit, offset int) ([]*Ficha, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM ficha WHERE establecimiento_id = $1`, establecimientoID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+fichaCols+` FROM ficha
		WHERE establecimiento_id = $1
		ORDER BY numero_ficha_sistema LIMIT $2 OFFSET $3`,
		establecimientoID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var fichas []*Ficha
	for rows.Next() {
		var f Ficha
		if err := rows.Scan(
			&f.ID, &f.PacienteID, &f.EstablecimientoID, &f.SectorID,
			&f.NumeroFichaSistema, &f.NumeroFichaTarjeta, &f.NumeroFichaRespaldo,
			&f.Pasivado, &f.Observacion, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		fichas = append(fichas, &f)
	}
	return fichas, total, rows.Err()
}

func (r *repoPG) ListPasivadas(ctx context.Context, establecimientoID uuid.UUID, limit, offset int) ([]*Ficha, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM ficha WHERE establecimiento_id = $1 AND pasivado`, establecimientoID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+fichaCols+` FROM ficha
		WHERE establecimiento_id = $1 AND pasivado
		ORDER BY numero_ficha_sistema LIMIT $2 OFFSET $3`,
		establecimientoID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var fichas []*Ficha
	for rows.Next() {
		var f Ficha
		if err := rows.Scan(
			&f.ID, &f.PacienteID, &f.EstablecimientoID, &f.SectorID,
			&f.NumeroFichaSistema, &f.NumeroFichaTarjeta, &f.NumeroFichaRespaldo,
			&f.Pasivado, &f.Observacion, &f.CreatedAt, &f.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		fichas = append(fichas, &f)
	}
	return fichas, total, rows.Err()
}

func scanFicha(row pgx.Row) (*Ficha, error) {
	var f Ficha
	err := row.Scan(
		&f.ID, &f.PacienteID, &f.EstablecimientoID, &f.SectorID,
		&f.NumeroFichaSistema, &f.NumeroFichaTarjeta, &f.NumeroFichaRespaldo,
		&f.Pasivado, &f.Observacion, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
