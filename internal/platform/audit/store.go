// Package audit persists change-history entries for charts and movements.
// Entries are append-only; nothing in the API deletes or rewrites them.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jarot-Fierro/kardex-api/internal/platform/middleware"
)

// Entry is one row of historial_cambios.
type Entry struct {
	ID        uuid.UUID       `json:"id"`
	Entidad   string          `json:"entidad"`
	EntidadID uuid.UUID       `json:"entidad_id"`
	Accion    string          `json:"accion"`
	Usuario   string          `json:"usuario"`
	Detalle   json.RawMessage `json:"detalle,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Record appends a history entry.
func (s *Store) Record(ctx context.Context, entidad string, entidadID uuid.UUID, accion, usuario string, detalle any) error {
	var raw []byte
	if detalle != nil {
		var err error
		raw, err = json.Marshal(detalle)
		if err != nil {
			return fmt.Errorf("marshal detalle: %w", err)
		}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO historial_cambios (id, entidad, entidad_id, accion, usuario, detalle)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), entidad, entidadID, accion, usuario, raw)
	if err != nil {
		return fmt.Errorf("insert historial: %w", err)
	}
	return nil
}

// ListByEntity returns the history of a single record, newest first.
func (s *Store) ListByEntity(ctx context.Context, entidad string, entidadID uuid.UUID, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, entidad, entidad_id, accion, usuario, COALESCE(detalle, 'null'::jsonb), created_at
		FROM historial_cambios
		WHERE entidad = $1 AND entidad_id = $2
		ORDER BY created_at DESC
		LIMIT $3`,
		entidad, entidadID, limit)
	if err != nil {
		return nil, fmt.Errorf("query historial: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var usuario *string
		if err := rows.Scan(&e.ID, &e.Entidad, &e.EntidadID, &e.Accion, &usuario, &e.Detalle, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan historial: %w", err)
		}
		if usuario != nil {
			e.Usuario = *usuario
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// HTTPRecorder adapts the store to the audit middleware. Only mutating
// requests are persisted; reads stay in the structured log.
func (s *Store) HTTPRecorder() middleware.AuditRecorderFunc {
	return func(entry middleware.AuditEntry) error {
		if entry.Action == "read" {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		detalle := map[string]any{
			"method": entry.Method,
			"path":   entry.Path,
			"status": entry.StatusCode,
			"ip":     entry.IPAddress,
		}
		return s.Record(ctx, "http:"+entry.Resource, uuid.Nil, entry.Action, entry.UserID, detalle)
	}
}
