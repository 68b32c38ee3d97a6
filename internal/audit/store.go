package audit

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists entries into audit_log. Retention and rotation are an
// operator concern; the core never updates or deletes rows.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore returns a new Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Append inserts the entry. Re-delivery of the same entry ID is a no-op, so
// at-least-once queue semantics do not duplicate rows.
func (s *Store) Append(ctx context.Context, entry Entry) error {
	if s == nil || s.pool == nil {
		return errors.New("audit: store not initialised")
	}
	if entry.ID == "" || entry.Actor == "" || entry.Action == "" {
		return errors.New("audit: entry requires id/actor/action")
	}
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO audit_log (
			id, occurred_at, actor, actor_role, action, outcome, reason,
			severity, resource_type, resource_id, resource_name, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO NOTHING`,
		entry.ID, entry.At, entry.Actor, entry.ActorRole, entry.Action,
		entry.Outcome, entry.Reason, entry.Severity,
		entry.Resource.Type, entry.Resource.ID, entry.Resource.Name, metadata,
	)
	return err
}
