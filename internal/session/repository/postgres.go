package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/FormaKit/Backend/internal/session/domain"
	"github.com/FormaKit/Backend/internal/store"
)

// sessionSchema maps domain.Session onto the sessions collection.
var sessionSchema = store.Schema[domain.Session]{
	Table: "sessions",
	Columns: []string{
		"id", "user_id", "session_token", "expire_at", "device_name",
		"user_agent", "ip_address", "location", "is_current", "created_at",
		"last_active_at",
	},
	Scan: func(row store.RowScanner) (*domain.Session, error) {
		var s domain.Session
		err := row.Scan(&s.ID, &s.UserID, &s.SessionToken, &s.ExpireAt,
			&s.DeviceName, &s.UserAgent, &s.IPAddress, &s.Location,
			&s.IsCurrent, &s.CreatedAt, &s.LastActiveAt)
		if err != nil {
			return nil, err
		}
		return &s, nil
	},
	Values: func(s *domain.Session) []any {
		return []any{
			s.ID, s.UserID, s.SessionToken, s.ExpireAt, s.DeviceName,
			s.UserAgent, s.IPAddress, s.Location, s.IsCurrent, s.CreatedAt,
			s.LastActiveAt,
		}
	},
}

// PostgresRepository persists sessions through the sessions record collection.
type PostgresRepository struct {
	db       *sql.DB
	sessions *store.Collection[domain.Session]
}

// NewPostgresRepository returns a session repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, sessions: store.NewCollection(db, sessionSchema)}
}

// CreateSession demotes all of the user's sessions and inserts s as the
// current one inside one transaction, so two racing logins cannot leave two
// current sessions visible.
func (r *PostgresRepository) CreateSession(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	var created *domain.Session
	err := store.Transact(ctx, r.db, func(tx *sql.Tx) error {
		c := r.sessions.WithTx(tx)
		if _, err := c.UpdateMany(ctx,
			map[string]any{"user_id": s.UserID},
			map[string]any{"is_current": false},
		); err != nil {
			return err
		}
		s.IsCurrent = true
		var err error
		created, err = c.Create(ctx, s)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID returns the session for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	return r.sessions.FindByID(ctx, id)
}

// ListByUser returns the user's sessions, most recently active first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	return r.sessions.FindAll(ctx, store.Filter{
		Where:   map[string]any{"user_id": userID},
		OrderBy: []store.Order{{Field: "last_active_at", Desc: true}},
	})
}

// UpdateLastActive sets the session's last-active timestamp. Callers treat
// failures as best-effort; a failed touch does not invalidate the request.
func (r *PostgresRepository) UpdateLastActive(ctx context.Context, id string, at time.Time) error {
	_, err := r.sessions.Update(ctx, id, map[string]any{"last_active_at": at})
	return err
}

// EndSession deletes one session. Used for logout and expired-session
// cleanup.
func (r *PostgresRepository) EndSession(ctx context.Context, id string) error {
	return r.sessions.Delete(ctx, id)
}

// EndOtherSessions deletes all sessions for the user except keepID. The
// keep-one exclusion is the only filter the exact-equality record contract
// cannot express, so it is a direct statement.
func (r *PostgresRepository) EndOtherSessions(ctx context.Context, userID, keepID string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM sessions WHERE user_id = $1 AND id <> $2", userID, keepID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// EndAllSessions deletes every session for the user.
func (r *PostgresRepository) EndAllSessions(ctx context.Context, userID string) (int64, error) {
	return r.sessions.DeleteMany(ctx, map[string]any{"user_id": userID})
}
