package repository

import (
	"context"
	"time"

	"github.com/FormaKit/Backend/internal/session/domain"
)

// Repository defines persistence for sessions, including the single-current
// policy operations.
type Repository interface {
	// CreateSession demotes every existing session of the user to
	// is_current = false and inserts s as the current one, in a single
	// atomic store operation per user.
	CreateSession(ctx context.Context, s *domain.Session) (*domain.Session, error)
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// ListByUser returns the user's sessions ordered by last_active_at
	// descending.
	ListByUser(ctx context.Context, userID string) ([]*domain.Session, error)
	UpdateLastActive(ctx context.Context, id string, at time.Time) error
	EndSession(ctx context.Context, id string) error
	// EndOtherSessions removes every session of the user except keepID and
	// returns the number removed.
	EndOtherSessions(ctx context.Context, userID, keepID string) (int64, error)
	// EndAllSessions removes every session of the user and returns the
	// number removed.
	EndAllSessions(ctx context.Context, userID string) (int64, error)
}
