package ports

import (
	"context"
	"time"

	"github.com/hexapod/packs-go/internal/domain"
)

// Store is the durable key-value store shared by the session manager and the
// pack engine. Keys are namespaced per identity and per purpose by the
// implementation.
//
// Lookups distinguish three outcomes: found, absent (nil, nil), and corrupt
// (domain.ErrCorruptRecord), so callers can repair corruption by discarding
// the record instead of failing.
type Store interface {
	// PutSession persists a session blob until ttl elapses.
	PutSession(ctx context.Context, session domain.Session, ttl time.Duration) error
	// GetSession returns nil, nil when no session is stored under id.
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	DeleteSession(ctx context.Context, id string) error

	// SetLastOpened overwrites the identity's daily-open record.
	SetLastOpened(ctx context.Context, identityID string, openedAt time.Time) error
	// GetLastOpened returns the zero time when no record exists.
	GetLastOpened(ctx context.Context, identityID string) (time.Time, error)
	DeleteLastOpened(ctx context.Context, identityID string) error
}
