// Package redisstore implements the durable key-value store on Redis. Keys
// are namespaced per purpose and per identity so multiple identities never
// collide: packs:session:<session-id> and packs:daily:<identity-id>.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hexapod/packs-go/internal/domain"
)

const (
	sessionKeyPrefix = "packs:session:"
	dailyKeyPrefix   = "packs:daily:"
)

// Store persists sessions as JSON blobs with a TTL and daily-open records as
// RFC 3339 timestamp strings. Values that fail to parse surface as
// domain.ErrCorruptRecord so callers can discard them.
type Store struct {
	client *redis.Client
}

func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) PutSession(ctx context.Context, session domain.Session, ttl time.Duration) error {
	blob, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+session.ID, blob, ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	blob, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(blob, &session); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCorruptRecord, err)
	}
	return &session, nil
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Store) SetLastOpened(ctx context.Context, identityID string, openedAt time.Time) error {
	value := openedAt.Format(time.RFC3339Nano)
	if err := s.client.Set(ctx, dailyKeyPrefix+identityID, value, 0).Err(); err != nil {
		return fmt.Errorf("set daily record: %w", err)
	}
	return nil
}

func (s *Store) GetLastOpened(ctx context.Context, identityID string) (time.Time, error) {
	value, err := s.client.Get(ctx, dailyKeyPrefix+identityID).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get daily record: %w", err)
	}

	openedAt, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", domain.ErrCorruptRecord, err)
	}
	return openedAt, nil
}

func (s *Store) DeleteLastOpened(ctx context.Context, identityID string) error {
	if err := s.client.Del(ctx, dailyKeyPrefix+identityID).Err(); err != nil {
		return fmt.Errorf("delete daily record: %w", err)
	}
	return nil
}
