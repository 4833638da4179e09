package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hexapod/packs-go/internal/domain"
	"github.com/hexapod/packs-go/internal/metrics"
	"github.com/hexapod/packs-go/internal/ports"
)

// SessionConfig holds session manager settings.
type SessionConfig struct {
	// StateSecret signs the OAuth anti-forgery state token.
	StateSecret []byte
	// SessionTTL bounds how long a persisted session stays valid.
	SessionTTL time.Duration
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// SessionService owns the authenticated-identity lifecycle: login initiation,
// OAuth callback handling, session persistence and restore, and logout.
type SessionService struct {
	provider ports.IdentityProvider
	store    ports.Store
	metrics  metrics.Collector
	logger   *slog.Logger
	config   SessionConfig
}

func NewSessionService(provider ports.IdentityProvider, store ports.Store, m metrics.Collector, logger *slog.Logger, config SessionConfig) *SessionService {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 7 * 24 * time.Hour
	}
	return &SessionService{
		provider: provider,
		store:    store,
		metrics:  m,
		logger:   logger,
		config:   config,
	}
}

// LoginURL builds the provider redirect carrying a freshly signed state
// token. It never fails locally beyond state signing.
func (s *SessionService) LoginURL() (string, error) {
	state, err := newStateToken(s.config.StateSecret, s.config.Now())
	if err != nil {
		return "", fmt.Errorf("sign state: %w", err)
	}
	return s.provider.LoginURL(state), nil
}

// CompleteLogin verifies the callback state, exchanges the authorization
// code for an identity and credential, and persists a new session. On any
// failure no partial state is persisted and the caller remains
// unauthenticated.
func (s *SessionService) CompleteLogin(ctx context.Context, code, state string) (domain.Session, error) {
	if err := verifyStateToken(s.config.StateSecret, state, s.config.Now()); err != nil {
		s.metrics.RecordAuthFailure()
		return domain.Session{}, err
	}

	identity, credential, err := s.provider.Exchange(ctx, code)
	if err != nil {
		s.metrics.RecordAuthFailure()
		return domain.Session{}, fmt.Errorf("%w: %w", domain.ErrAuthFailed, err)
	}

	sessionID, err := generateSessionID()
	if err != nil {
		s.metrics.RecordAuthFailure()
		return domain.Session{}, fmt.Errorf("generate session id: %w", err)
	}

	now := s.config.Now()
	session := domain.Session{
		ID:         sessionID,
		Identity:   identity,
		Credential: credential,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.config.SessionTTL),
	}

	if err := s.store.PutSession(ctx, session, s.config.SessionTTL); err != nil {
		s.metrics.RecordAuthFailure()
		return domain.Session{}, fmt.Errorf("persist session: %w", err)
	}

	s.metrics.RecordAuthSuccess()
	s.logger.Info("user logged in",
		slog.String("identity_id", identity.ID),
		slog.String("username", identity.Username),
	)
	return session, nil
}

// Restore looks up a persisted session. Absent sessions yield nil, nil.
// A corrupt or expired record is discarded and also yields nil, nil; restore
// never fails on bad persisted data. A well-formed session is trusted
// without contacting the provider.
func (s *SessionService) Restore(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, nil
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if errors.Is(err, domain.ErrCorruptRecord) {
		s.logger.Warn("discarding corrupt session record", slog.String("session_id", sessionID))
		if delErr := s.store.DeleteSession(ctx, sessionID); delErr != nil {
			s.logger.Warn("failed to delete corrupt session", slog.String("error", delErr.Error()))
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	if session.Expired(s.config.Now()) {
		if delErr := s.store.DeleteSession(ctx, sessionID); delErr != nil {
			s.logger.Warn("failed to delete expired session", slog.String("error", delErr.Error()))
		}
		return nil, nil
	}

	return session, nil
}

// RefreshIdentity re-fetches the profile behind an existing session and
// updates the stored copy. Best-effort: on any failure the cached identity
// is kept and the session is returned unchanged.
func (s *SessionService) RefreshIdentity(ctx context.Context, session domain.Session) domain.Session {
	identity, err := s.provider.FetchIdentity(ctx, session.Credential)
	if err != nil {
		s.logger.Warn("identity refresh failed, keeping cached profile",
			slog.String("identity_id", session.Identity.ID),
			slog.String("error", err.Error()),
		)
		return session
	}

	session.Identity = identity
	ttl := session.ExpiresAt.Sub(s.config.Now())
	if ttl <= 0 {
		return session
	}
	if err := s.store.PutSession(ctx, session, ttl); err != nil {
		s.logger.Warn("failed to persist refreshed identity", slog.String("error", err.Error()))
	}
	return session
}

// Logout clears the session and everything persisted for its identity,
// including the daily-open record. Idempotent: logging out an unknown
// session is a no-op.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil && !errors.Is(err, domain.ErrCorruptRecord) {
		return fmt.Errorf("get session: %w", err)
	}

	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if session != nil {
		if err := s.store.DeleteLastOpened(ctx, session.Identity.ID); err != nil {
			return fmt.Errorf("delete daily record: %w", err)
		}
		s.logger.Info("user logged out", slog.String("identity_id", session.Identity.ID))
	}
	return nil
}

// generateSessionID returns a cryptographically random session identifier.
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
