package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hexapod/packs-go/internal/domain"
	"github.com/hexapod/packs-go/internal/metrics"
	"github.com/hexapod/packs-go/internal/ports"
)

// notifyTimeout bounds each fire-and-forget delivery attempt.
const notifyTimeout = 15 * time.Second

// PackConfig holds pack engine settings.
type PackConfig struct {
	// Location defines the calendar-day boundary; nil means time.Local.
	Location *time.Location
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// PackService owns the daily-eligibility check, the weighted card draw, and
// the in-memory reveal state of the generated pack.
type PackService struct {
	catalog   ports.CatalogStore
	store     ports.Store
	rng       domain.RNG
	notifiers []ports.Notifier
	metrics   metrics.Collector
	logger    *slog.Logger
	config    PackConfig

	mu     sync.Mutex
	locks  map[string]*sync.Mutex
	pulled map[string]*revealState
}

// revealState is the in-memory pack held between an open and the next open
// or reset, plus the card-by-card reveal cursor.
type revealState struct {
	pack   domain.Pack
	cursor int
}

func NewPackService(catalog ports.CatalogStore, store ports.Store, rng domain.RNG, notifiers []ports.Notifier, m metrics.Collector, logger *slog.Logger, config PackConfig) *PackService {
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &PackService{
		catalog:   catalog,
		store:     store,
		rng:       rng,
		notifiers: notifiers,
		metrics:   m,
		logger:    logger,
		config:    config,
		locks:     make(map[string]*sync.Mutex),
		pulled:    make(map[string]*revealState),
	}
}

// CanOpen reports whether the identity is eligible to open a pack today.
// Read-only and safe to call repeatedly. A corrupt daily record is discarded
// and treated as absent.
func (s *PackService) CanOpen(ctx context.Context, identityID string) (bool, error) {
	lastOpened, err := s.store.GetLastOpened(ctx, identityID)
	if errors.Is(err, domain.ErrCorruptRecord) {
		s.logger.Warn("discarding corrupt daily record", slog.String("identity_id", identityID))
		if delErr := s.store.DeleteLastOpened(ctx, identityID); delErr != nil {
			s.logger.Warn("failed to delete corrupt daily record", slog.String("error", delErr.Error()))
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("get daily record: %w", err)
	}
	return domain.CanOpenOn(lastOpened, s.config.Now(), s.config.Location), nil
}

// Open generates today's pack for the identity. The eligibility check and
// the daily-record write form one critical section per identity, so two
// overlapping calls can never both observe "eligible".
//
// The record is committed before the draw; a draw failure rolls it back so
// a configuration fault does not burn the day. A repeat call on the same
// day returns domain.ErrAlreadyOpened and leaves the first call's record
// timestamp untouched.
func (s *PackService) Open(ctx context.Context, identity domain.Identity) (domain.Pack, error) {
	lock := s.identityLock(identity.ID)
	lock.Lock()
	defer lock.Unlock()

	start := s.config.Now()

	can, err := s.CanOpen(ctx, identity.ID)
	if err != nil {
		return domain.Pack{}, err
	}
	if !can {
		s.metrics.RecordOpenRejected()
		return domain.Pack{}, domain.ErrAlreadyOpened
	}

	catalog, err := s.catalog.Catalog(ctx)
	if err != nil {
		return domain.Pack{}, fmt.Errorf("load catalog: %w", err)
	}
	weights, err := s.catalog.Weights(ctx)
	if err != nil {
		return domain.Pack{}, fmt.Errorf("load weights: %w", err)
	}
	size, err := s.catalog.PackSize(ctx)
	if err != nil {
		return domain.Pack{}, fmt.Errorf("load pack size: %w", err)
	}

	openedAt := s.config.Now()
	if err := s.store.SetLastOpened(ctx, identity.ID, openedAt); err != nil {
		return domain.Pack{}, fmt.Errorf("persist daily record: %w", err)
	}

	pack, err := domain.GeneratePack(catalog, weights, size, openedAt, s.rng)
	if err != nil {
		if delErr := s.store.DeleteLastOpened(ctx, identity.ID); delErr != nil {
			s.logger.Error("failed to roll back daily record after draw failure",
				slog.String("identity_id", identity.ID),
				slog.String("error", delErr.Error()),
			)
		}
		return domain.Pack{}, fmt.Errorf("generate pack: %w", err)
	}
	pack.ID = uuid.New().String()

	s.mu.Lock()
	s.pulled[identity.ID] = &revealState{pack: pack}
	s.mu.Unlock()

	s.metrics.RecordPackOpened()
	for _, card := range pack.Cards {
		s.metrics.RecordDraw(string(card.Tier))
	}
	s.metrics.RecordOpenLatency(s.config.Now().Sub(start))

	s.logger.Info("pack opened",
		slog.String("identity_id", identity.ID),
		slog.String("pack_id", pack.ID),
		slog.Int("cards", len(pack.Cards)),
	)

	s.notify(identity, pack)
	return pack, nil
}

// Pulled returns the in-memory pack from the identity's last open, if the
// reveal session is still live.
func (s *PackService) Pulled(identityID string) (domain.Pack, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.pulled[identityID]
	if !ok {
		return domain.Pack{}, false
	}
	return state.pack, true
}

// Advance reveals the next card of the identity's current pack. The second
// return is false when no pack is held or every card has been revealed.
func (s *PackService) Advance(identityID string) (domain.DrawnCard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.pulled[identityID]
	if !ok || state.cursor >= len(state.pack.Cards) {
		return domain.DrawnCard{}, false
	}
	card := state.pack.Cards[state.cursor]
	state.cursor++
	return card, true
}

// Reset clears the in-memory pack and reveal cursor only. The daily-open
// record and the session are untouched; this returns the UI to its idle
// state, it does not wipe data.
func (s *PackService) Reset(identityID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pulled, identityID)
}

// notify dispatches the opened pack to every configured sink. Delivery is
// fire-and-forget: failures are logged and counted, never propagated.
func (s *PackService) notify(identity domain.Identity, pack domain.Pack) {
	for _, n := range s.notifiers {
		go func(n ports.Notifier) {
			ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			defer cancel()
			if err := n.PackOpened(ctx, identity, pack); err != nil {
				s.metrics.RecordNotifyFailure(n.Name())
				s.logger.Warn("pack notification failed",
					slog.String("sink", n.Name()),
					slog.String("pack_id", pack.ID),
					slog.String("error", err.Error()),
				)
			}
		}(n)
	}
}

func (s *PackService) identityLock(identityID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[identityID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[identityID] = lock
	}
	return lock
}
