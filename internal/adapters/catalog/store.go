package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hexapod/packs-go/internal/domain"
)

//go:embed data/*.json
var catalogFS embed.FS

const defaultFile = "data/hexapod.json"

// catalogFile is the on-disk shape of an embedded catalog.
type catalogFile struct {
	PackSize int                      `json:"pack_size"`
	Weights  map[string]int           `json:"weights"`
	Tiers    map[string][]domain.Card `json:"tiers"`
}

// Overrides replace selected catalog file values at load time, from
// configuration.
type Overrides struct {
	PackSize int
	Weights  domain.WeightTable
}

// EmbeddedStore loads the card catalog from an embedded JSON file and
// validates the draw invariants once, up front. A weight table that does
// not sum to 100, or an empty bucket for a reachable tier, is a fatal load
// error: the engine must not start with either.
type EmbeddedStore struct {
	once      sync.Once
	overrides Overrides

	catalog  domain.Catalog
	weights  domain.WeightTable
	packSize int
	err      error
}

func NewEmbeddedStore(overrides Overrides) *EmbeddedStore {
	return &EmbeddedStore{overrides: overrides}
}

func (s *EmbeddedStore) init() {
	raw, err := catalogFS.ReadFile(defaultFile)
	if err != nil {
		s.err = fmt.Errorf("read embedded catalog: %w", err)
		return
	}

	var file catalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		s.err = fmt.Errorf("parse embedded catalog: %w", err)
		return
	}

	weights := make(domain.WeightTable, len(file.Weights))
	for tier, weight := range file.Weights {
		weights[domain.RarityTier(tier)] = weight
	}
	if s.overrides.Weights != nil {
		weights = s.overrides.Weights
	}

	buckets := make(map[domain.RarityTier][]domain.Card, len(file.Tiers))
	for tier, cards := range file.Tiers {
		buckets[domain.RarityTier(tier)] = cards
	}
	catalog := domain.Catalog{Buckets: buckets}

	packSize := file.PackSize
	if s.overrides.PackSize > 0 {
		packSize = s.overrides.PackSize
	}

	if err := weights.Validate(); err != nil {
		s.err = fmt.Errorf("catalog %s: %w", defaultFile, err)
		return
	}
	if err := catalog.Validate(weights); err != nil {
		s.err = fmt.Errorf("catalog %s: %w", defaultFile, err)
		return
	}
	if packSize < 1 || packSize > 20 {
		s.err = fmt.Errorf("catalog %s: %w", defaultFile, domain.ErrInvalidPackSize)
		return
	}

	s.catalog = catalog
	s.weights = weights
	s.packSize = packSize
}

func (s *EmbeddedStore) Catalog(_ context.Context) (domain.Catalog, error) {
	s.once.Do(s.init)
	if s.err != nil {
		return domain.Catalog{}, s.err
	}
	return s.catalog, nil
}

func (s *EmbeddedStore) Weights(_ context.Context) (domain.WeightTable, error) {
	s.once.Do(s.init)
	if s.err != nil {
		return nil, s.err
	}
	return s.weights, nil
}

func (s *EmbeddedStore) PackSize(_ context.Context) (int, error) {
	s.once.Do(s.init)
	if s.err != nil {
		return 0, s.err
	}
	return s.packSize, nil
}
