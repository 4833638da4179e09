package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/hexapod/packs-go/internal/domain"
)

func TestEmbeddedStore_LoadsDefaults(t *testing.T) {
	store := NewEmbeddedStore(Overrides{})

	catalog, err := store.Catalog(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(catalog.Buckets[domain.TierCommon]); got != 5 {
		t.Errorf("expected 5 common cards, got %d", got)
	}
	if got := len(catalog.Buckets[domain.TierUncommon]); got != 6 {
		t.Errorf("expected 6 uncommon cards, got %d", got)
	}
	if got := len(catalog.Buckets[domain.TierLegendary]); got != 3 {
		t.Errorf("expected 3 legendary cards, got %d", got)
	}

	weights, err := store.Weights(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.WeightTable{
		domain.TierCommon:    75,
		domain.TierUncommon:  23,
		domain.TierLegendary: 2,
	}
	for tier, weight := range want {
		if weights[tier] != weight {
			t.Errorf("tier %s: expected weight %d, got %d", tier, weight, weights[tier])
		}
	}

	size, err := store.PackSize(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size != 5 {
		t.Errorf("expected pack size 5, got %d", size)
	}
}

func TestEmbeddedStore_Overrides(t *testing.T) {
	store := NewEmbeddedStore(Overrides{
		PackSize: 3,
		Weights: domain.WeightTable{
			domain.TierCommon:    50,
			domain.TierUncommon:  40,
			domain.TierLegendary: 10,
		},
	})

	size, err := store.PackSize(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size != 3 {
		t.Errorf("expected overridden pack size 3, got %d", size)
	}

	weights, err := store.Weights(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if weights[domain.TierLegendary] != 10 {
		t.Errorf("expected overridden legendary weight 10, got %d", weights[domain.TierLegendary])
	}
}

func TestEmbeddedStore_RejectsBadWeightSum(t *testing.T) {
	store := NewEmbeddedStore(Overrides{
		Weights: domain.WeightTable{
			domain.TierCommon:    75,
			domain.TierUncommon:  23,
			domain.TierLegendary: 1, // sums to 99
		},
	})

	if _, err := store.Catalog(context.Background()); !errors.Is(err, domain.ErrInvalidWeights) {
		t.Errorf("expected ErrInvalidWeights, got %v", err)
	}
	// The failure is sticky: every accessor reports it.
	if _, err := store.PackSize(context.Background()); !errors.Is(err, domain.ErrInvalidWeights) {
		t.Errorf("expected ErrInvalidWeights from PackSize, got %v", err)
	}
}

func TestEmbeddedStore_RejectsBadPackSize(t *testing.T) {
	store := NewEmbeddedStore(Overrides{PackSize: 21})

	if _, err := store.Catalog(context.Background()); !errors.Is(err, domain.ErrInvalidPackSize) {
		t.Errorf("expected ErrInvalidPackSize, got %v", err)
	}
}
