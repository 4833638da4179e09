package domain

import "time"

// Validate checks that the table covers every tier in TierOrder with a
// non-negative weight and that the weights sum to exactly 100.
func (w WeightTable) Validate() error {
	sum := 0
	for _, tier := range TierOrder {
		weight, ok := w[tier]
		if !ok || weight < 0 {
			return ErrInvalidWeights
		}
		sum += weight
	}
	if sum != 100 {
		return ErrInvalidWeights
	}
	return nil
}

// Validate checks that every tier reachable under weights (weight > 0) has a
// non-empty bucket.
func (c Catalog) Validate(weights WeightTable) error {
	for _, tier := range TierOrder {
		if weights[tier] > 0 && len(c.Buckets[tier]) == 0 {
			return ErrEmptyBucket
		}
	}
	return nil
}

// DrawRarity draws one tier. A uniform value in [0, 100) is matched against
// contiguous sub-ranges sized by weight, partitioned in TierOrder
// (rarest first), so the mapping from roll to tier is stable for fixed
// weights. The caller must have validated weights.
func DrawRarity(weights WeightTable, rng RNG) RarityTier {
	roll := rng.Intn(100)
	bound := 0
	for _, tier := range TierOrder {
		bound += weights[tier]
		if roll < bound {
			return tier
		}
	}
	// Unreachable with a valid table; the last tier absorbs the remainder.
	return TierOrder[len(TierOrder)-1]
}

// DrawCard uniformly selects one card from the tier's bucket. The bucket
// must be non-empty; reachable-tier emptiness is rejected at catalog load.
func DrawCard(catalog Catalog, tier RarityTier, rng RNG) (DrawnCard, error) {
	bucket := catalog.Buckets[tier]
	if len(bucket) == 0 {
		return DrawnCard{}, ErrEmptyBucket
	}
	card := bucket[rng.Intn(len(bucket))]
	return DrawnCard{Card: card, Tier: tier}, nil
}

// GeneratePack draws n fully independent cards. Duplicates within a pack are
// allowed and expected. The pack ID is assigned by the caller.
func GeneratePack(catalog Catalog, weights WeightTable, n int, openedAt time.Time, rng RNG) (Pack, error) {
	if n < 1 || n > 20 {
		return Pack{}, ErrInvalidPackSize
	}

	cards := make([]DrawnCard, n)
	for i := range n {
		tier := DrawRarity(weights, rng)
		card, err := DrawCard(catalog, tier, rng)
		if err != nil {
			return Pack{}, err
		}
		cards[i] = card
	}

	return Pack{
		Cards:    cards,
		OpenedAt: openedAt,
	}, nil
}
