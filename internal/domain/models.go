package domain

import "time"

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
}

// RarityTier is one of a closed set of reward-quality buckets.
type RarityTier string

const (
	TierCommon    RarityTier = "common"
	TierUncommon  RarityTier = "uncommon"
	TierLegendary RarityTier = "legendary"
)

// TierOrder is the fixed rarest-first order in which weight sub-ranges are
// partitioned. Draws are reproducible only because this order never changes.
var TierOrder = []RarityTier{TierLegendary, TierUncommon, TierCommon}

// WeightTable maps each tier to an integer percentage. The weights of a
// valid table sum to exactly 100.
type WeightTable map[RarityTier]int

// Card is a static catalog entry. Never mutated after load.
type Card struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Catalog holds every card grouped by the tier it is drawn under.
type Catalog struct {
	Buckets map[RarityTier][]Card
}

// DrawnCard is a card plus the tier it was drawn under. The tier is assigned
// at draw time so downstream rendering can sort and color without consulting
// the catalog.
type DrawnCard struct {
	Card
	Tier RarityTier `json:"tier"`
}

// Pack is the ordered result of one successful daily open. Immutable once
// generated.
type Pack struct {
	ID       string      `json:"id"`
	Cards    []DrawnCard `json:"cards"`
	OpenedAt time.Time   `json:"opened_at"`
}

// HasTier reports whether any card in the pack was drawn under tier.
func (p Pack) HasTier(tier RarityTier) bool {
	for _, c := range p.Cards {
		if c.Tier == tier {
			return true
		}
	}
	return false
}

// Identity is the authenticated user's external profile data. Immutable for
// the lifetime of a session; replaced wholesale on re-login.
type Identity struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// Session is the local representation of the current authentication state.
type Session struct {
	ID         string    `json:"id"`
	Identity   Identity  `json:"identity"`
	Credential string    `json:"credential,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
