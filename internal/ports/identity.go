package ports

import (
	"context"

	"github.com/hexapod/packs-go/internal/domain"
)

// IdentityProvider is the external OAuth identity provider.
type IdentityProvider interface {
	// LoginURL builds the provider's authorization redirect for the given
	// anti-forgery state.
	LoginURL(state string) string
	// Exchange trades an authorization code for the user's profile and an
	// opaque bearer credential.
	Exchange(ctx context.Context, code string) (domain.Identity, string, error)
	// FetchIdentity re-fetches the profile for an existing credential.
	FetchIdentity(ctx context.Context, credential string) (domain.Identity, error)
}
