package app

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hexapod/packs-go/internal/domain"
)

// stateTTL bounds how long an OAuth redirect may stay in flight before its
// state token expires.
const stateTTL = 10 * time.Minute

// newStateToken signs an HS256 anti-forgery token carried through the OAuth
// redirect. The token is stateless: a nonce plus expiry under our signature
// is enough to reject forged or replayed-late callbacks.
func newStateToken(secret []byte, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"jti": uuid.New().String(),
		"iat": now.Unix(),
		"exp": now.Add(stateTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// verifyStateToken checks signature and expiry of a callback state token.
func verifyStateToken(secret []byte, state string, now time.Time) error {
	if state == "" {
		return domain.ErrInvalidState
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	token, err := parser.Parse(state, func(*jwt.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidState, err)
	}
	if !token.Valid {
		return domain.ErrInvalidState
	}
	return nil
}
