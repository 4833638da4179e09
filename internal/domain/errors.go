package domain

import "errors"

var (
	// ErrAlreadyOpened is the expected daily-gate rejection. Callers surface
	// it as UI state, not as a logged error.
	ErrAlreadyOpened = errors.New("daily pack already opened")

	// ErrAuthFailed covers any provider exchange or profile fetch failure.
	// Recoverable: the caller returns to the unauthenticated state.
	ErrAuthFailed = errors.New("authentication failed")

	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidState    = errors.New("invalid oauth state")

	// ErrInvalidWeights and ErrEmptyBucket are configuration errors, fatal
	// at load time. The engine must not start with either.
	ErrInvalidWeights = errors.New("rarity weights must be non-negative and sum to 100")
	ErrEmptyBucket    = errors.New("catalog bucket is empty for a reachable tier")

	ErrInvalidPackSize = errors.New("pack size must be between 1 and 20")

	// ErrCorruptRecord marks a persisted value that failed to parse. Callers
	// discard the record and proceed as if it were absent.
	ErrCorruptRecord = errors.New("corrupt stored record")
)
