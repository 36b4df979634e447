package token

import "context"

// Store defines how session tokens are stored and retrieved. Each
// method must be atomic at the storage layer; the delete-then-create
// sequence around logins is deliberately NOT atomic (see Manager.Issue).
type Store interface {
	// Create persists a token. An existing token under the same key is
	// overwritten.
	Create(ctx context.Context, t Token) error

	// Get returns the token for key, or (nil, nil) when absent.
	Get(ctx context.Context, key string) (*Token, error)

	// Delete removes the token for key. Deleting an absent key is not
	// an error.
	Delete(ctx context.Context, key string) error

	// DeleteByPrincipal removes whatever token the principal currently
	// owns, if any.
	DeleteByPrincipal(ctx context.Context, principalID string) error
}

// Enumerator is implemented by stores that can list their tokens. It
// is only needed for the optional expiry sweep; lazy expiry works
// without it.
type Enumerator interface {
	All(ctx context.Context) ([]Token, error)
}
