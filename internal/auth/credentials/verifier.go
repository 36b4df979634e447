package credentials

import (
	"context"
	"errors"

	"github.com/jsabonet/milagre-car-site/internal/auth"
)

var (
	// ErrInvalidCredentials covers unknown usernames and wrong passwords
	// alike, so responses never reveal which one it was.
	ErrInvalidCredentials = errors.New("credentials: invalid credentials")

	// ErrAccountDisabled is returned for a matched but inactive principal.
	ErrAccountDisabled = errors.New("credentials: account disabled")
)

// PrincipalSource looks up principals by username. The canonical
// implementation is Postgres-backed; tests substitute a fake.
type PrincipalSource interface {
	GetByUsername(ctx context.Context, username string) (*auth.Principal, error)
}

// Verifier validates an identifier+secret pair against stored
// credentials. It has no side effects: privilege checks belong to the
// caller so that "wrong password" and "no privilege" stay distinct.
type Verifier struct {
	source PrincipalSource
}

func NewVerifier(source PrincipalSource) *Verifier {
	return &Verifier{source: source}
}

func (v *Verifier) Verify(
	ctx context.Context,
	username string,
	password string,
) (*auth.Principal, error) {

	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	p, err := v.source.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrInvalidCredentials
	}

	if err := VerifyPassword(p.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !p.IsActive {
		return nil, ErrAccountDisabled
	}

	return p, nil
}
