package token

import (
	"context"
	"fmt"
	"time"

	"github.com/jsabonet/milagre-car-site/internal/auth"
	"github.com/jsabonet/milagre-car-site/internal/logger"
)

// DefaultTTL is the fixed lifetime of an admin session token.
const DefaultTTL = 7 * 24 * time.Hour

// PrincipalLookup resolves a stored token back to its owning principal.
type PrincipalLookup interface {
	GetByID(ctx context.Context, id string) (*auth.Principal, error)
}

// Manager orchestrates the token lifecycle: issuance, revocation,
// renewal and expiry evaluation. It is the single authority for "is
// this token usable" — nothing else re-implements the TTL comparison.
type Manager struct {
	store      Store
	principals PrincipalLookup
	ttl        time.Duration
	now        func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithTTL overrides the default 7-day token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

// WithClock overrides the time source. Tests use this to cross the
// expiry boundary without sleeping.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(store Store, principals PrincipalLookup, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		principals: principals,
		ttl:        DefaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL returns the configured token lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue invalidates whatever token the principal currently holds and
// creates a fresh one. The delete-then-create pair is not guarded by a
// lock: two concurrent logins for the same principal race benignly,
// the last Create wins and the loser's key simply stops resolving.
func (m *Manager) Issue(ctx context.Context, p *auth.Principal) (*Token, error) {
	if err := m.store.DeleteByPrincipal(ctx, p.ID); err != nil {
		return nil, fmt.Errorf("token: failed to invalidate previous token: %w", err)
	}

	key, err := GenerateKey()
	if err != nil {
		return nil, err
	}

	t := Token{
		Key:         key,
		PrincipalID: p.ID,
		CreatedAt:   m.now(),
	}

	if err := m.store.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("token: failed to persist token: %w", err)
	}

	return &t, nil
}

// Renew rotates the token of an already-authenticated principal. The
// caller is responsible for having checked the current token first;
// credentials are not re-verified here.
func (m *Manager) Renew(ctx context.Context, p *auth.Principal) (*Token, error) {
	return m.Issue(ctx, p)
}

// Revoke deletes the token for key regardless of owner. Revoking an
// absent key succeeds: logout must never fail from the caller's side.
func (m *Manager) Revoke(ctx context.Context, key string) error {
	return m.store.Delete(ctx, key)
}

// Evaluate looks up a token and decides whether it is still usable.
// Returns the owning principal when valid, ErrNotFound when the key
// does not resolve, and ErrExpired when the token outlived the TTL —
// in which case it is deleted on the spot.
func (m *Manager) Evaluate(ctx context.Context, key string) (*auth.Principal, error) {
	p, _, err := m.EvaluateToken(ctx, key)
	return p, err
}

// EvaluateToken is Evaluate for callers that also need the stored
// token, e.g. to report its creation time. Both results come from the
// same read, so a concurrent revocation cannot invalidate one without
// the other.
func (m *Manager) EvaluateToken(ctx context.Context, key string) (*auth.Principal, *Token, error) {
	t, err := m.store.Get(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	if t == nil {
		return nil, nil, ErrNotFound
	}

	if m.now().Sub(t.CreatedAt) > m.ttl {
		if err := m.store.Delete(ctx, key); err != nil {
			logger.Error("failed to delete expired token", map[string]any{
				"token": logger.TokenPrefix(key),
				"error": err.Error(),
			})
		}
		logger.Info("expired token removed", map[string]any{
			"token":     logger.TokenPrefix(key),
			"principal": t.PrincipalID,
		})
		return nil, nil, ErrExpired
	}

	p, err := m.principals.GetByID(ctx, t.PrincipalID)
	if err != nil {
		return nil, nil, fmt.Errorf("token: failed to load principal: %w", err)
	}
	if p == nil {
		// owner vanished out from under the token
		return nil, nil, ErrNotFound
	}

	return p, t, nil
}

// SweepExpired deletes every token older than the TTL. This is the
// optional periodic sweep; lazy expiry in Evaluate stays the contract
// and the sweep only bounds storage growth.
func (m *Manager) SweepExpired(ctx context.Context) (int, error) {
	enum, ok := m.store.(Enumerator)
	if !ok {
		return 0, fmt.Errorf("token: store does not support enumeration")
	}

	all, err := enum.All(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := m.now().Add(-m.ttl)
	swept := 0
	for _, t := range all {
		if t.CreatedAt.Before(cutoff) {
			if err := m.store.Delete(ctx, t.Key); err != nil {
				return swept, err
			}
			swept++
		}
	}

	return swept, nil
}
