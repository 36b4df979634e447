package token

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsabonet/milagre-car-site/internal/auth"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakePrincipals struct {
	byID map[string]*auth.Principal
}

func (f *fakePrincipals) GetByID(_ context.Context, id string) (*auth.Principal, error) {
	return f.byID[id], nil
}

func adminPrincipal() *auth.Principal {
	return &auth.Principal{
		ID:       "11111111-1111-1111-1111-111111111111",
		Username: "milagre_admin",
		IsActive: true,
		IsStaff:  true,
	}
}

func newTestManager(t *testing.T, p *auth.Principal) (*Manager, *MemoryStore, *fakeClock) {
	t.Helper()

	store := NewMemoryStore()
	clock := newFakeClock()
	principals := &fakePrincipals{byID: map[string]*auth.Principal{p.ID: p}}

	m := NewManager(store, principals, WithClock(clock.Now))
	return m, store, clock
}

func TestIssueLeavesExactlyOneLiveToken(t *testing.T) {
	p := adminPrincipal()
	m, store, _ := newTestManager(t, p)
	ctx := context.Background()

	t1, err := m.Issue(ctx, p)
	require.NoError(t, err)

	t2, err := m.Issue(ctx, p)
	require.NoError(t, err)
	require.NotEqual(t, t1.Key, t2.Key)

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, t2.Key, all[0].Key)

	// the loser of the re-issue stops resolving entirely
	_, err = m.Evaluate(ctx, t1.Key)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := m.Evaluate(ctx, t2.Key)
	require.NoError(t, err)
	assert.Equal(t, p.Username, got.Username)
}

func TestEvaluateTTLBoundary(t *testing.T) {
	p := adminPrincipal()
	m, store, clock := newTestManager(t, p)
	ctx := context.Background()

	tok, err := m.Issue(ctx, p)
	require.NoError(t, err)

	// one second inside the window: still valid
	clock.Advance(7*24*time.Hour - time.Second)
	_, err = m.Evaluate(ctx, tok.Key)
	require.NoError(t, err)

	// exactly at the boundary: age == TTL is still valid
	clock.Advance(time.Second)
	_, err = m.Evaluate(ctx, tok.Key)
	require.NoError(t, err)

	// one second past: expired, and deleted as a side effect
	clock.Advance(time.Second)
	_, err = m.Evaluate(ctx, tok.Key)
	require.ErrorIs(t, err, ErrExpired)

	stored, err := store.Get(ctx, tok.Key)
	require.NoError(t, err)
	assert.Nil(t, stored)

	// once deleted, the same key reports NotFound, not Expired
	_, err = m.Evaluate(ctx, tok.Key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRevokeIsIdempotent(t *testing.T) {
	p := adminPrincipal()
	m, _, _ := newTestManager(t, p)
	ctx := context.Background()

	tok, err := m.Issue(ctx, p)
	require.NoError(t, err)

	require.NoError(t, m.Revoke(ctx, tok.Key))
	require.NoError(t, m.Revoke(ctx, tok.Key))
	require.NoError(t, m.Revoke(ctx, "never-existed"))
}

func TestRenewInvalidatesPreviousKey(t *testing.T) {
	p := adminPrincipal()
	m, _, _ := newTestManager(t, p)
	ctx := context.Background()

	old, err := m.Issue(ctx, p)
	require.NoError(t, err)

	fresh, err := m.Renew(ctx, p)
	require.NoError(t, err)
	require.NotEqual(t, old.Key, fresh.Key)

	_, err = m.Evaluate(ctx, old.Key)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Evaluate(ctx, fresh.Key)
	assert.NoError(t, err)
}

func TestEvaluateTokenReturnsStoredToken(t *testing.T) {
	p := adminPrincipal()
	m, _, clock := newTestManager(t, p)
	ctx := context.Background()

	issued, err := m.Issue(ctx, p)
	require.NoError(t, err)

	got, stored, err := m.EvaluateToken(ctx, issued.Key)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, p.Username, got.Username)
	assert.Equal(t, issued.Key, stored.Key)
	assert.Equal(t, clock.Now(), stored.CreatedAt)

	// principal and token are never split: once revoked, both are gone
	require.NoError(t, m.Revoke(ctx, issued.Key))
	got, stored, err = m.EvaluateToken(ctx, issued.Key)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, got)
	assert.Nil(t, stored)
}

func TestEvaluateUnknownKey(t *testing.T) {
	p := adminPrincipal()
	m, _, _ := newTestManager(t, p)

	_, err := m.Evaluate(context.Background(), "no-such-key")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEvaluateOrphanedToken(t *testing.T) {
	p := adminPrincipal()
	store := NewMemoryStore()
	clock := newFakeClock()
	m := NewManager(store, &fakePrincipals{byID: map[string]*auth.Principal{}}, WithClock(clock.Now))

	tok, err := m.Issue(context.Background(), p)
	require.NoError(t, err)

	// owner no longer resolvable: the token is unusable
	_, err = m.Evaluate(context.Background(), tok.Key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConcurrentIssueLastWriterWins(t *testing.T) {
	p := adminPrincipal()
	m, store, _ := newTestManager(t, p)
	ctx := context.Background()

	var wg sync.WaitGroup
	keys := make([]string, 20)
	for i := range keys {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, err := m.Issue(ctx, p)
			if assert.NoError(t, err) {
				keys[i] = tok.Key
			}
		}(i)
	}
	wg.Wait()

	// the race is benign: no corruption, and the surviving token is one
	// of the issued keys
	all, err := store.All(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, all)

	survivors := 0
	for _, stored := range all {
		assert.Equal(t, p.ID, stored.PrincipalID)
		assert.Contains(t, keys, stored.Key)
		survivors++
	}
	assert.GreaterOrEqual(t, survivors, 1)
}

func TestSweepExpired(t *testing.T) {
	p := adminPrincipal()
	other := &auth.Principal{ID: "22222222-2222-2222-2222-222222222222", Username: "second", IsActive: true, IsStaff: true}

	store := NewMemoryStore()
	clock := newFakeClock()
	principals := &fakePrincipals{byID: map[string]*auth.Principal{p.ID: p, other.ID: other}}
	m := NewManager(store, principals, WithClock(clock.Now))

	ctx := context.Background()

	_, err := m.Issue(ctx, p)
	require.NoError(t, err)

	clock.Advance(8 * 24 * time.Hour)

	fresh, err := m.Issue(ctx, other)
	require.NoError(t, err)

	swept, err := m.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, fresh.Key, all[0].Key)
}

func TestMemoryStoreDeleteByPrincipal(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, Token{Key: "k1", PrincipalID: "p1", CreatedAt: time.Now()}))
	require.NoError(t, store.Create(ctx, Token{Key: "k2", PrincipalID: "p2", CreatedAt: time.Now()}))

	require.NoError(t, store.DeleteByPrincipal(ctx, "p1"))

	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.Get(ctx, "k2")
	require.NoError(t, err)
	require.NotNil(t, got)

	// deleting a principal with no token is fine
	require.NoError(t, store.DeleteByPrincipal(ctx, "p3"))
}

func TestGenerateKeyUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		key, err := GenerateKey()
		require.NoError(t, err)
		require.NotEmpty(t, key)
		require.False(t, seen[key])
		seen[key] = true
	}
}
