package auth

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/davidnrm/critiq/internal/cache"
	"github.com/davidnrm/critiq/internal/database/testutil"
	"github.com/davidnrm/critiq/internal/models"
)

func newTestSessionCache(t *testing.T) SessionCache {
	t.Helper()

	srv := miniredis.RunT(t)
	store, err := cache.NewRedisStore(cache.RedisConfig{Address: srv.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})

	return NewSessionCache(store)
}

func TestSessionCacheRoundTrip(t *testing.T) {
	sc := newTestSessionCache(t)
	ctx := context.Background()

	session := &models.Session{ID: "s-1", UserID: "u-1", UserAgent: "agent", Valid: true}
	require.NoError(t, sc.Set(ctx, session))

	cached, err := sc.Get(ctx, "s-1")
	require.NoError(t, err)
	require.Equal(t, session.ID, cached.ID)
	require.Equal(t, session.UserID, cached.UserID)
	require.True(t, cached.Valid)

	require.NoError(t, sc.Delete(ctx, "s-1"))

	_, err = sc.Get(ctx, "s-1")
	require.ErrorIs(t, err, errSessionCacheMiss)
}

func TestSessionCacheMissOnUnknownID(t *testing.T) {
	sc := newTestSessionCache(t)

	_, err := sc.Get(context.Background(), "unknown")
	require.ErrorIs(t, err, errSessionCacheMiss)

	_, err = sc.Get(context.Background(), "")
	require.ErrorIs(t, err, errSessionCacheMiss)
}

func TestSessionServiceReadsThroughCache(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	tokens := newTestTokenService(t, nil)

	verifier, err := NewCredentialVerifier(db, CredentialsConfig{WorkFactor: 4})
	require.NoError(t, err)

	sc := newTestSessionCache(t)
	svc, err := NewSessionService(db, tokens, verifier, SessionConfig{Cache: sc})
	require.NoError(t, err)

	ctx := context.Background()
	user, err := verifier.Register(ctx, "Agus", "cache@x.com", "secret123")
	require.NoError(t, err)

	session, err := svc.CreateSession(ctx, user.ID, "agent")
	require.NoError(t, err)

	// CreateSession warms the cache.
	cached, err := sc.Get(ctx, session.ID)
	require.NoError(t, err)
	require.Equal(t, session.ID, cached.ID)

	// Logout drops the entry so a stale valid=true copy cannot be served.
	require.NoError(t, svc.Logout(ctx, session.ID))
	_, err = sc.Get(ctx, session.ID)
	require.ErrorIs(t, err, errSessionCacheMiss)
}
