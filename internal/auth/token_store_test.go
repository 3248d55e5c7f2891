package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmbridge/internal/cache"
)

func TestTokenStore_Revoke(t *testing.T) {
	mr := miniredis.RunT(t)
	client := cache.New(mr.Addr(), "", 0)
	defer client.Close()
	store := NewTokenStore(client)
	ctx := context.Background()

	revoked, err := store.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.RevokeToken(ctx, "jti-1", time.Hour))
	revoked, err = store.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.True(t, mr.Exists("revoked_token:jti-1"))

	mr.FastForward(2 * time.Hour)
	revoked, err = store.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked, "entry expires with the token")
}

func TestTokenStore_IgnoresEmptyAndExpired(t *testing.T) {
	mr := miniredis.RunT(t)
	client := cache.New(mr.Addr(), "", 0)
	defer client.Close()
	store := NewTokenStore(client)
	ctx := context.Background()

	require.NoError(t, store.RevokeToken(ctx, "", time.Hour))
	require.NoError(t, store.RevokeToken(ctx, "jti-2", 0))
	assert.Empty(t, mr.Keys())
}

func TestTokenStore_FailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client := cache.New(mr.Addr(), "", 0)
	defer client.Close()
	store := NewTokenStore(client)
	ctx := context.Background()

	require.NoError(t, store.RevokeToken(ctx, "jti-3", time.Hour))
	mr.Close()

	revoked, err := store.IsTokenRevoked(ctx, "jti-3")
	assert.NoError(t, err)
	assert.False(t, revoked)
}
