package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swas/backend/internal/infrastructure/auth"
)

func TestInMemoryTokenBlacklist_Revoke(t *testing.T) {
	bl := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Hour))

	revoked, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_RevokeExpires(t *testing.T) {
	bl := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, bl.Revoke(ctx, "jti-short", time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	revoked, err := bl.IsRevoked(ctx, "jti-short")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_RevokeIgnoresExpiredToken(t *testing.T) {
	bl := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()

	require.NoError(t, bl.Revoke(ctx, "jti-dead", 0))
	revoked, err := bl.IsRevoked(ctx, "jti-dead")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemoryTokenBlacklist_RevokeUser(t *testing.T) {
	bl := auth.NewInMemoryTokenBlacklist()
	ctx := context.Background()
	issuedBefore := time.Now().Add(-time.Hour)

	revoked, err := bl.IsUserRevoked(ctx, "staff1", issuedBefore)
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, bl.RevokeUser(ctx, "staff1", time.Hour))

	revoked, err = bl.IsUserRevoked(ctx, "staff1", issuedBefore)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = bl.IsUserRevoked(ctx, "staff1", time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, revoked, "tokens issued after the revocation stay valid")

	revoked, err = bl.IsUserRevoked(ctx, "staff2", issuedBefore)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestCheckClaims(t *testing.T) {
	ctx := context.Background()
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       "jti-9",
			IssuedAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		UserID: "staff1",
	}

	t.Run("nil blacklist", func(t *testing.T) {
		assert.NoError(t, auth.CheckClaims(ctx, nil, claims))
	})

	t.Run("clean token", func(t *testing.T) {
		assert.NoError(t, auth.CheckClaims(ctx, auth.NewInMemoryTokenBlacklist(), claims))
	})

	t.Run("revoked jti", func(t *testing.T) {
		bl := auth.NewInMemoryTokenBlacklist()
		require.NoError(t, bl.Revoke(ctx, "jti-9", time.Hour))
		assert.ErrorIs(t, auth.CheckClaims(ctx, bl, claims), auth.ErrTokenBlacklisted)
	})

	t.Run("revoked user", func(t *testing.T) {
		bl := auth.NewInMemoryTokenBlacklist()
		require.NoError(t, bl.RevokeUser(ctx, "staff1", time.Hour))
		assert.ErrorIs(t, auth.CheckClaims(ctx, bl, claims), auth.ErrTokenBlacklisted)
	})
}

func TestTokenBlacklist_Implementations(t *testing.T) {
	var _ auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	var _ auth.TokenBlacklist = (*auth.RedisTokenBlacklist)(nil)
}
