package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swas/backend/internal/infrastructure/config"
)

const (
	accessSecret  = "swas-access-secret-0123456789abcdef"
	refreshSecret = "swas-refresh-secret-0123456789abcdef"
)

func jwtConfig(mutate ...func(*config.JWTConfig)) config.JWTConfig {
	cfg := config.JWTConfig{
		Secret:                 accessSecret,
		RefreshSecret:          refreshSecret,
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "swas-test",
		MaxRefreshCount:        10,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	return cfg
}

// sharedSecret signs both token kinds with one key so only the type claim tells them apart
func sharedSecret(c *config.JWTConfig) { c.RefreshSecret = c.Secret }

var counterStaff = GenerateTokenInput{BranchID: "SMVAL-B-NCR", UserID: "SMVAL-STAFF-1", Position: "staff"}

func issue(t *testing.T, svc *JWTService, in GenerateTokenInput) *TokenPair {
	t.Helper()
	pair, err := svc.GenerateTokenPair(in)
	require.NoError(t, err)
	return pair
}

func TestNewJWTService_RefreshSecretFallsBackToAccessSecret(t *testing.T) {
	svc := NewJWTService(jwtConfig(func(c *config.JWTConfig) { c.RefreshSecret = "" }))
	assert.Equal(t, []byte(accessSecret), svc.refreshSecret)
	assert.Equal(t, 15*time.Minute, svc.GetAccessTokenExpiration())
	assert.Equal(t, 7*24*time.Hour, svc.GetRefreshTokenExpiration())
}

func TestGenerateTokenPair_CarriesBranchScope(t *testing.T) {
	svc := NewJWTService(jwtConfig())
	before := time.Now()
	pair := issue(t, svc, counterStaff)

	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))
	assert.WithinDuration(t, before.Add(15*time.Minute), pair.AccessTokenExpiresAt, 5*time.Second)

	access, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "SMVAL-B-NCR", access.BranchID)
	assert.Equal(t, "SMVAL-STAFF-1", access.Subject)
	assert.Equal(t, "staff", access.Position)
	assert.Equal(t, "swas-test", access.Issuer)
	assert.False(t, access.IsSuperadmin())
	assert.Greater(t, access.GetRemainingTTL(), 14*time.Minute)
	assert.False(t, access.GetIssuedAtTime().IsZero())

	// Refresh tokens carry no position; it is re-read on rotation
	refresh, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refresh.TokenType)
	assert.Empty(t, refresh.Position)
	assert.Zero(t, refresh.RefreshCount)
}

func TestValidateAccessToken_Rejections(t *testing.T) {
	signer := NewJWTService(jwtConfig(sharedSecret))
	good := issue(t, signer, counterStaff)
	expired := issue(t, NewJWTService(jwtConfig(func(c *config.JWTConfig) { c.AccessTokenExpiration = -time.Hour })), counterStaff)
	noBranch := issue(t, signer, GenerateTokenInput{UserID: "SMVAL-STAFF-1", Position: "staff"})
	noUser := issue(t, signer, GenerateTokenInput{BranchID: "SMVAL-B-NCR", Position: "staff"})

	tests := []struct {
		name    string
		svc     *JWTService
		token   string
		wantErr error
	}{
		{"garbage", signer, "not-a-jwt", ErrInvalidToken},
		{"expired", signer, expired.AccessToken, ErrExpiredToken},
		{"refresh token used as access", signer, good.RefreshToken, ErrInvalidTokenType},
		{"missing branch", signer, noBranch.AccessToken, ErrMissingBranchID},
		{"missing user", signer, noUser.AccessToken, ErrMissingUserID},
		{"foreign key", NewJWTService(jwtConfig(func(c *config.JWTConfig) { c.Secret = "another-shop-secret-0123456789abc" })), good.AccessToken, ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateRefreshToken_RejectsAccessToken(t *testing.T) {
	svc := NewJWTService(jwtConfig(sharedSecret))
	pair := issue(t, svc, counterStaff)

	_, err := svc.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)

	_, err = svc.RefreshTokenPair(pair.AccessToken, "staff")
	assert.ErrorIs(t, err, ErrInvalidTokenType)

	_, err = svc.RefreshTokenPair("not-a-jwt", "staff")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenPair_PromotionTakesEffect(t *testing.T) {
	svc := NewJWTService(jwtConfig())
	pair := issue(t, svc, counterStaff)

	rotated, err := svc.RefreshTokenPair(pair.RefreshToken, "admin")
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	access, err := svc.ValidateAccessToken(rotated.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", access.Position)
	assert.Equal(t, "SMVAL-B-NCR", access.BranchID)
}

func TestRefreshTokenPair_CountsRotationsUpToLimit(t *testing.T) {
	svc := NewJWTService(jwtConfig(func(c *config.JWTConfig) { c.MaxRefreshCount = 2 }))
	pair := issue(t, svc, counterStaff)

	for want := 1; want <= 2; want++ {
		var err error
		pair, err = svc.RefreshTokenPair(pair.RefreshToken, "staff")
		require.NoError(t, err)
		claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, want, claims.RefreshCount)
	}

	_, err := svc.RefreshTokenPair(pair.RefreshToken, "staff")
	assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
}

func TestClaims_IsSuperadmin(t *testing.T) {
	tests := []struct {
		claims Claims
		want   bool
	}{
		{Claims{Position: "superadmin", UserID: "owner"}, true},
		{Claims{Position: "admin", UserID: "SWAS-SUPERADMIN"}, true},
		{Claims{Position: "admin", UserID: "SMVAL-ADMIN"}, false},
		{Claims{Position: "staff", UserID: "VAL-STAFF-2"}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.claims.IsSuperadmin(), tt.claims.UserID)
	}
}
