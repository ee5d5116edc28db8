package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/infrastructure/auth"
	"github.com/swas/backend/internal/infrastructure/logger"
	"github.com/swas/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey    = "jwt_claims"
	ScopeKey        = "branch_scope"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
	QueryTokenParam = "token"
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService is required for token validation
	JWTService *auth.JWTService
	// TokenBlacklist is optional; nil skips revocation checks
	TokenBlacklist auth.TokenBlacklist
	// AllowQueryToken accepts ?token= when no header is present.
	// Browsers cannot set headers on a WebSocket handshake.
	AllowQueryToken bool
	Logger          *zap.Logger
}

// JWTAuth validates the bearer token and stores the caller's claims and
// branch scope in the gin context.
func JWTAuth(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		tokenString, err := extractToken(c, cfg.AllowQueryToken)
		if err != nil {
			abortUnauthorized(c, cfg.Logger, err)
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			abortUnauthorized(c, cfg.Logger, err)
			return
		}

		if err := auth.CheckClaims(c.Request.Context(), cfg.TokenBlacklist, claims); err != nil {
			if errors.Is(err, auth.ErrTokenBlacklisted) {
				abortUnauthorized(c, cfg.Logger, err)
				return
			}
			// Fail open: a blacklist outage must not lock every user out
			cfg.Logger.Error("Failed to check token blacklist",
				zap.String("user_id", claims.UserID), zap.Error(err))
		}

		scope := shared.Scope{BranchID: claims.BranchID, Superadmin: claims.IsSuperadmin()}
		c.Set(JWTClaimsKey, claims)
		c.Set(ScopeKey, scope)
		c.Set(logger.GinUserIDKey, claims.UserID)
		c.Set(logger.GinBranchIDKey, claims.BranchID)

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, log = logger.WithUserID(ctx, log, claims.UserID)
		ctx, _ = logger.WithBranchID(ctx, log, claims.BranchID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func extractToken(c *gin.Context, allowQuery bool) (string, error) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" {
		if allowQuery {
			if token := c.Query(QueryTokenParam); token != "" {
				return token, nil
			}
		}
		return "", auth.ErrInvalidToken
	}
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", auth.ErrInvalidToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	if token == "" {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error) {
	log.Debug("JWT authentication failed", zap.Error(err), zap.String("path", c.Request.URL.Path))

	code, message := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, message = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenBlacklisted):
		code, message = dto.ErrCodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidTokenType), errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidClaims), errors.Is(err, auth.ErrMissingBranchID),
		errors.Is(err, auth.ErrMissingUserID):
		code, message = dto.ErrCodeTokenInvalid, "Invalid token"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetScope returns the caller's branch scope. Without authentication the
// scope is pinned to an impossible branch so nothing leaks.
func GetScope(c *gin.Context) shared.Scope {
	if v, ok := c.Get(ScopeKey); ok {
		if scope, ok := v.(shared.Scope); ok {
			return scope
		}
	}
	return shared.BranchScope("-")
}

// GetUserID retrieves the user ID from JWT claims in context
func GetUserID(c *gin.Context) string {
	if claims := GetJWTClaims(c); claims != nil {
		return claims.UserID
	}
	return ""
}

// RequireSuperadmin rejects callers whose scope is limited to one branch
func RequireSuperadmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetScope(c).Superadmin {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Superadmin access required", GetRequestID(c)))
			return
		}
		c.Next()
	}
}
