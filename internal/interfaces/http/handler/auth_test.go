package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/swas/backend/internal/application/identity"
	"github.com/swas/backend/internal/domain/shared"
	"github.com/swas/backend/internal/interfaces/http/dto"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Login(ctx context.Context, input identity.LoginInput) (*identity.LoginResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.LoginResult), args.Error(1)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*identity.RefreshTokenResult, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.RefreshTokenResult), args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, input identity.LogoutInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, userID string) (*identity.UserDTO, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserDTO), args.Error(1)
}

func TestAuthHandler_Login(t *testing.T) {
	svc := new(mockAuthService)
	h := NewAuthHandler(svc)
	r := newTestRouter(caller{})
	r.POST("/auth/login", h.Login)

	svc.On("Login", mock.Anything, mock.MatchedBy(func(in identity.LoginInput) bool {
		return in.UserID == "SMVAL-STAFF" && in.Password == "secret-pass" && in.IP != ""
	})).Return(&identity.LoginResult{
		AccessToken: "access",
		TokenType:   "Bearer",
		User:        identity.UserDTO{UserID: "SMVAL-STAFF", BranchID: "SMVAL-B-NCR", Position: "staff"},
	}, nil).Once()

	w := doRequest(t, r, http.MethodPost, "/auth/login", LoginRequest{UserID: "SMVAL-STAFF", Password: "secret-pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decode(t, w)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"access_token":"access"`)
	assert.Contains(t, string(env.Data), `"branch_id":"SMVAL-B-NCR"`)
	svc.AssertExpectations(t)
}

func TestAuthHandler_Login_WrongCredentials(t *testing.T) {
	svc := new(mockAuthService)
	h := NewAuthHandler(svc)
	r := newTestRouter(caller{})
	r.POST("/auth/login", h.Login)

	svc.On("Login", mock.Anything, mock.Anything).
		Return(nil, shared.NewDomainError("UNAUTHORIZED", "Invalid user id or password")).Once()

	w := doRequest(t, r, http.MethodPost, "/auth/login", LoginRequest{UserID: "nobody", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, dto.ErrCodeUnauthorized, env.Error.Code)
	assert.Equal(t, "Invalid user id or password", env.Error.Message)
}

func TestAuthHandler_Login_MalformedBody(t *testing.T) {
	svc := new(mockAuthService)
	h := NewAuthHandler(svc)
	r := newTestRouter(caller{})
	r.POST("/auth/login", h.Login)

	w := doRequest(t, r, http.MethodPost, "/auth/login", `{"user_id":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestAuthHandler_Logout_RevokesCurrentToken(t *testing.T) {
	svc := new(mockAuthService)
	h := NewAuthHandler(svc)
	r := newTestRouter(staffCaller)
	r.POST("/auth/logout", h.Logout)

	svc.On("Logout", mock.Anything, mock.MatchedBy(func(in identity.LogoutInput) bool {
		return in.UserID == staffCaller.userID && in.TokenJTI == "jti-1" &&
			in.TTL > 0 && in.TTL <= 10*time.Minute
	})).Return(nil).Once()

	w := doRequest(t, r, http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestAuthHandler_Refresh_Expired(t *testing.T) {
	svc := new(mockAuthService)
	h := NewAuthHandler(svc)
	r := newTestRouter(caller{})
	r.POST("/auth/refresh", h.RefreshToken)

	svc.On("RefreshToken", mock.Anything, "old").
		Return(nil, shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")).Once()

	w := doRequest(t, r, http.MethodPost, "/auth/refresh", RefreshTokenRequest{RefreshToken: "old"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenExpired, decode(t, w).Error.Code)
}
