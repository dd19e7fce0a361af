package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/healthyrecipes/backend/internal/middleware"
	"github.com/healthyrecipes/backend/internal/mocks"
	"github.com/healthyrecipes/backend/internal/service"
	"github.com/healthyrecipes/backend/internal/types"
)

func newAuthRouter(auth *mocks.MockAuthService) *gin.Engine {
	router := gin.New()
	v1 := router.Group("/api/v1")
	protected := v1.Group("", middleware.AuthMiddleware(auth))
	NewAuthHandler(auth, zap.NewNop()).RegisterRoutes(v1, protected)
	return router
}

func TestRegister(t *testing.T) {
	auth := new(mocks.MockAuthService)
	auth.On("Register", mock.Anything, &types.RegisterRequest{Name: "Sam", Email: "sam@example.com", Password: "secret123"}).
		Return(&types.AuthResponse{Token: "tok", UserID: "u1"}, nil)

	w := performRequest(t, newAuthRouter(auth), http.MethodPost, "/api/v1/auth/register",
		map[string]string{"name": "Sam", "email": "sam@example.com", "password": "secret123"})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"token":"tok","user_id":"u1"}`, w.Body.String())
}

func TestRegisterMissingFields(t *testing.T) {
	auth := new(mocks.MockAuthService)

	w := performRequest(t, newAuthRouter(auth), http.MethodPost, "/api/v1/auth/register",
		map[string]string{"email": "sam@example.com"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	auth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestLoginFailure(t *testing.T) {
	auth := new(mocks.MockAuthService)
	auth.On("Login", mock.Anything, "sam@example.com", "wrong").
		Return(nil, fmt.Errorf("%w: invalid credentials", service.ErrUnauthenticated))

	w := performRequest(t, newAuthRouter(auth), http.MethodPost, "/api/v1/auth/login",
		types.LoginRequest{Email: "sam@example.com", Password: "wrong"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"unauthenticated"}`, w.Body.String())
}

func TestDeleteAccount(t *testing.T) {
	auth := new(mocks.MockAuthService)
	userID := uuid.New()
	auth.On("ValidateToken", mock.Anything, "tok").Return(&types.TokenClaims{UserID: userID}, nil)
	auth.On("DeleteAccount", mock.Anything, userID).Return(nil).Once()

	router := newAuthRouter(auth)
	req := newAuthedRequest(http.MethodDelete, "/api/v1/account", "tok")
	w := serve(router, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	auth.AssertExpectations(t)
}

func TestDeleteAccountPartialFailure(t *testing.T) {
	auth := new(mocks.MockAuthService)
	userID := uuid.New()
	auth.On("ValidateToken", mock.Anything, "tok").Return(&types.TokenClaims{UserID: userID}, nil)
	auth.On("DeleteAccount", mock.Anything, userID).Return(fmt.Errorf("failed to delete identity: %w", service.ErrStoreUnavailable))

	w := serve(newAuthRouter(auth), newAuthedRequest(http.MethodDelete, "/api/v1/account", "tok"))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestForgotPassword(t *testing.T) {
	auth := new(mocks.MockAuthService)
	auth.On("RequestPasswordReset", mock.Anything, "sam@example.com").Return(nil).Once()

	w := performRequest(t, newAuthRouter(auth), http.MethodPost, "/api/v1/auth/forgot-password",
		types.ForgotPasswordRequest{Email: "sam@example.com"})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "reset link has been sent")
	auth.AssertExpectations(t)
}

func TestForgotPasswordRequiresEmail(t *testing.T) {
	auth := new(mocks.MockAuthService)

	w := performRequest(t, newAuthRouter(auth), http.MethodPost, "/api/v1/auth/forgot-password", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"email"`)
	auth.AssertNotCalled(t, "RequestPasswordReset", mock.Anything, mock.Anything)
}

func TestResetPassword(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"updated", nil, http.StatusOK},
		{"used or expired token", fmt.Errorf("%w: reset token already used", service.ErrUnauthenticated), http.StatusUnauthorized},
		{"short password", &service.ValidationError{Field: "password", Message: "must be between 6 and 72 characters"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := new(mocks.MockAuthService)
			auth.On("ResetPassword", mock.Anything, "reset-tok", "new-secret").Return(tt.err).Once()

			w := performRequest(t, newAuthRouter(auth), http.MethodPost, "/api/v1/auth/reset-password",
				types.ResetPasswordRequest{Token: "reset-tok", Password: "new-secret"})

			assert.Equal(t, tt.wantStatus, w.Code)
			auth.AssertExpectations(t)
		})
	}
}
