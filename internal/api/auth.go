package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/healthyrecipes/backend/internal/logger"
	"github.com/healthyrecipes/backend/internal/middleware"
	"github.com/healthyrecipes/backend/internal/service"
	"github.com/healthyrecipes/backend/internal/types"
)

type AuthHandler struct {
	authService service.IAuthService
	log         *zap.Logger
}

func NewAuthHandler(authService service.IAuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         logger.Component(log, "auth"),
	}
}

// RegisterRoutes mounts the credential endpoints on public and account deletion on protected
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	auth := public.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/forgot-password", h.ForgotPassword)
		auth.POST("/reset-password", h.ResetPassword)
	}
	protected.DELETE("/account", h.DeleteAccount)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, "body", "name, email and password are required")
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, "body", "email and password are required")
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ForgotPassword always answers 202 for a well-formed email whether or not the account exists
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req types.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, "email", "is required")
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, types.MessageResponse{
		Message: "If an account exists for that email, a reset link has been sent",
	})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req types.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, "body", "token and password are required")
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.MessageResponse{Message: "Password updated"})
}

// DeleteAccount erases the caller's recipes, profile, avatar and identity
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		middleware.RespondError(c, service.ErrUnauthenticated)
		return
	}

	if err := h.authService.DeleteAccount(c.Request.Context(), userID); err != nil {
		h.log.Error("account deletion failed", zap.String("user_id", userID.String()), zap.Error(err))
		middleware.RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
