package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "focussync/internal/errors"
	"focussync/internal/middleware"
	"focussync/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type credentialsCall func(ctx context.Context, email, password string) (*service.AuthResult, *apperrors.APIError)

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	h.exchangeCredentials(c, http.StatusCreated, h.authService.Register)
}

func (h *AuthHandler) Login(c *gin.Context) {
	h.exchangeCredentials(c, http.StatusOK, h.authService.Login)
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, apiErr := h.authService.CurrentUser(c.Request.Context(), middleware.UserID(c))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AuthHandler) exchangeCredentials(c *gin.Context, status int, call credentialsCall) {
	var req credentialsRequest
	if !bindJSON(c, &req) {
		return
	}

	result, apiErr := call(c.Request.Context(), req.Email, req.Password)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(status, result)
}
