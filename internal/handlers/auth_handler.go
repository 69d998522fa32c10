package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kdd-community/website-backend/internal/middleware"
	"github.com/kdd-community/website-backend/internal/services"
)

// AuthHandler handles admin elevation HTTP requests
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// VerifyAdminPassword handles POST /auth/admin/verify
func (h *AuthHandler) VerifyAdminPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required"})
		return
	}

	result := h.authService.VerifyAdminPassword(c, middleware.Token(c), req.Password)
	c.JSON(statusFor(result), result)
}

// StepDownAsAdmin handles POST /auth/admin/step-down
func (h *AuthHandler) StepDownAsAdmin(c *gin.Context) {
	result := h.authService.StepDownAsAdmin(c, middleware.Token(c))
	c.JSON(statusFor(result), result)
}
