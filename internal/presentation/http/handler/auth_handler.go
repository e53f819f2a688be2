package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/kevmuri/bookstore-api/internal/application/service"
	"github.com/kevmuri/bookstore-api/internal/presentation/http/dto/request"
	"github.com/kevmuri/bookstore-api/internal/presentation/http/dto/response"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	output, err := h.authService.Login(c.Request.Context(), &service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Login successful", gin.H{
		"user":          output.User,
		"access_token":  output.AccessToken,
		"refresh_token": output.RefreshToken,
	})
}

// Refresh handles access token refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req request.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	output, err := h.authService.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Token refreshed successfully", gin.H{
		"access_token":  output.AccessToken,
		"refresh_token": output.RefreshToken,
	})
}

// Profile returns the authenticated user's profile
func (h *AuthHandler) Profile(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	user, err := h.authService.GetProfile(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Profile retrieved successfully", user)
}
