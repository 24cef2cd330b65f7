// internal/interfaces/http/handlers/auth.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/freshbasket/storefront/internal/domain/user"
	"github.com/freshbasket/storefront/internal/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	users     user.Repository
	passwords *auth.PasswordManager
	tokens    *auth.JWTManager
	logger    *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users user.Repository, passwords *auth.PasswordManager, tokens *auth.JWTManager, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is returned by login and refresh
type TokenResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	TokenType    string     `json:"token_type"`
	User         *user.User `json:"user"`
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	u, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			h.invalidCredentials(c)
			return
		}
		respondError(c, h.logger, err)
		return
	}

	if err := h.passwords.VerifyPassword(req.Password, u.Password); err != nil {
		h.invalidCredentials(c)
		return
	}

	h.issueTokens(c, u, "Login successful")
}

// RefreshToken trades a refresh token for a new token pair
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	claims, err := h.tokens.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid or expired refresh token",
		})
		return
	}

	// The role is read again so a demotion takes effect on refresh
	u, err := h.users.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired refresh token",
			})
			return
		}
		respondError(c, h.logger, err)
		return
	}

	h.issueTokens(c, u, "Token refreshed successfully")
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	u, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile retrieved successfully",
		"data":    u,
	})
}

func (h *AuthHandler) issueTokens(c *gin.Context, u *user.User, message string) {
	id := auth.Identity{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
	}

	access, err := h.tokens.GenerateAccessToken(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	refresh, err := h.tokens.GenerateRefreshToken(id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": message,
		"data": TokenResponse{
			AccessToken:  access,
			RefreshToken: refresh,
			TokenType:    "Bearer",
			User:         u,
		},
	})
}

func (h *AuthHandler) invalidCredentials(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error": "Invalid email or password",
	})
}
