package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/scrumboard-api/internal/auth"
	"github.com/yukikurage/scrumboard-api/internal/constants"
	"github.com/yukikurage/scrumboard-api/internal/dto"
	apierrors "github.com/yukikurage/scrumboard-api/internal/errors"
	"github.com/yukikurage/scrumboard-api/internal/middleware"
	"github.com/yukikurage/scrumboard-api/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	tokens      *auth.TokenManager
	tokenTTL    time.Duration
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, tokens *auth.TokenManager, tokenTTL time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokens:      tokens,
		tokenTTL:    tokenTTL,
		logger:      logger,
	}
}

// Signup registers a new user.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		Username string `json:"username" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Username, email and password are required")
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), services.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondMessage(c, http.StatusCreated, "User registered successfully", gin.H{"user": dto.ToUserDTO(*user)})
}

// Login authenticates a user by username or email, initializes the session
// and issues a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Identifier string `json:"identifier" binding:"required"`
		Password   string `json:"password" binding:"required"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Identifier and password are required")
		return
	}

	user, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		Identifier: req.Identifier,
		Password:   req.Password,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.ContextKeyUserID, user.ID)
	if err := session.Save(); err != nil {
		h.logger.Error("failed to save session", "user_id", user.ID, "error", err)
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	token, err := h.tokens.GenerateToken(user)
	if err != nil {
		h.logger.Error("failed to sign token", "user_id", user.ID, "error", err)
		apierrors.InternalError(c, "Failed to issue token")
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Success:   true,
		Message:   "Logged in successfully",
		User:      dto.ToUserDTO(*user),
		Token:     token,
		ExpiresAt: time.Now().Add(h.tokenTTL),
	})
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	respondMessage(c, http.StatusOK, "Logged out successfully", nil)
}

// GetCurrentUser returns the authenticated user.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": dto.ToUserDTO(*user)})
}
