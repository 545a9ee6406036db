package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/apperrors"
	"github.com/mrlokans/bookstore/internal/entities"
)

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	IsStaff   bool   `json:"is_staff"`
}

func newUserResponse(u *entities.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		IsStaff:   u.IsStaff,
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthController handles the authentication endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	rateLimiter    *RateLimiter
	logger         *slog.Logger
}

// NewAuthController creates a new authentication controller. rateLimiter may
// be nil to disable login throttling.
func NewAuthController(service *Service, sessionManager *SessionManager, rateLimiter *RateLimiter, logger *slog.Logger) *AuthController {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		rateLimiter:    rateLimiter,
		logger:         logger,
	}
}

// RegisterRoutes registers the authentication routes under group.
func (ac *AuthController) RegisterRoutes(group *gin.RouterGroup) {
	login := []gin.HandlerFunc{ac.Login}
	if ac.rateLimiter != nil {
		login = append([]gin.HandlerFunc{ac.rateLimiter.Middleware()}, login...)
	}
	group.POST("/login", login...)
	group.POST("/logout", ac.Logout)
	group.GET("/me", RequireAuth(), ac.Me)
	group.POST("/token", RequireAuth(), ac.CreateToken)
	group.DELETE("/token", RequireAuth(), ac.RevokeToken)
}

// Login checks credentials and starts a session.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, apperrors.Validation("credentials", "Username and password are required."))
		return
	}

	user, err := ac.service.Authenticate(c.Request.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		ac.logger.Info("login failed", "username", req.Username, "ip", c.ClientIP())
		abortWithError(c, &apperrors.Error{Code: apperrors.CodeUnauthorized, Message: err.Error()})
		return
	case errors.Is(err, ErrAccountLocked):
		abortWithError(c, &apperrors.Error{Code: apperrors.CodeTooManyRequests, Message: err.Error()})
		return
	case err != nil:
		ac.logger.Error("login error", "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if ac.sessionManager != nil {
		if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
			ac.logger.Error("failed to create session", "user_id", user.ID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
	}
	if ac.rateLimiter != nil {
		ac.rateLimiter.Reset(c.ClientIP())
	}

	ac.logger.Info("user logged in", "user_id", user.ID)
	c.JSON(http.StatusOK, newUserResponse(user))
}

// Logout ends the current session. It succeeds for anonymous callers too.
func (ac *AuthController) Logout(c *gin.Context) {
	if ac.sessionManager != nil {
		if err := ac.sessionManager.DestroySession(c.Request); err != nil {
			ac.logger.Error("failed to destroy session", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
	}
	c.Status(http.StatusNoContent)
}

// Me returns the authenticated user.
func (ac *AuthController) Me(c *gin.Context) {
	user, err := ac.service.GetUserByID(c.Request.Context(), GetUserID(c))
	if err != nil {
		abortWithError(c, apperrors.ErrUnauthorized)
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

// CreateToken issues an API token. The plaintext is returned only here.
func (ac *AuthController) CreateToken(c *gin.Context) {
	token, err := ac.service.GenerateToken(c.Request.Context(), GetUserID(c))
	if err != nil {
		ac.logger.Error("failed to generate token", "user_id", GetUserID(c), "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": token})
}

// RevokeToken removes the caller's API token.
func (ac *AuthController) RevokeToken(c *gin.Context) {
	if err := ac.service.RevokeToken(c.Request.Context(), GetUserID(c)); err != nil {
		ac.logger.Error("failed to revoke token", "user_id", GetUserID(c), "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.Status(http.StatusNoContent)
}
