package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/apperrors"
	"github.com/mrlokans/bookstore/internal/entities"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyIsStaff  = "auth_is_staff"
	ContextKeyAuthType = "auth_type"
)

// AuthType indicates how the user was authenticated
type AuthType string

const (
	AuthTypeNone    AuthType = "none"
	AuthTypeSession AuthType = "session"
	AuthTypeBearer  AuthType = "bearer"
)

// AnonymousUserID is reported for requests without valid credentials.
const AnonymousUserID = uint(0)

// Middleware resolves the caller of each request.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
}

// NewMiddleware creates a new authentication middleware. sessionManager may
// be nil, in which case only bearer tokens are accepted.
func NewMiddleware(service *Service, sessionManager *SessionManager) *Middleware {
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
	}
}

// Handler identifies the caller from a bearer token or the session cookie.
// Requests without valid credentials continue as anonymous; an invalid
// bearer token is rejected outright.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			user, err := m.service.ValidateToken(c.Request.Context(), token)
			if err != nil {
				abortWithError(c, apperrors.ErrUnauthorized.WithDetails(map[string]string{"token": err.Error()}))
				return
			}
			setUserContext(c, user, AuthTypeBearer)
			c.Next()
			return
		}

		if user := m.trySessionAuth(c); user != nil {
			setUserContext(c, user, AuthTypeSession)
			c.Next()
			return
		}

		c.Set(ContextKeyUserID, AnonymousUserID)
		c.Set(ContextKeyAuthType, AuthTypeNone)
		c.Next()
	}
}

func (m *Middleware) trySessionAuth(c *gin.Context) *entities.User {
	if m.sessionManager == nil {
		return nil
	}

	userID := m.sessionManager.GetUserID(c.Request)
	if userID == 0 {
		return nil
	}

	// The user may have been deleted since the session was created.
	user, err := m.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		return nil
	}
	return user
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func setUserContext(c *gin.Context, user *entities.User, authType AuthType) {
	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyIsStaff, user.IsStaff)
	c.Set(ContextKeyAuthType, authType)
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == AnonymousUserID {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// RequireStaff rejects anonymous requests with 401 and non-staff users with 403.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == AnonymousUserID {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}
		if !IsStaff(c) {
			abortWithError(c, apperrors.PermissionDenied())
			return
		}
		c.Next()
	}
}

func abortWithError(c *gin.Context, err *apperrors.Error) {
	body := gin.H{"error": err.Message, "code": err.Code}
	if len(err.Details) > 0 {
		body["details"] = err.Details
	}
	c.AbortWithStatusJSON(err.HTTPStatus(), body)
}

// GetUserID returns the authenticated user's ID, or AnonymousUserID.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return AnonymousUserID
}

// IsStaff reports whether the authenticated user is staff.
func IsStaff(c *gin.Context) bool {
	return c.GetBool(ContextKeyIsStaff)
}

// GetAuthType returns how the request was authenticated.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}

