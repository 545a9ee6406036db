package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookstore/internal/apperrors"
	"github.com/mrlokans/bookstore/internal/auth"
	"github.com/mrlokans/bookstore/internal/catalog"
)

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    apperrors.Code    `json:"code,omitempty"`    // machine-readable error code
	Details map[string]string `json:"details,omitempty"` // field -> message for validation errors
}

// actorFrom builds the catalog actor from the auth middleware's context values.
func actorFrom(c *gin.Context) catalog.Actor {
	return catalog.Actor{ID: auth.GetUserID(c), IsStaff: auth.IsStaff(c)}
}

// --- Error Response Helpers ---

// respondError maps err to its HTTP status. Domain errors are returned with
// their message and details; anything else is logged and hidden behind a
// generic 500.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := apperrors.StatusOf(err)
	var appErr *apperrors.Error
	if status != http.StatusInternalServerError && errors.As(err, &appErr) {
		c.AbortWithStatusJSON(status, ErrorResponse{
			Error:   appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		})
		return
	}

	respondInternalError(c, logger, err)
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, logger *slog.Logger, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("internal error",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"request_id", c.GetString(requestIDKey),
		"error", err,
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// --- Request Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
func parseIDParam(c *gin.Context, paramName string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.NotFound(paramName)
	}
	return uint(id), nil
}

// bindJSON decodes the request body into dst. Field decoders that report a
// domain error keep it; any other failure becomes a validation error on the
// "body" field.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Validation("body", "Invalid JSON body").WithCause(err)
}
