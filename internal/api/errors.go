package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

// statusFor maps a service error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateMembership),
		errors.Is(err, service.ErrNotAMember),
		errors.Is(err, service.ErrSelfFollowForbidden),
		errors.Is(err, service.ErrAlreadyFollowing),
		errors.Is(err, service.ErrNotFollowing),
		errors.Is(err, service.ErrDuplicateRecipe),
		errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrEmptyCollection):
		return http.StatusNoContent
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error body. Unexpected errors are logged
// and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusNoContent:
		c.Status(status)
		return
	case http.StatusInternalServerError:
		logging.Ctx(c.Request.Context()).Error().Err(err).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.AbortWithStatusJSON(status, middleware.ErrorResponse{Error: "Internal Server Error"})
		return
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.AbortWithStatusJSON(status, gin.H{"error": verr.Message, "field": verr.Field})
		return
	}
	c.AbortWithStatusJSON(status, middleware.ErrorResponse{Error: err.Error()})
}

func badRequest(c *gin.Context, field, message string) {
	respondError(c, &service.ValidationError{Field: field, Message: message})
}
