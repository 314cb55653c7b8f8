// Package handlers exposes the booking engine over HTTP.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"skybook/internal/cache"
	apperrors "skybook/internal/errors"
	"skybook/internal/service"
)

type Handlers struct {
	services *service.Services
	valkey   *cache.ValkeyClient
}

// New creates handlers. valkey may be nil; flight listings are then served
// uncached.
func New(services *service.Services, valkey *cache.ValkeyClient) *Handlers {
	return &Handlers{
		services: services,
		valkey:   valkey,
	}
}

// respondError maps the service error taxonomy onto HTTP statuses. Lock
// timeouts come back 503 so clients know the request is safe to retry.
func respondError(c *gin.Context, err error) {
	c.Error(err)

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.IsRetryable(err):
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "operation timed out waiting for seat inventory, retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
