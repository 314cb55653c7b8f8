package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skybook/internal/models"
)

// CreatePassenger handles POST /api/passengers.
func (h *Handlers) CreatePassenger(c *gin.Context) {
	var req models.CreatePassengerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	passenger, err := h.services.Passengers.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, passenger)
}

// ListPassengers handles GET /api/passengers.
func (h *Handlers) ListPassengers(c *gin.Context) {
	passengers, err := h.services.Passengers.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, passengers)
}
