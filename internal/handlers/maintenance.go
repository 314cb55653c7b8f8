package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"skybook/internal/models"
)

// CreateMaintenance handles POST /api/maintenance.
func (h *Handlers) CreateMaintenance(c *gin.Context) {
	var req models.CreateMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	rec, err := h.services.Maintenance.Schedule(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, rec)
}

// ListMaintenance handles GET /api/maintenance with optional registration
// and technician filters.
func (h *Handlers) ListMaintenance(c *gin.Context) {
	records, err := h.services.Maintenance.List(c.Request.Context(),
		c.Query("registration"), c.Query("technician"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// LastMaintenance handles GET /api/maintenance/last: the most recent past
// record per airframe.
func (h *Handlers) LastMaintenance(c *gin.Context) {
	records, err := h.services.Maintenance.LastPerAircraft(c.Request.Context(), time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// NextMaintenance handles GET /api/maintenance/next: all future records,
// earliest first.
func (h *Handlers) NextMaintenance(c *gin.Context) {
	records, err := h.services.Maintenance.Upcoming(c.Request.Context(), time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}
