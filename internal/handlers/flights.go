package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"skybook/internal/logger"
	"skybook/internal/models"
	"skybook/internal/service"
)

// CreateFlight handles POST /api/flights.
func (h *Handlers) CreateFlight(c *gin.Context) {
	var req models.CreateFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	flight, err := h.services.Flights.CreateFlight(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.valkey != nil {
		if err := h.valkey.InvalidateFlightLists(c.Request.Context()); err != nil {
			logger.WithContext(c.Request.Context()).Error("Failed to invalidate flight cache", "error", err)
		}
	}

	c.JSON(http.StatusCreated, flight)
}

// ListFlights handles GET /api/flights with optional origin, dest and date
// filters. Unfiltered and filtered listings are cached under their query key.
func (h *Handlers) ListFlights(c *gin.Context) {
	query := service.FlightQuery{
		Origin: c.Query("origin"),
		Dest:   c.Query("dest"),
		Date:   c.Query("date"),
	}
	cacheKey := fmt.Sprintf("%s|%s|%s", query.Origin, query.Dest, query.Date)

	ctx := c.Request.Context()
	if h.valkey != nil {
		if body, err := h.valkey.GetFlightList(ctx, cacheKey); err == nil && body != nil {
			c.Data(http.StatusOK, "application/json", body)
			return
		}
	}

	flights, err := h.services.Flights.Search(ctx, query)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.valkey != nil {
		if body, err := json.Marshal(flights); err == nil {
			if err := h.valkey.SetFlightList(ctx, cacheKey, body); err != nil {
				logger.WithContext(ctx).Error("Failed to cache flight list", "error", err)
			}
		}
	}

	c.JSON(http.StatusOK, flights)
}
