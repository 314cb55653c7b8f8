package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// LoadFactor handles GET /api/reports/load-factor/:flightId.
func (h *Handlers) LoadFactor(c *gin.Context) {
	report, err := h.services.Reports.LoadFactor(c.Request.Context(), c.Param("flightId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// BookingPercentage handles GET /api/reports/booking-percentage?date=YYYY-MM-DD.
func (h *Handlers) BookingPercentage(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter must be YYYY-MM-DD"})
		return
	}

	report, err := h.services.Reports.BookingPercentage(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// FleetLoadFactor handles GET /api/reports/fleet-load-factor?date=YYYY-MM-DD.
func (h *Handlers) FleetLoadFactor(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter must be YYYY-MM-DD"})
		return
	}

	report, err := h.services.Reports.FleetLoadFactor(c.Request.Context(), date)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// AdminChanges handles GET /api/reports/admin-changes.
func (h *Handlers) AdminChanges(c *gin.Context) {
	report, err := h.services.Reports.AdminChangeList(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ActiveFlights handles GET /api/reports/active-flights.
func (h *Handlers) ActiveFlights(c *gin.Context) {
	ids, err := h.services.Reports.ActiveFlightList(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"flights": ids})
}

// CancelledTickets handles GET /api/reports/cancelled-tickets.
func (h *Handlers) CancelledTickets(c *gin.Context) {
	tickets, err := h.services.Reports.CancelledTicketList(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tickets)
}

// Payments handles GET /api/reports/payments.
func (h *Handlers) Payments(c *gin.Context) {
	payments, err := h.services.Reports.PaymentList(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payments)
}

// Waitlist handles GET /api/reports/waitlist/:flightId.
func (h *Handlers) Waitlist(c *gin.Context) {
	entries, err := h.services.Reports.Waitlist(c.Request.Context(), c.Param("flightId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entries)
}
