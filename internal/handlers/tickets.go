package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skybook/internal/models"
)

// CreateTicket handles POST /api/tickets: it provisions an unassigned
// ticket on a flight.
func (h *Handlers) CreateTicket(c *gin.Context) {
	var req models.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	ticket, err := h.services.Flights.ProvisionTicket(c.Request.Context(), req.FlightID, req.SeatClass, req.SeatNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.CreateTicketResponse{ID: ticket.ID})
}

// DeleteTicket handles DELETE /api/tickets/:id, allowed only while the
// ticket is still unassigned.
func (h *Handlers) DeleteTicket(c *gin.Context) {
	id, ok := ticketIDParam(c)
	if !ok {
		return
	}

	if err := h.services.Flights.DeleteTicket(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// EditTicket handles PUT /api/tickets/:id, reassigning the seat number.
func (h *Handlers) EditTicket(c *gin.Context) {
	id, ok := ticketIDParam(c)
	if !ok {
		return
	}

	var req models.EditTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	ticket, err := h.services.Flights.UpdateTicketSeat(c.Request.Context(), id, req.SeatNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// BookTicket handles POST /api/tickets/book. A full class is not a failure:
// the ticket lands on the waitlist and the response says so.
func (h *Handlers) BookTicket(c *gin.Context) {
	var req models.BookTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	result, err := h.services.Bookings.Book(c.Request.Context(), req.TicketID, req.PassengerID, models.PaymentDetails{
		Amount: req.Amount,
		Method: req.Method,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.BookTicketResponse{
		TicketID:  req.TicketID,
		Outcome:   result.Outcome,
		PaymentID: result.PaymentID,
	})
}

// CancelTicket handles POST /api/tickets/:id/cancel.
func (h *Handlers) CancelTicket(c *gin.Context) {
	id, ok := ticketIDParam(c)
	if !ok {
		return
	}

	if err := h.services.Bookings.Cancel(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// PromoteTicket handles POST /api/tickets/:id/promote, the administrative
// override that activates a waitlisted ticket without a capacity check.
func (h *Handlers) PromoteTicket(c *gin.Context) {
	id, ok := ticketIDParam(c)
	if !ok {
		return
	}

	if err := h.services.Bookings.ForcePromote(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "promoted"})
}

// SeatFreed handles POST /api/inventory/seat-freed, giving collaborators
// without a NATS connection a way to trigger waitlist promotion.
func (h *Handlers) SeatFreed(c *gin.Context) {
	var req models.SeatFreedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	promoted, err := h.services.Promotion.OnSeatFreed(c.Request.Context(), req.FlightID, req.SeatClass)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PromotionResponse{PromotedTicketID: promoted})
}

func ticketIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket ID"})
		return 0, false
	}
	return id, true
}
