package consumers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/stan.go"

	"skybook/internal/models"
	"skybook/internal/service"
)

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{services: services}
}

// HandleSeatReleased runs one waitlist promotion attempt for the freed
// seat. Errors leave the message unacked so the durable subscription
// redelivers it.
func (h *Handlers) HandleSeatReleased(m *stan.Msg) {
	var event models.SeatReleasedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal seat released event", "error", err)
		m.Ack()
		return
	}

	promoted, err := h.services.Promotion.OnSeatFreed(context.Background(), event.FlightID, event.SeatClass)
	if err != nil {
		slog.Error("Failed to process seat released event",
			"flight_id", event.FlightID,
			"seat_class", event.SeatClass,
			"error", err)
		return
	}

	if promoted != nil {
		slog.Info("Seat released event promoted ticket",
			"flight_id", event.FlightID,
			"seat_class", event.SeatClass,
			"ticket_id", *promoted)
	}
	m.Ack()
}

func (h *Handlers) HandleTicketBooked(m *stan.Msg) {
	var event models.TicketBookedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal ticket booked event", "error", err)
		m.Ack()
		return
	}

	slog.Info("Ticket booked",
		"ticket_id", event.TicketID,
		"flight_id", event.FlightID,
		"seat_class", event.SeatClass,
		"payment_id", event.PaymentID)
	m.Ack()
}

func (h *Handlers) HandleTicketWaitlisted(m *stan.Msg) {
	var event models.TicketWaitlistedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal ticket waitlisted event", "error", err)
		m.Ack()
		return
	}

	slog.Info("Ticket waitlisted",
		"ticket_id", event.TicketID,
		"flight_id", event.FlightID,
		"seat_class", event.SeatClass)
	m.Ack()
}

func (h *Handlers) HandleTicketCancelled(m *stan.Msg) {
	var event models.TicketCancelledEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal ticket cancelled event", "error", err)
		m.Ack()
		return
	}

	slog.Info("Ticket cancelled",
		"ticket_id", event.TicketID,
		"flight_id", event.FlightID,
		"seat_released", event.SeatReleased)
	m.Ack()
}

// HandleTicketPromoted records promotions; forced ones are the out-of-band
// audit trail for administrative overrides.
func (h *Handlers) HandleTicketPromoted(m *stan.Msg) {
	var event models.TicketPromotedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal ticket promoted event", "error", err)
		m.Ack()
		return
	}

	if event.Forced {
		slog.Warn("Ticket promoted by administrative override",
			"ticket_id", event.TicketID,
			"flight_id", event.FlightID,
			"seat_class", event.SeatClass,
			"payment_id", event.PaymentID)
	} else {
		slog.Info("Ticket promoted from waitlist",
			"ticket_id", event.TicketID,
			"flight_id", event.FlightID,
			"seat_class", event.SeatClass)
	}
	m.Ack()
}
