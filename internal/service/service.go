// Package service holds the booking core: the seat inventory ledger, the
// booking transaction coordinator, the waitlist promotion engine and the
// reporting engine. Every state mutation goes through a store.Store
// transaction scoped to the (flight, seat class) keys it touches; no service
// keeps mutable state of its own.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "skybook/internal/errors"
	"skybook/internal/logger"
	"skybook/internal/models"
	"skybook/internal/store"
)

// Publisher is the messaging collaborator. A nil publisher is valid: events
// are then simply not emitted (used by tests and the memory dev mode).
type Publisher interface {
	Publish(subject string, data interface{}) error
}

// FlightIndex is the search collaborator. Nil means search falls back to the
// primary store.
type FlightIndex interface {
	IndexFlight(ctx context.Context, flight models.Flight) error
	Search(ctx context.Context, q FlightQuery) ([]models.Flight, error)
}

// FlightQuery filters the flight catalog.
type FlightQuery struct {
	Origin string
	Dest   string
	Date   string // YYYY-MM-DD, UTC
}

func (q FlightQuery) IsZero() bool {
	return q.Origin == "" && q.Dest == "" && q.Date == ""
}

type Services struct {
	Inventory   *InventoryService
	Bookings    *BookingService
	Promotion   *PromotionService
	Reports     *ReportingService
	Flights     *FlightService
	Passengers  *PassengerService
	Maintenance *MaintenanceService
}

func NewServices(st store.Store, publisher Publisher, index FlightIndex) *Services {
	inventory := NewInventoryService(st, publisher)
	return &Services{
		Inventory:   inventory,
		Bookings:    NewBookingService(st, publisher),
		Promotion:   NewPromotionService(st, publisher),
		Reports:     NewReportingService(st),
		Flights:     NewFlightService(st, index),
		Passengers:  NewPassengerService(st),
		Maintenance: NewMaintenanceService(st),
	}
}

// publish sends a domain event and logs instead of failing the operation;
// the transaction has already committed by the time events go out.
func publish(ctx context.Context, p Publisher, subject string, data interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(subject, data); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event",
			"error", err,
			"subject", subject)
	}
}

// activate moves a ticket to active and materializes its payment inside the
// caller's transaction. The seat must already be accounted for.
func activate(ctx context.Context, tx store.Tx, ticket *models.Ticket, amount int64, method string, now time.Time) (*models.Payment, error) {
	payment := &models.Payment{
		ID:        uuid.NewString(),
		TicketID:  ticket.ID,
		Amount:    amount,
		Method:    method,
		CreatedAt: now,
	}
	if err := tx.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	ticket.Status = models.TicketActive
	ticket.PaymentID = &payment.ID
	ticket.BookedAt = &now
	ticket.HeldAmount = nil
	ticket.HeldMethod = nil
	if err := tx.UpdateTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to update ticket: %w", err)
	}
	return payment, nil
}

func seatKeyOf(t *models.Ticket) store.SeatKey {
	return store.SeatKey{FlightID: t.FlightID, SeatClass: t.SeatClass}
}

// ticketForUpdate re-reads a ticket inside the transaction that holds its
// seat-key lock, so state checks cannot race with a concurrent booking.
func ticketForUpdate(ctx context.Context, tx store.Tx, id int64) (*models.Ticket, error) {
	ticket, err := tx.GetTicket(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket == nil {
		return nil, fmt.Errorf("ticket %d: %w", id, apperrors.ErrNotFound)
	}
	return ticket, nil
}
