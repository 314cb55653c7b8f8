package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "skybook/internal/errors"
	"skybook/internal/logger"
	"skybook/internal/metrics"
	"skybook/internal/models"
	"skybook/internal/store"
)

// BookingService is the only path by which a ticket acquires a passenger, a
// payment and an active or waitlisted status, as one atomic unit.
type BookingService struct {
	store     store.Store
	publisher Publisher
}

func NewBookingService(st store.Store, publisher Publisher) *BookingService {
	return &BookingService{store: st, publisher: publisher}
}

// BookResult reports how a booking transaction resolved.
type BookResult struct {
	Outcome   models.BookingOutcome
	PaymentID *string
}

// Book binds a passenger and payment details to an unassigned ticket. With a
// free seat the ticket becomes active and the payment is recorded; with a
// full class it is waitlisted and the payment details are held, unpaid, for
// a later promotion. Either way the whole step commits or none of it does.
func (s *BookingService) Book(ctx context.Context, ticketID, passengerID int64, details models.PaymentDetails) (*BookResult, error) {
	if details.Amount <= 0 {
		return nil, fmt.Errorf("payment amount must be positive: %w", apperrors.ErrValidation)
	}
	if details.Method == "" {
		return nil, fmt.Errorf("payment method is required: %w", apperrors.ErrValidation)
	}

	// First pass outside the lock: locate the ticket to learn which seat key
	// the transaction must hold. All state checks are repeated inside.
	key, err := s.seatKeyFor(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	result := &BookResult{}
	err = s.store.Update(ctx, []store.SeatKey{key}, func(tx store.Tx) error {
		ticket, err := ticketForUpdate(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status != models.TicketUnassigned {
			return fmt.Errorf("ticket %d is %s, not unassigned: %w", ticketID, ticket.Status, apperrors.ErrConflict)
		}

		passenger, err := tx.GetPassenger(ctx, passengerID)
		if err != nil {
			return fmt.Errorf("failed to get passenger: %w", err)
		}
		if passenger == nil {
			return fmt.Errorf("passenger %d: %w", passengerID, apperrors.ErrNotFound)
		}

		now := time.Now().UTC()
		ticket.PassengerID = &passengerID
		ticket.RequestedAt = &now

		switch err := tx.ReserveSeat(ctx, seatKeyOf(ticket)); {
		case err == nil:
			payment, err := activate(ctx, tx, ticket, details.Amount, details.Method, now)
			if err != nil {
				return err
			}
			result.Outcome = models.OutcomeBooked
			result.PaymentID = &payment.ID
			return nil

		case errors.Is(err, apperrors.ErrCapacityFull):
			// The class is full: park the ticket on the waitlist and retain
			// the intended payment details. No money is taken for a seat
			// that is not confirmed.
			ticket.Status = models.TicketWaitlisted
			ticket.HeldAmount = &details.Amount
			ticket.HeldMethod = &details.Method
			if err := tx.UpdateTicket(ctx, ticket); err != nil {
				return fmt.Errorf("failed to update ticket: %w", err)
			}
			result.Outcome = models.OutcomeWaitlisted
			return nil

		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}

	metrics.Bookings.WithLabelValues(string(result.Outcome)).Inc()
	s.publishBookResult(ctx, ticketID, passengerID, key, result)
	return result, nil
}

func (s *BookingService) publishBookResult(ctx context.Context, ticketID, passengerID int64, key store.SeatKey, result *BookResult) {
	now := time.Now().UTC()
	if result.Outcome == models.OutcomeBooked {
		publish(ctx, s.publisher, models.EventTicketBooked, models.TicketBookedEvent{
			TicketID:    ticketID,
			FlightID:    key.FlightID,
			SeatClass:   key.SeatClass,
			PassengerID: passengerID,
			PaymentID:   *result.PaymentID,
			Timestamp:   now,
		})
		return
	}
	publish(ctx, s.publisher, models.EventTicketWaitlisted, models.TicketWaitlistedEvent{
		TicketID:    ticketID,
		FlightID:    key.FlightID,
		SeatClass:   key.SeatClass,
		PassengerID: passengerID,
		Timestamp:   now,
	})
}

// ForcePromote is the administrative override: it activates a waitlisted
// ticket without a capacity check. Occupancy is still incremented so the
// ledger keeps matching the active-ticket count, which means the operator is
// knowingly allowed to push occupancy past capacity; the override is logged
// as an out-of-band event for that reason.
func (s *BookingService) ForcePromote(ctx context.Context, ticketID int64) error {
	key, err := s.seatKeyFor(ctx, ticketID)
	if err != nil {
		return err
	}

	var paymentID string
	err = s.store.Update(ctx, []store.SeatKey{key}, func(tx store.Tx) error {
		ticket, err := ticketForUpdate(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status != models.TicketWaitlisted {
			return fmt.Errorf("ticket %d is %s, not waitlisted: %w", ticketID, ticket.Status, apperrors.ErrConflict)
		}
		if ticket.HeldAmount == nil || ticket.HeldMethod == nil {
			return fmt.Errorf("ticket %d has no held payment details: %w", ticketID, apperrors.ErrConflict)
		}

		if err := tx.AddOccupied(ctx, seatKeyOf(ticket), 1); err != nil {
			return err
		}
		payment, err := activate(ctx, tx, ticket, *ticket.HeldAmount, *ticket.HeldMethod, time.Now().UTC())
		if err != nil {
			return err
		}
		paymentID = payment.ID
		return tx.AppendAdminChange(ctx, &models.AdminChange{
			Action:   models.AdminActionPromoteOverride,
			TicketID: ticketID,
		})
	})
	if err != nil {
		return err
	}

	metrics.Promotions.WithLabelValues("forced").Inc()
	logger.WithContext(ctx).Warn("Administrative promote override applied; occupancy may now exceed capacity",
		"ticket_id", ticketID,
		"flight_id", key.FlightID,
		"seat_class", key.SeatClass)

	publish(ctx, s.publisher, models.EventTicketPromoted, models.TicketPromotedEvent{
		TicketID:  ticketID,
		FlightID:  key.FlightID,
		SeatClass: key.SeatClass,
		Forced:    true,
		PaymentID: paymentID,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

// Cancel is the cancellation collaborator. Cancelling an active ticket
// releases its seat and announces it so the promotion engine can refill it;
// cancelling a waitlisted ticket just removes it from the queue. Cancelled
// is terminal.
func (s *BookingService) Cancel(ctx context.Context, ticketID int64) error {
	key, err := s.seatKeyFor(ctx, ticketID)
	if err != nil {
		return err
	}

	var released bool
	err = s.store.Update(ctx, []store.SeatKey{key}, func(tx store.Tx) error {
		ticket, err := ticketForUpdate(ctx, tx, ticketID)
		if err != nil {
			return err
		}

		switch ticket.Status {
		case models.TicketActive:
			if err := tx.AddOccupied(ctx, seatKeyOf(ticket), -1); err != nil {
				return err
			}
			released = true
		case models.TicketWaitlisted:
			// Nothing reserved, nothing to release.
		default:
			return fmt.Errorf("ticket %d is %s and cannot be cancelled: %w", ticketID, ticket.Status, apperrors.ErrConflict)
		}

		ticket.Status = models.TicketCancelled
		ticket.HeldAmount = nil
		ticket.HeldMethod = nil
		return tx.UpdateTicket(ctx, ticket)
	})
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	publish(ctx, s.publisher, models.EventTicketCancelled, models.TicketCancelledEvent{
		TicketID:     ticketID,
		FlightID:     key.FlightID,
		SeatClass:    key.SeatClass,
		SeatReleased: released,
		Timestamp:    now,
	})
	if released {
		metrics.SeatReservations.WithLabelValues("released").Inc()
		publish(ctx, s.publisher, models.EventSeatReleased, models.SeatReleasedEvent{
			FlightID:  key.FlightID,
			SeatClass: key.SeatClass,
			Timestamp: now,
		})
	}
	return nil
}

// seatKeyFor resolves a ticket to its lock key without holding any lock.
func (s *BookingService) seatKeyFor(ctx context.Context, ticketID int64) (store.SeatKey, error) {
	var key store.SeatKey
	err := s.store.View(ctx, func(tx store.Tx) error {
		ticket, err := tx.GetTicket(ctx, ticketID)
		if err != nil {
			return fmt.Errorf("failed to get ticket: %w", err)
		}
		if ticket == nil {
			return fmt.Errorf("ticket %d: %w", ticketID, apperrors.ErrNotFound)
		}
		key = seatKeyOf(ticket)
		return nil
	})
	return key, err
}
