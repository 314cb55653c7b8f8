package service

import (
	"context"
	"errors"
	"time"

	apperrors "skybook/internal/errors"
	"skybook/internal/logger"
	"skybook/internal/metrics"
	"skybook/internal/models"
	"skybook/internal/store"
)

// PromotionService reacts to freed seats by promoting the longest-waiting
// ticket of the affected class. Promotion order is request time ascending,
// ties broken by ticket id ascending.
type PromotionService struct {
	store     store.Store
	publisher Publisher
}

func NewPromotionService(st store.Store, publisher Publisher) *PromotionService {
	return &PromotionService{store: st, publisher: publisher}
}

// OnSeatFreed promotes at most one waitlisted ticket for the given flight
// and class. An empty waitlist is a no-op, as is losing the freed seat to a
// concurrent booking; in the race case the candidate simply stays waitlisted
// until the next seat frees up. Returns the promoted ticket id, or nil when
// nothing was promoted.
func (s *PromotionService) OnSeatFreed(ctx context.Context, flightID, seatClass string) (*int64, error) {
	key := store.SeatKey{FlightID: flightID, SeatClass: seatClass}

	var promoted *models.Ticket
	var paymentID string
	err := s.store.Update(ctx, []store.SeatKey{key}, func(tx store.Tx) error {
		promoted = nil

		candidates, err := tx.WaitlistedTickets(ctx, key)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return nil
		}
		ticket := &candidates[0]

		switch err := tx.ReserveSeat(ctx, key); {
		case err == nil:
		case errors.Is(err, apperrors.ErrCapacityFull):
			// A concurrent booking won the seat. Not an error: the ticket
			// keeps its place in line.
			logger.WithContext(ctx).Info("Seat-freed promotion skipped, class already full again",
				"flight_id", flightID,
				"seat_class", seatClass,
				"ticket_id", ticket.ID)
			return nil
		default:
			return err
		}

		if ticket.HeldAmount == nil || ticket.HeldMethod == nil {
			return errors.New("waitlisted ticket has no held payment details")
		}
		payment, err := activate(ctx, tx, ticket, *ticket.HeldAmount, *ticket.HeldMethod, time.Now().UTC())
		if err != nil {
			return err
		}
		paymentID = payment.ID
		promoted = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	if promoted == nil {
		return nil, nil
	}

	metrics.Promotions.WithLabelValues("automatic").Inc()
	logger.WithContext(ctx).Info("Promoted waitlisted ticket",
		"ticket_id", promoted.ID,
		"flight_id", flightID,
		"seat_class", seatClass)

	publish(ctx, s.publisher, models.EventTicketPromoted, models.TicketPromotedEvent{
		TicketID:  promoted.ID,
		FlightID:  flightID,
		SeatClass: seatClass,
		Forced:    false,
		PaymentID: paymentID,
		Timestamp: time.Now().UTC(),
	})
	id := promoted.ID
	return &id, nil
}
