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

// InventoryService is the authoritative source of per-(flight, seat class)
// capacity and occupancy. It is the only component allowed to answer
// "is there a free seat".
type InventoryService struct {
	store     store.Store
	publisher Publisher
}

func NewInventoryService(st store.Store, publisher Publisher) *InventoryService {
	return &InventoryService{store: st, publisher: publisher}
}

// CapacityOf returns the aircraft-class total seat count for a flight.
func (s *InventoryService) CapacityOf(ctx context.Context, flightID, seatClass string) (int, error) {
	var capacity int
	err := s.store.View(ctx, func(tx store.Tx) error {
		count, err := tx.GetSeatCount(ctx, store.SeatKey{FlightID: flightID, SeatClass: seatClass})
		if err != nil {
			return fmt.Errorf("failed to get seat count: %w", err)
		}
		if count == nil {
			return fmt.Errorf("flight %s class %s: %w", flightID, seatClass, apperrors.ErrNotFound)
		}
		capacity = count.Capacity
		return nil
	})
	return capacity, err
}

// OccupiedCount returns the number of active tickets for (flight, seatClass).
func (s *InventoryService) OccupiedCount(ctx context.Context, flightID, seatClass string) (int, error) {
	var occupied int
	err := s.store.View(ctx, func(tx store.Tx) error {
		count, err := tx.GetSeatCount(ctx, store.SeatKey{FlightID: flightID, SeatClass: seatClass})
		if err != nil {
			return fmt.Errorf("failed to get seat count: %w", err)
		}
		if count == nil {
			return fmt.Errorf("flight %s class %s: %w", flightID, seatClass, apperrors.ErrNotFound)
		}
		occupied = count.Occupied
		return nil
	})
	return occupied, err
}

// ReserveSeat atomically claims one seat; ErrCapacityFull when the class is
// sold out. Booking transactions use the same Tx operation inside their own
// scope; this standalone form exists for collaborators that only need the
// inventory side.
func (s *InventoryService) ReserveSeat(ctx context.Context, flightID, seatClass string) error {
	key := store.SeatKey{FlightID: flightID, SeatClass: seatClass}
	err := s.store.Update(ctx, []store.SeatKey{key}, func(tx store.Tx) error {
		return tx.ReserveSeat(ctx, key)
	})
	if err != nil {
		// A rejection is the capacity check failing, not any error.
		if errors.Is(err, apperrors.ErrCapacityFull) {
			metrics.SeatReservations.WithLabelValues("rejected").Inc()
		}
		return err
	}
	metrics.SeatReservations.WithLabelValues("reserved").Inc()
	return nil
}

// ReleaseSeat decrements occupancy and emits the seat-freed notification the
// promotion engine listens for. It always succeeds for a known seat key.
func (s *InventoryService) ReleaseSeat(ctx context.Context, flightID, seatClass string) error {
	key := store.SeatKey{FlightID: flightID, SeatClass: seatClass}
	err := s.store.Update(ctx, []store.SeatKey{key}, func(tx store.Tx) error {
		return tx.AddOccupied(ctx, key, -1)
	})
	if err != nil {
		return err
	}

	metrics.SeatReservations.WithLabelValues("released").Inc()
	logger.WithContext(ctx).Info("Seat released",
		"flight_id", flightID,
		"seat_class", seatClass)

	publish(ctx, s.publisher, models.EventSeatReleased, models.SeatReleasedEvent{
		FlightID:  flightID,
		SeatClass: seatClass,
		Timestamp: time.Now().UTC(),
	})
	return nil
}
