package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "skybook/internal/errors"
	"skybook/internal/logger"
	"skybook/internal/models"
	"skybook/internal/store"
)

// FlightService manages the flight catalog and provisions the tickets that
// the booking engine later assigns.
type FlightService struct {
	store store.Store
	index FlightIndex
}

func NewFlightService(st store.Store, index FlightIndex) *FlightService {
	return &FlightService{store: st, index: index}
}

// CreateFlight registers a flight and materializes one seat counter per
// class of its aircraft type, each starting at zero occupancy.
func (s *FlightService) CreateFlight(ctx context.Context, req *models.CreateFlightRequest) (*models.Flight, error) {
	flight := &models.Flight{
		ID:        req.ID,
		Origin:    req.Origin,
		Dest:      req.Dest,
		Departure: req.Departure.UTC(),
		Aircraft:  req.Aircraft,
		CreatedAt: time.Now().UTC(),
	}

	err := s.store.Update(ctx, nil, func(tx store.Tx) error {
		existing, err := tx.GetFlight(ctx, flight.ID)
		if err != nil {
			return fmt.Errorf("failed to get flight: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("flight %s already exists: %w", flight.ID, apperrors.ErrConflict)
		}
		aircraft, err := tx.GetAircraft(ctx, flight.Aircraft)
		if err != nil {
			return fmt.Errorf("failed to get aircraft: %w", err)
		}
		if aircraft == nil {
			return fmt.Errorf("aircraft %s: %w", flight.Aircraft, apperrors.ErrNotFound)
		}
		classes, err := tx.SeatClassesForType(ctx, aircraft.TypeID)
		if err != nil {
			return err
		}
		if len(classes) == 0 {
			return fmt.Errorf("aircraft type %s has no seat classes: %w", aircraft.TypeID, apperrors.ErrNotFound)
		}
		if err := tx.CreateFlight(ctx, flight); err != nil {
			return fmt.Errorf("failed to create flight: %w", err)
		}
		for _, class := range classes {
			count := &models.SeatCount{
				FlightID:  flight.ID,
				SeatClass: class.SeatClass,
				Capacity:  class.Seats,
				Occupied:  0,
			}
			if err := tx.PutSeatCount(ctx, count); err != nil {
				return fmt.Errorf("failed to create seat count: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.index != nil {
		if err := s.index.IndexFlight(ctx, *flight); err != nil {
			logger.WithContext(ctx).Error("Failed to index flight", "flight_id", flight.ID, "error", err)
		}
	}
	return flight, nil
}

// Search lists flights matching the query. With an index configured the
// query runs there; otherwise it filters the store listing in process.
func (s *FlightService) Search(ctx context.Context, query FlightQuery) ([]models.Flight, error) {
	if s.index != nil && !query.IsZero() {
		return s.index.Search(ctx, query)
	}

	var flights []models.Flight
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		flights, err = tx.ListFlights(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if query.IsZero() {
		return flights, nil
	}

	matched := make([]models.Flight, 0, len(flights))
	for _, f := range flights {
		if query.Origin != "" && !strings.EqualFold(f.Origin, query.Origin) {
			continue
		}
		if query.Dest != "" && !strings.EqualFold(f.Dest, query.Dest) {
			continue
		}
		if query.Date != "" && f.Departure.UTC().Format("2006-01-02") != query.Date {
			continue
		}
		matched = append(matched, f)
	}
	return matched, nil
}

// ProvisionTicket creates an unassigned ticket for a flight and class. Only
// provisioned tickets can be booked, which bounds the id space a booking
// request may reference.
func (s *FlightService) ProvisionTicket(ctx context.Context, flightID, seatClass string, seatNumber *string) (*models.Ticket, error) {
	var ticket *models.Ticket
	err := s.store.Update(ctx, nil, func(tx store.Tx) error {
		flight, err := tx.GetFlight(ctx, flightID)
		if err != nil {
			return fmt.Errorf("failed to get flight: %w", err)
		}
		if flight == nil {
			return fmt.Errorf("flight %s: %w", flightID, apperrors.ErrNotFound)
		}
		count, err := tx.GetSeatCount(ctx, store.SeatKey{FlightID: flightID, SeatClass: seatClass})
		if err != nil {
			return err
		}
		if count == nil {
			return fmt.Errorf("flight %s has no %s class: %w", flightID, seatClass, apperrors.ErrNotFound)
		}

		now := time.Now().UTC()
		ticket = &models.Ticket{
			FlightID:   flightID,
			SeatClass:  seatClass,
			SeatNumber: seatNumber,
			Status:     models.TicketUnassigned,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return tx.CreateTicket(ctx, ticket)
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// UpdateTicketSeat reassigns the seat number of a ticket. The flight, class
// and booking state stay untouched; a cancelled ticket is frozen. The change
// is recorded in the admin audit trail.
func (s *FlightService) UpdateTicketSeat(ctx context.Context, ticketID int64, seatNumber *string) (*models.Ticket, error) {
	key, err := s.ticketKey(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	var updated *models.Ticket
	err = s.store.Update(ctx, []store.SeatKey{key}, func(tx store.Tx) error {
		ticket, err := ticketForUpdate(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status == models.TicketCancelled {
			return fmt.Errorf("ticket %d is cancelled and cannot be edited: %w", ticketID, apperrors.ErrConflict)
		}

		ticket.SeatNumber = seatNumber
		ticket.UpdatedAt = time.Now().UTC()
		if err := tx.UpdateTicket(ctx, ticket); err != nil {
			return fmt.Errorf("failed to update ticket: %w", err)
		}
		if err := tx.AppendAdminChange(ctx, &models.AdminChange{
			Action:   models.AdminActionTicketEdit,
			TicketID: ticketID,
		}); err != nil {
			return fmt.Errorf("failed to record admin change: %w", err)
		}
		updated = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTicket removes an unassigned ticket. Tickets that entered the
// booking lifecycle are preserved for reporting and must be cancelled
// instead.
func (s *FlightService) DeleteTicket(ctx context.Context, ticketID int64) error {
	key, err := s.ticketKey(ctx, ticketID)
	if err != nil {
		return err
	}

	return s.store.Update(ctx, []store.SeatKey{key}, func(tx store.Tx) error {
		ticket, err := ticketForUpdate(ctx, tx, ticketID)
		if err != nil {
			return err
		}
		if ticket.Status != models.TicketUnassigned {
			return fmt.Errorf("ticket %d is %s and cannot be deleted: %w", ticketID, ticket.Status, apperrors.ErrConflict)
		}
		if err := tx.DeleteTicket(ctx, ticketID); err != nil {
			return err
		}
		return tx.AppendAdminChange(ctx, &models.AdminChange{
			Action:   models.AdminActionTicketDelete,
			TicketID: ticketID,
		})
	})
}

// ticketKey resolves a ticket to its lock key without holding any lock.
func (s *FlightService) ticketKey(ctx context.Context, ticketID int64) (store.SeatKey, error) {
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
