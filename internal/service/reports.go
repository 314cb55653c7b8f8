package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "skybook/internal/errors"
	"skybook/internal/models"
	"skybook/internal/store"
)

// ReportingService answers occupancy and history queries. Each report runs
// inside a single read-only view so it never observes a half-applied
// booking transaction.
type ReportingService struct {
	store store.Store
}

func NewReportingService(st store.Store) *ReportingService {
	return &ReportingService{store: st}
}

// LoadFactor aggregates occupancy across all classes of a flight. The
// integer figure reproduces the historical report format, which keeps only
// the first two characters of the percentage (so a fully booked flight
// reads 10); Exact carries the corrected value alongside it.
func (s *ReportingService) LoadFactor(ctx context.Context, flightID string) (*models.LoadFactorResponse, error) {
	var capacity, occupied int
	err := s.store.View(ctx, func(tx store.Tx) error {
		flight, err := tx.GetFlight(ctx, flightID)
		if err != nil {
			return fmt.Errorf("failed to get flight: %w", err)
		}
		if flight == nil {
			return fmt.Errorf("flight %s: %w", flightID, apperrors.ErrNotFound)
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
		for _, class := range classes {
			capacity += class.Seats
			count, err := tx.GetSeatCount(ctx, store.SeatKey{FlightID: flightID, SeatClass: class.SeatClass})
			if err != nil {
				return err
			}
			if count != nil {
				occupied += count.Occupied
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := &models.LoadFactorResponse{FlightID: flightID}
	if capacity > 0 {
		resp.Exact = float64(occupied) / float64(capacity) * 100
		resp.LoadFactor = legacyTruncate(resp.Exact)
	}
	return resp, nil
}

// legacyTruncate renders a percentage the way the original report did:
// format the number, keep at most the first two characters, drop a trailing
// decimal point. 66.67 becomes 66, 5.5 becomes 5 and 100 becomes 10.
func legacyTruncate(pct float64) int {
	s := strconv.FormatFloat(pct, 'f', -1, 64)
	if len(s) > 2 {
		s = s[:2]
	}
	s = strings.TrimSuffix(s, ".")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// FleetLoadFactor reports, per airframe, how full its flights on the given
// date are against the seats installed on it. Every airframe appears; one
// without flights that date reads zero.
func (s *ReportingService) FleetLoadFactor(ctx context.Context, date time.Time) ([]models.AircraftLoadFactor, error) {
	var out []models.AircraftLoadFactor
	err := s.store.View(ctx, func(tx store.Tx) error {
		fleet, err := tx.ListAircraft(ctx)
		if err != nil {
			return err
		}
		counts, err := tx.ActiveCountsForDate(ctx, date)
		if err != nil {
			return err
		}
		flights, err := tx.ListFlights(ctx)
		if err != nil {
			return err
		}

		booked := make(map[string]int)
		for _, f := range flights {
			if n := counts[f.ID]; n > 0 {
				booked[f.Aircraft] += n
			}
		}

		typeSeats := make(map[string]int)
		for _, a := range fleet {
			total, ok := typeSeats[a.TypeID]
			if !ok {
				classes, err := tx.SeatClassesForType(ctx, a.TypeID)
				if err != nil {
					return err
				}
				for _, class := range classes {
					total += class.Seats
				}
				typeSeats[a.TypeID] = total
			}

			row := models.AircraftLoadFactor{
				Registration: a.Registration,
				TotalSeats:   total,
				BookedSeats:  booked[a.Registration],
			}
			if total > 0 {
				row.LoadFactor = float64(row.BookedSeats) / float64(total) * 100
			}
			out = append(out, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Registration < out[j].Registration })
	return out, nil
}

// AdminChangeList reports how many audited administrative actions were taken,
// grouped by action.
func (s *ReportingService) AdminChangeList(ctx context.Context) ([]models.AdminChangeCount, error) {
	var counts map[string]int
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		counts, err = tx.AdminChangeCounts(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.AdminChangeCount, 0, len(counts))
	for action, n := range counts {
		out = append(out, models.AdminChangeCount{Action: action, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Action < out[j].Action })
	return out, nil
}

// BookingPercentage reports, per flight departing on the given date, the
// active ticket count as a percentage of a fixed base of 20 seats. The base
// predates variable aircraft capacities and is kept for report continuity.
func (s *ReportingService) BookingPercentage(ctx context.Context, date time.Time) ([]models.FlightBookingPercentage, error) {
	var counts map[string]int
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		counts, err = tx.ActiveCountsForDate(ctx, date)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]models.FlightBookingPercentage, 0, len(counts))
	for flightID, active := range counts {
		out = append(out, models.FlightBookingPercentage{
			FlightID:   flightID,
			Active:     active,
			Percentage: float64(active) / 20 * 100,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FlightID < out[j].FlightID })
	return out, nil
}

// ActiveFlightList returns the ids of flights that currently carry at least
// one active ticket.
func (s *ReportingService) ActiveFlightList(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		ids, err = tx.ActiveFlightIDs(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *ReportingService) CancelledTicketList(ctx context.Context) ([]models.Ticket, error) {
	return s.ticketsByStatus(ctx, models.TicketCancelled)
}

func (s *ReportingService) ticketsByStatus(ctx context.Context, status models.TicketStatus) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		tickets, err = tx.TicketsByStatus(ctx, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (s *ReportingService) PaymentList(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		payments, err = tx.ListPayments(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// Waitlist groups a flight's waitlisted tickets by seat class, each class
// listing its passengers in promotion order.
func (s *ReportingService) Waitlist(ctx context.Context, flightID string) ([]models.WaitlistEntry, error) {
	var tickets []models.Ticket
	err := s.store.View(ctx, func(tx store.Tx) error {
		flight, err := tx.GetFlight(ctx, flightID)
		if err != nil {
			return fmt.Errorf("failed to get flight: %w", err)
		}
		if flight == nil {
			return fmt.Errorf("flight %s: %w", flightID, apperrors.ErrNotFound)
		}
		tickets, err = tx.WaitlistForFlight(ctx, flightID)
		return err
	})
	if err != nil {
		return nil, err
	}

	entries := make([]models.WaitlistEntry, 0)
	byClass := make(map[string]int)
	for _, ticket := range tickets {
		idx, ok := byClass[ticket.SeatClass]
		if !ok {
			idx = len(entries)
			byClass[ticket.SeatClass] = idx
			entries = append(entries, models.WaitlistEntry{SeatClass: ticket.SeatClass})
		}
		entries[idx].Count++
		if ticket.PassengerID != nil {
			entries[idx].Passengers = append(entries[idx].Passengers, *ticket.PassengerID)
		}
	}
	return entries, nil
}
