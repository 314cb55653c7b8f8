// Package store defines the transactional persistence collaborator used by
// the booking core. The core never talks to a database directly: it opens a
// transaction scoped to the seat-inventory keys it intends to mutate and
// works through the Tx record operations. Two implementations exist,
// store/postgres for production and store/memory for tests and local runs.
package store

import (
	"context"
	"time"

	"skybook/internal/models"
)

// SeatKey identifies one (flight, seat class) inventory ledger row. It is the
// unit of write-lock granularity: transactions for different keys never block
// each other.
type SeatKey struct {
	FlightID  string
	SeatClass string
}

// Less orders keys so every transaction acquires its locks in the same order.
func (k SeatKey) Less(o SeatKey) bool {
	if k.FlightID != o.FlightID {
		return k.FlightID < o.FlightID
	}
	return k.SeatClass < o.SeatClass
}

// Tx exposes keyed record operations inside one transaction. Lookups return
// (nil, nil) when the record does not exist; translating that into a
// not-found error is the caller's concern.
type Tx interface {
	GetFlight(ctx context.Context, id string) (*models.Flight, error)
	CreateFlight(ctx context.Context, f *models.Flight) error
	ListFlights(ctx context.Context) ([]models.Flight, error)

	GetAircraft(ctx context.Context, registration string) (*models.Aircraft, error)
	CreateAircraft(ctx context.Context, a *models.Aircraft) error
	ListAircraft(ctx context.Context) ([]models.Aircraft, error)
	SeatClassesForType(ctx context.Context, aircraftType string) ([]models.AircraftSeatClass, error)
	PutAircraftSeatClass(ctx context.Context, sc *models.AircraftSeatClass) error

	GetPassenger(ctx context.Context, id int64) (*models.Passenger, error)
	CreatePassenger(ctx context.Context, p *models.Passenger) error
	ListPassengers(ctx context.Context) ([]models.Passenger, error)

	GetTicket(ctx context.Context, id int64) (*models.Ticket, error)
	CreateTicket(ctx context.Context, t *models.Ticket) error
	UpdateTicket(ctx context.Context, t *models.Ticket) error
	DeleteTicket(ctx context.Context, id int64) error
	TicketsByStatus(ctx context.Context, status models.TicketStatus) ([]models.Ticket, error)

	// WaitlistedTickets returns the waitlist for one seat key in promotion
	// order: requested_at ascending, ties broken by ticket id ascending.
	WaitlistedTickets(ctx context.Context, key SeatKey) ([]models.Ticket, error)
	// WaitlistForFlight returns every waitlisted ticket of a flight, ordered
	// by seat class and then promotion order.
	WaitlistForFlight(ctx context.Context, flightID string) ([]models.Ticket, error)

	CreatePayment(ctx context.Context, p *models.Payment) error
	ListPayments(ctx context.Context) ([]models.Payment, error)

	CreateMaintenance(ctx context.Context, rec *models.MaintenanceRecord) error
	// ListMaintenance filters by airframe and technician; an empty string
	// matches everything. Ordered by scheduled date, then id.
	ListMaintenance(ctx context.Context, registration, technician string) ([]models.MaintenanceRecord, error)

	AppendAdminChange(ctx context.Context, change *models.AdminChange) error
	// AdminChangeCounts maps action to the number of audit rows recorded.
	AdminChangeCounts(ctx context.Context) (map[string]int, error)

	GetSeatCount(ctx context.Context, key SeatKey) (*models.SeatCount, error)
	PutSeatCount(ctx context.Context, sc *models.SeatCount) error
	// ReserveSeat increments occupancy iff occupied < capacity; apperrors
	// ErrCapacityFull otherwise, ErrNotFound when the ledger row is missing.
	// The check-and-increment is indivisible with respect to concurrent
	// transactions on the same key.
	ReserveSeat(ctx context.Context, key SeatKey) error
	// AddOccupied shifts occupancy unconditionally. Used by seat release
	// (delta -1) and by the administrative promote override (delta +1, which
	// may push occupancy past capacity).
	AddOccupied(ctx context.Context, key SeatKey, delta int) error

	// ActiveFlightIDs lists distinct flights holding at least one active
	// ticket, ascending.
	ActiveFlightIDs(ctx context.Context) ([]string, error)
	// ActiveCountsForDate maps flight id to active-ticket count for flights
	// departing on the given calendar date (UTC). Flights without active
	// tickets are absent.
	ActiveCountsForDate(ctx context.Context, date time.Time) (map[string]int, error)
}

// Store is the transaction boundary. Update acquires the write locks for the
// given seat keys (in sorted order, with a bounded wait surfacing
// ErrTxTimeout) and commits atomically: if fn returns an error or the commit
// fails, no partial state is observable. View runs fn against a consistent
// read-only snapshot and never blocks writers.
type Store interface {
	Update(ctx context.Context, keys []SeatKey, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx Tx) error) error
	Close() error
}
