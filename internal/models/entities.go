package models

import (
	"time"
)

// TicketStatus is the ticket state machine:
// unassigned -> active | waitlisted (Book), waitlisted -> active (promotion),
// active | waitlisted -> cancelled (terminal).
type TicketStatus string

const (
	TicketUnassigned TicketStatus = "unassigned"
	TicketWaitlisted TicketStatus = "waitlisted"
	TicketActive     TicketStatus = "active"
	TicketCancelled  TicketStatus = "cancelled"
)

// BookingOutcome is the result of a successful Book call.
type BookingOutcome string

const (
	OutcomeBooked     BookingOutcome = "booked"
	OutcomeWaitlisted BookingOutcome = "waitlisted"
)

// Aircraft represents a physical airframe. Seat capacity is defined per
// aircraft type, not per airframe.
type Aircraft struct {
	Registration string `json:"registration" db:"registration"`
	TypeID       string `json:"type_id" db:"type_id"`
}

// AircraftSeatClass maps (aircraft type, seat class) to the number of seats
// installed in that cabin.
type AircraftSeatClass struct {
	AircraftType string `json:"aircraft_type" db:"aircraft_type"`
	SeatClass    string `json:"seat_class" db:"seat_class"`
	Seats        int    `json:"seats" db:"seats"`
}

// Flight is immutable once scheduled; rescheduling is out of scope.
type Flight struct {
	ID        string    `json:"id" db:"id"`
	Origin    string    `json:"origin" db:"origin"`
	Dest      string    `json:"dest" db:"dest"`
	Departure time.Time `json:"departure" db:"departure"`
	Aircraft  string    `json:"aircraft" db:"aircraft"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Passenger is owned independently and referenced by zero or more tickets.
type Passenger struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Ticket belongs to exactly one flight and one seat class for its lifetime.
// While waitlisted it retains the payment details supplied at booking time
// (HeldAmount/HeldMethod) so promotion can create the payment later; no money
// is taken until the ticket actually becomes active.
type Ticket struct {
	ID          int64        `json:"id" db:"id"`
	FlightID    string       `json:"flight_id" db:"flight_id"`
	SeatClass   string       `json:"seat_class" db:"seat_class"`
	SeatNumber  *string      `json:"seat_number" db:"seat_number"`
	PassengerID *int64       `json:"passenger_id" db:"passenger_id"`
	PaymentID   *string      `json:"payment_id" db:"payment_id"`
	Status      TicketStatus `json:"status" db:"status"`
	RequestedAt *time.Time   `json:"requested_at" db:"requested_at"`
	HeldAmount  *int64       `json:"held_amount" db:"held_amount"`
	HeldMethod  *string      `json:"held_method" db:"held_method"`
	BookedAt    *time.Time   `json:"booked_at" db:"booked_at"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}

// Payment is never orphaned: it is created inside the same transaction that
// activates its ticket, amount in the smallest currency unit.
type Payment struct {
	ID        string    `json:"id" db:"id"`
	TicketID  int64     `json:"ticket_id" db:"ticket_id"`
	Amount    int64     `json:"amount" db:"amount"`
	Method    string    `json:"method" db:"method"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PaymentDetails is what the caller supplies to Book; a Payment record is
// only materialized from it once a seat is actually secured.
type PaymentDetails struct {
	Amount int64  `json:"amount"`
	Method string `json:"method"`
}

// MaintenanceRecord is one scheduled or completed maintenance visit for an
// airframe. Records in the past double as the service history.
type MaintenanceRecord struct {
	ID           int64     `json:"id" db:"id"`
	Registration string    `json:"registration" db:"registration"`
	Type         string    `json:"type" db:"maintenance_type"`
	Technician   string    `json:"technician" db:"technician"`
	ScheduledFor time.Time `json:"scheduled_for" db:"scheduled_for"`
	Notes        string    `json:"notes" db:"notes"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Administrative actions recorded in the audit trail.
const (
	AdminActionPromoteOverride = "promote_override"
	AdminActionTicketEdit      = "ticket_edit"
	AdminActionTicketDelete    = "ticket_delete"
)

// AdminChange is one audit row, written in the same transaction as the
// administrative action it records. TicketID has no foreign key; the audit
// trail outlives deleted tickets.
type AdminChange struct {
	ID        int64     `json:"id" db:"id"`
	Action    string    `json:"action" db:"action"`
	TicketID  int64     `json:"ticket_id" db:"ticket_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SeatCount is the per-(flight, seat class) inventory ledger row. Occupied
// may exceed Capacity only through the administrative promote override.
type SeatCount struct {
	FlightID  string `json:"flight_id" db:"flight_id"`
	SeatClass string `json:"seat_class" db:"seat_class"`
	Capacity  int    `json:"capacity" db:"capacity"`
	Occupied  int    `json:"occupied" db:"occupied"`
}
