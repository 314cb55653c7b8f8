package models

import "time"

// NATS subjects
const (
	EventSeatReleased     = "seat.released"
	EventTicketBooked     = "ticket.booked"
	EventTicketWaitlisted = "ticket.waitlisted"
	EventTicketCancelled  = "ticket.cancelled"
	EventTicketPromoted   = "ticket.promoted"
)

// SeatReleasedEvent announces that occupancy for a (flight, seat class)
// decreased; consumers run one waitlist promotion attempt per event.
type SeatReleasedEvent struct {
	FlightID  string    `json:"flight_id"`
	SeatClass string    `json:"seat_class"`
	Timestamp time.Time `json:"timestamp"`
}

// TicketBookedEvent is published after a booking transaction commits with the
// booked outcome.
type TicketBookedEvent struct {
	TicketID    int64     `json:"ticket_id"`
	FlightID    string    `json:"flight_id"`
	SeatClass   string    `json:"seat_class"`
	PassengerID int64     `json:"passenger_id"`
	PaymentID   string    `json:"payment_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// TicketWaitlistedEvent is published when a booking lands on the waitlist.
type TicketWaitlistedEvent struct {
	TicketID    int64     `json:"ticket_id"`
	FlightID    string    `json:"flight_id"`
	SeatClass   string    `json:"seat_class"`
	PassengerID int64     `json:"passenger_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// TicketCancelledEvent is published after a cancellation commits.
type TicketCancelledEvent struct {
	TicketID     int64     `json:"ticket_id"`
	FlightID     string    `json:"flight_id"`
	SeatClass    string    `json:"seat_class"`
	SeatReleased bool      `json:"seat_released"`
	Timestamp    time.Time `json:"timestamp"`
}

// TicketPromotedEvent is published when a waitlisted ticket becomes active,
// either through a seat-freed promotion or the administrative override.
type TicketPromotedEvent struct {
	TicketID  int64     `json:"ticket_id"`
	FlightID  string    `json:"flight_id"`
	SeatClass string    `json:"seat_class"`
	Forced    bool      `json:"forced"`
	PaymentID string    `json:"payment_id"`
	Timestamp time.Time `json:"timestamp"`
}
