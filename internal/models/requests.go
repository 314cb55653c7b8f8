package models

import "time"

// CreateFlightRequest schedules a flight and provisions its seat counters.
type CreateFlightRequest struct {
	ID        string    `json:"id" binding:"required"`
	Origin    string    `json:"origin" binding:"required"`
	Dest      string    `json:"dest" binding:"required"`
	Departure time.Time `json:"departure" binding:"required"`
	Aircraft  string    `json:"aircraft" binding:"required"`
}

// CreatePassengerRequest registers a passenger.
type CreatePassengerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
}

// CreateTicketRequest provisions an unassigned ticket on a flight.
type CreateTicketRequest struct {
	FlightID   string  `json:"flight_id" binding:"required"`
	SeatClass  string  `json:"seat_class" binding:"required"`
	SeatNumber *string `json:"seat_number"`
}

// CreateTicketResponse carries the generated ticket id.
type CreateTicketResponse struct {
	ID int64 `json:"id"`
}

// BookTicketRequest binds a passenger and payment details to a ticket.
type BookTicketRequest struct {
	TicketID    int64  `json:"ticket_id" binding:"required"`
	PassengerID int64  `json:"passenger_id" binding:"required"`
	Amount      int64  `json:"amount" binding:"required"`
	Method      string `json:"method" binding:"required"`
}

// BookTicketResponse reports which side of the capacity check the booking
// landed on. PaymentID is set only for the booked outcome.
type BookTicketResponse struct {
	TicketID  int64          `json:"ticket_id"`
	Outcome   BookingOutcome `json:"outcome"`
	PaymentID *string        `json:"payment_id,omitempty"`
}

// SeatFreedRequest is posted by the cancellation collaborator when occupancy
// for a (flight, seat class) pair decreased outside this service.
type SeatFreedRequest struct {
	FlightID  string `json:"flight_id" binding:"required"`
	SeatClass string `json:"seat_class" binding:"required"`
}

// PromotionResponse reports the ticket promoted by a seat-freed event, if any.
type PromotionResponse struct {
	PromotedTicketID *int64 `json:"promoted_ticket_id"`
}

// LoadFactorResponse carries both the legacy truncated figure and the exact
// percentage; LoadFactor reproduces the historical two-character truncation.
type LoadFactorResponse struct {
	FlightID   string  `json:"flight_id"`
	LoadFactor int     `json:"load_factor"`
	Exact      float64 `json:"exact"`
}

// FlightBookingPercentage is the per-flight slice of the booking-percentage
// report: active tickets divided by the fixed reference capacity of 20.
type FlightBookingPercentage struct {
	FlightID   string  `json:"flight_id"`
	Active     int     `json:"active"`
	Percentage float64 `json:"percentage"`
}

// WaitlistEntry is one seat class of a flight's waitlist, passengers in
// promotion order.
type WaitlistEntry struct {
	SeatClass  string  `json:"seat_class"`
	Count      int     `json:"count"`
	Passengers []int64 `json:"passengers"`
}

// EditTicketRequest reassigns the seat number of a ticket. The flight, class
// and booking state are not editable through this path.
type EditTicketRequest struct {
	SeatNumber *string `json:"seat_number" binding:"required"`
}

// CreateMaintenanceRequest schedules maintenance for an airframe.
type CreateMaintenanceRequest struct {
	Registration string    `json:"registration" binding:"required"`
	Type         string    `json:"type" binding:"required"`
	Technician   string    `json:"technician" binding:"required"`
	ScheduledFor time.Time `json:"scheduled_for" binding:"required"`
	Notes        string    `json:"notes"`
}

// AircraftLoadFactor is one airframe's row of the fleet report: active seats
// across its flights on a date against the airframe's installed seats.
// Airframes not flying that date report zero.
type AircraftLoadFactor struct {
	Registration string  `json:"registration"`
	TotalSeats   int     `json:"total_seats"`
	BookedSeats  int     `json:"booked_seats"`
	LoadFactor   float64 `json:"load_factor"`
}

// AdminChangeCount is one row of the administrative-changes report.
type AdminChangeCount struct {
	Action string `json:"action"`
	Count  int    `json:"count"`
}
