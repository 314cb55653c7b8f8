package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "skybook/internal/errors"
	"skybook/internal/models"
)

func TestBook_ActivatesTicketAndCreatesPayment(t *testing.T) {
	f := newFixture(t)
	f.addFlight("SB001", map[string]int{"economy": 3})
	passengerID := f.addPassenger("alice")
	ticketID := f.addTicket("SB001", "economy")

	result, err := f.services.Bookings.Book(context.Background(), ticketID, passengerID, details(15000))
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeBooked, result.Outcome)
	require.NotNil(t, result.PaymentID)

	ticket := f.getTicket(ticketID)
	assert.Equal(t, models.TicketActive, ticket.Status)
	require.NotNil(t, ticket.PassengerID)
	assert.Equal(t, passengerID, *ticket.PassengerID)
	require.NotNil(t, ticket.PaymentID)
	assert.Equal(t, *result.PaymentID, *ticket.PaymentID)
	assert.NotNil(t, ticket.BookedAt)
	assert.Nil(t, ticket.HeldAmount)

	payments := f.payments()
	require.Len(t, payments, 1)
	assert.Equal(t, ticketID, payments[0].TicketID)
	assert.Equal(t, int64(15000), payments[0].Amount)
	assert.Equal(t, "card", payments[0].Method)

	assert.Equal(t, 1, f.occupied("SB001", "economy"))
}

func TestBook_FullClassWaitlistsWithoutPayment(t *testing.T) {
	f := newFixture(t)
	f.addFlight("SB001", map[string]int{"economy": 1})
	alice := f.addPassenger("alice")
	bob := f.addPassenger("bob")
	first := f.addTicket("SB001", "economy")
	second := f.addTicket("SB001", "economy")

	result, err := f.services.Bookings.Book(context.Background(), first, alice, details(15000))
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeBooked, result.Outcome)

	result, err = f.services.Bookings.Book(context.Background(), second, bob, details(20000))
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeWaitlisted, result.Outcome)
	assert.Nil(t, result.PaymentID)

	ticket := f.getTicket(second)
	assert.Equal(t, models.TicketWaitlisted, ticket.Status)
	assert.Nil(t, ticket.PaymentID)
	require.NotNil(t, ticket.HeldAmount)
	assert.Equal(t, int64(20000), *ticket.HeldAmount)
	require.NotNil(t, ticket.HeldMethod)
	assert.Equal(t, "card", *ticket.HeldMethod)
	assert.NotNil(t, ticket.RequestedAt)

	// No payment taken for a seat that was not secured.
	assert.Len(t, f.payments(), 1)
	assert.Equal(t, 1, f.occupied("SB001", "economy"))
}

func TestBook_ValidationErrors(t *testing.T) {
	f := newFixture(t)
	f.addFlight("SB001", map[string]int{"economy": 3})
	passengerID := f.addPassenger("alice")
	ticketID := f.addTicket("SB001", "economy")

	_, err := f.services.Bookings.Book(context.Background(), ticketID, passengerID, models.PaymentDetails{Amount: 0, Method: "card"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.services.Bookings.Book(context.Background(), ticketID, passengerID, models.PaymentDetails{Amount: 100, Method: ""})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// Failed validation left the ticket untouched.
	assert.Equal(t, models.TicketUnassigned, f.getTicket(ticketID).Status)
	assert.Equal(t, 0, f.occupied("SB001", "economy"))
}

func TestBook_UnknownTicketAndPassenger(t *testing.T) {
	f := newFixture(t)
	f.addFlight("SB001", map[string]int{"economy": 3})
	passengerID := f.addPassenger("alice")
	ticketID := f.addTicket("SB001", "economy")

	_, err := f.services.Bookings.Book(context.Background(), 9999, passengerID, details(100))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.services.Bookings.Book(context.Background(), ticketID, 9999, details(100))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// The passenger lookup failure rolled back the whole transaction.
	ticket := f.getTicket(ticketID)
	assert.Equal(t, models.TicketUnassigned, ticket.Status)
	assert.Nil(t, ticket.PassengerID)
	assert.Equal(t, 0, f.occupied("SB001", "economy"))
	assert.Empty(t, f.payments())
}

func TestBook_AlreadyBookedConflicts(t *testing.T) {
	f := newFixture(t)
	f.addFlight("SB001", map[string]int{"economy": 3})
	alice := f.addPassenger("alice")
	bob := f.addPassenger("bob")
	ticketID := f.addTicket("SB001", "economy")

	_, err := f.services.Bookings.Book(context.Background(), ticketID, alice, details(100))
	require.NoError(t, err)

	_, err = f.services.Bookings.Book(context.Background(), ticketID, bob, details(100))
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// Still owned by the first passenger.
	ticket := f.getTicket(ticketID)
	assert.Equal(t, alice, *ticket.PassengerID)
	assert.Equal(t, 1, f.occupied("SB001", "economy"))
}

func TestCancel_ActiveTicketFreesSeat(t *testing.T) {
	f := newFixture(t)
	f.addFlight("SB001", map[string]int{"economy": 2})
	passengerID := f.addPassenger("alice")
	ticketID := f.addTicket("SB001", "economy")

	_, err := f.services.Bookings.Book(context.Background(), ticketID, passengerID, details(100))
	require.NoError(t, err)
	require.Equal(t, 1, f.occupied("SB001", "economy"))

	require.NoError(t, f.services.Bookings.Cancel(context.Background(), ticketID))

	assert.Equal(t, models.TicketCancelled, f.getTicket(ticketID).Status)
	assert.Equal(t, 0, f.occupied("SB001", "economy"))
}

func TestCancel_WaitlistedTicketLeavesOccupancyAlone(t *testing.T) {
	f := newFixture(t)
	f.addFlight("SB001", map[string]int{"economy": 1})
	alice := f.addPassenger("alice")
	bob := f.addPassenger("bob")
	first := f.addTicket("SB001", "economy")
	second := f.addTicket("SB001", "economy")

	_, err := f.services.Bookings.Book(context.Background(), first, alice, details(100))
	require.NoError(t, err)
	_, err = f.services.Bookings.Book(context.Background(), second, bob, details(100))
	require.NoError(t, err)

	require.NoError(t, f.services.Bookings.Cancel(context.Background(), second))

	assert.Equal(t, models.TicketCancelled, f.getTicket(second).Status)
	assert.Equal(t, 1, f.occupied("SB001", "economy"))
}

func TestCancel_IsTerminal(t *testing.T) {
	f := newFixture(t)
	f.addFlight("SB001", map[string]int{"economy": 2})
	passengerID := f.addPassenger("alice")
	ticketID := f.addTicket("SB001", "economy")

	// Unassigned tickets cannot be cancelled, only deleted.
	err := f.services.Bookings.Cancel(context.Background(), ticketID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = f.services.Bookings.Book(context.Background(), ticketID, passengerID, details(100))
	require.NoError(t, err)
	require.NoError(t, f.services.Bookings.Cancel(context.Background(), ticketID))

	err = f.services.Bookings.Cancel(context.Background(), ticketID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestForcePromote_OverridesCapacity(t *testing.T) {
	f := newFixture(t)
	f.addFlight("SB001", map[string]int{"economy": 1})
	alice := f.addPassenger("alice")
	bob := f.addPassenger("bob")
	first := f.addTicket("SB001", "economy")
	second := f.addTicket("SB001", "economy")

	_, err := f.services.Bookings.Book(context.Background(), first, alice, details(100))
	require.NoError(t, err)
	_, err = f.services.Bookings.Book(context.Background(), second, bob, details(250))
	require.NoError(t, err)

	require.NoError(t, f.services.Bookings.ForcePromote(context.Background(), second))

	// Occupancy exceeds capacity; the ledger still matches active tickets.
	assert.Equal(t, 2, f.occupied("SB001", "economy"))

	ticket := f.getTicket(second)
	assert.Equal(t, models.TicketActive, ticket.Status)
	require.NotNil(t, ticket.PaymentID)
	assert.Nil(t, ticket.HeldAmount)

	// The payment came from the held details.
	payments := f.payments()
	require.Len(t, payments, 2)
	var promotedAmount int64
	for _, p := range payments {
		if p.TicketID == second {
			promotedAmount = p.Amount
		}
	}
	assert.Equal(t, int64(250), promotedAmount)
}

func TestForcePromote_RequiresWaitlistedTicket(t *testing.T) {
	f := newFixture(t)
	f.addFlight("SB001", map[string]int{"economy": 2})
	passengerID := f.addPassenger("alice")
	ticketID := f.addTicket("SB001", "economy")

	err := f.services.Bookings.ForcePromote(context.Background(), ticketID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = f.services.Bookings.Book(context.Background(), ticketID, passengerID, details(100))
	require.NoError(t, err)

	err = f.services.Bookings.ForcePromote(context.Background(), ticketID)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	err = f.services.Bookings.ForcePromote(context.Background(), 9999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
