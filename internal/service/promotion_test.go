package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skybook/internal/models"
	"skybook/internal/store"
)

func TestOnSeatFreed_PromotesInRequestOrder(t *testing.T) {
	f := newFixture(t)
	f.addFlight("SB001", map[string]int{"economy": 1})
	ctx := context.Background()

	holder := f.addPassenger("holder")
	held := f.addTicket("SB001", "economy")
	_, err := f.services.Bookings.Book(ctx, held, holder, details(100))
	require.NoError(t, err)

	// Three waitlisted bookings in order.
	var waiting []int64
	for _, name := range []string{"w1", "w2", "w3"} {
		p := f.addPassenger(name)
		id := f.addTicket("SB001", "economy")
		result, err := f.services.Bookings.Book(ctx, id, p, details(100))
		require.NoError(t, err)
		require.Equal(t, models.OutcomeWaitlisted, result.Outcome)
		waiting = append(waiting, id)
		time.Sleep(2 * time.Millisecond)
	}

	require.NoError(t, f.services.Bookings.Cancel(ctx, held))

	promoted, err := f.services.Promotion.OnSeatFreed(ctx, "SB001", "economy")
	require.NoError(t, err)
	require.NotNil(t, promoted)
	assert.Equal(t, waiting[0], *promoted)

	assert.Equal(t, models.TicketActive, f.getTicket(waiting[0]).Status)
	assert.Equal(t, models.TicketWaitlisted, f.getTicket(waiting[1]).Status)
	assert.Equal(t, models.TicketWaitlisted, f.getTicket(waiting[2]).Status)
	assert.Equal(t, 1, f.occupied("SB001", "economy"))
}

func TestOnSeatFreed_TieBrokenByTicketID(t *testing.T) {
	f := newFixture(t)
	f.addFlight("SB001", map[string]int{"economy": 0})
	ctx := context.Background()

	// Force identical request times so ordering falls back to ticket id.
	when := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	var ids []int64
	err := f.store.Update(ctx, nil, func(tx store.Tx) error {
		for _, name := range []string{"a", "b"} {
			p := &models.Passenger{Name: name, Email: name + "@example.com", CreatedAt: when}
			if err := tx.CreatePassenger(ctx, p); err != nil {
				return err
			}
			amount := int64(100)
			method := "card"
			ticket := &models.Ticket{
				FlightID:    "SB001",
				SeatClass:   "economy",
				PassengerID: &p.ID,
				Status:      models.TicketWaitlisted,
				RequestedAt: &when,
				HeldAmount:  &amount,
				HeldMethod:  &method,
				CreatedAt:   when,
				UpdatedAt:   when,
			}
			if err := tx.CreateTicket(ctx, ticket); err != nil {
				return err
			}
			ids = append(ids, ticket.ID)
		}
		// Make room for exactly one promotion.
		return tx.PutSeatCount(ctx, &models.SeatCount{
			FlightID:  "SB001",
			SeatClass: "economy",
			Capacity:  1,
		})
	})
	require.NoError(t, err)

	promoted, err := f.services.Promotion.OnSeatFreed(ctx, "SB001", "economy")
	require.NoError(t, err)
	require.NotNil(t, promoted)
	assert.Equal(t, ids[0], *promoted)
	assert.Less(t, ids[0], ids[1])
}

func TestOnSeatFreed_EmptyWaitlistIsNoop(t *testing.T) {
	f := newFixture(t)
	f.addFlight("SB001", map[string]int{"economy": 2})

	promoted, err := f.services.Promotion.OnSeatFreed(context.Background(), "SB001", "economy")
	require.NoError(t, err)
	assert.Nil(t, promoted)
	assert.Equal(t, 0, f.occupied("SB001", "economy"))
}

func TestOnSeatFreed_FullClassLeavesCandidateWaitlisted(t *testing.T) {
	f := newFixture(t)
	f.addFlight("SB001", map[string]int{"economy": 1})
	ctx := context.Background()

	holder := f.addPassenger("holder")
	held := f.addTicket("SB001", "economy")
	_, err := f.services.Bookings.Book(ctx, held, holder, details(100))
	require.NoError(t, err)

	waiter := f.addPassenger("waiter")
	waiting := f.addTicket("SB001", "economy")
	_, err = f.services.Bookings.Book(ctx, waiting, waiter, details(100))
	require.NoError(t, err)

	// A stale seat-freed notification arrives while the class is still full.
	promoted, err := f.services.Promotion.OnSeatFreed(ctx, "SB001", "economy")
	require.NoError(t, err)
	assert.Nil(t, promoted)
	assert.Equal(t, models.TicketWaitlisted, f.getTicket(waiting).Status)
	assert.Equal(t, 1, f.occupied("SB001", "economy"))
}

func TestOnSeatFreed_PromotesAtMostOnePerCall(t *testing.T) {
	f := newFixture(t)
	f.addFlight("SB001", map[string]int{"economy": 2})
	ctx := context.Background()

	var holders []int64
	for _, name := range []string{"h1", "h2"} {
		p := f.addPassenger(name)
		id := f.addTicket("SB001", "economy")
		result, err := f.services.Bookings.Book(ctx, id, p, details(100))
		require.NoError(t, err)
		require.Equal(t, models.OutcomeBooked, result.Outcome)
		holders = append(holders, id)
	}

	var waiting []int64
	for _, name := range []string{"w1", "w2"} {
		p := f.addPassenger(name)
		id := f.addTicket("SB001", "economy")
		result, err := f.services.Bookings.Book(ctx, id, p, details(100))
		require.NoError(t, err)
		require.Equal(t, models.OutcomeWaitlisted, result.Outcome)
		waiting = append(waiting, id)
		time.Sleep(2 * time.Millisecond)
	}

	// Both holders cancel, leaving two free seats and two waiters.
	require.NoError(t, f.services.Bookings.Cancel(ctx, holders[0]))
	require.NoError(t, f.services.Bookings.Cancel(ctx, holders[1]))

	promoted, err := f.services.Promotion.OnSeatFreed(ctx, "SB001", "economy")
	require.NoError(t, err)
	require.NotNil(t, promoted)
	assert.Equal(t, waiting[0], *promoted)

	// Even with two free seats one call promotes one ticket.
	assert.Equal(t, models.TicketWaitlisted, f.getTicket(waiting[1]).Status)
}

func TestOnSeatFreed_UsesHeldPaymentDetails(t *testing.T) {
	f := newFixture(t)
	f.addFlight("SB001", map[string]int{"economy": 1})
	ctx := context.Background()

	holder := f.addPassenger("holder")
	held := f.addTicket("SB001", "economy")
	_, err := f.services.Bookings.Book(ctx, held, holder, details(100))
	require.NoError(t, err)

	waiter := f.addPassenger("waiter")
	waiting := f.addTicket("SB001", "economy")
	_, err = f.services.Bookings.Book(ctx, waiting, waiter, details(777))
	require.NoError(t, err)

	require.NoError(t, f.services.Bookings.Cancel(ctx, held))
	promoted, err := f.services.Promotion.OnSeatFreed(ctx, "SB001", "economy")
	require.NoError(t, err)
	require.NotNil(t, promoted)

	ticket := f.getTicket(waiting)
	assert.Equal(t, models.TicketActive, ticket.Status)
	assert.Nil(t, ticket.HeldAmount)
	assert.Nil(t, ticket.HeldMethod)

	var amount int64
	for _, p := range f.payments() {
		if p.TicketID == waiting {
			amount = p.Amount
		}
	}
	assert.Equal(t, int64(777), amount)
}
