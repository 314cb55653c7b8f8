package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"skybook/internal/models"
	"skybook/internal/service"
	"skybook/internal/store"
	"skybook/internal/store/memory"
)

// fixture wires the services against the in-memory store and offers seeding
// shortcuts shared by the tests in this package.
type fixture struct {
	t        *testing.T
	store    *memory.Memory
	services *service.Services
}

func newFixture(t *testing.T) *fixture {
	st := memory.New(2 * time.Second)
	return &fixture{
		t:        t,
		store:    st,
		services: service.NewServices(st, nil, nil),
	}
}

// addFlight creates a flight with one dedicated aircraft type whose cabins
// match classSeats, seat counters starting empty.
func (f *fixture) addFlight(id string, classSeats map[string]int) {
	f.t.Helper()
	ctx := context.Background()
	reg := id + "-AC"

	err := f.store.Update(ctx, nil, func(tx store.Tx) error {
		for class, seats := range classSeats {
			if err := tx.PutAircraftSeatClass(ctx, &models.AircraftSeatClass{
				AircraftType: id + "-TYPE",
				SeatClass:    class,
				Seats:        seats,
			}); err != nil {
				return err
			}
		}
		if err := tx.CreateAircraft(ctx, &models.Aircraft{
			Registration: reg,
			TypeID:       id + "-TYPE",
		}); err != nil {
			return err
		}
		if err := tx.CreateFlight(ctx, &models.Flight{
			ID:        id,
			Origin:    "ALA",
			Dest:      "NQZ",
			Departure: time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC),
			Aircraft:  reg,
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		for class, seats := range classSeats {
			if err := tx.PutSeatCount(ctx, &models.SeatCount{
				FlightID:  id,
				SeatClass: class,
				Capacity:  seats,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(f.t, err)
}

func (f *fixture) addPassenger(name string) int64 {
	f.t.Helper()
	p, err := f.services.Passengers.Create(context.Background(), &models.CreatePassengerRequest{
		Name:  name,
		Email: name + "@example.com",
	})
	require.NoError(f.t, err)
	return p.ID
}

func (f *fixture) addTicket(flightID, seatClass string) int64 {
	f.t.Helper()
	ticket, err := f.services.Flights.ProvisionTicket(context.Background(), flightID, seatClass, nil)
	require.NoError(f.t, err)
	return ticket.ID
}

func (f *fixture) getTicket(id int64) *models.Ticket {
	f.t.Helper()
	var ticket *models.Ticket
	err := f.store.View(context.Background(), func(tx store.Tx) error {
		var err error
		ticket, err = tx.GetTicket(context.Background(), id)
		return err
	})
	require.NoError(f.t, err)
	require.NotNil(f.t, ticket)
	return ticket
}

func (f *fixture) occupied(flightID, seatClass string) int {
	f.t.Helper()
	n, err := f.services.Inventory.OccupiedCount(context.Background(), flightID, seatClass)
	require.NoError(f.t, err)
	return n
}

func (f *fixture) payments() []models.Payment {
	f.t.Helper()
	payments, err := f.services.Reports.PaymentList(context.Background())
	require.NoError(f.t, err)
	return payments
}

func details(amount int64) models.PaymentDetails {
	return models.PaymentDetails{Amount: amount, Method: "card"}
}
