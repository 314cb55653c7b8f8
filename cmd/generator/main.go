// Command generator seeds a database with a realistic flight network:
// aircraft types with cabin layouts, airframes, flights with seat counters,
// passengers and unassigned tickets ready for booking.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"skybook/internal/config"
	"skybook/internal/database"
	"skybook/internal/logger"
	"skybook/internal/models"
	"skybook/internal/store"
	"skybook/internal/store/postgres"
)

var (
	flightCount    = flag.Int("flights", 20, "Number of flights to generate")
	passengerCount = flag.Int("passengers", 100, "Number of passengers to generate")
	daysAhead      = flag.Int("days", 14, "Spread departures over this many days")
)

var airports = []string{"ALA", "NQZ", "CIT", "SCO", "AKX", "GUW", "UKK", "PWQ"}

type aircraftType struct {
	id      string
	classes []models.AircraftSeatClass
}

var aircraftTypes = []aircraftType{
	{
		id: "A320",
		classes: []models.AircraftSeatClass{
			{AircraftType: "A320", SeatClass: "business", Seats: 12},
			{AircraftType: "A320", SeatClass: "economy", Seats: 150},
		},
	},
	{
		id: "E190",
		classes: []models.AircraftSeatClass{
			{AircraftType: "E190", SeatClass: "business", Seats: 8},
			{AircraftType: "E190", SeatClass: "economy", Seats: 88},
		},
	},
	{
		id: "Q400",
		classes: []models.AircraftSeatClass{
			{AircraftType: "Q400", SeatClass: "economy", Seats: 78},
		},
	},
}

func main() {
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Starting data generator...")

	db, err := database.Connect(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	st := postgres.New(db, cfg.Database.LockTimeout)
	defer st.Close()

	gen := &generator{store: st, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	if err := gen.run(context.Background()); err != nil {
		slog.Error("Failed to generate data", "error", err)
		os.Exit(1)
	}

	slog.Info("Data generation completed successfully!")
}

type generator struct {
	store store.Store
	rng   *rand.Rand
}

func (g *generator) run(ctx context.Context) error {
	fleet, err := g.seedFleet(ctx)
	if err != nil {
		return err
	}
	flights, err := g.seedFlights(ctx, fleet)
	if err != nil {
		return err
	}
	if err := g.seedPassengers(ctx); err != nil {
		return err
	}
	return g.seedTickets(ctx, flights)
}

func (g *generator) seedFleet(ctx context.Context) ([]models.Aircraft, error) {
	var fleet []models.Aircraft
	err := g.store.Update(ctx, nil, func(tx store.Tx) error {
		for _, at := range aircraftTypes {
			for i := range at.classes {
				if err := tx.PutAircraftSeatClass(ctx, &at.classes[i]); err != nil {
					return err
				}
			}
			// Two airframes per type.
			for i := 0; i < 2; i++ {
				a := models.Aircraft{
					Registration: fmt.Sprintf("UP-%s%02d", at.id, i+1),
					TypeID:       at.id,
				}
				existing, err := tx.GetAircraft(ctx, a.Registration)
				if err != nil {
					return err
				}
				if existing == nil {
					if err := tx.CreateAircraft(ctx, &a); err != nil {
						return err
					}
				}
				fleet = append(fleet, a)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Seeded fleet", "aircraft", len(fleet), "types", len(aircraftTypes))
	return fleet, nil
}

func (g *generator) seedFlights(ctx context.Context, fleet []models.Aircraft) ([]models.Flight, error) {
	var flights []models.Flight
	err := g.store.Update(ctx, nil, func(tx store.Tx) error {
		for i := 0; i < *flightCount; i++ {
			origin := airports[g.rng.Intn(len(airports))]
			dest := airports[g.rng.Intn(len(airports))]
			for dest == origin {
				dest = airports[g.rng.Intn(len(airports))]
			}
			airframe := fleet[g.rng.Intn(len(fleet))]

			departure := time.Now().UTC().
				AddDate(0, 0, g.rng.Intn(*daysAhead)).
				Truncate(time.Hour).
				Add(time.Duration(6+g.rng.Intn(16)) * time.Hour)

			flight := models.Flight{
				ID:        fmt.Sprintf("SB%03d", i+1),
				Origin:    origin,
				Dest:      dest,
				Departure: departure,
				Aircraft:  airframe.Registration,
				CreatedAt: time.Now().UTC(),
			}

			existing, err := tx.GetFlight(ctx, flight.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				flights = append(flights, *existing)
				continue
			}
			if err := tx.CreateFlight(ctx, &flight); err != nil {
				return err
			}

			classes, err := tx.SeatClassesForType(ctx, airframe.TypeID)
			if err != nil {
				return err
			}
			for _, class := range classes {
				count := models.SeatCount{
					FlightID:  flight.ID,
					SeatClass: class.SeatClass,
					Capacity:  class.Seats,
				}
				if err := tx.PutSeatCount(ctx, &count); err != nil {
					return err
				}
			}
			flights = append(flights, flight)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slog.Info("Seeded flights", "count", len(flights))
	return flights, nil
}

func (g *generator) seedPassengers(ctx context.Context) error {
	err := g.store.Update(ctx, nil, func(tx store.Tx) error {
		for i := 0; i < *passengerCount; i++ {
			p := models.Passenger{
				Name:      fmt.Sprintf("Passenger %d", i+1),
				Email:     fmt.Sprintf("passenger%d@example.com", i+1),
				CreatedAt: time.Now().UTC(),
			}
			if err := tx.CreatePassenger(ctx, &p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("Seeded passengers", "count", *passengerCount)
	return nil
}

// seedTickets provisions unassigned tickets covering every seat of every
// flight, plus a surplus so load tests can exercise the waitlist.
func (g *generator) seedTickets(ctx context.Context, flights []models.Flight) error {
	total := 0
	for _, flight := range flights {
		err := g.store.Update(ctx, nil, func(tx store.Tx) error {
			aircraft, err := tx.GetAircraft(ctx, flight.Aircraft)
			if err != nil {
				return err
			}
			classes, err := tx.SeatClassesForType(ctx, aircraft.TypeID)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			for _, class := range classes {
				n := class.Seats + class.Seats/10 + 1
				for i := 0; i < n; i++ {
					t := models.Ticket{
						FlightID:  flight.ID,
						SeatClass: class.SeatClass,
						Status:    models.TicketUnassigned,
						CreatedAt: now,
						UpdatedAt: now,
					}
					if err := tx.CreateTicket(ctx, &t); err != nil {
						return err
					}
					total++
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	slog.Info("Seeded tickets", "count", total)
	return nil
}
