package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createAircraftSeatClassesTable,
		createAircraftTable,
		createFlightsTable,
		createPassengersTable,
		createTicketsTable,
		createPaymentsTable,
		createSeatCountsTable,
		createMaintenanceTable,
		createAdminChangesTable,
		createTicketWaitlistIndex,
		createFlightsDepartureIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createAircraftSeatClassesTable = `
CREATE TABLE IF NOT EXISTS aircraft_seat_classes (
    aircraft_type VARCHAR(50) NOT NULL,
    seat_class VARCHAR(50) NOT NULL,
    seats INTEGER NOT NULL CHECK (seats >= 0),

    PRIMARY KEY (aircraft_type, seat_class)
);`

const createAircraftTable = `
CREATE TABLE IF NOT EXISTS aircraft (
    registration VARCHAR(20) PRIMARY KEY,
    type_id VARCHAR(50) NOT NULL
);`

const createFlightsTable = `
CREATE TABLE IF NOT EXISTS flights (
    id VARCHAR(20) PRIMARY KEY,
    origin VARCHAR(100) NOT NULL,
    dest VARCHAR(100) NOT NULL,
    departure TIMESTAMPTZ NOT NULL,
    aircraft VARCHAR(20) NOT NULL REFERENCES aircraft(registration),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createPassengersTable = `
CREATE TABLE IF NOT EXISTS passengers (
    id SERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    email VARCHAR(255) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
    id SERIAL PRIMARY KEY,
    flight_id VARCHAR(20) NOT NULL REFERENCES flights(id),
    seat_class VARCHAR(50) NOT NULL,
    seat_number VARCHAR(10),
    passenger_id INTEGER REFERENCES passengers(id),
    payment_id UUID,
    status VARCHAR(20) NOT NULL DEFAULT 'unassigned',
    requested_at TIMESTAMPTZ,
    held_amount BIGINT,
    held_method VARCHAR(50),
    booked_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (status IN ('unassigned', 'waitlisted', 'active', 'cancelled'))
);`

const createPaymentsTable = `
CREATE TABLE IF NOT EXISTS payments (
    id UUID PRIMARY KEY,
    ticket_id INTEGER NOT NULL REFERENCES tickets(id),
    amount BIGINT NOT NULL CHECK (amount > 0),
    method VARCHAR(50) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createSeatCountsTable = `
CREATE TABLE IF NOT EXISTS seat_counts (
    flight_id VARCHAR(20) NOT NULL REFERENCES flights(id),
    seat_class VARCHAR(50) NOT NULL,
    capacity INTEGER NOT NULL CHECK (capacity >= 0),
    occupied INTEGER NOT NULL DEFAULT 0 CHECK (occupied >= 0),

    PRIMARY KEY (flight_id, seat_class)
);`

const createMaintenanceTable = `
CREATE TABLE IF NOT EXISTS maintenance (
    id SERIAL PRIMARY KEY,
    registration VARCHAR(20) NOT NULL REFERENCES aircraft(registration),
    maintenance_type VARCHAR(100) NOT NULL,
    technician VARCHAR(100) NOT NULL,
    scheduled_for TIMESTAMPTZ NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createAdminChangesTable = `
CREATE TABLE IF NOT EXISTS admin_changes (
    id SERIAL PRIMARY KEY,
    action VARCHAR(50) NOT NULL,
    ticket_id INTEGER NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createTicketWaitlistIndex = `
CREATE INDEX IF NOT EXISTS tickets_waitlist_idx
ON tickets (flight_id, seat_class, requested_at, id)
WHERE status = 'waitlisted';`

const createFlightsDepartureIndex = `
CREATE INDEX IF NOT EXISTS flights_departure_date_idx
ON flights ((departure AT TIME ZONE 'UTC')::date);`
