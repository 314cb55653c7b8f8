package postgres

import (
	"context"
	"database/sql"

	"skybook/internal/models"
)

func (t *pgTx) GetFlight(ctx context.Context, id string) (*models.Flight, error) {
	flight := &models.Flight{}
	query := `
		SELECT id, origin, dest, departure, aircraft, created_at
		FROM flights
		WHERE id = $1`

	err := t.tx.QueryRowContext(ctx, query, id).Scan(
		&flight.ID,
		&flight.Origin,
		&flight.Dest,
		&flight.Departure,
		&flight.Aircraft,
		&flight.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return flight, nil
}

func (t *pgTx) CreateFlight(ctx context.Context, f *models.Flight) error {
	query := `
		INSERT INTO flights (id, origin, dest, departure, aircraft)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := t.tx.QueryRowContext(ctx, query,
		f.ID,
		f.Origin,
		f.Dest,
		f.Departure,
		f.Aircraft,
	).Scan(&f.CreatedAt)

	return classify(err)
}

func (t *pgTx) ListFlights(ctx context.Context) ([]models.Flight, error) {
	query := `
		SELECT id, origin, dest, departure, aircraft, created_at
		FROM flights
		ORDER BY id`

	rows, err := t.tx.QueryContext(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var flights []models.Flight
	for rows.Next() {
		var f models.Flight
		if err := rows.Scan(&f.ID, &f.Origin, &f.Dest, &f.Departure, &f.Aircraft, &f.CreatedAt); err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (t *pgTx) GetAircraft(ctx context.Context, registration string) (*models.Aircraft, error) {
	aircraft := &models.Aircraft{}
	query := `SELECT registration, type_id FROM aircraft WHERE registration = $1`

	err := t.tx.QueryRowContext(ctx, query, registration).Scan(
		&aircraft.Registration,
		&aircraft.TypeID,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return aircraft, nil
}

func (t *pgTx) CreateAircraft(ctx context.Context, a *models.Aircraft) error {
	query := `
		INSERT INTO aircraft (registration, type_id)
		VALUES ($1, $2)
		ON CONFLICT (registration) DO UPDATE SET type_id = EXCLUDED.type_id`

	_, err := t.tx.ExecContext(ctx, query, a.Registration, a.TypeID)
	return classify(err)
}

func (t *pgTx) ListAircraft(ctx context.Context) ([]models.Aircraft, error) {
	query := `SELECT registration, type_id FROM aircraft ORDER BY registration`

	rows, err := t.tx.QueryContext(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var fleet []models.Aircraft
	for rows.Next() {
		var a models.Aircraft
		if err := rows.Scan(&a.Registration, &a.TypeID); err != nil {
			return nil, err
		}
		fleet = append(fleet, a)
	}
	return fleet, rows.Err()
}

func (t *pgTx) SeatClassesForType(ctx context.Context, aircraftType string) ([]models.AircraftSeatClass, error) {
	query := `
		SELECT aircraft_type, seat_class, seats
		FROM aircraft_seat_classes
		WHERE aircraft_type = $1
		ORDER BY seat_class`

	rows, err := t.tx.QueryContext(ctx, query, aircraftType)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var classes []models.AircraftSeatClass
	for rows.Next() {
		var sc models.AircraftSeatClass
		if err := rows.Scan(&sc.AircraftType, &sc.SeatClass, &sc.Seats); err != nil {
			return nil, err
		}
		classes = append(classes, sc)
	}
	return classes, rows.Err()
}

func (t *pgTx) PutAircraftSeatClass(ctx context.Context, sc *models.AircraftSeatClass) error {
	query := `
		INSERT INTO aircraft_seat_classes (aircraft_type, seat_class, seats)
		VALUES ($1, $2, $3)
		ON CONFLICT (aircraft_type, seat_class) DO UPDATE SET seats = EXCLUDED.seats`

	_, err := t.tx.ExecContext(ctx, query, sc.AircraftType, sc.SeatClass, sc.Seats)
	return classify(err)
}
