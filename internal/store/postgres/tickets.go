package postgres

import (
	"context"
	"database/sql"

	"skybook/internal/models"
	"skybook/internal/store"
)

const ticketColumns = `id, flight_id, seat_class, seat_number, passenger_id, payment_id,
	       status, requested_at, held_amount, held_method, booked_at, created_at, updated_at`

func scanTicket(row interface{ Scan(...any) error }) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	err := row.Scan(
		&ticket.ID,
		&ticket.FlightID,
		&ticket.SeatClass,
		&ticket.SeatNumber,
		&ticket.PassengerID,
		&ticket.PaymentID,
		&ticket.Status,
		&ticket.RequestedAt,
		&ticket.HeldAmount,
		&ticket.HeldMethod,
		&ticket.BookedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (t *pgTx) GetTicket(ctx context.Context, id int64) (*models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	ticket, err := scanTicket(t.tx.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return ticket, nil
}

func (t *pgTx) CreateTicket(ctx context.Context, tk *models.Ticket) error {
	query := `
		INSERT INTO tickets (flight_id, seat_class, seat_number, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := t.tx.QueryRowContext(ctx, query,
		tk.FlightID,
		tk.SeatClass,
		tk.SeatNumber,
		tk.Status,
	).Scan(&tk.ID, &tk.CreatedAt, &tk.UpdatedAt)

	return classify(err)
}

func (t *pgTx) UpdateTicket(ctx context.Context, tk *models.Ticket) error {
	query := `
		UPDATE tickets SET
			passenger_id = $1,
			payment_id = $2,
			status = $3,
			requested_at = $4,
			held_amount = $5,
			held_method = $6,
			booked_at = $7,
			updated_at = NOW()
		WHERE id = $8`

	_, err := t.tx.ExecContext(ctx, query,
		tk.PassengerID,
		tk.PaymentID,
		tk.Status,
		tk.RequestedAt,
		tk.HeldAmount,
		tk.HeldMethod,
		tk.BookedAt,
		tk.ID,
	)
	return classify(err)
}

func (t *pgTx) DeleteTicket(ctx context.Context, id int64) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	return classify(err)
}

func (t *pgTx) queryTickets(ctx context.Context, query string, args ...any) ([]models.Ticket, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *ticket)
	}
	return tickets, rows.Err()
}

func (t *pgTx) TicketsByStatus(ctx context.Context, status models.TicketStatus) ([]models.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE status = $1 ORDER BY id`
	return t.queryTickets(ctx, query, status)
}

func (t *pgTx) WaitlistedTickets(ctx context.Context, key store.SeatKey) ([]models.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE status = 'waitlisted' AND flight_id = $1 AND seat_class = $2
		ORDER BY requested_at, id`
	return t.queryTickets(ctx, query, key.FlightID, key.SeatClass)
}

func (t *pgTx) WaitlistForFlight(ctx context.Context, flightID string) ([]models.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE status = 'waitlisted' AND flight_id = $1
		ORDER BY seat_class, requested_at, id`
	return t.queryTickets(ctx, query, flightID)
}
