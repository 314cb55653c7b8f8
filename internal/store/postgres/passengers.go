package postgres

import (
	"context"
	"database/sql"

	"skybook/internal/models"
)

func (t *pgTx) GetPassenger(ctx context.Context, id int64) (*models.Passenger, error) {
	passenger := &models.Passenger{}
	query := `SELECT id, name, email, created_at FROM passengers WHERE id = $1`

	err := t.tx.QueryRowContext(ctx, query, id).Scan(
		&passenger.ID,
		&passenger.Name,
		&passenger.Email,
		&passenger.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return passenger, nil
}

func (t *pgTx) CreatePassenger(ctx context.Context, p *models.Passenger) error {
	query := `
		INSERT INTO passengers (name, email)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := t.tx.QueryRowContext(ctx, query, p.Name, p.Email).Scan(&p.ID, &p.CreatedAt)
	return classify(err)
}

func (t *pgTx) ListPassengers(ctx context.Context) ([]models.Passenger, error) {
	query := `SELECT id, name, email, created_at FROM passengers ORDER BY id`

	rows, err := t.tx.QueryContext(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var passengers []models.Passenger
	for rows.Next() {
		var p models.Passenger
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.CreatedAt); err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}
	return passengers, rows.Err()
}
