package postgres

import (
	"context"

	"skybook/internal/models"
)

func (t *pgTx) CreatePayment(ctx context.Context, p *models.Payment) error {
	query := `
		INSERT INTO payments (id, ticket_id, amount, method, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := t.tx.ExecContext(ctx, query, p.ID, p.TicketID, p.Amount, p.Method, p.CreatedAt)
	return classify(err)
}

func (t *pgTx) ListPayments(ctx context.Context) ([]models.Payment, error) {
	query := `
		SELECT id, ticket_id, amount, method, created_at
		FROM payments
		ORDER BY created_at, id`

	rows, err := t.tx.QueryContext(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.TicketID, &p.Amount, &p.Method, &p.CreatedAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
