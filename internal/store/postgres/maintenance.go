package postgres

import (
	"context"

	"skybook/internal/models"
)

func (t *pgTx) CreateMaintenance(ctx context.Context, rec *models.MaintenanceRecord) error {
	query := `
		INSERT INTO maintenance (registration, maintenance_type, technician, scheduled_for, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := t.tx.QueryRowContext(ctx, query,
		rec.Registration,
		rec.Type,
		rec.Technician,
		rec.ScheduledFor,
		rec.Notes,
	).Scan(&rec.ID, &rec.CreatedAt)

	return classify(err)
}

func (t *pgTx) ListMaintenance(ctx context.Context, registration, technician string) ([]models.MaintenanceRecord, error) {
	query := `
		SELECT id, registration, maintenance_type, technician, scheduled_for, notes, created_at
		FROM maintenance
		WHERE ($1 = '' OR registration = $1)
		  AND ($2 = '' OR technician = $2)
		ORDER BY scheduled_for, id`

	rows, err := t.tx.QueryContext(ctx, query, registration, technician)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var records []models.MaintenanceRecord
	for rows.Next() {
		var rec models.MaintenanceRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Registration,
			&rec.Type,
			&rec.Technician,
			&rec.ScheduledFor,
			&rec.Notes,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (t *pgTx) AppendAdminChange(ctx context.Context, change *models.AdminChange) error {
	query := `
		INSERT INTO admin_changes (action, ticket_id)
		VALUES ($1, $2)
		RETURNING id, created_at`

	err := t.tx.QueryRowContext(ctx, query, change.Action, change.TicketID).
		Scan(&change.ID, &change.CreatedAt)

	return classify(err)
}

func (t *pgTx) AdminChangeCounts(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT action, COUNT(*)
		FROM admin_changes
		GROUP BY action`

	rows, err := t.tx.QueryContext(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var action string
		var n int
		if err := rows.Scan(&action, &n); err != nil {
			return nil, err
		}
		counts[action] = n
	}
	return counts, rows.Err()
}
