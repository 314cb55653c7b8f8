package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	apperrors "skybook/internal/errors"
	"skybook/internal/models"
	"skybook/internal/store"
)

func (t *pgTx) GetSeatCount(ctx context.Context, key store.SeatKey) (*models.SeatCount, error) {
	count := &models.SeatCount{}
	query := `
		SELECT flight_id, seat_class, capacity, occupied
		FROM seat_counts
		WHERE flight_id = $1 AND seat_class = $2`

	err := t.tx.QueryRowContext(ctx, query, key.FlightID, key.SeatClass).Scan(
		&count.FlightID,
		&count.SeatClass,
		&count.Capacity,
		&count.Occupied,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, classify(err)
	}
	return count, nil
}

func (t *pgTx) PutSeatCount(ctx context.Context, sc *models.SeatCount) error {
	query := `
		INSERT INTO seat_counts (flight_id, seat_class, capacity, occupied)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (flight_id, seat_class) DO UPDATE
		SET capacity = EXCLUDED.capacity, occupied = EXCLUDED.occupied`

	_, err := t.tx.ExecContext(ctx, query, sc.FlightID, sc.SeatClass, sc.Capacity, sc.Occupied)
	return classify(err)
}

// ReserveSeat is the contended check-and-increment: the conditional UPDATE
// succeeds only while occupied < capacity, and the row lock taken by the
// enclosing transaction keeps the check and the increment indivisible.
func (t *pgTx) ReserveSeat(ctx context.Context, key store.SeatKey) error {
	query := `
		UPDATE seat_counts
		SET occupied = occupied + 1
		WHERE flight_id = $1 AND seat_class = $2 AND occupied < capacity`

	result, err := t.tx.ExecContext(ctx, query, key.FlightID, key.SeatClass)
	if err != nil {
		return classify(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		count, err := t.GetSeatCount(ctx, key)
		if err != nil {
			return err
		}
		if count == nil {
			return fmt.Errorf("seat count %s/%s: %w", key.FlightID, key.SeatClass, apperrors.ErrNotFound)
		}
		return fmt.Errorf("flight %s class %s: %w", key.FlightID, key.SeatClass, apperrors.ErrCapacityFull)
	}
	return nil
}

func (t *pgTx) AddOccupied(ctx context.Context, key store.SeatKey, delta int) error {
	query := `
		UPDATE seat_counts
		SET occupied = GREATEST(occupied + $3, 0)
		WHERE flight_id = $1 AND seat_class = $2`

	result, err := t.tx.ExecContext(ctx, query, key.FlightID, key.SeatClass, delta)
	if err != nil {
		return classify(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("seat count %s/%s: %w", key.FlightID, key.SeatClass, apperrors.ErrNotFound)
	}
	return nil
}

func (t *pgTx) ActiveFlightIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT flight_id
		FROM tickets
		WHERE status = 'active'
		ORDER BY flight_id`

	rows, err := t.tx.QueryContext(ctx, query)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (t *pgTx) ActiveCountsForDate(ctx context.Context, date time.Time) (map[string]int, error) {
	query := `
		SELECT t.flight_id, COUNT(*)
		FROM tickets t
		JOIN flights f ON f.id = t.flight_id
		WHERE t.status = 'active'
		  AND (f.departure AT TIME ZONE 'UTC')::date = $1::date
		GROUP BY t.flight_id`

	rows, err := t.tx.QueryContext(ctx, query, date.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}
