// Package postgres implements the persistence collaborator on PostgreSQL.
// Seat-key write locks are FOR UPDATE row locks on seat_counts, bounded by
// lock_timeout so contended bookings fail retryable instead of queueing
// forever. Snapshot reads run in REPEATABLE READ READ ONLY transactions and
// therefore never block writers.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"

	"skybook/internal/database"
	apperrors "skybook/internal/errors"
	"skybook/internal/store"
)

type Store struct {
	db          *database.DB
	lockTimeout time.Duration
}

func New(db *database.DB, lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &Store{db: db, lockTimeout: lockTimeout}
}

// classify maps driver errors onto the core taxonomy. Lock waits that hit
// lock_timeout are retryable; serialization failures and deadlocks abort;
// unique violations surface as conflicts so racing inserts of the same key
// lose cleanly instead of erroring opaquely.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "55P03": // lock_not_available
			return fmt.Errorf("%w: %v", apperrors.ErrTxTimeout, err)
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %v", apperrors.ErrTxAborted, err)
		case "23505": // unique_violation
			return fmt.Errorf("%w: %v", apperrors.ErrConflict, err)
		}
	}
	return err
}

func (s *Store) Update(ctx context.Context, keys []store.SeatKey, fn func(tx store.Tx) error) error {
	sorted := append([]store.SeatKey(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", apperrors.ErrTxAborted, err)
	}
	defer tx.Rollback()

	timeoutMs := s.lockTimeout.Milliseconds()
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", timeoutMs)); err != nil {
		return fmt.Errorf("%w: set lock_timeout: %v", apperrors.ErrTxAborted, err)
	}

	// Take the seat-key row locks up front, in sorted order, so concurrent
	// transactions cannot deadlock on each other.
	for _, key := range sorted {
		var one int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM seat_counts WHERE flight_id = $1 AND seat_class = $2 FOR UPDATE`,
			key.FlightID, key.SeatClass,
		).Scan(&one)
		if err == sql.ErrNoRows {
			// The row may legitimately not exist yet (flight provisioning
			// creates it inside the same transaction).
			continue
		}
		if err != nil {
			return classify(err)
		}
	}

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		if classified := classify(err); classified != err {
			return classified
		}
		return fmt.Errorf("%w: commit: %v", apperrors.ErrTxAborted, err)
	}
	return nil
}

func (s *Store) View(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelRepeatableRead,
		ReadOnly:  true,
	})
	if err != nil {
		return fmt.Errorf("%w: begin read-only: %v", apperrors.ErrTxAborted, err)
	}
	defer tx.Rollback()

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Close() error {
	return s.db.Close()
}

type pgTx struct {
	tx *sql.Tx
}

var _ store.Store = (*Store)(nil)
var _ store.Tx = (*pgTx)(nil)
