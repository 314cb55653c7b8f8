package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "skybook/internal/errors"
	"skybook/internal/models"
	"skybook/internal/store"
)

func seedCount(t *testing.T, m *Memory, key store.SeatKey, capacity int) {
	t.Helper()
	err := m.Update(context.Background(), nil, func(tx store.Tx) error {
		return tx.PutSeatCount(context.Background(), &models.SeatCount{
			FlightID:  key.FlightID,
			SeatClass: key.SeatClass,
			Capacity:  capacity,
		})
	})
	require.NoError(t, err)
}

func occupied(t *testing.T, m *Memory, key store.SeatKey) int {
	t.Helper()
	var n int
	err := m.View(context.Background(), func(tx store.Tx) error {
		count, err := tx.GetSeatCount(context.Background(), key)
		if err != nil {
			return err
		}
		require.NotNil(t, count)
		n = count.Occupied
		return nil
	})
	require.NoError(t, err)
	return n
}

func TestUpdate_FailedTransactionDiscardsAllWrites(t *testing.T) {
	m := New(time.Second)
	ctx := context.Background()
	key := store.SeatKey{FlightID: "F1", SeatClass: "economy"}
	seedCount(t, m, key, 5)

	boom := errors.New("boom")
	err := m.Update(ctx, []store.SeatKey{key}, func(tx store.Tx) error {
		if err := tx.ReserveSeat(ctx, key); err != nil {
			return err
		}
		ticket := &models.Ticket{FlightID: "F1", SeatClass: "economy", Status: models.TicketUnassigned}
		if err := tx.CreateTicket(ctx, ticket); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 0, occupied(t, m, key))
	err = m.View(ctx, func(tx store.Tx) error {
		tickets, err := tx.TicketsByStatus(ctx, models.TicketUnassigned)
		if err != nil {
			return err
		}
		assert.Empty(t, tickets)
		return nil
	})
	require.NoError(t, err)
}

func TestUpdate_ContendedKeyTimesOut(t *testing.T) {
	m := New(50 * time.Millisecond)
	ctx := context.Background()
	key := store.SeatKey{FlightID: "F1", SeatClass: "economy"}
	seedCount(t, m, key, 5)

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- m.Update(ctx, []store.SeatKey{key}, func(tx store.Tx) error {
			close(held)
			<-release
			return nil
		})
	}()

	<-held
	err := m.Update(ctx, []store.SeatKey{key}, func(tx store.Tx) error {
		return tx.ReserveSeat(ctx, key)
	})
	assert.ErrorIs(t, err, apperrors.ErrTxTimeout)
	assert.True(t, apperrors.IsRetryable(err))

	close(release)
	require.NoError(t, <-done)

	// The key is usable again once the holder commits.
	err = m.Update(ctx, []store.SeatKey{key}, func(tx store.Tx) error {
		return tx.ReserveSeat(ctx, key)
	})
	require.NoError(t, err)
}

func TestUpdate_IndependentKeysDoNotBlock(t *testing.T) {
	m := New(100 * time.Millisecond)
	ctx := context.Background()
	keyA := store.SeatKey{FlightID: "F1", SeatClass: "economy"}
	keyB := store.SeatKey{FlightID: "F2", SeatClass: "economy"}
	seedCount(t, m, keyA, 5)
	seedCount(t, m, keyB, 5)

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- m.Update(ctx, []store.SeatKey{keyA}, func(tx store.Tx) error {
			close(held)
			<-release
			return nil
		})
	}()

	<-held
	err := m.Update(ctx, []store.SeatKey{keyB}, func(tx store.Tx) error {
		return tx.ReserveSeat(ctx, keyB)
	})
	require.NoError(t, err)
	assert.Equal(t, 1, occupied(t, m, keyB))

	close(release)
	require.NoError(t, <-done)
}

func TestUpdate_CancelledContextSurfacesAborted(t *testing.T) {
	m := New(10 * time.Second)
	key := store.SeatKey{FlightID: "F1", SeatClass: "economy"}
	seedCount(t, m, key, 5)

	held := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- m.Update(context.Background(), []store.SeatKey{key}, func(tx store.Tx) error {
			close(held)
			<-release
			return nil
		})
	}()

	<-held
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	err := m.Update(ctx, []store.SeatKey{key}, func(tx store.Tx) error { return nil })
	assert.ErrorIs(t, err, apperrors.ErrTxAborted)

	close(release)
	require.NoError(t, <-done)
}

func TestReserveSeat_StopsAtCapacity(t *testing.T) {
	m := New(time.Second)
	ctx := context.Background()
	key := store.SeatKey{FlightID: "F1", SeatClass: "economy"}
	seedCount(t, m, key, 2)

	reserve := func() error {
		return m.Update(ctx, []store.SeatKey{key}, func(tx store.Tx) error {
			return tx.ReserveSeat(ctx, key)
		})
	}
	require.NoError(t, reserve())
	require.NoError(t, reserve())
	assert.ErrorIs(t, reserve(), apperrors.ErrCapacityFull)
	assert.Equal(t, 2, occupied(t, m, key))

	missing := store.SeatKey{FlightID: "F1", SeatClass: "first"}
	err := m.Update(ctx, []store.SeatKey{missing}, func(tx store.Tx) error {
		return tx.ReserveSeat(ctx, missing)
	})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAddOccupied_NeverGoesNegative(t *testing.T) {
	m := New(time.Second)
	ctx := context.Background()
	key := store.SeatKey{FlightID: "F1", SeatClass: "economy"}
	seedCount(t, m, key, 2)

	err := m.Update(ctx, []store.SeatKey{key}, func(tx store.Tx) error {
		return tx.AddOccupied(ctx, key, -1)
	})
	require.NoError(t, err)
	assert.Equal(t, 0, occupied(t, m, key))

	// The administrative override path may push past capacity.
	err = m.Update(ctx, []store.SeatKey{key}, func(tx store.Tx) error {
		return tx.AddOccupied(ctx, key, 3)
	})
	require.NoError(t, err)
	assert.Equal(t, 3, occupied(t, m, key))
}

func TestWaitlistedTickets_Ordering(t *testing.T) {
	m := New(time.Second)
	ctx := context.Background()
	key := store.SeatKey{FlightID: "F1", SeatClass: "economy"}
	seedCount(t, m, key, 0)

	early := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	late := early.Add(time.Hour)

	var ids []int64
	err := m.Update(ctx, nil, func(tx store.Tx) error {
		for _, at := range []time.Time{late, early, early} {
			at := at
			ticket := &models.Ticket{
				FlightID:    "F1",
				SeatClass:   "economy",
				Status:      models.TicketWaitlisted,
				RequestedAt: &at,
			}
			if err := tx.CreateTicket(ctx, ticket); err != nil {
				return err
			}
			ids = append(ids, ticket.ID)
		}
		return nil
	})
	require.NoError(t, err)

	var got []int64
	err = m.View(ctx, func(tx store.Tx) error {
		tickets, err := tx.WaitlistedTickets(ctx, key)
		if err != nil {
			return err
		}
		for _, ticket := range tickets {
			got = append(got, ticket.ID)
		}
		return nil
	})
	require.NoError(t, err)

	// Request time first, then ticket id for the tie.
	assert.Equal(t, []int64{ids[1], ids[2], ids[0]}, got)
}

func TestCreateFlight_ConcurrentDuplicateLosesAtCommit(t *testing.T) {
	m := New(time.Second)
	ctx := context.Background()

	flight := func(origin string) *models.Flight {
		return &models.Flight{
			ID:        "F1",
			Origin:    origin,
			Dest:      "NQZ",
			Departure: time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC),
			Aircraft:  "UP-A32001",
		}
	}

	// The first transaction stages the flight and parks before returning, so
	// its existence check runs before the second create commits.
	staged := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- m.Update(ctx, nil, func(tx store.Tx) error {
			if err := tx.CreateFlight(ctx, flight("ALA")); err != nil {
				return err
			}
			close(staged)
			<-release
			return nil
		})
	}()

	<-staged
	err := m.Update(ctx, nil, func(tx store.Tx) error {
		return tx.CreateFlight(ctx, flight("CIT"))
	})
	require.NoError(t, err)

	close(release)
	err = <-done
	require.ErrorIs(t, err, apperrors.ErrConflict)

	// The committed flight is the one that won.
	err = m.View(ctx, func(tx store.Tx) error {
		got, err := tx.GetFlight(ctx, "F1")
		if err != nil {
			return err
		}
		require.NotNil(t, got)
		assert.Equal(t, "CIT", got.Origin)
		return nil
	})
	require.NoError(t, err)
}

func TestUpdate_StagedWritesInvisibleUntilCommit(t *testing.T) {
	m := New(time.Second)
	ctx := context.Background()
	key := store.SeatKey{FlightID: "F1", SeatClass: "economy"}
	seedCount(t, m, key, 5)

	staged := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- m.Update(ctx, []store.SeatKey{key}, func(tx store.Tx) error {
			if err := tx.ReserveSeat(ctx, key); err != nil {
				return err
			}
			close(staged)
			<-release
			return nil
		})
	}()

	<-staged
	assert.Equal(t, 0, occupied(t, m, key))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, occupied(t, m, key))
}
