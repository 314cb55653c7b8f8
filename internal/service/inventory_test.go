package service_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "skybook/internal/errors"
	"skybook/internal/metrics"
)

func TestInventory_CapacityAndOccupied(t *testing.T) {
	f := newFixture(t)
	f.addFlight("SB001", map[string]int{"economy": 7})
	ctx := context.Background()

	capacity, err := f.services.Inventory.CapacityOf(ctx, "SB001", "economy")
	require.NoError(t, err)
	assert.Equal(t, 7, capacity)

	occupied, err := f.services.Inventory.OccupiedCount(ctx, "SB001", "economy")
	require.NoError(t, err)
	assert.Equal(t, 0, occupied)

	_, err = f.services.Inventory.CapacityOf(ctx, "SB001", "first")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = f.services.Inventory.OccupiedCount(ctx, "NOPE", "economy")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestInventory_ReserveUntilFull(t *testing.T) {
	f := newFixture(t)
	f.addFlight("SB001", map[string]int{"economy": 2})
	ctx := context.Background()

	require.NoError(t, f.services.Inventory.ReserveSeat(ctx, "SB001", "economy"))
	require.NoError(t, f.services.Inventory.ReserveSeat(ctx, "SB001", "economy"))

	err := f.services.Inventory.ReserveSeat(ctx, "SB001", "economy")
	assert.ErrorIs(t, err, apperrors.ErrCapacityFull)
	assert.Equal(t, 2, f.occupied("SB001", "economy"))

	err = f.services.Inventory.ReserveSeat(ctx, "SB001", "first")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestInventory_RejectedCountsOnlyCapacityFailures(t *testing.T) {
	f := newFixture(t)
	f.addFlight("SB001", map[string]int{"economy": 1})
	ctx := context.Background()

	rejected := metrics.SeatReservations.WithLabelValues("rejected")
	before := testutil.ToFloat64(rejected)

	// A missing ledger row is not a rejection.
	err := f.services.Inventory.ReserveSeat(ctx, "SB001", "first")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, before, testutil.ToFloat64(rejected))

	require.NoError(t, f.services.Inventory.ReserveSeat(ctx, "SB001", "economy"))
	err = f.services.Inventory.ReserveSeat(ctx, "SB001", "economy")
	require.ErrorIs(t, err, apperrors.ErrCapacityFull)
	assert.Equal(t, before+1, testutil.ToFloat64(rejected))
}

func TestInventory_ReleaseSeatReopensCapacity(t *testing.T) {
	f := newFixture(t)
	f.addFlight("SB001", map[string]int{"economy": 1})
	ctx := context.Background()

	require.NoError(t, f.services.Inventory.ReserveSeat(ctx, "SB001", "economy"))
	require.ErrorIs(t, f.services.Inventory.ReserveSeat(ctx, "SB001", "economy"), apperrors.ErrCapacityFull)

	require.NoError(t, f.services.Inventory.ReleaseSeat(ctx, "SB001", "economy"))
	assert.Equal(t, 0, f.occupied("SB001", "economy"))

	require.NoError(t, f.services.Inventory.ReserveSeat(ctx, "SB001", "economy"))
	assert.Equal(t, 1, f.occupied("SB001", "economy"))
}
