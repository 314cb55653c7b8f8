package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	apperrors "skybook/internal/errors"
)

func TestClassify_MapsDriverCodes(t *testing.T) {
	assert.NoError(t, classify(nil))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, classify(plain))

	lockErr := classify(&pq.Error{Code: "55P03"})
	assert.ErrorIs(t, lockErr, apperrors.ErrTxTimeout)
	assert.True(t, apperrors.IsRetryable(lockErr))

	assert.ErrorIs(t, classify(&pq.Error{Code: "40001"}), apperrors.ErrTxAborted)
	assert.ErrorIs(t, classify(&pq.Error{Code: "40P01"}), apperrors.ErrTxAborted)
}

func TestClassify_UniqueViolationIsConflict(t *testing.T) {
	dup := &pq.Error{Code: "23505", Constraint: "flights_pkey"}
	assert.ErrorIs(t, classify(dup), apperrors.ErrConflict)

	// Wrapped driver errors classify the same way.
	wrapped := fmt.Errorf("create flight: %w", dup)
	assert.ErrorIs(t, classify(wrapped), apperrors.ErrConflict)
}
