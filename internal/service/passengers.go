package service

import (
	"context"
	"fmt"
	"time"

	apperrors "skybook/internal/errors"
	"skybook/internal/models"
	"skybook/internal/store"
)

type PassengerService struct {
	store store.Store
}

func NewPassengerService(st store.Store) *PassengerService {
	return &PassengerService{store: st}
}

func (s *PassengerService) Create(ctx context.Context, req *models.CreatePassengerRequest) (*models.Passenger, error) {
	passenger := &models.Passenger{
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: time.Now().UTC(),
	}
	err := s.store.Update(ctx, nil, func(tx store.Tx) error {
		return tx.CreatePassenger(ctx, passenger)
	})
	if err != nil {
		return nil, err
	}
	return passenger, nil
}

func (s *PassengerService) Get(ctx context.Context, id int64) (*models.Passenger, error) {
	var passenger *models.Passenger
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		passenger, err = tx.GetPassenger(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if passenger == nil {
		return nil, fmt.Errorf("passenger %d: %w", id, apperrors.ErrNotFound)
	}
	return passenger, nil
}

func (s *PassengerService) List(ctx context.Context) ([]models.Passenger, error) {
	var passengers []models.Passenger
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		passengers, err = tx.ListPassengers(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return passengers, nil
}
