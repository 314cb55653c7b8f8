package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	apperrors "skybook/internal/errors"
	"skybook/internal/logger"
	"skybook/internal/models"
	"skybook/internal/store"
)

// MaintenanceService keeps the fleet service log. Records are scheduled per
// airframe; past records double as the service history, future ones as the
// work queue.
type MaintenanceService struct {
	store store.Store
}

func NewMaintenanceService(st store.Store) *MaintenanceService {
	return &MaintenanceService{store: st}
}

// Schedule files a maintenance record for a known airframe.
func (s *MaintenanceService) Schedule(ctx context.Context, req *models.CreateMaintenanceRequest) (*models.MaintenanceRecord, error) {
	if req.Type == "" || req.Technician == "" {
		return nil, fmt.Errorf("maintenance type and technician are required: %w", apperrors.ErrValidation)
	}

	rec := &models.MaintenanceRecord{
		Registration: req.Registration,
		Type:         req.Type,
		Technician:   req.Technician,
		ScheduledFor: req.ScheduledFor.UTC(),
		Notes:        req.Notes,
	}

	err := s.store.Update(ctx, nil, func(tx store.Tx) error {
		aircraft, err := tx.GetAircraft(ctx, req.Registration)
		if err != nil {
			return fmt.Errorf("failed to get aircraft: %w", err)
		}
		if aircraft == nil {
			return fmt.Errorf("aircraft %s: %w", req.Registration, apperrors.ErrNotFound)
		}
		return tx.CreateMaintenance(ctx, rec)
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("Maintenance scheduled",
		"registration", rec.Registration,
		"type", rec.Type,
		"scheduled_for", rec.ScheduledFor)
	return rec, nil
}

// List returns maintenance records, optionally narrowed to one airframe or
// technician, ordered by scheduled date.
func (s *MaintenanceService) List(ctx context.Context, registration, technician string) ([]models.MaintenanceRecord, error) {
	var records []models.MaintenanceRecord
	err := s.store.View(ctx, func(tx store.Tx) error {
		var err error
		records, err = tx.ListMaintenance(ctx, registration, technician)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// LastPerAircraft returns, for each airframe with history up to now, its most
// recent maintenance record, ordered by registration.
func (s *MaintenanceService) LastPerAircraft(ctx context.Context, now time.Time) ([]models.MaintenanceRecord, error) {
	records, err := s.List(ctx, "", "")
	if err != nil {
		return nil, err
	}

	latest := make(map[string]models.MaintenanceRecord)
	for _, rec := range records {
		if rec.ScheduledFor.After(now) {
			continue
		}
		// Records arrive ordered by date then id, so the last one seen per
		// airframe is its most recent.
		latest[rec.Registration] = rec
	}

	out := make([]models.MaintenanceRecord, 0, len(latest))
	for _, rec := range latest {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Registration < out[j].Registration })
	return out, nil
}

// Upcoming returns all records scheduled after now, earliest first.
func (s *MaintenanceService) Upcoming(ctx context.Context, now time.Time) ([]models.MaintenanceRecord, error) {
	records, err := s.List(ctx, "", "")
	if err != nil {
		return nil, err
	}

	out := make([]models.MaintenanceRecord, 0)
	for _, rec := range records {
		if rec.ScheduledFor.After(now) {
			out = append(out, rec)
		}
	}
	return out, nil
}
