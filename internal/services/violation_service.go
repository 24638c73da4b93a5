package services

import (
	"context"
	"fmt"
	"time"

	"parkwatch/internal/models"
	"parkwatch/internal/repositories/interfaces"
	"parkwatch/internal/utils"
	"parkwatch/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ViolationService records violations against spots and keeps the per-vehicle
// aggregates in step. The vehicle half is eventually consistent: when it
// fails the violation stays persisted and the failure is logged for
// reconciliation.
type ViolationService interface {
	RecordViolation(ctx context.Context, req RecordViolationRequest) (*models.ViolationRecord, error)
	ListViolations(ctx context.Context, spotID string) ([]models.ViolationRecord, error)
	UpdateViolationStatus(ctx context.Context, spotID string, violationID primitive.ObjectID, status models.ViolationStatus) (*models.ViolationRecord, error)
	IssueFine(ctx context.Context, spotID string, violationID primitive.ObjectID, amount float64) (*models.ViolationRecord, error)
	MarkFinePaid(ctx context.Context, spotID string, violationID primitive.ObjectID) (*models.ViolationRecord, error)
	WaiveFine(ctx context.Context, spotID string, violationID primitive.ObjectID) (*models.ViolationRecord, error)
}

type RecordViolationRequest struct {
	SpotID      string
	VehicleRef  string
	Type        models.ViolationType
	Description string
	Evidence    []models.Evidence
}

type violationService struct {
	spotRepo    interfaces.SpotRepository
	vehicleRepo interfaces.VehicleRepository
	notifier    NotificationService
	logger      *logger.Logger
	locks       *SpotLocks
	now         func() time.Time
}

func NewViolationService(spotRepo interfaces.SpotRepository, vehicleRepo interfaces.VehicleRepository, notifier NotificationService, log *logger.Logger, locks *SpotLocks) ViolationService {
	return &violationService{
		spotRepo:    spotRepo,
		vehicleRepo: vehicleRepo,
		notifier:    notifier,
		logger:      log,
		locks:       locks,
		now:         time.Now,
	}
}

func (s *violationService) mutate(ctx context.Context, spotID string, fn func(*models.ParkingSpot) error) (*models.ParkingSpot, error) {
	unlock := s.locks.lock(spotID)
	defer unlock()

	spot, err := s.spotRepo.GetBySpotID(ctx, spotID)
	if err != nil {
		return nil, err
	}
	if err := fn(spot); err != nil {
		return nil, err
	}
	if err := s.spotRepo.Replace(ctx, spot); err != nil {
		return nil, err
	}
	return spot, nil
}

func (s *violationService) RecordViolation(ctx context.Context, req RecordViolationRequest) (*models.ViolationRecord, error) {
	if req.VehicleRef == "" {
		return nil, fmt.Errorf("%w: vehicle reference is required", models.ErrValidation)
	}
	switch req.Type {
	case models.ViolationTypeOvertime, models.ViolationTypeNoPermit, models.ViolationTypeInvalidPermit,
		models.ViolationTypeUnauthorized, models.ViolationTypePaymentRequired:
	default:
		return nil, fmt.Errorf("%w: unknown violation type %q", models.ErrValidation, req.Type)
	}

	now := s.now()
	var recorded models.ViolationRecord
	spot, err := s.mutate(ctx, req.SpotID, func(spot *models.ParkingSpot) error {
		recorded = *spot.AppendViolation(req.Type, req.VehicleRef, req.Description, req.Evidence, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.SpotEvent(ctx, spot.SpotID, spot.Section, utils.EventSpotViolation, map[string]interface{}{
		"violation_id": recorded.ID.Hex(),
		"type":         recorded.Type,
		"vehicle_ref":  recorded.VehicleRef,
		"statistics":   spot.Statistics,
	})

	// The violation is persisted at this point. A vehicle-aggregate failure
	// is surfaced as a partial update and left for reconciliation.
	if err := s.vehicleRepo.ApplyViolation(ctx, req.VehicleRef, now); err != nil {
		s.logger.LogReconciliation(spot.SpotID, req.VehicleRef, err)
		return &recorded, fmt.Errorf("%w: violation recorded, vehicle aggregate update failed: %v",
			models.ErrPartialUpdate, err)
	}

	return &recorded, nil
}

func (s *violationService) ListViolations(ctx context.Context, spotID string) ([]models.ViolationRecord, error) {
	spot, err := s.spotRepo.GetBySpotID(ctx, spotID)
	if err != nil {
		return nil, err
	}
	violations := make([]models.ViolationRecord, len(spot.Violations))
	copy(violations, spot.Violations)
	return violations, nil
}

// violationTransitions holds the legal status moves. Resolved is terminal.
var violationTransitions = map[models.ViolationStatus][]models.ViolationStatus{
	models.ViolationStatusPending:  {models.ViolationStatusIssued, models.ViolationStatusResolved},
	models.ViolationStatusIssued:   {models.ViolationStatusAppealed, models.ViolationStatusResolved},
	models.ViolationStatusAppealed: {models.ViolationStatusIssued, models.ViolationStatusResolved},
}

func (s *violationService) UpdateViolationStatus(ctx context.Context, spotID string, violationID primitive.ObjectID, status models.ViolationStatus) (*models.ViolationRecord, error) {
	var updated models.ViolationRecord
	var vehicleRef string
	spot, err := s.mutate(ctx, spotID, func(spot *models.ParkingSpot) error {
		rec := spot.FindViolation(violationID)
		if rec == nil {
			return fmt.Errorf("%w: violation %s", models.ErrNotFound, violationID.Hex())
		}
		allowed := false
		for _, next := range violationTransitions[rec.Status] {
			if next == status {
				allowed = true
				break
			}
		}
		if !allowed {
			return fmt.Errorf("%w: cannot move violation from %s to %s", models.ErrInvalidState, rec.Status, status)
		}
		rec.Status = status
		updated = *rec
		vehicleRef = rec.VehicleRef
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Resolving may clear the vehicle's active-violation flag; recompute it
	// across every spot holding records for that vehicle.
	if status == models.ViolationStatusResolved {
		s.refreshVehicleViolationStatus(ctx, vehicleRef)
	}

	s.notifier.SpotEvent(ctx, spot.SpotID, spot.Section, utils.EventSpotViolation, map[string]interface{}{
		"violation_id": updated.ID.Hex(),
		"status":       updated.Status,
	})
	return &updated, nil
}

// refreshVehicleViolationStatus clears the vehicle's active flag only when
// no spot anywhere still holds a pending or issued record for the plate.
func (s *violationService) refreshVehicleViolationStatus(ctx context.Context, vehicleRef string) {
	vehicle, err := s.vehicleRepo.GetByPlate(ctx, vehicleRef)
	if err != nil {
		return
	}
	open, err := s.spotRepo.HasOpenViolations(ctx, vehicleRef)
	if err != nil {
		s.logger.LogReconciliation("", vehicleRef, err)
		return
	}
	if !open && vehicle.ViolationStatus == models.VehicleViolationActive {
		vehicle.ViolationStatus = models.VehicleViolationNone
		_ = s.vehicleRepo.Upsert(ctx, vehicle)
	}
}

func (s *violationService) IssueFine(ctx context.Context, spotID string, violationID primitive.ObjectID, amount float64) (*models.ViolationRecord, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: fine amount must be positive", models.ErrValidation)
	}

	var updated models.ViolationRecord
	spot, err := s.mutate(ctx, spotID, func(spot *models.ParkingSpot) error {
		rec := spot.FindViolation(violationID)
		if rec == nil {
			return fmt.Errorf("%w: violation %s", models.ErrNotFound, violationID.Hex())
		}
		if rec.Status == models.ViolationStatusResolved {
			return fmt.Errorf("%w: violation already resolved", models.ErrInvalidState)
		}
		rec.Fine = &models.Fine{Amount: amount, Status: models.FineStatusPending}
		rec.Status = models.ViolationStatusIssued
		updated = *rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.SpotEvent(ctx, spot.SpotID, spot.Section, utils.EventSpotViolation, map[string]interface{}{
		"violation_id": updated.ID.Hex(),
		"fine":         updated.Fine,
	})
	return &updated, nil
}

func (s *violationService) WaiveFine(ctx context.Context, spotID string, violationID primitive.ObjectID) (*models.ViolationRecord, error) {
	var updated models.ViolationRecord
	spot, err := s.mutate(ctx, spotID, func(spot *models.ParkingSpot) error {
		rec := spot.FindViolation(violationID)
		if rec == nil {
			return fmt.Errorf("%w: violation %s", models.ErrNotFound, violationID.Hex())
		}
		if rec.Fine == nil {
			return fmt.Errorf("%w: violation has no fine", models.ErrInvalidState)
		}
		if rec.Fine.Status == models.FineStatusPaid {
			return fmt.Errorf("%w: fine already paid", models.ErrInvalidState)
		}
		rec.Fine.Status = models.FineStatusWaived
		updated = *rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.SpotEvent(ctx, spot.SpotID, spot.Section, utils.EventSpotViolation, map[string]interface{}{
		"violation_id": violationID.Hex(),
		"fine":         updated.Fine,
	})
	return &updated, nil
}

func (s *violationService) MarkFinePaid(ctx context.Context, spotID string, violationID primitive.ObjectID) (*models.ViolationRecord, error) {
	now := s.now()
	var updated models.ViolationRecord
	spot, err := s.mutate(ctx, spotID, func(spot *models.ParkingSpot) error {
		rec := spot.FindViolation(violationID)
		if rec == nil {
			return fmt.Errorf("%w: violation %s", models.ErrNotFound, violationID.Hex())
		}
		if rec.Fine == nil {
			return fmt.Errorf("%w: violation has no fine", models.ErrInvalidState)
		}
		if rec.Fine.Status != models.FineStatusPaid {
			rec.Fine.Status = models.FineStatusPaid
			rec.Fine.PaidAt = &now
		}
		updated = *rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.SpotEvent(ctx, spot.SpotID, spot.Section, utils.EventSpotViolation, map[string]interface{}{
		"violation_id": violationID.Hex(),
		"fine":         updated.Fine,
	})
	return &updated, nil
}
