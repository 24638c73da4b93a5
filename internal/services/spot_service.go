package services

import (
	"context"
	"fmt"
	"time"

	"parkwatch/internal/models"
	"parkwatch/internal/repositories/interfaces"
	"parkwatch/internal/utils"
)

// SpotService owns the spot registry: creation, lookup, restrictions,
// sensor readings and maintenance. Every mutation runs under the per-spot
// critical section and emits a notification event on success.
type SpotService interface {
	CreateSpot(ctx context.Context, spot *models.ParkingSpot) error
	GetSpot(ctx context.Context, spotID string) (*models.ParkingSpot, error)
	ListSpots(ctx context.Context, filter interfaces.SpotFilter, params *utils.PaginationParams) ([]*models.ParkingSpot, int64, error)
	DeleteSpot(ctx context.Context, spotID string) error

	UpdateRestrictions(ctx context.Context, spotID string, restrictions models.Restrictions) (*models.ParkingSpot, error)
	UpdateSensor(ctx context.Context, spotID string, reading SensorReading) (*models.ParkingSpot, error)
	SetMaintenance(ctx context.Context, spotID string, status models.MaintenanceStatus, notes string) (*models.ParkingSpot, error)
	SetBlocked(ctx context.Context, spotID string, blocked bool) (*models.ParkingSpot, error)
}

// SensorReading is one occupancy sensor report.
type SensorReading struct {
	Occupied     bool
	VehicleRef   string
	BatteryLevel int
	Status       models.SensorStatus
}

type spotService struct {
	spotRepo    interfaces.SpotRepository
	vehicleRepo interfaces.VehicleRepository
	notifier    NotificationService
	locks       *SpotLocks
	now         func() time.Time
}

func NewSpotService(spotRepo interfaces.SpotRepository, vehicleRepo interfaces.VehicleRepository, notifier NotificationService, locks *SpotLocks) SpotService {
	return &spotService{
		spotRepo:    spotRepo,
		vehicleRepo: vehicleRepo,
		notifier:    notifier,
		locks:       locks,
		now:         time.Now,
	}
}

// mutate runs fn against the current spot document under the per-spot lock
// and writes the result back through the optimistic replace.
func (s *spotService) mutate(ctx context.Context, spotID string, fn func(*models.ParkingSpot) error) (*models.ParkingSpot, error) {
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

func (s *spotService) CreateSpot(ctx context.Context, spot *models.ParkingSpot) error {
	if spot.SpotID == "" || spot.Section == "" {
		return fmt.Errorf("%w: spot_id and section are required", models.ErrValidation)
	}
	if spot.Type == "" {
		spot.Type = models.SpotTypeStandard
	}
	if spot.Sensors.Status == "" {
		spot.Sensors.Status = models.SensorStatusActive
	}
	if spot.Maintenance.Status == "" {
		spot.Maintenance.Status = models.MaintenanceStatusNone
	}
	spot.Status = models.DeriveStatus(spot.Occupied, spot.Maintenance.Status, spot.Blocked)
	return s.spotRepo.Create(ctx, spot)
}

func (s *spotService) GetSpot(ctx context.Context, spotID string) (*models.ParkingSpot, error) {
	return s.spotRepo.GetBySpotID(ctx, spotID)
}

func (s *spotService) ListSpots(ctx context.Context, filter interfaces.SpotFilter, params *utils.PaginationParams) ([]*models.ParkingSpot, int64, error) {
	return s.spotRepo.List(ctx, filter, params)
}

func (s *spotService) DeleteSpot(ctx context.Context, spotID string) error {
	unlock := s.locks.lock(spotID)
	defer unlock()

	spot, err := s.spotRepo.GetBySpotID(ctx, spotID)
	if err != nil {
		return err
	}
	if spot.CurrentReservation(s.now()) != nil {
		return fmt.Errorf("%w: spot has an active reservation", models.ErrInvalidState)
	}
	return s.spotRepo.Delete(ctx, spot.ID)
}

func (s *spotService) UpdateRestrictions(ctx context.Context, spotID string, restrictions models.Restrictions) (*models.ParkingSpot, error) {
	spot, err := s.mutate(ctx, spotID, func(spot *models.ParkingSpot) error {
		if restrictions.HourlyRate < 0 {
			return fmt.Errorf("%w: hourly rate cannot be negative", models.ErrValidation)
		}
		spot.Restrictions = restrictions
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.SpotEvent(ctx, spot.SpotID, spot.Section, utils.EventSpotRestrictions, map[string]interface{}{
		"restrictions": spot.Restrictions,
	})
	return spot, nil
}

func (s *spotService) UpdateSensor(ctx context.Context, spotID string, reading SensorReading) (*models.ParkingSpot, error) {
	now := s.now()
	var becameOccupied, becameFree bool
	var vehicleRef string

	spot, err := s.mutate(ctx, spotID, func(spot *models.ParkingSpot) error {
		wasOccupied := spot.Occupied
		vehicleRef = spot.CurrentVehicle
		spot.ApplySensorReading(reading.Occupied, reading.VehicleRef, reading.BatteryLevel, reading.Status, now)
		becameOccupied = !wasOccupied && spot.Occupied
		becameFree = wasOccupied && !spot.Occupied
		if becameOccupied {
			vehicleRef = spot.CurrentVehicle
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Vehicle parked-state tracking is best effort: unknown plates are fine.
	if vehicleRef != "" && (becameOccupied || becameFree) {
		_ = s.vehicleRepo.SetParked(ctx, vehicleRef, becameOccupied, spot.SpotID, now)
	}

	s.notifier.SpotEvent(ctx, spot.SpotID, spot.Section, utils.EventSpotSensor, map[string]interface{}{
		"sensors":  spot.Sensors,
		"occupied": spot.Occupied,
		"status":   spot.Status,
	})
	if becameOccupied || becameFree {
		s.notifier.SpotEvent(ctx, spot.SpotID, spot.Section, utils.EventSpotOccupancy, map[string]interface{}{
			"occupied":   spot.Occupied,
			"status":     spot.Status,
			"statistics": spot.Statistics,
		})
	}
	return spot, nil
}

func (s *spotService) SetMaintenance(ctx context.Context, spotID string, status models.MaintenanceStatus, notes string) (*models.ParkingSpot, error) {
	now := s.now()
	spot, err := s.mutate(ctx, spotID, func(spot *models.ParkingSpot) error {
		return spot.SetMaintenance(status, notes, now)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.SpotEvent(ctx, spot.SpotID, spot.Section, utils.EventSpotMaintenance, map[string]interface{}{
		"maintenance": spot.Maintenance,
		"status":      spot.Status,
	})
	return spot, nil
}

func (s *spotService) SetBlocked(ctx context.Context, spotID string, blocked bool) (*models.ParkingSpot, error) {
	spot, err := s.mutate(ctx, spotID, func(spot *models.ParkingSpot) error {
		return spot.SetBlocked(blocked)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.SpotEvent(ctx, spot.SpotID, spot.Section, utils.EventSpotMaintenance, map[string]interface{}{
		"blocked": spot.Blocked,
		"status":  spot.Status,
	})
	return spot, nil
}
