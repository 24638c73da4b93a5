package interfaces

import (
	"context"
	"time"

	"parkwatch/internal/models"
)

// VehicleRepository persists per-vehicle aggregates keyed by license plate.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *models.Vehicle) error
	GetByPlate(ctx context.Context, licensePlate string) (*models.Vehicle, error)
	Upsert(ctx context.Context, vehicle *models.Vehicle) error
	// ApplyViolation bumps the violation aggregates for the vehicle in one
	// atomic update. A missing vehicle reports models.ErrNotFound.
	ApplyViolation(ctx context.Context, licensePlate string, at time.Time) error
	SetParked(ctx context.Context, licensePlate string, parked bool, spotID string, at time.Time) error
}
