package interfaces

import (
	"context"

	"parkwatch/internal/models"
	"parkwatch/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SpotFilter narrows spot listings. Zero values mean no constraint.
type SpotFilter struct {
	Section string
	Type    models.SpotType
	Status  models.SpotStatus
}

// SpotRepository persists parking spots with their embedded reservations and
// violations. Replace is the single write path for mutated spots and must
// enforce the optimistic version check.
type SpotRepository interface {
	Create(ctx context.Context, spot *models.ParkingSpot) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.ParkingSpot, error)
	GetBySpotID(ctx context.Context, spotID string) (*models.ParkingSpot, error)
	List(ctx context.Context, filter SpotFilter, params *utils.PaginationParams) ([]*models.ParkingSpot, int64, error)
	Replace(ctx context.Context, spot *models.ParkingSpot) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// HasOpenViolations reports whether any spot holds a pending or issued
	// violation for the vehicle.
	HasOpenViolations(ctx context.Context, vehicleRef string) (bool, error)
}
