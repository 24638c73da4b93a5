package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"parkwatch/internal/models"
	"parkwatch/internal/repositories/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type vehicleRepository struct {
	collection *mongo.Collection
}

func NewVehicleRepository(db *mongo.Database) interfaces.VehicleRepository {
	return &vehicleRepository{
		collection: db.Collection("vehicles"),
	}
}

func normalizePlate(licensePlate string) string {
	return strings.ToUpper(strings.TrimSpace(licensePlate))
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	now := time.Now()
	vehicle.ID = primitive.NewObjectID()
	vehicle.LicensePlate = normalizePlate(vehicle.LicensePlate)
	if vehicle.ViolationStatus == "" {
		vehicle.ViolationStatus = models.VehicleViolationNone
	}
	vehicle.CreatedAt = now
	vehicle.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, vehicle)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: vehicle %s already exists", models.ErrValidation, vehicle.LicensePlate)
		}
		return fmt.Errorf("failed to create vehicle: %w", err)
	}
	return nil
}

func (r *vehicleRepository) GetByPlate(ctx context.Context, licensePlate string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.collection.FindOne(ctx, bson.M{"license_plate": normalizePlate(licensePlate)}).Decode(&vehicle)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: vehicle %s", models.ErrNotFound, licensePlate)
		}
		return nil, fmt.Errorf("failed to get vehicle: %w", err)
	}
	return &vehicle, nil
}

func (r *vehicleRepository) Upsert(ctx context.Context, vehicle *models.Vehicle) error {
	vehicle.LicensePlate = normalizePlate(vehicle.LicensePlate)
	vehicle.UpdatedAt = time.Now()

	update := bson.M{
		"$set": bson.M{
			"make":       vehicle.Make,
			"model":      vehicle.Model,
			"color":      vehicle.Color,
			"notes":      vehicle.Notes,
			"updated_at": vehicle.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"license_plate":    vehicle.LicensePlate,
			"violation_status": models.VehicleViolationNone,
			"violation_count":  0,
			"created_at":       vehicle.UpdatedAt,
		},
	}

	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"license_plate": vehicle.LicensePlate},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert vehicle: %w", err)
	}
	return nil
}

func (r *vehicleRepository) ApplyViolation(ctx context.Context, licensePlate string, at time.Time) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"license_plate": normalizePlate(licensePlate)},
		bson.M{
			"$inc": bson.M{"violation_count": 1},
			"$set": bson.M{
				"last_violation":   at,
				"violation_status": models.VehicleViolationActive,
				"updated_at":       time.Now(),
			},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to apply violation: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: vehicle %s", models.ErrNotFound, licensePlate)
	}
	return nil
}

func (r *vehicleRepository) SetParked(ctx context.Context, licensePlate string, parked bool, spotID string, at time.Time) error {
	set := bson.M{
		"is_parked":  parked,
		"updated_at": time.Now(),
	}
	if parked {
		set["current_spot_id"] = spotID
		set["entry_time"] = at
	} else {
		set["current_spot_id"] = ""
		set["exit_time"] = at
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"license_plate": normalizePlate(licensePlate)},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("failed to update parked state: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: vehicle %s", models.ErrNotFound, licensePlate)
	}
	return nil
}
