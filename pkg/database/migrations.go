package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the spot and vehicle repositories rely
// on. It is safe to call on every startup.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	spotIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "spot_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "section", Value: 1}, {Key: "type", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "reservations.start_time", Value: 1}, {Key: "reservations.status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "violations.timestamp", Value: 1}, {Key: "violations.status", Value: 1}},
		},
	}
	if _, err := m.Collection("parking_spots").Indexes().CreateMany(ctx, spotIndexes); err != nil {
		return err
	}

	vehicleIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "license_plate", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "violation_status", Value: 1}},
		},
	}
	if _, err := m.Collection("vehicles").Indexes().CreateMany(ctx, vehicleIndexes); err != nil {
		return err
	}

	return nil
}
