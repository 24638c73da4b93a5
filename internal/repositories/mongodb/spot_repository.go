package mongodb

import (
	"context"
	"fmt"
	"time"

	"parkwatch/internal/models"
	"parkwatch/internal/repositories/interfaces"
	"parkwatch/internal/utils"
	"parkwatch/pkg/cache"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type spotRepository struct {
	collection *mongo.Collection
	cache      *cache.RedisCache
	cacheTTL   time.Duration
}

func NewSpotRepository(db *mongo.Database, redisCache *cache.RedisCache, cacheTTL time.Duration) interfaces.SpotRepository {
	return &spotRepository{
		collection: db.Collection("parking_spots"),
		cache:      redisCache,
		cacheTTL:   cacheTTL,
	}
}

func (r *spotRepository) Create(ctx context.Context, spot *models.ParkingSpot) error {
	now := time.Now()
	spot.ID = primitive.NewObjectID()
	spot.CreatedAt = now
	spot.UpdatedAt = now
	spot.Version = 1

	_, err := r.collection.InsertOne(ctx, spot)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: spot %s already exists", models.ErrValidation, spot.SpotID)
		}
		return fmt.Errorf("failed to create spot: %w", err)
	}
	return nil
}

func (r *spotRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.ParkingSpot, error) {
	var spot models.ParkingSpot
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&spot)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: spot %s", models.ErrNotFound, id.Hex())
		}
		return nil, fmt.Errorf("failed to get spot: %w", err)
	}
	return &spot, nil
}

func (r *spotRepository) GetBySpotID(ctx context.Context, spotID string) (*models.ParkingSpot, error) {
	if spot := r.getSpotFromCache(ctx, spotID); spot != nil {
		return spot, nil
	}

	var spot models.ParkingSpot
	err := r.collection.FindOne(ctx, bson.M{"spot_id": spotID}).Decode(&spot)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("%w: spot %s", models.ErrNotFound, spotID)
		}
		return nil, fmt.Errorf("failed to get spot by spot_id: %w", err)
	}

	r.cacheSpot(ctx, &spot)
	return &spot, nil
}

func (r *spotRepository) List(ctx context.Context, filter interfaces.SpotFilter, params *utils.PaginationParams) ([]*models.ParkingSpot, int64, error) {
	query := bson.M{}
	if filter.Section != "" {
		query["section"] = filter.Section
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count spots: %w", err)
	}

	opts := options.Find().
		SetSkip(int64((params.Page - 1) * params.PageSize)).
		SetLimit(int64(params.PageSize)).
		SetSort(params.MongoSort())

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list spots: %w", err)
	}
	defer cursor.Close(ctx)

	var spots []*models.ParkingSpot
	if err := cursor.All(ctx, &spots); err != nil {
		return nil, 0, fmt.Errorf("failed to decode spots: %w", err)
	}

	return spots, total, nil
}

// Replace writes a mutated spot back, rejecting concurrent writers through
// the version filter. The in-process per-spot lock makes conflicts rare; the
// version check backstops multi-process deployments.
func (r *spotRepository) Replace(ctx context.Context, spot *models.ParkingSpot) error {
	previousVersion := spot.Version
	spot.Version = previousVersion + 1
	spot.UpdatedAt = time.Now()

	result, err := r.collection.ReplaceOne(
		ctx,
		bson.M{"_id": spot.ID, "version": previousVersion},
		spot,
	)
	if err != nil {
		spot.Version = previousVersion
		return fmt.Errorf("failed to replace spot: %w", err)
	}
	if result.MatchedCount == 0 {
		spot.Version = previousVersion
		return fmt.Errorf("%w: spot %s was modified concurrently", models.ErrVersionConflict, spot.SpotID)
	}

	r.invalidateSpotCache(ctx, spot.SpotID)
	return nil
}

func (r *spotRepository) HasOpenViolations(ctx context.Context, vehicleRef string) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"violations": bson.M{"$elemMatch": bson.M{
			"vehicle_ref": vehicleRef,
			"status": bson.M{"$in": []models.ViolationStatus{
				models.ViolationStatusPending,
				models.ViolationStatusIssued,
			}},
		}},
	})
	if err != nil {
		return false, fmt.Errorf("failed to count open violations: %w", err)
	}
	return count > 0, nil
}

func (r *spotRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	var spot models.ParkingSpot
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&spot)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return fmt.Errorf("%w: spot %s", models.ErrNotFound, id.Hex())
		}
		return fmt.Errorf("failed to delete spot: %w", err)
	}

	r.invalidateSpotCache(ctx, spot.SpotID)
	return nil
}

func (r *spotRepository) cacheSpot(ctx context.Context, spot *models.ParkingSpot) {
	if r.cache == nil || r.cacheTTL <= 0 {
		return
	}
	_ = r.cache.Set(ctx, spotCacheKey(spot.SpotID), spot, r.cacheTTL)
}

func (r *spotRepository) getSpotFromCache(ctx context.Context, spotID string) *models.ParkingSpot {
	if r.cache == nil || r.cacheTTL <= 0 {
		return nil
	}
	var spot models.ParkingSpot
	if err := r.cache.Get(ctx, spotCacheKey(spotID), &spot); err != nil {
		return nil
	}
	return &spot
}

func (r *spotRepository) invalidateSpotCache(ctx context.Context, spotID string) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Delete(ctx, spotCacheKey(spotID))
}

func spotCacheKey(spotID string) string {
	return "spot:" + spotID
}
