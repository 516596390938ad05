package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/farmhub/internal/domain/models"
)

// CropStore persists crops. Every write bumps the version field.
type CropStore struct {
	coll *mongo.Collection
}

// Insert stores a new crop.
func (s *CropStore) Insert(ctx context.Context, crop *models.Crop) error {
	if crop.ID.IsZero() {
		crop.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, crop); err != nil {
		return fmt.Errorf("insert crop: %w", err)
	}
	return nil
}

// FindByID loads a crop including soft-deleted ones.
func (s *CropStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Crop, error) {
	return findOne[models.Crop](ctx, s.coll, bson.M{"_id": id}, "crop")
}

// ListActiveByUser returns the user's active crops, newest first.
func (s *CropStore) ListActiveByUser(ctx context.Context, uid string) ([]models.Crop, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findMany[models.Crop](ctx, s.coll, bson.M{"userId": uid, "isActive": true}, opts, "crops")
}

// ListActiveByLand returns active crops planted on a land.
func (s *CropStore) ListActiveByLand(ctx context.Context, landID primitive.ObjectID) ([]models.Crop, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findMany[models.Crop](ctx, s.coll, bson.M{"landId": landID, "isActive": true}, opts, "crops")
}

// ListActive returns every active, unharvested crop.
func (s *CropStore) ListActive(ctx context.Context) ([]models.Crop, error) {
	opts := options.Find().SetSort(bson.D{{Key: "userId", Value: 1}})
	return findMany[models.Crop](ctx, s.coll, bson.M{"isActive": true, "isHarvested": false}, opts, "crops")
}

// Replace overwrites the crop if its stored version still equals crop.Version,
// then advances crop.Version.
func (s *CropStore) Replace(ctx context.Context, crop *models.Crop) error {
	expected := crop.Version
	next := *crop
	next.Version = expected + 1

	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": crop.ID, "version": expected}, next)
	if err != nil {
		return fmt.Errorf("replace crop: %w", err)
	}
	if res.MatchedCount == 0 {
		if _, err := s.FindByID(ctx, crop.ID); err != nil {
			return err
		}
		return fmt.Errorf("%w: crop was modified concurrently", models.ErrConflict)
	}
	crop.Version = next.Version
	return nil
}

// AdjustHealth adds delta to the health score in a single server-side update,
// clamped to [0, 100], and returns the updated crop.
func (s *CropStore) AdjustHealth(ctx context.Context, id primitive.ObjectID, delta int) (*models.Crop, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"healthScore": bson.M{"$min": bson.A{
				models.MaxHealthScore,
				bson.M{"$max": bson.A{models.MinHealthScore, bson.M{"$add": bson.A{"$healthScore", delta}}}},
			}},
			"version":   bson.M{"$add": bson.A{"$version", 1}},
			"updatedAt": time.Now().UTC(),
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var crop models.Crop
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, pipeline, opts).Decode(&crop); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: crop", models.ErrNotFound)
		}
		return nil, fmt.Errorf("adjust crop health: %w", err)
	}
	return &crop, nil
}
