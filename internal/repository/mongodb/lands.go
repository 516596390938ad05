package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/farmhub/internal/domain/models"
)

// LandStore persists lands.
type LandStore struct {
	coll *mongo.Collection
}

// Insert stores a new land.
func (s *LandStore) Insert(ctx context.Context, land *models.Land) error {
	if land.ID.IsZero() {
		land.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, land); err != nil {
		return fmt.Errorf("insert land: %w", err)
	}
	return nil
}

// FindByID loads a land whether or not it is active.
func (s *LandStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Land, error) {
	return findOne[models.Land](ctx, s.coll, bson.M{"_id": id}, "land")
}

// ListActiveByUser returns the user's active lands, newest first.
func (s *LandStore) ListActiveByUser(ctx context.Context, uid string) ([]models.Land, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return findMany[models.Land](ctx, s.coll, bson.M{"userId": uid, "isActive": true}, opts, "lands")
}

// Replace overwrites the stored land.
func (s *LandStore) Replace(ctx context.Context, land *models.Land) error {
	return replaceByID(ctx, s.coll, bson.M{"_id": land.ID}, land, "land")
}

// AddPlots shifts totalPlots by delta without dropping below zero.
func (s *LandStore) AddPlots(ctx context.Context, id primitive.ObjectID, delta int) error {
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"totalPlots": bson.M{"$max": bson.A{0, bson.M{"$add": bson.A{"$totalPlots", delta}}}},
			"updatedAt":  time.Now().UTC(),
		}}},
	}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, pipeline)
	if err != nil {
		return fmt.Errorf("update land plot count: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: land", models.ErrNotFound)
	}
	return nil
}
