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

// DiseaseStore persists disease records.
type DiseaseStore struct {
	coll *mongo.Collection
}

// Insert stores a new disease record.
func (s *DiseaseStore) Insert(ctx context.Context, disease *models.Disease) error {
	if disease.ID.IsZero() {
		disease.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, disease); err != nil {
		return fmt.Errorf("insert disease: %w", err)
	}
	return nil
}

// FindByID loads one disease record.
func (s *DiseaseStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Disease, error) {
	return findOne[models.Disease](ctx, s.coll, bson.M{"_id": id}, "disease")
}

// ListByCrop returns a crop's diseases, most recent first.
func (s *DiseaseStore) ListByCrop(ctx context.Context, cropID primitive.ObjectID) ([]models.Disease, error) {
	opts := options.Find().SetSort(bson.D{{Key: "detectedAt", Value: -1}})
	return findMany[models.Disease](ctx, s.coll, bson.M{"cropId": cropID}, opts, "diseases")
}

// ListByUser returns a user's diseases, most recent first.
func (s *DiseaseStore) ListByUser(ctx context.Context, uid string) ([]models.Disease, error) {
	opts := options.Find().SetSort(bson.D{{Key: "detectedAt", Value: -1}})
	return findMany[models.Disease](ctx, s.coll, bson.M{"userId": uid}, opts, "diseases")
}

// Replace overwrites the stored disease.
func (s *DiseaseStore) Replace(ctx context.Context, disease *models.Disease) error {
	return replaceByID(ctx, s.coll, bson.M{"_id": disease.ID}, disease, "disease")
}

// TransitionStatus moves the disease from one status to another only if it is
// still in from, so a resolution is applied once.
func (s *DiseaseStore) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.DiseaseStatus, at time.Time) (*models.Disease, error) {
	set := bson.M{"status": to, "updatedAt": at}
	update := bson.M{"$set": set}
	if to == models.StatusResolved {
		set["resolvedAt"] = at
	} else {
		update["$unset"] = bson.M{"resolvedAt": ""}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var disease models.Disease
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": from}, update, opts).Decode(&disease)
	if err == nil {
		return &disease, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("update disease status: %w", err)
	}
	if _, findErr := s.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, fmt.Errorf("%w: disease status changed concurrently", models.ErrConflict)
}

// Delete removes a disease record.
func (s *DiseaseStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.coll, bson.M{"_id": id}, "disease")
}

// CountActiveByUser counts unresolved diseases per user.
func (s *DiseaseStore) CountActiveByUser(ctx context.Context) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": bson.M{"$ne": models.StatusResolved}}}},
		{{Key: "$group", Value: bson.M{"_id": "$userId", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate active diseases: %w", err)
	}

	var rows []struct {
		UserID string `bson:"_id"`
		Count  int    `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode active diseases: %w", err)
	}

	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.UserID] = row.Count
	}
	return out, nil
}
