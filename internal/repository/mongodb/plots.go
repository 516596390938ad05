package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/domain/models"
)

// PlotStore persists plots and keeps Land.totalPlots in step with them.
type PlotStore struct {
	client       *mongo.Client
	coll         *mongo.Collection
	lands        *mongo.Collection
	transactions bool
	logger       *zap.Logger
}

// ReplaceForLand deletes every plot of the land, inserts plots and sets the
// land's totalPlots. The three writes share a transaction when enabled.
func (s *PlotStore) ReplaceForLand(ctx context.Context, landID primitive.ObjectID, plots []models.Plot) error {
	for i := range plots {
		if plots[i].ID.IsZero() {
			plots[i].ID = primitive.NewObjectID()
		}
	}

	if !s.transactions {
		return s.replace(ctx, landID, plots)
	}

	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, s.replace(sc, landID, plots)
	})
	if err != nil {
		return fmt.Errorf("replace plots transaction: %w", err)
	}
	return nil
}

func (s *PlotStore) replace(ctx context.Context, landID primitive.ObjectID, plots []models.Plot) error {
	deleted, err := s.coll.DeleteMany(ctx, bson.M{"landId": landID})
	if err != nil {
		return fmt.Errorf("delete plots: %w", err)
	}

	docs := make([]interface{}, 0, len(plots))
	for _, p := range plots {
		docs = append(docs, p)
	}
	if len(docs) > 0 {
		if _, err := s.coll.InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("insert plots: %w", err)
		}
	}

	update := bson.M{"$set": bson.M{"totalPlots": len(plots), "updatedAt": time.Now().UTC()}}
	if _, err := s.lands.UpdateOne(ctx, bson.M{"_id": landID}, update); err != nil {
		return fmt.Errorf("update land plot count: %w", err)
	}

	s.logger.Debug("plots replaced",
		zap.String("land_id", landID.Hex()),
		zap.Int64("deleted", deleted.DeletedCount),
		zap.Int("inserted", len(plots)))
	return nil
}

// ListByLand returns the land's plots in insertion order.
func (s *PlotStore) ListByLand(ctx context.Context, landID primitive.ObjectID) ([]models.Plot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	return findMany[models.Plot](ctx, s.coll, bson.M{"landId": landID}, opts, "plots")
}

// FindByID loads one plot.
func (s *PlotStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Plot, error) {
	return findOne[models.Plot](ctx, s.coll, bson.M{"_id": id}, "plot")
}

// Replace overwrites the stored plot.
func (s *PlotStore) Replace(ctx context.Context, plot *models.Plot) error {
	return replaceByID(ctx, s.coll, bson.M{"_id": plot.ID}, plot, "plot")
}

// Delete removes one plot.
func (s *PlotStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.coll, bson.M{"_id": id}, "plot")
}

// AssignCrop links a crop to a plot.
func (s *PlotStore) AssignCrop(ctx context.Context, plotID, cropID primitive.ObjectID, cropName string) error {
	update := bson.M{"$set": bson.M{"cropId": cropID, "cropName": cropName, "updatedAt": time.Now().UTC()}}
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": plotID}, update)
	if err != nil {
		return fmt.Errorf("assign crop to plot: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: plot", models.ErrNotFound)
	}
	return nil
}
