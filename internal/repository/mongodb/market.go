package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/farmhub/internal/domain/models"
)

// MarketStore reads persisted mandi prices.
type MarketStore struct {
	coll *mongo.Collection
}

func cropNameFilter(cropName string) bson.M {
	pattern := "^" + regexp.QuoteMeta(strings.TrimSpace(cropName)) + "$"
	return bson.M{"cropName": primitive.Regex{Pattern: pattern, Options: "i"}}
}

// ListSince returns prices for a crop dated on or after since, newest first.
func (s *MarketStore) ListSince(ctx context.Context, cropName string, since time.Time) ([]models.MarketPrice, error) {
	filter := cropNameFilter(cropName)
	filter["date"] = bson.M{"$gte": since}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "market", Value: 1}})
	return findMany[models.MarketPrice](ctx, s.coll, filter, opts, "market prices")
}

// LatestPerMarket returns the most recent price of a crop in each market.
func (s *MarketStore) LatestPerMarket(ctx context.Context, cropName string) ([]models.MarketPrice, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: cropNameFilter(cropName)}},
		{{Key: "$sort", Value: bson.D{{Key: "date", Value: -1}}}},
		{{Key: "$group", Value: bson.M{"_id": "$market", "doc": bson.M{"$first": "$$ROOT"}}}},
		{{Key: "$replaceRoot", Value: bson.M{"newRoot": "$doc"}}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate market prices: %w", err)
	}
	out := make([]models.MarketPrice, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode market prices: %w", err)
	}
	return out, nil
}
