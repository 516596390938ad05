package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/config"
	"github.com/mamadbah2/farmhub/internal/domain/models"
)

const (
	usersCollection    = "users"
	landsCollection    = "lands"
	plotsCollection    = "plots"
	cropsCollection    = "crops"
	tasksCollection    = "tasks"
	diseasesCollection = "diseases"
	marketCollection   = "marketprices"
)

// MongoDBRepository owns the client and hands out one store per collection.
type MongoDBRepository struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
	logger       *zap.Logger
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, cfg config.MongoDBConfig, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(cfg.URI)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:       client,
		db:           client.Database(cfg.DBName),
		transactions: cfg.Transactions,
		logger:       logger,
	}, nil
}

// EnsureIndexes creates the lookup indexes every handler relies on.
func (r *MongoDBRepository) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "firebaseUid", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		landsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isActive", Value: 1}}},
		},
		plotsCollection: {
			{Keys: bson.D{{Key: "landId", Value: 1}}},
		},
		cropsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isActive", Value: 1}}},
			{Keys: bson.D{{Key: "landId", Value: 1}}},
		},
		tasksCollection: {
			{Keys: bson.D{{Key: "cropId", Value: 1}, {Key: "dueDate", Value: 1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "dueDate", Value: 1}}},
		},
		diseasesCollection: {
			{Keys: bson.D{{Key: "cropId", Value: 1}}},
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
		marketCollection: {
			{Keys: bson.D{{Key: "cropName", Value: 1}, {Key: "date", Value: -1}}},
		},
	}

	for name, indexes := range specs {
		if _, err := r.db.Collection(name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	r.logger.Info("mongodb indexes ensured")
	return nil
}

// Users returns the users store.
func (r *MongoDBRepository) Users() *UserStore {
	return &UserStore{coll: r.db.Collection(usersCollection)}
}

// Lands returns the lands store.
func (r *MongoDBRepository) Lands() *LandStore {
	return &LandStore{coll: r.db.Collection(landsCollection)}
}

// Plots returns the plots store.
func (r *MongoDBRepository) Plots() *PlotStore {
	return &PlotStore{
		client:       r.client,
		coll:         r.db.Collection(plotsCollection),
		lands:        r.db.Collection(landsCollection),
		transactions: r.transactions,
		logger:       r.logger.Named("plots"),
	}
}

// Crops returns the crops store.
func (r *MongoDBRepository) Crops() *CropStore {
	return &CropStore{coll: r.db.Collection(cropsCollection)}
}

// Tasks returns the tasks store.
func (r *MongoDBRepository) Tasks() *TaskStore {
	return &TaskStore{coll: r.db.Collection(tasksCollection)}
}

// Diseases returns the diseases store.
func (r *MongoDBRepository) Diseases() *DiseaseStore {
	return &DiseaseStore{coll: r.db.Collection(diseasesCollection)}
}

// MarketPrices returns the market price store.
func (r *MongoDBRepository) MarketPrices() *MarketStore {
	return &MarketStore{coll: r.db.Collection(marketCollection)}
}

// Ping checks the connection is alive.
func (r *MongoDBRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any, what string) (*T, error) {
	var doc T
	if err := coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", models.ErrNotFound, what)
		}
		return nil, fmt.Errorf("find %s: %w", what, err)
	}
	return &doc, nil
}

func findMany[T any](ctx context.Context, coll *mongo.Collection, filter any, opts *options.FindOptions, what string) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", what, err)
	}
	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", what, err)
	}
	return out, nil
}

func replaceByID(ctx context.Context, coll *mongo.Collection, filter bson.M, doc any, what string) error {
	res, err := coll.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return fmt.Errorf("replace %s: %w", what, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", models.ErrNotFound, what)
	}
	return nil
}

func deleteByID(ctx context.Context, coll *mongo.Collection, filter bson.M, what string) error {
	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete %s: %w", what, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", models.ErrNotFound, what)
	}
	return nil
}
