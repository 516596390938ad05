package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/farmhub/internal/domain/models"
)

// TaskStore persists tasks.
type TaskStore struct {
	coll *mongo.Collection
}

// Insert stores a new task.
func (s *TaskStore) Insert(ctx context.Context, task *models.Task) error {
	if task.ID.IsZero() {
		task.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// FindByID loads one task.
func (s *TaskStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	return findOne[models.Task](ctx, s.coll, bson.M{"_id": id}, "task")
}

// ListByCrop returns a crop's tasks by due date.
func (s *TaskStore) ListByCrop(ctx context.Context, cropID primitive.ObjectID) ([]models.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}})
	return findMany[models.Task](ctx, s.coll, bson.M{"cropId": cropID}, opts, "tasks")
}

// ListByUser returns a user's tasks by due date, optionally filtered on completion.
func (s *TaskStore) ListByUser(ctx context.Context, uid string, completed *bool) ([]models.Task, error) {
	filter := bson.M{"userId": uid}
	if completed != nil {
		filter["isCompleted"] = *completed
	}
	opts := options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}})
	return findMany[models.Task](ctx, s.coll, filter, opts, "tasks")
}

// Replace overwrites the stored task.
func (s *TaskStore) Replace(ctx context.Context, task *models.Task) error {
	return replaceByID(ctx, s.coll, bson.M{"_id": task.ID}, task, "task")
}

// Delete removes a task.
func (s *TaskStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.coll, bson.M{"_id": id}, "task")
}
